package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/config"
	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/repository"
	"github.com/lvaldez/driveline/internal/utils"
)

// AccountHandler bundles dependencies for registration, login and
// self-service account maintenance.
type AccountHandler struct {
	Cfg             config.Config
	Accounts        AccountStore
	Classifications ClassificationStore
}

func NewAccountHandler(cfg config.Config, accounts AccountStore, classifications ClassificationStore) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Accounts: accounts, Classifications: classifications}
}

func (h *AccountHandler) nav(c echo.Context) []model.Classification {
	return loadNav(c, h.Classifications)
}

// BuildLogin renders the login form.
func (h *AccountHandler) BuildLogin(c echo.Context) error {
	return render(c, http.StatusOK, "login", echo.Map{
		"Title": "Login", "Nav": h.nav(c), "Email": "",
	})
}

// Login verifies credentials and issues the session cookie. Unknown
// email and wrong password produce the same message so the form does
// not reveal which accounts exist.
func (h *AccountHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")

	fail := func() error {
		return render(c, http.StatusUnauthorized, "login", echo.Map{
			"Title":  "Login",
			"Nav":    h.nav(c),
			"Email":  email,
			"Errors": []string{"Please check your credentials and try again."},
		})
	}
	if email == "" || password == "" {
		return fail()
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail()
		}
		c.Logger().Errorf("login lookup %s: %v", email, err)
		return redirectFlash(c, "/account/login", "Sorry, something went wrong. Please try again.")
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return fail()
	}

	if err := h.issueSession(c, a); err != nil {
		c.Logger().Errorf("issue session for account %d: %v", a.ID, err)
		return redirectFlash(c, "/account/login", "Sorry, something went wrong. Please try again.")
	}
	return c.Redirect(http.StatusSeeOther, "/account/")
}

// issueSession signs a fresh token for the account and sets the
// session cookie. The cookie lifetime matches the token expiry.
func (h *AccountHandler) issueSession(c echo.Context, a model.Account) error {
	tok, err := utils.NewSessionToken(h.Cfg.SessionSecret, a, h.Cfg.SessionTTLMin)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// BuildRegister renders the registration form.
func (h *AccountHandler) BuildRegister(c echo.Context) error {
	return render(c, http.StatusOK, "register", echo.Map{
		"Title": "Register", "Nav": h.nav(c),
		"FirstName": "", "LastName": "", "Email": "",
	})
}

// Register creates a Client account. The role is fixed here; only the
// admin add-user flow may choose another one.
func (h *AccountHandler) Register(c echo.Context) error {
	firstName := strings.TrimSpace(c.FormValue("first_name"))
	lastName := strings.TrimSpace(c.FormValue("last_name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")

	rerender := func(status int, errs []string) error {
		return render(c, status, "register", echo.Map{
			"Title": "Register", "Nav": h.nav(c), "Errors": errs,
			"FirstName": firstName, "LastName": lastName, "Email": email,
		})
	}
	if errs := validateAccountFields(firstName, lastName, email); len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}
	if len(password) < 8 {
		return rerender(http.StatusBadRequest, []string{"Password must be at least 8 characters."})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Accounts.Create(ctx, firstName, lastName, email, password, model.RoleClient, h.Cfg.BcryptCost); err != nil {
		// A duplicate email renders the same generic failure as any
		// other persistence problem; the form must not confirm that an
		// address is registered.
		if !errors.Is(err, repository.ErrEmailExists) {
			c.Logger().Errorf("register account: %v", err)
		}
		return rerender(http.StatusBadRequest, []string{"Sorry, the registration failed."})
	}
	return redirectFlash(c, "/account/login",
		"Congratulations, you're registered, "+firstName+". Please log in.")
}

// Logout clears the session cookie.
func (h *AccountHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name: middleware.SessionCookieName, Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: h.Cfg.SecureCookies(),
	})
	return redirectFlash(c, "/", "You have been logged out.")
}

// Management renders the logged-in landing page.
func (h *AccountHandler) Management(c echo.Context) error {
	return render(c, http.StatusOK, "account", echo.Map{
		"Title": "Account Management", "Nav": h.nav(c),
	})
}

// BuildUpdate renders the profile form pre-filled with current values.
func (h *AccountHandler) BuildUpdate(c echo.Context) error {
	id := middleware.CurrentIdentity(c)

	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Accounts.GetByID(ctx, id.AccountID)
	if err != nil {
		c.Logger().Errorf("load account %d: %v", id.AccountID, err)
		return redirectFlash(c, "/account/", "Sorry, your account could not be loaded.")
	}
	return render(c, http.StatusOK, "account-update", echo.Map{
		"Title": "Update Account", "Nav": h.nav(c),
		"FirstName": a.FirstName, "LastName": a.LastName, "Email": a.Email,
	})
}

// Update changes the profile fields and refreshes the session cookie
// so the new name and email show immediately.
func (h *AccountHandler) Update(c echo.Context) error {
	id := middleware.CurrentIdentity(c)
	firstName := strings.TrimSpace(c.FormValue("first_name"))
	lastName := strings.TrimSpace(c.FormValue("last_name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))

	rerender := func(status int, errs []string) error {
		return render(c, status, "account-update", echo.Map{
			"Title": "Update Account", "Nav": h.nav(c), "Errors": errs,
			"FirstName": firstName, "LastName": lastName, "Email": email,
		})
	}
	if errs := validateAccountFields(firstName, lastName, email); len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.UpdateProfile(ctx, id.AccountID, firstName, lastName, email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return rerender(http.StatusBadRequest, []string{"That email address is not available."})
		}
		c.Logger().Errorf("update account %d: %v", id.AccountID, err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the update failed."})
	}

	if a, err := h.Accounts.GetByID(ctx, id.AccountID); err == nil {
		if err := h.issueSession(c, a); err != nil {
			c.Logger().Errorf("refresh session for account %d: %v", a.ID, err)
		}
	}
	return redirectFlash(c, "/account/", "Successfully updated "+firstName+"'s account.")
}

// UpdatePassword rehashes and stores a new password.
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	id := middleware.CurrentIdentity(c)
	password := c.FormValue("password")
	if len(password) < 8 {
		return redirectFlash(c, "/account/update", "Password must be at least 8 characters.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.UpdatePassword(ctx, id.AccountID, password, h.Cfg.BcryptCost); err != nil {
		c.Logger().Errorf("update password for account %d: %v", id.AccountID, err)
		return redirectFlash(c, "/account/update", "Password update failed.")
	}
	return redirectFlash(c, "/account/", "Successfully updated password.")
}

// accountJSON is the payload shape of the account JSON endpoint; the
// password hash has no representation here.
type accountJSON struct {
	ID        uint64     `json:"account_id"`
	FirstName string     `json:"account_firstname"`
	LastName  string     `json:"account_lastname"`
	Email     string     `json:"account_email"`
	Role      model.Role `json:"account_type"`
}

// JSON serves one account as a single-element array, the shape the
// management screens consume.
func (h *AccountHandler) JSON(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no account found"})
		}
		c.Logger().Errorf("account json %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, []accountJSON{{
		ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email, Role: a.Role,
	}})
}

// validateAccountFields checks the shared name/email rules of the
// registration, profile and admin user forms.
func validateAccountFields(firstName, lastName, email string) []string {
	var errs []string
	if firstName == "" {
		errs = append(errs, "First name is required.")
	}
	if lastName == "" {
		errs = append(errs, "Last name is required.")
	}
	if at := strings.Index(email, "@"); email == "" || at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		errs = append(errs, "A valid email address is required.")
	}
	return errs
}
