package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/repository"
)

// Admin-only user management. Everything here sits behind the Admin
// role gate in the router; handlers still re-check nothing weaker than
// that because the identity middleware already guarantees it.

// Manage lists accounts, optionally filtered by role via the ?role=
// query parameter. An unknown role value falls back to the full list.
func (h *AccountHandler) Manage(c echo.Context) error {
	filter := strings.TrimSpace(c.QueryParam("role"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		accounts []model.Account
		err      error
	)
	if role, perr := model.ParseRole(filter); perr == nil {
		accounts, err = h.Accounts.ListByRole(ctx, role)
	} else {
		filter = ""
		accounts, err = h.Accounts.List(ctx)
	}
	if err != nil {
		c.Logger().Errorf("list accounts: %v", err)
		return redirectFlash(c, "/account/", "Sorry, the user list could not be loaded.")
	}
	return render(c, http.StatusOK, "user-manage", echo.Map{
		"Title":      "User Management",
		"Nav":        h.nav(c),
		"Accounts":   accounts,
		"Roles":      model.Roles(),
		"RoleFilter": filter,
	})
}

// BuildAddUser renders the admin add-user form.
func (h *AccountHandler) BuildAddUser(c echo.Context) error {
	return render(c, http.StatusOK, "user-add", echo.Map{
		"Title": "Add User", "Nav": h.nav(c), "Roles": model.Roles(),
		"FirstName": "", "LastName": "", "Email": "", "Role": string(model.RoleClient),
	})
}

// AddUser creates an account with any role. Unlike self-registration,
// the admin gets told when the email is already taken.
func (h *AccountHandler) AddUser(c echo.Context) error {
	firstName := strings.TrimSpace(c.FormValue("first_name"))
	lastName := strings.TrimSpace(c.FormValue("last_name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	roleValue := c.FormValue("role")

	rerender := func(status int, errs []string) error {
		return render(c, status, "user-add", echo.Map{
			"Title": "Add User", "Nav": h.nav(c), "Roles": model.Roles(), "Errors": errs,
			"FirstName": firstName, "LastName": lastName, "Email": email, "Role": roleValue,
		})
	}

	errs := validateAccountFields(firstName, lastName, email)
	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	role, err := model.ParseRole(roleValue)
	if err != nil {
		errs = append(errs, "A valid role is required.")
	}
	if len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Accounts.Create(ctx, firstName, lastName, email, password, role, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return rerender(http.StatusBadRequest, []string{"That email address is already registered."})
		}
		c.Logger().Errorf("admin add user: %v", err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the account could not be created."})
	}
	return redirectFlash(c, "/account/manage", "The account for "+firstName+" "+lastName+" was created.")
}

// BuildEditUser renders the edit form for one account.
func (h *AccountHandler) BuildEditUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("load account %d: %v", id, err)
		}
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}
	return render(c, http.StatusOK, "user-edit", echo.Map{
		"Title": "Edit " + a.FirstName + " " + a.LastName, "Nav": h.nav(c), "Roles": model.Roles(),
		"AccountID": a.ID, "FirstName": a.FirstName, "LastName": a.LastName,
		"Email": a.Email, "Role": string(a.Role),
	})
}

// UpdateUser applies the admin edit, including a role change.
func (h *AccountHandler) UpdateUser(c echo.Context) error {
	id, err := formID(c, "account_id")
	if err != nil {
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}
	firstName := strings.TrimSpace(c.FormValue("first_name"))
	lastName := strings.TrimSpace(c.FormValue("last_name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	roleValue := c.FormValue("role")

	rerender := func(status int, errs []string) error {
		return render(c, status, "user-edit", echo.Map{
			"Title": "Edit " + firstName + " " + lastName, "Nav": h.nav(c),
			"Roles": model.Roles(), "Errors": errs,
			"AccountID": id, "FirstName": firstName, "LastName": lastName,
			"Email": email, "Role": roleValue,
		})
	}

	errs := validateAccountFields(firstName, lastName, email)
	role, perr := model.ParseRole(roleValue)
	if perr != nil {
		errs = append(errs, "A valid role is required.")
	}
	if len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}

	// An admin demoting their own account would lock themselves out of
	// this very screen mid-session.
	if me := middleware.CurrentIdentity(c); me.AccountID == id && role != model.RoleAdmin {
		return rerender(http.StatusBadRequest, []string{"You cannot remove your own admin role."})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.UpdateAccount(ctx, id, firstName, lastName, email, role); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return rerender(http.StatusBadRequest, []string{"That email address is already registered."})
		case errors.Is(err, repository.ErrNotFound):
			return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
		}
		c.Logger().Errorf("admin update account %d: %v", id, err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the update failed."})
	}
	return redirectFlash(c, "/account/manage", "Successfully updated "+firstName+"'s account.")
}

// BuildDeleteUser renders the delete confirmation page.
func (h *AccountHandler) BuildDeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("load account %d: %v", id, err)
		}
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}
	return render(c, http.StatusOK, "user-delete", echo.Map{
		"Title": "Delete " + a.FirstName + " " + a.LastName, "Nav": h.nav(c),
		"AccountID": a.ID, "FirstName": a.FirstName, "LastName": a.LastName,
		"Email": a.Email, "Role": string(a.Role),
	})
}

// DeleteUser removes the account and, via the database cascade, its
// reviews. Admins cannot delete themselves.
func (h *AccountHandler) DeleteUser(c echo.Context) error {
	id, err := formID(c, "account_id")
	if err != nil {
		return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
	}
	if me := middleware.CurrentIdentity(c); me.AccountID == id {
		return redirectFlash(c, "/account/manage", "You cannot delete your own account.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirectFlash(c, "/account/manage", "Sorry, that account could not be found.")
		}
		c.Logger().Errorf("delete account %d: %v", id, err)
		return redirectFlash(c, "/account/manage", "Sorry, the delete failed.")
	}
	return redirectFlash(c, "/account/manage", "The account was deleted.")
}
