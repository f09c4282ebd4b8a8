package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/utils"
)

const testSecret = "test-secret"

func runWithCookie(t *testing.T, mw echo.MiddlewareFunc, cookie *http.Cookie) (Identity, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	h := mw(func(c echo.Context) error {
		got = CurrentIdentity(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware chain: %v", err)
	}
	return got, rec
}

func TestSessionRestoreAnonymousWithoutCookie(t *testing.T) {
	id, _ := runWithCookie(t, SessionRestore(testSecret), nil)
	if id.LoggedIn {
		t.Fatalf("expected anonymous identity, got %+v", id)
	}
}

func TestSessionRestoreValidCookie(t *testing.T) {
	tok, err := utils.NewSessionToken(testSecret, model.Account{
		ID: 7, FirstName: "Rae", LastName: "Ito", Email: "rae@example.com", Role: model.RoleEmployee,
	}, 60)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	id, _ := runWithCookie(t, SessionRestore(testSecret), &http.Cookie{Name: SessionCookieName, Value: tok.Token})
	if !id.LoggedIn || id.AccountID != 7 || id.Role != model.RoleEmployee {
		t.Fatalf("identity not restored: %+v", id)
	}
	if !id.CanManageInventory() {
		t.Fatalf("employee should manage inventory")
	}
	if id.IsAdmin() {
		t.Fatalf("employee is not an admin")
	}
}

func TestSessionRestoreTamperedCookieIsAnonymous(t *testing.T) {
	tok, err := utils.NewSessionToken("other-secret", model.Account{ID: 7, Role: model.RoleAdmin}, 60)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	id, rec := runWithCookie(t, SessionRestore(testSecret), &http.Cookie{Name: SessionCookieName, Value: tok.Token})
	if id.LoggedIn {
		t.Fatalf("forged cookie restored an identity: %+v", id)
	}
	// The bad cookie gets cleared so the client stops sending it.
	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("bad session cookie was not cleared")
	}
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, id Identity) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, id)

	reached := false
	h := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware chain: %v", err)
	}
	return rec, reached
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	rec, reached := runGate(t, RequireLogin(), Identity{})
	if reached {
		t.Fatalf("anonymous request reached the handler")
	}
	if loc := rec.Header().Get("Location"); loc != "/account/login" {
		t.Fatalf("redirect target = %q", loc)
	}
}

func TestRequireRoleOrdering(t *testing.T) {
	cases := []struct {
		role model.Role
		min  model.Role
		pass bool
	}{
		{model.RoleClient, model.RoleEmployee, false},
		{model.RoleEmployee, model.RoleEmployee, true},
		{model.RoleAdmin, model.RoleEmployee, true},
		{model.RoleEmployee, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleAdmin, true},
	}
	for _, tc := range cases {
		id := Identity{LoggedIn: true}
		id.Role = tc.role
		rec, reached := runGate(t, RequireRole(tc.min), id)
		if reached != tc.pass {
			t.Fatalf("role %s vs gate %s: reached=%v, want %v", tc.role, tc.min, reached, tc.pass)
		}
		if !tc.pass {
			if loc := rec.Header().Get("Location"); loc != "/account/" {
				t.Fatalf("insufficient role redirect = %q", loc)
			}
		}
	}
}
