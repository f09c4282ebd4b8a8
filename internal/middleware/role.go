package middleware

// role.go gates routes on the visitor's identity. Failed checks never
// render an error page; the visitor is redirected with a flash notice,
// matching how the rest of the site reports problems.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/view"
)

// RequireLogin short-circuits anonymous requests with a redirect to the
// login form.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentIdentity(c).LoggedIn {
				view.SetFlash(c, "Please log in.")
				return c.Redirect(http.StatusSeeOther, "/account/login")
			}
			return next(c)
		}
	}
}

// RequireRole enforces that the visitor holds at least the given role.
// Roles are ordered Client < Employee < Admin, so an Admin passes every
// Employee gate. Anonymous visitors go to the login form; logged-in
// visitors lacking the role are sent back to their account page.
func RequireRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := CurrentIdentity(c)
			if !id.LoggedIn {
				view.SetFlash(c, "Please log in.")
				return c.Redirect(http.StatusSeeOther, "/account/login")
			}
			if !id.Role.AtLeast(min) {
				view.SetFlash(c, "You are not authorized to view that page.")
				return c.Redirect(http.StatusSeeOther, "/account/")
			}
			return next(c)
		}
	}
}
