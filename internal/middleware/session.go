package middleware // middleware provides shared request processing for handlers

// session.go restores the visitor's identity from the session cookie on
// every request. The cookie carries a signed JWT issued at login. A
// missing, expired or tampered token downgrades the request to
// anonymous instead of failing it: public pages must keep working for
// visitors whose session has lapsed.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/utils"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "session"

// identityKey is the context key under which the verified identity is
// stored for the remainder of the request.
const identityKey = "identity"

// Identity is the request-scoped record of who is asking. It is built
// once per request from the verified token and passed through the
// context; nothing global holds it. The zero value is the anonymous
// visitor.
type Identity struct {
	utils.SessionClaims
	LoggedIn bool
}

// SessionRestore verifies the session cookie and stores the resulting
// Identity in the request context. Verification failures are silent by
// design; role gates further down the chain decide what anonymous
// visitors may do.
func SessionRestore(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				c.Set(identityKey, Identity{})
				return next(c)
			}
			claims, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				// Stale or forged token: clear it and continue anonymously.
				c.SetCookie(&http.Cookie{Name: SessionCookieName, Path: "/", MaxAge: -1, HttpOnly: true})
				c.Set(identityKey, Identity{})
				return next(c)
			}
			c.Set(identityKey, Identity{SessionClaims: claims, LoggedIn: true})
			return next(c)
		}
	}
}

// CanManageInventory reports whether the visitor may see the inventory
// and moderation management surfaces (Employee and up). Templates call
// this to decide which navigation links to show.
func (i Identity) CanManageInventory() bool {
	return i.LoggedIn && i.Role.AtLeast(model.RoleEmployee)
}

// IsAdmin reports whether the visitor holds the Admin role.
func (i Identity) IsAdmin() bool {
	return i.LoggedIn && i.Role == model.RoleAdmin
}

// CurrentIdentity returns the identity stored by SessionRestore, or the
// anonymous identity when the middleware did not run.
func CurrentIdentity(c echo.Context) Identity {
	if id, ok := c.Get(identityKey).(Identity); ok {
		return id
	}
	return Identity{}
}

// currentAccountKey returns a stable string for rate-limit keys: the
// account ID when logged in, "anon" otherwise.
func currentAccountKey(c echo.Context) string {
	id := CurrentIdentity(c)
	if !id.LoggedIn {
		return "anon"
	}
	return "acct:" + strconv.FormatUint(id.AccountID, 10)
}
