package view

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

// Flash messages ride in a short-lived cookie: set on the response that
// redirects, consumed and cleared by the next page render. The value is
// URL-escaped since cookie values cannot carry spaces.

const flashCookieName = "flash"

// secureCookies mirrors the session cookie's Secure flag so the flash
// cookie gets the same protection outside dev. Set once at startup.
var secureCookies bool

// UseSecureCookies controls whether flash cookies carry the Secure
// flag. Call it once during wiring with Config.SecureCookies().
func UseSecureCookies(on bool) { secureCookies = on }

// SetFlash queues a notice for the next rendered page.
func SetFlash(c echo.Context, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   secureCookies,
	})
}

// PopFlash returns the pending notice, if any, and clears it.
func PopFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1, HttpOnly: true, Secure: secureCookies})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
