package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func flashContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestFlashRoundTrip(t *testing.T) {
	c, rec := flashContext()
	SetFlash(c, "The Wagon classification was successfully added.")

	set := findCookie(rec, "flash")
	if set == nil {
		t.Fatalf("flash cookie not set")
	}

	// A follow-up request carrying the cookie pops the message once.
	c2, rec2 := flashContext()
	c2.Request().AddCookie(&http.Cookie{Name: "flash", Value: set.Value})
	if msg := PopFlash(c2); msg != "The Wagon classification was successfully added." {
		t.Fatalf("popped flash = %q", msg)
	}
	cleared := findCookie(rec2, "flash")
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("flash cookie not cleared after pop")
	}
}

func TestPopFlashWithoutCookie(t *testing.T) {
	c, _ := flashContext()
	if msg := PopFlash(c); msg != "" {
		t.Fatalf("popped %q from empty context", msg)
	}
}

// The flash cookie follows the same Secure policy as the session
// cookie once the wiring enables it.
func TestFlashCookieSecureFlag(t *testing.T) {
	t.Cleanup(func() { UseSecureCookies(false) })

	c, rec := flashContext()
	SetFlash(c, "plain http")
	if ck := findCookie(rec, "flash"); ck == nil || ck.Secure {
		t.Fatalf("flash cookie should not be Secure by default")
	}

	UseSecureCookies(true)
	c2, rec2 := flashContext()
	SetFlash(c2, "behind tls")
	if ck := findCookie(rec2, "flash"); ck == nil || !ck.Secure {
		t.Fatalf("flash cookie missing Secure flag")
	}

	// The clearing cookie written by PopFlash is Secure too.
	c3, rec3 := flashContext()
	c3.Request().AddCookie(&http.Cookie{Name: "flash", Value: "behind%20tls"})
	if msg := PopFlash(c3); msg != "behind tls" {
		t.Fatalf("popped flash = %q", msg)
	}
	if ck := findCookie(rec3, "flash"); ck == nil || !ck.Secure {
		t.Fatalf("clearing cookie dropped the Secure flag")
	}
}
