package httpx

import (
	"net/http"
	"time"
)

// cookieWriter sets and clears the service's cookies with shared attributes
// (Path, Domain, HttpOnly, Secure, SameSite) so deletion mirrors creation.
type cookieWriter struct {
	Domain string
}

// set writes c after filling in the shared attributes. Secure follows the request scheme.
func (cw cookieWriter) set(w http.ResponseWriter, r *http.Request, c *http.Cookie) {
	c.Path = "/"
	c.Domain = cw.Domain
	c.HttpOnly = true
	c.Secure = isSecureRequest(r)
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}

// clear expires the named cookie immediately.
func (cw cookieWriter) clear(w http.ResponseWriter, r *http.Request, name string) {
	cw.set(w, r, &http.Cookie{
		Name:    name,
		Value:   "",
		MaxAge:  -1,
		Expires: time.Unix(0, 0).UTC(),
	})
}

