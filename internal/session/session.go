package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/wikisphere/userverify/internal/configs"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/protectedkey"
)

// CookieName holds the unlocked user key for the administrator's session.
const CookieName = "userverify-userkey"

// Carrier stores and retrieves the session user key as a signed, scoped
// cookie. The cookie attributes mirror the platform's session-cookie policy
// and its lifetime follows the remember-me duration.
type Carrier struct {
	opts       configs.Session
	signingKey []byte
}

func NewCarrier(opts configs.Session) *Carrier {
	return &Carrier{opts: opts, signingKey: []byte(opts.SigningKey)}
}

// Set writes the user key cookie. The value is the ASCII-safe key encoding
// plus an HMAC so tampering is caught before any key decode.
func (c *Carrier) Set(w http.ResponseWriter, key protectedkey.UserKey) {
	encoded := key.EncodeToString()
	http.SetCookie(w, c.cookie(encoded+"."+c.sign(encoded), time.Now().Add(c.opts.RememberDuration.Duration)))
}

// Get reads the user key from the request. An absent cookie yields
// ErrUserKeyNotSet; a bad signature or mangled value yields
// ErrWrongKeyOrCorrupted.
func (c *Carrier) Get(r *http.Request) (protectedkey.UserKey, error) {
	cookie, err := r.Cookie(c.name())
	if err != nil || cookie.Value == "" {
		return nil, uverrors.ErrUserKeyNotSet
	}

	encoded, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}
	return protectedkey.DecodeUserKey(encoded)
}

// Delete expires the cookie on logout.
func (c *Carrier) Delete(w http.ResponseWriter) {
	cookie := c.cookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (c *Carrier) name() string {
	return c.opts.CookiePrefix + CookieName
}

func (c *Carrier) cookie(value string, expires time.Time) *http.Cookie {
	httpOnly := true
	if c.opts.CookieHTTPOnly != nil {
		httpOnly = *c.opts.CookieHTTPOnly
	}
	return &http.Cookie{
		Name:     c.name(),
		Value:    value,
		Path:     c.opts.CookiePath,
		Domain:   c.opts.CookieDomain,
		Secure:   c.opts.CookieSecure,
		HttpOnly: httpOnly,
		SameSite: sameSite(c.opts.CookieSameSite),
		Expires:  expires,
	}
}

func (c *Carrier) sign(value string) string {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	}
	return http.SameSiteDefaultMode
}
