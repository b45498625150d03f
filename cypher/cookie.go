package cypher

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/deltegui/bankconsole/core"
)

type CookieOptions struct {
	Name  string
	Value string

	// Expires defaults to now plus MaxAge.
	Expires time.Time
	MaxAge  time.Duration

	// HttpOnly hides the cookie from scripts.
	HttpOnly bool

	// Secure sends the cookie only over https.
	Secure bool
}

// EncodeCookie encrypts value into a cookie safe string.
func EncodeCookie(cy core.Cypher, value string) (string, error) {
	encrypted, err := cy.Encrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(encrypted), nil
}

func DecodeCookie(cy core.Cypher, value string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("cannot decode cookie: %w", err)
	}
	return cy.Decrypt(raw)
}

// SetCookie writes an encrypted cookie valid for the whole site.
func SetCookie(w http.ResponseWriter, cy core.Cypher, opt CookieOptions) error {
	data, err := EncodeCookie(cy, opt.Value)
	if err != nil {
		return fmt.Errorf("error encoding cookie %q: %w", opt.Name, err)
	}
	expires := opt.Expires
	if expires.IsZero() {
		expires = time.Now().Add(opt.MaxAge)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     opt.Name,
		Value:    data,
		Expires:  expires,
		MaxAge:   int(opt.MaxAge.Seconds()),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: opt.HttpOnly,
		Secure:   opt.Secure,
	})
	return nil
}

func ReadCookie(req *http.Request, cy core.Cypher, name string) (string, error) {
	cookie, err := req.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("error while reading cookie with key '%s': %w", name, err)
	}
	data, err := DecodeCookie(cy, cookie.Value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DeleteCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
