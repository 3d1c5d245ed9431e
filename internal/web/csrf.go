package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

const (
	csrfCookieName = "movies_csrf"
	csrfFieldName  = "csrf_token"
	csrfNonceBytes = 32
)

var (
	errMissingSecret = errors.New("SECRET_KEY is not configured")
	errInvalidCSRF   = errors.New("the form token is missing or invalid")
)

// csrfProtector issues and checks form tokens. The browser holds a random
// nonce in a cookie; the form carries HMAC(secret, nonce).
type csrfProtector struct {
	secret []byte
}

func newCSRFProtector(secret string) *csrfProtector {
	return &csrfProtector{secret: []byte(secret)}
}

// Token returns the token to embed in a form, setting the nonce cookie if
// the browser does not have one yet
func (c *csrfProtector) Token(w http.ResponseWriter, r *http.Request) (string, error) {
	if len(c.secret) == 0 {
		return "", errMissingSecret
	}

	nonce, err := readNonce(r)
	if err != nil {
		nonce = make([]byte, csrfNonceBytes)
		if _, err := rand.Read(nonce); err != nil {
			return "", fmt.Errorf("failed to generate csrf nonce: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    base64.RawURLEncoding.EncodeToString(nonce),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return base64.RawURLEncoding.EncodeToString(c.sign(nonce)), nil
}

// Verify checks the submitted token against the nonce cookie.
// The request form must already be parsed.
func (c *csrfProtector) Verify(r *http.Request) error {
	if len(c.secret) == 0 {
		return errMissingSecret
	}

	nonce, err := readNonce(r)
	if err != nil {
		return errInvalidCSRF
	}

	submitted, err := base64.RawURLEncoding.DecodeString(r.PostFormValue(csrfFieldName))
	if err != nil || !hmac.Equal(submitted, c.sign(nonce)) {
		return errInvalidCSRF
	}
	return nil
}

func (c *csrfProtector) sign(nonce []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(nonce)
	return mac.Sum(nil)
}

func readNonce(r *http.Request) ([]byte, error) {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return nil, err
	}
	nonce, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil || len(nonce) != csrfNonceBytes {
		return nil, errInvalidCSRF
	}
	return nonce, nil
}
