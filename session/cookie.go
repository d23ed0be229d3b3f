package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "sid"

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs tokens into cookie values so a forged or altered cookie
// is rejected before any store lookup.
type CookieCodec struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration

	secret []byte
}

// NewCookieCodec creates a codec for the cookie called name.
func NewCookieCodec(name, secret string, secure bool, domain string, maxAge time.Duration) *CookieCodec {
	return &CookieCodec{
		Name:   name,
		Domain: domain,
		Secure: secure,
		MaxAge: maxAge,
		secret: []byte(secret),
	}
}

// Encode wraps token into an HS256 JWT.
func (c *CookieCodec) Encode(token string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.MaxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the token inside.
func (c *CookieCodec) Decode(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

// Set writes the cookie for token.
func (c *CookieCodec) Set(w http.ResponseWriter, token string) error {
	value, err := c.Encode(token)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(value, int(c.MaxAge.Seconds())))
	return nil
}

// Clear tells the browser to drop the cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Token returns the verified token from the request cookie, if any.
func (c *CookieCodec) Token(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	token, err := c.Decode(ck.Value)
	if err != nil {
		return "", false
	}
	return token, true
}

func (c *CookieCodec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
