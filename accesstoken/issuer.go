package accesstoken

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andrebq/postgate/gate"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TTL = 4 * time.Hour

	// MinSecretLength is the shortest secret accepted for HS256
	MinSecretLength = 32

	CookiePrefix = "post_access_"
	PathPrefix   = "/blog/"
)

type (
	// Token asserts access to a single post.
	Token struct {
		Subject   string
		Value     string
		IssuedAt  time.Time
		ExpiresAt time.Time
	}

	Issuer struct {
		secret gate.SecretFn
		now    func() time.Time
	}

	SecretTooShort struct {
		Length int
	}
)

func (s SecretTooShort) Error() string {
	return fmt.Sprintf("signing secret has %v characters, at least %v are required", s.Length, MinSecretLength)
}

func NewIssuer(secret gate.SecretFn) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Issue signs a token for slug, the caller must have verified the password
// before calling it.
func (i *Issuer) Issue(ctx context.Context, slug string) (Token, error) {
	secret, err := i.secret(ctx)
	if err != nil {
		return Token{}, err
	}
	if len(secret) < MinSecretLength {
		return Token{}, gate.NewConfigurationError("signing secret", SecretTooShort{Length: len(secret)})
	}

	now := i.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   slug,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, fmt.Errorf("unable to sign access token for %v, cause %w", slug, err)
	}
	return Token{
		Subject:   slug,
		Value:     signed,
		IssuedAt:  now,
		ExpiresAt: now.Add(TTL),
	}, nil
}

func CookieName(slug string) string {
	return CookiePrefix + slug
}

func CookiePath(slug string) string {
	return PathPrefix + slug
}

// Cookie wraps tk in a cookie only sent back for the post it unlocks.
func Cookie(tk Token) (*http.Cookie, error) {
	c := &http.Cookie{
		Name:     CookieName(tk.Subject),
		Value:    tk.Value,
		Path:     CookiePath(tk.Subject),
		MaxAge:   int(TTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if err := c.Valid(); err != nil {
		return nil, fmt.Errorf("unable to build access cookie for %q, cause %w", tk.Subject, err)
	}
	return c, nil
}
