// Package credential carries the caller's bearer token into every clinic API
// call. The token is issued and revoked elsewhere; it is only read here.
package credential

import (
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/exceptions"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Bearer struct {
	token string
}

func NewBearer(token string) Bearer {
	return Bearer{token: strings.TrimSpace(token)}
}

// FromAuthorizationHeader parses an "Authorization: Bearer <token>" value.
func FromAuthorizationHeader(header string) (Bearer, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Bearer{}, exceptions.ErrTokenMissing(nil)
	}
	if len(header) < len(constvars.AuthorizationBearerPrefix) ||
		!strings.EqualFold(header[:len(constvars.AuthorizationBearerPrefix)], constvars.AuthorizationBearerPrefix) {
		return Bearer{}, exceptions.ErrTokenMalformed(errors.New("authorization scheme is not bearer"))
	}

	bearer := NewBearer(header[len(constvars.AuthorizationBearerPrefix):])
	if bearer.IsZero() {
		return Bearer{}, exceptions.ErrTokenMissing(nil)
	}
	return bearer, nil
}

func (b Bearer) IsZero() bool {
	return b.token == ""
}

func (b Bearer) Token() string {
	return b.token
}

// Validate rejects an empty token and a JWT whose exp claim is already past.
// Signatures are not verified; the clinic API remains the authority. Opaque
// (non-JWT) tokens pass through.
func (b Bearer) Validate(now time.Time) error {
	if b.IsZero() {
		return exceptions.ErrTokenMissing(nil)
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(b.token, claims)
	if err != nil {
		return nil
	}

	if !claims.VerifyExpiresAt(now.Unix(), false) {
		return exceptions.ErrTokenExpired(errors.New("exp claim is in the past"))
	}
	return nil
}

func (b Bearer) Apply(req *http.Request) {
	req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+b.token)
}

// String never prints the token.
func (b Bearer) String() string {
	if b.IsZero() {
		return "Bearer(empty)"
	}
	return "Bearer(redacted)"
}
