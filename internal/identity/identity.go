// Package identity wraps an Auth0-style JWT validator for callers that
// need to turn a bearer token into the subject claim to use as
// fact.TxMetadata's Author — one way to produce that string, not a
// requirement internal/operations imposes (it accepts Author as a plain
// parameter). Adapted from the teacher's internal/middleware/auth.go,
// stripped of its Echo request/response plumbing.
package identity

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// ErrInvalidToken is returned when a bearer token fails validation.
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims carries no additional claims; the core only needs the
// registered subject.
type CustomClaims struct{}

// Validate implements validator.CustomClaims.
func (CustomClaims) Validate(context.Context) error { return nil }

// TokenValidator validates Auth0-issued bearer tokens and extracts the
// subject claim.
type TokenValidator struct {
	validator *validator.Validator
}

// NewTokenValidator builds a TokenValidator against an Auth0 tenant
// domain and expected audience.
func NewTokenValidator(domain, audience string) (*TokenValidator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &TokenValidator{validator: jwtValidator}, nil
}

// ValidateToken validates token and returns the subject claim, suitable
// for use as fact.TxMetadata.Author.
func (v *TokenValidator) ValidateToken(ctx context.Context, token string) (subject string, err error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", ErrInvalidToken
	}
	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	return validated.RegisteredClaims.Subject, nil
}
