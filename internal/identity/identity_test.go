package identity

import (
	"context"
	"testing"
)

func TestCustomClaimsValidateReturnsNil(t *testing.T) {
	var c CustomClaims
	if err := c.Validate(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestNewTokenValidatorSuccess(t *testing.T) {
	v, err := NewTokenValidator("tenant.auth0.com", "https://api.murabaha.example")
	if err != nil {
		t.Fatalf("expected a validator, got error: %v", err)
	}
	if v == nil || v.validator == nil {
		t.Fatal("expected a fully constructed validator")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	v, err := NewTokenValidator("tenant.auth0.com", "https://api.murabaha.example")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_, err = v.ValidateToken(context.Background(), "not-a-real-jwt")
	if err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
