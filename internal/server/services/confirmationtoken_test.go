package services

import (
	"errors"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/common"
)

func TestConfirmationToken_RoundTrip(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, err := s.GenerateEmailConfirmationToken(7, "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id, _ := claims.UserID(); id != 7 {
		t.Fatalf("sub = %d, want 7", id)
	}
	if claims.Email != "alice@example.com" || claims.TokenKind != KindEmailConfirmation {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.NewEmail != nil {
		t.Fatalf("email-confirmation token must not carry new_email")
	}
	if claims.ID == "" {
		t.Fatalf("token must carry a unique id")
	}
}

func TestConfirmationToken_EmailChangeCarriesNewEmail(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, err := s.GenerateEmailChangeToken(7, "old@example.com", "new@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenKind != KindEmailChange || claims.NewEmail == nil || *claims.NewEmail != "new@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())
	token, _ := s.GeneratePasswordResetToken(1, "a@example.com")

	cfg := testConfig()
	cfg.ConfirmationTokenSecret = "different"
	other := NewConfirmationTokenService(cfg)

	_, err := other.ValidateToken(token)
	var authErr *common.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthenticationError, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.ConfirmationTokenTTL = -time.Minute
	s := NewConfirmationTokenService(cfg)

	token, _ := s.GenerateEmailConfirmationToken(1, "a@example.com")
	_, err := s.ValidateToken(token)
	var authErr *common.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthenticationError, got %v", err)
	}
}

func TestValidateStoredToken_SupersededTokenRejected(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	old, _ := s.GenerateEmailConfirmationToken(1, "a@example.com")
	newer, _ := s.GeneratePasswordResetToken(1, "a@example.com") // any distinct stored value
	expiry := time.Now().Add(time.Hour)

	// The old token is still well-formed and unexpired, but no longer the
	// one on record.
	_, err := s.ValidateStoredToken(old, &newer, &expiry, KindEmailConfirmation)
	var authzErr *common.AuthorizationError
	if !errors.As(err, &authzErr) || authzErr.Key != "auth.errors.invalid_token" {
		t.Fatalf("want AuthorizationError invalid_token, got %v", err)
	}
}

func TestValidateStoredToken_KindMismatch(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, _ := s.GeneratePasswordResetToken(1, "a@example.com")
	expiry := time.Now().Add(time.Hour)

	_, err := s.ValidateStoredToken(token, &token, &expiry, KindEmailConfirmation)
	var authzErr *common.AuthorizationError
	if !errors.As(err, &authzErr) || authzErr.Key != "auth.errors.invalid_token_type" {
		t.Fatalf("want AuthorizationError invalid_token_type, got %v", err)
	}
}

func TestValidateStoredToken_NoStoredToken(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, _ := s.GenerateEmailConfirmationToken(1, "a@example.com")
	_, err := s.ValidateStoredToken(token, nil, nil, KindEmailConfirmation)
	var authzErr *common.AuthorizationError
	if !errors.As(err, &authzErr) {
		t.Fatalf("want AuthorizationError, got %v", err)
	}
}

func TestValidateStoredToken_StoredExpiryElapsed(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, _ := s.GenerateEmailConfirmationToken(1, "a@example.com")
	expiry := time.Now().Add(-time.Minute)

	_, err := s.ValidateStoredToken(token, &token, &expiry, KindEmailConfirmation)
	var authzErr *common.AuthorizationError
	if !errors.As(err, &authzErr) || authzErr.Key != "auth.errors.expired_token" {
		t.Fatalf("want AuthorizationError expired_token, got %v", err)
	}
}

func TestValidateStoredToken_Valid(t *testing.T) {
	s := NewConfirmationTokenService(testConfig())

	token, _ := s.GenerateEmailConfirmationToken(9, "a@example.com")
	expiry := time.Now().Add(time.Hour)

	claims, err := s.ValidateStoredToken(token, &token, &expiry, KindEmailConfirmation)
	if err != nil {
		t.Fatalf("ValidateStoredToken: %v", err)
	}
	if id, _ := claims.UserID(); id != 9 {
		t.Fatalf("sub = %d, want 9", id)
	}
}
