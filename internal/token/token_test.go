package token

import (
	"errors"
	"testing"
	"time"

	"github.com/motormania/motormania-go/internal/clock"
	"github.com/motormania/motormania-go/internal/model"
)

func testConfig() Config {
	return Config{
		Secret:     "test-secret",
		Issuer:     "motormania.com",
		Audience:   "motormania.com",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func testUser() model.User {
	return model.User{ID: 42, Name: "Test User", Email: "test@example.com"}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)
	validator := NewValidator(testConfig(), clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	identity, err := validator.ValidateAccess(signed)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if identity.ID != 42 {
		t.Errorf("expected ID 42, got %d", identity.ID)
	}
	if identity.Name != "Test User" {
		t.Errorf("expected name Test User, got %q", identity.Name)
	}
	if identity.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %q", identity.Email)
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)
	validator := NewValidator(testConfig(), clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	clk.Advance(2 * time.Hour)

	_, err = validator.ValidateAccess(signed)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestValidateAccess_NotYetValid(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	// Validate with a clock behind the issue time.
	past := clock.NewMockClock(time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC))
	validator := NewValidator(testConfig(), past)

	_, err = validator.ValidateAccess(signed)
	if !errors.Is(err, ErrNotYetValid) {
		t.Errorf("expected ErrNotYetValid, got %v", err)
	}
}

func TestValidateAccess_WrongSecret(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	cfg := testConfig()
	cfg.Secret = "another-secret"
	validator := NewValidator(cfg, clk)

	_, err = validator.ValidateAccess(signed)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateAccess_WrongIssuer(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := testConfig()
	cfg.Issuer = "someone-else.com"
	issuer := NewIssuer(cfg, clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	validator := NewValidator(testConfig(), clk)
	_, err = validator.ValidateAccess(signed)
	if !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestValidateAccess_WrongAudience(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := testConfig()
	cfg.Audience = "other-app.com"
	issuer := NewIssuer(cfg, clk)

	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	validator := NewValidator(testConfig(), clk)
	_, err = validator.ValidateAccess(signed)
	if !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestValidateAccess_Garbage(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	validator := NewValidator(testConfig(), clk)

	_, err := validator.ValidateAccess("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)
	validator := NewValidator(testConfig(), clk)

	signed, expiresAt, err := issuer.RefreshToken(42)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	wantExpiry := clk.Now().Add(testConfig().RefreshTTL)
	if !expiresAt.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, expiresAt)
	}

	userID, err := validator.ValidateRefresh(signed)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user ID 42, got %d", userID)
	}
}

func TestValidateRefresh_Expired(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)
	validator := NewValidator(testConfig(), clk)

	signed, _, err := issuer.RefreshToken(42)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}

	clk.Advance(8 * 24 * time.Hour)

	_, err = validator.ValidateRefresh(signed)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestValidateRefresh_RejectsAccessSubject(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer(testConfig(), clk)
	validator := NewValidator(testConfig(), clk)

	// Access tokens have no subject claim, so they cannot pass as refresh tokens.
	signed, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	_, err = validator.ValidateRefresh(signed)
	if !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestFromBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"lowercase prefix", "bearer abc.def.ghi", "abc.def.ghi", nil},
		{"missing header", "", "", ErrMissingHeader},
		{"no prefix", "abc.def.ghi", "", ErrMalformedHeader},
		{"prefix only", "Bearer ", "", ErrMalformedHeader},
		{"wrong scheme", "Basic abc", "", ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBearer(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
