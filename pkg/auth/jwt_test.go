package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/entrada-hq/entrada/pkg/auth"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	venueID := int64(7)
	token, err := auth.NewAccessToken(42, "front@venue.test", "receptionist", &venueID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := auth.Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != 42 {
		t.Errorf("sub = %d, want 42", claims.Sub)
	}
	if claims.Email != "front@venue.test" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "receptionist" {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.VenueID == nil || *claims.VenueID != 7 {
		t.Errorf("venue_id = %v, want 7", claims.VenueID)
	}
}

func TestTokenWithoutVenue(t *testing.T) {
	token, err := auth.NewAccessToken(1, "admin@hq.test", "system_administrator", nil, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := auth.Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.VenueID != nil {
		t.Errorf("venue_id = %v, want nil", claims.VenueID)
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := auth.NewAccessToken(1, "a@b.test", "receptionist", nil, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = auth.Parse(token, testSecret)
	if !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestWrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken(1, "a@b.test", "receptionist", nil, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = auth.Parse(token, "other-secret")
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestGarbageToken(t *testing.T) {
	_, err := auth.Parse("not.a.token", testSecret)
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
