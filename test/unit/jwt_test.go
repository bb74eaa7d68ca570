package unit

import (
	"testing"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
)

func TestJWTMintAndParse(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint(auth.Claims{
		UserID: 7,
		Email:  "admin@nunmfb.com",
		Role:   auth.RoleAdmin,
		Type:   auth.TokenTypeStaff,
	}, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != 7 || claims.Role != auth.RoleAdmin || claims.Type != auth.TokenTypeStaff {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTPartnerClaimsCarryOrganization(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint(auth.Claims{
		UserID:         3,
		Role:           auth.RolePartnerAdmin,
		OrganizationID: 42,
		Type:           auth.TokenTypePartner,
	}, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.OrganizationID != 42 || claims.Type != auth.TokenTypePartner {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsWrongKeyAndExpiry(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	other := auth.NewJWTManager("issuer", "aud", "different-secret")

	tok, err := m.Mint(auth.Claims{UserID: 1, Type: auth.TokenTypeStaff}, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected parse failure with wrong key")
	}

	expired, err := m.Mint(auth.Claims{UserID: 1, Type: auth.TokenTypeStaff}, -time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := m.Parse(expired); err == nil {
		t.Fatalf("expected parse failure for expired token")
	}
}
