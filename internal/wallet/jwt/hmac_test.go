package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/pavelgs/walletpay/internal/config"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		JWTAlgorithm:    "HS256",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

func TestHMACIssuer_IssueVerify(t *testing.T) {
	issuer, err := NewHMACIssuer(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	token, exp, err := issuer.IssueAccess(42)
	if err != nil || exp.IsZero() {
		t.Fatalf("bad issue: %v", err)
	}
	userID, err := issuer.Verify(token, TypeAccess)
	if err != nil {
		t.Fatal(err)
	}
	if userID != 42 {
		t.Fatalf("want subject 42, got %d", userID)
	}
}

func TestHMACIssuer_WrongType(t *testing.T) {
	issuer, _ := NewHMACIssuer(testConfig())

	refresh, _, err := issuer.IssueRefresh(7)
	if err != nil {
		t.Fatal(err)
	}
	// A perfectly fresh refresh token must not pass as access.
	if _, err := issuer.Verify(refresh, TypeAccess); !errors.Is(err, walletErrors.ErrTokenWrongType) {
		t.Fatalf("want ErrTokenWrongType, got %v", err)
	}

	access, _, err := issuer.IssueAccess(7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(access, TypeRefresh); !errors.Is(err, walletErrors.ErrTokenWrongType) {
		t.Fatalf("want ErrTokenWrongType, got %v", err)
	}
}

func TestHMACIssuer_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	issuer, _ := NewHMACIssuer(cfg)

	token, _, err := issuer.IssueAccess(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(token, TypeAccess); !errors.Is(err, walletErrors.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestHMACIssuer_BadSignature(t *testing.T) {
	issuer, _ := NewHMACIssuer(testConfig())

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	other, _ := NewHMACIssuer(otherCfg)

	token, _, err := other.IssueAccess(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(token, TypeAccess); !errors.Is(err, walletErrors.ErrTokenSignature) {
		t.Fatalf("want ErrTokenSignature, got %v", err)
	}

	// Same secret but a different HS algorithm is also a signature failure.
	hs512 := testConfig()
	hs512.JWTAlgorithm = "HS512"
	alt, err := NewHMACIssuer(hs512)
	if err != nil {
		t.Fatal(err)
	}
	token512, _, err := alt.IssueAccess(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(token512, TypeAccess); !errors.Is(err, walletErrors.ErrTokenSignature) {
		t.Fatalf("want ErrTokenSignature for alg mismatch, got %v", err)
	}
}

func TestHMACIssuer_Malformed(t *testing.T) {
	issuer, _ := NewHMACIssuer(testConfig())
	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.Verify(bad, TypeAccess); !errors.Is(err, walletErrors.ErrTokenMalformed) {
			t.Fatalf("want ErrTokenMalformed for %q, got %v", bad, err)
		}
	}
}

func TestNewHMACIssuer_RejectsNonHMAC(t *testing.T) {
	cfg := testConfig()
	cfg.JWTAlgorithm = "RS256"
	if _, err := NewHMACIssuer(cfg); err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}
	cfg.JWTAlgorithm = "nonsense"
	if _, err := NewHMACIssuer(cfg); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
