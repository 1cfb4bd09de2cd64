package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iamasit07/puissance4/internal/config"
)

func useSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: secret}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestTokenRoundTrip(t *testing.T) {
	useSecret(t, "test-secret")

	token, err := GenerateToken("u-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" || claims.Username != "alice" || claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	admin, _ := GenerateAdminToken("root")
	claims, err = ValidateToken(admin)
	if err != nil || !claims.IsAdmin {
		t.Fatalf("expected admin claims, got %+v (%v)", claims, err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	useSecret(t, "first")
	token, _ := GenerateToken("u-1", "alice")

	config.AppConfig.JWTSecret = "second"
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, _ := expired.SignedString([]byte("second"))
	if _, err := ValidateToken(signed); err == nil {
		t.Fatalf("expired token must be rejected")
	}

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatalf("garbage must be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatalf("wrong password accepted")
	}
	if CheckPasswordHash("s3cret", "") {
		t.Fatalf("empty hash must never match")
	}
}
