package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	token := sign(t, Claims{
		UserID:           1,
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	})

	claims, err := Inspect(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 1 || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.Expiry().Equal(exp) {
		t.Errorf("expiry = %v, want %v", claims.Expiry(), exp)
	}
	if claims.Expired(time.Now()) {
		t.Error("fresh token reported expired")
	}
	if !claims.Expired(exp.Add(time.Minute)) {
		t.Error("token not expired after exp")
	}
}

func TestInspectOpaqueToken(t *testing.T) {
	if _, err := Inspect("not-a-jwt"); err == nil {
		t.Error("expected error for opaque token")
	}
}

func TestNoExpiry(t *testing.T) {
	claims, err := Inspect(sign(t, Claims{Role: "viewer"}))
	if err != nil {
		t.Fatal(err)
	}
	if !claims.Expiry().IsZero() || claims.Expired(time.Now()) {
		t.Error("token without exp must never be expired")
	}
}
