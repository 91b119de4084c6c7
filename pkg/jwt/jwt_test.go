package jwt

import (
	"errors"
	"testing"
	"time"

	"medical-scheduling/config"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", AccessExpiry: time.Minute})
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "dr@example.com", "physician")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != userID || claims.Role != "physician" || claims.TokenID != tokenID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateRejectsForeignSecretAndIssuer(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "other", Issuer: "identity", AccessExpiry: time.Minute})
	token, _, err := issuer.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatal(err)
	}

	svc := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", AccessExpiry: time.Minute})
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted token signed with a different secret")
	}

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "someone-else", AccessExpiry: time.Minute})
	token, _, err = wrongIssuer.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted token from a different issuer")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", AccessExpiry: -time.Minute})
	token, _, err := svc.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted expired token")
	}
}

func TestValidateLeewayAndTokenType(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", AccessExpiry: -10 * time.Second})
	token, _, err := issuer.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatal(err)
	}

	lenient := NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", Leeway: time.Minute})
	if _, err := lenient.ValidateToken(token); err != nil {
		t.Errorf("ValidateToken() rejected token within leeway: %v", err)
	}

	refresh := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		UserID:    uuid.New(),
		TokenType: "refresh",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "identity",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := refresh.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lenient.ValidateToken(signed); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateToken() error = %v, want ErrWrongTokenType", err)
	}
	if _, err := lenient.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}
