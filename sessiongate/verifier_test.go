package sessiongate

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	testIssuer   = "https://auth.example.com"
	testAudience = "app"
)

func testKeys() map[string][]byte {
	return map[string][]byte{"test-kid": []byte("super-secret")}
}

func newTestVerifier(t *testing.T) (*verifier, map[string][]byte) {
	t.Helper()

	keys := testKeys()
	return newVerifier(testIssuer, testAudience, keys), keys
}

func signToken(t *testing.T, claims jwt.Claims, key []byte) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = "test-kid"

	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	return s
}

func validClaims(userID uuid.UUID, expiresIn time.Duration) accessClaims {
	now := time.Now()

	return accessClaims{
		SessionID: "session-123",
		Email:     "user@example.com",
		Roles:     []string{"authgate:user"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  []string{testAudience},
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v, keys := newTestVerifier(t)

	userID := uuid.New()
	token := signToken(t, validClaims(userID, time.Hour), keys["test-kid"])

	u, err := v.verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.ID != userID {
		t.Fatalf("expected userID %v, got %v", userID, u.ID)
	}
	if u.Email != "user@example.com" {
		t.Fatalf("unexpected email %q", u.Email)
	}
	if len(u.Roles) != 1 || u.Roles[0] != "authgate:user" {
		t.Fatalf("unexpected roles: %v", u.Roles)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	v, keys := newTestVerifier(t)

	token := signToken(t, validClaims(uuid.New(), -time.Hour), keys["test-kid"])

	if _, err := v.verify(token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WithinClockSkew(t *testing.T) {
	v, keys := newTestVerifier(t)

	token := signToken(t, validClaims(uuid.New(), -time.Minute), keys["test-kid"])

	if _, err := v.verify(token); err != nil {
		t.Fatalf("expected token within leeway to verify, got %v", err)
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	v, keys := newTestVerifier(t)

	claims := validClaims(uuid.New(), time.Hour)
	claims.Audience = []string{"admin"}

	if _, err := v.verify(signToken(t, claims, keys["test-kid"])); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_MissingSessionID(t *testing.T) {
	v, keys := newTestVerifier(t)

	claims := validClaims(uuid.New(), time.Hour)
	claims.SessionID = ""

	if _, err := v.verify(signToken(t, claims, keys["test-kid"])); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_InvalidRoleNamespace(t *testing.T) {
	v, keys := newTestVerifier(t)

	claims := validClaims(uuid.New(), time.Hour)
	claims.Roles = []string{"user"}

	if _, err := v.verify(signToken(t, claims, keys["test-kid"])); err != ErrInvalidRoleNamespace {
		t.Fatalf("expected ErrInvalidRoleNamespace, got %v", err)
	}
}

func TestVerify_UnknownKeyID(t *testing.T) {
	v, _ := newTestVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(uuid.New(), time.Hour))
	token.Header["kid"] = "unknown"

	s, err := token.SignedString([]byte("wrong-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := v.verify(s); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
