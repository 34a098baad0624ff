package sessiongate

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type accessClaims struct {
	SessionID string   `json:"sid"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`

	jwt.RegisteredClaims
}

type verifier struct {
	issuer   string
	audience string
	keys     map[string][]byte
	parser   *jwt.Parser
}

func newVerifier(issuer, audience string, keys map[string][]byte) *verifier {
	return &verifier{
		issuer:   issuer,
		audience: audience,
		keys:     keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithLeeway(clockSkew),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
		),
	}
}

func (v *verifier) verify(tokenString string) (*User, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &accessClaims{}, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	for _, role := range claims.Roles {
		if !strings.HasPrefix(role, rolePrefix) {
			return nil, ErrInvalidRoleNamespace
		}
	}

	return &User{ID: userID, Email: claims.Email, Roles: claims.Roles}, nil
}

func (v *verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, ok := t.Header["kid"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	key, ok := v.keys[kid]
	if !ok {
		return nil, ErrInvalidToken
	}

	return key, nil
}
