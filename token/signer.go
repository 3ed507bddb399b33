package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer holds the key material for access tokens issued by the auth service
type Signer interface {
	Sign(claims AccessClaims) (string, error)
	// Keyfunc hands the verification key to jwt.Parse
	Keyfunc(token *jwt.Token) (any, error)
	Method() jwt.SigningMethod
}

// SharedSecret verifies HS256 tokens with the secret shared with the auth service
type SharedSecret struct {
	secret []byte
}

var _ Signer = (*SharedSecret)(nil)

func NewSharedSecret(secret string) *SharedSecret {
	return &SharedSecret{secret: []byte(secret)}
}

// Sign mints a token the catalog accepts. Only tooling and tests issue tokens.
func (s *SharedSecret) Sign(claims AccessClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

func (s *SharedSecret) Keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("access token signed with %v, want HS256", token.Header["alg"])
	}
	return s.secret, nil
}

func (s *SharedSecret) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
