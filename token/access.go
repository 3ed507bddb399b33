package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessClaims are the claims of an access token issued by the auth service
type AccessClaims struct {
	UserID string         `json:"userId"`
	Role   users.RoleType `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) IsAdmin() bool {
	return c != nil && c.Role == users.RoleAdmin
}

// Verifier validates access tokens
type Verifier struct {
	signer Signer
}

func NewVerifier(signer Signer) *Verifier {
	return &Verifier{signer: signer}
}

// Verify parses and validates a raw access token.
// Expired tokens return errors.ErrTokenExpired, anything else unusable errors.ErrInvalidToken.
func (v *Verifier) Verify(rawToken string) (*AccessClaims, error) {
	if rawToken == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.signer.Keyfunc,
		jwt.WithValidMethods([]string{v.signer.Method().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperrors.ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	if claims.UserID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "missing userId")
	}
	return claims, nil
}

// Issue signs an access token for a user. Issuance belongs to the auth service;
// this exists for tooling and tests that need a token the catalog will accept.
func Issue(signer Signer, userID string, role users.RoleType, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	return signer.Sign(AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}
