package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/token"
	"github.com/jrsteele09/go-catalog-server/users"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

func TestIssueAndVerify(t *testing.T) {
	signer := token.NewSharedSecret(secretStr)
	raw, err := token.Issue(signer, "user-1", users.RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := token.NewVerifier(signer).Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, users.RoleAdmin, claims.Role)
}

func TestVerifyErrors(t *testing.T) {
	signer := token.NewSharedSecret(secretStr)
	verifier := token.NewVerifier(signer)

	_, err := verifier.Verify("")
	require.ErrorIs(t, err, apperrors.ErrMissingToken)

	expired, err := token.Issue(signer, "user-1", users.RoleCustomer, -time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(expired)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)

	otherSecret, err := token.Issue(token.NewSharedSecret("other"), "user-1", users.RoleCustomer, time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(otherSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = verifier.Verify("not.a.token")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	noExpiry, err := signer.Sign(token.AccessClaims{UserID: "user-1"})
	require.NoError(t, err)
	_, err = verifier.Verify(noExpiry)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	noUser, err := signer.Sign(token.AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	require.NoError(t, err)
	_, err = verifier.Verify(noUser)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, token.AccessClaims{
		UserID: "user-1",
		Role:   users.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = token.NewVerifier(token.NewSharedSecret(secretStr)).Verify(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestSharedSecretKeyfunc(t *testing.T) {
	secret := token.NewSharedSecret(secretStr)
	require.Equal(t, jwt.SigningMethodHS256, secret.Method())

	key, err := secret.Keyfunc(jwt.New(jwt.SigningMethodHS256))
	require.NoError(t, err)
	require.Equal(t, []byte(secretStr), key)

	_, err = secret.Keyfunc(jwt.New(jwt.SigningMethodRS256))
	require.ErrorContains(t, err, "want HS256")
}
