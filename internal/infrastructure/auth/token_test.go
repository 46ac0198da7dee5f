package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestParseUserID_StringSubject(t *testing.T) {
	req := require.New(t)
	token := signedToken(t, jwt.MapClaims{"sub": "42", "exp": time.Now().Add(time.Hour).Unix()})

	id, err := ParseUserID(token, testSecret)

	req.NoError(err)
	req.Equal(int64(42), id)
}

func TestParseUserID_NumericSubject(t *testing.T) {
	req := require.New(t)
	token := signedToken(t, jwt.MapClaims{"sub": 7})

	id, err := ParseUserID(token, testSecret)

	req.NoError(err)
	req.Equal(int64(7), id)
}

func TestParseUserID_WrongSecret(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "42"})

	_, err := ParseUserID(token, "other-secret")

	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserID_Expired(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "42", "exp": time.Now().Add(-time.Hour).Unix()})

	_, err := ParseUserID(token, testSecret)

	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserID_MissingSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"name": "someone"})

	_, err := ParseUserID(token, testSecret)

	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserID_Garbage(t *testing.T) {
	_, err := ParseUserID("not-a-token", testSecret)

	require.ErrorIs(t, err, ErrInvalidToken)
}
