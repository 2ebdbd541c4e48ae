package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
)

func testConfig() JWTConfig {
	return JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "test-secret",
		Issuer:        "numtree",
		Audience:      []string{"numtree-api"},
		ExpiryTime:    time.Hour,
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	gen, err := NewJWTGenerator(testConfig())
	require.NoError(t, err)
	val, err := NewJWTValidator(testConfig())
	require.NoError(t, err)

	user := &entities.User{ID: 42, Username: "alice", Role: valueobjects.RoleRegistered}
	token, expiresAt, err := gen.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := val.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "REGISTERED", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_UniqueTokenIDs(t *testing.T) {
	gen, err := NewJWTGenerator(testConfig())
	require.NoError(t, err)
	val, err := NewJWTValidator(testConfig())
	require.NoError(t, err)

	a, _, err := gen.GenerateToken(1, "a", "UNREGISTERED")
	require.NoError(t, err)
	b, _, err := gen.GenerateToken(1, "a", "UNREGISTERED")
	require.NoError(t, err)

	ca, err := val.ValidateToken(a)
	require.NoError(t, err)
	cb, err := val.ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestJWT_Rejections(t *testing.T) {
	val, err := NewJWTValidator(testConfig())
	require.NoError(t, err)

	_, err = val.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = val.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherCfg := testConfig()
	otherCfg.SecretKey = "other-secret"
	other, err := NewJWTGenerator(otherCfg)
	require.NoError(t, err)
	forged, _, err := other.GenerateToken(1, "a", "REGISTERED")
	require.NoError(t, err)
	_, err = val.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	expiredGen, err := NewJWTGenerator(testConfig())
	require.NoError(t, err)
	expiredGen.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredGen.GenerateToken(1, "a", "REGISTERED")
	require.NoError(t, err)
	_, err = val.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	wrongIssuer := testConfig()
	wrongIssuer.Issuer = "someone-else"
	gen, err := NewJWTGenerator(wrongIssuer)
	require.NoError(t, err)
	tok, _, err := gen.GenerateToken(1, "a", "REGISTERED")
	require.NoError(t, err)
	_, err = val.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	// Unsigned tokens never validate
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = val.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestJWT_Config(t *testing.T) {
	_, err := NewJWTGenerator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "ES512", SecretKey: "x"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: 3, Role: "REGISTERED"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)
	assert.True(t, user.HasRole("REGISTERED"))
}
