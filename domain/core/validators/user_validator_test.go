package validators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numtree-backend/domain/config"
	"numtree-backend/pkg/errors"
)

func TestValidateSignUp(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		fields   []string
	}{
		{"valid", "alice", "alice@example.com", "password123", nil},
		{"short username", "al", "alice@example.com", "password123", []string{"username"}},
		{"username with spaces", "al ice", "alice@example.com", "password123", []string{"username"}},
		{"bad email", "alice", "not-an-email", "password123", []string{"email"}},
		{"display name email", "alice", "Alice <alice@example.com>", "password123", []string{"email"}},
		{"short password", "alice", "alice@example.com", "short", []string{"password"}},
		{"everything wrong", "a", "x", "y", []string{"username", "email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignUp(tt.username, tt.email, tt.password)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Len(t, appErr.Details, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, appErr.Details, f)
			}
		})
	}
}

func TestValidateSignUp_PasswordOverBcryptLimit(t *testing.T) {
	v := NewValidator(config.DefaultDomainConfig())
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	err := v.ValidateSignUp("alice", "alice@example.com", string(long))

	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Details, "password")
}

func TestValidateNumber(t *testing.T) {
	v := NewValidator(nil)

	assert.NoError(t, v.ValidateNumber("rightNumber", 0))
	assert.NoError(t, v.ValidateNumber("rightNumber", -42.5))
	assert.Error(t, v.ValidateNumber("rightNumber", math.NaN()))
	assert.Error(t, v.ValidateNumber("rightNumber", math.Inf(1)))
	assert.Error(t, v.ValidateNumber("rightNumber", 1e16))
}

func TestValidateOperationCount(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxOperationsPerTree = 2
	v := NewValidator(cfg)

	assert.NoError(t, v.ValidateOperationCount(1))
	assert.Error(t, v.ValidateOperationCount(2))
}
