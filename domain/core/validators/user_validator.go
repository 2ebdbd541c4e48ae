package validators

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"

	"numtree-backend/domain/config"
	"numtree-backend/pkg/errors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validator checks domain rules that struct tags cannot express
type Validator struct {
	cfg *config.DomainConfig
}

// NewValidator creates a validator for the given rules
func NewValidator(cfg *config.DomainConfig) *Validator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Validator{cfg: cfg}
}

// ValidateSignUp validates new account details. All failing fields are
// reported together in the error details.
func (v *Validator) ValidateSignUp(username, email, password string) error {
	fields := make(map[string]interface{})

	username = strings.TrimSpace(username)
	switch {
	case len(username) < v.cfg.MinUsernameLength:
		fields["username"] = fmt.Sprintf("must be at least %d characters", v.cfg.MinUsernameLength)
	case len(username) > v.cfg.MaxUsernameLength:
		fields["username"] = fmt.Sprintf("must be at most %d characters", v.cfg.MaxUsernameLength)
	case !usernamePattern.MatchString(username):
		fields["username"] = "may only contain letters, digits, '_', '.' and '-'"
	}

	if addr, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil || addr.Address != strings.TrimSpace(email) {
		fields["email"] = "must be a valid email address"
	}

	switch {
	case len(password) < v.cfg.MinPasswordLength:
		fields["password"] = fmt.Sprintf("must be at least %d characters", v.cfg.MinPasswordLength)
	case len(password) > v.cfg.MaxPasswordLength:
		fields["password"] = fmt.Sprintf("must be at most %d bytes", v.cfg.MaxPasswordLength)
	}

	if len(fields) > 0 {
		return errors.NewValidationError("Invalid sign-up details").WithDetails(fields)
	}
	return nil
}

// ValidateNumber rejects NaN, infinities and magnitudes above the configured bound
func (v *Validator) ValidateNumber(field string, n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > v.cfg.MaxAbsNumber {
		return errors.NewValidationError(fmt.Sprintf("%s is out of range", field)).
			WithDetails(map[string]interface{}{"field": field, "max_abs": v.cfg.MaxAbsNumber})
	}
	return nil
}

// ValidateOperationCount rejects a new operation once a tree is full
func (v *Validator) ValidateOperationCount(current int) error {
	if current >= v.cfg.MaxOperationsPerTree {
		return errors.NewValidationError("Tree has reached its operation limit").
			WithDetails(map[string]interface{}{"max_operations": v.cfg.MaxOperationsPerTree})
	}
	return nil
}
