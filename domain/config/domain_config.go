package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// User constraints
	MinUsernameLength int
	MaxUsernameLength int
	MinPasswordLength int
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength int

	// Tree constraints
	MaxOperationsPerTree int
	MaxAbsNumber         float64

	// Session
	TokenTTL     time.Duration
	CookieMaxAge time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinUsernameLength: 3,
		MaxUsernameLength: 50,
		MinPasswordLength: 8,
		MaxPasswordLength: 72,

		MaxOperationsPerTree: 10000,
		MaxAbsNumber:         1e15,

		TokenTTL:     10 * 24 * time.Hour,
		CookieMaxAge: 24 * time.Hour,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxOperationsPerTree = 5000
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxOperationsPerTree = 100000
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinUsernameLength < 1 || c.MaxUsernameLength < c.MinUsernameLength {
		return fmt.Errorf("invalid username length bounds %d..%d", c.MinUsernameLength, c.MaxUsernameLength)
	}
	if c.MinPasswordLength < 1 || c.MaxPasswordLength < c.MinPasswordLength {
		return fmt.Errorf("invalid password length bounds %d..%d", c.MinPasswordLength, c.MaxPasswordLength)
	}
	if c.MaxPasswordLength > 72 {
		return fmt.Errorf("max password length %d exceeds the bcrypt limit of 72 bytes", c.MaxPasswordLength)
	}
	if c.MaxOperationsPerTree <= 0 {
		return fmt.Errorf("max operations per tree must be positive")
	}
	if c.MaxAbsNumber <= 0 {
		return fmt.Errorf("max absolute number must be positive")
	}
	return nil
}
