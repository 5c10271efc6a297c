package utils

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// MFAConfig holds configuration for officer step-up authentication
type MFAConfig struct {
	Issuer     string
	Period     uint
	Digits     otp.Digits
	Algorithm  otp.Algorithm
	SecretSize uint
}

// DefaultMFAConfig returns the default TOTP configuration
func DefaultMFAConfig() MFAConfig {
	return MFAConfig{
		Issuer:     "StarFinance",
		Period:     30,
		Digits:     otp.DigitsSix,
		Algorithm:  otp.AlgorithmSHA1,
		SecretSize: 20,
	}
}

// MFAKey represents a provisioned TOTP key
type MFAKey struct {
	Secret string
	URL    string
}

// GenerateTOTPKey generates a new TOTP key for an officer account
func GenerateTOTPKey(config MFAConfig, accountName string) (*MFAKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      config.Issuer,
		AccountName: accountName,
		Period:      config.Period,
		Digits:      config.Digits,
		Algorithm:   config.Algorithm,
		SecretSize:  config.SecretSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return &MFAKey{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// ValidateTOTPCode checks a submitted TOTP code against the secret
func ValidateTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
