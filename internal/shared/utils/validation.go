package utils

import (
	"regexp"
	"unicode"

	"veil/internal/shared/errors"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	referralCodeRegex = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	subTokenRegex     = regexp.MustCompile(`^[a-zA-Z0-9]{64}$`)
	nodeSecretRegex   = regexp.MustCompile(`^[a-zA-Z0-9]{32}$`)
)

// ValidateEmail checks address syntax and length.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.NewValidationError("email is required")
	}
	if len(email) > 255 {
		return errors.NewValidationError("email must not exceed 255 characters")
	}
	if !emailRegex.MatchString(email) {
		return errors.NewValidationError("invalid email format")
	}
	return nil
}

// ValidatePassword enforces length bounds and requires at least one
// letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.NewValidationError("password must not exceed 128 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.NewValidationError("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidatePort checks a TCP/UDP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return errors.NewValidationError("port must be between 1 and 65535")
	}
	return nil
}

// ValidateReferralCode checks the 8 character uppercase alphanumeric format.
func ValidateReferralCode(code string) error {
	if !referralCodeRegex.MatchString(code) {
		return errors.NewValidationError("invalid referral code format")
	}
	return nil
}

// ValidateSubscriptionToken checks the 64 character alphanumeric format.
func ValidateSubscriptionToken(token string) error {
	if !subTokenRegex.MatchString(token) {
		return errors.NewValidationError("invalid subscription token format")
	}
	return nil
}

// ValidateNodeSecret checks the 32 character alphanumeric format.
func ValidateNodeSecret(secret string) error {
	if !nodeSecretRegex.MatchString(secret) {
		return errors.NewValidationError("invalid node secret format")
	}
	return nil
}
