package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co",
		"user+tag@example.com",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plain",
		"@example.com",
		"user@",
		"user@-example.com",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("passw0rd"))
	assert.NoError(t, ValidatePassword("Str0ngEnough"))

	assert.Error(t, ValidatePassword("short1"), "too short")
	assert.Error(t, ValidatePassword("allletters"), "no digit")
	assert.Error(t, ValidatePassword("12345678"), "no letter")
	assert.Error(t, ValidatePassword(strings.Repeat("a1", 65)), "too long")
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(1))
	assert.NoError(t, ValidatePort(8388))
	assert.NoError(t, ValidatePort(65535))

	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(-1))
	assert.Error(t, ValidatePort(65536))
}

func TestValidateReferralCode(t *testing.T) {
	assert.NoError(t, ValidateReferralCode("ABCD1234"))

	assert.Error(t, ValidateReferralCode(""))
	assert.Error(t, ValidateReferralCode("abcd1234"), "lowercase rejected")
	assert.Error(t, ValidateReferralCode("ABC123"), "too short")
	assert.Error(t, ValidateReferralCode("ABCD12345"), "too long")
}

func TestValidateSubscriptionToken(t *testing.T) {
	assert.NoError(t, ValidateSubscriptionToken(strings.Repeat("aB9", 21)+"c"))

	assert.Error(t, ValidateSubscriptionToken(""))
	assert.Error(t, ValidateSubscriptionToken(strings.Repeat("a", 63)))
	assert.Error(t, ValidateSubscriptionToken(strings.Repeat("a", 65)))
	assert.Error(t, ValidateSubscriptionToken(strings.Repeat("a", 63)+"-"))
}

func TestValidateNodeSecret(t *testing.T) {
	assert.NoError(t, ValidateNodeSecret(strings.Repeat("x7", 16)))

	assert.Error(t, ValidateNodeSecret(""))
	assert.Error(t, ValidateNodeSecret(strings.Repeat("x", 31)))
	assert.Error(t, ValidateNodeSecret(strings.Repeat("x", 33)))
}
