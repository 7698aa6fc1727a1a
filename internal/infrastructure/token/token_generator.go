// Package token generates the platform's random credentials.
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	subscriptionTokenLength = 64
	nodeSecretLength        = 32
	referralCodeLength      = 8

	alphanumeric      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Generator interface {
	SubscriptionToken() (string, error)
	NodeSecret() (string, error)
	ReferralCode() (string, error)
}

type generator struct{}

func NewGenerator() Generator {
	return &generator{}
}

// SubscriptionToken returns a 64 character alphanumeric credential.
func (g *generator) SubscriptionToken() (string, error) {
	return randomString(alphanumeric, subscriptionTokenLength)
}

// NodeSecret returns a 32 character alphanumeric credential.
func (g *generator) NodeSecret() (string, error) {
	return randomString(alphanumeric, nodeSecretLength)
}

// ReferralCode returns an 8 character uppercase alphanumeric code.
func (g *generator) ReferralCode() (string, error) {
	return randomString(upperAlphanumeric, referralCodeLength)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
