// Package user defines the user aggregate and its invariants.
package user

import (
	"time"

	"veil/internal/shared/errors"
	"veil/internal/shared/utils"
)

// Status represents the account state.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDisabled
}

// User is the account aggregate. Balance is denominated in coins,
// traffic fields in bytes.
type User struct {
	ID           uint
	Email        string
	PasswordHash string
	Balance      int64
	TrafficQuota int64
	TrafficUsed  int64
	Status       Status
	IsAdmin      bool
	ReferralCode string
	ReferredBy   *uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates input and builds a user pending persistence.
// The password hash and referral code are produced by the caller.
func NewUser(email, passwordHash, referralCode string, referredBy *uint) (*User, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, errors.NewValidationError("password hash is required")
	}
	if err := utils.ValidateReferralCode(referralCode); err != nil {
		return nil, err
	}

	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Status:       StatusActive,
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
	}, nil
}

// IsDisabled reports whether the account is blocked from all service access.
func (u *User) IsDisabled() bool {
	return u.Status == StatusDisabled
}

// HasTraffic reports whether the account still has quota left.
func (u *User) HasTraffic() bool {
	return u.TrafficUsed < u.TrafficQuota
}

// CanAfford reports whether the balance covers the given price.
func (u *User) CanAfford(price int64) bool {
	return u.Balance >= price
}

// WasReferredBy reports whether the user was referred by another account.
// Self-referrals are never counted.
func (u *User) WasReferredBy() (uint, bool) {
	if u.ReferredBy == nil || *u.ReferredBy == u.ID {
		return 0, false
	}
	return *u.ReferredBy, true
}
