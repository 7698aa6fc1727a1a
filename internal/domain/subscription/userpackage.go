package subscription

import "time"

// UserPackageStatus tracks an entitlement's lifecycle.
type UserPackageStatus string

const (
	UserPackageStatusActive    UserPackageStatus = "active"
	UserPackageStatusExpired   UserPackageStatus = "expired"
	UserPackageStatusCancelled UserPackageStatus = "cancelled"
)

// UserPackage is an entitlement created by a completed purchase. It carries
// its own traffic budget, copied from the package at purchase time, and
// links back to the order that paid for it.
type UserPackage struct {
	ID           uint
	UserID       uint
	PackageID    uint
	OrderID      uint
	TrafficQuota int64
	TrafficUsed  int64
	ExpiresAt    time.Time
	Status       UserPackageStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exhausted reports whether the entitlement's own traffic budget is spent.
func (p *UserPackage) Exhausted() bool {
	return p.TrafficUsed >= p.TrafficQuota
}

// ValidAt reports whether the entitlement grants access at the given time.
func (p *UserPackage) ValidAt(t time.Time) bool {
	return p.Status == UserPackageStatusActive && p.ExpiresAt.After(t) && !p.Exhausted()
}
