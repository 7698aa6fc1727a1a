// Package subscription defines purchasable packages, orders, entitlements
// and subscription delivery records.
package subscription

import "time"

// Package is a purchasable plan. Price is in coins, TrafficAmount in bytes.
type Package struct {
	ID            uint
	Name          string
	Description   string
	Price         int64
	DurationDays  int
	TrafficAmount int64
	IsActive      bool
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
