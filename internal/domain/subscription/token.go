package subscription

import "time"

// Token is a user's long-lived subscription credential, embedded in the
// /sub/{token} URL handed to proxy clients.
type Token struct {
	ID           uint
	UserID       uint
	Token        string
	LastAccessed *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccessResult classifies the outcome of a subscription fetch for access logs.
type AccessResult string

const (
	AccessSuccess       AccessResult = "success"
	AccessDisabled      AccessResult = "disabled"
	AccessQuotaExceeded AccessResult = "quota_exceeded"
	AccessExpired       AccessResult = "expired"
	AccessFailed        AccessResult = "failed"
)

// AccessLog records one subscription fetch.
type AccessLog struct {
	ID        uint
	UserID    uint
	Token     string
	ClientIP  string
	UserAgent string
	Result    AccessResult
	CreatedAt time.Time
}
