package subscription

import "time"

// ProxyGroupType is the Clash proxy-group strategy.
type ProxyGroupType string

const (
	ProxyGroupSelect  ProxyGroupType = "select"
	ProxyGroupURLTest ProxyGroupType = "url-test"
)

// ClashProxyGroup is an admin-managed proxy-group definition rendered into
// subscription documents.
type ClashProxyGroup struct {
	ID        uint
	Name      string
	Type      ProxyGroupType
	URL       string
	Interval  int
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClashRule is an admin-managed routing rule rendered into subscription
// documents, e.g. DOMAIN-SUFFIX,example.com,Proxy. NoResolve appends the
// no-resolve option for IP-based rules.
type ClashRule struct {
	ID        uint
	RuleType  string
	Value     string
	Target    string
	NoResolve bool
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
