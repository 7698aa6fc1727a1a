package node

import "time"

// TrafficLog is one applied usage sample, kept as an append-only audit
// trail of per-user consumption on each node.
type TrafficLog struct {
	ID         uint
	UserID     uint
	NodeID     uint
	Upload     int64
	Download   int64
	RecordedAt time.Time
}
