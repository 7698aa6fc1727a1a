package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserStatName(t *testing.T) {
	tests := []struct {
		name          string
		stat          string
		wantEmail     string
		wantDirection string
		wantOK        bool
	}{
		{
			name:          "uplink counter",
			stat:          "user>>>alice@example.com>>>traffic>>>uplink",
			wantEmail:     "alice@example.com",
			wantDirection: "uplink",
			wantOK:        true,
		},
		{
			name:          "downlink counter",
			stat:          "user>>>bob@example.com>>>traffic>>>downlink",
			wantEmail:     "bob@example.com",
			wantDirection: "downlink",
			wantOK:        true,
		},
		{
			name:   "inbound counter ignored",
			stat:   "inbound>>>api>>>traffic>>>uplink",
			wantOK: false,
		},
		{
			name:   "unknown direction",
			stat:   "user>>>alice@example.com>>>traffic>>>sideways",
			wantOK: false,
		},
		{
			name:   "too few segments",
			stat:   "user>>>alice@example.com",
			wantOK: false,
		},
		{
			name:   "empty string",
			stat:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, direction, ok := parseUserStatName(tt.stat)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantEmail, email)
				assert.Equal(t, tt.wantDirection, direction)
			}
		})
	}
}
