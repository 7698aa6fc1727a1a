package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "single forwarded entry",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:    "203.0.113.7",
		},
		{
			name:    "first forwarded entry wins",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded entry trimmed",
			headers: map[string]string{"X-Forwarded-For": "  203.0.113.7 , 10.0.0.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.3"},
			want:    "198.51.100.3",
		},
		{
			name: "forwarded preferred over real ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7",
				"X-Real-IP":       "198.51.100.3",
			},
			want: "203.0.113.7",
		},
		{
			name:    "no headers",
			headers: nil,
			want:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
