package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
		{26 * time.Hour, "1d2h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestSince(t *testing.T) {
	start := time.Now().Add(-1500 * time.Millisecond)
	got := Since(start)
	assert.GreaterOrEqual(t, got, time.Second)
	assert.Zero(t, got%time.Second, "expected whole seconds")
}
