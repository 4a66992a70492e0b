package balance_test

import (
	"testing"
	"time"

	"go-workforce/internal/balance"

	"github.com/stretchr/testify/assert"
)

func TestCycleContaining(t *testing.T) {
	tests := []struct {
		name       string
		at         time.Time
		startMonth int
		wantStart  string
		wantEnd    string
	}{
		{"calendar year", date("2026-06-15"), 1, "2026-01-01", "2027-01-01"},
		{"first day of cycle", date("2026-04-01"), 4, "2026-04-01", "2027-04-01"},
		{"before cycle start rolls back", date("2026-03-31"), 4, "2025-04-01", "2026-04-01"},
		{"invalid month falls back to january", date("2026-02-01"), 13, "2026-01-01", "2027-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := balance.CycleContaining(tt.at, tt.startMonth)
			assert.Equal(t, tt.wantStart, c.Start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, c.End.Format("2006-01-02"))
		})
	}

	prev := balance.CycleContaining(date("2026-06-15"), 1).Previous()
	assert.Equal(t, "2025-01-01", prev.Start.Format("2006-01-02"))
	assert.Equal(t, "2026-01-01", prev.End.Format("2006-01-02"))
}

func date(v string) time.Time {
	t, _ := time.Parse("2006-01-02", v)
	return t
}
