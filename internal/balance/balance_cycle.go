package balance

import "time"

// Cycle is a half-open accrual period [Start, End).
type Cycle struct {
	Start time.Time
	End   time.Time
}

// CycleContaining returns the yearly cycle that starts on the first day of
// startMonth and contains at.
func CycleContaining(at time.Time, startMonth int) Cycle {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	at = at.UTC()
	start := time.Date(at.Year(), time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	if at.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return Cycle{Start: start, End: start.AddDate(1, 0, 0)}
}

func (c Cycle) Previous() Cycle {
	return Cycle{Start: c.Start.AddDate(-1, 0, 0), End: c.Start}
}
