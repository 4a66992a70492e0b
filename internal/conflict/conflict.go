// Package conflict reports teammates whose approved or pending leave
// overlaps a proposed window. Reports are advisory and never block.
package conflict

import (
	"context"
	"time"

	"go-workforce/internal/employee"

	"github.com/shopspring/decimal"
)

type Level string

const (
	LevelNone     Level = "none"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

type OverlappingUser struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	LeaveID    string `json:"leave_id"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type Report struct {
	HasConflict      bool              `json:"has_conflict"`
	Level            Level             `json:"level"`
	Message          string            `json:"message"`
	TeamSize         int               `json:"team_size"`
	OverlappingUsers []OverlappingUser `json:"overlapping_users"`
}

// Absence is an approved or pending leave window.
type Absence struct {
	LeaveID    string
	EmployeeID string
	Status     string
	Start      time.Time
	End        time.Time
}

// Overlaps applies existing.start <= proposed.end && existing.end >= proposed.start.
func (a Absence) Overlaps(start, end time.Time) bool {
	return !a.Start.After(end) && !a.End.Before(start)
}

type TeamDirectory interface {
	ListTeammates(ctx context.Context, companyID, employeeID string) ([]employee.Employee, error)
}

// AbsenceReader is implemented by the leave repository.
type AbsenceReader interface {
	ListActiveAbsences(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Absence, error)
}

// Policy decides when an overlap becomes critical: at least CriticalCount
// teammates away, or at least CriticalRatio of the team (requester included).
type Policy struct {
	CriticalCount int
	CriticalRatio decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{CriticalCount: 3, CriticalRatio: decimal.NewFromFloat(0.5)}
}

func (p Policy) Classify(overlapping, teamSize int) Level {
	if overlapping == 0 {
		return LevelNone
	}
	if p.CriticalCount > 0 && overlapping >= p.CriticalCount {
		return LevelCritical
	}
	if teamSize > 0 && p.CriticalRatio.IsPositive() {
		ratio := decimal.NewFromInt(int64(overlapping)).Div(decimal.NewFromInt(int64(teamSize)))
		if ratio.GreaterThanOrEqual(p.CriticalRatio) {
			return LevelCritical
		}
	}
	return LevelWarning
}
