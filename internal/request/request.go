// Package request is the persistence-agnostic view of the three approvable
// request kinds. The approval engine works only on Request projections and
// Store implementations; kind payloads stay in their feature packages.
package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindLeave   Kind = "leave"
	KindExpense Kind = "expense"
	KindTicket  Kind = "ticket"
)

// Kinds lists every kind in inbox order.
var Kinds = []Kind{KindLeave, KindExpense, KindTicket}

func ParseKind(v string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(v)))
	switch k {
	case KindLeave, KindExpense, KindTicket:
		return k, true
	}
	return "", false
}

var (
	ErrNotFound    = errors.New("request not found")
	ErrStaleStatus = errors.New("request status changed concurrently")
)

// Window is an inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Request is the common {id, kind, requester, status} projection.
type Request struct {
	ID              string
	Kind            Kind
	CompanyID       string
	RequesterID     string
	Reference       string
	Status          string
	ApprovalStep    int
	ApproverID      *string
	ApproverComment *string
	Summary         string
	CreatedAt       time.Time
	DecidedAt       *time.Time

	// Attributes used by chain conditions and leave advisories.
	Category string
	Amount   decimal.Decimal
	Days     decimal.Decimal
	Window   *Window
}

// Transition is a compare-and-swap status write: it only applies while the
// row still has FromStatus and ExpectedStep.
type Transition struct {
	ID           string
	FromStatus   string
	ToStatus     string
	ExpectedStep int
	NextStep     int
	ApproverID   string
	Comment      *string
	At           time.Time
}

// Decided reports whether the transition leaves the current status.
func (t Transition) Decided() bool {
	return t.FromStatus != t.ToStatus
}

// Store is the per-kind repository contract the engine depends on. Every
// method takes the company id and applies it as a query predicate.
type Store interface {
	Kind() Kind
	FindRequest(ctx context.Context, companyID, id string) (Request, error)
	ListPendingRequests(ctx context.Context, companyID, excludeRequesterID string) ([]Request, error)
	CountPendingRequests(ctx context.Context, companyID, excludeRequesterID string) (int64, error)
	UpdateStatus(ctx context.Context, companyID string, t Transition) error
}

// Lifecycle names the statuses a kind maps the engine's actions onto.
type Lifecycle struct {
	Pending   []string
	Approved  string
	Rejected  string
	Cancelled string
}

func (l Lifecycle) IsPending(status string) bool {
	for _, s := range l.Pending {
		if s == status {
			return true
		}
	}
	return false
}
