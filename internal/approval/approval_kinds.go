package approval

import (
	"context"
	"time"

	"go-workforce/internal/request"
)

// Advisor produces non-blocking warnings shown to an approver.
type Advisor interface {
	Advise(ctx context.Context, r request.Request) []string
}

// Reimburser moves an approved expense claim to reimbursed.
type Reimburser interface {
	MarkReimbursed(ctx context.Context, companyID, id, actorID string, at time.Time) error
}

// Starter moves an open ticket to in progress.
type Starter interface {
	MarkInProgress(ctx context.Context, companyID, id, assigneeID string, at time.Time) error
}

// Strategy is everything the engine knows about one request kind. Optional
// hooks are nil when the kind does not support them.
type Strategy struct {
	Store      request.Store
	Lifecycle  request.Lifecycle
	Advisor    Advisor
	Reimburser Reimburser
	Starter    Starter
}

// Registry maps each request kind to its strategy.
type Registry map[request.Kind]Strategy

func (r Registry) lookup(kind string) (request.Kind, Strategy, bool) {
	k, ok := request.ParseKind(kind)
	if !ok {
		return "", Strategy{}, false
	}
	st, ok := r[k]
	if !ok || st.Store == nil {
		return "", Strategy{}, false
	}
	return k, st, true
}
