// Package activity records who did what to which request. Recording is
// best effort: callers log a failed Record and carry on.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TopicApprovalActivity = "hr.approval.activity.v1"

const (
	ActionSubmitted    = "submitted"
	ActionStepApproved = "step_approved"
	ActionApproved     = "approved"
	ActionRejected     = "rejected"
	ActionCancelled    = "cancelled"
	ActionReimbursed   = "reimbursed"
	ActionStarted      = "started"
)

type Entry struct {
	CompanyID   string
	ActorID     string
	Action      string
	EntityType  string
	EntityID    string
	Description string
}

// Event is the wire form published on TopicApprovalActivity.
type Event struct {
	EventID     string    `json:"event_id"`
	CompanyID   string    `json:"company_id"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Description string    `json:"description"`
	RequestID   string    `json:"request_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

//go:generate mockgen -source=activity.go -destination=mock/activity_recorder_mock.go -package=mock
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// ErrIncompleteEntry is returned for entries without a tenant or target.
var ErrIncompleteEntry = errors.New("activity entry is incomplete")

func (e Entry) validate() error {
	if e.CompanyID == "" || e.Action == "" || e.EntityType == "" || e.EntityID == "" {
		return ErrIncompleteEntry
	}
	return nil
}

func newEvent(ctx context.Context, e Entry) Event {
	return Event{
		EventID:     uuid.NewString(),
		CompanyID:   e.CompanyID,
		ActorID:     e.ActorID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		RequestID:   contextutil.GetRequestID(ctx),
		OccurredAt:  time.Now().UTC(),
	}
}

type outboxRecorder struct {
	outbox kafka.OutboxRepository
}

// NewOutboxRecorder stores entries as outbox rows; the worker publishes them.
func NewOutboxRecorder(outbox kafka.OutboxRepository) Recorder {
	return &outboxRecorder{outbox: outbox}
}

func (r *outboxRecorder) Record(ctx context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	event := newEvent(ctx, e)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	outboxEvent := kafka.OutboxEvent{
		ID:            event.EventID,
		RequestID:     event.RequestID,
		AggregateType: e.EntityType,
		AggregateID:   e.EntityID,
		EventType:     "approval." + e.Action,
		Topic:         TopicApprovalActivity,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(outboxEvent); err != nil {
		return err
	}
	return r.outbox.Create(ctx, outboxEvent)
}

type logRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder writes entries to the log only.
func NewLogRecorder(logger ...*zap.Logger) Recorder {
	l := zap.L().Named("activity")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity")
	}
	return &logRecorder{logger: l}
}

func (r *logRecorder) Record(ctx context.Context, e Entry) error {
	contextutil.GetLogger(ctx, r.logger).Info("activity",
		zap.String("company_id", e.CompanyID),
		zap.String("actor_id", e.ActorID),
		zap.String("action", e.Action),
		zap.String("entity_type", e.EntityType),
		zap.String("entity_id", e.EntityID),
		zap.String("description", e.Description),
	)
	return nil
}
