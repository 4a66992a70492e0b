package ticket

import (
	"time"

	"go-workforce/internal/request"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusClosed     = "CLOSED"
)

// Lifecycle maps approve to resolve and both reject and cancel to close.
var Lifecycle = request.Lifecycle{
	Pending:   []string{StatusOpen, StatusInProgress},
	Approved:  StatusResolved,
	Rejected:  StatusClosed,
	Cancelled: StatusClosed,
}

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

var priorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

type Ticket struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_tickets_company_status"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Reference   string    `gorm:"type:varchar(20);not null"`
	Category    string    `gorm:"type:varchar(50);not null"`
	Priority    string    `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Subject     string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_tickets_company_status"`
	ApprovalStep    int        `gorm:"not null;default:0"`
	AssigneeID      *uuid.UUID `gorm:"type:uuid"`
	StartedAt       *time.Time
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApproverComment *string    `gorm:"type:text"`
	DecidedAt       *time.Time
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (t Ticket) ToRequest() request.Request {
	r := request.Request{
		ID:              t.ID.String(),
		Kind:            request.KindTicket,
		CompanyID:       t.CompanyID.String(),
		RequesterID:     t.EmployeeID.String(),
		Reference:       t.Reference,
		Status:          t.Status,
		ApprovalStep:    t.ApprovalStep,
		ApproverComment: t.ApproverComment,
		Summary:         "[" + t.Priority + "] " + t.Subject,
		CreatedAt:       t.CreatedAt,
		DecidedAt:       t.DecidedAt,
		Category:        t.Category,
	}
	if t.ApproverID != nil {
		v := t.ApproverID.String()
		r.ApproverID = &v
	}
	return r
}
