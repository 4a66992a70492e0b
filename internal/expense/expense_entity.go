package expense

import (
	"time"

	"go-workforce/internal/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending    = "PENDING"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
	StatusCancelled  = "CANCELLED"
	StatusReimbursed = "REIMBURSED"
)

var Lifecycle = request.Lifecycle{
	Pending:   []string{StatusPending},
	Approved:  StatusApproved,
	Rejected:  StatusRejected,
	Cancelled: StatusCancelled,
}

type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_expenses_company_status"`
	EmployeeID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reference   string          `gorm:"type:varchar(20);not null"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency    string          `gorm:"type:char(3);not null"`
	ExpenseDate time.Time       `gorm:"type:date;not null"`
	Description string          `gorm:"type:text"`
	ReceiptURL  *string         `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_expenses_company_status"`
	ApprovalStep    int        `gorm:"not null;default:0"`
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApproverComment *string    `gorm:"type:text"`
	DecidedAt       *time.Time
	ReimbursedBy    *uuid.UUID `gorm:"type:uuid"`
	ReimbursedAt    *time.Time
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (e Expense) ToRequest() request.Request {
	r := request.Request{
		ID:              e.ID.String(),
		Kind:            request.KindExpense,
		CompanyID:       e.CompanyID.String(),
		RequesterID:     e.EmployeeID.String(),
		Reference:       e.Reference,
		Status:          e.Status,
		ApprovalStep:    e.ApprovalStep,
		ApproverComment: e.ApproverComment,
		Summary:         e.Category + " " + e.Amount.StringFixed(2) + " " + e.Currency,
		CreatedAt:       e.CreatedAt,
		DecidedAt:       e.DecidedAt,
		Category:        e.Category,
		Amount:          e.Amount,
	}
	if e.ApproverID != nil {
		v := e.ApproverID.String()
		r.ApproverID = &v
	}
	return r
}
