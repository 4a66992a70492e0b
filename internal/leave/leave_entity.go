package leave

import (
	"time"

	"go-workforce/internal/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

var Lifecycle = request.Lifecycle{
	Pending:   []string{StatusPending},
	Approved:  StatusApproved,
	Rejected:  StatusRejected,
	Cancelled: StatusCancelled,
}

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`
	Reference  string    `gorm:"type:varchar(20);not null"`

	LeaveType     string          `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate     time.Time       `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate       time.Time       `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	HalfDay       bool            `gorm:"not null;default:false"`
	TotalDays     decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	Reason        string          `gorm:"type:text"`
	AttachmentURL *string         `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_company_status"`
	ApprovalStep    int        `gorm:"not null;default:0"`
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApproverComment *string    `gorm:"type:text"`
	DecidedAt       *time.Time
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

// Duration counts both boundary days; a half day is always 0.5.
func Duration(start, end time.Time, halfDay bool) decimal.Decimal {
	if halfDay {
		return decimal.NewFromFloat(0.5)
	}
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days)
}

func (l Leave) ToRequest() request.Request {
	r := request.Request{
		ID:              l.ID.String(),
		Kind:            request.KindLeave,
		CompanyID:       l.CompanyID.String(),
		RequesterID:     l.EmployeeID.String(),
		Reference:       l.Reference,
		Status:          l.Status,
		ApprovalStep:    l.ApprovalStep,
		ApproverComment: l.ApproverComment,
		Summary:         l.LeaveType + " " + l.StartDate.Format("2006-01-02") + " to " + l.EndDate.Format("2006-01-02"),
		CreatedAt:       l.CreatedAt,
		DecidedAt:       l.DecidedAt,
		Category:        l.LeaveType,
		Days:            l.TotalDays,
		Window:          &request.Window{Start: l.StartDate, End: l.EndDate},
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		r.ApproverID = &v
	}
	return r
}
