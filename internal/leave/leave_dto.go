package leave

import (
	"go-workforce/internal/balance"
	"go-workforce/internal/conflict"

	"github.com/shopspring/decimal"
)

type CreateLeaveRequest struct {
	LeaveType     string  `json:"leave_type" binding:"required,max=30"`
	StartDate     string  `json:"start_date" binding:"required"`
	EndDate       string  `json:"end_date" binding:"required"`
	HalfDay       bool    `json:"half_day"`
	Reason        string  `json:"reason" binding:"max=2000"`
	AttachmentURL *string `json:"attachment_url" binding:"omitempty,url"`
}

type ConflictQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date" binding:"required"`
	EndDate    string `form:"end_date" binding:"required"`
}

type LeaveResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	CompanyID       string          `json:"company_id"`
	EmployeeID      string          `json:"employee_id"`
	LeaveType       string          `json:"leave_type"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	HalfDay         bool            `json:"half_day"`
	TotalDays       decimal.Decimal `json:"total_days"`
	Reason          string          `json:"reason"`
	AttachmentURL   *string         `json:"attachment_url,omitempty"`
	Status          string          `json:"status"`
	ApprovalStep    int             `json:"approval_step"`
	ApproverID      *string         `json:"approver_id,omitempty"`
	ApproverComment *string         `json:"approver_comment,omitempty"`
	DecidedAt       *string         `json:"decided_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// SubmitLeaveResponse carries the advisory preview computed at submission.
type SubmitLeaveResponse struct {
	Leave     LeaveResponse    `json:"leave"`
	Balance   *balance.Preview `json:"balance,omitempty"`
	Conflicts *conflict.Report `json:"conflicts,omitempty"`
	Warnings  []string         `json:"-"`
}
