package expense

import "github.com/shopspring/decimal"

type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,max=50"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	ExpenseDate string          `json:"expense_date" binding:"required"`
	Description string          `json:"description" binding:"max=2000"`
	ReceiptURL  *string         `json:"receipt_url" binding:"omitempty,url"`
}

type ExpenseResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	CompanyID       string          `json:"company_id"`
	EmployeeID      string          `json:"employee_id"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ExpenseDate     string          `json:"expense_date"`
	Description     string          `json:"description"`
	ReceiptURL      *string         `json:"receipt_url,omitempty"`
	Status          string          `json:"status"`
	ApprovalStep    int             `json:"approval_step"`
	ApproverID      *string         `json:"approver_id,omitempty"`
	ApproverComment *string         `json:"approver_comment,omitempty"`
	DecidedAt       *string         `json:"decided_at,omitempty"`
	ReimbursedAt    *string         `json:"reimbursed_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}
