package chain

import "github.com/shopspring/decimal"

type StepRequest struct {
	Role              string `json:"role" binding:"required"`
	RequiredApprovals int    `json:"required_approvals"`
}

type ChainRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	RequestKind string           `json:"request_kind" binding:"required"`
	MinAmount   *decimal.Decimal `json:"min_amount"`
	MinDays     *decimal.Decimal `json:"min_days"`
	Steps       []StepRequest    `json:"steps" binding:"required,min=1,dive"`
	IsDefault   bool             `json:"is_default"`
}

// Definition is the cached and served form of a chain.
type Definition struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	RequestKind string           `json:"request_kind"`
	MinAmount   *decimal.Decimal `json:"min_amount,omitempty"`
	MinDays     *decimal.Decimal `json:"min_days,omitempty"`
	Steps       []Step           `json:"steps"`
	IsDefault   bool             `json:"is_default"`
	UpdatedAt   string           `json:"updated_at"`
}
