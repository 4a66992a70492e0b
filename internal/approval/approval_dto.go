package approval

import (
	"go-workforce/internal/request"
	"go-workforce/internal/tenant"
)

type ActionRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=500"`
}

type BulkItem struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

type BulkRequest struct {
	Items   []BulkItem `json:"items" binding:"required,min=1,dive"`
	Comment *string    `json:"comment" binding:"omitempty,max=500"`
}

// Result is the outcome of a single successful operation.
type Result struct {
	Kind             request.Kind `json:"type"`
	ID               string       `json:"id"`
	Reference        string       `json:"reference"`
	Status           string       `json:"status"`
	ApprovalStep     int          `json:"approval_step"`
	TotalApprovals   int          `json:"total_approvals,omitempty"`
	Final            bool         `json:"final"`
	NextApproverRole tenant.Role  `json:"next_approver_role,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
}

// BulkApproveResult splits accepted approvals into Approved, items that
// reached their final status, and Advanced, items that moved one chain step
// and are still pending.
type BulkApproveResult struct {
	Approved int      `json:"approved"`
	Advanced int      `json:"advanced"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

type BulkRejectResult struct {
	Rejected int      `json:"rejected"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

type PendingItem struct {
	Type             request.Kind `json:"type"`
	ID               string       `json:"id"`
	Reference        string       `json:"reference"`
	RequesterID      string       `json:"requester_id"`
	RequesterName    string       `json:"requester_name,omitempty"`
	Status           string       `json:"status"`
	Summary          string       `json:"summary"`
	ApprovalStep     int          `json:"approval_step"`
	NextApproverRole tenant.Role  `json:"next_approver_role"`
	CreatedAt        string       `json:"created_at"`
}

type Counts struct {
	Leaves   int64 `json:"leaves"`
	Expenses int64 `json:"expenses"`
	Requests int64 `json:"requests"`
	Total    int64 `json:"total"`
}
