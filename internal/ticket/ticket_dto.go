package ticket

type CreateTicketRequest struct {
	Category    string `json:"category" binding:"required,max=50"`
	Priority    string `json:"priority"`
	Subject     string `json:"subject" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
}

type TicketResponse struct {
	ID              string  `json:"id"`
	Reference       string  `json:"reference"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	Category        string  `json:"category"`
	Priority        string  `json:"priority"`
	Subject         string  `json:"subject"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	AssigneeID      *string `json:"assignee_id,omitempty"`
	ApproverID      *string `json:"approver_id,omitempty"`
	ApproverComment *string `json:"approver_comment,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
