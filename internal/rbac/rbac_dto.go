package rbac

// EnforceRequest asks whether an employee holding Role may perform Action
// on Resource inside CompanyID.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	CompanyID  string `json:"company_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
