package balance

import "github.com/shopspring/decimal"

type CategoryBalance struct {
	Category    string          `json:"category"`
	Entitlement decimal.Decimal `json:"entitlement"`
	CarriedOver decimal.Decimal `json:"carried_over"`
	Consumed    decimal.Decimal `json:"consumed"`
	Available   decimal.Decimal `json:"available"`
}

type BalanceResponse struct {
	EmployeeID string            `json:"employee_id"`
	PolicyID   string            `json:"policy_id"`
	PolicyName string            `json:"policy_name"`
	CycleStart string            `json:"cycle_start"`
	CycleEnd   string            `json:"cycle_end"`
	Categories []CategoryBalance `json:"categories"`
}

// Available flattens the response to category -> available days.
func (b BalanceResponse) Available() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b.Categories))
	for _, c := range b.Categories {
		out[c.Category] = c.Available
	}
	return out
}

// Preview is the effect a leave of Days would have on its category.
type Preview struct {
	Category        string          `json:"category"`
	Tracked         bool            `json:"tracked"`
	AvailableBefore decimal.Decimal `json:"available_before"`
	AvailableAfter  decimal.Decimal `json:"available_after"`
	Insufficient    bool            `json:"insufficient"`
}

type PolicyRequest struct {
	Name            string                     `json:"name" binding:"required,max=100"`
	Entitlements    map[string]decimal.Decimal `json:"entitlements" binding:"required,min=1"`
	CarryOverLimit  decimal.Decimal            `json:"carry_over_limit"`
	CycleStartMonth int                        `json:"cycle_start_month"`
	IsDefault       bool                       `json:"is_default"`
}

type AssignPolicyRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
}

type PolicyResponse struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	Entitlements    map[string]decimal.Decimal `json:"entitlements"`
	CarryOverLimit  decimal.Decimal            `json:"carry_over_limit"`
	CycleStartMonth int                        `json:"cycle_start_month"`
	IsDefault       bool                       `json:"is_default"`
}
