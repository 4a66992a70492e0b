package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LeavePolicy holds yearly entitlements per leave category.
type LeavePolicy struct {
	ID              uuid.UUID                                       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID                                       `gorm:"type:uuid;not null;index:idx_leave_policies_company"`
	Name            string                                          `gorm:"type:varchar(100);not null"`
	Entitlements    datatypes.JSONType[map[string]decimal.Decimal] `gorm:"type:jsonb;not null"`
	CarryOverLimit  decimal.Decimal                                 `gorm:"type:numeric(6,1);not null;default:0"`
	CycleStartMonth int                                             `gorm:"not null;default:1"`
	IsDefault       bool                                            `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p LeavePolicy) Entitlement(category string) (decimal.Decimal, bool) {
	v, ok := p.Entitlements.Data()[category]
	return v, ok
}

// PolicyAssignment overrides the company default for one employee.
type PolicyAssignment struct {
	CompanyID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	PolicyID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PolicyAssignment) TableName() string { return "leave_policy_assignments" }

func newEntitlements(m map[string]decimal.Decimal) datatypes.JSONType[map[string]decimal.Decimal] {
	return datatypes.NewJSONType(m)
}
