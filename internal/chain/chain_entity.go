package chain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Step names the role that must approve and how many approvals it takes.
type Step struct {
	Role              string `json:"role"`
	RequiredApprovals int    `json:"required_approvals"`
}

// ApprovalChain is a tenant's workflow for one request kind. A chain with
// no condition is the kind's default; otherwise MinAmount (expenses) or
// MinDays (leaves) gates it.
type ApprovalChain struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID                 `gorm:"type:uuid;not null;index:idx_approval_chains_company_kind"`
	Name        string                    `gorm:"type:varchar(100);not null"`
	RequestKind string                    `gorm:"type:varchar(20);not null;index:idx_approval_chains_company_kind"`
	MinAmount   *decimal.Decimal          `gorm:"type:numeric(14,2)"`
	MinDays     *decimal.Decimal          `gorm:"type:numeric(5,1)"`
	Steps       datatypes.JSONSlice[Step] `gorm:"type:jsonb;not null"`
	IsDefault   bool                      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (ApprovalChain) TableName() string { return "approval_chains" }
