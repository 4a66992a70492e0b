package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the read model the engine needs from the people directory:
// tenant membership, team (department) and display name.
type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;index:idx_employees_company_department"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index:idx_employees_company_department"`
	FullName     string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}
