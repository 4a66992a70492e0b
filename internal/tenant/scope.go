package tenant

import "gorm.io/gorm"

// Scope is the mandatory company predicate for every tenant-owned query.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
