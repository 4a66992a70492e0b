package counter

import (
	"context"
	"database/sql"
	"fmt"

	"go-workforce/internal/shared/dbtx"

	"gorm.io/gorm"
)

// Counter types, one sequence per company each.
const (
	TypeLeave   = "leave_request"
	TypeExpense = "expense_claim"
	TypeTicket  = "internal_ticket"
)

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	var nextValue int64

	// Atomic upsert keeps the sequence gap-free per company/type under concurrent submits.
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (company_id, counter_type) DO UPDATE
		SET last_value = company_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, companyID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// Reference formats a human-facing request number, e.g. LV-000042.
func Reference(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}
