package activity

import (
	"context"

	"go-workforce/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, l *Log) (bool, error)
	ListByEntity(ctx context.Context, companyID, entityType, entityID string) ([]Log, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create reports false when the event was already stored.
func (r *repository) Create(ctx context.Context, l *Log) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByEntity(ctx context.Context, companyID, entityType, entityID string) ([]Log, error) {
	var logs []Log
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("occurred_at ASC").
		Find(&logs).Error
	return logs, err
}
