package chain

import (
	"context"
	"database/sql"
	"errors"

	chainerrors "go-workforce/internal/chain/errors"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=chain_repo.go -destination=mock/chain_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *ApprovalChain) error
	Update(ctx context.Context, c *ApprovalChain) error
	Delete(ctx context.Context, companyID, id string) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*ApprovalChain, error)
	ListByCompany(ctx context.Context, companyID, kind string) ([]ApprovalChain, error)
	ClearDefault(ctx context.Context, companyID, kind, exceptID string) error
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

func (r *repository) Create(ctx context.Context, c *ApprovalChain) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) Update(ctx context.Context, c *ApprovalChain) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&ApprovalChain{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chainerrors.ErrChainNotFound
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ApprovalChain, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, chainerrors.ErrChainNotFound
	}
	var c ApprovalChain
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, chainerrors.ErrChainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByCompany returns every chain of the company, or only those of kind
// when kind is not empty.
func (r *repository) ListByCompany(ctx context.Context, companyID, kind string) ([]ApprovalChain, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if kind != "" {
		q = q.Where("request_kind = ?", kind)
	}
	var chains []ApprovalChain
	err := q.Order("request_kind ASC, is_default DESC, name ASC").Find(&chains).Error
	return chains, err
}

func (r *repository) ClearDefault(ctx context.Context, companyID, kind, exceptID string) error {
	q := r.db.WithContext(ctx).
		Model(&ApprovalChain{}).
		Scopes(tenant.Scope(companyID)).
		Where("request_kind = ? AND is_default = ?", kind, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}
