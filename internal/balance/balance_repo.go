package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "go-workforce/internal/balance/errors"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindPolicyForEmployee(ctx context.Context, companyID, employeeID string) (*LeavePolicy, error)
	FindPolicyByID(ctx context.Context, companyID, id string) (*LeavePolicy, error)
	ListPolicies(ctx context.Context, companyID string) ([]LeavePolicy, error)
	CreatePolicy(ctx context.Context, p *LeavePolicy) error
	UpdatePolicy(ctx context.Context, p *LeavePolicy) error
	ClearDefault(ctx context.Context, companyID, exceptID string) error
	AssignPolicy(ctx context.Context, a *PolicyAssignment) error
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

// FindPolicyForEmployee resolves the assigned policy, falling back to the
// company default.
func (r *repository) FindPolicyForEmployee(ctx context.Context, companyID, employeeID string) (*LeavePolicy, error) {
	var assignment PolicyAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Limit(1).
		Find(&assignment).Error
	if err != nil {
		return nil, err
	}
	if assignment.PolicyID != uuid.Nil {
		return r.FindPolicyByID(ctx, companyID, assignment.PolicyID.String())
	}

	var p LeavePolicy
	err = r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("is_default = ?", true).
		Order("updated_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, balanceerrors.ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindPolicyByID(ctx context.Context, companyID, id string) (*LeavePolicy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, balanceerrors.ErrPolicyNotFound
	}
	var p LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, balanceerrors.ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPolicies(ctx context.Context, companyID string) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) CreatePolicy(ctx context.Context, p *LeavePolicy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) UpdatePolicy(ctx context.Context, p *LeavePolicy) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) ClearDefault(ctx context.Context, companyID, exceptID string) error {
	q := r.db.WithContext(ctx).
		Model(&LeavePolicy{}).
		Scopes(tenant.Scope(companyID)).
		Where("is_default = ?", true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}

func (r *repository) AssignPolicy(ctx context.Context, a *PolicyAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"policy_id", "updated_at"}),
		}).
		Create(a).Error
}
