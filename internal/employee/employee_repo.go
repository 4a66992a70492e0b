package employee

import (
	"context"
	"database/sql"
	"errors"

	employeeerrors "go-workforce/internal/employee/errors"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	ListTeammates(ctx context.Context, companyID, employeeID string) ([]Employee, error)
	NamesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error)
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

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	var e Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

// ListTeammates returns the other members of the employee's department.
// An employee without a department has no team.
func (r *repository) ListTeammates(ctx context.Context, companyID, employeeID string) ([]Employee, error) {
	self, err := r.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	if self.DepartmentID == nil {
		return []Employee{}, nil
	}

	var mates []Employee
	err = r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("department_id = ?", *self.DepartmentID).
		Where("id <> ?", employeeID).
		Order("full_name ASC").
		Find(&mates).Error
	return mates, err
}

func (r *repository) NamesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []Employee
	err := r.db.WithContext(ctx).
		Select("id", "full_name").
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID.String()] = row.FullName
	}
	return names, nil
}
