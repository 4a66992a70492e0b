package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-workforce/internal/conflict"
	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	request.Store
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Leave, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Leave, error)
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	ListActiveAbsences(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]conflict.Absence, error)
	SumApprovedDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]decimal.Decimal, error)
}

type repository struct {
	*request.GormStore[Leave]
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		GormStore: request.NewGormStore[Leave](db, request.KindLeave, Lifecycle.Pending...),
		db:        db,
	}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := dbtx.Bind(r.db, tx)
	return &repository{GormStore: r.GormStore.WithDB(db), db: db}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Leave, error) {
	l, err := r.FindModel(ctx, companyID, id)
	if errors.Is(err, request.ErrNotFound) {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) ListActiveAbsences(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]conflict.Absence, error) {
	if len(employeeIDs) == 0 {
		return []conflict.Absence{}, nil
	}
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Select("id", "employee_id", "status", "start_date", "end_date").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id IN ?", employeeIDs).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date ASC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}

	out := make([]conflict.Absence, len(leaves))
	for i, l := range leaves {
		out[i] = conflict.Absence{
			LeaveID:    l.ID.String(),
			EmployeeID: l.EmployeeID.String(),
			Status:     l.Status,
			Start:      l.StartDate,
			End:        l.EndDate,
		}
	}
	return out, nil
}

type categoryDays struct {
	LeaveType string
	Days      decimal.Decimal
}

// SumApprovedDays attributes each leave to the cycle containing its start date.
func (r *repository) SumApprovedDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return map[string]decimal.Decimal{}, nil
	}
	var rows []categoryDays
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Select("leave_type, SUM(total_days) AS days").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("start_date >= ? AND start_date < ?", from, to).
		Group("leave_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.LeaveType] = row.Days
	}
	return out, nil
}
