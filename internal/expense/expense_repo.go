package expense

import (
	"context"
	"database/sql"
	"errors"
	"time"

	expenseerrors "go-workforce/internal/expense/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=expense_repo.go -destination=mock/expense_repo_mock.go -package=mock
type Repository interface {
	request.Store
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Expense) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Expense, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Expense, error)
	// MarkReimbursed moves an approved claim to reimbursed. It returns
	// request.ErrStaleStatus when the claim is no longer approved.
	MarkReimbursed(ctx context.Context, companyID, id, actorID string, at time.Time) error
}

type repository struct {
	*request.GormStore[Expense]
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		GormStore: request.NewGormStore[Expense](db, request.KindExpense, Lifecycle.Pending...),
		db:        db,
	}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := dbtx.Bind(r.db, tx)
	return &repository{GormStore: r.GormStore.WithDB(db), db: db}
}

func (r *repository) Create(ctx context.Context, e *Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Expense, error) {
	e, err := r.FindModel(ctx, companyID, id)
	if errors.Is(err, request.ErrNotFound) {
		return nil, expenseerrors.ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Expense, error) {
	var expenses []Expense
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("expense_date DESC, created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *repository) MarkReimbursed(ctx context.Context, companyID, id, actorID string, at time.Time) error {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return err
	}
	return r.SetStatus(ctx, companyID, id, StatusApproved, StatusReimbursed, map[string]any{
		"reimbursed_by": actorUUID,
		"reimbursed_at": at,
		"updated_at":    at,
	})
}
