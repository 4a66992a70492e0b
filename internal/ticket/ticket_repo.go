package ticket

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-workforce/internal/request"
	"go-workforce/internal/shared/dbtx"
	"go-workforce/internal/tenant"
	ticketerrors "go-workforce/internal/ticket/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=ticket_repo.go -destination=mock/ticket_repo_mock.go -package=mock
type Repository interface {
	request.Store
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Ticket) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Ticket, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Ticket, error)
	// MarkInProgress moves an open ticket to in-progress and assigns it.
	MarkInProgress(ctx context.Context, companyID, id, assigneeID string, at time.Time) error
}

type repository struct {
	*request.GormStore[Ticket]
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		GormStore: request.NewGormStore[Ticket](db, request.KindTicket, Lifecycle.Pending...),
		db:        db,
	}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := dbtx.Bind(r.db, tx)
	return &repository{GormStore: r.GormStore.WithDB(db), db: db}
}

func (r *repository) Create(ctx context.Context, t *Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Ticket, error) {
	t, err := r.FindModel(ctx, companyID, id)
	if errors.Is(err, request.ErrNotFound) {
		return nil, ticketerrors.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) MarkInProgress(ctx context.Context, companyID, id, assigneeID string, at time.Time) error {
	assignee, err := uuid.Parse(assigneeID)
	if err != nil {
		return err
	}
	return r.SetStatus(ctx, companyID, id, StatusOpen, StatusInProgress, map[string]any{
		"assignee_id": assignee,
		"started_at":  at,
		"updated_at":  at,
	})
}
