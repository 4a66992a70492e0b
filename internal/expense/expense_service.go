package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-workforce/internal/activity"
	expenseerrors "go-workforce/internal/expense/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MemberChecker interface {
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

//go:generate mockgen -source=expense_service.go -destination=mock/expense_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateExpenseRequest) (ExpenseResponse, error)
	GetByID(ctx context.Context, tc tenant.Context, id string) (ExpenseResponse, error)
	ListMine(ctx context.Context, tc tenant.Context) ([]ExpenseResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	counters counter.Repository
	members  MemberChecker
	activity activity.Recorder
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counters counter.Repository, members MemberChecker, recorder activity.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("expense.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("expense.service")
	}
	return &service{db: db, repo: repo, counters: counters, members: members, activity: recorder, logger: l}
}

func (s *service) Create(ctx context.Context, tc tenant.Context, req CreateExpenseRequest) (ExpenseResponse, error) {
	s.logger.Debug("create expense requested",
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.String("category", req.Category),
		zap.String("amount", req.Amount.String()),
	)

	if err := tc.Validate(); err != nil {
		return ExpenseResponse{}, err
	}
	expenseDate, err := validateCreateRequest(&req)
	if err != nil {
		s.logger.Warn("create expense validation failed", zap.Error(err))
		return ExpenseResponse{}, err
	}

	belongs, err := s.members.BelongsToCompany(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		s.logger.Error("create expense employee company check failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	if !belongs {
		return ExpenseResponse{}, expenseerrors.ErrEmployeeNotInCompany
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create expense begin tx failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	seq, err := s.counters.WithTx(tx).GetNextValue(ctx, tc.CompanyID, counter.TypeExpense)
	if err != nil {
		s.logger.Error("create expense reference failed", zap.Error(err))
		return ExpenseResponse{}, err
	}

	actorUUID := uuid.MustParse(tc.ActorID)
	e := &Expense{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(tc.CompanyID),
		EmployeeID:  actorUUID,
		Reference:   counter.Reference("EXP", seq),
		Category:    req.Category,
		Amount:      req.Amount.Round(2),
		Currency:    req.Currency,
		ExpenseDate: expenseDate,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		Status:      StatusPending,
		CreatedBy:   actorUUID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, e); err != nil {
		s.logger.Error("create expense persist failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create expense commit failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	s.logger.Info("create expense success",
		zap.String("expense_id", e.ID.String()),
		zap.String("reference", e.Reference),
	)

	if s.activity != nil {
		err := s.activity.Record(ctx, activity.Entry{
			CompanyID:   tc.CompanyID,
			ActorID:     tc.ActorID,
			Action:      activity.ActionSubmitted,
			EntityType:  string(request.KindExpense),
			EntityID:    e.ID.String(),
			Description: fmt.Sprintf("submitted %s (%s %s)", e.Reference, e.Amount.StringFixed(2), e.Currency),
		})
		if err != nil {
			s.logger.Warn("record expense activity failed", zap.String("expense_id", e.ID.String()), zap.Error(err))
		}
	}
	return mapToResponse(*e), nil
}

func (s *service) GetByID(ctx context.Context, tc tenant.Context, id string) (ExpenseResponse, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	if e.EmployeeID.String() != tc.ActorID {
		if err := tc.RequireRole(tenant.RoleManager); err != nil {
			return ExpenseResponse{}, err
		}
	}
	return mapToResponse(*e), nil
}

func (s *service) ListMine(ctx context.Context, tc tenant.Context) ([]ExpenseResponse, error) {
	expenses, err := s.repo.FindAllByEmployee(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		return nil, err
	}
	resp := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func validateCreateRequest(req *CreateExpenseRequest) (time.Time, error) {
	req.Category = strings.ToUpper(strings.TrimSpace(req.Category))
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Category == "" {
		return time.Time{}, expenseerrors.ErrInvalidCategory
	}
	if !req.Amount.IsPositive() {
		return time.Time{}, expenseerrors.ErrInvalidAmount
	}
	if len(req.Currency) != 3 {
		return time.Time{}, expenseerrors.ErrInvalidCurrency
	}
	for _, r := range req.Currency {
		if r < 'A' || r > 'Z' {
			return time.Time{}, expenseerrors.ErrInvalidCurrency
		}
	}
	d, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return time.Time{}, expenseerrors.ErrInvalidExpenseDate
	}
	return d, nil
}

func mapToResponse(e Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID.String(),
		Reference:       e.Reference,
		CompanyID:       e.CompanyID.String(),
		EmployeeID:      e.EmployeeID.String(),
		Category:        e.Category,
		Amount:          e.Amount,
		Currency:        e.Currency,
		ExpenseDate:     e.ExpenseDate.Format("2006-01-02"),
		Description:     e.Description,
		ReceiptURL:      e.ReceiptURL,
		Status:          e.Status,
		ApprovalStep:    e.ApprovalStep,
		ApproverComment: e.ApproverComment,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.ApproverID != nil {
		v := e.ApproverID.String()
		resp.ApproverID = &v
	}
	if e.DecidedAt != nil {
		v := e.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if e.ReimbursedAt != nil {
		v := e.ReimbursedAt.Format(time.RFC3339)
		resp.ReimbursedAt = &v
	}
	return resp
}
