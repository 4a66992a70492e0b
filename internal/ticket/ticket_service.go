package ticket

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-workforce/internal/activity"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/tenant"
	ticketerrors "go-workforce/internal/ticket/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MemberChecker interface {
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

//go:generate mockgen -source=ticket_service.go -destination=mock/ticket_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateTicketRequest) (TicketResponse, error)
	GetByID(ctx context.Context, tc tenant.Context, id string) (TicketResponse, error)
	ListMine(ctx context.Context, tc tenant.Context) ([]TicketResponse, error)
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
	l := zap.L().Named("ticket.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ticket.service")
	}
	return &service{db: db, repo: repo, counters: counters, members: members, activity: recorder, logger: l}
}

func (s *service) Create(ctx context.Context, tc tenant.Context, req CreateTicketRequest) (TicketResponse, error) {
	s.logger.Debug("create ticket requested",
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.String("category", req.Category),
	)

	if err := tc.Validate(); err != nil {
		return TicketResponse{}, err
	}
	if err := validateCreateRequest(&req); err != nil {
		s.logger.Warn("create ticket validation failed", zap.Error(err))
		return TicketResponse{}, err
	}

	belongs, err := s.members.BelongsToCompany(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		s.logger.Error("create ticket employee company check failed", zap.Error(err))
		return TicketResponse{}, err
	}
	if !belongs {
		return TicketResponse{}, ticketerrors.ErrEmployeeNotInCompany
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create ticket begin tx failed", zap.Error(err))
		return TicketResponse{}, err
	}
	defer tx.Rollback()

	seq, err := s.counters.WithTx(tx).GetNextValue(ctx, tc.CompanyID, counter.TypeTicket)
	if err != nil {
		s.logger.Error("create ticket reference failed", zap.Error(err))
		return TicketResponse{}, err
	}

	actorUUID := uuid.MustParse(tc.ActorID)
	t := &Ticket{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(tc.CompanyID),
		EmployeeID:  actorUUID,
		Reference:   counter.Reference("TKT", seq),
		Category:    req.Category,
		Priority:    req.Priority,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      StatusOpen,
		CreatedBy:   actorUUID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, t); err != nil {
		s.logger.Error("create ticket persist failed", zap.Error(err))
		return TicketResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create ticket commit failed", zap.Error(err))
		return TicketResponse{}, err
	}
	s.logger.Info("create ticket success",
		zap.String("ticket_id", t.ID.String()),
		zap.String("reference", t.Reference),
	)

	if s.activity != nil {
		err := s.activity.Record(ctx, activity.Entry{
			CompanyID:   tc.CompanyID,
			ActorID:     tc.ActorID,
			Action:      activity.ActionSubmitted,
			EntityType:  string(request.KindTicket),
			EntityID:    t.ID.String(),
			Description: "submitted " + t.Reference + ": " + t.Subject,
		})
		if err != nil {
			s.logger.Warn("record ticket activity failed", zap.String("ticket_id", t.ID.String()), zap.Error(err))
		}
	}
	return mapToResponse(*t), nil
}

func (s *service) GetByID(ctx context.Context, tc tenant.Context, id string) (TicketResponse, error) {
	t, err := s.repo.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return TicketResponse{}, err
	}
	if t.EmployeeID.String() != tc.ActorID {
		if err := tc.RequireRole(tenant.RoleManager); err != nil {
			return TicketResponse{}, err
		}
	}
	return mapToResponse(*t), nil
}

func (s *service) ListMine(ctx context.Context, tc tenant.Context) ([]TicketResponse, error) {
	tickets, err := s.repo.FindAllByEmployee(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		return nil, err
	}
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

// validateCreateRequest defaults an empty priority to MEDIUM.
func validateCreateRequest(req *CreateTicketRequest) error {
	req.Category = strings.ToUpper(strings.TrimSpace(req.Category))
	req.Priority = strings.ToUpper(strings.TrimSpace(req.Priority))
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Category == "" {
		return ticketerrors.ErrInvalidCategory
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !priorities[req.Priority] {
		return ticketerrors.ErrInvalidPriority
	}
	return nil
}

func mapToResponse(t Ticket) TicketResponse {
	resp := TicketResponse{
		ID:              t.ID.String(),
		Reference:       t.Reference,
		CompanyID:       t.CompanyID.String(),
		EmployeeID:      t.EmployeeID.String(),
		Category:        t.Category,
		Priority:        t.Priority,
		Subject:         t.Subject,
		Description:     t.Description,
		Status:          t.Status,
		ApproverComment: t.ApproverComment,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
	if t.AssigneeID != nil {
		v := t.AssigneeID.String()
		resp.AssigneeID = &v
	}
	if t.ApproverID != nil {
		v := t.ApproverID.String()
		resp.ApproverID = &v
	}
	if t.DecidedAt != nil {
		v := t.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}
