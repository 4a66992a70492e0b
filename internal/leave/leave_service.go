package leave

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-workforce/internal/activity"
	"go-workforce/internal/balance"
	"go-workforce/internal/conflict"
	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MemberChecker interface {
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateLeaveRequest) (SubmitLeaveResponse, error)
	GetByID(ctx context.Context, tc tenant.Context, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, tc tenant.Context) ([]LeaveResponse, error)
	CheckConflicts(ctx context.Context, tc tenant.Context, q ConflictQuery) (conflict.Report, error)
	// Advise returns the non-blocking balance and scheduling warnings for a
	// pending leave. Lookup failures are logged and yield no warning.
	Advise(ctx context.Context, r request.Request) []string
}

type service struct {
	db        *sql.DB
	repo      Repository
	counters  counter.Repository
	members   MemberChecker
	balances  balance.Service
	conflicts conflict.Service
	activity  activity.Recorder
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counters counter.Repository,
	members MemberChecker,
	balances balance.Service,
	conflicts conflict.Service,
	recorder activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		counters:  counters,
		members:   members,
		balances:  balances,
		conflicts: conflicts,
		activity:  recorder,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, tc tenant.Context, req CreateLeaveRequest) (SubmitLeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if err := tc.Validate(); err != nil {
		return SubmitLeaveResponse{}, err
	}
	startDate, endDate, err := validateCreateRequest(&req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	belongs, err := s.members.BelongsToCompany(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		s.logger.Error("create leave employee company check failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	if !belongs {
		return SubmitLeaveResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, tc.CompanyID, tc.ActorID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("company_id", tc.CompanyID),
			zap.String("employee_id", tc.ActorID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return SubmitLeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	seq, err := s.counters.WithTx(tx).GetNextValue(ctx, tc.CompanyID, counter.TypeLeave)
	if err != nil {
		s.logger.Error("create leave reference failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	actorUUID := uuid.MustParse(tc.ActorID)
	l := &Leave{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(tc.CompanyID),
		EmployeeID:    actorUUID,
		Reference:     counter.Reference("LV", seq),
		LeaveType:     req.LeaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		HalfDay:       req.HalfDay,
		TotalDays:     Duration(startDate, endDate, req.HalfDay),
		Reason:        req.Reason,
		AttachmentURL: req.AttachmentURL,
		Status:        StatusPending,
		CreatedBy:     actorUUID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("reference", l.Reference),
		zap.String("company_id", tc.CompanyID),
	)

	s.record(ctx, activity.Entry{
		CompanyID:   tc.CompanyID,
		ActorID:     tc.ActorID,
		Action:      activity.ActionSubmitted,
		EntityType:  string(request.KindLeave),
		EntityID:    l.ID.String(),
		Description: fmt.Sprintf("submitted %s (%s days %s)", l.Reference, l.TotalDays.String(), l.LeaveType),
	})

	resp := SubmitLeaveResponse{Leave: mapToResponse(*l)}
	preview, report := s.preview(ctx, l.ToRequest())
	resp.Balance = preview
	resp.Conflicts = report
	resp.Warnings = warnings(preview, report)
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, tc tenant.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.EmployeeID.String() != tc.ActorID {
		if err := tc.RequireRole(tenant.RoleManager); err != nil {
			return LeaveResponse{}, err
		}
	}
	return mapToResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, tc tenant.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAllByEmployee(ctx, tc.CompanyID, tc.ActorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) CheckConflicts(ctx context.Context, tc tenant.Context, q ConflictQuery) (conflict.Report, error) {
	employeeID := q.EmployeeID
	if employeeID == "" {
		employeeID = tc.ActorID
	}
	if employeeID != tc.ActorID {
		if err := tc.RequireRole(tenant.RoleManager); err != nil {
			return conflict.Report{}, err
		}
	}

	startDate, endDate, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return conflict.Report{}, err
	}

	belongs, err := s.members.BelongsToCompany(ctx, tc.CompanyID, employeeID)
	if err != nil {
		return conflict.Report{}, err
	}
	if !belongs {
		return conflict.Report{}, leaveerrors.ErrEmployeeNotInCompany
	}
	return s.conflicts.Check(ctx, tc.CompanyID, employeeID, startDate, endDate, "")
}

func (s *service) Advise(ctx context.Context, r request.Request) []string {
	preview, report := s.preview(ctx, r)
	return warnings(preview, report)
}

func (s *service) preview(ctx context.Context, r request.Request) (*balance.Preview, *conflict.Report) {
	if r.Window == nil {
		return nil, nil
	}
	log := s.logger.With(zap.String("leave_id", r.ID), zap.String("company_id", r.CompanyID))

	var preview *balance.Preview
	p, err := s.balances.Preview(ctx, r.CompanyID, r.RequesterID, r.Category, r.Window.Start, r.Days)
	if err != nil {
		log.Warn("leave balance preview failed", zap.Error(err))
	} else {
		preview = &p
	}

	var report *conflict.Report
	rep, err := s.conflicts.Check(ctx, r.CompanyID, r.RequesterID, r.Window.Start, r.Window.End, r.ID)
	if err != nil {
		log.Warn("leave conflict check failed", zap.Error(err))
	} else {
		report = &rep
	}
	return preview, report
}

func (s *service) record(ctx context.Context, e activity.Entry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, e); err != nil {
		s.logger.Warn("record leave activity failed",
			zap.String("entity_id", e.EntityID),
			zap.String("action", e.Action),
			zap.Error(err),
		)
	}
}

func warnings(preview *balance.Preview, report *conflict.Report) []string {
	var out []string
	if preview != nil && preview.Insufficient {
		out = append(out, fmt.Sprintf("insufficient %s balance: %s day(s) available, %s after this leave",
			preview.Category, preview.AvailableBefore.String(), preview.AvailableAfter.String()))
	}
	if report != nil && report.HasConflict {
		out = append(out, report.Message)
	}
	return out
}

// validateCreateRequest normalises the leave type to its upper-case policy key.
func validateCreateRequest(req *CreateLeaveRequest) (time.Time, time.Time, error) {
	req.LeaveType = strings.ToUpper(strings.TrimSpace(req.LeaveType))
	if req.LeaveType == "" {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}
	return parseRange(req.StartDate, req.EndDate)
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		Reference:       l.Reference,
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format("2006-01-02"),
		EndDate:         l.EndDate.Format("2006-01-02"),
		HalfDay:         l.HalfDay,
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		AttachmentURL:   l.AttachmentURL,
		Status:          l.Status,
		ApprovalStep:    l.ApprovalStep,
		ApproverComment: l.ApproverComment,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
