package balance

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	balanceerrors "go-workforce/internal/balance/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConsumptionReader sums approved leave days per category for leaves whose
// start date falls in [from, to). Implemented by the leave repository.
type ConsumptionReader interface {
	SumApprovedDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]decimal.Decimal, error)
}

type MemberChecker interface {
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, companyID, employeeID string) (BalanceResponse, error)
	GetBalanceAt(ctx context.Context, companyID, employeeID string, at time.Time) (BalanceResponse, error)
	Preview(ctx context.Context, companyID, employeeID, category string, start time.Time, days decimal.Decimal) (Preview, error)

	ListPolicies(ctx context.Context, companyID string) ([]PolicyResponse, error)
	CreatePolicy(ctx context.Context, companyID string, req PolicyRequest) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, companyID, id string, req PolicyRequest) (PolicyResponse, error)
	AssignPolicy(ctx context.Context, companyID, policyID, employeeID string) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	consumption ConsumptionReader
	members     MemberChecker
	logger      *zap.Logger
}

func NewService(db *sql.DB, repo Repository, consumption ConsumptionReader, members MemberChecker, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, consumption: consumption, members: members, logger: l}
}

func (s *service) GetBalance(ctx context.Context, companyID, employeeID string) (BalanceResponse, error) {
	return s.GetBalanceAt(ctx, companyID, employeeID, time.Now().UTC())
}

// GetBalanceAt is a pure read: available = entitlement + carried over - consumed,
// all recomputed from approved leaves.
func (s *service) GetBalanceAt(ctx context.Context, companyID, employeeID string, at time.Time) (BalanceResponse, error) {
	ok, err := s.members.BelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("balance member check failed", zap.String("company_id", companyID), zap.Error(err))
		return BalanceResponse{}, err
	}
	if !ok {
		return BalanceResponse{}, balanceerrors.ErrEmployeeNotFound
	}

	policy, err := s.repo.FindPolicyForEmployee(ctx, companyID, employeeID)
	if err != nil {
		if !errors.Is(err, balanceerrors.ErrPolicyNotFound) {
			s.logger.Error("balance policy lookup failed",
				zap.String("company_id", companyID),
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
		return BalanceResponse{}, err
	}

	cycle := CycleContaining(at, policy.CycleStartMonth)
	consumed, err := s.consumption.SumApprovedDays(ctx, companyID, employeeID, cycle.Start, cycle.End)
	if err != nil {
		s.logger.Error("balance consumption read failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	carried := make(map[string]decimal.Decimal)
	prev := cycle.Previous()
	if policy.CarryOverLimit.IsPositive() && coveredCycle(policy, prev) {
		prevConsumed, err := s.consumption.SumApprovedDays(ctx, companyID, employeeID, prev.Start, prev.End)
		if err != nil {
			s.logger.Error("balance carry-over read failed", zap.String("employee_id", employeeID), zap.Error(err))
			return BalanceResponse{}, err
		}
		for category, entitlement := range policy.Entitlements.Data() {
			unused := entitlement.Sub(prevConsumed[category])
			carried[category] = decimal.Min(decimal.Max(unused, decimal.Zero), policy.CarryOverLimit)
		}
	}

	resp := BalanceResponse{
		EmployeeID: employeeID,
		PolicyID:   policy.ID.String(),
		PolicyName: policy.Name,
		CycleStart: cycle.Start.Format("2006-01-02"),
		CycleEnd:   cycle.End.AddDate(0, 0, -1).Format("2006-01-02"),
	}
	for category, entitlement := range policy.Entitlements.Data() {
		c := CategoryBalance{
			Category:    category,
			Entitlement: entitlement,
			CarriedOver: carried[category],
			Consumed:    consumed[category],
		}
		c.Available = c.Entitlement.Add(c.CarriedOver).Sub(c.Consumed)
		resp.Categories = append(resp.Categories, c)
	}
	sort.Slice(resp.Categories, func(i, j int) bool {
		return resp.Categories[i].Category < resp.Categories[j].Category
	})
	return resp, nil
}

// Preview never fails on a missing policy; the leave is simply untracked.
func (s *service) Preview(ctx context.Context, companyID, employeeID, category string, start time.Time, days decimal.Decimal) (Preview, error) {
	out := Preview{Category: category}
	bal, err := s.GetBalanceAt(ctx, companyID, employeeID, start)
	if err != nil {
		if errors.Is(err, balanceerrors.ErrPolicyNotFound) {
			return out, nil
		}
		return Preview{}, err
	}
	for _, c := range bal.Categories {
		if c.Category != category {
			continue
		}
		out.Tracked = true
		out.AvailableBefore = c.Available
		out.AvailableAfter = c.Available.Sub(days)
		out.Insufficient = out.AvailableAfter.IsNegative()
	}
	return out, nil
}

func (s *service) ListPolicies(ctx context.Context, companyID string) ([]PolicyResponse, error) {
	policies, err := s.repo.ListPolicies(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]PolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapPolicyResponse(p)
	}
	return resp, nil
}

func (s *service) CreatePolicy(ctx context.Context, companyID string, req PolicyRequest) (PolicyResponse, error) {
	s.logger.Debug("create leave policy requested", zap.String("company_id", companyID), zap.String("name", req.Name))

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PolicyResponse{}, apperror.ErrInvalidInput
	}
	entitlements, err := validatePolicyRequest(&req)
	if err != nil {
		s.logger.Warn("create leave policy validation failed", zap.Error(err))
		return PolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave policy begin tx failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p := &LeavePolicy{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		Name:            strings.TrimSpace(req.Name),
		CarryOverLimit:  req.CarryOverLimit,
		CycleStartMonth: req.CycleStartMonth,
		IsDefault:       req.IsDefault,
	}
	p.Entitlements = newEntitlements(entitlements)

	if p.IsDefault {
		if err := qtx.ClearDefault(ctx, companyID, ""); err != nil {
			s.logger.Error("create leave policy clear default failed", zap.Error(err))
			return PolicyResponse{}, err
		}
	}
	if err := qtx.CreatePolicy(ctx, p); err != nil {
		s.logger.Error("create leave policy persist failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave policy commit failed", zap.Error(err))
		return PolicyResponse{}, err
	}

	s.logger.Info("create leave policy success",
		zap.String("company_id", companyID),
		zap.String("policy_id", p.ID.String()),
	)
	return mapPolicyResponse(*p), nil
}

func (s *service) UpdatePolicy(ctx context.Context, companyID, id string, req PolicyRequest) (PolicyResponse, error) {
	s.logger.Debug("update leave policy requested", zap.String("company_id", companyID), zap.String("policy_id", id))

	entitlements, err := validatePolicyRequest(&req)
	if err != nil {
		s.logger.Warn("update leave policy validation failed", zap.Error(err))
		return PolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave policy begin tx failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindPolicyByID(ctx, companyID, id)
	if err != nil {
		return PolicyResponse{}, err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Entitlements = newEntitlements(entitlements)
	p.CarryOverLimit = req.CarryOverLimit
	p.CycleStartMonth = req.CycleStartMonth
	p.IsDefault = req.IsDefault

	if p.IsDefault {
		if err := qtx.ClearDefault(ctx, companyID, id); err != nil {
			s.logger.Error("update leave policy clear default failed", zap.Error(err))
			return PolicyResponse{}, err
		}
	}
	if err := qtx.UpdatePolicy(ctx, p); err != nil {
		s.logger.Error("update leave policy persist failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave policy commit failed", zap.Error(err))
		return PolicyResponse{}, err
	}

	s.logger.Info("update leave policy success", zap.String("policy_id", id))
	return mapPolicyResponse(*p), nil
}

func (s *service) AssignPolicy(ctx context.Context, companyID, policyID, employeeID string) error {
	p, err := s.repo.FindPolicyByID(ctx, companyID, policyID)
	if err != nil {
		return err
	}
	ok, err := s.members.BelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return balanceerrors.ErrEmployeeNotFound
	}

	err = s.repo.AssignPolicy(ctx, &PolicyAssignment{
		CompanyID:  p.CompanyID,
		EmployeeID: uuid.MustParse(employeeID),
		PolicyID:   p.ID,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("assign leave policy failed",
			zap.String("policy_id", policyID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("assign leave policy success",
		zap.String("policy_id", policyID),
		zap.String("employee_id", employeeID),
	)
	return nil
}

// validatePolicyRequest normalizes categories to upper case.
func validatePolicyRequest(req *PolicyRequest) (map[string]decimal.Decimal, error) {
	if req.CycleStartMonth == 0 {
		req.CycleStartMonth = 1
	}
	if req.CycleStartMonth < 1 || req.CycleStartMonth > 12 {
		return nil, balanceerrors.ErrInvalidCycleStartMonth
	}
	if req.CarryOverLimit.IsNegative() {
		return nil, balanceerrors.ErrInvalidCarryOverLimit
	}
	out := make(map[string]decimal.Decimal, len(req.Entitlements))
	for category, days := range req.Entitlements {
		key := strings.ToUpper(strings.TrimSpace(category))
		if key == "" || days.IsNegative() {
			return nil, balanceerrors.ErrInvalidEntitlement
		}
		out[key] = days
	}
	return out, nil
}

func mapPolicyResponse(p LeavePolicy) PolicyResponse {
	return PolicyResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Entitlements:    p.Entitlements.Data(),
		CarryOverLimit:  p.CarryOverLimit,
		CycleStartMonth: p.CycleStartMonth,
		IsDefault:       p.IsDefault,
	}
}

// coveredCycle reports whether the policy was already in force before the
// cycle closed. Unused days only carry over from a cycle the policy covered.
func coveredCycle(policy *LeavePolicy, c Cycle) bool {
	return !policy.CreatedAt.IsZero() && policy.CreatedAt.Before(c.End)
}
