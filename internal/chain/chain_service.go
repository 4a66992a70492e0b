package chain

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	chainerrors "go-workforce/internal/chain/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ChainKeyPrefix = "approval_chains:"

	DefaultCacheTTL = 30 * time.Minute

	maxRequiredApprovals = 1
)

// GetChainKey is the cache key holding a company's chains of one kind.
func GetChainKey(companyID, kind string) string {
	return ChainKeyPrefix + companyID + ":" + kind
}

//go:generate mockgen -source=chain_service.go -destination=mock/chain_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, tc tenant.Context, req ChainRequest) (Definition, error)
	List(ctx context.Context, tc tenant.Context, kind string) ([]Definition, error)
	GetByID(ctx context.Context, tc tenant.Context, id string) (Definition, error)
	Update(ctx context.Context, tc tenant.Context, id string, req ChainRequest) (Definition, error)
	Delete(ctx context.Context, tc tenant.Context, id string) error

	// ListForKind is the cached read used by the resolver.
	ListForKind(ctx context.Context, companyID string, kind request.Kind) ([]Definition, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("chain.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chain.service")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, ttl: ttl, logger: l}
}

func (s *service) Create(ctx context.Context, tc tenant.Context, req ChainRequest) (Definition, error) {
	if err := tc.RequireRole(tenant.RoleAdmin); err != nil {
		return Definition{}, err
	}
	kind, steps, err := validateChainRequest(&req)
	if err != nil {
		s.logger.Warn("create chain validation failed", zap.String("company_id", tc.CompanyID), zap.Error(err))
		return Definition{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Definition{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	c := &ApprovalChain{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(tc.CompanyID),
		Name:        req.Name,
		RequestKind: string(kind),
		MinAmount:   req.MinAmount,
		MinDays:     req.MinDays,
		Steps:       steps,
		IsDefault:   req.IsDefault,
	}
	if c.IsDefault {
		if err := qtx.ClearDefault(ctx, tc.CompanyID, c.RequestKind, ""); err != nil {
			s.logger.Error("create chain clear default failed", zap.Error(err))
			return Definition{}, err
		}
	}
	if err := qtx.Create(ctx, c); err != nil {
		s.logger.Error("create chain persist failed", zap.Error(err))
		return Definition{}, err
	}
	if err := tx.Commit(); err != nil {
		return Definition{}, err
	}

	s.invalidate(ctx, tc.CompanyID, c.RequestKind)
	s.logger.Info("create chain success",
		zap.String("chain_id", c.ID.String()),
		zap.String("company_id", tc.CompanyID),
		zap.String("request_kind", c.RequestKind),
	)
	return mapToDefinition(*c), nil
}

func (s *service) List(ctx context.Context, tc tenant.Context, kind string) ([]Definition, error) {
	if err := tc.RequireRole(tenant.RoleAdmin); err != nil {
		return nil, err
	}
	if kind != "" {
		k, ok := request.ParseKind(kind)
		if !ok {
			return nil, chainerrors.ErrInvalidKind
		}
		kind = string(k)
	}
	chains, err := s.repo.ListByCompany(ctx, tc.CompanyID, kind)
	if err != nil {
		return nil, err
	}
	return mapToDefinitions(chains), nil
}

func (s *service) GetByID(ctx context.Context, tc tenant.Context, id string) (Definition, error) {
	if err := tc.RequireRole(tenant.RoleAdmin); err != nil {
		return Definition{}, err
	}
	c, err := s.repo.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return Definition{}, err
	}
	return mapToDefinition(*c), nil
}

// Update replaces a chain's definition. In-flight requests keep the progress
// they recorded; the next approval is evaluated against the new steps.
func (s *service) Update(ctx context.Context, tc tenant.Context, id string, req ChainRequest) (Definition, error) {
	if err := tc.RequireRole(tenant.RoleAdmin); err != nil {
		return Definition{}, err
	}
	kind, steps, err := validateChainRequest(&req)
	if err != nil {
		return Definition{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Definition{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	c, err := qtx.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return Definition{}, err
	}
	previousKind := c.RequestKind

	c.Name = req.Name
	c.RequestKind = string(kind)
	c.MinAmount = req.MinAmount
	c.MinDays = req.MinDays
	c.Steps = steps
	c.IsDefault = req.IsDefault

	if c.IsDefault {
		if err := qtx.ClearDefault(ctx, tc.CompanyID, c.RequestKind, c.ID.String()); err != nil {
			return Definition{}, err
		}
	}
	if err := qtx.Update(ctx, c); err != nil {
		s.logger.Error("update chain persist failed", zap.String("chain_id", id), zap.Error(err))
		return Definition{}, err
	}
	if err := tx.Commit(); err != nil {
		return Definition{}, err
	}

	s.invalidate(ctx, tc.CompanyID, previousKind)
	if previousKind != c.RequestKind {
		s.invalidate(ctx, tc.CompanyID, c.RequestKind)
	}
	return mapToDefinition(*c), nil
}

func (s *service) Delete(ctx context.Context, tc tenant.Context, id string) error {
	if err := tc.RequireRole(tenant.RoleAdmin); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	c, err := qtx.FindByIDAndCompany(ctx, tc.CompanyID, id)
	if err != nil {
		return err
	}
	if err := qtx.Delete(ctx, tc.CompanyID, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidate(ctx, tc.CompanyID, c.RequestKind)
	return nil
}

func (s *service) ListForKind(ctx context.Context, companyID string, kind request.Kind) ([]Definition, error) {
	cacheKey := GetChainKey(companyID, string(kind))

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var defs []Definition
			if err := json.Unmarshal([]byte(cached), &defs); err == nil {
				return defs, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("chain cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		chains, err := s.repo.ListByCompany(ctx, companyID, string(kind))
		if err != nil {
			return nil, err
		}
		defs := mapToDefinitions(chains)

		if s.rdb != nil {
			if data, err := json.Marshal(defs); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
					s.logger.Warn("chain cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return defs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Definition), nil
}

func (s *service) invalidate(ctx context.Context, companyID, kind string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetChainKey(companyID, kind)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("chain cache invalidation failed", zap.String("key", cacheKey), zap.Error(err))
	}
}

func validateChainRequest(req *ChainRequest) (request.Kind, []Step, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "", nil, chainerrors.ErrNameRequired
	}
	kind, ok := request.ParseKind(req.RequestKind)
	if !ok {
		return "", nil, chainerrors.ErrInvalidKind
	}
	if len(req.Steps) == 0 {
		return "", nil, chainerrors.ErrStepsRequired
	}

	steps := make([]Step, len(req.Steps))
	for i, st := range req.Steps {
		role := tenant.Role(strings.ToLower(strings.TrimSpace(st.Role)))
		if !role.Valid() || role == tenant.RoleEmployee {
			return "", nil, chainerrors.ErrInvalidStepRole
		}
		n := st.RequiredApprovals
		if n == 0 {
			n = 1
		}
		if n < 1 || n > maxRequiredApprovals {
			return "", nil, chainerrors.ErrInvalidRequiredApprovals
		}
		steps[i] = Step{Role: string(role), RequiredApprovals: n}
	}

	if req.MinAmount != nil && kind != request.KindExpense {
		return "", nil, chainerrors.ErrConditionNotSupported
	}
	if req.MinDays != nil && kind != request.KindLeave {
		return "", nil, chainerrors.ErrConditionNotSupported
	}
	if !positiveOrNil(req.MinAmount) || !positiveOrNil(req.MinDays) {
		return "", nil, chainerrors.ErrInvalidCondition
	}
	hasCondition := req.MinAmount != nil || req.MinDays != nil
	if req.IsDefault && hasCondition {
		return "", nil, chainerrors.ErrDefaultHasCondition
	}
	if !req.IsDefault && !hasCondition {
		return "", nil, chainerrors.ErrConditionRequired
	}
	return kind, steps, nil
}

func positiveOrNil(d *decimal.Decimal) bool {
	return d == nil || d.IsPositive()
}

func mapToDefinition(c ApprovalChain) Definition {
	return Definition{
		ID:          c.ID.String(),
		Name:        c.Name,
		RequestKind: c.RequestKind,
		MinAmount:   c.MinAmount,
		MinDays:     c.MinDays,
		Steps:       []Step(c.Steps),
		IsDefault:   c.IsDefault,
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToDefinitions(chains []ApprovalChain) []Definition {
	defs := make([]Definition, len(chains))
	for i, c := range chains {
		defs[i] = mapToDefinition(c)
	}
	return defs
}
