package chain

import (
	"context"

	"go-workforce/internal/request"
	"go-workforce/internal/tenant"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Resolution describes where a request sits in its approval chain.
type Resolution struct {
	ChainID        string      `json:"chain_id,omitempty"`
	ChainName      string      `json:"chain_name,omitempty"`
	TotalApprovals int         `json:"total_approvals"`
	Approvals      int         `json:"approvals"`
	CurrentStep    int         `json:"current_step"`
	RequiredRole   tenant.Role `json:"required_role"`
	Fallback       bool        `json:"fallback"`
}

// IsFinal reports whether one more approval completes the chain.
func (r Resolution) IsFinal() bool {
	return r.Approvals+1 >= r.TotalApprovals
}

func (r Resolution) nextAfter(steps []Step) tenant.Role {
	_, role := stepAt(steps, r.Approvals+1)
	return role
}

// Resolver picks the chain governing a request. It is advisory: the state
// machine only uses it to decide whether an approval is final.
type Resolver interface {
	Resolve(ctx context.Context, r request.Request) Resolution
	// Next returns the resolution after one more approval is recorded.
	Next(ctx context.Context, r request.Request) (current Resolution, next tenant.Role)
}

type resolver struct {
	chains  Service
	enabled bool
	logger  *zap.Logger
}

func NewResolver(chains Service, enabled bool, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("chain.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chain.resolver")
	}
	return &resolver{chains: chains, enabled: enabled, logger: l}
}

func (rv *resolver) Resolve(ctx context.Context, r request.Request) Resolution {
	res, _ := rv.resolve(ctx, r)
	return res
}

func (rv *resolver) Next(ctx context.Context, r request.Request) (Resolution, tenant.Role) {
	res, steps := rv.resolve(ctx, r)
	if res.IsFinal() {
		return res, ""
	}
	return res, res.nextAfter(steps)
}

func (rv *resolver) resolve(ctx context.Context, r request.Request) (Resolution, []Step) {
	if !rv.enabled || rv.chains == nil {
		return fallback(r), nil
	}
	defs, err := rv.chains.ListForKind(ctx, r.CompanyID, r.Kind)
	if err != nil {
		rv.logger.Warn("chain lookup failed, using single-step approval",
			zap.String("company_id", r.CompanyID),
			zap.String("request_id", r.ID),
			zap.Error(err),
		)
		return fallback(r), nil
	}
	def, ok := Select(defs, r)
	if !ok {
		return fallback(r), nil
	}

	total := 0
	for _, st := range def.Steps {
		total += st.approvals()
	}
	idx, role := stepAt(def.Steps, r.ApprovalStep)
	if role == "" {
		// Recorded approvals already cover the chain, for instance after
		// an admin shortened it. The next approval closes the request.
		idx = len(def.Steps) - 1
		role = tenant.Role(def.Steps[idx].Role)
		total = r.ApprovalStep + 1
	}
	return Resolution{
		ChainID:        def.ID,
		ChainName:      def.Name,
		TotalApprovals: total,
		Approvals:      r.ApprovalStep,
		CurrentStep:    idx,
		RequiredRole:   role,
	}, def.Steps
}

// Select returns the chain whose condition matches r. Among matching
// conditional chains the highest threshold wins; the default chain is used
// when none match.
func Select(defs []Definition, r request.Request) (Definition, bool) {
	var (
		best    *Definition
		def     *Definition
		bestMin = decimal.Zero
	)
	for i := range defs {
		d := &defs[i]
		if d.RequestKind != string(r.Kind) || len(d.Steps) == 0 {
			continue
		}
		if d.IsDefault {
			if def == nil {
				def = d
			}
			continue
		}
		threshold, ok := d.threshold()
		if !ok || !d.Matches(r) {
			continue
		}
		if best == nil || threshold.GreaterThan(bestMin) {
			best = d
			bestMin = threshold
		}
	}
	if best != nil {
		return *best, true
	}
	if def != nil {
		return *def, true
	}
	return Definition{}, false
}

// Matches reports whether r satisfies the chain's trigger condition. A
// default chain matches everything of its kind.
func (d Definition) Matches(r request.Request) bool {
	if d.RequestKind != string(r.Kind) {
		return false
	}
	if d.IsDefault {
		return true
	}
	switch r.Kind {
	case request.KindExpense:
		return d.MinAmount != nil && r.Amount.GreaterThanOrEqual(*d.MinAmount)
	case request.KindLeave:
		return d.MinDays != nil && r.Days.GreaterThanOrEqual(*d.MinDays)
	}
	return false
}

func (d Definition) threshold() (decimal.Decimal, bool) {
	switch {
	case d.MinAmount != nil:
		return *d.MinAmount, true
	case d.MinDays != nil:
		return *d.MinDays, true
	}
	return decimal.Zero, false
}

// stepAt maps a count of recorded approvals onto the step that owns the
// next one. It returns "" once every step is satisfied.
func stepAt(steps []Step, approvals int) (int, tenant.Role) {
	seen := 0
	for i, st := range steps {
		seen += st.approvals()
		if approvals < seen {
			return i, tenant.Role(st.Role)
		}
	}
	return len(steps), ""
}

func fallback(r request.Request) Resolution {
	return Resolution{
		TotalApprovals: 1,
		Approvals:      r.ApprovalStep,
		RequiredRole:   tenant.RoleManager,
		Fallback:       true,
	}
}

// approvals is the number of recorded approvals a step consumes. Each step
// is met by exactly one approver; larger stored values count as one so a
// single actor cannot fill several slots of the same step.
func (Step) approvals() int {
	return 1
}
