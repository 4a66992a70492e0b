package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/balance"
	balanceerrors "go-workforce/internal/balance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeBalanceRepository struct {
	findPolicyForEmployeeFn func(ctx context.Context, companyID, employeeID string) (*balance.LeavePolicy, error)
	findPolicyByIDFn        func(ctx context.Context, companyID, id string) (*balance.LeavePolicy, error)
	listPoliciesFn          func(ctx context.Context, companyID string) ([]balance.LeavePolicy, error)
	createPolicyFn          func(ctx context.Context, p *balance.LeavePolicy) error
	updatePolicyFn          func(ctx context.Context, p *balance.LeavePolicy) error
	clearDefaultFn          func(ctx context.Context, companyID, exceptID string) error
	assignPolicyFn          func(ctx context.Context, a *balance.PolicyAssignment) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) FindPolicyForEmployee(ctx context.Context, companyID, employeeID string) (*balance.LeavePolicy, error) {
	if f.findPolicyForEmployeeFn != nil {
		return f.findPolicyForEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, balanceerrors.ErrPolicyNotFound
}

func (f *fakeBalanceRepository) FindPolicyByID(ctx context.Context, companyID, id string) (*balance.LeavePolicy, error) {
	if f.findPolicyByIDFn != nil {
		return f.findPolicyByIDFn(ctx, companyID, id)
	}
	return nil, balanceerrors.ErrPolicyNotFound
}

func (f *fakeBalanceRepository) ListPolicies(ctx context.Context, companyID string) ([]balance.LeavePolicy, error) {
	if f.listPoliciesFn != nil {
		return f.listPoliciesFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) CreatePolicy(ctx context.Context, p *balance.LeavePolicy) error {
	if f.createPolicyFn != nil {
		return f.createPolicyFn(ctx, p)
	}
	return nil
}

func (f *fakeBalanceRepository) UpdatePolicy(ctx context.Context, p *balance.LeavePolicy) error {
	if f.updatePolicyFn != nil {
		return f.updatePolicyFn(ctx, p)
	}
	return nil
}

func (f *fakeBalanceRepository) ClearDefault(ctx context.Context, companyID, exceptID string) error {
	if f.clearDefaultFn != nil {
		return f.clearDefaultFn(ctx, companyID, exceptID)
	}
	return nil
}

func (f *fakeBalanceRepository) AssignPolicy(ctx context.Context, a *balance.PolicyAssignment) error {
	if f.assignPolicyFn != nil {
		return f.assignPolicyFn(ctx, a)
	}
	return nil
}

type approvedLeave struct {
	category string
	start    time.Time
	days     decimal.Decimal
}

// ledgerConsumption sums an in-memory list of approved leaves the way the
// leave repository does in SQL.
type ledgerConsumption struct {
	leaves []approvedLeave
	err    error
}

func (l *ledgerConsumption) SumApprovedDays(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := map[string]decimal.Decimal{}
	for _, lv := range l.leaves {
		if lv.start.Before(from) || !lv.start.Before(to) {
			continue
		}
		out[lv.category] = out[lv.category].Add(lv.days)
	}
	return out, nil
}

type fakeMembers struct {
	belongs bool
	err     error
}

func (f fakeMembers) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return f.belongs, f.err
}

func testPolicy(companyID string, carryOver int64) *balance.LeavePolicy {
	return &balance.LeavePolicy{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Name:      "Standard",
		Entitlements: datatypes.NewJSONType(map[string]decimal.Decimal{
			"ANNUAL": decimal.NewFromInt(20),
			"SICK":   decimal.NewFromInt(10),
		}),
		CarryOverLimit:  decimal.NewFromInt(carryOver),
		CycleStartMonth: 1,
	}
}

func TestBalanceService_GetBalanceAt(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID := uuid.NewString()
	at := date("2026-06-01")

	t.Run("approving three days reduces only that category", func(t *testing.T) {
		policy := testPolicy(companyID, 0)
		repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, employeeID, eid)
			return policy, nil
		}}
		ledger := &ledgerConsumption{}
		svc := balance.NewService(nil, repo, ledger, fakeMembers{belongs: true})

		before, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		assert.True(t, before.Available()["ANNUAL"].Equal(decimal.NewFromInt(20)))

		ledger.leaves = append(ledger.leaves, approvedLeave{category: "ANNUAL", start: date("2026-05-04"), days: decimal.NewFromInt(3)})

		after, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		assert.True(t, after.Available()["ANNUAL"].Equal(decimal.NewFromInt(17)), after.Available()["ANNUAL"].String())
		assert.True(t, after.Available()["SICK"].Equal(before.Available()["SICK"]))
		assert.Equal(t, "2026-01-01", after.CycleStart)
		assert.Equal(t, "2026-12-31", after.CycleEnd)
	})

	t.Run("idempotent read", func(t *testing.T) {
		policy := testPolicy(companyID, 5)
		repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
			return policy, nil
		}}
		ledger := &ledgerConsumption{leaves: []approvedLeave{
			{category: "ANNUAL", start: date("2026-02-02"), days: decimal.RequireFromString("0.5")},
			{category: "SICK", start: date("2025-11-10"), days: decimal.NewFromInt(2)},
		}}
		svc := balance.NewService(nil, repo, ledger, fakeMembers{belongs: true})

		first, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		second, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, "19.5", first.Available()["ANNUAL"].String())
	})

	t.Run("carry over is bounded by the policy limit", func(t *testing.T) {
		policy := testPolicy(companyID, 5)
		policy.CreatedAt = date("2024-11-15")
		repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
			return policy, nil
		}}
		ledger := &ledgerConsumption{leaves: []approvedLeave{
			{category: "ANNUAL", start: date("2025-03-02"), days: decimal.NewFromInt(12)},
			{category: "SICK", start: date("2025-04-02"), days: decimal.NewFromInt(7)},
		}}
		svc := balance.NewService(nil, repo, ledger, fakeMembers{belongs: true})

		got, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)

		byCategory := map[string]balance.CategoryBalance{}
		for _, c := range got.Categories {
			byCategory[c.Category] = c
		}
		assert.Equal(t, "5", byCategory["ANNUAL"].CarriedOver.String())
		assert.Equal(t, "25", byCategory["ANNUAL"].Available.String())
		assert.Equal(t, "3", byCategory["SICK"].CarriedOver.String())
		assert.Equal(t, "13", byCategory["SICK"].Available.String())
	})

	t.Run("no carry over without prior cycle history", func(t *testing.T) {
		policy := testPolicy(companyID, 5)
		policy.CreatedAt = date("2026-01-10")
		repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
			return policy, nil
		}}
		ledger := &ledgerConsumption{}
		svc := balance.NewService(nil, repo, ledger, fakeMembers{belongs: true})

		before, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		for _, c := range before.Categories {
			assert.True(t, c.CarriedOver.IsZero(), c.Category)
		}
		assert.Equal(t, "20", before.Available()["ANNUAL"].String())

		ledger.leaves = append(ledger.leaves, approvedLeave{category: "ANNUAL", start: date("2026-03-02"), days: decimal.NewFromInt(3)})

		after, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		require.NoError(t, err)
		assert.Equal(t, "17", after.Available()["ANNUAL"].String())
	})

	t.Run("negative employee outside tenant", func(t *testing.T) {
		svc := balance.NewService(nil, &fakeBalanceRepository{}, &ledgerConsumption{}, fakeMembers{belongs: false})

		_, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		assert.ErrorIs(t, err, balanceerrors.ErrEmployeeNotFound)
	})

	t.Run("negative no policy", func(t *testing.T) {
		svc := balance.NewService(nil, &fakeBalanceRepository{}, &ledgerConsumption{}, fakeMembers{belongs: true})

		_, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		assert.ErrorIs(t, err, balanceerrors.ErrPolicyNotFound)
	})

	t.Run("negative consumption error", func(t *testing.T) {
		repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
			return testPolicy(companyID, 0), nil
		}}
		svc := balance.NewService(nil, repo, &ledgerConsumption{err: errors.New("db down")}, fakeMembers{belongs: true})

		_, err := svc.GetBalanceAt(ctx, companyID, employeeID, at)
		assert.EqualError(t, err, "db down")
	})
}

func TestBalanceService_Preview(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID := uuid.NewString()

	repo := &fakeBalanceRepository{findPolicyForEmployeeFn: func(ctx context.Context, cid, eid string) (*balance.LeavePolicy, error) {
		return testPolicy(companyID, 0), nil
	}}
	ledger := &ledgerConsumption{leaves: []approvedLeave{
		{category: "SICK", start: date("2026-02-02"), days: decimal.NewFromInt(9)},
	}}
	svc := balance.NewService(nil, repo, ledger, fakeMembers{belongs: true})

	t.Run("insufficient is flagged not rejected", func(t *testing.T) {
		p, err := svc.Preview(ctx, companyID, employeeID, "SICK", date("2026-03-01"), decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.True(t, p.Tracked)
		assert.True(t, p.Insufficient)
		assert.Equal(t, "1", p.AvailableBefore.String())
		assert.Equal(t, "-1", p.AvailableAfter.String())
	})

	t.Run("untracked category", func(t *testing.T) {
		p, err := svc.Preview(ctx, companyID, employeeID, "UNPAID", date("2026-03-01"), decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.False(t, p.Tracked)
		assert.False(t, p.Insufficient)
	})

	t.Run("missing policy is untracked", func(t *testing.T) {
		svc := balance.NewService(nil, &fakeBalanceRepository{}, ledger, fakeMembers{belongs: true})
		p, err := svc.Preview(ctx, companyID, employeeID, "SICK", date("2026-03-01"), decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.False(t, p.Tracked)
	})
}

func TestBalanceService_CreatePolicy(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()

	t.Run("success default clears previous default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit()

		cleared := false
		repo := &fakeBalanceRepository{
			clearDefaultFn: func(ctx context.Context, cid, exceptID string) error {
				assert.Equal(t, companyID, cid)
				assert.Empty(t, exceptID)
				cleared = true
				return nil
			},
			createPolicyFn: func(ctx context.Context, p *balance.LeavePolicy) error {
				assert.True(t, p.IsDefault)
				assert.Equal(t, 1, p.CycleStartMonth)
				days, ok := p.Entitlement("ANNUAL")
				assert.True(t, ok)
				assert.Equal(t, "20", days.String())
				return nil
			},
		}
		svc := balance.NewService(db, repo, &ledgerConsumption{}, fakeMembers{belongs: true})

		resp, err := svc.CreatePolicy(ctx, companyID, balance.PolicyRequest{
			Name:         "Standard",
			Entitlements: map[string]decimal.Decimal{" annual ": decimal.NewFromInt(20)},
			IsDefault:    true,
		})

		require.NoError(t, err)
		assert.True(t, cleared)
		assert.Contains(t, resp.Entitlements, "ANNUAL")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative entitlement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := balance.NewService(db, &fakeBalanceRepository{}, &ledgerConsumption{}, fakeMembers{belongs: true})

		_, err = svc.CreatePolicy(ctx, companyID, balance.PolicyRequest{
			Name:         "Broken",
			Entitlements: map[string]decimal.Decimal{"ANNUAL": decimal.NewFromInt(-1)},
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidEntitlement)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative persist failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		repo := &fakeBalanceRepository{createPolicyFn: func(ctx context.Context, p *balance.LeavePolicy) error {
			return errors.New("insert failed")
		}}
		svc := balance.NewService(db, repo, &ledgerConsumption{}, fakeMembers{belongs: true})

		_, err = svc.CreatePolicy(ctx, companyID, balance.PolicyRequest{
			Name:         "Standard",
			Entitlements: map[string]decimal.Decimal{"ANNUAL": decimal.NewFromInt(20)},
		})

		assert.EqualError(t, err, "insert failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBalanceService_AssignPolicy(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID := uuid.NewString()
	policy := testPolicy(companyID, 0)

	t.Run("success", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			findPolicyByIDFn: func(ctx context.Context, cid, id string) (*balance.LeavePolicy, error) {
				return policy, nil
			},
			assignPolicyFn: func(ctx context.Context, a *balance.PolicyAssignment) error {
				assert.Equal(t, policy.ID, a.PolicyID)
				assert.Equal(t, employeeID, a.EmployeeID.String())
				return nil
			},
		}
		svc := balance.NewService(nil, repo, &ledgerConsumption{}, fakeMembers{belongs: true})

		assert.NoError(t, svc.AssignPolicy(ctx, companyID, policy.ID.String(), employeeID))
	})

	t.Run("negative employee outside tenant", func(t *testing.T) {
		repo := &fakeBalanceRepository{findPolicyByIDFn: func(ctx context.Context, cid, id string) (*balance.LeavePolicy, error) {
			return policy, nil
		}}
		svc := balance.NewService(nil, repo, &ledgerConsumption{}, fakeMembers{belongs: false})

		err := svc.AssignPolicy(ctx, companyID, policy.ID.String(), employeeID)
		assert.ErrorIs(t, err, balanceerrors.ErrEmployeeNotFound)
	})
}
