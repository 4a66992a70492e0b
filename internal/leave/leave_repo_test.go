package leave_test

import (
	"context"
	"testing"
	"time"

	"go-workforce/internal/leave"
	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openLeaveTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&leave.Leave{}))
	return db
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedLeave(t *testing.T, repo leave.Repository, companyID, employeeID uuid.UUID, leaveType, start, end, status string) *leave.Leave {
	t.Helper()
	l := &leave.Leave{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Reference:  "LV-" + uuid.NewString()[:6],
		LeaveType:  leaveType,
		StartDate:  day(start),
		EndDate:    day(end),
		TotalDays:  leave.Duration(day(start), day(end), false),
		Status:     status,
		CreatedBy:  employeeID,
	}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestLeaveRepository_Queries(t *testing.T) {
	ctx := context.Background()
	repo := leave.NewRepository(openLeaveTestDB(t))

	companyID := uuid.New()
	otherCompany := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	approved := seedLeave(t, repo, companyID, alice, "ANNUAL", "2026-01-10", "2026-01-12", leave.StatusApproved)
	seedLeave(t, repo, companyID, alice, "SICK", "2026-02-02", "2026-02-02", leave.StatusApproved)
	seedLeave(t, repo, companyID, alice, "ANNUAL", "2026-03-02", "2026-03-03", leave.StatusRejected)
	pending := seedLeave(t, repo, companyID, bob, "ANNUAL", "2026-01-11", "2026-01-13", leave.StatusPending)
	seedLeave(t, repo, companyID, bob, "ANNUAL", "2026-01-12", "2026-01-12", leave.StatusCancelled)
	seedLeave(t, repo, otherCompany, alice, "ANNUAL", "2026-01-10", "2026-01-12", leave.StatusApproved)

	t.Run("find is tenant scoped", func(t *testing.T) {
		got, err := repo.FindByIDAndCompany(ctx, companyID.String(), approved.ID.String())
		require.NoError(t, err)
		assert.Equal(t, approved.Reference, got.Reference)

		_, err = repo.FindByIDAndCompany(ctx, otherCompany.String(), approved.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

		r, err := repo.FindRequest(ctx, companyID.String(), approved.ID.String())
		require.NoError(t, err)
		assert.Equal(t, request.KindLeave, r.Kind)
		assert.Equal(t, "ANNUAL", r.Category)
		require.NotNil(t, r.Window)
	})

	t.Run("own overlap ignores rejected and cancelled", func(t *testing.T) {
		overlap, err := repo.HasOverlappingPeriod(ctx, companyID.String(), alice.String(), day("2026-01-12"), day("2026-01-14"), nil)
		require.NoError(t, err)
		assert.True(t, overlap)

		overlap, err = repo.HasOverlappingPeriod(ctx, companyID.String(), alice.String(), day("2026-03-02"), day("2026-03-02"), nil)
		require.NoError(t, err)
		assert.False(t, overlap)

		id := approved.ID.String()
		overlap, err = repo.HasOverlappingPeriod(ctx, companyID.String(), alice.String(), day("2026-01-10"), day("2026-01-10"), &id)
		require.NoError(t, err)
		assert.False(t, overlap)
	})

	t.Run("active absences", func(t *testing.T) {
		absences, err := repo.ListActiveAbsences(ctx, companyID.String(), []string{alice.String(), bob.String()}, day("2026-01-12"), day("2026-01-12"))
		require.NoError(t, err)
		require.Len(t, absences, 2)
		ids := []string{absences[0].LeaveID, absences[1].LeaveID}
		assert.ElementsMatch(t, []string{approved.ID.String(), pending.ID.String()}, ids)

		absences, err = repo.ListActiveAbsences(ctx, companyID.String(), nil, day("2026-01-12"), day("2026-01-12"))
		require.NoError(t, err)
		assert.Empty(t, absences)
	})

	t.Run("approved days by category", func(t *testing.T) {
		sums, err := repo.SumApprovedDays(ctx, companyID.String(), alice.String(), day("2026-01-01"), day("2027-01-01"))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(3).Equal(sums["ANNUAL"]), sums["ANNUAL"].String())
		assert.True(t, decimal.NewFromInt(1).Equal(sums["SICK"]))

		sums, err = repo.SumApprovedDays(ctx, companyID.String(), alice.String(), day("2025-01-01"), day("2026-01-01"))
		require.NoError(t, err)
		assert.Empty(t, sums)
	})

	t.Run("pending inbox excludes own", func(t *testing.T) {
		items, err := repo.ListPendingRequests(ctx, companyID.String(), bob.String())
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = repo.ListPendingRequests(ctx, companyID.String(), alice.String())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, pending.ID.String(), items[0].ID)
	})

	t.Run("mine", func(t *testing.T) {
		leaves, err := repo.FindAllByEmployee(ctx, companyID.String(), alice.String())
		require.NoError(t, err)
		assert.Len(t, leaves, 3)
	})
}
