package expense_test

import (
	"context"
	"testing"
	"time"

	"go-workforce/internal/expense"
	"go-workforce/internal/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openExpenseTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&expense.Expense{}))
	return db
}

func TestExpenseRepository_MarkReimbursed(t *testing.T) {
	ctx := context.Background()
	repo := expense.NewRepository(openExpenseTestDB(t))
	companyID := uuid.New()
	hrID := uuid.NewString()

	seed := func(status string) *expense.Expense {
		e := &expense.Expense{
			ID:          uuid.New(),
			CompanyID:   companyID,
			EmployeeID:  uuid.New(),
			Reference:   "EXP-000001",
			Category:    "TRAVEL",
			Amount:      decimal.NewFromInt(300),
			Currency:    "IDR",
			ExpenseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Status:      status,
		}
		e.CreatedBy = e.EmployeeID
		require.NoError(t, repo.Create(ctx, e))
		return e
	}

	t.Run("approved claim", func(t *testing.T) {
		e := seed(expense.StatusApproved)

		require.NoError(t, repo.MarkReimbursed(ctx, companyID.String(), e.ID.String(), hrID, time.Now().UTC()))

		got, err := repo.FindByIDAndCompany(ctx, companyID.String(), e.ID.String())
		require.NoError(t, err)
		assert.Equal(t, expense.StatusReimbursed, got.Status)
		require.NotNil(t, got.ReimbursedBy)
		assert.Equal(t, hrID, got.ReimbursedBy.String())
		assert.NotNil(t, got.ReimbursedAt)
	})

	t.Run("pending claim is stale", func(t *testing.T) {
		e := seed(expense.StatusPending)

		err := repo.MarkReimbursed(ctx, companyID.String(), e.ID.String(), hrID, time.Now().UTC())

		assert.ErrorIs(t, err, request.ErrStaleStatus)
	})

	t.Run("other tenant", func(t *testing.T) {
		e := seed(expense.StatusApproved)

		err := repo.MarkReimbursed(ctx, uuid.NewString(), e.ID.String(), hrID, time.Now().UTC())

		assert.ErrorIs(t, err, request.ErrNotFound)
	})

	t.Run("pending projection carries amount", func(t *testing.T) {
		seed(expense.StatusPending)

		items, err := repo.ListPendingRequests(ctx, companyID.String(), "")
		require.NoError(t, err)
		require.NotEmpty(t, items)
		assert.Equal(t, request.KindExpense, items[0].Kind)
		assert.True(t, decimal.NewFromInt(300).Equal(items[0].Amount))
	})
}
