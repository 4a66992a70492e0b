package chain_test

import (
	"context"
	"testing"

	"go-workforce/internal/chain"
	chainerrors "go-workforce/internal/chain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openChainTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&chain.ApprovalChain{}))
	return db
}

func TestChainRepository(t *testing.T) {
	ctx := context.Background()
	repo := chain.NewRepository(openChainTestDB(t))
	companyID := uuid.New()
	otherCompany := uuid.New()

	seed := func(company uuid.UUID, name, kind string, isDefault bool) *chain.ApprovalChain {
		c := &chain.ApprovalChain{
			ID:          uuid.New(),
			CompanyID:   company,
			Name:        name,
			RequestKind: kind,
			Steps:       []chain.Step{{Role: "manager", RequiredApprovals: 1}, {Role: "hr", RequiredApprovals: 1}},
			IsDefault:   isDefault,
		}
		if !isDefault {
			c.MinDays = dec("5")
		}
		require.NoError(t, repo.Create(ctx, c))
		return c
	}

	oldDefault := seed(companyID, "Standard", "leave", true)
	long := seed(companyID, "Long leave", "leave", false)
	seed(companyID, "Tickets", "ticket", true)
	foreign := seed(otherCompany, "Standard", "leave", true)

	t.Run("steps round trip", func(t *testing.T) {
		got, err := repo.FindByIDAndCompany(ctx, companyID.String(), long.ID.String())
		require.NoError(t, err)
		require.Len(t, got.Steps, 2)
		assert.Equal(t, "hr", got.Steps[1].Role)
		require.NotNil(t, got.MinDays)
		assert.Equal(t, "5", got.MinDays.String())
	})

	t.Run("tenant scoped", func(t *testing.T) {
		_, err := repo.FindByIDAndCompany(ctx, companyID.String(), foreign.ID.String())
		assert.ErrorIs(t, err, chainerrors.ErrChainNotFound)

		_, err = repo.FindByIDAndCompany(ctx, companyID.String(), "not-a-uuid")
		assert.ErrorIs(t, err, chainerrors.ErrChainNotFound)
	})

	t.Run("list by kind", func(t *testing.T) {
		chains, err := repo.ListByCompany(ctx, companyID.String(), "leave")
		require.NoError(t, err)
		require.Len(t, chains, 2)
		assert.True(t, chains[0].IsDefault)

		all, err := repo.ListByCompany(ctx, companyID.String(), "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("clear default keeps other tenants", func(t *testing.T) {
		require.NoError(t, repo.ClearDefault(ctx, companyID.String(), "leave", ""))

		got, err := repo.FindByIDAndCompany(ctx, companyID.String(), oldDefault.ID.String())
		require.NoError(t, err)
		assert.False(t, got.IsDefault)

		other, err := repo.FindByIDAndCompany(ctx, otherCompany.String(), foreign.ID.String())
		require.NoError(t, err)
		assert.True(t, other.IsDefault)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, companyID.String(), long.ID.String()))

		_, err := repo.FindByIDAndCompany(ctx, companyID.String(), long.ID.String())
		assert.ErrorIs(t, err, chainerrors.ErrChainNotFound)

		err = repo.Delete(ctx, companyID.String(), long.ID.String())
		assert.ErrorIs(t, err, chainerrors.ErrChainNotFound)
	})
}
