package ticket_test

import (
	"context"
	"database/sql"
	"testing"

	activitymock "go-workforce/internal/activity/mock"
	countermock "go-workforce/internal/shared/counter/mock"
	"go-workforce/internal/tenant"
	"go-workforce/internal/ticket"
	ticketerrors "go-workforce/internal/ticket/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeTicketRepository struct {
	ticket.Repository
	created *ticket.Ticket
}

func (f *fakeTicketRepository) WithTx(tx *sql.Tx) ticket.Repository { return f }

func (f *fakeTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	f.created = t
	return nil
}

type allMembers struct{}

func (allMembers) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return true, nil
}

func TestTicketService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	tc := tenant.New(companyID, uuid.NewString(), tenant.RoleEmployee)

	t.Run("defaults priority", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		ctrl := gomock.NewController(t)
		counters := countermock.NewMockRepository(ctrl)
		recorder := activitymock.NewMockRecorder(ctrl)
		repo := &fakeTicketRepository{}
		svc := ticket.NewService(db, repo, counters, allMembers{}, recorder, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit()
		counters.EXPECT().WithTx(gomock.Any()).Return(counters)
		counters.EXPECT().GetNextValue(ctx, companyID, "internal_ticket").Return(int64(4), nil)
		recorder.EXPECT().Record(ctx, gomock.Any()).Return(nil)

		resp, err := svc.Create(ctx, tc, ticket.CreateTicketRequest{Category: "it", Subject: " VPN access "})

		require.NoError(t, err)
		assert.Equal(t, "TKT-000004", resp.Reference)
		assert.Equal(t, ticket.PriorityMedium, resp.Priority)
		assert.Equal(t, ticket.StatusOpen, resp.Status)
		assert.Equal(t, "VPN access", repo.created.Subject)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown priority", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		ctrl := gomock.NewController(t)
		svc := ticket.NewService(db, &fakeTicketRepository{}, countermock.NewMockRepository(ctrl), allMembers{}, nil, zap.NewNop())

		_, err = svc.Create(ctx, tc, ticket.CreateTicketRequest{Category: "it", Subject: "x", Priority: "whenever"})

		assert.ErrorIs(t, err, ticketerrors.ErrInvalidPriority)
	})
}
