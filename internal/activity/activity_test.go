package activity_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-workforce/internal/activity"
	"go-workforce/internal/messaging/kafka"
	kafkamock "go-workforce/internal/messaging/kafka/mock"
	"go-workforce/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestOutboxRecorder_Record(t *testing.T) {
	entry := activity.Entry{
		CompanyID:   uuid.NewString(),
		ActorID:     uuid.NewString(),
		Action:      activity.ActionApproved,
		EntityType:  "leave",
		EntityID:    uuid.NewString(),
		Description: "approved LV-000001",
	}

	t.Run("writes pending outbox row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		outbox := kafkamock.NewMockOutboxRepository(ctrl)
		ctx := contextutil.WithRequestID(context.Background(), "req-42")

		var got kafka.OutboxEvent
		outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			got = e
			return nil
		})

		err := activity.NewOutboxRecorder(outbox).Record(ctx, entry)
		require.NoError(t, err)

		assert.Equal(t, activity.TopicApprovalActivity, got.Topic)
		assert.Equal(t, "approval.approved", got.EventType)
		assert.Equal(t, entry.EntityID, got.AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, got.Status)
		assert.Equal(t, "req-42", got.RequestID)

		var event activity.Event
		require.NoError(t, json.Unmarshal(got.Payload, &event))
		assert.Equal(t, got.ID, event.EventID)
		assert.Equal(t, entry.ActorID, event.ActorID)
		assert.Equal(t, entry.Description, event.Description)
	})

	t.Run("propagates outbox error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		outbox := kafkamock.NewMockOutboxRepository(ctrl)
		outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		err := activity.NewOutboxRecorder(outbox).Record(context.Background(), entry)
		assert.EqualError(t, err, "db down")
	})

	t.Run("rejects incomplete entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		outbox := kafkamock.NewMockOutboxRepository(ctrl)

		err := activity.NewOutboxRecorder(outbox).Record(context.Background(), activity.Entry{Action: activity.ActionApproved})
		assert.ErrorIs(t, err, activity.ErrIncompleteEntry)
	})
}

func TestLogRecorder_Record(t *testing.T) {
	err := activity.NewLogRecorder(zap.NewNop()).Record(context.Background(), activity.Entry{Action: activity.ActionSubmitted})
	assert.NoError(t, err)
}
