package consumer

import (
	"context"
	"errors"
	"strings"

	"go-workforce/internal/activity"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeApprovalActivity stores approval activity events until ctx is
// cancelled. Offsets are committed only after the row is stored, so a crash
// redelivers and the insert dedupes on event id.
func ConsumeApprovalActivity(
	ctx context.Context,
	reader MessageReader,
	activityService activity.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.approval_activity")
	log.Info("approval activity consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval activity consumer stopped")
				return
			}
			log.Error("fetch approval activity message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, reader, activityService, log, msg)
	}
}

func handleMessage(
	ctx context.Context,
	reader MessageReader,
	activityService activity.Service,
	log *zap.Logger,
	msg kafkago.Message,
) {
	inserted, err := activityService.Ingest(ctx, msg.Value)
	switch {
	case errors.Is(err, activity.ErrMalformedEvent):
		log.Error("decode approval activity event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	case err != nil && isDuplicateActivity(err):
		log.Warn("approval activity already stored, skipping", zap.Int64("offset", msg.Offset))
	case err != nil:
		log.Error("store approval activity failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	case !inserted:
		log.Debug("approval activity redelivered", zap.Int64("offset", msg.Offset))
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit approval activity message failed", zap.Error(err))
		return
	}
	if err == nil && inserted {
		log.Info("approval activity stored", zap.Int64("offset", msg.Offset))
	}
}

func isDuplicateActivity(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "activity_logs_pkey"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "activity_logs_pkey")
}
