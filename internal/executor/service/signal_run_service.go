package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/common"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/telegram"
	"golang-stock-signal/pkg/utils"
)

// StreamClient is the subset of the redis client used by the run trigger stream.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XDel(ctx context.Context, stream string, ids ...string) *redis.IntCmd
	XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd
	XPendingExt(ctx context.Context, a *redis.XPendingExtArgs) *redis.XPendingExtCmd
}

// SignalRunService triggers pipeline runs through a redis stream so that the API, the
// cron schedule and the CLI share one queue.
type SignalRunService interface {
	Enqueue(ctx context.Context, req dto.RunRequest) (string, error)
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

type signalRunService struct {
	cfg         *config.Config
	redisClient StreamClient
	pipeline    Pipeline
	telegramBot telegram.Notifier
	log         *logger.Logger
}

func NewSignalRunService(
	cfg *config.Config,
	redisClient StreamClient,
	pipeline Pipeline,
	telegramBot telegram.Notifier,
	log *logger.Logger,
) SignalRunService {
	return &signalRunService{
		cfg:         cfg,
		redisClient: redisClient,
		pipeline:    pipeline,
		telegramBot: telegramBot,
		log:         log,
	}
}

// Enqueue assigns the run id up front so the caller can poll for the run record.
func (s *signalRunService) Enqueue(ctx context.Context, req dto.RunRequest) (string, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run request: %w", err)
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamSignalRun,
		MaxLen: s.cfg.Redis.StreamMaxLen,
		Approx: s.cfg.Redis.StreamMaxLen > 0,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue run: %w", err)
	}

	s.log.Info("Pipeline run enqueued",
		logger.StringField("run_id", req.RunID),
		logger.StringField("source", req.Source),
		logger.IntField("symbols", len(req.Symbols)),
	)
	return req.RunID, nil
}

// ProcessTask reads one run request and executes it. A run that could not start stays
// pending and is picked up by ProcessRetries.
func (s *signalRunService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamSignalRun, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}
	message := streams[0].Messages[0]

	req, err := decodeRunRequest(message)
	if err != nil {
		s.log.Error("Dropping malformed run request", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		_ = s.ackAndDelete(ctx, message.ID)
		return
	}

	if err := s.execute(ctx, req); err != nil {
		s.log.Error("Pipeline run failed", logger.ErrorField(err), logger.StringField("message_id", message.ID), logger.StringField("run_id", req.RunID))
		return
	}
	if err := s.ackAndDelete(ctx, message.ID); err != nil {
		s.log.Error("Failed to acknowledge run request", logger.ErrorField(err), logger.StringField("message_id", message.ID))
	}
}

// ProcessRetries re-runs a request that stayed pending longer than the idle window, and
// gives up with an alert after the configured number of deliveries.
func (s *signalRunService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamSignalRun,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Executor.RedisStreamSignalRunMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim pending run request", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.log.Debug("Retry no pending messages found", logger.StringField("stream", common.RedisStreamSignalRun))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamSignalRun,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("Pending message not found after claim", logger.StringField("message_id", msg.ID))
		return
	}

	req, err := decodeRunRequest(msg)
	if err != nil {
		s.log.Error("Dropping malformed run request", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		_ = s.ackAndDelete(ctx, msg.ID)
		return
	}

	if pendingInfo[0].RetryCount >= int64(s.cfg.Executor.RedisStreamSignalRunMaxRetry) {
		s.log.Error("Run request retry count exceeded",
			logger.StringField("message_id", msg.ID),
			logger.StringField("run_id", req.RunID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", s.cfg.Executor.RedisStreamSignalRunMaxRetry),
		)
		if s.telegramBot != nil {
			alert := telegram.FormatErrorAlertMessage(utils.TimeNowICT(), "Pipeline run retry exceeded",
				fmt.Sprintf("Run %s was delivered %d times without completing", req.RunID, pendingInfo[0].RetryCount), msg.ID)
			if err := s.telegramBot.SendMessage(alert); err != nil {
				s.log.Error("Failed to send retry exceeded alert", logger.ErrorField(err))
			}
		}
		_ = s.ackAndDelete(ctx, msg.ID)
		return
	}

	if err := s.execute(ctx, req); err != nil {
		s.log.Error("Retried pipeline run failed", logger.ErrorField(err), logger.StringField("run_id", req.RunID))
		return
	}
	if err := s.ackAndDelete(ctx, msg.ID); err != nil {
		s.log.Error("Failed to acknowledge retried run request", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		return
	}
	s.log.Info("Retried pipeline run processed", logger.StringField("run_id", req.RunID))
}

// execute treats a run that returned a report as done even when some symbols failed.
// Only a run that could not fetch its candidates is left pending for a retry.
func (s *signalRunService) execute(ctx context.Context, req dto.RunRequest) error {
	_, err := s.pipeline.Run(ctx, req)
	return err
}

func (s *signalRunService) ackAndDelete(ctx context.Context, messageID string) error {
	if err := s.redisClient.XAck(ctx, common.RedisStreamSignalRun, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	return s.redisClient.XDel(ctx, common.RedisStreamSignalRun, messageID).Err()
}

func decodeRunRequest(msg redis.XMessage) (dto.RunRequest, error) {
	var req dto.RunRequest
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return req, errors.New("field 'payload' not found or not a string")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal run request: %w", err)
	}
	return req, nil
}
