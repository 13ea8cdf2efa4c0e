package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/common"
	"golang-stock-signal/pkg/logger"
)

type fakeStream struct {
	added    []map[string]interface{}
	messages []redis.XMessage
	claimed  []redis.XMessage
	retries  int64
	acked    []string
	deleted  []string
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a.Values.(map[string]interface{}))
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("1-0")
	return cmd
}

func (f *fakeStream) XReadGroup(ctx context.Context, _ *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	cmd := redis.NewXStreamSliceCmd(ctx)
	if len(f.messages) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal([]redis.XStream{{Stream: common.RedisStreamSignalRun, Messages: f.messages}})
	return cmd
}

func (f *fakeStream) XAck(ctx context.Context, _, _ string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(ids)))
	return cmd
}

func (f *fakeStream) XDel(ctx context.Context, _ string, ids ...string) *redis.IntCmd {
	f.deleted = append(f.deleted, ids...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(ids)))
	return cmd
}

func (f *fakeStream) XAutoClaim(ctx context.Context, _ *redis.XAutoClaimArgs) *redis.XAutoClaimCmd {
	cmd := redis.NewXAutoClaimCmd(ctx)
	cmd.SetVal(f.claimed, "0-0")
	return cmd
}

func (f *fakeStream) XPendingExt(ctx context.Context, _ *redis.XPendingExtArgs) *redis.XPendingExtCmd {
	cmd := redis.NewXPendingExtCmd(ctx)
	var out []redis.XPendingExt
	for _, m := range f.claimed {
		out = append(out, redis.XPendingExt{ID: m.ID, RetryCount: f.retries})
	}
	cmd.SetVal(out)
	return cmd
}

type fakePipeline struct {
	requests []dto.RunRequest
	err      error
}

func (p *fakePipeline) Run(_ context.Context, req dto.RunRequest) (*dto.RunReport, error) {
	p.requests = append(p.requests, req)
	return &dto.RunReport{RunID: req.RunID}, p.err
}

func (p *fakePipeline) Evaluate(context.Context, string) (*dto.SymbolResult, error) {
	return nil, errors.New("not used")
}

func (p *fakePipeline) ScanCrosses(context.Context, []string) ([]CrossCandidate, error) {
	return nil, errors.New("not used")
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.messages = append(n.messages, text)
	return nil
}

func runMessage(t *testing.T, id string, req dto.RunRequest) redis.XMessage {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return redis.XMessage{ID: id, Values: map[string]interface{}{"payload": string(body)}}
}

func testExecutorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Executor.RedisStreamSignalRunMaxRetry = 3
	return cfg
}

func TestSignalRunService_Enqueue(t *testing.T) {
	stream := &fakeStream{}
	svc := NewSignalRunService(testExecutorConfig(), stream, &fakePipeline{}, nil, logger.NewNop())

	runID, err := svc.Enqueue(context.Background(), dto.RunRequest{Symbols: []string{"FPT"}, Source: TriggerManual})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.Len(t, stream.added, 1)
	var req dto.RunRequest
	require.NoError(t, json.Unmarshal([]byte(stream.added[0]["payload"].(string)), &req))
	assert.Equal(t, runID, req.RunID)
	assert.Equal(t, []string{"FPT"}, req.Symbols)
}

func TestSignalRunService_ProcessTask(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{runMessage(t, "1-0", dto.RunRequest{RunID: "run-1"})}}
	p := &fakePipeline{}
	svc := NewSignalRunService(testExecutorConfig(), stream, p, nil, logger.NewNop())

	svc.ProcessTask(context.Background())

	require.Len(t, p.requests, 1)
	assert.Equal(t, "run-1", p.requests[0].RunID)
	assert.Equal(t, []string{"1-0"}, stream.acked)
	assert.Equal(t, []string{"1-0"}, stream.deleted)
}

func TestSignalRunService_ProcessTaskLeavesFailedRunPending(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{runMessage(t, "1-0", dto.RunRequest{RunID: "run-1"})}}
	p := &fakePipeline{err: &dto.UpstreamFetchError{Source: "watchlist", Err: errors.New("down")}}
	svc := NewSignalRunService(testExecutorConfig(), stream, p, nil, logger.NewNop())

	svc.ProcessTask(context.Background())

	assert.Len(t, p.requests, 1)
	assert.Empty(t, stream.acked)
}

func TestSignalRunService_ProcessTaskDropsMalformed(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{{ID: "2-0", Values: map[string]interface{}{"payload": "{"}}}}
	p := &fakePipeline{}
	svc := NewSignalRunService(testExecutorConfig(), stream, p, nil, logger.NewNop())

	svc.ProcessTask(context.Background())

	assert.Empty(t, p.requests)
	assert.Equal(t, []string{"2-0"}, stream.acked)
}

func TestSignalRunService_ProcessRetries(t *testing.T) {
	t.Run("retries pending run", func(t *testing.T) {
		stream := &fakeStream{claimed: []redis.XMessage{runMessage(t, "3-0", dto.RunRequest{RunID: "run-3"})}, retries: 1}
		p := &fakePipeline{}
		svc := NewSignalRunService(testExecutorConfig(), stream, p, nil, logger.NewNop())

		svc.ProcessRetries(context.Background())

		require.Len(t, p.requests, 1)
		assert.Equal(t, []string{"3-0"}, stream.acked)
	})

	t.Run("gives up after max retry", func(t *testing.T) {
		stream := &fakeStream{claimed: []redis.XMessage{runMessage(t, "4-0", dto.RunRequest{RunID: "run-4"})}, retries: 3}
		p := &fakePipeline{}
		notifier := &recordingNotifier{}
		svc := NewSignalRunService(testExecutorConfig(), stream, p, notifier, logger.NewNop())

		svc.ProcessRetries(context.Background())

		assert.Empty(t, p.requests)
		assert.Equal(t, []string{"4-0"}, stream.acked)
		require.Len(t, notifier.messages, 1)
		assert.Contains(t, notifier.messages[0], "run-4")
	})

	t.Run("nothing pending", func(t *testing.T) {
		stream := &fakeStream{}
		p := &fakePipeline{}
		NewSignalRunService(testExecutorConfig(), stream, p, nil, logger.NewNop()).ProcessRetries(context.Background())
		assert.Empty(t, p.requests)
	})
}
