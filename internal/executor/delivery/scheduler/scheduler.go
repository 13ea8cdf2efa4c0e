package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/utils"
)

const enqueueTimeout = 10 * time.Second

// RunScheduler enqueues a watch-list run on a cron schedule in the market timezone.
type RunScheduler struct {
	cron             *cron.Cron
	signalRunService service.SignalRunService
	logger           *logger.Logger
}

// NewRunScheduler parses the expression up front. Standard five-field expressions and
// descriptors such as "@every 1h" are accepted.
func NewRunScheduler(expr string, signalRunService service.SignalRunService, log *logger.Logger) (*RunScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s := &RunScheduler{
		cron:             cron.New(cron.WithParser(parser), cron.WithLocation(utils.MarketLocation())),
		signalRunService: signalRunService,
		logger:           log,
	}
	if _, err := s.cron.AddFunc(expr, s.trigger); err != nil {
		return nil, fmt.Errorf("invalid pipeline schedule %q: %w", expr, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *RunScheduler) Start() {
	s.logger.Info("Run scheduler started", logger.Field("next", s.Next()))
	s.cron.Start()
}

// Stop waits for a trigger that is already enqueueing.
func (s *RunScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Run scheduler stopped")
}

// Next returns the next activation, zero before Start.
func (s *RunScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *RunScheduler) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	runID, err := s.signalRunService.Enqueue(ctx, dto.RunRequest{Source: service.TriggerScheduled})
	if err != nil {
		s.logger.Error("Failed to enqueue scheduled run", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled run enqueued", logger.StringField("run_id", runID))
}
