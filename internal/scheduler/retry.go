// Package scheduler runs the two background tickers that keep delivery
// moving without a live bus round-trip: RetryScheduler re-dispatches due
// and stuck messages, Janitor prunes old terminal rows. Both use the same
// ticker + stop-channel + immediate-first-run shape.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// DispatchFunc is the Dispatcher's Dispatch method, taken as a function
// value so the scheduler doesn't need to import the dispatcher package.
type DispatchFunc func(ctx context.Context, id string) error

type RetryConfig struct {
	Interval      time.Duration
	BatchSize     int
	ZombieTimeout time.Duration
}

// RetryScheduler performs three sweeps on every tick: messages whose
// next_retry has come due, messages stuck PROCESSING past ZombieTimeout
// (a worker died mid-attempt), and messages still PENDING because their
// original bus publish failed.
type RetryScheduler struct {
	messages interfaces.MessageStore
	dispatch DispatchFunc
	cfg      RetryConfig
	log      *logger.Logger
	stop     chan struct{}
}

func NewRetryScheduler(messages interfaces.MessageStore, dispatch DispatchFunc, cfg RetryConfig) *RetryScheduler {
	return &RetryScheduler{
		messages: messages,
		dispatch: dispatch,
		cfg:      cfg,
		log:      logger.New("retry-scheduler"),
		stop:     make(chan struct{}),
	}
}

func (s *RetryScheduler) Start(ctx context.Context) {
	s.log.Info(fmt.Sprintf("retry scheduler started (interval=%v, batch=%d, zombie_timeout=%v)", s.cfg.Interval, s.cfg.BatchSize, s.cfg.ZombieTimeout))

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.tick(ctx)

		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stop:
				s.log.Info("retry scheduler stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *RetryScheduler) Stop() {
	close(s.stop)
}

func (s *RetryScheduler) tick(ctx context.Context) {
	s.redispatchReady(ctx)
	s.recoverStuck(ctx)
	s.redispatchPending(ctx)
}

func (s *RetryScheduler) redispatchReady(ctx context.Context) {
	msgs, err := s.messages.FindReadyForRetry(ctx, time.Now(), s.cfg.BatchSize)
	if err != nil {
		s.log.Error("retry scheduler: find_ready_for_retry failed: " + err.Error())
		return
	}
	for _, msg := range msgs {
		if err := s.dispatch(ctx, msg.ID); err != nil {
			s.log.Error(fmt.Sprintf("retry scheduler: dispatch failed for %s: %v", msg.ID, err))
		}
	}
	if len(msgs) > 0 {
		s.log.Info(fmt.Sprintf("retry scheduler: re-dispatched %d due messages", len(msgs)))
	}
}

// recoverStuck re-enqueues messages that claimed PROCESSING but never
// resolved — the worker that claimed them crashed or was killed before it
// could append an attempt and release the row.
func (s *RetryScheduler) recoverStuck(ctx context.Context) {
	threshold := time.Now().Add(-s.cfg.ZombieTimeout)
	msgs, err := s.messages.FindStuck(ctx, threshold, s.cfg.BatchSize)
	if err != nil {
		s.log.Error("retry scheduler: find_stuck failed: " + err.Error())
		return
	}
	for _, msg := range msgs {
		nextRetry := time.Now()
		if err := s.messages.MarkFailed(ctx, msg.ID, "stuck in processing past zombie timeout", &nextRetry); err != nil {
			s.log.Error(fmt.Sprintf("retry scheduler: failed to recover stuck message %s: %v", msg.ID, err))
			continue
		}
		if err := s.dispatch(ctx, msg.ID); err != nil {
			s.log.Error(fmt.Sprintf("retry scheduler: dispatch after recovery failed for %s: %v", msg.ID, err))
		}
	}
	if len(msgs) > 0 {
		s.log.Info(fmt.Sprintf("retry scheduler: recovered %d stuck messages", len(msgs)))
	}
}

// redispatchPending covers messages whose original bus publish (Ingest
// step 7) failed and were left PENDING.
func (s *RetryScheduler) redispatchPending(ctx context.Context) {
	msgs, err := s.messages.FindPending(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Error("retry scheduler: find_pending failed: " + err.Error())
		return
	}
	for _, msg := range msgs {
		if err := s.dispatch(ctx, msg.ID); err != nil {
			s.log.Error(fmt.Sprintf("retry scheduler: dispatch failed for pending %s: %v", msg.ID, err))
		}
	}
	if len(msgs) > 0 {
		s.log.Info(fmt.Sprintf("retry scheduler: re-dispatched %d pending messages", len(msgs)))
	}
}
