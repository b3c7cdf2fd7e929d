// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec is the cron spec of the premium expiry sweep.
const DefaultSpec = "@every 10m"

// jobTimeout bounds a single sweep.
const jobTimeout = time.Minute

// PremiumExpirer closes premium windows older than period.
type PremiumExpirer interface {
	ExpirePremium(ctx context.Context, period time.Duration) (int64, error)
}

// Scheduler handles scheduled tasks like expiring premium subscriptions.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	expirer PremiumExpirer
	spec    string
	period  time.Duration
}

// New creates a new scheduler instance. An empty spec selects DefaultSpec.
func New(expirer PremiumExpirer, spec string, period time.Duration, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		expirer: expirer,
		spec:    spec,
		period:  period,
	}
}

// ValidateSpec reports whether spec is a standard cron expression or
// descriptor such as "@every 10m".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Start registers the premium expiry job and begins the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.ExpirePremium(context.Background()); err != nil {
			s.logger.Error("failed to expire premium subscriptions", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling premium expiry: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "spec", s.spec, "period", s.period)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// ExpirePremium runs one sweep and returns how many windows were closed.
func (s *Scheduler) ExpirePremium(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	n, err := s.expirer.ExpirePremium(ctx, s.period)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired premium subscriptions", "count", n, "period", s.period)
	}
	return n, nil
}
