package syncapi

import (
	"context"

	"calendar-sync/feature/calsync"
	"calendar-sync/feature/scheduler"

	"go.uber.org/zap"
)

// Runner is the part of the scheduler the API needs.
type Runner interface {
	Trigger(ctx context.Context, opts calsync.Options) (*calsync.RunReport, error)
	Status() scheduler.Status
}

// Service handles sync API operations.
type Service struct {
	runner Runner
	logger *zap.Logger
}

// NewService creates a new sync API service.
func NewService(runner Runner, logger *zap.Logger) *Service {
	return &Service{runner: runner, logger: logger}
}

// Run triggers a pass, joining one already in flight.
func (s *Service) Run(ctx context.Context, dryRun bool) (*calsync.RunReport, error) {
	return s.runner.Trigger(ctx, calsync.Options{DryRun: dryRun})
}

// Status returns the scheduler state and the last run report.
func (s *Service) Status() scheduler.Status {
	return s.runner.Status()
}
