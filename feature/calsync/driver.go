package calsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/recordstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedSource downloads raw calendar documents.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options controls a single run.
type Options struct {
	// DryRun plans every profile without provisioning or writing anything.
	DryRun bool
}

// ProfileResult is the outcome for one profile.
type ProfileResult struct {
	Profile     string                `json:"profile"`
	DatasetRef  string                `json:"dataset_ref,omitempty"`
	Provisioned bool                  `json:"provisioned"`
	Skipped     bool                  `json:"skipped,omitempty"`
	Instances   int                   `json:"instances"`
	Synced      int                   `json:"synced"`
	Executed    int                   `json:"executed"`
	Summary     reconcile.PlanSummary `json:"summary"`
	Error       string                `json:"error,omitempty"`
}

// RunReport summarizes one run of the driver.
type RunReport struct {
	RunID          string           `json:"run_id"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
	Window         reconcile.Window `json:"window"`
	DryRun         bool             `json:"dry_run"`
	Attempted      int              `json:"attempted"`
	Succeeded      int              `json:"succeeded"`
	Failed         int              `json:"failed"`
	Profiles       []ProfileResult  `json:"profiles"`
	ProvisionError string           `json:"provision_error,omitempty"`

	provisionErr error
	profileErrs  []error
}

// Err reports whether the run should count as failed: any provisioning or
// profile failure. A run without eligible profiles succeeds.
func (r *RunReport) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.provisionErr != nil {
		errs = append(errs, fmt.Errorf("provisioning: %w", r.provisionErr))
	}
	errs = append(errs, r.profileErrs...)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d profiles failed: %w", r.Failed, r.Attempted, errors.Join(errs...))
}

// Driver runs one reconciliation per sync profile of a control dataset.
type Driver struct {
	store      recordstore.Store
	feeds      FeedSource
	cfg        Config
	parentRef  string
	controlRef string
	logger     *zap.Logger

	// Now returns the run's reference time. Defaults to time.Now.
	Now func() time.Time
}

// NewDriver creates a sync driver.
func NewDriver(store recordstore.Store, feeds FeedSource, cfg Config, parentRef, controlRef string, logger *zap.Logger) *Driver {
	return &Driver{
		store:      store,
		feeds:      feeds,
		cfg:        cfg,
		parentRef:  parentRef,
		controlRef: controlRef,
		logger:     logger,
		Now:        time.Now,
	}
}

// Run resolves the control dataset, provisions missing datasets and
// reconciles every provisioned profile. Profiles are isolated from each other.
// The returned error is only set when the control dataset cannot be read;
// per-profile failures are in the report and in report.Err().
func (d *Driver) Run(ctx context.Context, opts Options) (*RunReport, error) {
	now := d.Now().UTC()
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Window:    reconcile.NewWindow(now, d.cfg.Days),
		DryRun:    opts.DryRun,
		Profiles:  make([]ProfileResult, 0),
	}
	l := d.logger.With(zap.String("run_id", report.RunID))

	if d.controlRef == "" {
		return report, fmt.Errorf("%w: no control dataset configured", ErrNoControlDataset)
	}

	control, err := LoadControl(ctx, d.store, d.controlRef)
	if err != nil {
		l.Error("Failed to read control dataset", zap.Error(err))
		return report, err
	}
	profiles := control.Profiles

	ready, pending := partition(profiles)
	l.Info("Sync run started",
		zap.Int("profiles", len(profiles)),
		zap.Int("pending_provisioning", len(pending)),
		zap.Time("window_start", report.Window.Start),
		zap.Time("window_end", report.Window.End),
		zap.Bool("dry_run", opts.DryRun),
	)

	type job struct {
		profile     SyncProfile
		provisioned bool
	}
	jobs := make([]job, 0, len(profiles))
	for _, p := range ready {
		jobs = append(jobs, job{profile: p})
	}

	if len(pending) > 0 {
		if opts.DryRun {
			for _, p := range pending {
				report.Profiles = append(report.Profiles, ProfileResult{Profile: p.Identifier, Skipped: true})
			}
		} else {
			res, err := NewProvisioner(d.store, d.parentRef, d.controlRef, l).Provision(ctx, pending, control.ExistingRefs)
			for _, p := range res.Provisioned {
				jobs = append(jobs, job{profile: p, provisioned: true})
			}
			for _, f := range res.Failed {
				report.Attempted++
				report.Failed++
				report.Profiles = append(report.Profiles, ProfileResult{Profile: f.Profile.Identifier, Error: f.Err.Error()})
			}
			if err != nil {
				report.provisionErr = err
				report.ProvisionError = err.Error()
			}
		}
	}

	reconciler := NewReconciler(d.store, reconcile.ReconcileOptions{DryRun: opts.DryRun, ForceUpdate: d.cfg.ForceUpdate}, l)
	expander := calendar.NewExpander(calendar.Policy{IncludeAllDay: d.cfg.IncludeAllDay}, d.cfg.MaxOccurrences, l)

	for _, j := range jobs {
		report.Attempted++
		result := d.syncProfile(ctx, j.profile, reconciler, expander, report.Window, l)
		result.Provisioned = j.provisioned
		if result.Error != "" {
			report.Failed++
			report.profileErrs = append(report.profileErrs, fmt.Errorf("profile %q: %s", j.profile.Identifier, result.Error))
		} else {
			report.Succeeded++
		}
		report.Profiles = append(report.Profiles, result)
	}

	report.FinishedAt = d.Now().UTC()
	l.Info("Sync run finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// syncProfile fetches, expands and reconciles one profile. Errors end up in the result.
func (d *Driver) syncProfile(ctx context.Context, p SyncProfile, r *Reconciler, exp *calendar.Expander, w reconcile.Window, logger *zap.Logger) ProfileResult {
	result := ProfileResult{Profile: p.Identifier, DatasetRef: p.TargetDatasetRef}
	l := logger.With(zap.String("profile", p.Identifier), zap.String("feed", calendar.RedactURL(p.FeedURL)))

	failed := func(err error) ProfileResult {
		result.Error = err.Error()
		l.Error("Profile sync failed", zap.Error(err))
		return result
	}

	body, err := d.feeds.Fetch(ctx, p.FeedURL)
	if err != nil {
		return failed(err)
	}

	events, err := calendar.ParseFeed(body, l)
	if err != nil {
		return failed(err)
	}

	instances := slices.Collect(exp.Instances(events, w))
	result.Instances = len(instances)

	plan, executed, err := r.Reconcile(ctx, instances, p.TargetDatasetRef, w)
	result.Executed = executed
	if plan != nil {
		result.Summary = plan.Summary
		result.Synced = plan.Synced()
	}
	if err != nil {
		return failed(err)
	}

	l.Info("Profile synced",
		zap.Int("instances", result.Instances),
		zap.Int("synced", result.Synced),
		zap.Int("creates", plan.Summary.Creates),
		zap.Int("updates", plan.Summary.Updates),
		zap.Int("archives", plan.Summary.Archives),
	)
	return result
}
