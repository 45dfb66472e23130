package calsync

import (
	"context"
	"fmt"

	"calendar-sync/feature/recordstore"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Provisioner creates target datasets for profiles that have none and writes
// the new reference back onto their control rows.
type Provisioner struct {
	store      recordstore.Store
	parentRef  string
	controlRef string
	logger     *zap.Logger
}

// NewProvisioner creates a provisioner placing datasets under parentRef.
func NewProvisioner(store recordstore.Store, parentRef, controlRef string, logger *zap.Logger) *Provisioner {
	return &Provisioner{store: store, parentRef: parentRef, controlRef: controlRef, logger: logger}
}

// ProvisionFailure records why one profile could not be provisioned.
type ProvisionFailure struct {
	Profile SyncProfile
	Err     error
}

// ProvisionResult is the outcome of one provisioning batch.
type ProvisionResult struct {
	// Provisioned holds profiles whose dataset was created and written back.
	Provisioned []SyncProfile
	// Failed holds profiles that could not be provisioned.
	Failed []ProvisionFailure
	// Migrated reports whether the control dataset gained the reference field.
	Migrated bool
}

// Provision provisions every pending profile. existingRefs is the number of
// control rows that already had a reference; when it is zero and at least one
// dataset gets created, the control dataset gains the reference field once,
// before any write-back. One profile failing does not stop the others; all
// failures are combined into the returned error.
func (p *Provisioner) Provision(ctx context.Context, pending []SyncProfile, existingRefs int) (*ProvisionResult, error) {
	result := &ProvisionResult{}
	var errs error

	fail := func(profile SyncProfile, err error) {
		result.Failed = append(result.Failed, ProvisionFailure{Profile: profile, Err: err})
		errs = multierr.Append(errs, fmt.Errorf("profile %q: %w", profile.Identifier, err))
		p.logger.Error("Provisioning failed", zap.String("profile", profile.Identifier), zap.Error(err))
	}

	created := make([]SyncProfile, 0, len(pending))
	for _, profile := range pending {
		ref, err := p.store.CreateDataset(ctx, p.parentRef, profile.Identifier, TargetSchema())
		if err != nil {
			fail(profile, fmt.Errorf("failed to create dataset: %w", err))
			continue
		}
		profile.TargetDatasetRef = ref
		created = append(created, profile)
		p.logger.Info("Target dataset created", zap.String("profile", profile.Identifier), zap.String("dataset", ref))
	}

	if len(created) > 0 && existingRefs == 0 {
		if err := p.store.UpdateDatasetSchema(ctx, p.controlRef, []recordstore.Field{refField()}); err != nil {
			err = fmt.Errorf("failed to add %q to control dataset: %w", FieldDatasetRef, err)
			for _, profile := range created {
				fail(profile, err)
			}
			return result, errs
		}
		result.Migrated = true
		p.logger.Info("Control dataset migrated", zap.String("field", FieldDatasetRef))
	}

	for _, profile := range created {
		props := recordstore.Properties{FieldDatasetRef: recordstore.Text(profile.TargetDatasetRef)}
		if err := p.store.UpdateRecord(ctx, p.controlRef, profile.ControlRowID, props); err != nil {
			fail(profile, fmt.Errorf("failed to write back dataset %s: %w", profile.TargetDatasetRef, err))
			continue
		}
		result.Provisioned = append(result.Provisioned, profile)
	}

	return result, errs
}
