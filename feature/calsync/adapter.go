package calsync

import (
	"context"
	"fmt"
	"time"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/recordstore"
)

// eventAdapter reconciles event instances against the records of one target dataset.
type eventAdapter struct {
	store      recordstore.Store
	datasetRef string
}

func newEventAdapter(store recordstore.Store, datasetRef string) *eventAdapter {
	return &eventAdapter{store: store, datasetRef: datasetRef}
}

func (a *eventAdapter) Name() string {
	return "event"
}

func (a *eventAdapter) ExtractSourceKey(item reconcile.SourceItem) string {
	return item.(calendar.EventInstance).InstanceID
}

func (a *eventAdapter) ExtractTargetKey(item reconcile.TargetItem) string {
	return item.(recordstore.Record).Text(FieldInstanceUID)
}

func (a *eventAdapter) ExtractTargetID(item reconcile.TargetItem) string {
	return item.(recordstore.Record).ID
}

func (a *eventAdapter) ResolveName(src reconcile.SourceItem, tgt reconcile.TargetItem) string {
	if inst, ok := src.(calendar.EventInstance); ok && inst.Summary != "" {
		return inst.Summary
	}
	if rec, ok := tgt.(recordstore.Record); ok {
		return rec.Text(FieldName)
	}
	return ""
}

// LookupTarget takes the first record carrying the identity.
func (a *eventAdapter) LookupTarget(ctx context.Context, key string) (reconcile.TargetItem, bool, error) {
	recs, err := a.store.QueryByField(ctx, a.datasetRef, FieldInstanceUID, key)
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs[0], true, nil
}

func (a *eventAdapter) LoadWindow(ctx context.Context, w reconcile.Window) ([]reconcile.TargetItem, error) {
	recs, err := a.store.QueryByDateRange(ctx, a.datasetRef, FieldDueDate, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	items := make([]reconcile.TargetItem, len(recs))
	for i, r := range recs {
		items[i] = r
	}
	return items, nil
}

// InWindow re-checks the record's date range. Records without a date are never in a window.
func (a *eventAdapter) InWindow(item reconcile.TargetItem, w reconcile.Window) bool {
	d, ok := item.(recordstore.Record).Date(FieldDueDate)
	if !ok || d.Start.IsZero() {
		return false
	}
	return w.Overlaps(d.Start, d.End)
}

func (a *eventAdapter) CompareFields(src reconcile.SourceItem, tgt reconcile.TargetItem) []string {
	inst := src.(calendar.EventInstance)
	rec := tgt.(recordstore.Record)
	var diffs []string

	if title := rec.Text(FieldName); title != inst.Summary {
		diffs = append(diffs, fmt.Sprintf("title: source=%s target=%s", inst.Summary, title))
	}
	if uid := rec.Text(FieldEventUID); uid != inst.SourceUID {
		diffs = append(diffs, fmt.Sprintf("event_uid: source=%s target=%s", inst.SourceUID, uid))
	}

	d, _ := rec.Date(FieldDueDate)
	start, end := instanceRange(inst)
	if !sameSecond(d.Start, start) {
		diffs = append(diffs, fmt.Sprintf("start: source=%s target=%s", formatTime(start), formatTime(d.Start)))
	}
	if !sameSecond(d.End, end) {
		diffs = append(diffs, fmt.Sprintf("end: source=%s target=%s", formatTime(end), formatTime(d.End)))
	}

	return diffs
}

func (a *eventAdapter) Create(ctx context.Context, key string, src reconcile.SourceItem) error {
	inst := src.(calendar.EventInstance)
	props := instanceProperties(inst)
	props[FieldInstanceUID] = recordstore.Text(inst.InstanceID)

	_, err := a.store.CreateRecord(ctx, a.datasetRef, props)
	return err
}

// Update rewrites the mutable fields. The identity field is never written again.
func (a *eventAdapter) Update(ctx context.Context, tgt reconcile.TargetItem, src reconcile.SourceItem) error {
	rec := tgt.(recordstore.Record)
	return a.store.UpdateRecord(ctx, a.datasetRef, rec.ID, instanceProperties(src.(calendar.EventInstance)))
}

func (a *eventAdapter) Archive(ctx context.Context, tgt reconcile.TargetItem) error {
	return a.store.ArchiveRecord(ctx, a.datasetRef, tgt.(recordstore.Record).ID)
}

func instanceProperties(inst calendar.EventInstance) recordstore.Properties {
	start, end := instanceRange(inst)
	return recordstore.Properties{
		FieldName:     recordstore.Title(inst.Summary),
		FieldDueDate:  recordstore.Date(start, end),
		FieldEventUID: recordstore.Text(inst.SourceUID),
	}
}

// instanceRange returns the stored date range; a zero-length instance has no end.
func instanceRange(inst calendar.EventInstance) (time.Time, time.Time) {
	start := inst.Start.UTC().Truncate(time.Second)
	end := inst.End.UTC().Truncate(time.Second)
	if !end.After(start) {
		end = time.Time{}
	}
	return start, end
}

func sameSecond(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return a.UTC().Truncate(time.Second).Equal(b.UTC().Truncate(time.Second))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
