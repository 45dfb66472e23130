// Package calsync keeps record store datasets in step with calendar feeds.
//
// A control dataset lists sync profiles: a name, a feed URL, an enabled flag
// and, once provisioned, the reference of the profile's target dataset. The
// Driver reads it, provisions datasets for new profiles and reconciles every
// profile in turn:
//
//	fetch feed -> parse -> expand over [now, now+days) -> normalize -> reconcile
//
// Reconciliation matches records on their InstanceUID field. Missing records
// are created, changed ones updated and records in the window whose identity
// disappeared from the feed are archived. A failing profile does not stop
// the others.
package calsync
