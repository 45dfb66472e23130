// Package calendar turns ICS feeds into normalized event instances.
//
// A Fetcher downloads the document (http, https, webcal or s3), ParseFeed
// reads its VEVENTs and ExpandOccurrences applies RRULE, RDATE, EXDATE and
// RECURRENCE-ID. The Expander filters the result to one sync window and
// NewInstance assigns every occurrence its UTC times and identity.
//
//	events, err := calendar.ParseFeed(body, logger)
//	exp := calendar.NewExpander(calendar.Policy{}, 5000, logger)
//	instances := calendar.Collect(exp.Instances(events, window))
package calendar
