// Package scheduler runs sync passes on a cron schedule and on demand.
//
// Concurrent triggers of the same kind share one in-flight run: a request
// arriving while a pass is running waits for it and receives its report
// instead of starting a second pass against the same datasets.
package scheduler
