// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and an optional rotating file sink backed by
// lumberjack, so scheduled runs keep a local history next to stdout.
//
// # Context Awareness
//
// Sync runs attach a run_id field to every entry they emit. HTTP requests are
// correlated through WithRayID, which extracts the RayID set by the rayid
// middleware from the Fiber context.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//   - File: rotating JSON log file (size, backups, age)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
package logger
