// Package config provides configuration management for calendar-sync.
//
// Settings come from environment variables, optionally overlaid from a .env
// file. Defaults live in `default` struct tags next to each field.
//
// # Configuration Structure
//
//   - Sync: window length, all-day policy, occurrence cap, schedule
//   - Store: record store driver and the parent/control dataset locations
//   - Notion: API token, base URL and version for the Notion backend
//   - Database: SQL connection for the sql backend
//   - Storage: S3/MinIO credentials for s3:// feeds
//   - Feed: HTTP fetch timeout and user agent
//   - Server: HTTP port and API key for serve mode
//   - Log: level, format and optional rotating file
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Days)
package config
