package calsync

// Config holds the reconciliation window and policy settings.
type Config struct {
	// Days is the length of the sync window starting now.
	Days int `mapstructure:"days" default:"14"`
	// IncludeAllDay keeps occurrences the feed flags as all-day.
	IncludeAllDay bool `mapstructure:"include_all_day" default:"false"`
	// MaxOccurrences caps the occurrences expanded per series.
	MaxOccurrences int `mapstructure:"max_occurrences" default:"5000"`
	// Schedule is the cron expression for serve mode.
	Schedule string `mapstructure:"schedule" default:"*/15 * * * *"`
	// ForceUpdate rewrites matched records even when nothing changed.
	ForceUpdate bool `mapstructure:"force_update" default:"false"`
}
