package notion

// Config holds configuration for the Notion API backend.
type Config struct {
	// Token is the integration secret.
	Token string `mapstructure:"token" default:""`
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.notion.com/v1"`
	// Version is sent as the Notion-Version header.
	Version string `mapstructure:"version" default:"2022-06-28"`
	// TimeoutSeconds bounds a single API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetryCount is how often a rate limited (429) call is retried.
	RetryCount int `mapstructure:"retry_count" default:"3"`
	// LookbackHours widens date range queries backwards so records that
	// started before the range and are still running are returned.
	LookbackHours int `mapstructure:"lookback_hours" default:"168"`
}
