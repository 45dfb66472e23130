package config

import (
	"fmt"
	"reflect"
	"strings"

	"calendar-sync/core/database"
	"calendar-sync/core/logger"
	"calendar-sync/core/server"
	"calendar-sync/core/storage"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calsync"
	"calendar-sync/feature/recordstore"
	"calendar-sync/feature/recordstore/notion"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the reconciliation window and policy settings.
	Sync calsync.Config `mapstructure:"sync"`
	// Store selects and locates the record store backend.
	Store recordstore.Config `mapstructure:"store"`
	// Notion holds configuration for the Notion API backend.
	Notion notion.Config `mapstructure:"notion"`
	// Database holds configuration for the SQL record store backend.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage serving s3:// feeds.
	Storage storage.Config `mapstructure:"storage"`
	// Feed holds configuration for calendar feed retrieval.
	Feed calendar.FetchConfig `mapstructure:"feed"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_DAYS -> sync.days)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports settings the selected store driver cannot run without.
func (c *Config) Validate() error {
	if c.Sync.Days <= 0 {
		return fmt.Errorf("sync.days must be positive, got %d", c.Sync.Days)
	}

	switch c.Store.Driver {
	case recordstore.DriverNotion:
		if c.Notion.Token == "" {
			return fmt.Errorf("notion.token is required for store driver %q", c.Store.Driver)
		}
	case recordstore.DriverSQL:
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for store driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
