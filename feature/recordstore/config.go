package recordstore

const (
	// DriverNotion stores datasets as Notion databases.
	DriverNotion = "notion"
	// DriverSQL stores datasets as tables in a SQL database.
	DriverSQL = "sql"
)

// Config selects the record store backend and where its datasets live.
type Config struct {
	// Driver is the backend (notion, sql).
	Driver string `mapstructure:"driver" default:"notion"`
	// ParentRef is the location new datasets are created under. Looked up by ParentName when empty.
	ParentRef string `mapstructure:"parent_ref" default:""`
	// ParentName is the title of the parent location.
	ParentName string `mapstructure:"parent_name" default:"Calendar Sync"`
	// ControlRef is the control dataset. Looked up or created by ControlName when empty.
	ControlRef string `mapstructure:"control_ref" default:""`
	// ControlName is the title of the control dataset.
	ControlName string `mapstructure:"control_name" default:"Calendar Sync - Driver Database"`
}
