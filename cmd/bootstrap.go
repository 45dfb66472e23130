package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// bootstrapCmd locates or creates the driver database.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Locate or create the driver database",
	Long: `Finds the parent page named by store.parent_name and the driver database
named by store.control_name inside it, creating the driver database when it
does not exist. Prints the references to put into STORE_PARENT_REF and
STORE_CONTROL_REF.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		d, err := setup(ctx)
		if err != nil {
			return err
		}
		defer d.logger.Sync()

		loc, err := d.locate(ctx)
		if err != nil {
			return err
		}

		d.logger.Info("Locations resolved",
			zap.String("parent_ref", loc.ParentRef),
			zap.String("control_ref", loc.ControlRef),
			zap.Bool("created_control", loc.CreatedControl),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(bootstrapCmd)
}
