package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/petclinic-export/internal/admin"
	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/store"
)

func newSeedCmd(root *rootFlags) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and fill a local SQLite demo database",
		Long: `Create the clinic tables in the SQLite database named by DATABASE_URL and
load the demo owners and pets. Requires DB_DRIVER=sqlite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverSQLite {
				return fmt.Errorf("seed needs DB_DRIVER=%s, got %q", config.DriverSQLite, cfg.Database.Driver)
			}

			db, err := store.OpenDB(cmd.Context(), "sqlite", cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			data, err := admin.SeedDemo(cmd.Context(), db, reset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d owners, %d pets, %d types\n",
				len(data.Owners), len(data.Pets), len(data.Types))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing rows first")
	return cmd
}
