package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/logging"
)

type rootFlags struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "petexport",
		Short: "Export pet clinic owners and pets as CSV",
		Long: `petexport reads every owner and pet from the clinic database and writes
one CSV row per pet.

Four strategies produce the file:
  full       one query, all rows loaded, then written
  paginated  LIMIT/OFFSET pages until an empty page
  stream     one cursor reduced row by row
  broken     a lazy mapping that is never consumed (header only)`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.envFile != "" {
				if err := godotenv.Load(flags.envFile); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "load environment variables from this file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newExportCmd(&flags),
		newSeedCmd(&flags),
		newStrategiesCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the environment and routes logs to stderr so stdout
// stays free for CSV.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if flags.verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format))
	return cfg, nil
}
