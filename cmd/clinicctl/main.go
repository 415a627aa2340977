package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-local-store/internal/app"
	"github.com/hackgods/clinic-local-store/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clinicctl",
		Short: "Maintain the clinic record store",
		Long: `clinicctl opens the store configured by the environment (or .env)
and runs one maintenance task against it: migrating the schema, loading the
reference data, generating demo records or searching appointments.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newResetCmd(),
		newSeedIfEmptyCmd(),
		newFakeCmd(),
		newSearchCmd(),
	)
	return root
}

// openApp loads the config and opens every store it names.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	a, err := app.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	return a, nil
}
