package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/storedesk/storedesk/internal/interfaces/cli/importcmd"
	"github.com/storedesk/storedesk/internal/interfaces/cli/migrate"
	"github.com/storedesk/storedesk/internal/interfaces/cli/station"
)

// @title Storedesk Station API
// @version 1.0
// @description Employee login, session presence, multi-device coordination, page access and store data for a point-of-sale station.
// @BasePath /api
func main() {
	rootCmd := &cobra.Command{
		Use:   "storedesk",
		Short: "Storedesk station - session and presence service for the POS",
		Long:  `Storedesk runs the station API for a point-of-sale till: employee login, session presence, multi-device coordination and page access.`,
	}

	rootCmd.AddCommand(
		station.NewCommand(),
		migrate.NewCommand(),
		importcmd.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
