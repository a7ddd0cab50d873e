package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sectionsite/internal/app"
)

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Create tables and record the content type route table",
	Long: `activate prepares storage for the configured content types. Run it once
after installing and again whenever content types or prefixes change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := app.Activate(ctx, store, registry); err != nil {
			return err
		}
		logger.Info("activation complete", "routes", registry.RouteTable())
		for _, pt := range registry.Types() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", pt.ArchivePath(), pt.Name)
		}
		return nil
	},
}
