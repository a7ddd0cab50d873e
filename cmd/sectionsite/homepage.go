package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sectionsite/internal/app"
)

var homepageCmd = &cobra.Command{
	Use:   "homepage",
	Short: "Inspect or change a content type's homepage",
}

var homepageGetCmd = &cobra.Command{
	Use:   "get <type>",
	Short: "Show the homepage setting and what it resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pt, err := registry.Lookup(args[0])
		if err != nil {
			return err
		}
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		ref := app.NewSelector(registry, store, store, logger).Homepage(ctx, pt)
		out := cmd.OutOrStdout()
		if !ref.IsSet() {
			fmt.Fprintf(out, "%s: none\n", pt.Name)
			return nil
		}
		if it, ok := app.Resolve(ctx, store, pt, ref, logger).Item(); ok {
			fmt.Fprintf(out, "%s: #%s %q\n", pt.Name, ref, it.DisplayTitle())
			return nil
		}
		fmt.Fprintf(out, "%s: #%s (unavailable, archive shows the placeholder)\n", pt.Name, ref)
		return nil
	},
}

var homepageSetCmd = &cobra.Command{
	Use:   "set <type> <id>",
	Short: "Select the homepage item; 0 clears the selection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		ref, err := app.NewSelector(registry, store, store, logger).SetHomepage(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s homepage set to %s\n", args[0], ref)
		return nil
	},
}

func init() {
	homepageCmd.AddCommand(homepageGetCmd, homepageSetCmd)
}
