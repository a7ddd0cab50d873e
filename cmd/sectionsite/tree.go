package main

import (
	"github.com/spf13/cobra"

	"sectionsite/internal/app"
	"sectionsite/internal/tools/sitetree"
)

var treeJSON bool

var treeCmd = &cobra.Command{
	Use:   "tree <type>",
	Short: "Print the parent/child tree of a content type",
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

		homepage := app.NewSelector(registry, store, store, logger).Homepage(ctx, pt)
		tree, err := sitetree.Export(ctx, store, pt, homepage)
		if err != nil {
			return err
		}
		if treeJSON {
			return tree.WriteJSON(cmd.OutOrStdout())
		}
		return tree.WriteOutline(cmd.OutOrStdout())
	},
}

func init() {
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "write JSON instead of an outline")
}
