package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// importCmd imports recipes from outside sources
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import recipes from the web or Ghost",
}

var importURLCmd = &cobra.Command{
	Use:   "url [url]",
	Short: "Import a recipe from a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := application.ClipURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d ingredients)\n", rec.Name, len(rec.Ingredients))
		return nil
	},
}

var importGhostCmd = &cobra.Command{
	Use:   "ghost",
	Short: "Import every post tagged 'recipe' from Ghost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := application.ImportGhost(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %d recipe(s)\n", len(summary.Imported))
		for _, name := range summary.Imported {
			fmt.Fprintf(out, "  + %s\n", name)
		}

		failed := make([]string, 0, len(summary.Failed))
		for title := range summary.Failed {
			failed = append(failed, title)
		}
		sort.Strings(failed)
		for _, title := range failed {
			fmt.Fprintf(out, "  ! %s: %s\n", title, summary.Failed[title])
		}
		return nil
	},
}

func init() {
	importCmd.AddCommand(importURLCmd, importGhostCmd)
}
