package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"banquet-planner/internal/beo"
)

var (
	eventFile string
	publish   bool
)

// orderCmd builds a banquet event order from an event file
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Generate a Banquet Event Order from an event file",
	Long: `Reads an event definition, builds the Banquet Event Order with its
consolidated shopping list, prints it and saves it under REPORT_DIR.

Example event file:
  name: Harvest Gala
  date: 2026-11-07
  guest_count: 120
  special_requirements: Two vegan plates
  items:
    - {recipe: Caesar Salad, quantity: 12}
    - {recipe: Seared Salmon, quantity: 10}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := beo.LoadEvent(eventFile)
		if err != nil {
			return err
		}

		res, err := application.GenerateOrder(cmd.Context(), ev, publish)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, res.Text)
		fmt.Fprintf(out, "\nReport saved to %s\n", res.ReportPath)
		if res.Post != nil {
			fmt.Fprintf(out, "Ghost draft created: %s\n", res.Post.ID)
		}
		return nil
	},
}

func init() {
	orderCmd.Flags().StringVarP(&eventFile, "file", "f", "", "event YAML file")
	orderCmd.Flags().BoolVar(&publish, "publish", false, "also create a Ghost draft post")
	_ = orderCmd.MarkFlagRequired("file")
}
