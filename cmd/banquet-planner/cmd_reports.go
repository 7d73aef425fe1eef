package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reportsCmd works with saved banquet event orders
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List, show and publish saved Banquet Event Orders",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := application.ListReports()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved reports.")
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [event name]",
	Short: "Print the saved report for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := application.LoadReport(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

var reportsPublishCmd = &cobra.Command{
	Use:   "publish [event name]",
	Short: "Create a Ghost draft from a saved order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := application.PublishReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ghost draft created: %s\n", post.ID)
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsPublishCmd)
}
