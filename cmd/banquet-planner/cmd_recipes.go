package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"banquet-planner/internal/report"
)

// recipesCmd manages the recipe catalog
var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Manage the recipe catalog",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes, err := application.ListRecipes(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Catalog(recipes))
		return nil
	},
}

var recipesAddCmd = &cobra.Command{
	Use:   "add [file.yaml]",
	Short: "Add or replace recipes from a YAML file",
	Long: `Adds the recipes defined in a YAML file. A recipe with the same name as an
existing one replaces it. Every recipe is validated before any is saved.

Example:
  recipes:
    - name: Caesar Salad
      category: Plated Dinners
      subcategory: Salads
      ingredients:
        - {name: Romaine, quantity: 0.25, unit: head}
      allergens: [Eggs, Dairy]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := application.AddRecipesFromFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d recipe(s): %s\n", len(names), strings.Join(names, ", "))
		return nil
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a recipe by exact name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := application.DeleteRecipe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("recipe %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	recipesCmd.AddCommand(recipesListCmd, recipesAddCmd, recipesDeleteCmd)
}
