package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"banquet-planner/internal/recipe"
	"banquet-planner/internal/report"
)

var (
	ingredientCategory string
	ingredientUnit     string
)

// ingredientsCmd manages the master ingredient list
var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Manage the master ingredient list",
}

var ingredientsListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List known ingredients, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		search := ""
		if len(args) == 1 {
			search = args[0]
		}
		list, err := application.ListIngredients(cmd.Context(), search)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Ingredients(list))
		return nil
	},
}

var ingredientsSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Add an ingredient or update its category and preferred unit",
	Long: `Adds an ingredient to the master list or updates it. Recipes added from a
file use the preferred unit for ingredient lines that leave the unit out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := application.SaveIngredient(cmd.Context(), recipe.MasterIngredient{
			Name:          args[0],
			Category:      ingredientCategory,
			PreferredUnit: ingredientUnit,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
		return nil
	},
}

var ingredientsMergeCmd = &cobra.Command{
	Use:   "merge [primary] [duplicate...]",
	Short: "Merge duplicate ingredient names into one",
	Long: `Renames every recipe ingredient line using a duplicate name to the primary
name and removes the duplicates from the master list. Shopping lists combine
ingredients by exact name, so merging "butter" into "Butter" joins their
quantities.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.MergeIngredients(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Merged %d ingredient(s) into %s, %d recipe line(s) updated\n", len(args)-1, args[0], n)
		return nil
	},
}

func init() {
	ingredientsSetCmd.Flags().StringVar(&ingredientCategory, "category", "", "ingredient category")
	ingredientsSetCmd.Flags().StringVar(&ingredientUnit, "unit", "", "preferred unit of measure")
	ingredientsCmd.AddCommand(ingredientsListCmd, ingredientsSetCmd, ingredientsMergeCmd)
}
