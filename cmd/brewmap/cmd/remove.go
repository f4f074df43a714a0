package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a venue from the committed collection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		id, err := resolveID(args[0], app.Committed())
		if err != nil {
			return err
		}
		if err := app.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("venue removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
