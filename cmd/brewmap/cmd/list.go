package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List venues in the committed collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		return renderVenues(app.Committed())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
