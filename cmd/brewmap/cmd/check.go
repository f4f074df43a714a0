package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Ask the AI service whether a venue is still operating",
	Long: `Check runs a health check for the venue with the given id and records the
answer on the record, along with the check timestamp. A failed or unparseable
check records "unknown"; it never fails the command.

Requires GEMINI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer app.Close()

		id, err := resolveID(args[0], app.Committed())
		if err != nil {
			return err
		}

		status, err := app.CheckHealth(cmd.Context(), id)
		if err != nil {
			return err
		}

		v := app.Committed().FindByID(id)
		name := id
		if v != nil {
			name = v.Name
		}
		fmt.Printf("%s: %s\n", name, statusLabel(status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
