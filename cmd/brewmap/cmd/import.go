package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.kml>",
	Short: "Import venues from a KML file",
	Long: `Import parses a KML document and merges its placemarks into the committed
collection. A placemark whose name already exists (case-insensitive) is
skipped; only the count of additions is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		added, err := app.ImportKML(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d new venue(s) from %s\n", added, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
