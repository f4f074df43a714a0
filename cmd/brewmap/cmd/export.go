package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the committed collection as KML",
	Long: `Export writes the committed collection as a KML document, grouped into one
folder per category. Without --output the conventional filename is used,
encoding the record count and today's date.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		data, filename, err := app.ExportKML()
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = filename
		}
		if path == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("exported %d venue(s) to %s\n", len(app.Committed()), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "f", "", "output path ('-' for stdout)")
	rootCmd.AddCommand(exportCmd)
}
