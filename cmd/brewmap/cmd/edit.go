package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brewmap/brewmap/pkg/reconcile"
	"github.com/brewmap/brewmap/pkg/venues"
)

var editFlags struct {
	name        string
	description string
	category    string
	lat         float64
	lng         float64
	address     string
	website     string
	mapsURI     string
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of an existing venue",
	Long: `Edit overlays the given flags onto the venue with the matching id. Flags
not provided keep their current value. The edit is rejected as a whole if the
resulting record would lose its name or coordinates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		var patch reconcile.Patch
		flags := cmd.Flags()
		if flags.Changed("name") {
			patch.Name = &editFlags.name
		}
		if flags.Changed("description") {
			patch.Description = &editFlags.description
		}
		if flags.Changed("category") {
			category := venues.ParseCategory(editFlags.category)
			patch.Category = &category
		}
		if flags.Changed("lat") || flags.Changed("lng") {
			if !flags.Changed("lat") || !flags.Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			patch.Coordinates = &venues.Coordinates{Lat: editFlags.lat, Lng: editFlags.lng}
		}
		if flags.Changed("address") {
			patch.Address = &editFlags.address
		}
		if flags.Changed("website") {
			patch.Website = &editFlags.website
		}
		if flags.Changed("maps-uri") {
			patch.MapsURI = &editFlags.mapsURI
		}

		id, err := resolveID(args[0], app.Committed(), app.Found())
		if err != nil {
			return err
		}
		if err := app.Edit(cmd.Context(), id, patch); err != nil {
			return err
		}
		fmt.Println("venue updated")
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editFlags.name, "name", "", "venue name")
	editCmd.Flags().StringVar(&editFlags.description, "description", "", "free-text description")
	editCmd.Flags().StringVar(&editFlags.category, "category", "", "tier label")
	editCmd.Flags().Float64Var(&editFlags.lat, "lat", 0, "latitude in decimal degrees")
	editCmd.Flags().Float64Var(&editFlags.lng, "lng", 0, "longitude in decimal degrees")
	editCmd.Flags().StringVar(&editFlags.address, "address", "", "street address")
	editCmd.Flags().StringVar(&editFlags.website, "website", "", "venue website")
	editCmd.Flags().StringVar(&editFlags.mapsURI, "maps-uri", "", "Google Maps link")
	rootCmd.AddCommand(editCmd)
}
