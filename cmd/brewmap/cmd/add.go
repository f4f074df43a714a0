package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brewmap/brewmap/pkg/venues"
)

var addFlags struct {
	name        string
	description string
	category    string
	lat         float64
	lng         float64
	address     string
	website     string
	mapsURI     string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a venue to the committed collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		v := venues.Venue{
			Name:        addFlags.name,
			Description: addFlags.description,
			Category:    venues.ParseCategory(addFlags.category),
			Coordinates: venues.Coordinates{Lat: addFlags.lat, Lng: addFlags.lng},
			Address:     addFlags.address,
			Website:     addFlags.website,
			MapsURI:     addFlags.mapsURI,
		}

		added, err := app.Add(cmd.Context(), v)
		if err != nil {
			return err
		}
		fmt.Printf("added %q (%s)\n", added.Name, added.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.name, "name", "", "venue name (required)")
	addCmd.Flags().StringVar(&addFlags.description, "description", "", "free-text description")
	addCmd.Flags().StringVar(&addFlags.category, "category", "", "tier label (Mythic, Gold, Silver, Common, TapRoom)")
	addCmd.Flags().Float64Var(&addFlags.lat, "lat", 0, "latitude in decimal degrees (required)")
	addCmd.Flags().Float64Var(&addFlags.lng, "lng", 0, "longitude in decimal degrees (required)")
	addCmd.Flags().StringVar(&addFlags.address, "address", "", "street address")
	addCmd.Flags().StringVar(&addFlags.website, "website", "", "venue website")
	addCmd.Flags().StringVar(&addFlags.mapsURI, "maps-uri", "", "Google Maps link")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("lat")
	_ = addCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(addCmd)
}
