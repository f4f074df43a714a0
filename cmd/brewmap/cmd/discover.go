package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/brewmap/brewmap"
	"github.com/brewmap/brewmap/pkg/venues"
)

var discoverFlags struct {
	lat        float64
	lng        float64
	promoteAll bool
}

var discoverCmd = &cobra.Command{
	Use:   "discover <query...>",
	Short: "Search for new venues with the AI discovery service",
	Long: `Discover asks the configured Gemini model for venues matching a free-text
query, stages the candidates that are not already in the collection, and then
walks through them so each can be promoted into the committed collection or
discarded. The staged found-set is transient: candidates neither promoted nor
discarded are simply dropped when the command exits.

Requires GEMINI_API_KEY.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer app.Close()

		var origin *venues.Coordinates
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			origin = &venues.Coordinates{Lat: discoverFlags.lat, Lng: discoverFlags.lng}
		}

		query := strings.Join(args, " ")
		result, err := app.Discover(cmd.Context(), query, origin)
		if err != nil {
			return err
		}

		if result.Summary != "" {
			fmt.Println(result.Summary)
			fmt.Println()
		}

		found := app.Found()
		if len(found) == 0 {
			fmt.Println("no new venues found")
			return nil
		}

		if err := renderVenues(found); err != nil {
			return err
		}
		for _, src := range result.Sources {
			fmt.Printf("source: %s\n", src)
		}

		switch {
		case discoverFlags.promoteAll:
			return promoteAll(cmd, app)
		case isatty.IsTerminal(os.Stdin.Fd()):
			return reviewFound(cmd, app)
		default:
			fmt.Println("re-run with --promote-all to keep these venues")
			return nil
		}
	},
}

// promoteAll moves every staged venue into the committed collection.
func promoteAll(cmd *cobra.Command, app brewmap.Brewmap) error {
	count := 0
	for _, v := range app.Found() {
		moved, err := app.Promote(cmd.Context(), v.ID)
		if err != nil {
			return err
		}
		if moved {
			count++
		}
	}
	fmt.Printf("promoted %d venue(s)\n", count)
	return nil
}

// reviewFound walks the found-set one venue at a time.
func reviewFound(cmd *cobra.Command, app brewmap.Brewmap) error {
	reader := bufio.NewReader(os.Stdin)
	promoted, discarded := 0, 0

	for _, v := range app.Found() {
		fmt.Printf("%s (%s) promote/discard/skip? [p/d/s] ", v.Name, v.Category)
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "p", "promote", "y":
			if moved, err := app.Promote(cmd.Context(), v.ID); err != nil {
				return err
			} else if moved {
				promoted++
			}
		case "d", "discard", "n":
			if app.DiscardFound(v.ID) {
				discarded++
			}
		}
	}

	fmt.Printf("promoted %d, discarded %d, dropped %d\n",
		promoted, discarded, len(app.Found()))
	return nil
}

func init() {
	discoverCmd.Flags().Float64Var(&discoverFlags.lat, "lat", 0, "origin latitude to bias the search")
	discoverCmd.Flags().Float64Var(&discoverFlags.lng, "lng", 0, "origin longitude to bias the search")
	discoverCmd.Flags().BoolVar(&discoverFlags.promoteAll, "promote-all", false, "promote every candidate without review")
	rootCmd.AddCommand(discoverCmd)
}
