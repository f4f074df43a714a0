package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/brewmap/brewmap/internal/cmd/output"
	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/venues"
)

var (
	activeColor   = color.New(color.FgGreen)
	inactiveColor = color.New(color.FgRed)
	unknownColor  = color.New(color.FgYellow)
)

// statusLabel renders an alive status, colored when writing to a terminal.
func statusLabel(s venues.AliveStatus) string {
	switch s {
	case venues.StatusActive:
		return activeColor.Sprint("active")
	case venues.StatusInactive:
		return inactiveColor.Sprint("inactive")
	default:
		return unknownColor.Sprint("unknown")
	}
}

// venueTable shapes a collection for the table formatter.
func venueTable(vs venues.Venues) output.Data {
	data := output.Data{
		Headers: []string{"ID", "Name", "Category", "Lat", "Lng", "Status", "Address"},
	}
	for i := range vs {
		v := &vs[i]
		data.Rows = append(data.Rows, []string{
			shortID(v.ID),
			v.Name,
			v.Category.String(),
			strconv.FormatFloat(v.Coordinates.Lat, 'f', 5, 64),
			strconv.FormatFloat(v.Coordinates.Lng, 'f', 5, 64),
			statusLabel(v.AliveStatus),
			v.Address,
		})
	}
	return data
}

// shortID truncates a UUID for table display; JSON and YAML output carry
// the full id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID expands an id or unique id prefix against the given collections.
func resolveID(arg string, collections ...venues.Venues) (string, error) {
	var match string
	for _, vs := range collections {
		for i := range vs {
			if vs[i].ID == arg {
				return arg, nil
			}
			if strings.HasPrefix(vs[i].ID, arg) {
				if match != "" && match != vs[i].ID {
					return "", fmt.Errorf("id prefix %q is ambiguous", arg)
				}
				match = vs[i].ID
			}
		}
	}
	if match == "" {
		return "", errors.NewNotFoundError("venue", arg)
	}
	return match, nil
}

// renderVenues prints a collection in the requested format.
func renderVenues(vs venues.Venues) error {
	format := outputFormat()
	formatter := output.NewFormatter(format)
	if format == output.FormatTable {
		return formatter.Format(os.Stdout, venueTable(vs))
	}
	return formatter.Format(os.Stdout, vs)
}
