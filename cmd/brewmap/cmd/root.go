// Package cmd implements the brewmap CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/brewmap/brewmap"
	"github.com/brewmap/brewmap/internal/cmd/output"
	"github.com/brewmap/brewmap/internal/config"
	"github.com/brewmap/brewmap/internal/discovery"
	"github.com/brewmap/brewmap/internal/store"
	"github.com/brewmap/brewmap/pkg/logging"
)

var (
	configFile string
	storePath  string
	formatFlag string
	verbose    bool
	quiet      bool
	noColor    bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "brewmap",
	Short: "Craft-beer venue catalog",
	Long: `Brewmap curates a local map of craft-beer venues: add, edit, delete,
categorize and geolocate points of interest, import and export them as KML,
and search for new venues with a generative-AI discovery service.

All state lives locally in a single SQLite file; nothing is sent anywhere
except discovery queries when GEMINI_API_KEY is configured.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the CLI with signal-aware context cancellation.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.brewmap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "path to the venue database (default is $HOME/.brewmap/brewmap.db)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (shortcut for LOG_LEVEL=debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (shortcut for LOG_LEVEL=warn)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// setup configures logging and configuration before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	config.Init(configFile)

	level := config.GetString(config.KeyLogLevel)
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "warn"
	}
	logging.Configure(&logging.Config{
		Level:   level,
		Format:  config.GetString(config.KeyLogFormat),
		Output:  "stderr",
		NoColor: noColor,
	})

	if noColor {
		color.NoColor = true
	}

	if _, err := output.ParseFormat(formatFlag); err != nil {
		return err
	}
	return nil
}

// outputFormat resolves the effective output format for this invocation.
func outputFormat() output.Format {
	return output.DetectFormat(formatFlag)
}

// resolveStorePath picks the venue database location: flag, then config,
// then the conventional default.
func resolveStorePath() (string, error) {
	if storePath != "" {
		return storePath, nil
	}
	if p := config.StorePath(); p != "" {
		return p, nil
	}
	return store.DefaultPath()
}

// openApp builds a Brewmap backed by the local store. When withDiscovery is
// set, a Gemini gateway is attached; commands that do not need it avoid
// requiring an API key.
func openApp(ctx context.Context, withDiscovery bool) (brewmap.Brewmap, error) {
	path, err := resolveStorePath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	opts := []brewmap.Option{brewmap.WithStore(st)}
	if withDiscovery {
		gateway, err := discovery.NewClient(ctx, config.GeminiAPIKey(), config.GeminiModel())
		if err != nil {
			st.Close()
			return nil, err
		}
		opts = append(opts, brewmap.WithDiscovery(gateway))
	}

	app, err := brewmap.New(ctx, opts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return app, nil
}
