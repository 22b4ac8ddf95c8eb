package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handiism/memefetch/internal/catalog"
	"github.com/handiism/memefetch/internal/config"
	"github.com/handiism/memefetch/internal/download"
	memelog "github.com/handiism/memefetch/internal/log"
	"github.com/handiism/memefetch/internal/report"
)

// NewRootCmd creates the root command for memefetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memefetch",
		Short: "Download meme template images into a local directory",
		Long: `memefetch downloads every image in its catalog into a directory,
one file per entry. Files that already exist are skipped, so running it
again only fetches what is missing. Failed items are reported and do not
stop the run.

Examples:
  # Download the built-in catalog into public/memes
  memefetch

  # Use another directory and four parallel downloads
  memefetch --dir ./assets/memes --workers 4

  # Download a custom catalog and print a JSON report
  memefetch -c catalog.yaml -f json

Catalog file example:
  drake_no.jpg: https://i.imgflip.com/30b1gx.jpg
  galaxy_brain.jpg: https://i.imgflip.com/1jwhww.jpg`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("catalog", "c", "",
		"Catalog file (YAML); the built-in catalog is used when empty")
	cmd.PersistentFlags().String("config", "",
		"Settings file (default: $XDG_CONFIG_HOME/memefetch/config.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Download flags
	cmd.Flags().StringP("dir", "d", config.DefaultDownloadsPath,
		"Destination directory")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().IntP("workers", "w", 1,
		"Number of concurrent downloads")

	// Image flags
	cmd.Flags().Bool("convert-images", false,
		"Convert images to the format their file extension names")
	cmd.Flags().Int("max-image-size", 0,
		"Downscale images larger than this many pixels on either side (0 disables)")

	// Output flags
	cmd.Flags().StringP("format", "f", config.FormatText,
		"Report format: text, json or markdown")
	cmd.Flags().Bool("dry-run", false,
		"Show what would be downloaded without making requests")

	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runRootCmd executes a download run.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	settings, err := buildSettings(cmd)
	if err != nil {
		return err
	}

	memes, err := catalog.Load(settings.CatalogPath)
	if err != nil {
		return err
	}

	logger := memelog.New(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	manager := download.NewManager(settings, memes, logEvent(logger), download.WithLogger(logger))

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if dryRun {
		return printPlan(cmd.OutOrStdout(), manager.Plan())
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("starting download",
		slog.String("dir", manager.Directory()),
		slog.Int("entries", memes.Len()),
		slog.Int("workers", settings.MaxConcurrentDownloads))

	result, err := manager.Run(ctx)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(settings.ReportFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return writer.Write(result)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadSettings reads the settings file named by --config, or the default
// location. An explicitly named file must exist.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = config.DefaultPath()
	} else if _, statErr := os.Stat(path); statErr != nil {
		return nil, errors.Errorf("configuration file not found: %s", path)
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}

	catalogPath, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		settings.CatalogPath = catalogPath
	}
	return settings, nil
}

// buildSettings loads the settings file and applies the flags that were set
// on the command line.
func buildSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var flagErr error
	if flags.Changed("dir") {
		settings.DownloadsPath, flagErr = flags.GetString("dir")
	}
	if flagErr == nil && flags.Changed("timeout") {
		settings.Timeout, flagErr = flags.GetDuration("timeout")
	}
	if flagErr == nil && flags.Changed("user-agent") {
		settings.UserAgent, flagErr = flags.GetString("user-agent")
	}
	if flagErr == nil && flags.Changed("workers") {
		settings.MaxConcurrentDownloads, flagErr = flags.GetInt("workers")
	}
	if flagErr == nil && flags.Changed("convert-images") {
		settings.ConvertImages, flagErr = flags.GetBool("convert-images")
	}
	if flagErr == nil && flags.Changed("max-image-size") {
		settings.MaxImageSize, flagErr = flags.GetInt("max-image-size")
	}
	if flagErr == nil && flags.Changed("format") {
		settings.ReportFormat, flagErr = flags.GetString("format")
	}
	if flagErr != nil {
		return nil, flagErr
	}

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration error")
	}
	return settings, nil
}

// logEvent maps manager progress events onto log records.
func logEvent(logger *slog.Logger) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		var attrs []any
		if event.Entry != "" {
			attrs = append(attrs, slog.String("entry", event.Entry))
		}
		if event.Outcome != nil {
			attrs = append(attrs, slog.String("outcome", event.Outcome.Kind.String()))
		}

		switch event.Level {
		case download.LevelVerbose:
			logger.Debug(event.Message, attrs...)
		case download.LevelWarning:
			logger.Warn(event.Message, attrs...)
		case download.LevelError:
			logger.Error(event.Message, attrs...)
		default:
			logger.Info(event.Message, attrs...)
		}
	}
}

// printPlan writes one line per entry saying what a run would do.
func printPlan(w io.Writer, plan []download.PlannedItem) error {
	fetch := 0
	for _, item := range plan {
		action := "fetch"
		if item.Exists {
			action = "skip "
		} else {
			fetch++
		}
		if _, err := fmt.Fprintf(w, "%s  %s  <- %s\n", action, item.Path, item.Entry.URL); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d to fetch, %d already present\n", fetch, len(plan)-fetch)
	return err
}
