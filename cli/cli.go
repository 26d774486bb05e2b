// Package cli wires the commands: fetch scrapes the timetable, sync pushes
// a saved run to Google Calendar, export renders an ICS file, all chains
// fetch and sync, daemon repeats the chain on an interval.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"celcat-sync/config"
	"celcat-sync/export"
	"celcat-sync/googlecalendar"
	"celcat-sync/scraper"
	"celcat-sync/session"
	"celcat-sync/storage"
	"celcat-sync/uploader"
)

var (
	configPath string
	verbose    bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "celcat-sync",
		Short:         "Scrape a CELCAT timetable and republish it as a calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newFetchCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newAllCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newDaemonCmd())
	return root
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newFetchCmd() *cobra.Command {
	var weeks int
	var output string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape upcoming weeks and save the events as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			_, err = fetchEvents(cfg, logger, weeks, output)
			return err
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 4, "number of weeks to scrape")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: timestamped file in the data directory)")
	return cmd
}

func newSyncCmd() *cobra.Command {
	var file string
	var calendarID string
	var clear bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push a saved run to Google Calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if calendarID != "" {
				cfg.GoogleCalendarID = calendarID
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return err
			}
			events, err := store.LoadEvents(file)
			if err != nil {
				return err
			}
			return syncEvents(cmd.Context(), cfg, logger, events, clear)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "saved events file to sync")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "", "target calendar (default from config)")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the calendar before inserting")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newAllCmd() *cobra.Command {
	var weeks int
	var clear bool

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Scrape and push to Google Calendar in one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return fetchAndSync(cmd.Context(), cfg, logger, weeks, clear)
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 4, "number of weeks to scrape")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the calendar before inserting")
	return cmd
}

func newExportCmd() *cobra.Command {
	var file string
	var output string
	var publish bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a saved run as an ICS file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return err
			}
			events, err := store.LoadEvents(file)
			if err != nil {
				return err
			}

			if err := export.WriteICS(output, events); err != nil {
				return err
			}
			logger.Info("wrote ICS file", "path", output, "events", len(events))

			if publish {
				if cfg.GithubToken == "" || cfg.GithubRepo == "" {
					return fmt.Errorf("github_token and github_repo are required for --publish")
				}
				path := cfg.GithubPath
				if path == "" {
					path = "timetable.ics"
				}
				if err := uploader.UploadToGitHub(cmd.Context(), cfg.GithubToken, cfg.GithubRepo, path, output); err != nil {
					return err
				}
				logger.Info("published ICS file", "repo", cfg.GithubRepo, "path", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "saved events file to export")
	cmd.Flags().StringVarP(&output, "output", "o", "timetable.ics", "ICS file to write")
	cmd.Flags().BoolVar(&publish, "publish", false, "upload the ICS file to GitHub")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newDaemonCmd() *cobra.Command {
	var weeks int
	var interval time.Duration
	var clear bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Scrape and sync on a fixed interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				if err := fetchAndSync(ctx, cfg, logger, weeks, clear); err != nil {
					logger.Error("sync run failed", "error", err)
				}
				logger.Info("sleeping until next run", "interval", interval)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 4, "number of weeks to scrape")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Minute, "time between runs")
	cmd.Flags().BoolVar(&clear, "clear", true, "clear the calendar before each run")
	return cmd
}

func fetchEvents(cfg *config.Config, logger *slog.Logger, weeks int, output string) ([]scraper.Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sess := session.New(cfg, logger)
	defer sess.Close()

	harvester := scraper.NewHarvester(logger)
	walker := scraper.NewWalker(sess, harvester, cfg.BaseURL, cfg.StudentID, logger)

	events, err := walker.GatherRange(time.Now(), weeks)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	path, err := store.SaveEvents(output, events)
	if err != nil {
		return nil, err
	}
	logger.Info("saved events", "path", path, "events", len(events))
	return events, nil
}

func syncEvents(ctx context.Context, cfg *config.Config, logger *slog.Logger, events []scraper.Event, clear bool) error {
	client, err := googlecalendar.NewClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	ids, err := client.PushEvents(events, clear)
	if err != nil {
		return err
	}
	logger.Info("pushed events to Google Calendar", "inserted", len(ids), "total", len(events))
	return nil
}

func fetchAndSync(ctx context.Context, cfg *config.Config, logger *slog.Logger, weeks int, clear bool) error {
	events, err := fetchEvents(cfg, logger, weeks, "")
	if err != nil {
		return err
	}
	return syncEvents(ctx, cfg, logger, events, clear)
}
