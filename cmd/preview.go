package cmd

import (
	"context"
	"fmt"
	"time"

	"calendar-sync/core/config"
	"calendar-sync/core/logger"
	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"

	"github.com/spf13/cobra"
)

var (
	previewURL  string
	previewDays int
)

// previewCmd prints the occurrences of one feed without touching any store.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the upcoming occurrences of a calendar feed",
	Long: `Fetches one feed, expands it over the window and prints the instances
grouped by UTC date. Nothing is written to the record store.

Examples:
  preview --url https://calendar.example.com/work.ics --days 7`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewURL, "url", "", "Feed URL (http, https, webcal or s3)")
	previewCmd.Flags().IntVar(&previewDays, "days", 0, "Window length in days (overrides sync.days)")
	_ = previewCmd.MarkFlagRequired("url")

	RootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	days := cfg.Sync.Days
	if previewDays > 0 {
		days = previewDays
	}

	body, err := calendar.NewFetcher(cfg.Feed, openObjects(cfg, l), l).Fetch(ctx, previewURL)
	if err != nil {
		return err
	}
	events, err := calendar.ParseFeed(body, l)
	if err != nil {
		return err
	}

	w := reconcile.NewWindow(time.Now(), days)
	exp := calendar.NewExpander(calendar.Policy{IncludeAllDay: cfg.Sync.IncludeAllDay}, cfg.Sync.MaxOccurrences, l)
	groups := calendar.GroupByDate(calendar.Collect(exp.Instances(events, w)))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d day(s) with events between %s and %s\n",
		calendar.RedactURL(previewURL), len(groups),
		w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	for _, g := range groups {
		fmt.Fprintf(out, "\n%s\n", g.Date)
		for _, inst := range g.Instances {
			fmt.Fprintf(out, "  %s - %s  %s\n", inst.Start.Format("15:04"), inst.End.Format("15:04"), inst.Summary)
		}
	}
	return nil
}
