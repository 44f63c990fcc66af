package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/app"
)

// Fetch handles the fetch subcommand
func Fetch(ctx context.Context, opts Options, args []string) error {
	fs := newFlagSet("fetch", "Fetches the trash schedule and merges it into the calendar.")
	var saveParsed, saveOriginal bool
	fs.BoolVar(&saveParsed, "save-json", false, "Save parsed services JSON to the data directory")
	fs.BoolVar(&saveParsed, "j", false, "Shorthand for -save-json")
	fs.BoolVar(&saveOriginal, "save-original-json", false, "Save the original raw JSON response to the data directory")
	fs.BoolVar(&saveOriginal, "r", false, "Shorthand for -save-original-json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fetcher, err := app.NewFetcher(cfg)
	if err != nil {
		return err
	}
	report, err := fetcher.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d trash services, %d new events, %d total\n", len(report.Records), report.Added, report.TotalEvents)
	fmt.Printf("Calendar saved to: %s\n", cfg.CalendarPath())

	if saveParsed {
		path := filepath.Join(cfg.DataDir, app.ServicesFileName)
		if err := app.SaveRecords(path, report.Records); err != nil {
			return err
		}
		fmt.Printf("Parsed services JSON saved to: %s\n", path)
	}
	if saveOriginal {
		path := filepath.Join(cfg.DataDir, app.ServicesFullFileName)
		if err := app.SaveRawSchedule(path, report.Raw); err != nil {
			return err
		}
		fmt.Printf("Original raw JSON data saved to: %s\n", path)
	}
	return nil
}
