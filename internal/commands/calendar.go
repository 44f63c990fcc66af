package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/app"
)

// Calendar handles the calendar subcommand: merge saved services without network access
func Calendar(_ context.Context, opts Options, args []string) error {
	fs := newFlagSet("calendar", "Merges the services saved by 'fetch -save-json' into the calendar.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	records, err := app.LoadRecords(filepath.Join(cfg.DataDir, app.ServicesFileName))
	if err != nil {
		return err
	}

	fetcher := &app.Fetcher{
		UIDDomain: cfg.UIDDomain,
		Calendar:  app.NewCalendarStore(cfg.CalendarPath(), cfg.CalendarName),
		Now:       time.Now,
	}
	added, total, err := fetcher.MergeRecords(records)
	if err != nil {
		return err
	}

	fmt.Printf("Calendar saved to: %s (%d new, %d total)\n", cfg.CalendarPath(), added, total)
	return nil
}
