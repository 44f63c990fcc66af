package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/app"
)

// Serve handles the serve subcommand: publish the calendar file for subscription
func Serve(ctx context.Context, opts Options, args []string) error {
	fs := newFlagSet("serve", "Serves the calendar file at /calendar.ics and /download.")
	port := fs.Int("port", 8080, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	app.NewFeedServer(app.NewCalendarStore(cfg.CalendarPath(), cfg.CalendarName)).Routes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Serving %s on http://localhost:%d/calendar.ics", cfg.CalendarPath(), *port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
