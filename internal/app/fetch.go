package app

import (
	"context"
	"errors"
	"log"
	"time"
)

// FetchReport summarises one fetch run
type FetchReport struct {
	Records     []ScheduleRecord
	Raw         []byte
	Added       int
	TotalEvents int
}

// Fetcher runs login-if-needed, fetch and calendar merge in sequence
type Fetcher struct {
	Credentials Credentials
	Accounts    []AccountIdentifier
	UIDDomain   string

	Sessions *SessionStore
	Auth     *Authenticator
	Client   *ScheduleClient
	Calendar *CalendarStore

	Now func() time.Time
}

// NewFetcher wires the core components from cfg
func NewFetcher(cfg Config) (*Fetcher, error) {
	accounts, err := cfg.Accounts()
	if err != nil {
		return nil, err
	}
	httpClient := NewHTTPClient(cfg)
	sessions := NewSessionStore(cfg.SessionPath(), cfg.SessionCookies)
	return &Fetcher{
		Credentials: cfg.Credentials(),
		Accounts:    accounts,
		UIDDomain:   cfg.UIDDomain,
		Sessions:    sessions,
		Auth:        NewAuthenticator(cfg, httpClient, sessions),
		Client:      NewScheduleClient(cfg, httpClient),
		Calendar:    NewCalendarStore(cfg.CalendarPath(), cfg.CalendarName),
		Now:         time.Now,
	}, nil
}

// Run fetches the schedule and merges it into the calendar.
// An expired session is renewed once; the calendar is only written after a successful fetch.
func (f *Fetcher) Run(ctx context.Context) (FetchReport, error) {
	session, err := f.Sessions.Load()
	if err != nil {
		return FetchReport{}, err
	}
	if session == nil {
		log.Printf("No stored session, logging in")
		if session, err = f.Auth.Login(ctx, f.Credentials); err != nil {
			return FetchReport{}, err
		}
	}

	raw, err := f.Client.FetchRaw(ctx, session, f.Accounts)
	if errors.Is(err, ErrSessionExpired) {
		log.Printf("⚠️  Session expired, logging in again")
		if session, err = f.Auth.Login(ctx, f.Credentials); err != nil {
			return FetchReport{}, err
		}
		raw, err = f.Client.FetchRaw(ctx, session, f.Accounts)
	}
	if err != nil {
		return FetchReport{}, err
	}

	records, err := ParseSchedule(raw)
	if err != nil {
		return FetchReport{}, err
	}
	log.Printf("Fetched %d trash services for %d accounts", len(records), len(f.Accounts))

	added, total, err := f.MergeRecords(records)
	if err != nil {
		return FetchReport{}, err
	}
	return FetchReport{Records: records, Raw: raw, Added: added, TotalEvents: total}, nil
}

// MergeRecords runs the read-merge-write cycle on the calendar file
func (f *Fetcher) MergeRecords(records []ScheduleRecord) (added, total int, err error) {
	doc, err := f.Calendar.Load()
	if err != nil {
		return 0, 0, err
	}
	merged, added := Merge(doc, records, f.UIDDomain, f.now())
	if err := f.Calendar.Save(merged); err != nil {
		return 0, 0, err
	}
	log.Printf("✅ Calendar saved to %s (%d new, %d total)", f.Calendar.Path(), added, merged.Len())
	return added, merged.Len(), nil
}

func (f *Fetcher) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

