package app

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	rootPattern   = regexp.MustCompile(`^[0-9]+-[0-9]+$`)
	suffixPattern = regexp.MustCompile(`^[0-9]{2}$`)
)

// Credentials identify one extranet login
type Credentials struct {
	Root     string // customer root, format xx-yyyyyyy
	Password string
}

// LoginID returns the account identifier used as the login username
func (c Credentials) LoginID() AccountIdentifier {
	return AccountIdentifier(c.Root + "-" + LoginSuffix)
}

// AccountIdentifier selects one billable service (xx-yyyyyyy-zz)
type AccountIdentifier string

// NewAccountIdentifier joins a customer root with a two-digit suffix
func NewAccountIdentifier(root, suffix string) (AccountIdentifier, error) {
	if !rootPattern.MatchString(root) {
		return "", fmt.Errorf("invalid customer root %q (expected xx-yyyyyyy)", root)
	}
	if !suffixPattern.MatchString(suffix) {
		return "", fmt.Errorf("invalid account suffix %q (expected two digits)", suffix)
	}
	return AccountIdentifier(root + "-" + suffix), nil
}

// AccountIdentifiers builds identifiers for every suffix, preserving order and duplicates
func AccountIdentifiers(root string, suffixes []string) ([]AccountIdentifier, error) {
	ids := make([]AccountIdentifier, 0, len(suffixes))
	for _, s := range suffixes {
		id, err := NewAccountIdentifier(root, s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SplitUsername accepts either a customer root or a full login id and returns the root
func SplitUsername(username string) string {
	username = strings.TrimSpace(username)
	parts := strings.Split(username, "-")
	if len(parts) == 3 {
		return parts[0] + "-" + parts[1]
	}
	return username
}

// ScheduleRecord is one trash service entry for one account
type ScheduleRecord struct {
	TariffID       string    `json:"tariff_id"`
	NextPickupDate time.Time `json:"next_pickup_date"`
	ServiceName    string    `json:"service_name"`
	Account        string    `json:"account"`
	Price          *float64  `json:"price,omitempty"`
	IntervalWeeks  string    `json:"interval_weeks,omitempty"`
}

// CalendarEvent is one pickup in the calendar, keyed by UID
type CalendarEvent struct {
	UID         string
	Title       string
	Description string
	Date        time.Time // all-day, midnight UTC
	Stamp       time.Time // DTSTAMP of the first observation
}

// CalendarDocument is the ordered set of events stored in the calendar file
type CalendarDocument struct {
	Events []CalendarEvent
}

// Len returns the number of events
func (d CalendarDocument) Len() int {
	return len(d.Events)
}

// Find returns the event with the given UID
func (d CalendarDocument) Find(uid string) (CalendarEvent, bool) {
	for _, e := range d.Events {
		if e.UID == uid {
			return e, true
		}
	}
	return CalendarEvent{}, false
}
