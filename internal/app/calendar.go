package app

import (
	"bytes"
	"fmt"
	"log"
	"time"
)

// TrashTypes maps tariff codes to their display names
var TrashTypes = map[string]string{
	"SEK": "Mixed waste",
	"BIO": "Bio waste",
	"KK":  "Cardboard",
	"MU":  "Plastic",
	"PP":  "Paper",
	"ME":  "Metal",
	"LA":  "Glass",
	"VU":  "Hazardous waste",
}

// TrashTypeTitle returns the display name for a tariff code, falling back to the service name
func TrashTypeTitle(tariffID, serviceName string) string {
	if title, ok := TrashTypes[tariffID]; ok {
		return title
	}
	if serviceName != "" {
		return serviceName
	}
	return tariffID
}

// EventUID derives the calendar key for a pickup. The account is deliberately not part of it.
func EventUID(tariffID string, date time.Time, domain string) string {
	return fmt.Sprintf("%s-%s@%s", date.Format("2006-01-02"), tariffID, domain)
}

// Merge adds one event per record whose UID is not yet in doc.
// Existing events are never changed or removed. doc itself is not modified.
func Merge(doc CalendarDocument, records []ScheduleRecord, uidDomain string, stamp time.Time) (CalendarDocument, int) {
	merged := CalendarDocument{Events: make([]CalendarEvent, len(doc.Events), len(doc.Events)+len(records))}
	copy(merged.Events, doc.Events)

	seen := make(map[string]struct{}, len(merged.Events)+len(records))
	for _, e := range merged.Events {
		seen[e.UID] = struct{}{}
	}

	stamp = stamp.UTC().Truncate(time.Second)
	added := 0
	for _, r := range records {
		uid := EventUID(r.TariffID, r.NextPickupDate, uidDomain)
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		merged.Events = append(merged.Events, CalendarEvent{
			UID:         uid,
			Title:       TrashTypeTitle(r.TariffID, r.ServiceName),
			Description: r.ServiceName,
			Date:        r.NextPickupDate,
			Stamp:       stamp,
		})
		added++
	}
	return merged, added
}

// CalendarStore reads and writes the calendar file
type CalendarStore struct {
	path string
	name string
}

// NewCalendarStore creates a store for the ICS file at path; name becomes X-WR-CALNAME
func NewCalendarStore(path, name string) *CalendarStore {
	return &CalendarStore{path: path, name: name}
}

// Path returns the calendar file location
func (s *CalendarStore) Path() string {
	return s.path
}

// Load returns the stored calendar; a missing or unparsable file is an empty calendar.
// A file that exists but cannot be read is an error.
func (s *CalendarStore) Load() (CalendarDocument, error) {
	data, err := readFileIfExists(s.path)
	if err != nil {
		return CalendarDocument{}, fmt.Errorf("failed to read calendar: %w", err)
	}
	if len(data) == 0 {
		return CalendarDocument{}, nil
	}
	doc, err := DecodeICS(bytes.NewReader(data))
	if err != nil {
		log.Printf("⚠️  Calendar %s is not a valid calendar, starting empty: %v", s.path, err)
		return CalendarDocument{}, nil
	}
	return doc, nil
}

// Save replaces the calendar file with doc, keeping the previous file as a backup
func (s *CalendarStore) Save(doc CalendarDocument) error {
	var buf bytes.Buffer
	if err := EncodeICS(&buf, s.name, doc); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes(), FilePermissions, true); err != nil {
		return fmt.Errorf("failed to save calendar: %w", err)
	}
	return nil
}
