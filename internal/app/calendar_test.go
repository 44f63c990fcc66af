package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var (
	testStamp  = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	laterStamp = time.Date(2024, 3, 8, 6, 0, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRecords() []ScheduleRecord {
	return []ScheduleRecord{
		{TariffID: "SEK", NextPickupDate: day(2024, 3, 5), ServiceName: "Sekajäte 240 l", Account: "02-2891001-01"},
		{TariffID: "BIO", NextPickupDate: day(2024, 3, 6), ServiceName: "Biojäte 140 l", Account: "02-2891001-01"},
		{TariffID: "XYZ", NextPickupDate: day(2024, 3, 7), ServiceName: "Puutarhajäte", Account: "02-2891001-02"},
	}
}

func TestTrashTypeTitle(t *testing.T) {
	tests := []struct {
		tariffID    string
		serviceName string
		want        string
	}{
		{"SEK", "Sekajäte", "Mixed waste"},
		{"BIO", "", "Bio waste"},
		{"KK", "", "Cardboard"},
		{"MU", "", "Plastic"},
		{"PP", "", "Paper"},
		{"ME", "", "Metal"},
		{"LA", "", "Glass"},
		{"VU", "", "Hazardous waste"},
		{"sek", "Sekajäte", "Sekajäte"}, // case-sensitive
		{"UNKNOWN", "Unknown service", "Unknown service"},
		{"UNKNOWN", "", "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := TrashTypeTitle(tt.tariffID, tt.serviceName); got != tt.want {
			t.Errorf("TrashTypeTitle(%q, %q) = %q, want %q", tt.tariffID, tt.serviceName, got, tt.want)
		}
	}
}

func TestEventUID(t *testing.T) {
	got := EventUID("SEK", day(2024, 3, 5), DefaultUIDDomain)
	if got != "2024-03-05-SEK@pjhoy.fi" {
		t.Errorf("EventUID() = %s", got)
	}
}

func TestMerge(t *testing.T) {
	merged, added := Merge(CalendarDocument{}, testRecords(), DefaultUIDDomain, testStamp)
	if added != 3 {
		t.Errorf("Expected 3 added events, got %d", added)
	}

	want := CalendarDocument{Events: []CalendarEvent{
		{UID: "2024-03-05-SEK@pjhoy.fi", Title: "Mixed waste", Description: "Sekajäte 240 l", Date: day(2024, 3, 5), Stamp: testStamp},
		{UID: "2024-03-06-BIO@pjhoy.fi", Title: "Bio waste", Description: "Biojäte 140 l", Date: day(2024, 3, 6), Stamp: testStamp},
		{UID: "2024-03-07-XYZ@pjhoy.fi", Title: "Puutarhajäte", Description: "Puutarhajäte", Date: day(2024, 3, 7), Stamp: testStamp},
	}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merged document mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeIdempotent(t *testing.T) {
	once, _ := Merge(CalendarDocument{}, testRecords(), DefaultUIDDomain, testStamp)
	twice, added := Merge(once, testRecords(), DefaultUIDDomain, laterStamp)

	if added != 0 {
		t.Errorf("Second merge should add nothing, added %d", added)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Merge is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMergeFirstWriteWins(t *testing.T) {
	doc, _ := Merge(CalendarDocument{}, []ScheduleRecord{
		{TariffID: "XYZ", NextPickupDate: day(2024, 3, 7), ServiceName: "Original name"},
	}, DefaultUIDDomain, testStamp)

	merged, added := Merge(doc, []ScheduleRecord{
		{TariffID: "XYZ", NextPickupDate: day(2024, 3, 7), ServiceName: "Renamed service", Account: "02-2891001-02"},
	}, DefaultUIDDomain, laterStamp)

	if added != 0 {
		t.Errorf("Expected no new events, got %d", added)
	}
	event, ok := merged.Find("2024-03-07-XYZ@pjhoy.fi")
	if !ok {
		t.Fatal("Event missing after merge")
	}
	if event.Title != "Original name" || event.Description != "Original name" || !event.Stamp.Equal(testStamp) {
		t.Errorf("Stored event changed: %+v", event)
	}
}

func TestMergeKeepsHistory(t *testing.T) {
	doc, _ := Merge(CalendarDocument{}, testRecords(), DefaultUIDDomain, testStamp)
	snapshot := append([]CalendarEvent(nil), doc.Events...)

	next := []ScheduleRecord{
		{TariffID: "SEK", NextPickupDate: day(2024, 3, 19), ServiceName: "Sekajäte 240 l"},
		{TariffID: "SEK", NextPickupDate: day(2024, 3, 19), ServiceName: "Sekajäte 240 l"},
	}
	merged, added := Merge(doc, next, DefaultUIDDomain, laterStamp)

	if added != 1 {
		t.Errorf("Duplicate records in one batch should collapse, added %d", added)
	}
	if merged.Len() != doc.Len()+1 {
		t.Errorf("Expected %d events, got %d", doc.Len()+1, merged.Len())
	}
	// Older pickups stay, in their original order
	if diff := cmp.Diff(snapshot, merged.Events[:len(snapshot)]); diff != "" {
		t.Errorf("Existing events changed (-want +got):\n%s", diff)
	}
	// Input document is not modified
	if diff := cmp.Diff(snapshot, doc.Events); diff != "" {
		t.Errorf("Merge modified its input (-want +got):\n%s", diff)
	}
}

func TestMergeUniqueness(t *testing.T) {
	records := append(testRecords(), testRecords()...)
	records = append(records, ScheduleRecord{TariffID: "SEK", NextPickupDate: day(2024, 3, 5), ServiceName: "Other account", Account: "02-2891001-02"})

	merged, _ := Merge(CalendarDocument{}, records, DefaultUIDDomain, testStamp)
	seen := map[string]bool{}
	for _, e := range merged.Events {
		if seen[e.UID] {
			t.Errorf("Duplicate UID %s", e.UID)
		}
		seen[e.UID] = true
	}
	if merged.Len() != 3 {
		t.Errorf("Expected 3 events, got %d", merged.Len())
	}
}

func TestCalendarStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), CalendarFileName)
	store := NewCalendarStore(path, DefaultCalendarName)

	doc, _ := Merge(CalendarDocument{}, testRecords(), DefaultUIDDomain, testStamp)
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("Document mismatch (-want +got):\n%s", diff)
	}
}

func TestCalendarStoreBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), CalendarFileName)
	store := NewCalendarStore(path, DefaultCalendarName)

	first, _ := Merge(CalendarDocument{}, testRecords()[:1], DefaultUIDDomain, testStamp)
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	firstBytes, _ := os.ReadFile(path)

	second, _ := Merge(first, testRecords(), DefaultUIDDomain, testStamp)
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	backup, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		t.Fatalf("Backup not created: %v", err)
	}
	if !bytes.Equal(firstBytes, backup) {
		t.Error("Backup should contain the previous calendar")
	}
}

func TestCalendarStoreLoadEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "File not exists"},
		{name: "Empty file", content: ptr("")},
		{name: "Not a calendar", content: ptr("hello world\n")},
		{name: "Truncated calendar", content: ptr("BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nUID:x\r\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), CalendarFileName)
			if tt.content != nil {
				writeTestFile(t, path, *tt.content)
			}
			doc, err := NewCalendarStore(path, "").Load()
			if err != nil {
				t.Fatalf("Load() should not fail, got: %v", err)
			}
			if doc.Len() != 0 {
				t.Errorf("Expected empty document, got %d events", doc.Len())
			}
		})
	}
}

func TestCalendarStoreLoadUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), CalendarFileName)
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if _, err := NewCalendarStore(path, "").Load(); err == nil {
		t.Error("Load() should fail for an unreadable path")
	}
}

func TestCalendarStoreSaveFailure(t *testing.T) {
	// Parent is a regular file, so the calendar cannot be written
	parent := filepath.Join(t.TempDir(), "file")
	writeTestFile(t, parent, "x")

	store := NewCalendarStore(filepath.Join(parent, CalendarFileName), "")
	if err := store.Save(CalendarDocument{}); err == nil {
		t.Error("Save() should fail when the directory cannot be created")
	}
}

func ptr(s string) *string {
	return &s
}
