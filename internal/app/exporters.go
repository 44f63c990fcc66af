package app

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// SaveRecords writes parsed records as indented JSON
func SaveRecords(path string, records []ScheduleRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}
	if err := writeFileAtomic(path, data, FilePermissions, false); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// LoadRecords reads records written by SaveRecords
func LoadRecords(path string) ([]ScheduleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []ScheduleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// SaveRawSchedule writes the extranet response as received, re-indented when it is valid JSON
func SaveRawSchedule(path string, raw []byte) error {
	data := raw
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		if pretty, err := json.MarshalIndent(v, "", "  "); err == nil {
			data = pretty
		}
	}
	if err := writeFileAtomic(path, data, FilePermissions, false); err != nil {
		return fmt.Errorf("failed to write raw schedule: %w", err)
	}
	return nil
}
