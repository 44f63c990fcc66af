package app

import (
	"bytes"
	"context"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const customerNumbersParam = "customerNumbers[]"

// Provider date layouts, most common first
var pickupDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
}

// ScheduleClient fetches pickup schedules with an existing session
type ScheduleClient struct {
	http *resty.Client
}

// NewScheduleClient creates a client for cfg.BaseURL
func NewScheduleClient(cfg Config, httpClient *http.Client) *ScheduleClient {
	return &ScheduleClient{http: newRestyClient(httpClient, cfg.BaseURL, nil)}
}

// Fetch returns the schedule records for accounts in response order
func (c *ScheduleClient) Fetch(ctx context.Context, session *Session, accounts []AccountIdentifier) ([]ScheduleRecord, error) {
	raw, err := c.FetchRaw(ctx, session, accounts)
	if err != nil {
		return nil, err
	}
	return ParseSchedule(raw)
}

// FetchRaw returns the unparsed response body
func (c *ScheduleClient) FetchRaw(ctx context.Context, session *Session, accounts []AccountIdentifier) ([]byte, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	query := url.Values{}
	for _, a := range accounts {
		query.Add(customerNumbersParam, string(a))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetCookies(session.HTTPCookies()).
		SetQueryParamsFromValues(query).
		Get(SchedulePath)
	if err != nil {
		return nil, fetchError(ErrUnreachable, "failed to fetch trash schedule: %w", err)
	}

	status := resp.StatusCode()
	switch {
	case isRedirect(status), status == http.StatusUnauthorized, status == http.StatusForbidden:
		return nil, fetchError(ErrSessionExpired, "status %d", status)
	case status < 200 || status >= 300:
		return nil, fetchError(ErrUnexpectedResponse, "status %d", status)
	case isLoginPage(resp.Header().Get("Content-Type"), resp.Body()):
		// the extranet answers expired sessions with its login page
		return nil, fetchError(ErrSessionExpired, "got login page instead of schedule")
	}
	return resp.Body(), nil
}

// isLoginPage reports an HTML response whose body is not a JSON list
func isLoginPage(contentType string, body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "text/html" {
		return false
	}
	return !bytes.HasPrefix(bytes.TrimSpace(body), []byte("["))
}

type wireService struct {
	NextDate *string         `json:"ASTNextDate"`
	Name     string          `json:"ASTNimi"`
	Account  json.RawMessage `json:"ASTAsnro"`
	Price    *float64        `json:"ASTHinta"`
	Interval json.RawMessage `json:"ASTVali"`
	Tariff   *wireTariff     `json:"tariff"`
}

type wireTariff struct {
	ID           json.RawMessage `json:"id"`
	ProductGroup *string         `json:"productgroup"`
	Name         *string         `json:"name"`
}

// ParseSchedule translates the extranet response into records.
// Entries without a trash type or a parsable next date are skipped.
func ParseSchedule(raw []byte) ([]ScheduleRecord, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fetchError(ErrUnexpectedResponse, "failed to parse schedule JSON: %w", err)
	}
	if entries == nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("[]")) {
		return nil, fetchError(ErrUnexpectedResponse, "schedule is not a list")
	}

	records := make([]ScheduleRecord, 0, len(entries))
	for i, entry := range entries {
		record, ok := translateService(i, entry)
		if ok {
			records = append(records, record)
		}
	}
	return records, nil
}

func translateService(i int, entry json.RawMessage) (ScheduleRecord, bool) {
	var svc wireService
	if err := json.Unmarshal(entry, &svc); err != nil {
		log.Printf("⚠️  Skipping service #%d: %v", i, err)
		return ScheduleRecord{}, false
	}

	tariffID := ""
	if svc.Tariff != nil {
		if svc.Tariff.ProductGroup != nil {
			tariffID = strings.TrimSpace(*svc.Tariff.ProductGroup)
		}
		if tariffID == "" {
			tariffID = scalarString(svc.Tariff.ID)
		}
	}
	if tariffID == "" {
		log.Printf("Skipping service #%d (%s): no trash type", i, svc.Name)
		return ScheduleRecord{}, false
	}
	if svc.NextDate == nil || strings.TrimSpace(*svc.NextDate) == "" {
		log.Printf("Skipping service #%d (%s): no next pickup date", i, svc.Name)
		return ScheduleRecord{}, false
	}
	date, err := parsePickupDate(*svc.NextDate)
	if err != nil {
		log.Printf("⚠️  Skipping service #%d (%s): %v", i, svc.Name, err)
		return ScheduleRecord{}, false
	}

	return ScheduleRecord{
		TariffID:       tariffID,
		NextPickupDate: date,
		ServiceName:    svc.Name,
		Account:        scalarString(svc.Account),
		Price:          svc.Price,
		IntervalWeeks:  scalarString(svc.Interval),
	}, true
}

// parsePickupDate returns the calendar day as midnight UTC
func parsePickupDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range pickupDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// scalarString renders a JSON string or number as text; anything else is empty
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
