package app

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
)

// FeedServer serves the calendar file for subscription and download
type FeedServer struct {
	store *CalendarStore
}

// NewFeedServer creates a read-only server for store
func NewFeedServer(store *CalendarStore) *FeedServer {
	return &FeedServer{store: store}
}

// Routes registers the feed endpoints on mux
func (s *FeedServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/calendar.ics", s.HandleSubscribe)
	mux.HandleFunc("/download", s.HandleDownload)
}

// HandleSubscribe serves the calendar inline so calendar apps can subscribe to it
func (s *FeedServer) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	// No Content-Disposition header - calendar apps need inline content for subscriptions
	s.serve(w)
}

// HandleDownload serves the calendar as a file attachment
func (s *FeedServer) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filepath.Base(s.store.Path())))
	s.serve(w)
}

func (s *FeedServer) serve(w http.ResponseWriter) {
	doc, err := s.store.Load()
	if err != nil {
		log.Printf("Error loading calendar: %v", err)
		w.Header().Del("Content-Disposition")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := EncodeICS(&buf, s.store.name, doc); err != nil {
		log.Printf("Error encoding calendar: %v", err)
		w.Header().Del("Content-Disposition")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing calendar response: %v", err)
	}
}

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if !strings.EqualFold(r.Method, method) && !(method == http.MethodGet && r.Method == http.MethodHead) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
