package app

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"
)

const sessionFileVersion = 1

// Cookie is one stored session cookie
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Expires  int64  `json:"expires,omitempty"` // unix seconds, 0 = session cookie
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
}

// Session is the cookie set returned by the last successful login
type Session struct {
	Cookies    []Cookie
	ObtainedAt time.Time
}

// NewSession builds a session from response cookies; a later cookie with the same name replaces an earlier one.
// A cookie sent with Max-Age<=0 deletes any earlier cookie of that name.
func NewSession(cookies []*http.Cookie, obtainedAt time.Time) *Session {
	s := &Session{ObtainedAt: obtainedAt.UTC().Truncate(time.Second)}
	index := make(map[string]int)
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		if c.MaxAge < 0 {
			if i, ok := index[c.Name]; ok {
				s.Cookies = append(s.Cookies[:i], s.Cookies[i+1:]...)
				delete(index, c.Name)
				for name, j := range index {
					if j > i {
						index[name] = j - 1
					}
				}
			}
			continue
		}
		stored := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if !c.Expires.IsZero() {
			stored.Expires = c.Expires.Unix()
		}
		if c.MaxAge > 0 {
			stored.Expires = obtainedAt.Add(time.Duration(c.MaxAge) * time.Second).Unix()
		}
		if i, ok := index[c.Name]; ok {
			s.Cookies[i] = stored
			continue
		}
		index[c.Name] = len(s.Cookies)
		s.Cookies = append(s.Cookies, stored)
	}
	return s
}

// Has reports whether the session carries a cookie with the given name
func (s *Session) Has(name string) bool {
	_, ok := s.cookie(name)
	return ok
}

// Usable reports whether every required cookie is present and unexpired at now
func (s *Session) Usable(required []string, now time.Time) bool {
	if s == nil || len(s.Cookies) == 0 {
		return false
	}
	for _, name := range required {
		c, ok := s.cookie(name)
		if !ok {
			return false
		}
		if c.Expires != 0 && !now.Before(time.Unix(c.Expires, 0)) {
			return false
		}
	}
	return true
}

// HTTPCookies returns the cookies to attach to a request
func (s *Session) HTTPCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (s *Session) cookie(name string) (Cookie, bool) {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

type sessionFile struct {
	Version    int       `json:"version"`
	ObtainedAt time.Time `json:"obtained_at"`
	Cookies    []Cookie  `json:"cookies"`
	Checksum   string    `json:"checksum"`
}

// SessionStore persists one session on disk
type SessionStore struct {
	path     string
	required []string
	now      func() time.Time
}

// NewSessionStore creates a store at path; required names the cookies a usable session must carry
func NewSessionStore(path string, required []string) *SessionStore {
	return &SessionStore{path: path, required: required, now: time.Now}
}

// Path returns the session file location
func (s *SessionStore) Path() string {
	return s.path
}

// Load returns the stored session, or nil if there is none usable.
// Only a file that exists but cannot be read is an error.
func (s *SessionStore) Load() (*Session, error) {
	data, err := readFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("⚠️  Ignoring malformed session file %s: %v", s.path, err)
		return nil, nil
	}
	if file.Version != sessionFileVersion {
		log.Printf("⚠️  Ignoring session file %s with version %d", s.path, file.Version)
		return nil, nil
	}
	sum, err := cookieChecksum(file.Cookies)
	if err != nil || sum != file.Checksum {
		log.Printf("⚠️  Ignoring corrupt session file %s (checksum mismatch)", s.path)
		return nil, nil
	}

	session := &Session{Cookies: file.Cookies, ObtainedAt: file.ObtainedAt.UTC()}
	if !session.Usable(s.required, s.now()) {
		log.Printf("Stored session in %s is incomplete or expired", s.path)
		return nil, nil
	}
	return session, nil
}

// Save replaces the stored session
func (s *SessionStore) Save(session *Session) error {
	if session == nil || len(session.Cookies) == 0 {
		return errors.New("refusing to save empty session")
	}
	sum, err := cookieChecksum(session.Cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	data, err := json.MarshalIndent(sessionFile{
		Version:    sessionFileVersion,
		ObtainedAt: session.ObtainedAt.UTC(),
		Cookies:    session.Cookies,
		Checksum:   sum,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0600, false); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the stored session
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func cookieChecksum(cookies []Cookie) (string, error) {
	data, err := json.Marshal(cookies)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
