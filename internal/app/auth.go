package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Authenticator performs the extranet form login and stores the resulting session
type Authenticator struct {
	httpClient *http.Client
	baseURL    string
	required   []string
	store      *SessionStore
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator that saves sessions to store
func NewAuthenticator(cfg Config, httpClient *http.Client, store *SessionStore) *Authenticator {
	return &Authenticator{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		required:   cfg.SessionCookies,
		store:      store,
		now:        time.Now,
	}
}

// Login exchanges credentials for a session. The session is durably stored when Login returns nil.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Password == "" {
		return nil, ErrMissingPassword
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := newRestyClient(a.httpClient, a.baseURL, jar)

	var cookies []*http.Cookie

	// Establish a pre-login session first; the login form expects its cookie
	resp, err := client.R().SetContext(ctx).Get(a.baseURL)
	if err != nil {
		return nil, authError(ErrUnreachable, "failed to establish session: %w", err)
	}
	if status := resp.StatusCode(); status >= 500 {
		return nil, authError(ErrUnexpectedResponse, "status %d from %s", status, a.baseURL)
	}
	cookies = append(cookies, resp.Cookies()...)

	resp, err = client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"j_username":  string(creds.LoginID()),
			"j_password":  creds.Password,
			"remember-me": "false",
		}).
		Post(LoginPath)
	if err != nil {
		return nil, authError(ErrUnreachable, "failed to send login request: %w", err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, authError(ErrInvalidCredentials, "status %d", status)
	case status >= 400:
		return nil, authError(ErrUnexpectedResponse, "status %d", status)
	case isRedirect(status) && loginRejected(resp.Header().Get("Location")):
		return nil, authError(ErrInvalidCredentials, "redirected to %s", resp.Header().Get("Location"))
	}
	cookies = append(cookies, resp.Cookies()...)

	// Only cookies issued by the login response prove success
	now := a.now()
	issued := NewSession(resp.Cookies(), now)
	for _, name := range a.required {
		if !issued.Has(name) {
			return nil, authError(ErrInvalidCredentials, "no %s cookie in login response", name)
		}
	}
	session := NewSession(cookies, now)
	if err := a.store.Save(session); err != nil {
		return nil, err
	}
	log.Printf("✅ Logged in as %s (%d cookies saved to %s)", creds.LoginID(), len(session.Cookies), a.store.Path())
	return session, nil
}

// loginRejected reports whether a post-login redirect points back at the login form with an error
func loginRejected(location string) bool {
	// Acegi sends failures to login.jsp?login_error=1
	return strings.Contains(strings.ToLower(location), "error")
}
