package app

import (
	"net/http"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient returns the transport handle shared by the Authenticator and the ScheduleClient
func NewHTTPClient(cfg Config) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// newRestyClient wraps a copy of hc so jar changes never leak into the shared client.
// Redirects are returned to the caller instead of being followed.
func newRestyClient(hc *http.Client, baseURL string, jar http.CookieJar) *resty.Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	client := resty.NewWithClient(&http.Client{
		Transport: hc.Transport,
		Timeout:   hc.Timeout,
		Jar:       jar,
	})
	client.SetBaseURL(baseURL)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	client.SetHeader("User-Agent", "pjhoy-kalender")
	return client
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}
