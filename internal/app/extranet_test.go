package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

const (
	testRoot     = "02-2891001"
	testPassword = "Salasana123"
)

// fakeExtranet mimics the login and schedule endpoints of the extranet
type fakeExtranet struct {
	mu sync.Mutex

	schedule      string
	expireAll     bool // schedule endpoint rejects every session
	expireFirst   bool // first issued session is rejected once
	loginPage     bool // bad credentials get the login form back with 200
	validSessions map[string]bool

	logins   int
	fetches  int
	queries  []url.Values
	rawQuery string
	form     url.Values
}

func newFakeExtranet(t *testing.T, schedule string) (*fakeExtranet, *httptest.Server) {
	t.Helper()
	f := &fakeExtranet{schedule: schedule, validSessions: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/pirkka", f.handleIndex)
	mux.HandleFunc("/pirkka/j_acegi_security_check", f.handleLogin)
	mux.HandleFunc("/pirkka/secure/get_services_by_customer_numbers.do", f.handleSchedule)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeExtranet) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "anonymous", Path: "/pirkka"})
	fmt.Fprintln(w, "<html>login</html>")
}

func (f *fakeExtranet) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f.form = r.PostForm
	if r.Method != http.MethodPost || r.URL.Query().Get("target") != "2" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if c, err := r.Cookie("JSESSIONID"); err != nil || c.Value != "anonymous" {
		http.Error(w, "no pre-login session", http.StatusBadRequest)
		return
	}
	if r.PostFormValue("j_username") != testRoot+"-00" || r.PostFormValue("j_password") != testPassword {
		if f.loginPage {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintln(w, "<html><form action=\"j_acegi_security_check\"></form></html>")
			return
		}
		http.Redirect(w, r, "/pirkka/login.jsp?login_error=1", http.StatusFound)
		return
	}

	f.logins++
	session := fmt.Sprintf("auth-%d", f.logins)
	f.validSessions[session] = true
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: session, Path: "/pirkka", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONIDVERSION", Value: "2", Path: "/pirkka"})
	http.Redirect(w, r, "/pirkka/secure/index.do", http.StatusFound)
}

func (f *fakeExtranet) handleSchedule(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++
	f.queries = append(f.queries, r.URL.Query())
	f.rawQuery = r.URL.RawQuery

	c, err := r.Cookie("JSESSIONID")
	valid := err == nil && f.validSessions[c.Value]
	if valid && f.expireFirst && c.Value == "auth-1" {
		delete(f.validSessions, c.Value)
		valid = false
	}
	if !valid || f.expireAll {
		http.Redirect(w, r, "/pirkka/login.jsp", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	fmt.Fprint(w, f.schedule)
}

func (f *fakeExtranet) counts() (logins, fetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.fetches
}

func testConfig(t *testing.T, srv *httptest.Server) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Username = testRoot
	cfg.Password = testPassword
	cfg.CustomerNumbers = []string{"01", "02"}
	cfg.BaseURL = srv.URL + "/pirkka"
	cfg.DataDir = t.TempDir()
	cfg.ConfigDir = t.TempDir()
	return cfg
}

const scheduleSEK = `[
  {
    "ASTNextDate": "2024-03-05",
    "ASTNimi": "Sekajäte 240 l",
    "ASTAsnro": "02-2891001-01",
    "ASTPos": 1,
    "ASTTyyppi": 1,
    "ASTHinta": 10.5,
    "ASTVali": "2",
    "tariff": {"id": 4711, "productgroup": "SEK", "name": "Sekajäte"}
  }
]`
