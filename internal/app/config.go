package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Constants
const (
	DefaultBaseURL      = "https://extranet.pjhoy.fi/pirkka"
	DefaultTimeout      = 30 * time.Second
	DefaultCalendarName = "PJHOY jätehuolto"
	DefaultUIDDomain    = "pjhoy.fi"
	DefaultCookieName   = "JSESSIONID"

	LoginPath    = "j_acegi_security_check?target=2"
	SchedulePath = "secure/get_services_by_customer_numbers.do"
	LoginSuffix  = "00"

	ConfigFileName       = "config.yaml"
	EnvFileName          = ".env"
	SessionFileName      = "cookies.json"
	CalendarFileName     = "pjhoy.ics"
	ServicesFileName     = "services.json"
	ServicesFullFileName = "services_full.json"

	BackupSuffix    = ".backup"
	TmpSuffix       = ".tmp"
	FilePermissions = 0644
	DirPermissions  = 0755

	// ICS constants
	ICSProductID = "-//pjhoy//trash calendar//EN"
)

// Environment overrides
const (
	EnvUsername        = "PJHOY_USERNAME"
	EnvPassword        = "PJHOY_PASSWORD"
	EnvCustomerNumbers = "PJHOY_CUSTOMER_NUMBERS"
	EnvBaseURL         = "PJHOY_BASE_URL"
	EnvOutput          = "PJHOY_OUTPUT"
	EnvConfigDir       = "PJHOY_CONFIG_DIR"
	EnvDataDir         = "PJHOY_DATA_DIR"
)

// Config holds everything the core components need for one run
type Config struct {
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	CustomerNumbers []string      `yaml:"customer_numbers"`
	BaseURL         string        `yaml:"base_url"`
	CalendarName    string        `yaml:"calendar_name"`
	Output          string        `yaml:"output"`
	Timeout         time.Duration `yaml:"timeout"`
	UIDDomain       string        `yaml:"uid_domain"`
	SessionCookies  []string      `yaml:"session_cookies"`

	ConfigDir string `yaml:"-"`
	DataDir   string `yaml:"-"`
}

// Root returns the customer root (xx-yyyyyyy) derived from the username
func (c Config) Root() string {
	return SplitUsername(c.Username)
}

// Credentials returns the login credentials
func (c Config) Credentials() Credentials {
	return Credentials{Root: c.Root(), Password: c.Password}
}

// Accounts returns the account identifiers to query
func (c Config) Accounts() ([]AccountIdentifier, error) {
	return AccountIdentifiers(c.Root(), c.CustomerNumbers)
}

// SessionPath returns the session file location
func (c Config) SessionPath() string {
	return filepath.Join(c.DataDir, SessionFileName)
}

// CalendarPath returns the calendar file location
func (c Config) CalendarPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.DataDir, CalendarFileName)
}

// Validate reports every problem with the configuration at once
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Username == "" {
		result = multierror.Append(result, errors.New("username is required"))
	} else if !rootPattern.MatchString(c.Root()) {
		result = multierror.Append(result, fmt.Errorf("invalid username %q (expected xx-yyyyyyy or xx-yyyyyyy-zz)", c.Username))
	}
	if len(c.CustomerNumbers) == 0 {
		result = multierror.Append(result, ErrNoAccounts)
	}
	for _, n := range c.CustomerNumbers {
		if !suffixPattern.MatchString(n) {
			result = multierror.Append(result, fmt.Errorf("invalid customer number %q (expected two digits)", n))
		}
	}
	if c.BaseURL == "" {
		result = multierror.Append(result, errors.New("base_url is required"))
	}
	return result.ErrorOrNil()
}

// DefaultConfig returns a config with defaults applied and directories resolved
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		CalendarName:   DefaultCalendarName,
		Timeout:        DefaultTimeout,
		UIDDomain:      DefaultUIDDomain,
		SessionCookies: []string{DefaultCookieName},
		ConfigDir:      defaultConfigDir(),
		DataDir:        defaultDataDir(),
	}
}

// LoadConfig reads config.yaml and .env from configDir and applies environment overrides.
// Empty configDir/dataDir fall back to the environment and then the platform defaults.
func LoadConfig(configDir, dataDir string) (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvConfigDir); v != "" {
		cfg.ConfigDir = v
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}

	if err := godotenv.Load(filepath.Join(cfg.ConfigDir, EnvFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", EnvFileName, err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.ConfigDir, ConfigFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment only
	default:
		return Config{}, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	applyEnv(&cfg)
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UIDDomain == "" {
		cfg.UIDDomain = DefaultUIDDomain
	}
	if len(cfg.SessionCookies) == 0 {
		cfg.SessionCookies = []string{DefaultCookieName}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvUsername)); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCustomerNumbers)); v != "" {
		var numbers []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				numbers = append(numbers, n)
			}
		}
		cfg.CustomerNumbers = numbers
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		cfg.Output = v
	}
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "pjhoy")
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pjhoy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "pjhoy")
}
