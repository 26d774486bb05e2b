package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds credentials and endpoints for a sync run. Values come from
// config.json when present, overridden by environment variables (a .env file
// in the working directory is honoured).
type Config struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	StudentID string `json:"student_id"`
	BaseURL   string `json:"base_url"`
	Headless  bool   `json:"headless"`
	DataDir   string `json:"data_dir"`

	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURI  string `json:"google_redirect_uri"`
	GoogleCalendarID   string `json:"google_calendar_id"`

	GithubToken string `json:"github_token"`
	GithubRepo  string `json:"github_repo"`
	GithubPath  string `json:"github_path"`
}

const defaultBaseURL = "https://timetable.nulondon.ac.uk"

// Load reads the config file when it exists and applies env overrides.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:           defaultBaseURL,
		Headless:          true,
		DataDir:           "data",
		GoogleRedirectURI: "http://localhost:8080",
		GoogleCalendarID:  "primary",
	}

	file, err := os.Open(filename)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Username, "CELCAT_USERNAME")
	setFromEnv(&cfg.Password, "CELCAT_PASSWORD")
	setFromEnv(&cfg.StudentID, "STUDENT_ID")
	setFromEnv(&cfg.BaseURL, "CELCAT_BASE_URL")
	setFromEnv(&cfg.DataDir, "CELCAT_DATA_DIR")
	setFromEnv(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setFromEnv(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setFromEnv(&cfg.GoogleRedirectURI, "GOOGLE_REDIRECT_URI")
	setFromEnv(&cfg.GoogleCalendarID, "GOOGLE_CALENDAR_ID")
	setFromEnv(&cfg.GithubToken, "GITHUB_TOKEN")
	setFromEnv(&cfg.GithubRepo, "GITHUB_REPO")
	setFromEnv(&cfg.GithubPath, "GITHUB_PATH")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the credentials required before a scrape can start.
func (c *Config) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.StudentID == "" {
		missing = append(missing, "student_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateGoogle checks the fields the calendar export additionally needs.
func (c *Config) ValidateGoogle() error {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_id and google_client_secret are required for calendar sync")
	}
	return nil
}
