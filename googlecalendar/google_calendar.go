// Package googlecalendar republishes gathered timetable events into a Google
// Calendar.
package googlecalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"celcat-sync/config"
)

const tokenFile = "token.json"

// Client wraps the Google Calendar API for event republication.
type Client struct {
	service    *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewClient authenticates and builds a calendar client. A cached token is
// used when present; otherwise the interactive authorization flow runs and
// the resulting token is cached for the next run.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.ValidateGoogle(); err != nil {
		return nil, err
	}

	oauthCfg := oauthConfig(cfg)
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		token, err = tokenFromWeb(ctx, oauthCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("authorizing with Google: %w", err)
		}
		if err := saveToken(tokenFile, token); err != nil {
			logger.Warn("could not cache oauth token", "err", err)
		}
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	calendarID := cfg.GoogleCalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	logger.Info("google calendar client ready", "calendar_id", calendarID)
	return &Client{service: service, calendarID: calendarID, logger: logger}, nil
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// tokenFromWeb runs the authorization-code flow, capturing the code on a
// local redirect listener.
func tokenFromWeb(ctx context.Context, oauthCfg *oauth2.Config, logger *slog.Logger) (*oauth2.Token, error) {
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then authorize the application:\n%v\n", authURL)

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "Authorization completed. You can close this window.")
		codeCh <- code
	})

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("authorization listener failed", "err", err)
		}
	}()
	defer server.Shutdown(context.Background())

	var authCode string
	select {
	case authCode = <-codeCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("timed out waiting for authorization code")
	}

	token, err := oauthCfg.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
