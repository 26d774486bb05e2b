// Package session owns the single browser session used to render timetable
// pages. The timetable is a JavaScript widget, so plain HTTP fetches return an
// empty shell; everything goes through a headless browser.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"celcat-sync/config"
	"celcat-sync/scraper"
)

const (
	loginSettle     = 5 * time.Second
	navigateSettle  = 2 * time.Second
	renderSettle    = 3 * time.Second
	selectorTimeout = 10 * time.Second
)

// Session implements scraper.Session on top of a playwright browser.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger

	pw       *playwright.Playwright
	browser  playwright.Browser
	page     playwright.Page
	loggedIn bool
}

func New(cfg *config.Config, logger *slog.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// start launches the browser on first use.
func (s *Session) start() error {
	if s.page != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launching browser: %w", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("opening page: %w", err)
	}

	s.pw, s.browser, s.page = pw, browser, page
	return nil
}

// Login opens the login form and submits the configured credentials. The
// check for success is staying off the login page after the redirect.
func (s *Session) Login() error {
	if err := s.start(); err != nil {
		return err
	}

	loginURL := s.cfg.BaseURL + "/login"
	s.logger.Info("navigating to login page", "url", loginURL)
	if _, err := s.page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}

	if _, err := s.page.WaitForSelector("form", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(selectorTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("login form did not appear: %w", err)
	}

	if err := s.page.Fill("input[type='text'], input[type='email']", s.cfg.Username); err != nil {
		return fmt.Errorf("filling username: %w", err)
	}
	if err := s.page.Fill("input[type='password']", s.cfg.Password); err != nil {
		return fmt.Errorf("filling password: %w", err)
	}
	if err := s.page.Click("button[type='submit'], input[type='submit']"); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	// Let the post-login redirect land before judging the outcome.
	time.Sleep(loginSettle)

	if strings.Contains(strings.ToLower(s.page.URL()), "login") {
		return errors.New("still on login page after submitting credentials")
	}

	s.loggedIn = true
	s.logger.Info("logged in", "url", s.page.URL())
	return nil
}

// NavigateToWeek drives the widget to a specific week's agenda view. The main
// calendar page has to load once before deep links are honoured.
func (s *Session) NavigateToWeek(date time.Time) error {
	if s.page == nil {
		return errors.New("session not started")
	}

	if _, err := s.page.Goto(s.cfg.BaseURL+"/cal", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("opening timetable: %w", err)
	}
	time.Sleep(navigateSettle)
	s.acceptPermissionWarning()

	return s.NavigateURL(s.weekURL(date))
}

// NavigateURL loads a timetable URL directly and waits for the calendar root.
// A missing root is recoverable: the harvester cascade decides whether the
// week is actually empty.
func (s *Session) NavigateURL(url string) error {
	if s.page == nil {
		return errors.New("session not started")
	}

	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	time.Sleep(renderSettle) // absorb client-side re-rendering

	if _, err := s.page.WaitForSelector("#calendar", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(selectorTimeout.Milliseconds())),
	}); err != nil {
		s.logger.Warn("calendar root not found before timeout", "url", url)
	}
	return nil
}

// CurrentPage exposes the live rendered page to the harvester.
func (s *Session) CurrentPage() (scraper.Page, error) {
	if s.page == nil {
		return nil, errors.New("session not started")
	}
	return &renderedPage{page: s.page}, nil
}

// Close releases the browser and the driver. Safe to call more than once.
func (s *Session) Close() error {
	var closeErr error
	if s.browser != nil {
		closeErr = s.browser.Close()
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && closeErr == nil {
			closeErr = err
		}
		s.pw = nil
	}
	s.page = nil
	s.loggedIn = false
	return closeErr
}

// LoggedIn reports whether a login has succeeded on this session.
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

func (s *Session) weekURL(date time.Time) string {
	return fmt.Sprintf("%s/cal?vt=agendaWeek&dt=%s&et=student&fid0=%s",
		s.cfg.BaseURL, date.Format("2006-01-02"), s.cfg.StudentID)
}

// acceptPermissionWarning dismisses the occasional access-rights banner that
// blocks the calendar until acknowledged.
func (s *Session) acceptPermissionWarning() {
	warning := s.page.Locator(".alert-warning")
	if n, err := warning.Count(); err != nil || n == 0 {
		return
	}
	s.logger.Warn("permission warning shown, trying to dismiss it")

	button := s.page.Locator("button:has-text('Accept'), button:has-text('Continue')")
	if n, err := button.Count(); err == nil && n > 0 {
		if err := button.First().Click(); err != nil {
			s.logger.Warn("could not dismiss warning", "err", err)
			return
		}
		time.Sleep(time.Second)
	}
}
