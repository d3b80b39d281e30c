// Package board drives a real browser against the job board. It owns the
// Chrome lifecycle and exposes page-level operations for discovering
// listings and walking the application flow.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds browser launch and page interaction settings.
type Config struct {
	Bin               string            `mapstructure:"bin"`
	DebuggerURL       string            `mapstructure:"debugger-url"`
	Headless          bool              `mapstructure:"headless"`
	ProfileDir        string            `mapstructure:"profile-dir"`
	Flags             map[string]string `mapstructure:"flags"`
	ViewportWidth     int               `mapstructure:"viewport-width"`
	ViewportHeight    int               `mapstructure:"viewport-height"`
	NavigationTimeout time.Duration     `mapstructure:"navigation-timeout"`
	ElementTimeout    time.Duration     `mapstructure:"element-timeout"`
}

func (c *Config) viewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1920
	}
	return c.ViewportWidth
}

func (c *Config) viewportHeight() int {
	if c.ViewportHeight == 0 {
		return 1080
	}
	return c.ViewportHeight
}

func (c *Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout == 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

func (c *Config) elementTimeout() time.Duration {
	if c.ElementTimeout == 0 {
		return 10 * time.Second
	}
	return c.ElementTimeout
}

// Client owns the Chrome instance shared by all sessions.
type Client struct {
	cfg     *Config
	logger  *zap.Logger
	browser *rod.Browser
}

func NewClient(cfg *Config, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// Start connects to an existing Chrome via the debugger URL or launches a
// new instance with the configured binary, profile and flags.
func (c *Client) Start(ctx context.Context) error {
	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return nil
		}
		c.logger.Warn("stale browser connection detected, reconnecting")
		_ = c.browser.Close()
		c.browser = nil
	}

	controlURL := c.cfg.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(c.cfg.Headless)
		if c.cfg.Bin != "" {
			launch = launch.Bin(c.cfg.Bin)
		}
		if c.cfg.ProfileDir != "" {
			launch = launch.UserDataDir(c.cfg.ProfileDir)
		}
		for rawName, val := range c.cfg.Flags {
			name := strings.TrimLeft(rawName, "-")
			if val == "" {
				launch = launch.Set(flags.Flag(name))
				continue
			}
			launch = launch.Set(flags.Flag(name), val)
		}

		url, err := launch.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}

	c.browser = browser
	c.logger.Debug("browser connected", zap.String("control_url", controlURL))
	return nil
}

// NewSession opens a fresh page on the given URL.
func (c *Client) NewSession(ctx context.Context, url string) (*Session, error) {
	if c.browser == nil {
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.cfg.viewportWidth(),
		Height:            c.cfg.viewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		c.logger.Warn("failed to set viewport", zap.Error(err))
	}

	session := &Session{
		ID:     uuid.NewString(),
		cfg:    c.cfg,
		logger: c.logger,
		page:   page,
	}

	if err := session.Navigate(ctx, url); err != nil {
		_ = page.Close()
		return nil, err
	}

	return session, nil
}

// Close shuts the browser down.
func (c *Client) Close() error {
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	return err
}

// Session is a single page used to walk listings and application forms.
type Session struct {
	ID     string
	cfg    *Config
	logger *zap.Logger
	page   *rod.Page
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.page.Context(ctx).Timeout(s.cfg.navigationTimeout()).Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := s.page.Context(ctx).Timeout(s.cfg.navigationTimeout()).WaitLoad(); err != nil {
		s.logger.Debug("page load wait ended early", zap.String("url", url), zap.Error(err))
	}
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (s *Session) Refresh(ctx context.Context) error {
	if err := s.page.Context(ctx).Timeout(s.cfg.navigationTimeout()).Reload(); err != nil {
		return fmt.Errorf("reload page: %w", err)
	}
	return nil
}

// Screenshot captures the current page, used when extraction comes up empty.
func (s *Session) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(fullPage, nil)
}

func (s *Session) Close() error {
	return s.page.Close()
}

// eval runs a JS function on the page and returns its JSON-encoded result.
func (s *Session) eval(ctx context.Context, js string, args ...any) ([]byte, error) {
	res, err := s.page.Context(ctx).Timeout(s.cfg.elementTimeout()).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate script: %w", err)
	}
	if res == nil || res.Value.Nil() {
		return nil, nil
	}
	return res.Value.MarshalJSON()
}
