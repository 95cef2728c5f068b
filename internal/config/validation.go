package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"volprofile/internal/logger"
)

var (
	validPageSizes  = map[int]bool{5: true, 25: true, 100: true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Feed.validate(); err != nil {
		return err
	}
	if err := c.Dashboard.validate(); err != nil {
		return err
	}
	return c.Chart.validate()
}

func (a *AppConfig) validate() error {
	if _, err := logger.ParseLevel(a.LogLevel); err != nil {
		return fmt.Errorf("app.log_level: %w", err)
	}
	if !validLogFormats[strings.ToLower(a.LogFormat)] {
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (f *FeedConfig) validate() error {
	if !f.UsesLocalFile() {
		u, err := url.Parse(f.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("feed.base_url must be an absolute URL, got %q", f.BaseURL)
		}
	} else if f.RefreshIntervalSeconds > 0 && f.Watch {
		return fmt.Errorf("feed.watch and feed.refresh_interval_seconds are mutually exclusive for local files")
	}
	if f.Date != "" {
		if _, err := time.Parse("2006-01-02", f.Date); err != nil {
			return fmt.Errorf("feed.date must be YYYY-MM-DD, got %q", f.Date)
		}
	}
	if !strings.HasSuffix(f.FileName, ".json") {
		return fmt.Errorf("feed.file_name must end with .json, got %q", f.FileName)
	}
	if f.TimeoutSeconds < 0 {
		return fmt.Errorf("feed.timeout_seconds must be >= 0")
	}
	if f.BreakerThreshold < 1 {
		return fmt.Errorf("feed.breaker_threshold must be >= 1")
	}
	if f.BreakerTimeoutSeconds < 0 {
		return fmt.Errorf("feed.breaker_timeout_seconds must be >= 0")
	}
	if f.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("feed.refresh_interval_seconds must be >= 0")
	}
	return nil
}

func (d *DashboardConfig) validate() error {
	if !validPageSizes[d.PageSize] {
		return fmt.Errorf("dashboard.page_size must be one of 5, 25, 100, got %d", d.PageSize)
	}
	if d.PageWindow < 1 {
		return fmt.Errorf("dashboard.page_window must be >= 1")
	}
	return nil
}

func (c *ChartConfig) validate() error {
	if c.BarHeightPx < 1 {
		return fmt.Errorf("chart.bar_height_px must be >= 1")
	}
	if c.WidthPx < 1 {
		return fmt.Errorf("chart.width_px must be >= 1")
	}
	return nil
}
