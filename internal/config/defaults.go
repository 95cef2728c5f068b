package config

import (
	"strings"

	"volprofile/internal/feed"
)

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppLogFormat     = "text"
	defaultAppHTTPAddr      = ":9992"
	defaultFeedTimeout      = 15
	defaultBreakerThreshold = 3
	defaultBreakerTimeout   = 30
	defaultPageSize         = 25
	defaultPageWindow       = 5
	defaultBarHeightPx      = 25
	defaultChartWidthPx     = 1200
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Feed.applyDefaults(keys)
	c.Dashboard.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (f *FeedConfig) applyDefaults(keys keySet) {
	if f == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("feed.base_url", &f.BaseURL, feed.DefaultBaseURL),
		stringFieldDefault("feed.file_name", &f.FileName, feed.DefaultFileName),
		intFieldDefault("feed.timeout_seconds", &f.TimeoutSeconds, defaultFeedTimeout),
		intFieldDefault("feed.breaker_threshold", &f.BreakerThreshold, defaultBreakerThreshold),
		intFieldDefault("feed.breaker_timeout_seconds", &f.BreakerTimeoutSeconds, defaultBreakerTimeout),
	)
	f.Date = strings.TrimSpace(f.Date)
	f.LocalPath = strings.TrimSpace(f.LocalPath)
}

func (d *DashboardConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("dashboard.page_size", &d.PageSize, defaultPageSize),
		intFieldDefault("dashboard.page_window", &d.PageWindow, defaultPageWindow),
	)
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("chart.bar_height_px", &c.BarHeightPx, defaultBarHeightPx),
		intFieldDefault("chart.width_px", &c.WidthPx, defaultChartWidthPx),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
