package config

import (
	"strings"
	"time"
)

// Config 是 volprofile 服务的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Feed      FeedConfig      `toml:"feed"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Chart     ChartConfig     `toml:"chart"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	HTTPAddr  string `toml:"http_addr"`
	LogPath   string `toml:"log_path"`
}

// FeedConfig 描述结果文件来源：本地文件优先，否则按日期拉取远端。
type FeedConfig struct {
	BaseURL                string `toml:"base_url"`
	Date                   string `toml:"date"`
	FileName               string `toml:"file_name"`
	LocalPath              string `toml:"local_path"`
	Watch                  bool   `toml:"watch"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	InsecureSkipVerify     bool   `toml:"insecure_skip_verify"`
	BreakerThreshold       int    `toml:"breaker_threshold"`
	BreakerTimeoutSeconds  int    `toml:"breaker_timeout_seconds"`
	RefreshIntervalSeconds int    `toml:"refresh_interval_seconds"`
}

// UsesLocalFile reports whether the feed reads from disk.
func (f FeedConfig) UsesLocalFile() bool {
	return strings.TrimSpace(f.LocalPath) != ""
}

func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (f FeedConfig) BreakerTimeout() time.Duration {
	return time.Duration(f.BreakerTimeoutSeconds) * time.Second
}

// RefreshInterval 为 0 时不做周期刷新。
func (f FeedConfig) RefreshInterval() time.Duration {
	return time.Duration(f.RefreshIntervalSeconds) * time.Second
}

type DashboardConfig struct {
	PageSize   int `toml:"page_size"`
	PageWindow int `toml:"page_window"`
}

type ChartConfig struct {
	BarHeightPx int  `toml:"bar_height_px"`
	WidthPx     int  `toml:"width_px"`
	PNGEnabled  bool `toml:"png_enabled"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
