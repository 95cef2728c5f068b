package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"volprofile/internal/config"
)

type StartupSummary struct {
	Service   ServiceSummary
	Feed      FeedSummary
	Dashboard DashboardSummary
}

type ServiceSummary struct {
	Env       string
	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

type FeedSummary struct {
	Source          string
	BaseURL         string
	Date            string
	RefreshInterval string
	Watch           bool
	Breaker         string
}

type DashboardSummary struct {
	PageSize   int
	PageWindow int
	PNGEnabled bool
}

func newStartupSummary(cfg *config.Config, source string) *StartupSummary {
	date := cfg.Feed.Date
	if date == "" {
		date = "(today)"
	}
	refresh := "off"
	if d := cfg.Feed.RefreshInterval(); d > 0 {
		refresh = d.String()
	}
	return &StartupSummary{
		Service: ServiceSummary{
			Env:       cfg.App.Env,
			HTTPAddr:  cfg.App.HTTPAddr,
			LogLevel:  cfg.App.LogLevel,
			LogFormat: cfg.App.LogFormat,
		},
		Feed: FeedSummary{
			Source:          source,
			BaseURL:         cfg.Feed.BaseURL,
			Date:            date,
			RefreshInterval: refresh,
			Watch:           cfg.Feed.Watch && cfg.Feed.UsesLocalFile(),
			Breaker:         fmt.Sprintf("%d failures / %s", cfg.Feed.BreakerThreshold, cfg.Feed.BreakerTimeout()),
		},
		Dashboard: DashboardSummary{
			PageSize:   cfg.Dashboard.PageSize,
			PageWindow: cfg.Dashboard.PageWindow,
			PNGEnabled: cfg.Chart.PNGEnabled,
		},
	}
}

func (s *StartupSummary) Print() {
	s.Fprint(os.Stdout)
}

func (s *StartupSummary) Fprint(w io.Writer) {
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[服务 (SERVICE)]")
	fmt.Fprintf(w, "  运行环境: %s\n", orDash(s.Service.Env))
	fmt.Fprintf(w, "  监听地址: %s\n", orDash(s.Service.HTTPAddr))
	fmt.Fprintf(w, "  日志级别: %s (%s)\n", orDash(s.Service.LogLevel), orDash(s.Service.LogFormat))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[数据源 (FEED)]")
	fmt.Fprintf(w, "  来源: %s\n", orDash(s.Feed.Source))
	fmt.Fprintf(w, "  远端: %s\n", orDash(s.Feed.BaseURL))
	fmt.Fprintf(w, "  日期: %s\n", orDash(s.Feed.Date))
	fmt.Fprintf(w, "  定时刷新: %s\n", orDash(s.Feed.RefreshInterval))
	fmt.Fprintf(w, "  文件监听: %t\n", s.Feed.Watch)
	fmt.Fprintf(w, "  熔断: %s\n", orDash(s.Feed.Breaker))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[看板 (DASHBOARD)]")
	fmt.Fprintf(w, "  每页: %d\n", s.Dashboard.PageSize)
	fmt.Fprintf(w, "  页码窗口: %d\n", s.Dashboard.PageWindow)
	fmt.Fprintf(w, "  PNG 导出: %t\n", s.Dashboard.PNGEnabled)
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
