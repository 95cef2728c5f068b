package app

import (
	"context"
	"fmt"

	"volprofile/internal/chart"
	"volprofile/internal/config"
	"volprofile/internal/feed"
	"volprofile/internal/logger"
	"volprofile/internal/metrics"
	dashboardhttp "volprofile/internal/transport/http/dashboard"
	"volprofile/internal/volprofile"
)

type AppBuilder struct {
	cfg *config.Config

	fetcherFn func(config.FeedConfig, feed.Recorder) (*feed.Fetcher, error)
	serverFn  func(dashboardhttp.ServerConfig) (*dashboardhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithFetcherFactory 替换远端 fetcher 的构建方式（测试用）。
func WithFetcherFactory(fn func(config.FeedConfig, feed.Recorder) (*feed.Fetcher, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.fetcherFn = fn
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		fetcherFn: buildFetcher,
		serverFn:  dashboardhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildFetcher(cfg config.FeedConfig, recorder feed.Recorder) (*feed.Fetcher, error) {
	return feed.NewFetcher(feed.FetcherConfig{
		BaseURL:            cfg.BaseURL,
		Timeout:            cfg.Timeout(),
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		BreakerThreshold:   cfg.BreakerThreshold,
		BreakerTimeout:     cfg.BreakerTimeout(),
	}, recorder)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	recorder := metrics.New()
	store := feed.NewStore()
	store.Subscribe(func(snap feed.Snapshot) {
		if snap.Data == nil {
			return
		}
		recorder.SetSnapshot(len(snap.Data.Results), volprofile.CountEntryPoints(snap.Data.Results))
	})

	// 远端 fetcher 总是构建：按日期访问的路由依赖它。
	fetcher, err := b.fetcherFn(cfg.Feed, recorder)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}

	var (
		source  feed.Source
		watcher *feed.FileSource
	)
	if cfg.Feed.UsesLocalFile() {
		watcher = feed.NewFileSource(cfg.Feed.LocalPath, recorder)
		source = watcher
	} else {
		remote, err := feed.NewRemoteSource(fetcher, cfg.Feed.Date, cfg.Feed.FileName)
		if err != nil {
			return nil, err
		}
		source = remote
	}
	loader := feed.NewLoader(source, store, recorder)
	logger.Infof("✓ 数据源: %s", source.Name())

	server, err := b.serverFn(dashboardhttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		Snapshots:  store,
		Reloader:   loader,
		Fetcher:    fetcher,
		Recorder:   recorder,
		Observer:   recorder,
		Metrics:    recorder.Handler(),
		PageSize:   cfg.Dashboard.PageSize,
		PageWindow: cfg.Dashboard.PageWindow,
		Chart:      chart.Options{BarHeightPx: cfg.Chart.BarHeightPx, WidthPx: cfg.Chart.WidthPx},
		PNGEnabled: cfg.Chart.PNGEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("build dashboard server: %w", err)
	}

	return &App{
		cfg:      cfg,
		store:    store,
		loader:   loader,
		watcher:  watcher,
		server:   server,
		recorder: recorder,
		Summary:  newStartupSummary(cfg, source.Name()),
	}, nil
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}
