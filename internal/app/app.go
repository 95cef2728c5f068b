package app

import (
	"context"
	"fmt"
	"time"

	"volprofile/internal/config"
	"volprofile/internal/feed"
	"volprofile/internal/logger"
	"volprofile/internal/metrics"
	dashboardhttp "volprofile/internal/transport/http/dashboard"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动看板、定时刷新与文件监听。
type App struct {
	cfg      *config.Config
	store    *feed.Store
	loader   *feed.Loader
	watcher  *feed.FileSource
	server   *dashboardhttp.Server
	recorder *metrics.Recorder
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 先做一次加载，然后启动 HTTP 服务与后台刷新，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	// 首次加载失败不阻止启动，接口在有快照前返回 503。
	a.refresh(ctx, "startup")

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("dashboard http server error: %w", err)
		}
		return nil
	})
	if interval := a.cfg.Feed.RefreshInterval(); interval > 0 {
		group.Go(func() error {
			a.refreshLoop(ctx, interval)
			return nil
		})
	}
	if a.watcher != nil && a.cfg.Feed.Watch {
		group.Go(func() error {
			return a.watcher.Watch(ctx, func() { a.refresh(ctx, "watch") })
		})
	}
	return group.Wait()
}

// Store exposes the snapshot store (for tests and embedding).
func (a *App) Store() *feed.Store {
	if a == nil {
		return nil
	}
	return a.store
}

func (a *App) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh(ctx, "interval")
		}
	}
}

func (a *App) refresh(ctx context.Context, reason string) {
	if _, err := a.loader.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warnf("刷新失败 (%s, source=%s): %v", reason, a.loader.SourceName(), err)
	}
}
