package dashboardhttp

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"volprofile/internal/chart"
	"volprofile/internal/feed"
	"volprofile/internal/logger"
	"volprofile/internal/volprofile"

	"github.com/gin-gonic/gin"
)

// Snapshots 提供当前已加载的数据快照。
type Snapshots interface {
	Current() (feed.Snapshot, bool)
}

// Reloader refetches the configured source.
type Reloader interface {
	Refresh(ctx context.Context) (feed.Snapshot, error)
}

// DatedFetcher fetches a raw result document by its YYYY/MM/DD path.
type DatedFetcher interface {
	Fetch(ctx context.Context, datePath string) ([]byte, error)
}

// RequestObserver 记录请求耗时与状态码。
type RequestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

// PNGRenderer screenshots the chart for one symbol.
type PNGRenderer func(ctx context.Context, sym volprofile.StockSymbol, o chart.Options) ([]byte, error)

// ServerConfig 描述 dashboard HTTP 服务依赖。
type ServerConfig struct {
	Addr       string
	Snapshots  Snapshots
	Reloader   Reloader
	Fetcher    DatedFetcher
	Recorder   feed.Recorder
	Observer   RequestObserver
	Metrics    http.Handler
	PageSize   int
	PageWindow int
	Chart      chart.Options
	PNGEnabled bool
	RenderPNG  PNGRenderer
}

// Server 提供 dashboard 页面、JSON 接口与按日期代理。
type Server struct {
	addr   string
	router *gin.Engine
}

// NewServer 构建 dashboard HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Snapshots == nil {
		return nil, errors.New("dashboard http server requires a snapshot source")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}
	if !validPageSize(cfg.PageSize) {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageWindow <= 0 {
		cfg.PageWindow = DefaultPageWindow
	}
	if cfg.PNGEnabled && cfg.RenderPNG == nil {
		cfg.RenderPNG = chart.RenderPNG
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Observer))

	tmpl, err := template.New("dashboard").Funcs(templateFuncs).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}
	h := &handlers{cfg: cfg}
	h.register(router)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// requestLogger 记录每次请求，并按路由上报指标。
func requestLogger(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
		if observer != nil {
			observer.ObserveRequest(routeLabel(c), status, dur)
		}
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	if dated, ok := c.Get(datedRouteKey); ok && dated == true {
		return "/:year/:month/:day/:file"
	}
	return "unmatched"
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("dashboard: 监听 %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
