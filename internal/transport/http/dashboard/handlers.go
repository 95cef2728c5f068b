package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"volprofile/internal/chart"
	"volprofile/internal/feed"
	"volprofile/internal/logger"
	"volprofile/internal/volprofile"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize   = 25
	DefaultPageWindow = 5

	datedRouteKey = "dated_route"
	pngSuffix     = ".png"

	// statusClientClosedRequest 客户端在响应前断开（沿用 nginx 的 499）。
	statusClientClosedRequest = 499
)

// PageSizes are the page sizes the list endpoints accept.
var PageSizes = []int{5, 25, 100}

func validPageSize(n int) bool {
	for _, v := range PageSizes {
		if v == n {
			return true
		}
	}
	return false
}

type handlers struct {
	cfg ServerConfig
}

func (h *handlers) register(router *gin.Engine) {
	router.GET("/", h.handleIndex)
	api := router.Group("/api")
	api.GET("/snapshot", h.handleSnapshot)
	api.GET("/stocks", h.handleStocks)
	api.GET("/stocks/:symbol", h.handleStock)
	api.POST("/reload", h.handleReload)
	router.GET("/chart/:symbol", h.handleChart)
	// 按日期访问的结果文件不与其它路由冲突，放在 NoRoute 中匹配。
	router.NoRoute(h.handleDated)
}

// stockItem 为列表/详情接口返回的单条记录。
type stockItem struct {
	volprofile.StockSymbol
	IsEntryPoint bool `json:"is_entry_point"`
}

func toItems(records []volprofile.StockSymbol) []stockItem {
	items := make([]stockItem, len(records))
	for i, r := range records {
		items[i] = stockItem{StockSymbol: r, IsEntryPoint: volprofile.IsStockEntryPoint(r.Conclusion)}
	}
	return items
}

type stockPage struct {
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Pages      []int       `json:"pages"`
	Items      []stockItem `json:"items"`
}

func (h *handlers) snapshot(c *gin.Context) (feed.Snapshot, bool) {
	snap, ok := h.cfg.Snapshots.Current()
	if !ok || snap.Data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot loaded", "path": ""})
		return feed.Snapshot{}, false
	}
	return snap, true
}

func (h *handlers) handleSnapshot(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           snap.ID.String(),
		"source":       snap.Source,
		"fetched_at":   snap.FetchedAt.UTC().Format(time.RFC3339),
		"timestamp":    snap.Data.Timestamp,
		"config":       snap.Data.Config,
		"symbols":      len(snap.Data.Results),
		"entry_points": volprofile.CountEntryPoints(snap.Data.Results),
	})
}

// pageQuery 解析 page / page_size 参数；page_size 只允许固定档位。
func (h *handlers) pageQuery(c *gin.Context) (page, size int, err error) {
	size = h.cfg.PageSize
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || !validPageSize(size) {
			return 0, 0, errors.New("page_size must be one of 5, 25, 100")
		}
	}
	page = 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("page must be an integer")
		}
	}
	return page, size, nil
}

func (h *handlers) buildPage(records []volprofile.StockSymbol, page, size int) stockPage {
	sorted := volprofile.SortEntryFirst(records)
	p := volprofile.Paginate(len(sorted), page, size)
	return stockPage{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      len(sorted),
		TotalPages: p.TotalPages,
		Pages:      volprofile.PageWindow(p.Number, p.TotalPages, h.cfg.PageWindow),
		Items:      toItems(sorted[p.Start:p.End]),
	}
}

func (h *handlers) handleStocks(c *gin.Context) {
	page, size, err := h.pageQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "path": ""})
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.buildPage(snap.Data.Results, page, size))
}

func findSymbol(data *volprofile.StockData, symbol string) (volprofile.StockSymbol, bool) {
	symbol = strings.TrimSpace(symbol)
	for _, r := range data.Results {
		if strings.EqualFold(r.Symbol, symbol) {
			return r, true
		}
	}
	return volprofile.StockSymbol{}, false
}

func (h *handlers) handleStock(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	rec, found := findSymbol(snap.Data, c.Param("symbol"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol " + c.Param("symbol"), "path": ""})
		return
	}
	c.JSON(http.StatusOK, toItems([]volprofile.StockSymbol{rec})[0])
}

func (h *handlers) handleChart(c *gin.Context) {
	symbol := c.Param("symbol")
	wantPNG := strings.HasSuffix(strings.ToLower(symbol), pngSuffix)
	if wantPNG {
		if !h.cfg.PNGEnabled {
			c.JSON(http.StatusNotFound, gin.H{"error": "png export disabled", "path": ""})
			return
		}
		symbol = symbol[:len(symbol)-len(pngSuffix)]
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	rec, found := findSymbol(snap.Data, symbol)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol " + symbol, "path": ""})
		return
	}
	if wantPNG {
		png, err := h.cfg.RenderPNG(c.Request.Context(), rec, h.cfg.Chart)
		if err != nil {
			logger.Warnf("dashboard: 渲染 %s PNG 失败: %v", rec.Symbol, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "path": ""})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	var buf bytes.Buffer
	if err := chart.RenderHTML(rec, &buf, h.cfg.Chart); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "path": ""})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handlers) handleReload(c *gin.Context) {
	if h.cfg.Reloader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reload not configured", "path": ""})
		return
	}
	snap, err := h.cfg.Reloader.Refresh(c.Request.Context())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warnf("dashboard: 手动刷新失败: %v", err)
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      snap.ID.String(),
		"source":  snap.Source,
		"symbols": len(snap.Data.Results),
	})
}

// handleDated 对应开发代理的 /YYYY/MM/DD/<file>.json 路径：拉取远端并返回旧版格式。
func (h *handlers) handleDated(c *gin.Context) {
	datePath, err := feed.ParseDatePath(c.Request.URL.Path)
	if err != nil || c.Request.Method != http.MethodGet || h.cfg.Fetcher == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": c.Request.URL.Path})
		return
	}
	c.Set(datedRouteKey, true)
	raw, err := h.cfg.Fetcher.Fetch(c.Request.Context(), datePath)
	if err != nil {
		writeError(c, err)
		return
	}
	data, _, err := feed.Decode("remote:"+datePath, raw, h.cfg.Recorder)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *handlers) handleIndex(c *gin.Context) {
	snap, ok := h.cfg.Snapshots.Current()
	view := indexView{Loaded: ok && snap.Data != nil}
	if view.Loaded {
		page, size, err := h.pageQuery(c)
		if err != nil {
			page, size = 1, h.cfg.PageSize
		}
		view.Snapshot = snap
		view.EntryPoints = volprofile.CountEntryPoints(snap.Data.Results)
		view.List = h.buildPage(snap.Data.Results, page, size)
		view.PageSizes = PageSizes
		view.PNGEnabled = h.cfg.PNGEnabled
	}
	c.HTML(http.StatusOK, "index.html", view)
}

// writeError 将错误映射为状态码：上游 502，结构不符 422，熔断 503。
// 客户端已断开时只记录 499，不再写响应体。
func writeError(c *gin.Context, err error) {
	status, path := classify(err)
	if status == statusClientClosedRequest {
		logger.Debugf("dashboard: 客户端断开 %s: %v", c.Request.URL.Path, err)
		c.AbortWithStatus(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "path": path})
}

func classify(err error) (int, string) {
	var (
		schemaErr *volprofile.SchemaError
		fieldErr  *volprofile.FieldError
		httpErr   *feed.HTTPError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, ""
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, schemaErr.Path
	case errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity, fieldErr.Path
	case errors.Is(err, volprofile.ErrUnrecognizedFormat):
		return http.StatusUnprocessableEntity, ""
	case errors.Is(err, feed.ErrCircuitOpen):
		return http.StatusServiceUnavailable, ""
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusNotFound {
			return http.StatusNotFound, ""
		}
		return http.StatusBadGateway, ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ""
	default:
		return http.StatusBadGateway, ""
	}
}
