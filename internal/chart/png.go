package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"volprofile/internal/volprofile"

	"github.com/chromedp/chromedp"
)

// settleDelay 等待 echarts 初始化动画结束后再截图。
const (
	screenshotTimeout = 20 * time.Second
	settleDelay       = 1500 * time.Millisecond
	marginX           = 40
	marginY           = 120
)

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable 确认本机可启动 headless Chrome，结果只探测一次。
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderPNG renders the chart page for sym and screenshots it.
func RenderPNG(ctx context.Context, sym volprofile.StockSymbol, o Options) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless chrome unavailable: %w", err)
	}
	var buf bytes.Buffer
	if err := RenderHTML(sym, &buf, o); err != nil {
		return nil, err
	}
	width, height := o.Size(len(sym.VolumeHistogram))
	return screenshotHTML(ctx, buf.Bytes(), width+marginX, height+marginY)
}

func screenshotHTML(ctx context.Context, page []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, screenshotTimeout)
	defer cancel()

	var png []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString(page)),
		chromedp.WaitVisible("div.item", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.FullScreenshot(&png, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot chart: %w", err)
	}
	return png, nil
}
