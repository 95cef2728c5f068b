package feed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"volprofile/internal/logger"
	"volprofile/internal/pkg/circuit"
	"volprofile/internal/pkg/text"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout  = 15 * time.Second
	maxPayloadBytes = 64 << 20
	errorBodyRunes  = 200
)

// Recorder receives feed telemetry. The metrics package implements it.
type Recorder interface {
	ObserveFetch(source, outcome string, elapsed time.Duration, bytes int)
	ObserveLoad(format, outcome string, elapsed time.Duration, records int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string, string, time.Duration, int) {}
func (nopRecorder) ObserveLoad(string, string, time.Duration, int)  {}

// FetcherConfig 远端拉取参数。
type FetcherConfig struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	BreakerThreshold   int
	BreakerTimeout     time.Duration
}

// Fetcher downloads dated result documents from the remote base.
type Fetcher struct {
	baseURL    string
	timeout    time.Duration
	maxPayload int64
	httpClient *http.Client
	breaker    *circuit.CircuitBreaker
	group      singleflight.Group
	recorder   Recorder
}

func NewFetcher(cfg FetcherConfig, recorder Recorder) (*Fetcher, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := Endpoint(base, DatePath(time.Now(), "")); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402
		}
	}
	threshold := cfg.BreakerThreshold
	if threshold <= 0 {
		threshold = 3
	}
	cooldown := cfg.BreakerTimeout
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Fetcher{
		baseURL:    base,
		timeout:    timeout,
		maxPayload: maxPayloadBytes,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		breaker:    circuit.NewCircuitBreaker("feed", threshold, cooldown),
		recorder:   recorder,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// BreakerState exposes the breaker for health output.
func (f *Fetcher) BreakerState() circuit.State {
	return f.breaker.State()
}

// Fetch downloads the document at datePath. Concurrent calls for the same
// URL share one request; the shared request is bounded by the fetcher
// timeout, not by any single caller, and each caller stops waiting when its
// own ctx is done.
func (f *Fetcher) Fetch(ctx context.Context, datePath string) ([]byte, error) {
	endpoint, err := Endpoint(f.baseURL, datePath)
	if err != nil {
		return nil, err
	}
	ch := f.group.DoChan(endpoint, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return f.fetchOnce(sharedCtx, endpoint)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.Debugf("feed: 合并重复请求 %s", endpoint)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	start := time.Now()
	var body []byte
	err := f.breaker.Execute(func() error {
		var reqErr error
		body, reqErr = f.get(ctx, endpoint)
		return reqErr
	}, countsAgainstBreaker)
	elapsed := time.Since(start)
	if errors.Is(err, circuit.ErrOpen) {
		f.recorder.ObserveFetch("remote", "circuit_open", elapsed, 0)
		return nil, ErrCircuitOpen
	}
	if err != nil {
		f.recorder.ObserveFetch("remote", "error", elapsed, 0)
		logger.Warnf("feed: 拉取 %s 失败: %v", endpoint, err)
		return nil, err
	}
	f.recorder.ObserveFetch("remote", "ok", elapsed, len(body))
	logger.Debugf("feed: GET %s bytes=%d dur=%s", endpoint, len(body), elapsed.Round(time.Millisecond))
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{URL: endpoint, Status: resp.StatusCode, Body: text.Truncate(text.OneLine(string(data)), errorBodyRunes)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if int64(len(body)) > f.maxPayload {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrPayloadTooLarge, endpoint, f.maxPayload)
	}
	return body, nil
}

// countsAgainstBreaker treats transport failures and 5xx as upstream
// trouble; 4xx means the date simply has no result.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrPayloadTooLarge) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return true
}
