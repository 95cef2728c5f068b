package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"volprofile/internal/pkg/circuit"
	"volprofile/internal/volprofile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedDoc = `{
  "timestamp": "2025-06-20T21:00:00",
  "config": {
    "is_test": true,
    "strategy_data_provider_config": {"input_top_level_directory": "/d", "start_datetime": "2024-06-20", "end_datetime": "2025-06-20"},
    "volume_histogram_strategy_config": {"interval": 0.01, "decay_factor": 0.99, "lower_range_volume_to_upper_range_ratio_lower": 0.8, "lower_range_volume_to_upper_range_ratio_upper": 1.2, "all_time_high_risk_percentage_threshold": 0.05},
    "sharpe_ratio_strategy_config": {"past_days": 252, "min_sharpe_ratio": 0.5, "max_sharpe_ratio": 3, "risk_free_rate": 0.04, "volatility_method": "std"},
    "candle_stick_strategy_config": {"interval": 1, "interval_moving_average_window": 20},
    "position_management_config": {"max_cost_per_trade": 1000, "max_total_cost_exposure": 10000},
    "major_stack_range_config": {"price_increment": 0.05, "tolerable_window": 3, "stack_range_min_ratio": 0.1},
    "entry_filtering_config": {"min_gain_loss_ratio": 2, "min_gain_percent": 0.03, "max_loss_percent": 0.02, "min_gain_amount": 10, "max_loss_amount": 5}
  },
  "results": [
    {
      "strategy_position_output": {"symbol": "IBM", "positions_to_enter": [], "positions_to_update": []},
      "symbol_analysis_output": {"symbol": "IBM", "current_epoch": 1, "current_price": 250.5, "stack_range_position": "StackRangePosition.NO_STACK_RANGE", "lower_stack_range": null, "upper_stack_range": null, "volume_histogram": {"250.50": 10}}
    }
  ]
}`

type countingRecorder struct {
	mu      sync.Mutex
	fetches map[string]int
	loads   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{fetches: map[string]int{}, loads: map[string]int{}}
}

func (r *countingRecorder) ObserveFetch(source, outcome string, _ time.Duration, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[source+"/"+outcome]++
}

func (r *countingRecorder) ObserveLoad(format, outcome string, _ time.Duration, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads[format+"/"+outcome]++
}

func TestDatePath(t *testing.T) {
	day := time.Date(2025, time.June, 3, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025/06/03/volume_profile_strategy.json", DatePath(day, ""))
	assert.Equal(t, "2025/06/03/other.json", DatePath(day, "other.json"))
}

func TestParseDatePath(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/2025/06/20/volume_profile_strategy.json", want: "2025/06/20/volume_profile_strategy.json"},
		{in: "2025/06/20/volume_profile_strategy.json", want: "2025/06/20/volume_profile_strategy.json"},
		{in: "/strategy/2025/06/20/x.json", want: "2025/06/20/x.json"},
		{in: "/2025/6/20/x.json", wantErr: true},
		{in: "/2025/02/30/x.json", wantErr: true},
		{in: "/2025/06/20/x.csv", wantErr: true},
		{in: "/2025/06/20/../x.json", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDatePath(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEndpoint(t *testing.T) {
	got, err := Endpoint("", "2025/03/20/volume_profile_strategy.json")
	require.NoError(t, err)
	assert.Equal(t, "https://result.strat.nileverest.co/strategy/2025/03/20/volume_profile_strategy.json", got)

	got, err = Endpoint("http://localhost:9000/base/", "/2025/03/20/a.json")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/base/2025/03/20/a.json", got)

	_, err = Endpoint("relative/path", "2025/03/20/a.json")
	assert.Error(t, err)
}

func newTestFetcher(t *testing.T, srv *httptest.Server, rec Recorder) *Fetcher {
	t.Helper()
	f, err := NewFetcher(FetcherConfig{
		BaseURL:          srv.URL + "/strategy",
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerTimeout:   time.Hour,
	}, rec)
	require.NoError(t, err)
	f.breaker.SetStateChangeHandler(func(string, circuit.State, circuit.State) {})
	return f
}

func TestFetcher_Fetch(t *testing.T) {
	var gotAccept, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(nestedDoc))
	}))
	defer srv.Close()

	rec := newCountingRecorder()
	f := newTestFetcher(t, srv, rec)
	body, err := f.Fetch(context.Background(), "2025/06/20/volume_profile_strategy.json")
	require.NoError(t, err)
	assert.JSONEq(t, nestedDoc, string(body))
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/strategy/2025/06/20/volume_profile_strategy.json", gotPath)
	assert.Equal(t, 1, rec.fetches["remote/ok"])
}

func TestFetcher_HTTPErrorsAndBreaker(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, nil)
	ctx := context.Background()
	path := "2025/06/20/volume_profile_strategy.json"

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(ctx, path)
		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, "nope", httpErr.Body)
	}
	assert.Equal(t, circuit.StateClosed, f.BreakerState(), "4xx does not trip the breaker")

	status.Store(http.StatusBadGateway)
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(ctx, path)
		assert.Error(t, err)
	}
	before := hits.Load()
	_, err := f.Fetch(ctx, path)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}

func TestFetcher_SharedRequestSurvivesCallerCancel(t *testing.T) {
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(nestedDoc))
	}))
	defer srv.Close()
	defer close(release)

	f := newTestFetcher(t, srv, nil)
	path := "2025/06/20/volume_profile_strategy.json"

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(firstCtx, path)
		firstErr <- err
	}()
	<-arrived

	type result struct {
		body []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		body, err := f.Fetch(context.Background(), path)
		second <- result{body, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	release <- struct{}{}
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.JSONEq(t, nestedDoc, string(res.body))
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, circuit.StateClosed, f.BreakerState())
}

func TestFetcher_PayloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(nestedDoc))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, nil)
	path := "2025/06/20/volume_profile_strategy.json"

	f.maxPayload = int64(len(nestedDoc))
	body, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, body, len(nestedDoc))

	f.maxPayload = int64(len(nestedDoc)) - 1
	_, err = f.Fetch(context.Background(), path)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.NotErrorIs(t, err, volprofile.ErrMalformedJSON)
	assert.Equal(t, circuit.StateClosed, f.BreakerState())
}

func TestFileSource_ReadAndWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(path, []byte(nestedDoc), 0o600))

	rec := newCountingRecorder()
	src := NewFileSource(path, rec)
	raw, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nestedDoc, string(raw))
	assert.Equal(t, "file:result.json", src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func() { changed <- struct{}{} })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(nestedDoc), 0o600)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	_, err = NewFileSource(filepath.Join(dir, "missing.json"), nil).Read(context.Background())
	assert.Error(t, err)
}

func TestStore_ReplaceNotifies(t *testing.T) {
	store := NewStore()
	_, ok := store.Current()
	assert.False(t, ok)

	got := make(chan Snapshot, 1)
	store.Subscribe(func(s Snapshot) { got <- s })

	first := store.Replace("test", &volprofile.StockData{Timestamp: "a"})
	second := store.Replace("test", &volprofile.StockData{Timestamp: "b"})
	assert.NotEqual(t, first.ID, second.ID)

	cur, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur.Data.Timestamp)

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}
}

func TestLoader_Refresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume_profile_strategy.json")
	require.NoError(t, os.WriteFile(path, []byte(nestedDoc), 0o600))

	rec := newCountingRecorder()
	loader := NewLoader(NewFileSource(path, rec), NewStore(), rec)
	snap, err := loader.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Data.Results, 1)
	assert.Equal(t, "IBM", snap.Data.Results[0].Symbol)
	assert.Equal(t, "NO_APPLICABLE_ENTRY_SCENARIO_FOUND", snap.Data.Results[0].Conclusion)
	assert.Equal(t, 1, rec.loads["new/ok"])

	require.NoError(t, os.WriteFile(path, []byte(`{"results":`), 0o600))
	_, err = loader.Refresh(context.Background())
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.ErrorIs(t, err, volprofile.ErrMalformedJSON)

	cur, ok := loader.Store().Current()
	require.True(t, ok)
	assert.Equal(t, snap.ID, cur.ID, "failed refresh keeps the previous snapshot")

	require.NoError(t, os.WriteFile(path, []byte(`{"rows":[]}`), 0o600))
	_, err = loader.Refresh(context.Background())
	assert.ErrorIs(t, err, volprofile.ErrUnrecognizedFormat)
	assert.Equal(t, 1, rec.loads["unrecognized/unrecognized"])
}
