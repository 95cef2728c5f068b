package feed

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen 远端连续失败后熔断，暂停请求。
var ErrCircuitOpen = errors.New("feed: upstream circuit open")

// ErrPayloadTooLarge 远端返回的结果文件超过大小上限。
var ErrPayloadTooLarge = errors.New("feed: payload too large")

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d (%s)", e.Status, e.URL)
	}
	return fmt.Sprintf("HTTP error! status: %d (%s): %s", e.Status, e.URL, e.Body)
}

// Temporary reports whether the status is worth counting against the breaker.
func (e *HTTPError) Temporary() bool {
	return e.Status >= 500 || e.Status == 429
}

// DecodeError wraps a payload that could not be decoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
