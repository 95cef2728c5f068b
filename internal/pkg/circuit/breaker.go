package circuit

import (
	"errors"
	"sync"
	"time"

	"volprofile/internal/logger"
)

// ErrOpen 熔断器处于打开状态时返回。
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "CLOSED",
	StateOpen:     "OPEN",
	StateHalfOpen: "HALF-OPEN",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// StateChangeFunc is invoked asynchronously on every state transition.
type StateChangeFunc func(name string, from, to State)

// CircuitBreaker trips after threshold consecutive failures and lets a
// single probe through once the cooldown has elapsed.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       State
	consecutive int
	trippedAt   time.Time
	probe       bool
	onChange    StateChangeFunc
}

func NewCircuitBreaker(name string, threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (cb *CircuitBreaker) SetStateChangeHandler(fn StateChangeFunc) {
	cb.mu.Lock()
	cb.onChange = fn
	cb.mu.Unlock()
}

// State 返回当前状态（不触发半开切换）。
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may proceed. An expired open breaker moves to
// half-open and admits exactly one probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.trippedAt) >= cb.cooldown {
		cb.setState(StateHalfOpen)
	}
	switch cb.state {
	case StateOpen:
		return false
	case StateHalfOpen:
		if cb.probe {
			return false
		}
		cb.probe = true
	}
	return true
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutive, cb.probe = 0, false
	cb.setState(StateClosed)
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutive++
	cb.probe = false
	// 半开探测失败立即重新打开
	if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.consecutive >= cb.threshold) {
		cb.trippedAt = cb.now()
		cb.setState(StateOpen)
	}
}

// Execute runs fn when the breaker allows it. isFailure decides which errors
// count against the breaker; a nil isFailure counts every error.
func (cb *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if !cb.Allow() {
		return ErrOpen
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
	return err
}

// setState 需在持有锁时调用。
func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if fn := cb.onChange; fn != nil {
		go fn(cb.name, from, to)
		return
	}
	logger.Warnf("熔断器 %s: %s -> %s (连续失败 %d/%d, 冷却 %s)",
		cb.name, from, to, cb.consecutive, cb.threshold, cb.cooldown)
}
