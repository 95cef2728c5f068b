package feed

import (
	"sync"
	"time"

	"volprofile/internal/logger"
	"volprofile/internal/volprofile"

	"github.com/google/uuid"
)

// Snapshot 是某次成功加载后的完整结果。
type Snapshot struct {
	ID        uuid.UUID
	Source    string
	FetchedAt time.Time
	Data      *volprofile.StockData
}

// Listener 在快照替换后触发。
type Listener func(Snapshot)

// Store holds the latest snapshot. Each load replaces it wholesale.
type Store struct {
	mu        sync.RWMutex
	current   *Snapshot
	listeners []Listener
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Replace installs data as the current snapshot and notifies listeners.
func (s *Store) Replace(source string, data *volprofile.StockData) Snapshot {
	snap := Snapshot{
		ID:        uuid.New(),
		Source:    source,
		FetchedAt: s.now(),
		Data:      data,
	}
	s.mu.Lock()
	s.current = &snap
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		go func(cb Listener) {
			defer safeRecover("snapshot listener")
			cb(snap)
		}(fn)
	}
	return snap
}

// Current returns the latest snapshot, if any load has succeeded.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// Subscribe registers fn for future replacements.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}
