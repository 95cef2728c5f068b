package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"volprofile/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// Source yields the raw bytes of one result document.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// RemoteSource 按日期从远端拉取结果文件。
type RemoteSource struct {
	fetcher  *Fetcher
	date     string
	fileName string
	now      func() time.Time
}

// NewRemoteSource builds a source for a fixed date (YYYY-MM-DD) or, when
// date is empty, for the current day at each read.
func NewRemoteSource(fetcher *Fetcher, date, fileName string) (*RemoteSource, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("remote source requires a fetcher")
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("feed.date %q: %w", date, err)
		}
	}
	return &RemoteSource{fetcher: fetcher, date: date, fileName: fileName, now: time.Now}, nil
}

func (s *RemoteSource) datePath() string {
	day := s.now()
	if s.date != "" {
		day, _ = time.Parse("2006-01-02", s.date)
	}
	return DatePath(day, s.fileName)
}

func (s *RemoteSource) Name() string {
	return "remote:" + s.datePath()
}

func (s *RemoteSource) Read(ctx context.Context) ([]byte, error) {
	return s.fetcher.Fetch(ctx, s.datePath())
}

// FileSource reads a result document from disk.
type FileSource struct {
	path     string
	recorder Recorder
}

func NewFileSource(path string, recorder Recorder) *FileSource {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &FileSource{path: path, recorder: recorder}
}

func (s *FileSource) Name() string { return "file:" + filepath.Base(s.path) }

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.recorder.ObserveFetch("file", "error", time.Since(start), 0)
		return nil, fmt.Errorf("read result file: %w", err)
	}
	s.recorder.ObserveFetch("file", "ok", time.Since(start), len(raw))
	return raw, nil
}

// Watch calls onChange whenever the file is written or replaced, until ctx
// is done. The parent directory is watched so editors that save by rename
// are still seen.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)
	logger.Infof("feed: 监听结果文件 %s", target)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename) {
				logger.Debugf("feed: 文件变更 %s (%s)", evt.Name, evt.Op)
				onChange()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("feed: watcher error: %v", werr)
		}
	}
}
