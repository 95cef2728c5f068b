package feed

import (
	"context"
	"errors"
	"time"

	"volprofile/internal/logger"
	"volprofile/internal/volprofile"
)

// Loader pulls a document from a Source, normalizes it and publishes the
// result to a Store. Failures leave the previous snapshot in place.
type Loader struct {
	source   Source
	store    *Store
	recorder Recorder
}

func NewLoader(source Source, store *Store, recorder Recorder) *Loader {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Loader{source: source, store: store, recorder: recorder}
}

func (l *Loader) Store() *Store { return l.store }

func (l *Loader) SourceName() string { return l.source.Name() }

// Refresh 拉取并规范化一次，成功后整体替换快照。
func (l *Loader) Refresh(ctx context.Context) (Snapshot, error) {
	raw, err := l.source.Read(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	data, format, err := Decode(l.source.Name(), raw, l.recorder)
	if err != nil {
		return Snapshot{}, err
	}
	snap := l.store.Replace(l.source.Name(), data)
	logger.Infof("feed: 快照已更新 id=%s source=%s format=%s symbols=%d entries=%d",
		snap.ID, snap.Source, format, len(data.Results), volprofile.CountEntryPoints(data.Results))
	return snap, nil
}

// Decode runs raw through format detection and normalization, wrapping
// malformed payloads in *DecodeError.
func Decode(source string, raw []byte, recorder Recorder) (*volprofile.StockData, volprofile.Format, error) {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	start := time.Now()
	format := volprofile.ClassifyFormat(raw)
	data, err := volprofile.EnsureLegacyFormat(raw)
	elapsed := time.Since(start)
	if err != nil {
		recorder.ObserveLoad(format.String(), outcomeOf(err), elapsed, 0)
		if errors.Is(err, volprofile.ErrMalformedJSON) {
			return nil, format, &DecodeError{Source: source, Err: err}
		}
		return nil, format, err
	}
	recorder.ObserveLoad(format.String(), "ok", elapsed, len(data.Results))
	return data, format, nil
}

func outcomeOf(err error) string {
	var schemaErr *volprofile.SchemaError
	var fieldErr *volprofile.FieldError
	switch {
	case errors.Is(err, volprofile.ErrMalformedJSON):
		return "malformed"
	case errors.Is(err, volprofile.ErrUnrecognizedFormat):
		return "unrecognized"
	case errors.As(err, &schemaErr), errors.As(err, &fieldErr):
		return "schema"
	default:
		return "error"
	}
}
