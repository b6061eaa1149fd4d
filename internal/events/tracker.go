package events

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/votelane/reco-service/internal/pkg/logger"
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Uploader sends one batch of interactions to the external platform.
type Uploader interface {
	UploadInteractions(ctx context.Context, batch []Interaction) error
}

// Publisher mirrors tracked interactions onto the message bus, best effort.
type Publisher interface {
	PublishInteraction(ctx context.Context, ev Interaction) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishInteraction(ctx context.Context, ev Interaction) error { return nil }

var (
	bufferSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reco_event_buffer_size",
		Help: "Number of interaction events waiting in the buffer",
	})
	flushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_event_flush_total",
		Help: "Buffer flushes by outcome",
	}, []string{"outcome"})
	trackedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_events_tracked_total",
		Help: "Tracked interaction events by path",
	}, []string{"path"})
)

// Tracker decouples event producers from the upload path: events are
// buffered and flushed in batches, except high-value kinds which go out
// synchronously.
type Tracker struct {
	uploader Uploader
	pub      Publisher
	buf      *Buffer
	clock    Clock

	flushSize int
	chunkSize int

	// flushMu serializes flushes so a requeue after a failed upload always
	// lands ahead of anything a concurrent flush could drain.
	flushMu sync.Mutex
}

func NewTracker(uploader Uploader, pub Publisher, flushSize, chunkSize int, clock Clock) *Tracker {
	if flushSize <= 0 {
		flushSize = 50
	}
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if pub == nil {
		pub = NoopPublisher{}
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Tracker{
		uploader:  uploader,
		pub:       pub,
		buf:       NewBuffer(),
		clock:     clock,
		flushSize: flushSize,
		chunkSize: chunkSize,
	}
}

// TrackResult reports what happened to one tracked event.
type TrackResult struct {
	Event    Interaction
	Buffered bool
}

// Track validates and records one event. High-value kinds are uploaded
// synchronously and only fall back to the buffer when that upload fails;
// everything else is enqueued. Upload errors are logged, never returned:
// the only error a caller can see is a validation error.
func (t *Tracker) Track(ctx context.Context, spec TrackSpec) (TrackResult, error) {
	ev, err := NewInteraction(spec, t.clock.Now())
	if err != nil {
		return TrackResult{}, err
	}

	t.mirror(ctx, ev)

	if IsHighValue(spec.EventType) {
		if err := t.uploader.UploadInteractions(ctx, []Interaction{ev}); err == nil {
			trackedTotal.WithLabelValues("immediate").Inc()
			return TrackResult{Event: ev, Buffered: false}, nil
		}
		logger.WithCtx(ctx).Warn().
			Str("event_type", ev.EventType).
			Msg("immediate upload failed, enqueueing")
	}

	size := t.buf.Add(ev)
	bufferSizeGauge.Set(float64(size))
	trackedTotal.WithLabelValues("buffered").Inc()

	if size >= t.flushSize {
		t.flush(ctx)
	}
	return TrackResult{Event: ev, Buffered: true}, nil
}

// BatchTrackResult reports a chunked batch upload. Chunks are uploaded
// sequentially; a failed chunk does not stop the remaining ones, it is
// counted and the batch reports partial success.
type BatchTrackResult struct {
	TotalSent    int
	FailedChunks int
}

// BatchTrack materializes the specs and uploads them in fixed-size chunks,
// bypassing the buffer. Invalid specs fail the whole call before any I/O.
func (t *Tracker) BatchTrack(ctx context.Context, specs []TrackSpec) (BatchTrackResult, error) {
	now := t.clock.Now()
	batch := make([]Interaction, 0, len(specs))
	for _, spec := range specs {
		ev, err := NewInteraction(spec, now)
		if err != nil {
			return BatchTrackResult{}, err
		}
		batch = append(batch, ev)
	}

	var res BatchTrackResult
	for start := 0; start < len(batch); start += t.chunkSize {
		end := start + t.chunkSize
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]
		if err := t.uploader.UploadInteractions(ctx, chunk); err != nil {
			res.FailedChunks++
			logger.WithCtx(ctx).Error().Err(err).
				Int("chunk_size", len(chunk)).
				Msg("batch track chunk upload failed")
			continue
		}
		res.TotalSent += len(chunk)
	}
	return res, nil
}

func (t *Tracker) BufferSize() int { return t.buf.Size() }

// ForceFlush flushes whatever is buffered right now. No-op when empty.
func (t *Tracker) ForceFlush(ctx context.Context) {
	t.flush(ctx)
}

// flush snapshots-and-clears the buffer and attempts one batched upload.
// On failure the snapshot is requeued ahead of newer events. Only one flush
// runs at a time; the timer-driven and size-triggered paths share this lock.
func (t *Tracker) flush(ctx context.Context) {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	snapshot := t.buf.Drain()
	if len(snapshot) == 0 {
		return
	}

	if err := t.uploader.UploadInteractions(ctx, snapshot); err != nil {
		t.buf.Requeue(snapshot)
		bufferSizeGauge.Set(float64(t.buf.Size()))
		flushTotal.WithLabelValues("error").Inc()
		logger.WithCtx(ctx).Error().Err(err).
			Int("events", len(snapshot)).
			Msg("buffer flush failed, requeued")
		return
	}

	bufferSizeGauge.Set(float64(t.buf.Size()))
	flushTotal.WithLabelValues("ok").Inc()
	logger.WithCtx(ctx).Debug().
		Int("events", len(snapshot)).
		Msg("buffer flushed")
}

func (t *Tracker) mirror(ctx context.Context, ev Interaction) {
	if err := t.pub.PublishInteraction(ctx, ev); err != nil {
		logger.WithCtx(ctx).Debug().Err(err).Msg("interaction mirror publish failed")
	}
}
