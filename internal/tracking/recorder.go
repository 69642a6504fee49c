package tracking

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"snakesound.click/internal/audio"
)

// recorderQueueSize bounds the events waiting for the writer goroutine
const recorderQueueSize = 256

// soundEvents carry a sound id worth storing
var soundEvents = map[audio.EventKind]bool{
	audio.EventPlayed:        true,
	audio.EventMuted:         true,
	audio.EventReleased:      true,
	audio.EventUninitialized: true,
	audio.EventUnknownSound:  true,
}

type recordRequest struct {
	event   audio.Event
	flushed chan struct{}
}

// Recorder writes manager events to the playback_events table. It implements
// audio.Observer: OnAudioEvent only enqueues, and a writer goroutine does the
// insert, so playback never waits on the database. Events arriving while the
// queue is full are dropped. After the first write error it disables itself.
type Recorder struct {
	db        *sql.DB
	sessionID string
	platform  string
	kinds     map[audio.EventKind]bool

	// sendMu guards queue against Close
	sendMu sync.RWMutex
	closed bool
	queue  chan recordRequest
	done   chan struct{}

	mu       sync.Mutex
	disabled bool
	written  int
	dropped  int
}

var _ audio.Observer = (*Recorder)(nil)

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithPlatform stores name with every row
func WithPlatform(name string) RecorderOption {
	return func(r *Recorder) {
		r.platform = name
	}
}

// WithKinds restricts recording to the given event kinds
func WithKinds(kinds ...audio.EventKind) RecorderOption {
	return func(r *Recorder) {
		r.kinds = make(map[audio.EventKind]bool, len(kinds))
		for _, k := range kinds {
			r.kinds[k] = true
		}
	}
}

// NewRecorder creates a recorder for the specified session and starts its
// writer. Close it before closing db.
func NewRecorder(db *sql.DB, sessionID string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		db:        db,
		sessionID: sessionID,
		queue:     make(chan recordRequest, recorderQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// OnAudioEvent queues e for writing, unless the recorder is disabled,
// closed or filtered
func (r *Recorder) OnAudioEvent(e audio.Event) {
	if r.kinds != nil && !r.kinds[e.Kind] {
		return
	}
	if r.Disabled() {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	r.sendMu.RLock()
	defer r.sendMu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- recordRequest{event: e}:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		slog.Debug("playback tracking queue full, event dropped", "kind", string(e.Kind))
	}
}

// Flush waits until every event queued before the call has been written
func (r *Recorder) Flush() {
	flushed := make(chan struct{})

	r.sendMu.RLock()
	if r.closed {
		r.sendMu.RUnlock()
		return
	}
	r.queue <- recordRequest{flushed: flushed}
	r.sendMu.RUnlock()

	<-flushed
}

// Close writes the queued events and stops the writer. Later events are
// ignored; closing twice is a no-op.
func (r *Recorder) Close() {
	r.sendMu.Lock()
	if r.closed {
		r.sendMu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.sendMu.Unlock()

	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for req := range r.queue {
		if req.flushed != nil {
			close(req.flushed)
			continue
		}
		r.write(req.event)
	}
}

func (r *Recorder) write(e audio.Event) {
	if r.Disabled() {
		return
	}

	var soundID sql.NullInt64
	if soundEvents[e.Kind] {
		soundID = sql.NullInt64{Int64: int64(e.SoundID), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO playback_events (timestamp, session_id, kind, sound_id, detail, platform)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time.Unix(),
		r.sessionID,
		string(e.Kind),
		soundID,
		e.Detail,
		r.platform)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		slog.Warn("playback tracking failed, disabling recorder", "error", err, "kind", string(e.Kind))
		r.disabled = true
		return
	}

	r.written++
	slog.Debug("playback event recorded",
		"session_id", r.sessionID,
		"kind", string(e.Kind),
		"sound_id", int(e.SoundID))
}

// Disabled reports whether a write error switched the recorder off
func (r *Recorder) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

// Written returns the number of rows inserted
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Dropped returns the number of events lost to a full queue
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
