// Package audit records text-classification attempts as best-effort,
// fire-and-forget entries in the object store. Audit failure never blocks
// or fails dispatch; dropped entries are only visible through metrics.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
	"github.com/campuskit/campus-wabot-go/internal/objstore"
)

// Entry is one classification attempt: the raw input and what the
// classifier resolved it to.
type Entry struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Sender     string    `json:"sender"`
	Input      string    `json:"input"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Accepted   bool      `json:"accepted"`
	Provider   string    `json:"provider"`
}

// Recorder accepts audit entries without ever blocking the caller.
type Recorder interface {
	Record(entry Entry)
	Close()
}

// Nop discards every entry. Used when audit storage is disabled.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(Entry) {}

// Close implements Recorder.
func (Nop) Close() {}

// uploadTimeout bounds one audit upload so a slow store cannot back up
// the worker indefinitely.
const uploadTimeout = 10 * time.Second

// R2Recorder compresses entries with zstd and uploads them to the object
// store from a single background worker. The inbound queue is bounded;
// when it is full the entry is dropped and counted.
type R2Recorder struct {
	store   objstore.Store
	prefix  string
	log     *logger.Logger
	metrics *metrics.Metrics
	encoder *zstd.Encoder

	queue    chan Entry
	stopOnce sync.Once
	done     chan struct{}
}

// Config holds R2Recorder settings.
type Config struct {
	Store     objstore.Store
	KeyPrefix string
	QueueSize int
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

// NewR2Recorder creates a recorder and starts its worker.
func NewR2Recorder(cfg Config) (*R2Recorder, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("audit: store is required")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("audit: create encoder: %w", err)
	}

	r := &R2Recorder{
		store:   cfg.Store,
		prefix:  cfg.KeyPrefix,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		encoder: encoder,
		queue:   make(chan Entry, queueSize),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r, nil
}

// Record enqueues one entry. Never blocks: a full queue drops the entry.
func (r *R2Recorder) Record(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	select {
	case r.queue <- entry:
	default:
		r.drop("queue full")
	}
}

// Close stops the worker after draining queued entries.
func (r *R2Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.queue)
		<-r.done
	})
}

func (r *R2Recorder) worker() {
	defer close(r.done)
	for entry := range r.queue {
		r.upload(entry)
	}
}

func (r *R2Recorder) upload(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		r.drop("marshal: " + err.Error())
		return
	}
	compressed := r.encoder.EncodeAll(data, nil)

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key := objstore.AuditEntryKey(r.prefix, entry.At, entry.ID)
	if err := r.store.Upload(ctx, key, bytes.NewReader(compressed), "application/zstd"); err != nil {
		r.drop("upload: " + err.Error())
		return
	}
	if r.metrics != nil {
		r.metrics.RecordAuditEntry("stored")
	}
}

func (r *R2Recorder) drop(reason string) {
	if r.metrics != nil {
		r.metrics.RecordAuditDrop()
	}
	if r.log != nil {
		r.log.WithModule("audit").WithField("reason", reason).Warn("Audit entry dropped")
	}
}
