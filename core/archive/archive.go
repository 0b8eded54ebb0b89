package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"region-sync/core/logger"
	"region-sync/core/reconcile"
	"region-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrInvalidName is returned for object names outside the archive prefix.
var ErrInvalidName = errors.New("invalid report name")

const (
	uploadTimeout = 30 * time.Second
	queueSize     = 16
)

// Entry describes one archived report.
type Entry struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archiver writes run outcomes to object storage as JSON reports.
// Reports handed to the Observer are uploaded by a single worker started with Start.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
	keep   int
	logger *zap.Logger

	mu      sync.Mutex
	queue   chan reconcile.RunOutcome
	done    chan struct{}
	started bool
	closed  bool
}

// New creates an archiver writing into cfg.Storage.Bucket.
func New(client storage.Client, cfg Config, logger *zap.Logger) *Archiver {
	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archiver{
		client: client,
		bucket: cfg.Storage.Bucket,
		prefix: prefix,
		keep:   cfg.Keep,
		logger: logger,
		queue:  make(chan reconcile.RunOutcome, queueSize),
		done:   make(chan struct{}),
	}
}

// ObjectName returns the object name of the report for out. Names sort by start time.
func (a *Archiver) ObjectName(out reconcile.RunOutcome) string {
	return fmt.Sprintf("%s%s-%s.json", a.prefix, out.StartedAt.UTC().Format("20060102T150405.000Z"), out.RunID)
}

// Store uploads the report for out and returns its object name.
func (a *Archiver) Store(ctx context.Context, out reconcile.RunOutcome) (string, error) {
	body, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	name := a.ObjectName(out)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload run report %s: %w", name, err)
	}
	return name, nil
}

// Observer returns an engine observer that queues every run for archiving.
// It never blocks the run: when the queue is full or the archiver is stopped
// the report is dropped and logged.
func (a *Archiver) Observer() reconcile.Observer {
	return func(out reconcile.RunOutcome) {
		if !a.enqueue(out) {
			logger.WithRun(a.logger, out.RunID).Warn("Run report dropped", zap.Int("queue_size", queueSize))
		}
	}
}

func (a *Archiver) enqueue(out reconcile.RunOutcome) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	select {
	case a.queue <- out:
		return true
	default:
		return false
	}
}

// Start launches the worker that uploads queued reports and prunes old ones.
func (a *Archiver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started || a.closed {
		return
	}
	a.started = true
	go a.work()
}

// Stop stops accepting reports and waits until the queued ones are archived
// or ctx ends.
func (a *Archiver) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	started := a.started
	a.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Archiver) work() {
	defer close(a.done)
	for out := range a.queue {
		a.archive(out)
	}
}

func (a *Archiver) archive(out reconcile.RunOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	l := logger.WithRun(a.logger, out.RunID)
	name, err := a.Store(ctx, out)
	if err != nil {
		l.Warn("Failed to archive run report", zap.Error(err))
		return
	}
	l.Debug("Archived run report", zap.String("object", name))

	if removed, err := a.Prune(ctx); err != nil {
		l.Warn("Failed to prune run reports", zap.Error(err))
	} else if removed > 0 {
		l.Debug("Pruned run reports", zap.Int("removed", removed))
	}
}

// List returns up to limit reports, newest first. A limit of 0 lists everything.
func (a *Archiver) List(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list run reports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		entries = append(entries, Entry{Name: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name > entries[j].Name
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Get downloads and decodes one report.
func (a *Archiver) Get(ctx context.Context, name string) (reconcile.RunOutcome, error) {
	var out reconcile.RunOutcome
	if !strings.HasPrefix(name, a.prefix) || strings.Contains(name, "..") {
		return out, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return out, fmt.Errorf("failed to download run report %s: %w", name, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return out, fmt.Errorf("failed to read run report %s: %w", name, err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to decode run report %s: %w", name, err)
	}
	return out, nil
}

// Prune removes every report beyond the newest keep. It returns the number removed.
func (a *Archiver) Prune(ctx context.Context) (int, error) {
	if a.keep <= 0 {
		return 0, nil
	}

	entries, err := a.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	if len(entries) <= a.keep {
		return 0, nil
	}

	removed := 0
	for _, e := range entries[a.keep:] {
		if err := a.client.RemoveObject(ctx, a.bucket, e.Name, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove run report %s: %w", e.Name, err)
		}
		removed++
	}
	return removed, nil
}
