// internal/upload/coordinator.go
package upload

// Tracks per-file upload progress through an explicit state machine
// (pending -> uploading -> completed | failed), keyed by file name. Entries
// leave the map only through an explicit Dismiss, never a timer.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opencustoms/trade-portal/internal/models"
)

var (
	ErrInvalidFileType = errors.New("InvalidFileType: file type is not allowed")
	ErrFileTooLarge    = errors.New("FileTooLarge: file exceeds the maximum allowed size")
	ErrUploadInFlight  = errors.New("an upload for this file name is already in progress")
)

// AllowedContentTypes is the explicit MIME allow-list checked before any
// network transfer happens.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// DefaultMaxSize caps uploads at 10 MiB.
const DefaultMaxSize = int64(10 * 1024 * 1024)

// Result is what a completed transfer yields; the record id is written back
// into the matching attachment ref by the caller.
type Result struct {
	AttachmentRecordID int    `json:"attachmentRecordId"`
	RelativePath       string `json:"relativePath"`
}

// Progress is one entry in the progress map the UI polls.
type Progress struct {
	Name    string              `json:"name"`
	Status  models.UploadStatus `json:"status"`
	Percent int                 `json:"percent"`
	Message string              `json:"message,omitempty"`
	Result  *Result             `json:"result,omitempty"`
}

// Transport moves the bytes; the coordinator owns validation and state.
type Transport interface {
	Upload(ctx context.Context, name, contentType string, content []byte, report func(percent int)) (*Result, error)
}

type Coordinator struct {
	transport Transport
	maxSize   int64

	mu      sync.Mutex
	entries map[string]*Progress
	subs    map[int]func(Progress)
	nextSub int
}

func NewCoordinator(transport Transport, maxSize int64) *Coordinator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Coordinator{
		transport: transport,
		maxSize:   maxSize,
		entries:   make(map[string]*Progress),
		subs:      make(map[int]func(Progress)),
	}
}

// Subscribe registers a listener for progress changes and returns an
// unsubscribe function.
func (c *Coordinator) Subscribe(fn func(Progress)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Coordinator) publish(p Progress) {
	c.mu.Lock()
	copyEntry := p
	c.entries[p.Name] = &copyEntry
	listeners := make([]func(Progress), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}

// Upload validates locally, then runs the transfer synchronously and
// returns the result. Validation failures never contact the server.
// One upload per file name may be in flight; a concurrent re-start for the
// same name is rejected. No automatic retry: a failed upload must be
// re-initiated by the caller.
func (c *Coordinator) Upload(ctx context.Context, name, contentType string, content []byte) (*Result, error) {
	if !AllowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}
	if int64(len(content)) > c.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(content), c.maxSize)
	}

	c.mu.Lock()
	if entry, ok := c.entries[name]; ok && !entry.Status.Terminal() {
		c.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	c.entries[name] = &Progress{Name: name, Status: models.UploadStatusPending}
	c.mu.Unlock()

	c.publish(Progress{Name: name, Status: models.UploadStatusUploading, Percent: 0})

	result, err := c.transport.Upload(ctx, name, contentType, content, func(percent int) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		c.publish(Progress{Name: name, Status: models.UploadStatusUploading, Percent: percent})
	})
	if err != nil {
		c.publish(Progress{Name: name, Status: models.UploadStatusFailed, Message: err.Error()})
		return nil, err
	}

	c.publish(Progress{Name: name, Status: models.UploadStatusCompleted, Percent: 100, Result: result})
	return result, nil
}

// Snapshot returns the current progress map for polling.
func (c *Coordinator) Snapshot() []Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Progress, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, *entry)
	}
	return out
}

// Get returns the progress entry for one file name.
func (c *Coordinator) Get(name string) (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok {
		return Progress{}, false
	}
	return *entry, true
}

// Dismiss removes a terminal entry so stale rows do not accumulate. It is
// the caller's explicit action; in-flight entries cannot be dismissed.
func (c *Coordinator) Dismiss(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok || !entry.Status.Terminal() {
		return false
	}
	delete(c.entries, name)
	return true
}
