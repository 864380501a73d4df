package comments

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/surface"
)

// Notifier announces a submitted record.
type Notifier interface {
	Submitted(detail string, png []byte)
}

// Copier places an exported PNG on the clipboard.
type Copier func(png []byte) error

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithNotifier announces each submission.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithCopier copies each submitted screenshot to the clipboard.
func WithCopier(c Copier) ServiceOption {
	return func(s *Service) {
		s.copier = c
	}
}

// Service turns exported artifacts into stored records.
type Service struct {
	store    Store
	newID    IDGenerator
	now      func() time.Time
	notifier Notifier
	copier   Copier
}

// NewService wraps store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, newID: UUIDv7, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveFeedback stores the artifact with its comment and returns the new
// record. A blank comment is stored as EmptyComment.
func (s *Service) SaveFeedback(ctx context.Context, art surface.Artifact, comment string) (Record, error) {
	if len(art.PNG) == 0 {
		return Record{}, fmt.Errorf("save feedback: %w: empty screenshot", apperr.ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = EmptyComment
	}
	rec := Record{
		ID:         s.newID(),
		Screenshot: art.DataURI(),
		Comment:    comment,
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save feedback: %w", err)
	}
	if s.copier != nil {
		if err := s.copier(art.PNG); err != nil {
			log.Printf("copy: %v", err)
		}
	}
	if s.notifier != nil {
		s.notifier.Submitted(rec.ID, art.PNG)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	return s.store.List(ctx, limit)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

// ScreenshotPNG decodes the PNG bytes held in rec.Screenshot.
func ScreenshotPNG(rec Record) ([]byte, error) {
	_, payload, ok := strings.Cut(rec.Screenshot, ";base64,")
	if !ok {
		return nil, fmt.Errorf("screenshot %s: %w: not a base64 data uri", rec.ID, apperr.ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", rec.ID, err)
	}
	return data, nil
}
