package dialog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
)

// SaveFunc performs the save a Panel guards.
type SaveFunc func(ctx context.Context, comment string) (comments.Record, error)

// Panel collects the free-text comment and allows one save at a time.
type Panel struct {
	mu     sync.Mutex
	text   string
	saving atomic.Bool
}

// SetText replaces the comment.
func (p *Panel) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

// Text returns the comment.
func (p *Panel) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Saving reports whether a save is in flight.
func (p *Panel) Saving() bool { return p.saving.Load() }

// Submit runs save with the current comment. A second Submit while one is
// running fails with apperr.ErrSaveInFlight. Failures are not retried.
func (p *Panel) Submit(ctx context.Context, save SaveFunc) (comments.Record, error) {
	if !p.saving.CompareAndSwap(false, true) {
		return comments.Record{}, apperr.ErrSaveInFlight
	}
	defer p.saving.Store(false)
	return save(ctx, p.Text())
}

// Submit saves the session with the panel's comment.
func (s *Shell) Submit(ctx context.Context) (comments.Record, error) {
	return s.panel.Submit(ctx, s.Save)
}
