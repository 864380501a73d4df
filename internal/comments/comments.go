// Package comments is the host-side feedback store annotated screenshots
// are submitted to.
package comments

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmptyComment is stored when a record is submitted without text.
const EmptyComment = "No comment provided"

// Record is one submitted screenshot with its comment.
type Record struct {
	ID         string    `json:"id"`
	Screenshot string    `json:"screenshot"`
	Comment    string    `json:"comment"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store is an append-only collection listed most recent first.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Close() error
}

// IDGenerator produces record identifiers.
type IDGenerator func() string

// UUIDv7 generates time-ordered RFC 9562 identifiers.
func UUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
