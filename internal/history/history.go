// Package history keeps the bounded undo/redo sequence of full-frame
// snapshots for one editing session.
package history

import (
	"image"

	"github.com/example/playtestshot/internal/render"
)

// DefaultCapacity is the maximum number of retained snapshots.
const DefaultCapacity = 50

// Snapshot is an immutable copy of a raster buffer.
type Snapshot struct {
	img *image.RGBA
}

// NewSnapshot copies img into a Snapshot.
func NewSnapshot(img *image.RGBA) Snapshot {
	return Snapshot{img: render.Clone(img)}
}

// Image returns a copy of the snapshot pixels.
func (s Snapshot) Image() *image.RGBA {
	return render.Clone(s.img)
}

// RestoreInto copies the snapshot pixels into dst. Both must share bounds.
func (s Snapshot) RestoreInto(dst *image.RGBA) {
	if s.img == nil || dst == nil {
		return
	}
	copy(dst.Pix, s.img.Pix)
}

// Equal reports whether img holds exactly the snapshot pixels.
func (s Snapshot) Equal(img *image.RGBA) bool {
	if s.img == nil || img == nil {
		return s.img == nil && img == nil
	}
	if !s.img.Bounds().Eq(img.Bounds()) || len(s.img.Pix) != len(img.Pix) {
		return false
	}
	for i := range s.img.Pix {
		if s.img.Pix[i] != img.Pix[i] {
			return false
		}
	}
	return true
}

// History is an ordered list of snapshots with a cursor naming the one
// currently displayed. A History belongs to a single session and is not
// safe for concurrent use.
type History struct {
	frames   []Snapshot
	cursor   int
	capacity int
}

// New returns an empty History holding at most capacity snapshots.
func New(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Reset replaces the whole sequence with a single seed snapshot.
func (h *History) Reset(seed *image.RGBA) {
	h.frames = []Snapshot{NewSnapshot(seed)}
	h.cursor = 0
}

// Commit appends img after the cursor, dropping any redo states, and moves
// the cursor to it. The oldest snapshot is evicted once capacity is exceeded.
func (h *History) Commit(img *image.RGBA) {
	if len(h.frames) > 0 {
		h.frames = h.frames[:h.cursor+1]
	}
	h.frames = append(h.frames, NewSnapshot(img))
	h.cursor = len(h.frames) - 1
	if len(h.frames) > h.capacity {
		h.frames[0] = Snapshot{}
		h.frames = h.frames[1:]
		h.cursor--
	}
}

// Undo moves the cursor back one step. It reports false at the undo terminal.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return h.frames[h.cursor], true
}

// Redo moves the cursor forward one step. It reports false at the redo terminal.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return h.frames[h.cursor], true
}

// ClearToFirst keeps only the snapshot at index 0 and points the cursor at
// it. After eviction this is the oldest retained frame, not necessarily the
// frame the session was seeded with.
func (h *History) ClearToFirst() (Snapshot, bool) {
	if len(h.frames) == 0 {
		return Snapshot{}, false
	}
	h.frames = h.frames[:1:1]
	h.cursor = 0
	return h.frames[0], true
}

// Current returns the snapshot under the cursor.
func (h *History) Current() (Snapshot, bool) {
	if len(h.frames) == 0 {
		return Snapshot{}, false
	}
	return h.frames[h.cursor], true
}

// At returns the snapshot at index i.
func (h *History) At(i int) (Snapshot, bool) {
	if i < 0 || i >= len(h.frames) {
		return Snapshot{}, false
	}
	return h.frames[i], true
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.frames) }

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the snapshot cap.
func (h *History) Capacity() int { return h.capacity }

// CanUndo reports whether the cursor is past the first snapshot.
func (h *History) CanUndo() bool { return len(h.frames) > 0 && h.cursor > 0 }

// CanRedo reports whether snapshots exist beyond the cursor.
func (h *History) CanRedo() bool { return len(h.frames) > 0 && h.cursor < len(h.frames)-1 }
