package tool

import (
	"image"
	"strings"
)

// Placement is the pending text entry between a text-tool click and its
// commit or cancel.
type Placement struct {
	pos    image.Point
	active bool
	text   string
}

// Begin activates entry at pt. Clicking again while active moves the entry
// and drops whatever was typed.
func (p *Placement) Begin(pt image.Point) {
	p.pos = pt
	p.active = true
	p.text = ""
}

// Type appends s while active.
func (p *Placement) Type(s string) {
	if p.active {
		p.text += s
	}
}

// Backspace removes the last rune while active.
func (p *Placement) Backspace() {
	if !p.active || p.text == "" {
		return
	}
	r := []rune(p.text)
	p.text = string(r[:len(r)-1])
}

// Take ends entry and returns what should be stamped. ok is false when
// nothing was active or the text is blank.
func (p *Placement) Take() (pos image.Point, text string, ok bool) {
	if !p.active {
		return image.Point{}, "", false
	}
	pos, text = p.pos, p.text
	p.Cancel()
	if strings.TrimSpace(text) == "" {
		return image.Point{}, "", false
	}
	return pos, text, true
}

// Cancel discards entry.
func (p *Placement) Cancel() {
	*p = Placement{}
}

// Active reports whether entry is in progress.
func (p Placement) Active() bool { return p.active }

// Pos returns the entry position.
func (p Placement) Pos() image.Point { return p.pos }

// Text returns what has been typed so far.
func (p Placement) Text() string { return p.text }
