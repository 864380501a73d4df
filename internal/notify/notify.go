// Package notify shows desktop notifications when feedback is submitted.
package notify

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/example/playtestshot/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSubmit fires when an annotated screenshot is stored.
	EventSubmit Event = "submit"
	// EventCopy fires when a screenshot is copied to the clipboard.
	EventCopy Event = "copy"
)

// Preferences holds the title and per-event message templates.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Playtest feedback",
		Templates: map[Event]string{
			EventSubmit: "Submitted feedback %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies PLAYTESTSHOT_NOTIFY_* environment overrides.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PLAYTESTSHOT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	if v := strings.TrimSpace(os.Getenv("PLAYTESTSHOT_NOTIFY_SUBMIT_TEXT")); v != "" {
		prefs.Templates[EventSubmit] = v
	}
	if v := strings.TrimSpace(os.Getenv("PLAYTESTSHOT_NOTIFY_COPY_TEXT")); v != "" {
		prefs.Templates[EventCopy] = v
	}
	return prefs
}

// SendFunc delivers a notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends notifications for enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// WithSender replaces the platform delivery function.
func (n *Notifier) WithSender(send SendFunc) *Notifier {
	n.send = send
	return n
}

// Enable toggles an event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Submitted announces a stored record, using png as the notification icon.
func (n *Notifier) Submitted(id string, png []byte) {
	if !n.enabledFor(EventSubmit) {
		return
	}
	opts := platform.Options{}
	if len(png) > 0 {
		if path, cleanup, err := writePreview(png); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventSubmit, id, opts)
}

// Copied announces a clipboard copy.
func (n *Notifier) Copied(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "screenshot"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) || n.send == nil {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := tmpl
	if strings.Contains(tmpl, "%") {
		body = fmt.Sprintf(tmpl, strings.TrimSpace(detail))
	}
	if err := n.send(n.prefs.Title, strings.TrimSpace(body), opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func writePreview(png []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "playtestshot-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if _, err := f.Write(png); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
