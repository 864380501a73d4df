// Package platform delivers desktop notifications through the host OS.
package platform

import "time"

// AppName is reported to notification daemons.
const AppName = "playtestshot"

// DefaultTimeout is how long a notification stays visible when Options
// leaves Timeout unset.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed.
type Options struct {
	// IconPath points at an image shown with the notification where the
	// platform supports it.
	IconPath string
	Timeout  time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
