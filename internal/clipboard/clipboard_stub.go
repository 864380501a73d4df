//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || windows)

// Package clipboard copies exported screenshots to, and reads source
// images from, the system clipboard.
package clipboard

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("clipboard operations are not supported on this platform")

// WritePNG is unsupported here.
func WritePNG([]byte) error { return errUnsupported }

// ReadImage is unsupported here.
func ReadImage() (image.Image, error) { return nil, errUnsupported }
