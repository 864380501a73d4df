// Package source resolves the image reference a host opens an annotation
// session with.
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/playtestshot/internal/apperr"
)

// DefaultMaxBytes bounds how much encoded data a single source may supply.
const DefaultMaxBytes = 32 << 20

// DefaultMaxPixels bounds the decoded width times height of a source.
const DefaultMaxPixels = 50_000_000

// ClipboardRef selects the system clipboard as the source.
const ClipboardRef = "clipboard:"

// ClipboardReader returns the image currently on the clipboard.
type ClipboardReader func() (image.Image, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithMaxBytes limits the encoded size of a source.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		r.maxBytes = n
	}
}

// WithMaxPixels limits the decoded area of a source.
func WithMaxPixels(n int64) Option {
	return func(r *Resolver) {
		r.maxPixels = n
	}
}

// WithClipboard enables the clipboard: reference.
func WithClipboard(read ClipboardReader) Option {
	return func(r *Resolver) {
		r.clipboard = read
	}
}

// WithFiles allows plain paths and file URLs.
func WithFiles(enabled bool) Option {
	return func(r *Resolver) {
		r.files = enabled
	}
}

// Resolver decodes data URIs, http(s) URLs, local files and the clipboard.
type Resolver struct {
	client    *http.Client
	maxBytes  int64
	maxPixels int64
	clipboard ClipboardReader
	files     bool
}

// New creates a Resolver. Local files are allowed by default.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client:    &http.Client{Timeout: 30 * time.Second},
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
		files:     true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches and decodes ref. Every failure wraps apperr.ErrLoadFailure.
func (r *Resolver) Resolve(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty source", apperr.ErrLoadFailure)
	}
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = r.fetch(ctx, ref)
	case ref == ClipboardRef:
		if r.clipboard == nil {
			return nil, fmt.Errorf("%w: clipboard sources are disabled", apperr.ErrLoadFailure)
		}
		img, cerr := r.clipboard()
		if cerr != nil {
			return nil, fmt.Errorf("%w: clipboard: %v", apperr.ErrLoadFailure, cerr)
		}
		b := img.Bounds()
		if err := r.checkArea(b.Dx(), b.Dy()); err != nil {
			return nil, fmt.Errorf("%w: clipboard: %v", apperr.ErrLoadFailure, err)
		}
		return img, nil
	default:
		data, err = r.readFile(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrLoadFailure, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperr.ErrLoadFailure, err)
	}
	if err := r.checkArea(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrLoadFailure, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperr.ErrLoadFailure, err)
	}
	return img, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", ref, resp.Status)
	}
	return r.readLimited(resp.Body)
}

func (r *Resolver) readFile(ref string) ([]byte, error) {
	if !r.files {
		return nil, fmt.Errorf("unsupported source %q", ref)
	}
	path := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, err
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.readLimited(f)
}

func (r *Resolver) readLimited(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, r.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", r.maxBytes)
	}
	return data, nil
}

func (r *Resolver) checkArea(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", w, h)
	}
	if r.maxPixels > 0 && int64(w)*int64(h) > r.maxPixels {
		return fmt.Errorf("image %dx%d exceeds %d pixels", w, h, r.maxPixels)
	}
	return nil
}

// decodeDataURI returns the payload of a data: URI.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(data), nil
}
