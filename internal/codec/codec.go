// Package codec holds the format registry and the conversion pipeline.
// Concrete codecs register themselves from init, the way image/png and
// friends do; callers blank-import the codec packages they want.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/davesmith10/pixelcodec/internal/pixel"
)

// DecodeOptions configures a decode run.
type DecodeOptions struct {
	Workers  int
	Strict   bool // truncated input fails instead of warning
	Progress func(completed, total int) bool
}

// DecodeResult is a decoded frame plus the non-fatal conditions hit
// while reading it.
type DecodeResult struct {
	Image    *pixel.Image
	Warnings []error
}

// EncodeOptions configures an encode run.
type EncodeOptions struct {
	Depth       int    // bits per sample; 0 keeps the codec's natural choice
	Compression string // codec-specific scheme name; "" for the default
	Workers     int
	Progress    func(completed, total int) bool
}

// Format describes one registered codec. Decode is nil for write-only
// formats and Encode for read-only ones.
type Format struct {
	Name       string
	Extensions []string
	Sniff      func(data []byte) bool
	Decode     func(data []byte, opts DecodeOptions) (*DecodeResult, error)
	Encode     func(img *pixel.Image, opts EncodeOptions) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   []*Format
)

// Register adds a format. Meant to be called from codec package init
// functions.
func Register(f *Format) {
	registryMu.Lock()
	registry = append(registry, f)
	registryMu.Unlock()
}

// Detect sniffs the leading bytes of data and returns the matching
// decodable format.
func Detect(data []byte) (*Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, f := range registry {
		if f.Decode != nil && f.Sniff != nil && f.Sniff(data) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unrecognized image format")
}

// ByName returns the format registered under name, case-insensitively.
func ByName(name string) (*Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, f := range registry {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

// ForPath picks a format from a file name's extension.
func ForPath(path string) (*Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, fmt.Errorf("no file extension on %q", path)
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, f := range registry {
		for _, e := range f.Extensions {
			if e == ext {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("no format registered for extension %q", ext)
}
