// Package speech turns caption text into mp3 audio through a remote
// text-to-speech service.
package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/h2non/filetype"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Synthesizer produces encoded audio for text spoken with the given accent.
// Implementations treat AccentNone as the service default.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, accent shape.Accent) ([]byte, error)
}

// StatusError is a non-2xx reply from a speech service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech service returned %d: %s", e.Code, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

var ErrNotAudio = errors.New("speech: response is not audio")

// mpegAudio is a bare MPEG audio stream without an ID3 tag. The stock mp3
// matcher only knows the ID3 and MPEG-1 Layer III (FF FB) headers, while
// both speech services answer with MPEG-2 frames (FF F3).
var mpegAudio = filetype.AddType("mpa", "audio/mpeg")

func init() {
	filetype.AddMatcher(mpegAudio, isMPEGFrame)
}

// isMPEGFrame checks the 11-bit frame sync plus a defined version, layer
// and bitrate index.
func isMPEGFrame(b []byte) bool {
	if len(b) < 3 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return false
	}
	version := (b[1] >> 3) & 0x03
	layer := (b[1] >> 1) & 0x03
	bitrate := b[2] >> 4
	return version != 0x01 && layer != 0x00 && bitrate != 0x0F
}

// Validate sniffs data and rejects anything that is not an audio container,
// such as an HTML captcha page served with a 200.
func Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", ErrNotAudio)
	}
	if filetype.IsAudio(data) {
		return nil
	}
	kind, _ := filetype.Match(data)
	if kind == mpegAudio {
		return nil
	}
	return fmt.Errorf("%w: detected %q", ErrNotAudio, kind.MIME.Value)
}

// SaveFile writes data to path. A partially written file is removed.
func SaveFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		os.Remove(path)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Options configures New.
type Options struct {
	// Endpoint overrides the service base URL.
	Endpoint        string
	CredentialsFile string
	Timeout         time.Duration
	// RequestsPerSecond and Retries wrap the provider in Limited when > 0.
	RequestsPerSecond float64
	Retries           int
	Backoff           time.Duration
	HTTPClient        *http.Client
}

// New builds the named provider: "translate" (default) or "cloud".
func New(ctx context.Context, provider string, opts Options) (Synthesizer, error) {
	var s Synthesizer
	switch provider {
	case "", "translate":
		s = NewTranslate(opts)
	case "cloud":
		c, err := NewCloud(ctx, opts)
		if err != nil {
			return nil, err
		}
		s = c
	default:
		return nil, fmt.Errorf("%w: unknown speech provider %q", shape.ErrConfig, provider)
	}

	if opts.RequestsPerSecond > 0 || opts.Retries > 0 {
		s = NewLimited(s, opts.RequestsPerSecond, opts.Retries, opts.Backoff)
	}
	return s, nil
}
