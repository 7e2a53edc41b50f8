package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ivlev/shapes2video/internal/shape"
)

// maxChunk is the longest text the translate endpoint accepts in one request.
const maxChunk = 100

// TLD selects the regional translate host that yields an accent.
func TLD(a shape.Accent) string {
	switch a {
	case shape.AccentAU:
		return "com.au"
	case shape.AccentCA:
		return "ca"
	case shape.AccentIND:
		return "co.in"
	case shape.AccentUK:
		return "co.uk"
	}
	return "com"
}

// Translate speaks through the public translate_tts endpoint, the same one
// gTTS-style clients use. It needs no credentials.
type Translate struct {
	Endpoint string
	Lang     string
	Client   *http.Client
}

func NewTranslate(opts Options) *Translate {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Translate{Endpoint: opts.Endpoint, Lang: "en", Client: client}
}

// URL builds the request URL of one chunk.
func (t *Translate) URL(chunk string, idx, total int, accent shape.Accent) string {
	base := t.Endpoint
	if base == "" {
		base = "https://translate.google." + TLD(accent)
	}
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", t.Lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len(chunk)))
	return strings.TrimSuffix(base, "/") + "/translate_tts?" + q.Encode()
}

func (t *Translate) Synthesize(ctx context.Context, text string, accent shape.Accent) ([]byte, error) {
	chunks := Chunk(text, maxChunk)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing to speak", shape.ErrConfig)
	}

	var out bytes.Buffer
	for i, c := range chunks {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL(c, i, len(chunks), accent), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Referer", "http://translate.google.com/")

		resp, err := t.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("translate tts chunk %d: %w", i, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("translate tts chunk %d: %w", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Code: resp.StatusCode, Body: string(truncate(body, 200))}
		}
		// mp3 frames concatenate cleanly
		out.Write(body)
	}
	return out.Bytes(), nil
}

// Chunk splits text on spaces into pieces of at most n bytes. A single word
// longer than n is cut.
func Chunk(text string, n int) []string {
	var chunks []string
	var cur strings.Builder
	for _, w := range strings.Fields(text) {
		for len(w) > n {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			chunks = append(chunks, w[:n])
			w = w[n:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(w) > n {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
