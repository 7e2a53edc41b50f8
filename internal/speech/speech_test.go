package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/shapes2video/internal/shape"
)

// fakeMP3 carries an ID3 header, enough for sniffing.
var fakeMP3 = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x0f"), make([]byte, 64)...)

func TestTLDAndLanguageCode(t *testing.T) {
	assert.Equal(t, "com.au", TLD(shape.AccentAU))
	assert.Equal(t, "ca", TLD(shape.AccentCA))
	assert.Equal(t, "co.in", TLD(shape.AccentIND))
	assert.Equal(t, "co.uk", TLD(shape.AccentUK))
	assert.Equal(t, "com", TLD(shape.AccentNone))

	assert.Equal(t, "en-GB", LanguageCode(shape.AccentUK))
	assert.Equal(t, "en-US", LanguageCode(shape.AccentCA))
}

func TestTranslateURL(t *testing.T) {
	tr := NewTranslate(Options{})
	u := tr.URL("A red square.", 0, 1, shape.AccentIND)
	assert.True(t, strings.HasPrefix(u, "https://translate.google.co.in/translate_tts?"), u)
	assert.Contains(t, u, "q=A+red+square.")
	assert.Contains(t, u, "client=tw-ob")
	assert.Contains(t, u, "tl=en")
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"a bb", "ccc"}, Chunk("a bb ccc", 4))
	assert.Equal(t, []string{"abcd", "ef g"}, Chunk("abcdef g", 4))
	assert.Empty(t, Chunk("   ", 10))

	long := strings.Repeat("word ", 50)
	for _, c := range Chunk(long, maxChunk) {
		assert.LessOrEqual(t, len(c), maxChunk)
	}
}

func TestTranslateSynthesize(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		seen = append(seen, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(fakeMP3)
	}))
	defer srv.Close()

	tr := NewTranslate(Options{Endpoint: srv.URL, HTTPClient: srv.Client()})
	text := strings.Repeat("A magenta pentagon is rotating. ", 5)
	data, err := tr.Synthesize(context.Background(), text, shape.AccentUK)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Len(t, data, 2*len(fakeMP3))
	assert.NoError(t, Validate(data))
}

func TestTranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := NewTranslate(Options{Endpoint: srv.URL, HTTPClient: srv.Client()})
	_, err := tr.Synthesize(context.Background(), "hello", shape.AccentNone)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, se.Temporary())

	_, err = tr.Synthesize(context.Background(), "", shape.AccentNone)
	assert.ErrorIs(t, err, shape.ErrConfig)
}

func TestCloudSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Input struct{ Text string }
			Voice struct{ LanguageCode string }
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "A red square.", req.Input.Text)
		assert.Equal(t, "en-AU", req.Voice.LanguageCode)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"audioContent": base64.StdEncoding.EncodeToString(fakeMP3)})
	}))
	defer srv.Close()

	c, err := NewCloud(context.Background(), Options{Endpoint: srv.URL + "/", HTTPClient: srv.Client()})
	require.NoError(t, err)

	data, err := c.Synthesize(context.Background(), "A red square.", shape.AccentAU)
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, data)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(fakeMP3))
	assert.ErrorIs(t, Validate(nil), ErrNotAudio)
	assert.ErrorIs(t, Validate([]byte("<html><body>captcha</body></html>")), ErrNotAudio)
}

func TestValidateBareMPEGFrames(t *testing.T) {
	frame := func(hdr ...byte) []byte { return append(hdr, make([]byte, 64)...) }

	for name, data := range map[string][]byte{
		"mpeg2 layer3":     frame(0xFF, 0xF3, 0x64, 0xC4),
		"mpeg2 layer3 crc": frame(0xFF, 0xF2, 0x64, 0xC4),
		"mpeg1 layer3 crc": frame(0xFF, 0xFA, 0x90, 0x64),
		"mpeg1 layer3":     frame(0xFF, 0xFB, 0x90, 0x64),
		"mpeg2.5 layer3":   frame(0xFF, 0xE3, 0x48, 0xC4),
	} {
		assert.NoError(t, Validate(data), name)
	}

	for name, data := range map[string][]byte{
		"reserved version": frame(0xFF, 0xEB, 0x90, 0x64),
		"reserved layer":   frame(0xFF, 0xF8, 0x90, 0x64),
		"bad bitrate":      frame(0xFF, 0xF3, 0xF4, 0xC4),
		"no sync":          frame(0xFF, 0x13, 0x64, 0xC4),
	} {
		assert.ErrorIs(t, Validate(data), ErrNotAudio, name)
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "100000.mp3")
	require.NoError(t, SaveFile(p, fakeMP3))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, got)

	assert.Error(t, SaveFile(filepath.Join(dir, "missing", "x.mp3"), fakeMP3))
}

type flaky struct {
	calls atomic.Int32
	fails int32
	err   error
}

func (f *flaky) Synthesize(context.Context, string, shape.Accent) ([]byte, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, f.err
	}
	return fakeMP3, nil
}

func TestLimitedRetriesTemporary(t *testing.T) {
	f := &flaky{fails: 2, err: &StatusError{Code: 503}}
	l := NewLimited(f, 0, 2, time.Millisecond)

	data, err := l.Synthesize(context.Background(), "hi", shape.AccentNone)
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, data)
	assert.EqualValues(t, 3, f.calls.Load())
}

func TestLimitedGivesUp(t *testing.T) {
	f := &flaky{fails: 10, err: errors.New("connection reset")}
	l := NewLimited(f, 1000, 1, time.Millisecond)
	_, err := l.Synthesize(context.Background(), "hi", shape.AccentNone)
	assert.EqualError(t, err, "connection reset")
	assert.EqualValues(t, 2, f.calls.Load())

	perm := &flaky{fails: 10, err: &StatusError{Code: 400}}
	l = NewLimited(perm, 0, 3, time.Millisecond)
	_, err = l.Synthesize(context.Background(), "hi", shape.AccentNone)
	assert.Error(t, err)
	assert.EqualValues(t, 1, perm.calls.Load())
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), "", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Translate{}, s)

	s, err = New(context.Background(), "translate", Options{Retries: 2})
	require.NoError(t, err)
	assert.IsType(t, &Limited{}, s)

	_, err = New(context.Background(), "espeak", Options{})
	assert.ErrorIs(t, err, shape.ErrConfig)
}
