package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndTextfile(t *testing.T) {
	m := New()
	m.SamplesTotal.WithLabelValues(OutcomeWritten).Add(4)
	m.SamplesTotal.WithLabelValues(OutcomeFailed).Inc()
	m.FramesTotal.Add(120)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.SamplesTotal.WithLabelValues(OutcomeWritten)))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.FramesTotal))

	path := filepath.Join(t.TempDir(), "shapes2video.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shapes2video_samples_total{outcome="failed"} 1`)
	assert.Contains(t, string(data), "shapes2video_frames_rendered_total 120")
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.MirroredTotal.Inc()
	require.NoError(t, m.Push(context.Background(), srv.URL, "run-1"))
	assert.True(t, strings.HasPrefix(gotPath, "/metrics/job/shapes2video/instance/run-1"), gotPath)
	assert.NotEmpty(t, gotBody)
}
