// Package metrics counts what a render run did. Runs are batch jobs, so the
// registry is written to a node-exporter textfile or pushed to a Pushgateway
// at the end instead of being scraped.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "shapes2video"

// Outcome labels of SamplesTotal.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	SamplesTotal  *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	FramesTotal   prometheus.Counter
	SynthSeconds  prometheus.Histogram
	EncodeSeconds prometheus.Histogram
	AudioSeconds  prometheus.Histogram
	MirroredTotal prometheus.Counter
}

// New registers every metric on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SamplesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapes2video_samples_total",
			Help: "Samples processed, partitioned by outcome.",
		}, []string{"outcome"}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapes2video_failures_total",
			Help: "Recoverable per-sample failures, partitioned by stage.",
		}, []string{"stage"}),
		FramesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "shapes2video_frames_rendered_total",
			Help: "Frames rasterised and handed to the encoder.",
		}),
		SynthSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shapes2video_speech_seconds",
			Help:    "Wall time of one speech synthesis request.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		EncodeSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shapes2video_encode_seconds",
			Help:    "Wall time of rendering and encoding one clip.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		AudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shapes2video_audio_seconds",
			Help:    "Duration of the synthesised caption audio, when probed.",
			Buckets: prometheus.LinearBuckets(1, 0.5, 10),
		}),
		MirroredTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "shapes2video_mirrored_objects_total",
			Help: "Artefacts copied to the bucket mirror.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile stores the registry in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under the run's instance label.
func (m *Metrics) Push(ctx context.Context, url, instance string) error {
	err := push.New(url, jobName).
		Gatherer(m.registry).
		Grouping("instance", instance).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
