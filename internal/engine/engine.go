package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/shapes2video/internal/analyzer"
	"github.com/ivlev/shapes2video/internal/caption"
	"github.com/ivlev/shapes2video/internal/config"
	"github.com/ivlev/shapes2video/internal/effects"
	"github.com/ivlev/shapes2video/internal/family"
	"github.com/ivlev/shapes2video/internal/metrics"
	"github.com/ivlev/shapes2video/internal/motion"
	"github.com/ivlev/shapes2video/internal/plan"
	"github.com/ivlev/shapes2video/internal/publish"
	"github.com/ivlev/shapes2video/internal/renderer"
	"github.com/ivlev/shapes2video/internal/sampler"
	"github.com/ivlev/shapes2video/internal/shape"
	"github.com/ivlev/shapes2video/internal/speech"
	"github.com/ivlev/shapes2video/internal/system"
	"github.com/ivlev/shapes2video/internal/video"
)

const textsFile = "texts.csv"

// TextsPath is the caption store inside a dataset directory.
func TextsPath(dataPath string) string {
	return filepath.Join(dataPath, textsFile)
}

// Project renders every sample of one plan into a dataset directory.
// Samples are processed strictly one after another.
type Project struct {
	Config  *config.Config
	Plan    *plan.Plan
	Encoder video.VideoEncoder
	Speech  speech.Synthesizer
	Effect  effects.Effect
	Texts   *plan.TextStore
	// Detector, when set, checks frame 0 of every clip for a shape that
	// touches the frame edge or is missing.
	Detector analyzer.Detector
	Mirror   publish.Mirror
	Metrics  *metrics.Metrics

	settings plan.Settings
	captions *caption.Cache
	codec    string
}

// Result is the outcome of one sample. Err holds a recoverable failure;
// fatal errors are returned separately by RenderSample.
type Result struct {
	ID        int
	VideoPath string
	AudioPath string
	Captions  caption.Captions

	VideoSkipped bool
	AudioSkipped bool
	Frames       int

	Err error
}

// Skipped reports whether both artefacts already existed.
func (r Result) Skipped() bool { return r.VideoSkipped && r.AudioSkipped }

type Summary struct {
	Total   int
	Written int
	Skipped int
	Failed  int
	Elapsed time.Duration
}

func NewProject(cfg *config.Config, p *plan.Plan, enc video.VideoEncoder, synth speech.Synthesizer, eff effects.Effect) (*Project, error) {
	st, err := p.Settings()
	if err != nil {
		return nil, err
	}
	if eff == nil {
		eff = effects.None{}
	}

	codec := cfg.VideoEncoder
	if codec == "" {
		codec = system.GetBestH264Encoder()
	}

	return &Project{
		Config:   cfg,
		Plan:     p,
		Encoder:  enc,
		Speech:   synth,
		Effect:   eff,
		Metrics:  metrics.New(),
		settings: st,
		captions: caption.NewCache(),
		codec:    codec,
	}, nil
}

// SetupDirs creates audio/, video/ and an empty texts.csv under dataPath.
// With removeOld the previous contents are deleted first.
func SetupDirs(dataPath string, removeOld bool) error {
	textsPath := TextsPath(dataPath)
	if removeOld {
		for _, p := range []string{filepath.Join(dataPath, "audio"), filepath.Join(dataPath, "video"), textsPath} {
			if err := os.RemoveAll(p); err != nil {
				return fmt.Errorf("clear %s: %w", p, err)
			}
		}
		log.Info().Str("path", dataPath).Msg("[*] Previous outputs removed")
	}

	for _, d := range []string{"audio", "video"} {
		if err := os.MkdirAll(filepath.Join(dataPath, d), 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(textsPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Run renders every plan id in numeric order. Only fatal errors (a defect
// in the plan or configuration) or cancellation stop the run; everything
// else is counted in Summary.Failed.
func (p *Project) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	ids := p.Plan.IDs()
	sum := Summary{Total: len(ids)}

	textsPath := TextsPath(p.Config.DataPath)
	done, err := captionedIDs(textsPath)
	if err != nil {
		return sum, err
	}
	if p.Texts == nil {
		store, err := plan.OpenTextStore(textsPath)
		if err != nil {
			return sum, err
		}
		p.Texts = store
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Str("path", textsPath).Msg("[!] Closing caption store")
			}
			p.Texts = nil
		}()
	}

	relation := p.Plan.Relation
	if p.settings.Single {
		relation = "single"
	}
	log.Info().Msg("--- [PROJECT: SHAPES2VIDEO] ---")
	log.Info().Msgf("[*] Plan seed %d | Samples: %d | Mode: %s | Captions: %s", p.Plan.Seed, len(ids), p.settings.Mode, relation)
	log.Info().Msgf("[*] Canvas: %dx%d @ %d FPS | Codec: %s", renderer.Width, renderer.Height, motion.FPS, p.codec)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}

		res, err := p.RenderSample(ctx, id, p.Plan.Content[id])
		if err != nil {
			sum.Elapsed = time.Since(start)
			return sum, fmt.Errorf("sample %d: %w", id, err)
		}

		switch {
		case res.Err != nil:
			sum.Failed++
			p.Metrics.SamplesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		case res.Skipped():
			sum.Skipped++
			p.Metrics.SamplesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		default:
			sum.Written++
			p.Metrics.SamplesTotal.WithLabelValues(metrics.OutcomeWritten).Inc()
		}

		if !done[id] {
			if err := p.Texts.Append(id, res.Captions.Visual); err != nil {
				sum.Elapsed = time.Since(start)
				return sum, err
			}
			done[id] = true
		}
		log.Info().Msgf("[>] Ready: %d/%d", i+1, len(ids))
	}

	sum.Elapsed = time.Since(start)
	p.report(sum)
	return sum, nil
}

// RenderSample produces the video and audio of one sample, skipping each
// artefact that already exists. A returned error is fatal for the run;
// recoverable failures are reported in Result.Err with partial files removed.
func (p *Project) RenderSample(ctx context.Context, id int, rec plan.Record) (Result, error) {
	res := Result{
		ID:        id,
		VideoPath: plan.VideoPath(p.Config.DataPath, id),
		AudioPath: plan.AudioPath(p.Config.DataPath, id),
	}

	s, err := rec.Parse(id, p.settings.Mode)
	if err != nil {
		return res, err
	}
	fam, err := family.For(s.Kind, p.settings.Mode)
	if err != nil {
		return res, err
	}
	upd, err := fam.Motion(s.Action, s.Dir, s.Speed)
	if err != nil {
		return res, fmt.Errorf("%s %s %s: %w", s.Kind, s.Action, s.Dir, err)
	}

	in := caption.Input{
		Kind: s.Kind, FG: s.FG, BG: s.BG,
		Action: s.Action, Dir: s.Dir, Speed: s.Speed,
		Relation: p.settings.Relation,
	}
	if p.settings.Single {
		res.Captions, err = p.captions.GetSingle(id, in)
	} else {
		res.Captions, err = p.captions.Get(id, in)
	}
	if err != nil {
		return res, err
	}

	logger := log.With().Int("id", id).Str("shape", s.Kind.String()).Str("action", s.Action.String()).Logger()

	if exists(res.VideoPath) {
		res.VideoSkipped = true
	} else {
		g, err := p.geometry(s, fam)
		if err != nil {
			return res, err
		}
		start := time.Now()
		res.Frames, err = p.renderVideo(ctx, s, g, upd, res.VideoPath)
		p.Metrics.EncodeSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			if fatal(ctx, err) {
				return res, err
			}
			p.Metrics.FailuresTotal.WithLabelValues("video").Inc()
			logger.Error().Err(err).Str("path", res.VideoPath).Msg("[!] Video failed, sample skipped")
			res.Err = err
		} else {
			p.mirror(ctx, res.VideoPath)
		}
	}

	if exists(res.AudioPath) {
		res.AudioSkipped = true
	} else if err := p.synthesize(ctx, res.Captions.Spoken, s.Accent, res.AudioPath); err != nil {
		if fatal(ctx, err) {
			return res, err
		}
		p.Metrics.FailuresTotal.WithLabelValues("speech").Inc()
		logger.Error().Err(err).Str("path", res.AudioPath).Msg("[!] Speech failed, sample skipped")
		res.Err = errors.Join(res.Err, err)
	} else {
		p.probeAudio(ctx, logger, res.AudioPath)
		p.mirror(ctx, res.AudioPath)
	}

	return res, nil
}

// geometry returns the planned geometry, or samples one from seed+id for
// plans written without points. The same plan always yields the same shape.
func (p *Project) geometry(s plan.Sample, fam family.Family) (shape.Geometry, error) {
	if s.Geometry != nil {
		return s.Geometry, nil
	}
	rng := rand.New(rand.NewSource(p.Plan.Seed + int64(s.ID)))
	return fam.Sample(sampler.New(rng))
}

func (p *Project) renderVideo(ctx context.Context, s plan.Sample, g shape.Geometry, upd motion.Updater, path string) (int, error) {
	fg, err := s.FG.RGBA()
	if err != nil {
		return 0, err
	}
	bg, err := s.BG.RGBA()
	if err != nil {
		return 0, err
	}

	canvas := renderer.NewCanvas(bg)
	if err := canvas.Add(renderer.Patch{Geometry: g, Fill: fg}); err != nil {
		return 0, err
	}

	n := motion.FrameCount(s.Duration)
	total := max(n, 1)
	emitted := 0

	frames := func(emit func(*image.RGBA) error) error {
		send := func(i int) error {
			img, err := canvas.Frame()
			if err != nil {
				return err
			}
			defer system.PutImage(img)

			if i == 0 {
				p.checkBounds(s.ID, img)
			}
			if err := p.Effect.Apply(img, effects.FrameInfo{ID: s.ID, Index: i, Total: total}); err != nil {
				return err
			}
			if err := emit(img); err != nil {
				return err
			}
			emitted++
			p.Metrics.FramesTotal.Inc()
			return nil
		}

		// Too short for a single frame: the clip still gets its placement
		// frame so the container is valid.
		if n == 0 {
			return send(0)
		}
		_, err := upd.Run(g, n, func(i int, st motion.State) error {
			if err := canvas.SetGeometry(st.Geometry); err != nil {
				return err
			}
			return send(i)
		})
		return err
	}

	params := video.Params{
		Width:   renderer.Width,
		Height:  renderer.Height,
		FPS:     motion.FPS,
		Bitrate: p.Config.Bitrate,
		Codec:   p.codec,
		Quality: p.Config.Quality,
	}
	if err := p.Encoder.Encode(ctx, path, params, frames); err != nil {
		return emitted, err
	}
	return emitted, nil
}

func (p *Project) checkBounds(id int, img *image.RGBA) {
	if p.Detector == nil {
		return
	}
	blocks, err := p.Detector.Detect(img)
	if err != nil {
		log.Warn().Err(err).Int("id", id).Msg("[!] Bounds check failed")
		return
	}
	switch {
	case len(blocks) == 0:
		log.Warn().Int("id", id).Msg("[!] Frame 0 shows no shape")
	case analyzer.TouchesEdge(blocks, img.Bounds()):
		log.Warn().Int("id", id).Msg("[!] Shape touches the frame edge on frame 0")
	}
}

func (p *Project) synthesize(ctx context.Context, text string, accent shape.Accent, path string) error {
	if p.Speech == nil {
		return fmt.Errorf("%w: no speech provider", shape.ErrConfig)
	}

	start := time.Now()
	data, err := p.Speech.Synthesize(ctx, text, accent)
	p.Metrics.SynthSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	if err := speech.Validate(data); err != nil {
		return err
	}
	return speech.SaveFile(path, data)
}

// probeAudio records the spoken length of a new audio file. Probe errors
// never fail the sample.
func (p *Project) probeAudio(ctx context.Context, logger zerolog.Logger, path string) {
	if !p.Config.ProbeAudio {
		return
	}
	d, err := system.GetAudioDuration(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("[!] ffprobe failed")
		return
	}
	p.Metrics.AudioSeconds.Observe(d)
	logger.Debug().Float64("seconds", d).Msg("[*] Audio saved")
}

// mirror uploads a freshly written artefact. Failures are logged only, the
// local dataset stays authoritative.
func (p *Project) mirror(ctx context.Context, path string) {
	if p.Mirror == nil {
		return
	}
	key, err := filepath.Rel(p.Config.DataPath, path)
	if err != nil {
		key = filepath.Base(path)
	}
	if err := p.Mirror.Upload(ctx, path, key); err != nil {
		p.Metrics.FailuresTotal.WithLabelValues("mirror").Inc()
		log.Warn().Err(err).Str("path", path).Msg("[!] Mirror upload failed")
		return
	}
	p.Metrics.MirroredTotal.Inc()
}

func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, shape.ErrConfig) || ctx.Err() != nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func captionedIDs(path string) (map[int]bool, error) {
	rows, err := plan.ReadTexts(path)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(rows))
	for _, r := range rows {
		done[r.ID] = true
	}
	return done, nil
}
