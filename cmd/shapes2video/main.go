package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/shapes2video/internal/analyzer"
	"github.com/ivlev/shapes2video/internal/config"
	"github.com/ivlev/shapes2video/internal/effects"
	"github.com/ivlev/shapes2video/internal/engine"
	"github.com/ivlev/shapes2video/internal/logging"
	"github.com/ivlev/shapes2video/internal/plan"
	"github.com/ivlev/shapes2video/internal/publish"
	"github.com/ivlev/shapes2video/internal/shape"
	"github.com/ivlev/shapes2video/internal/speech"
	"github.com/ivlev/shapes2video/internal/system"
	"github.com/ivlev/shapes2video/internal/video"
)

// buildVersion is set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

const usage = `Usage: shapes2video <command> [flags]

Commands:
  plan     generate a sample plan
  render   render videos, audio and captions for a plan
  failed   list plan ids without audio into failed_ids.json
  split    write train/test id lists for the captioned samples

Run "shapes2video <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "plan":
		err = runPlan(args)
	case "render":
		err = runRender(ctx, args)
	case "failed":
		err = runFailed(args)
	case "split":
		err = runSplit(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "[-] Unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, shape.ErrConfig) {
			log.Error().Err(err).Msg("[-] Configuration error, run aborted")
		} else {
			log.Error().Err(err).Msg("[-] Error")
		}
		stop()
		os.Exit(1)
	}
}

// setup parses args, loads the configuration and installs the logger.
func setup(fs *flag.FlagSet, o *overrides, args []string) (*config.Config, error) {
	configPath := fs.String("config", os.Getenv("S2V_CONFIG"), "YAML config file (optional)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		return nil, fmt.Errorf("%w: %v", shape.ErrConfig, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	o.Apply(cfg)
	cfg.BuildVersion = buildVersion

	logging.Setup(cfg.LogLevel, cfg.LogConsole)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	o := newOverrides(fs)
	commonFlags(o)
	o.Int64("seed", "Random seed for geometry, durations and accents", func(c *config.Config) *int64 { return &c.Seed })
	o.String("mode", "Shape set: regular or legacy", func(c *config.Config) *string { return &c.Mode })
	o.String("relation", "Caption relation: disjoint, overlap, subset, same (empty: single caption)", func(c *config.Config) *string { return &c.Relation })
	o.Int("limit", "Keep a random subset of this many samples (0: all)", func(c *config.Config) *int { return &c.Limit })
	o.Bool("deferred", "Leave geometry out of the plan and sample it at render time", func(c *config.Config) *bool { return &c.Deferred })
	out := fs.String("out", "", "Output plan path, .json or .yaml (default: timestamped file in -plan-dir)")

	cfg, err := setup(fs, o, args)
	if err != nil {
		return err
	}

	mode, err := shape.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	p, err := plan.Generate(plan.Options{
		Seed:     cfg.Seed,
		Mode:     mode,
		Relation: cfg.Relation,
		Limit:    cfg.Limit,
		Deferred: cfg.Deferred,
	})
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = plan.GeneratePlanPath(cfg.PlanDir)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := plan.Write(p, path); err != nil {
		return err
	}

	log.Info().Int("samples", len(p.Content)).Msgf("[+++] Success! Plan saved: %s", path)
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	o := newOverrides(fs)
	commonFlags(o)
	o.Bool("remove-old", "Delete previous audio/, video/ and texts.csv first", func(c *config.Config) *bool { return &c.RemoveOld })
	o.Int("bitrate", "Video bitrate in kbit/s", func(c *config.Config) *int { return &c.Bitrate })
	o.Int("quality", "Encoder quality instead of bitrate (x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)", func(c *config.Config) *int { return &c.Quality })
	o.String("encoder", "ffmpeg H.264 encoder (default: best available)", func(c *config.Config) *string { return &c.VideoEncoder })
	o.String("effect", "Frame effect: none or debug", func(c *config.Config) *string { return &c.Effect })
	o.Bool("check-bounds", "Warn when frame 0 shows no shape or touches the edge", func(c *config.Config) *bool { return &c.CheckBounds })
	o.Bool("probe-audio", "Measure every new audio file with ffprobe", func(c *config.Config) *bool { return &c.ProbeAudio })
	o.String("speech", "Speech provider: translate or cloud", func(c *config.Config) *string { return &c.Speech.Provider })
	o.String("speech-endpoint", "Override the speech service URL", func(c *config.Config) *string { return &c.Speech.Endpoint })
	o.Float64("speech-rps", "Speech requests per second (0: unlimited)", func(c *config.Config) *float64 { return &c.Speech.RequestsPerSecond })
	o.Int("speech-retries", "Retries for temporary speech errors", func(c *config.Config) *int { return &c.Speech.Retries })
	o.String("mirror-bucket", "Copy finished artefacts to this GCS bucket", func(c *config.Config) *string { return &c.Mirror.Bucket })
	o.String("mirror-prefix", "Object prefix inside the mirror bucket", func(c *config.Config) *string { return &c.Mirror.Prefix })
	o.Bool("stats", "Print the performance report and append it to the benchmark log", func(c *config.Config) *bool { return &c.ShowStats })
	o.String("metrics-file", "Write Prometheus metrics to this file at the end of the run", func(c *config.Config) *string { return &c.MetricsFile })
	o.String("pushgateway", "Push metrics to this Pushgateway URL", func(c *config.Config) *string { return &c.PushGatewayURL })

	cfg, err := setup(fs, o, args)
	if err != nil {
		return err
	}
	system.InitResourceLimits()
	runID := uuid.NewString()

	p, planPath, err := loadPlan(cfg)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	log.Info().Str("run", runID).Msgf("[*] Using plan: %s", planPath)

	if err := engine.SetupDirs(cfg.DataPath, cfg.RemoveOld); err != nil {
		return err
	}

	synth, err := speech.New(ctx, cfg.Speech.Provider, speech.Options{
		Endpoint:          cfg.Speech.Endpoint,
		CredentialsFile:   cfg.Speech.CredentialsFile,
		Timeout:           cfg.Speech.Timeout,
		RequestsPerSecond: cfg.Speech.RequestsPerSecond,
		Retries:           cfg.Speech.Retries,
		Backoff:           cfg.Speech.Backoff,
	})
	if err != nil {
		return err
	}
	eff, err := effects.NewEffect(cfg.Effect)
	if err != nil {
		return err
	}

	project, err := engine.NewProject(cfg, p, &video.FFmpegEncoder{}, synth, eff)
	if err != nil {
		return err
	}
	if cfg.CheckBounds {
		if project.Detector, err = analyzer.NewDetector("foreground"); err != nil {
			return err
		}
	}
	if cfg.Mirror.Bucket != "" {
		m, err := publish.NewGCS(ctx, cfg.Mirror.Bucket, cfg.Mirror.Prefix, cfg.Mirror.CredentialsFile)
		if err != nil {
			return err
		}
		defer m.Close()
		project.Mirror = m
	}

	sum, runErr := project.Run(ctx)
	exportMetrics(cfg, project, runID)
	if runErr != nil {
		return runErr
	}

	if sum.Failed > 0 {
		log.Warn().Int("failed", sum.Failed).Msg("[!] Some samples failed; rerun to retry them or use the failed command to list them")
	}
	log.Info().Msgf("[+++] Success! Dataset: %s", cfg.DataPath)
	return nil
}

func exportMetrics(cfg *config.Config, project *engine.Project, runID string) {
	if cfg.MetricsFile != "" {
		if err := project.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Msg("[!] Metrics file not written")
		}
	}
	if cfg.PushGatewayURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := project.Metrics.Push(ctx, cfg.PushGatewayURL, runID); err != nil {
			log.Warn().Err(err).Msg("[!] Metrics push failed")
		}
	}
}

func runFailed(args []string) error {
	fs := flag.NewFlagSet("failed", flag.ContinueOnError)
	o := newOverrides(fs)
	commonFlags(o)

	cfg, err := setup(fs, o, args)
	if err != nil {
		return err
	}
	p, _, err := loadPlan(cfg)
	if err != nil {
		return err
	}

	failed, err := plan.FailedIDs(p, cfg.DataPath)
	if err != nil {
		return err
	}
	out := filepath.Join(cfg.DataPath, "failed_ids.json")
	if failed == nil {
		failed = []int{}
	}
	if err := plan.WriteJSON(out, failed); err != nil {
		return err
	}
	log.Info().Int("failed", len(failed)).Msgf("[+++] Failed ids saved: %s", out)
	return nil
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	o := newOverrides(fs)
	commonFlags(o)
	o.Float64("test-ratio", "Share of captioned samples in the test set", func(c *config.Config) *float64 { return &c.TestRatio })
	o.Int64("split-seed", "Shuffle seed for the split", func(c *config.Config) *int64 { return &c.SplitSeed })

	cfg, err := setup(fs, o, args)
	if err != nil {
		return err
	}

	rows, err := plan.ReadTexts(engine.TextsPath(cfg.DataPath))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: no captioned samples in %s", shape.ErrConfig, cfg.DataPath)
	}
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	train, test, err := plan.Split(ids, cfg.SplitSeed, cfg.TestRatio)
	if err != nil {
		return err
	}
	for name, v := range map[string][]int{"train_ids.json": train, "test_ids.json": test} {
		if err := plan.WriteJSON(filepath.Join(cfg.DataPath, name), v); err != nil {
			return err
		}
	}
	log.Info().Int("train", len(train)).Int("test", len(test)).Msg("[+++] Split saved")
	return nil
}

func loadPlan(cfg *config.Config) (*plan.Plan, string, error) {
	path := cfg.PlanPath
	if path == "" {
		latest, err := plan.FindLatestPlan(cfg.PlanDir)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v; generate one with the plan command", shape.ErrConfig, err)
		}
		path = latest
	}
	p, err := plan.Read(path)
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}
