package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Config is the full runtime configuration. Values come from, in order of
// precedence: command-line flags, S2V_* environment variables (a .env file
// is loaded first), an optional YAML file, then the defaults below.
type Config struct {
	DataPath  string `yaml:"data_path" env:"S2V_DATA_PATH" env-default:"data"`
	PlanPath  string `yaml:"plan_path" env:"S2V_PLAN_PATH"`
	PlanDir   string `yaml:"plan_dir" env:"S2V_PLAN_DIR" env-default:"data/plans"`
	RemoveOld bool   `yaml:"remove_old" env:"S2V_REMOVE_OLD" env-default:"false"`

	// Generation
	Seed     int64  `yaml:"seed" env:"S2V_SEED" env-default:"42"`
	Mode     string `yaml:"mode" env:"S2V_MODE" env-default:"regular"`
	Relation string `yaml:"relation" env:"S2V_RELATION"`
	Limit    int    `yaml:"limit" env:"S2V_LIMIT" env-default:"0"`
	Deferred bool   `yaml:"deferred" env:"S2V_DEFERRED" env-default:"false"`

	// Video
	Bitrate      int    `yaml:"bitrate" env:"S2V_BITRATE" env-default:"1800"`
	VideoEncoder string `yaml:"video_encoder" env:"S2V_VIDEO_ENCODER"`
	Quality      int    `yaml:"quality" env:"S2V_QUALITY" env-default:"0"`
	Effect       string `yaml:"effect" env:"S2V_EFFECT" env-default:"none"`
	CheckBounds  bool   `yaml:"check_bounds" env:"S2V_CHECK_BOUNDS" env-default:"false"`
	ProbeAudio   bool   `yaml:"probe_audio" env:"S2V_PROBE_AUDIO" env-default:"false"`

	Speech SpeechConfig `yaml:"speech"`
	Mirror MirrorConfig `yaml:"mirror"`

	// Observability
	LogLevel       string `yaml:"log_level" env:"S2V_LOG_LEVEL" env-default:"info"`
	LogConsole     bool   `yaml:"log_console" env:"S2V_LOG_CONSOLE" env-default:"true"`
	ShowStats      bool   `yaml:"show_stats" env:"S2V_SHOW_STATS" env-default:"false"`
	BenchmarkLog   string `yaml:"benchmark_log" env:"S2V_BENCHMARK_LOG" env-default:"benchmark.log"`
	MetricsFile    string `yaml:"metrics_file" env:"S2V_METRICS_FILE"`
	PushGatewayURL string `yaml:"pushgateway_url" env:"S2V_PUSHGATEWAY_URL"`

	// Split
	TestRatio float64 `yaml:"test_ratio" env:"S2V_TEST_RATIO" env-default:"0.2"`
	SplitSeed int64   `yaml:"split_seed" env:"S2V_SPLIT_SEED" env-default:"0"`

	BuildVersion string `yaml:"-"`
}

type SpeechConfig struct {
	Provider          string        `yaml:"provider" env:"S2V_SPEECH_PROVIDER" env-default:"translate"`
	Endpoint          string        `yaml:"endpoint" env:"S2V_SPEECH_ENDPOINT"`
	CredentialsFile   string        `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Timeout           time.Duration `yaml:"timeout" env:"S2V_SPEECH_TIMEOUT" env-default:"30s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"S2V_SPEECH_RPS" env-default:"2"`
	Retries           int           `yaml:"retries" env:"S2V_SPEECH_RETRIES" env-default:"2"`
	Backoff           time.Duration `yaml:"backoff" env:"S2V_SPEECH_BACKOFF" env-default:"2s"`
}

// MirrorConfig enables copying finished artefacts to a GCS bucket.
type MirrorConfig struct {
	Bucket          string `yaml:"bucket" env:"S2V_MIRROR_BUCKET"`
	Prefix          string `yaml:"prefix" env:"S2V_MIRROR_PREFIX"`
	CredentialsFile string `yaml:"credentials_file" env:"S2V_MIRROR_CREDENTIALS"`
}

// Load reads path (YAML) when given, otherwise the environment alone.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shape.ErrConfig, err)
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise only fail deep inside a run.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("%w: data path is empty", shape.ErrConfig)
	}
	if _, err := shape.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Relation != "" {
		if _, err := shape.ParseRelation(c.Relation); err != nil {
			return err
		}
	}
	if c.Bitrate <= 0 && c.Quality <= 0 {
		return fmt.Errorf("%w: either bitrate or quality must be positive", shape.ErrConfig)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", shape.ErrConfig)
	}
	if c.TestRatio < 0 || c.TestRatio >= 1 {
		return fmt.Errorf("%w: test ratio %v outside [0, 1)", shape.ErrConfig, c.TestRatio)
	}
	if c.Speech.Retries < 0 {
		return fmt.Errorf("%w: speech retries must not be negative", shape.ErrConfig)
	}
	return nil
}
