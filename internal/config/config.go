package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Watch       WatchConfig       `yaml:"watch"`
	Audio       AudioConfig       `yaml:"audio"`
	Engine      EngineConfig      `yaml:"engine"`
	Database    DatabaseConfig    `yaml:"database"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	UploadLimitMB   int           `yaml:"upload_limit_mb"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type WatchConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Dir        string        `yaml:"dir"`
	Interval   time.Duration `yaml:"interval"`
	Extensions []string      `yaml:"extensions"`
	Settle     time.Duration `yaml:"settle"`
	Notify     bool          `yaml:"notify"`
}

type AudioConfig struct {
	TargetSampleRate int           `yaml:"target_sample_rate"`
	MaxChunkSeconds  int           `yaml:"max_chunk_seconds"`
	MaxDuration      time.Duration `yaml:"max_duration"` // negative disables the limit
	Timeout          time.Duration `yaml:"timeout"`      // per-input normalize deadline
	FFmpeg           FFmpegConfig  `yaml:"ffmpeg"`
}

type FFmpegConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BinaryPath string `yaml:"binary_path"`
}

type EngineConfig struct {
	Backend          string        `yaml:"backend"` // "whisper" or "ctc"
	Timeout          time.Duration `yaml:"timeout"`
	SilenceThreshold float64       `yaml:"silence_threshold"`
	Whisper          WhisperConfig `yaml:"whisper"`
	CTC              CTCConfig     `yaml:"ctc"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type CTCConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	VocabPath string   `yaml:"vocab_path"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite", "postgres" or "memory"
	DSN    string `yaml:"dsn"`
}

type GeminiConfig struct {
	Model   string        `yaml:"model"`
	APIKeys []string      `yaml:"api_keys"`
	Timeout time.Duration `yaml:"timeout"`
}

type PathsConfig struct {
	Temp string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Load reads a YAML config file, applies environment overrides and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadEnvFiles loads KEY=value files into the process environment.
// Missing files are ignored; variables already set are left untouched.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if len(c.Gemini.APIKeys) > 0 {
		return
	}
	raw := os.Getenv("GEMINI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("GEMINI_API_KEY")
	}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			c.Gemini.APIKeys = append(c.Gemini.APIKeys, k)
		}
	}
}

func (c *Config) Validate() error {
	if c.Engine.Backend == "" {
		c.Engine.Backend = "whisper"
	}
	switch c.Engine.Backend {
	case "whisper":
		if c.Engine.Whisper.ModelPath == "" {
			return fmt.Errorf("engine.whisper.model_path is required")
		}
		if c.Engine.Whisper.BinaryPath == "" {
			return fmt.Errorf("engine.whisper.binary_path is required")
		}
	case "ctc":
		if c.Engine.CTC.Command == "" {
			return fmt.Errorf("engine.ctc.command is required")
		}
		if c.Engine.CTC.VocabPath == "" {
			return fmt.Errorf("engine.ctc.vocab_path is required")
		}
	default:
		return fmt.Errorf("engine.backend must be \"whisper\" or \"ctc\", got %q", c.Engine.Backend)
	}
	if c.Watch.Enabled && c.Watch.Dir == "" {
		return fmt.Errorf("watch.dir is required when watch.enabled is set")
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or memory, got %q", c.Database.Driver)
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		if c.Database.Driver == "postgres" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
		c.Database.DSN = "data/transcripts.db"
	}

	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.UploadLimitMB == 0 {
		c.Server.UploadLimitMB = 25
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 5 * time.Second
	}
	if c.Watch.Settle == 0 {
		c.Watch.Settle = 2 * time.Second
	} else if c.Watch.Settle < 0 {
		c.Watch.Settle = 0
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{".wav"}
	}
	if c.Audio.TargetSampleRate == 0 {
		c.Audio.TargetSampleRate = 16000
	}
	if c.Audio.MaxChunkSeconds == 0 {
		c.Audio.MaxChunkSeconds = 30
	}
	if c.Audio.MaxDuration == 0 {
		c.Audio.MaxDuration = 30 * time.Minute
	} else if c.Audio.MaxDuration < 0 {
		c.Audio.MaxDuration = 0
	}
	if c.Audio.Timeout == 0 {
		c.Audio.Timeout = 2 * time.Minute
	}
	if c.Audio.FFmpeg.BinaryPath == "" {
		c.Audio.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = 2 * time.Minute
	}
	if c.Engine.SilenceThreshold == 0 {
		c.Engine.SilenceThreshold = 1e-4
	}
	if c.Engine.Whisper.Language == "" {
		c.Engine.Whisper.Language = "en"
	}
	if c.Engine.Whisper.Threads == 0 {
		c.Engine.Whisper.Threads = 4
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 60 * time.Second
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = os.TempDir()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
