// Package config holds the server configuration. It is read from an
// optional YAML file and then overridden from STT_* environment variables.
package config

import (
	"fmt"
	"slices"
	"time"
)

const (
	DefaultListenAddr = ":8081"
	DefaultLanguage   = "en-US"
	DefaultSampleRate = 16000
	DefaultLogLevel   = "info"
	DefaultChunkSize  = 3200

	EngineStub     = "stub"
	EngineGoogle   = "google"
	EngineDeepgram = "deepgram"
)

var knownEngines = []string{EngineStub, EngineGoogle, EngineDeepgram}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Engine    EngineConfig    `yaml:"engine"`
	Translate TranslateConfig `yaml:"translate"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls the logger. When File is set, logs are also written to
// a rotated file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// EngineConfig selects the recognition engines. Engines are tried in the
// order given until one can be created.
type EngineConfig struct {
	Engines        []string       `yaml:"engines"`
	Language       string         `yaml:"language"`
	SampleRate     int            `yaml:"sample_rate"`
	ChunkSize      int            `yaml:"chunk_size"`
	InterimResults bool           `yaml:"interim_results"`
	Deepgram       DeepgramConfig `yaml:"deepgram"`
	Stub           StubConfig     `yaml:"stub"`
}

type DeepgramConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type StubConfig struct {
	Latency time.Duration `yaml:"latency"`
}

type TranslateConfig struct {
	Gemini GeminiConfig `yaml:"gemini"`
}

// GeminiConfig configures the Gemini translator. An empty APIKey disables
// translation for engines that rely on a translator.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Engine: EngineConfig{
			Engines:    []string{EngineStub},
			Language:   DefaultLanguage,
			SampleRate: DefaultSampleRate,
			ChunkSize:  DefaultChunkSize,
		},
	}
}

// Validate applies defaults, checks required fields, and rejects out-of-range
// values.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Engine.Language == "" {
		c.Engine.Language = DefaultLanguage
	}
	if c.Engine.SampleRate == 0 {
		c.Engine.SampleRate = DefaultSampleRate
	}
	if c.Engine.SampleRate < 0 {
		return fmt.Errorf("config: sample_rate must be > 0, got %d", c.Engine.SampleRate)
	}
	if c.Engine.ChunkSize == 0 {
		c.Engine.ChunkSize = DefaultChunkSize
	}
	if c.Engine.ChunkSize < 0 {
		return fmt.Errorf("config: chunk_size must be > 0, got %d", c.Engine.ChunkSize)
	}
	if len(c.Engine.Engines) == 0 {
		c.Engine.Engines = []string{EngineStub}
	}
	for _, name := range c.Engine.Engines {
		if !slices.Contains(knownEngines, name) {
			return fmt.Errorf("config: unknown engine %q", name)
		}
	}
	if slices.Contains(c.Engine.Engines, EngineDeepgram) && c.Engine.Deepgram.APIKey == "" {
		return fmt.Errorf("config: deepgram engine requires deepgram.api_key")
	}
	if c.Engine.Stub.Latency < 0 {
		return fmt.Errorf("config: stub latency must be >= 0, got %s", c.Engine.Stub.Latency)
	}
	return nil
}
