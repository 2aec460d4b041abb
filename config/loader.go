package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration from an optional YAML file and environment
// variables. Tests can override Lookup to inject deterministic maps.
type Loader struct {
	// Path is the YAML file to read. Empty skips the file; STT_CONFIG_FILE
	// is consulted when Path is empty.
	Path   string
	Lookup func(string) (string, bool)
}

// Load reads the file, applies environment overrides and validates the
// result.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	cfg := Default()

	path := l.Path
	if path == "" {
		overrideString(l.Lookup, "STT_CONFIG_FILE", &path)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	overrideString(l.Lookup, "STT_LISTEN_ADDR", &cfg.Server.ListenAddr)
	overrideString(l.Lookup, "STT_LOG_LEVEL", &cfg.Log.Level)
	overrideString(l.Lookup, "STT_LOG_FILE", &cfg.Log.File)
	overrideString(l.Lookup, "STT_LANGUAGE", &cfg.Engine.Language)
	overrideString(l.Lookup, "STT_DEEPGRAM_API_KEY", &cfg.Engine.Deepgram.APIKey)
	overrideString(l.Lookup, "STT_DEEPGRAM_MODEL", &cfg.Engine.Deepgram.Model)
	overrideString(l.Lookup, "STT_GEMINI_API_KEY", &cfg.Translate.Gemini.APIKey)
	overrideString(l.Lookup, "STT_GEMINI_MODEL", &cfg.Translate.Gemini.Model)
	overrideList(l.Lookup, "STT_ENGINES", &cfg.Engine.Engines)
	if err := overrideInt(l.Lookup, "STT_SAMPLE_RATE", &cfg.Engine.SampleRate); err != nil {
		return Config{}, err
	}
	if err := overrideBool(l.Lookup, "STT_INTERIM_RESULTS", &cfg.Engine.InterimResults); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(l.Lookup, "STT_STUB_LATENCY", &cfg.Engine.Stub.Latency); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideList(lookup func(string) (string, bool), key string, target *[]string) {
	var raw string
	overrideString(lookup, key, &raw)
	if raw == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*target = out
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	var raw string
	overrideString(lookup, key, &raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = v
	return nil
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	var raw string
	overrideString(lookup, key, &raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = v
	return nil
}

func overrideDuration(lookup func(string) (string, bool), key string, target *time.Duration) error {
	var raw string
	overrideString(lookup, key, &raw)
	if raw == "" {
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = v
	return nil
}
