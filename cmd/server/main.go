package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/sirupsen/logrus"

	stt "github.com/agnivade/stt_translation"
	"github.com/agnivade/stt_translation/config"
	"github.com/agnivade/stt_translation/engine"
	"github.com/agnivade/stt_translation/engine/deepgram"
	"github.com/agnivade/stt_translation/engine/google"
	"github.com/agnivade/stt_translation/engine/stub"
	"github.com/agnivade/stt_translation/logging"
	"github.com/agnivade/stt_translation/translate/gemini"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Loader{Path: *configPath}.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx := context.Background()
	factory, cleanup, err := newFactory(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up engines")
	}
	defer cleanup()

	defaults := stt.SessionDefaults{
		Language:       cfg.Engine.Language,
		SampleRate:     cfg.Engine.SampleRate,
		ChunkSize:      cfg.Engine.ChunkSize,
		InterimResults: cfg.Engine.InterimResults,
	}
	if cfg.Engine.Deepgram.Model != "" {
		defaults.Extensions = map[string]string{deepgram.ModelExtension: cfg.Engine.Deepgram.Model}
	}

	s := stt.New(cfg.Server, defaults, factory, logger)

	go func() {
		if err := s.Start(); err != nil {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if err := s.Stop(); err != nil {
		logger.WithError(err).Error("error during server shutdown")
	}
}

// newFactory builds a fallback factory over the configured engines. The
// returned cleanup closes any clients it opened.
func newFactory(ctx context.Context, cfg config.Config, logger *logrus.Logger) (engine.Factory, func(), error) {
	var (
		translator engine.Translator
		factories  []engine.NamedFactory
		closers    []func() error
	)
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.WithError(err).Warn("cleanup failed")
			}
		}
	}

	if key := cfg.Translate.Gemini.APIKey; key != "" {
		t, err := gemini.New(ctx, key, cfg.Translate.Gemini.Model, logger.WithField("component", "translate"))
		if err != nil {
			return nil, cleanup, err
		}
		translator = t
	}

	for _, name := range cfg.Engine.Engines {
		log := logger.WithField("engine", name)
		switch name {
		case config.EngineStub:
			factories = append(factories, engine.NamedFactory{
				Name: name,
				Factory: stub.NewFactory(
					stub.WithLatency(cfg.Engine.Stub.Latency),
					stub.WithLogger(log),
				),
			})
		case config.EngineGoogle:
			client, err := speech.NewClient(ctx)
			if err != nil {
				cleanup()
				return nil, func() {}, fmt.Errorf("create speech client: %w", err)
			}
			closers = append(closers, client.Close)
			factories = append(factories, engine.NamedFactory{
				Name:    name,
				Factory: google.NewFactory(client, translator, log),
			})
		case config.EngineDeepgram:
			factories = append(factories, engine.NamedFactory{
				Name:    name,
				Factory: deepgram.NewFactory(cfg.Engine.Deepgram.APIKey, translator, log),
			})
		default:
			cleanup()
			return nil, func() {}, errors.New("unknown engine " + name)
		}
	}

	if translator == nil && len(factories) > 0 {
		logger.Warn("no translator configured, cloud engines will return untranslated results")
	}
	return engine.NewFallback(logrus.NewEntry(logger), factories...), cleanup, nil
}
