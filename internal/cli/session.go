package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/audio/local"
	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/engine"
	"github.com/tessro/bhajan/internal/media"
)

// session holds the services one command invocation plays through.
type session struct {
	logger  *zap.Logger
	library *catalog.Library
	source  catalog.Source
	audio   *audio.Service
	engine  *engine.Engine
	closers []func()
}

// openLibrary opens the configured library and, when a redis cache is
// configured, wraps it in a read-through cache.
func openLibrary(ctx context.Context, log *zap.Logger) (*catalog.Library, catalog.Source, func(), error) {
	lib, err := catalog.OpenLibrary(cfg.Library.Path, catalog.WithLibraryLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}
	for _, problem := range lib.Problems() {
		log.Warn("library record skipped", zap.Error(problem))
	}

	if !cfg.Cache.Enabled() {
		return lib, lib, func() {}, nil
	}

	store, err := catalog.NewRedisStore(ctx, cfg.Cache)
	if err != nil {
		// The library is still usable without the cache.
		log.Warn("catalog cache unavailable", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		return lib, lib, func() {}, nil
	}
	cached := catalog.NewCached(lib, store, cfg.Cache.TTLDuration(), catalog.DefaultPrefix, log)
	return lib, cached, func() { _ = store.Close() }, nil
}

// openSession wires the library, media sources, audio service and engine
// from the loaded config.
func openSession(ctx context.Context, log *zap.Logger) (*session, error) {
	lib, source, closeSource, err := openLibrary(ctx, log)
	if err != nil {
		return nil, err
	}

	s3, err := media.NewS3Client(cfg.Storage)
	if err != nil {
		closeSource()
		return nil, fmt.Errorf("storage client: %w", err)
	}
	sources := media.NewSources(media.WithS3Client(s3), media.WithLogger(log))

	backend := local.New(sources,
		local.WithSampleRate(cfg.Audio.SampleRate),
		local.WithBuffer(cfg.Audio.BufferDuration()),
		local.WithLogger(log.Named("local")),
	)

	svc := audio.New(backend,
		audio.WithLogger(log.Named("audio")),
		audio.WithLoadTimeout(cfg.Audio.LoadTimeoutDuration()),
		audio.WithFallback(audio.FallbackPolicy{
			Enabled: cfg.Audio.Fallback.Enabled,
			Sources: cfg.Audio.Fallback.Sources,
		}),
	)
	if cfg.Audio.Fallback.Enabled {
		log.Warn("audio fallback enabled; failed tracks will be replaced by fallback sources")
	}

	eng := engine.New(svc,
		engine.WithLogger(log.Named("engine")),
		engine.WithPollInterval(cfg.Audio.PollIntervalDuration()),
		engine.WithVolume(cfg.Defaults.VolumeLevel()),
	)

	repeat, err := core.ParseRepeatMode(cfg.Defaults.Repeat)
	if err != nil {
		repeat = core.RepeatNone
	}
	eng.SetRepeatMode(repeat)
	eng.SetShuffleMode(cfg.Defaults.Shuffle)

	return &session{
		logger:  log,
		library: lib,
		source:  source,
		audio:   svc,
		engine:  eng,
		closers: []func(){closeSource},
	}, nil
}

// watchLibrary reloads the library on change when library.watch is set.
// It returns immediately; the watch stops with ctx.
func (s *session) watchLibrary(ctx context.Context, onReload func()) {
	if !cfg.Library.Watch {
		return
	}
	go func() {
		if err := catalog.Watch(ctx, s.library, onReload, s.logger); err != nil {
			s.logger.Warn("library watch stopped", zap.Error(err))
		}
	}()
}

// Close releases the engine, the audio resource and the cache.
func (s *session) Close() {
	s.engine.Close()
	s.audio.Destroy()
	for _, c := range s.closers {
		c()
	}
}
