// Package tiercachefx provides an fx module wiring a string→[]byte cache
// hierarchy into an application's lifecycle.
package tiercachefx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/opsdash/tiercache/cache"
)

// Module provides a lifecycle-managed cache.Hierarchy[string, []byte].
// Requires a *zap.Logger; a *Config may be provided to override defaults.
var Module = fx.Module("tiercache",
	fx.Provide(newHierarchy),
)

// Config carries the construction knobs normally owned by an application's
// settings layer.
type Config struct {
	L1MaxSize       int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Shards          int
}

// DefaultConfig mirrors the package-level defaults: 60s TTL, 30s sweep,
// auto shard count, L1 in the low thousands.
func DefaultConfig() *Config {
	return &Config{
		L1MaxSize:       cache.DefaultL1MaxSize,
		DefaultTTL:      cache.DefaultTTL,
		CleanupInterval: cache.DefaultCleanupInterval,
	}
}

// Params holds dependencies for constructing the hierarchy.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Config    *Config       `optional:"true"`
	Metrics   cache.Metrics `optional:"true"`
	Lifecycle fx.Lifecycle
}

func newHierarchy(p Params) cache.Hierarchy[string, []byte] {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := cache.New[string, []byte](cache.Options[string, []byte]{
		L1MaxSize:       cfg.L1MaxSize,
		DefaultTTL:      cfg.DefaultTTL,
		CleanupInterval: cfg.CleanupInterval,
		Shards:          cfg.Shards,
		Metrics:         p.Metrics,
		Logger:          p.Logger.Named("tiercache"),
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			c.Stop()
			return nil
		},
	})
	return c
}
