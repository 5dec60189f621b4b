package tiercachefx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/opsdash/tiercache/cache"
)

func TestModule_ProvidesLifecycleManagedCache(t *testing.T) {
	var c cache.Hierarchy[string, []byte]

	app := fxtest.New(t,
		fx.Provide(zap.NewNop),
		Module,
		fx.Populate(&c),
	)
	app.RequireStart()

	c.Set("k", []byte("v"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	app.RequireStop()

	// The cache stays usable after shutdown; only the sweep is gone.
	c.Set("after", []byte("stop"))
	_, ok = c.Get("after")
	assert.True(t, ok)
}

func TestModule_HonorsProvidedConfig(t *testing.T) {
	cfg := &Config{
		L1MaxSize:       2,
		DefaultTTL:      time.Minute,
		CleanupInterval: 0,
		Shards:          2,
	}

	var provided cache.Hierarchy[string, []byte]
	app := fxtest.New(t,
		fx.Provide(zap.NewNop),
		fx.Supply(cfg),
		Module,
		fx.Populate(&provided),
	)
	app.RequireStart()
	defer app.RequireStop()

	provided.Set("a", []byte("1"))
	provided.Set("b", []byte("2"))
	provided.Set("c", []byte("3"))

	l1, l2 := provided.Size()
	assert.Equal(t, 2, l1, "L1 bound from config must hold")
	assert.Equal(t, 3, l2)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, cache.DefaultL1MaxSize, cfg.L1MaxSize)
	assert.Equal(t, cache.DefaultTTL, cfg.DefaultTTL)
	assert.Equal(t, cache.DefaultCleanupInterval, cfg.CleanupInterval)
	assert.Zero(t, cfg.Shards)
}
