package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opsdash/tiercache/cache"
	"github.com/opsdash/tiercache/metrics/prom"
)

var (
	l1Size   int
	ttl      time.Duration
	cleanup  time.Duration
	shards   int
	workers  int
	duration time.Duration
	readPct  int
	keyspace int
	zipfS    float64
	zipfV    float64
	seed     int64
	hotPct   float64

	pprofAddr   string
	metricsAddr string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "tierbench",
	Short: "Synthetic benchmark for the two-tier cache",
	Long: `tierbench drives a mixed read/write zipf workload against a
cache hierarchy (bounded LRU front tier over a sharded TTL store) and
prints hit ratios, throughput, and per-shard contention when done.

Examples:
  # 10s run, 80% reads, default tiers
  tierbench

  # heavier skew against 4 shards, metrics on :8080
  tierbench --shards 4 --zipf-s 1.4 --http :8080`,
	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&l1Size, "l1", cache.DefaultL1MaxSize, "L1 max entries")
	f.DurationVar(&ttl, "ttl", cache.DefaultTTL, "default TTL for writes")
	f.DurationVar(&cleanup, "cleanup", cache.DefaultCleanupInterval, "sweep interval (0 disables)")
	f.IntVar(&shards, "shards", 0, "L2 shard count (0=auto)")
	f.IntVar(&workers, "workers", 2*runtime.GOMAXPROCS(0), "worker goroutines")
	f.DurationVar(&duration, "duration", 10*time.Second, "benchmark duration")
	f.IntVar(&readPct, "reads", 80, "read percentage [0..100]")
	f.IntVar(&keyspace, "keys", 1_000_000, "keyspace size")
	f.Float64Var(&zipfS, "zipf-s", 1.1, "Zipf s > 1 (skew)")
	f.Float64Var(&zipfV, "zipf-v", 1.0, "Zipf v")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	f.Float64Var(&hotPct, "hot-threshold", 0.8, "hot-shard quantile for the final report")
	f.StringVar(&pprofAddr, "pprof", "", "serve pprof at addr (empty = disabled)")
	f.StringVar(&metricsAddr, "http", "", "serve Prometheus metrics at addr (empty = disabled)")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if pprofAddr != "" {
		go func() {
			logger.Info("pprof listening", zap.String("addr", pprofAddr))
			logger.Warn("pprof server exited", zap.Error(http.ListenAndServe(pprofAddr, nil)))
		}()
	}

	opt := cache.Options[string, string]{
		L1MaxSize:       l1Size,
		DefaultTTL:      ttl,
		CleanupInterval: cleanup,
		Shards:          shards,
		Logger:          logger,
	}
	if metricsAddr != "" {
		opt.Metrics = prom.New(nil, "tiercache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics listening", zap.String("addr", metricsAddr))
			logger.Warn("metrics server exited", zap.Error(http.ListenAndServe(metricsAddr, nil)))
		}()
	}

	c := cache.New[string, string](opt)
	defer c.Stop()

	// Preload part of the keyspace for a realistic hit-rate from the start.
	for i := 0; i < keyspace/10; i++ {
		c.Set("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	if workers < 1 {
		workers = 1
	}
	keysMax := uint64(keyspace - 1)

	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()

	var ops uint64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe; one RNG + Zipf per worker.
			r := rand.New(rand.NewSource(seed + int64(id)*9973))
			z := rand.NewZipf(r, zipfS, zipfV, keysMax)
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				k := "k:" + strconv.FormatUint(z.Uint64(), 10)
				if int(r.Int31n(100)) < readPct {
					c.Get(k)
				} else {
					c.Set(k, "v"+strconv.Itoa(r.Int()))
				}
				atomic.AddUint64(&ops, 1)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report(cmd, c, atomic.LoadUint64(&ops), elapsed)
	return nil
}

func report(cmd *cobra.Command, c cache.Hierarchy[string, string], ops uint64, elapsed time.Duration) {
	snap := c.Snapshot()
	l1, l2 := c.Size()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "workers=%d shards=%d keys=%d dur=%v seed=%d\n",
		workers, len(c.Store().ShardSizes()), keyspace, elapsed, seed)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  gets=%d  sets=%d\n",
		ops, float64(ops)/elapsed.Seconds(), snap.Gets, snap.Sets)
	fmt.Fprintf(out, "l1 hit-ratio=%.2f%%  l2 hit-ratio=%.2f%%  overall=%.2f%%\n",
		snap.L1HitRatio()*100, snap.L2HitRatio()*100, snap.HitRatio()*100)
	fmt.Fprintf(out, "size l1=%d l2=%d\n", l1, l2)

	for _, st := range c.Store().ShardStats() {
		fmt.Fprintf(out, "shard %3d: size=%-8d contention=%-8d avg-wait=%v\n",
			st.Index, st.Size, st.Contention, st.AvgWait)
	}
	if hot := c.Store().HotShards(hotPct); len(hot) > 0 {
		fmt.Fprintf(out, "hot shards (q=%.2f): %v\n", hotPct, hot)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
