// Command tierbench runs a synthetic zipf workload against a two-tier
// cache and reports throughput, hit ratios, and shard diagnostics.
// Optional pprof and Prometheus endpoints can be enabled for profiling.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
