package main

import "github.com/zintix-labs/targetlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeEstimator, cfg.pprofmode)
}
