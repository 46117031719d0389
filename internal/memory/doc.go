// Package memory sizes the process's memory use: it configures GOMEMLIMIT,
// derives the default byte budget of the decoded-image cache, and provides a
// [Monitor] that applies backpressure to batch thumbnail work.
//
// # Environment Variables
//
//   - GOMEMLIMIT: Standard Go variable. If set, it wins.
//   - MEMORY_LIMIT: Memory limit in bytes from which GOMEMLIMIT is computed.
//   - MEMORY_RATIO: Fraction of MEMORY_LIMIT given to the Go heap
//     (default 0.85). Lower it when libvips is enabled, since its
//     allocations live outside the Go heap.
//
// # Cache Budget
//
// A decoded RGBA image costs width*height*4 bytes; a 24MP photo is ~96MB.
// [CacheBudget] returns a quarter of the Go memory limit, or 512MiB when no
// limit is known. CACHE_MAX_BYTES overrides it (see internal/startup).
//
// # Backpressure
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	// in each batch worker, before decoding:
//	if err := monitor.WaitIfPaused(ctx); err != nil {
//	    return err
//	}
//
// Without a limit the monitor never pauses.
package memory
