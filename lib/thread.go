package lib

/* thread.go contains functions useful for multi-threading. */

import (
	"fmt"
	"runtime"
)

// SetThreads sets the number of threads eclio computes with. Zero leaves the
// Go default in place and -1 uses every core.
func SetThreads(n int) error {
	switch {
	case n == 0:
		return nil
	case n == -1:
		n = runtime.NumCPU()
	case n < 0:
		return fmt.Errorf("Threads is set to %d, but it must be positive, " +
			"0, or -1.", n)
	case n > runtime.NumCPU():
		return fmt.Errorf("%d threads requested, but your system only has " +
			"%d cores. If you want eclio to use every core, set Threads = -1.",
			n, runtime.NumCPU())
	}

	runtime.GOMAXPROCS(n)
	return nil
}

// Threads returns the number of threads eclio computes with.
func Threads() int { return runtime.GOMAXPROCS(0) }
