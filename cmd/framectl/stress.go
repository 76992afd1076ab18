package main

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
	"github.com/TheHostEagle/SO-FinalProyect/mem/pmm"
)

var (
	stressFrames  int
	stressOps     int
	stressWorkers int
	stressShare   int
	stressSeed    int64
	stressBase    string
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressFrames, "frames", 256, "Number of frames in the pool")
	cmd.Flags().IntVar(&stressOps, "ops", 100000, "Total operations across all workers")
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent workers")
	cmd.Flags().IntVar(&stressShare, "share", 20, "Share (copy-on-write) probability in percent")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Workload random seed")
	cmd.Flags().StringVar(&stressBase, "base", "0x80000000", "Base address of the managed range")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized allocate/free/share workload",
		Long: `The stress command runs a randomized workload of allocations, releases,
and copy-on-write shares against a frame pool, then verifies that every
frame returned to the free list and reports allocator statistics.

Example:
  framectl stress --frames 512 --ops 1000000 --workers 8
  framectl stress --share 40 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

type stressConfig struct {
	base     mem.PhysAddr
	frames   int
	ops      int
	workers  int
	sharePct int
	seed     int64
	progress *progressbar.ProgressBar
}

// StressResult is the outcome of a stress run.
type StressResult struct {
	Frames     int       `json:"frames"`
	Ops        int       `json:"ops"`
	Workers    int       `json:"workers"`
	FreeFrames int       `json:"freeFrames"`
	Stats      pmm.Stats `json:"stats"`
}

func runStress() error {
	base, err := parseAddr(stressBase)
	if err != nil {
		return fmt.Errorf("invalid base address %q: %w", stressBase, err)
	}

	cfg := stressConfig{
		base:     mem.PhysAddr(base),
		frames:   stressFrames,
		ops:      stressOps,
		workers:  stressWorkers,
		sharePct: stressShare,
		seed:     stressSeed,
	}
	if !quiet && !jsonOut {
		cfg.progress = progressbar.Default(int64(cfg.ops), "stressing")
	}

	result, err := runStressWorkload(cfg)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(result)
	}

	printInfo("\nWorkload complete: %d ops over %d frames with %d workers\n",
		result.Ops, result.Frames, result.Workers)
	printInfo("  free frames:      %d\n", result.FreeFrames)
	printInfo("  allocations:      %d (%d failed)\n", result.Stats.AllocCalls, result.Stats.FailedAllocs)
	printInfo("  frees:            %d\n", result.Stats.FreeCalls)
	printInfo("  shared releases:  %d\n", result.Stats.SharedReleases)
	printInfo("  recycled:         %d\n", result.Stats.Recycled)
	printInfo("  owner increments: %d\n", result.Stats.OwnerIncrements)
	return nil
}

// runStressWorkload drives the allocator from cfg.workers goroutines. Each
// held entry in the shared pool stands for exactly one ownership reference,
// so claiming an entry under the lock is what makes the free/share performed
// outside the lock safe.
func runStressWorkload(cfg stressConfig) (StressResult, error) {
	region, err := mem.NewRegion(cfg.base, cfg.frames)
	if err != nil {
		return StressResult{}, err
	}
	defer region.Close()

	alloc := pmm.New(region)

	var (
		mu   sync.Mutex
		held []mem.PhysAddr
	)

	claim := func(r *rand.Rand) (mem.PhysAddr, bool) {
		mu.Lock()
		defer mu.Unlock()
		if len(held) == 0 {
			return 0, false
		}
		n := r.Intn(len(held))
		pa := held[n]
		held[n] = held[len(held)-1]
		held = held[:len(held)-1]
		return pa, true
	}
	keep := func(pa mem.PhysAddr, times int) {
		mu.Lock()
		for i := 0; i < times; i++ {
			held = append(held, pa)
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	perWorker := cfg.ops / cfg.workers
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < perWorker; i++ {
				if cfg.progress != nil {
					cfg.progress.Add(1) //nolint:errcheck // progress display only
				}
				roll := r.Intn(100)
				switch {
				case roll < cfg.sharePct:
					// Register another copy-on-write owner of a frame we
					// hold a reference to, then record both references.
					if pa, ok := claim(r); ok {
						alloc.IncrementOwner(pa)
						keep(pa, 2)
						continue
					}
					fallthrough
				case roll < 50+cfg.sharePct/2:
					if pa, err := alloc.Allocate(); err == nil {
						keep(pa, 1)
					}
				default:
					if pa, ok := claim(r); ok {
						alloc.Free(pa)
					}
				}
			}
		}(cfg.seed + int64(w))
	}
	wg.Wait()

	// Drain every remaining reference; the pool must refill completely.
	for _, pa := range held {
		alloc.Free(pa)
	}

	result := StressResult{
		Frames:     cfg.frames,
		Ops:        cfg.ops,
		Workers:    cfg.workers,
		FreeFrames: alloc.FreeFrames(),
		Stats:      alloc.Stats(),
	}
	if result.FreeFrames != cfg.frames {
		return result, fmt.Errorf("frame leak: %d of %d frames free after drain",
			result.FreeFrames, cfg.frames)
	}
	return result, nil
}
