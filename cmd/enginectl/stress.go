package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/internal/core/object"
	"github.com/kolkov/enginecore/internal/platform/clock"
)

var (
	stressCount   int
	stressWorkers int
	stressBudget  uint64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressCount, "count", "n", 1000, "Objects to hold at once per worker")
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", 1, "Concurrent workers sharing one runtime")
	cmd.Flags().Uint64Var(&stressBudget, "budget", 0, "Memory budget in bytes, 0 for unlimited")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Exercise the tracking allocator",
		Long: `The stress command allocates objects through the tracked path, holds
them, reports how the allocation table split them between its inline pool
and heap nodes, then releases them all and checks nothing leaked.

Example:
  enginectl stress --count 65
  enginectl stress --count 10000 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runStress(stressCount, stressWorkers, stressBudget)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printInfo(w, "allocated %d objects in %s\n", res.peak.Live, res.elapsed)
			printInfo(w, "table: %d pooled, %d heap\n", res.peak.Table.Pooled, res.peak.Table.Overflow)
			printVerbose(w, "runtime %s: created %d, destroyed %d, failed %d\n",
				res.final.ID, res.final.Created, res.final.Destroyed, res.final.Failed)
			if res.final.Live != 0 || res.leaks != 0 {
				return fmt.Errorf("%d objects still alive after release", res.final.Live+res.leaks)
			}
			printInfo(w, "leaks: 0\n")
			return nil
		},
	}
}

type ballast struct {
	object.Base
	_ [48]byte
}

type stressResult struct {
	peak    object.Stats
	final   object.Stats
	leaks   int
	elapsed time.Duration
}

func runStress(count, workers int, budget uint64) (stressResult, error) {
	if count < 0 || workers < 1 {
		return stressResult{}, fmt.Errorf("count must be >= 0 and workers >= 1")
	}
	rt := object.NewRuntime(object.Options{
		MemoryBudget: budget,
		Concurrent:   workers > 1,
	})

	var c clock.Monotonic
	start := c.Counter()

	held := make([][]*object.Pointer[*ballast], workers)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range count {
				raw, err := object.New[ballast](rt)
				if err != nil {
					errCh <- err
					return
				}
				held[i] = append(held[i], object.NewPointer(raw))
			}
		}()
	}
	wg.Wait()
	close(errCh)

	res := stressResult{peak: rt.Stats()}
	for _, ptrs := range held {
		for _, p := range ptrs {
			p.Release()
		}
	}
	res.elapsed = clock.Elapsed(c, start, c.Counter())
	res.final = rt.Stats()
	res.leaks = rt.Close()

	if err := <-errCh; err != nil {
		return res, err
	}
	return res, nil
}
