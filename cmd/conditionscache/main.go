// Command conditionscache is a runnable demonstration of a refcache Cache
// keyed by half-open event intervals, modeled on the "conditions cache"
// worked example the source's own multi-threaded test drives: workers look
// up which of a small, pre-declared set of intervals covers each incoming
// event number, creating the interval's entry lazily on first miss.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	cache "github.com/vertexlab/refcache"
	"github.com/vertexlab/refcache/iov"
	"github.com/vertexlab/refcache/metrics"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultRunConfig()

	flagSet := flag.NewFlagSet("conditionscache", flag.ContinueOnError)
	configPath := flagSet.String("config", "", "optional JSONC config file (shards, keepLast, workers, events)")
	shards := flagSet.Int("shards", cfg.Shards, "cache shard count")
	keepLast := flagSet.Int("keep-last", cfg.KeepLast, "unpinned entries retained by drop_unused_but_last")
	workers := flagSet.Int("workers", cfg.Workers, "concurrent worker count")
	events := flagSet.Int("events", cfg.Events, "number of events to process (split evenly between the Good/Bad intervals)")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigFile(*configPath, cfg)
	if err != nil {
		return err
	}
	if flagSet.Changed("shards") {
		cfg.Shards = *shards
	}
	if flagSet.Changed("keep-last") {
		cfg.KeepLast = *keepLast
	}
	if flagSet.Changed("workers") {
		cfg.Workers = *workers
	}
	if flagSet.Changed("events") {
		cfg.Events = *events
	}

	runID := ulid.Make().String()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "conditionscache",
		Level: hclog.Info,
	}).With("run", runID)

	reg, collector := metrics.Registry()

	c := cache.New[iov.Interval, string](cache.Config{
		Shards:  cfg.Shards,
		Logger:  logger.Named("cache"),
		Metrics: collector,
	})

	good := iov.New(0, uint64(cfg.Events)/2)
	bad := iov.New(uint64(cfg.Events)/2, uint64(cfg.Events))
	labels := map[iov.Interval]string{good: "Good", bad: "Bad"}

	sequence := make([]uint64, cfg.Events)
	for i := range sequence {
		sequence[i] = uint64(i)
	}
	rand.Shuffle(len(sequence), func(i, j int) { sequence[i], sequence[j] = sequence[j], sequence[i] })

	tallies := make([]int, len(sequence))

	g, ctx := errgroup.WithContext(context.Background())
	work := make(chan int, cfg.Workers)

	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for idx := range work {
				event := sequence[idx]
				h, err := lookupOrCreate(c, labels, good, bad, event)
				if err != nil {
					return err
				}
				label := h.MustGet()
				tallies[idx] = boolToTally(label == "Good")
				h.Release()

				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			return nil
		})
	}

	for idx := range sequence {
		work <- idx
	}
	close(work)

	if err := g.Wait(); err != nil {
		return err
	}

	goodCount, badCount := 0, 0
	for _, t := range tallies {
		switch t {
		case tallyGood:
			goodCount++
		case tallyBad:
			badCount++
		}
	}
	logger.Info("tally complete", "good", goodCount, "bad", badCount, "size", c.Size())

	c.DropUnusedButLast(uint(cfg.KeepLast))
	logger.Info("reclaimed after run", "size", c.Size(), "capacity", c.Capacity())

	c.DropUnused()

	fmt.Printf("good=%d bad=%d final_size=%d\n", goodCount, badCount, c.Size())
	fmt.Printf("metrics: entries=%.0f capacity=%.0f emplace_hits=%.0f emplace_misses=%.0f reclaimed=%.0f\n",
		testutil.ToFloat64(collector.Size()),
		testutil.ToFloat64(collector.Capacity()),
		testutil.ToFloat64(collector.EmplaceHits()),
		testutil.ToFloat64(collector.EmplaceMisses()),
		testutil.ToFloat64(collector.Reclaimed()),
	)
	_ = reg // retained for a caller that wants to serve /metrics; unused here since this is a one-shot CLI.

	return nil
}

const (
	tallyBad = iota
	tallyGood
)

func boolToTally(good bool) int {
	if good {
		return tallyGood
	}
	return tallyBad
}

// lookupOrCreate resolves event against the pre-declared intervals, racing
// other workers to emplace whichever interval is missing on first use —
// exactly the entry_for-miss-then-emplace-then-retry pattern the source's
// multi-threaded conditions cache test exercises.
func lookupOrCreate(c *cache.Cache[iov.Interval, string], labels map[iov.Interval]string, good, bad iov.Interval, event uint64) (cache.Handle[string], error) {
	for {
		h, err := cache.EntryFor[uint64](c, event)
		if err != nil {
			return cache.Handle[string]{}, err
		}
		if h.Valid() {
			return h, nil
		}

		var interval iov.Interval
		if good.Supports(event) {
			interval = good
		} else {
			interval = bad
		}
		tmp := c.Emplace(interval, labels[interval])
		tmp.Release()
	}
}
