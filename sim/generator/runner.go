package generator

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/scint-sim/scint-sim/sim"
)

// RunConfig parameterises a batch of events.
type RunConfig struct {
	Seed    int64
	Events  int
	Workers int // <= 0 means 1

	// SingleStream draws every event, in order, from one stream seeded with
	// Seed itself. Output then depends on the event count but not on event
	// scheduling; Workers is ignored.
	SingleStream bool
}

// eventsPerWorker sizes each dispatch round; larger rounds keep workers busy,
// smaller rounds bound the events held before delivery.
const eventsPerWorker = 4

// Run generates cfg.Events events and passes them to sink in ID order.
//
// Event i draws from the stream PartitionedRNG(seed).Derive(SubsystemEvent(i)),
// so the output is identical for every worker count. Streams are derived on
// the calling goroutine; workers only generate. A sink error or context
// cancellation stops the run before the next round is dispatched.
func Run(ctx context.Context, gen *PrimaryEventGenerator, cfg RunConfig, sink func(*sim.Event) error) error {
	if cfg.Events < 0 {
		return fmt.Errorf("%w: events must be non-negative, got %d", sim.ErrInvalidConfig, cfg.Events)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	prng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	if cfg.SingleStream {
		return runSingleStream(ctx, gen, cfg.Events, prng.ForSubsystem(sim.SubsystemGenerator), sink)
	}
	round := workers * eventsPerWorker
	events := make([]*sim.Event, round)
	streams := make([]*rand.Rand, round)

	for start := 0; start < cfg.Events; start += round {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(round, cfg.Events-start)
		for j := 0; j < n; j++ {
			events[j] = sim.NewEvent(start + j)
			streams[j] = prng.Derive(sim.SubsystemEvent(start + j))
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for j := 0; j < n; j++ {
			ev, rng := events[j], streams[j]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := gen.GenerateEvent(ev, rng); err != nil {
					return fmt.Errorf("event %d: %w", ev.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for j := 0; j < n; j++ {
			logrus.Debugf("generated %s", events[j])
			if err := sink(events[j]); err != nil {
				return fmt.Errorf("event %d: %w", events[j].ID, err)
			}
			events[j], streams[j] = nil, nil
		}
	}
	return nil
}

func runSingleStream(ctx context.Context, gen *PrimaryEventGenerator, events int, rng *rand.Rand, sink func(*sim.Event) error) error {
	for i := 0; i < events; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := sim.NewEvent(i)
		if err := gen.GenerateEvent(ev, rng); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		logrus.Debugf("generated %s", ev)
		if err := sink(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
