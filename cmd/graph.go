package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/osmgraph/internal/filter"
	"github.com/wegman-software/osmgraph/internal/logger"
	"github.com/wegman-software/osmgraph/internal/metrics"
	"github.com/wegman-software/osmgraph/internal/store"
)

// loadGraph builds the graph for cfg.InputFile, logging system metrics
// while the load runs.
func loadGraph(ctx context.Context, input string) *store.Store {
	log := logger.Get()
	cfg.InputFile = input
	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	metricsCtx, cancelMetrics := context.WithCancel(gctx)
	defer cancelMetrics()
	if cfg.MetricsInterval > 0 {
		collector := metrics.NewCollector(cfg.MetricsInterval, log)
		g.Go(func() error {
			collector.Start(metricsCtx)
			return nil
		})
		log.Debug("System metrics collection started", zap.Duration("interval", cfg.MetricsInterval))
	}

	var s *store.Store
	g.Go(func() error {
		defer cancelMetrics()
		var err error
		s, err = store.Load(gctx, cfg)
		return err
	})

	if err := g.Wait(); err != nil {
		exitWithError("failed to load graph", err)
	}

	log.Info("Graph ready",
		zap.Int("elements", s.Len()),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
	return s
}

// restrictToBBox narrows s to the --bbox area when one was given.
func restrictToBBox(s *store.Store) *store.Store {
	if !cfg.BBox.IsSet {
		return s
	}
	return s.Filter(filter.Inside(cfg.BBox.Bound()))
}

// loadRules compiles the named rules of cfg.RulesFile, or every rule when
// names is empty.
func loadRules(names []string) ([]string, []filter.Filter) {
	if cfg.RulesFile == "" {
		exitWithError("a rules file is required (--rules)", nil)
	}
	set, err := filter.LoadRuleSet(cfg.RulesFile)
	if err != nil {
		exitWithError("failed to load rules", err)
	}
	if len(names) == 0 {
		names = set.Names
	}

	filters := make([]filter.Filter, 0, len(names))
	for _, name := range names {
		r, ok := set.Rules[name]
		if !ok {
			exitWithError("unknown rule", fmt.Errorf("%q not in %s", name, cfg.RulesFile))
		}
		f, err := r.Filter()
		if err != nil {
			exitWithError("failed to compile rule", fmt.Errorf("%s: %w", name, err))
		}
		filters = append(filters, f)
	}
	return names, filters
}
