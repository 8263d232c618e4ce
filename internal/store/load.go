package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/config"
	"github.com/wegman-software/osmgraph/internal/logger"
	"github.com/wegman-software/osmgraph/internal/source"
)

// Load builds the master graph from cfg.InputFile. The input is fully
// consumed and closed before Load returns.
func Load(ctx context.Context, cfg *config.Config) (*Store, error) {
	log := logger.Get()
	start := time.Now()

	info, err := os.Stat(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	log.Info("Loading graph",
		zap.String("input", cfg.InputFile),
		zap.String("size", humanize.Bytes(uint64(info.Size()))),
		zap.Int("workers", cfg.Workers),
	)

	scanner, err := source.Open(ctx, cfg.InputFile, cfg.Workers)
	if err != nil {
		return nil, err
	}
	counting := source.Counting(scanner)

	tickCtx, stopTicker := context.WithCancel(ctx)
	ticker := source.NewProgressTicker(tickCtx, cfg.ProgressInterval, func() {
		nodes, ways, relations := counting.Counts()
		log.Info("Reading",
			zap.String("nodes", humanize.Comma(nodes)),
			zap.String("ways", humanize.Comma(ways)),
			zap.String("relations", humanize.Comma(relations)),
			zap.Duration("elapsed", time.Since(start).Round(time.Second)),
		)
	})
	go ticker.Run()

	s, buildErr := Build(counting, WithCellSize(cfg.CellSize))
	stopTicker()
	closeErr := counting.Close()

	if buildErr != nil {
		return nil, buildErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close input: %w", closeErr)
	}

	stats := s.Stats()
	log.Info("Graph built",
		zap.String("nodes", humanize.Comma(int64(stats.Nodes))),
		zap.String("ways", humanize.Comma(int64(stats.Ways))),
		zap.String("relations", humanize.Comma(int64(stats.Relations))),
		zap.Int("tagged", len(s.tagged)),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	if stats.MissingWayNodes > 0 {
		log.Warn("Ways reference nodes missing from the input",
			zap.Int("refs", stats.MissingWayNodes))
	}
	if stats.UnresolvedMembers > 0 {
		log.Info("Relation members outside the input left unresolved",
			zap.Int("members", stats.UnresolvedMembers))
	}
	return s, nil
}
