package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/boundary"
	"github.com/wegman-software/osmgraph/internal/filter"
	"github.com/wegman-software/osmgraph/internal/logger"
	"github.com/wegman-software/osmgraph/internal/store"
)

var (
	childLevel      int
	parentLevel     int
	coverageMinimum float64
)

var boundaryCmd = &cobra.Command{
	Use:   "boundaries <input.osm.pbf>",
	Short: "Assemble administrative boundaries and relate them by coverage",
	Long: `Load an OSM extract, assemble the areas of administrative boundaries
(boundary=administrative) at two admin levels and report, for each boundary
at --child-level, the boundaries at --parent-level covering at least
--threshold of its area.

Boundaries whose rings do not close are listed with the reason.`,
	Args: cobra.ExactArgs(1),
	Run:  runBoundaries,
}

func init() {
	rootCmd.AddCommand(boundaryCmd)

	boundaryCmd.Flags().IntVar(&childLevel, "child-level", 4, "admin_level of the boundaries to place")
	boundaryCmd.Flags().IntVar(&parentLevel, "parent-level", 2, "admin_level of the candidate parents")
	boundaryCmd.Flags().Float64Var(&coverageMinimum, "threshold", 0.9, "Minimum share of the child area a parent must cover")
	boundaryCmd.Flags().IntVar(&cfg.CoverageDensity, "coverage-density", cfg.CoverageDensity, "Coverage samples per axis")
}

func adminLevel(s *store.Store, level int) *store.Store {
	return s.Filter(
		filter.OfKinds(filter.Ways|filter.Relations),
		filter.HasValue("boundary", "administrative"),
		filter.HasValue("admin_level", strconv.Itoa(level)),
	)
}

func runBoundaries(cmd *cobra.Command, args []string) {
	log := logger.Get()
	if coverageMinimum <= 0 || coverageMinimum > 1 {
		exitWithError("threshold must be in (0, 1]", fmt.Errorf("got %v", coverageMinimum))
	}

	s := loadGraph(context.Background(), args[0])

	children, childFailures := boundary.Collect(adminLevel(s, childLevel).Elements())
	parents, parentFailures := boundary.Collect(adminLevel(s, parentLevel).Elements())
	if cfg.BBox.IsSet {
		children = clipToBBox(children)
	}

	log.Info("Boundaries assembled",
		zap.Int("children", len(children)),
		zap.Int("parents", len(parents)),
		zap.Int("failed", len(childFailures)+len(parentFailures)),
	)

	out := cmd.OutOrStdout()
	for _, child := range children {
		name, _ := child.Element.Tag("name")
		fmt.Fprintf(out, "%s %s (area %.6f deg2)\n", child.Element.URL(), name, child.Shape.Area())
		found := boundary.Parents(child, parents, coverageMinimum, cfg.CoverageDensity)
		if len(found) == 0 {
			fmt.Fprintln(out, "  no parent")
		}
		for _, p := range found {
			pname, _ := p.Boundary.Element.Tag("name")
			fmt.Fprintf(out, "  %5.1f%%  %s %s\n", p.Coverage*100, p.Boundary.Element.URL(), pname)
		}
	}

	failures := append(childFailures, parentFailures...)
	if len(failures) > 0 {
		fmt.Fprintf(out, "\n%d boundaries did not assemble\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(out, "  %s: %v\n", f.Element.URL(), f.Err)
		}
	}
}

// clipToBBox keeps boundaries whose bounds meet the --bbox area.
func clipToBBox(bs []boundary.Boundary) []boundary.Boundary {
	box := cfg.BBox.Bound()
	kept := bs[:0]
	for _, b := range bs {
		if b.Shape.Bound().Intersects(box) {
			kept = append(kept, b)
		}
	}
	return kept
}
