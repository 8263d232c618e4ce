package cmd

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/filter"
	"github.com/wegman-software/osmgraph/internal/logger"
)

var (
	nearestLat    float64
	nearestLon    float64
	nearestRadius float64
	nearestMax    float64
	nearestRule   string
	nearestLimit  int
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <input.osm.pbf>",
	Short: "Find the elements closest to a coordinate",
	Long: `Load an OSM extract and look up elements near --lat/--lon through the
grid spatial index.

Without --radius the single closest element is printed, optionally no
further than --max-distance meters away. With --radius every element within
that many meters is printed, nearest first. --rule restricts candidates to
one rule of the rules file.`,
	Args: cobra.ExactArgs(1),
	Run:  runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)

	nearestCmd.Flags().Float64Var(&nearestLat, "lat", math.NaN(), "Latitude of the query point")
	nearestCmd.Flags().Float64Var(&nearestLon, "lon", math.NaN(), "Longitude of the query point")
	nearestCmd.Flags().Float64Var(&nearestRadius, "radius", 0, "List every element within this many meters")
	nearestCmd.Flags().Float64Var(&nearestMax, "max-distance", 0, "Ignore a closest element further than this many meters, 0 is unlimited")
	nearestCmd.Flags().StringVar(&nearestRule, "rule", "", "Only consider elements matching this rule")
	nearestCmd.Flags().IntVar(&nearestLimit, "limit", 20, "Elements to print with --radius, 0 prints all")
}

func runNearest(cmd *cobra.Command, args []string) {
	log := logger.Get()
	if math.IsNaN(nearestLat) || math.IsNaN(nearestLon) {
		exitWithError("--lat and --lon are required", nil)
	}
	if nearestLat < -90 || nearestLat > 90 || nearestLon < -180 || nearestLon > 180 {
		exitWithError("query point is outside the coordinate range", fmt.Errorf("%v,%v", nearestLat, nearestLon))
	}
	if nearestRadius < 0 {
		exitWithError("radius must not be negative", nil)
	}

	var names []string
	var filters []filter.Filter
	if nearestRule != "" {
		names, filters = loadRules([]string{nearestRule})
	}

	s := restrictToBBox(loadGraph(context.Background(), args[0]))
	if len(filters) > 0 {
		s = s.Filter(filters...)
	}

	point := orb.Point{nearestLon, nearestLat}
	chunker := s.Chunker()
	log.Debug("Spatial index ready",
		zap.Int("elements", chunker.Len()),
		zap.Int("cells", chunker.Cells()),
		zap.Strings("rules", names),
	)

	out := cmd.OutOrStdout()
	if nearestRadius > 0 {
		hits := chunker.Within(point, nearestRadius)
		fmt.Fprintf(out, "%d elements within %.0f m\n", len(hits), nearestRadius)
		for i, h := range hits {
			if nearestLimit > 0 && i == nearestLimit {
				fmt.Fprintf(out, "  ... %d more\n", len(hits)-nearestLimit)
				break
			}
			fmt.Fprintf(out, "  %8.1f m  %s\n", h.Distance, h.Element.URL())
		}
		return
	}

	el, dist := chunker.Closest(point, nearestMax)
	if el == nil {
		if math.IsInf(dist, 1) {
			fmt.Fprintln(out, "no candidate elements")
		} else {
			fmt.Fprintf(out, "nothing within %.0f m (closest is %.1f m away)\n", nearestMax, dist)
		}
		return
	}
	fmt.Fprintf(out, "%.1f m  %s\n", dist, el.URL())
}
