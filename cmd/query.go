package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/boundary"
	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/filter"
	"github.com/wegman-software/osmgraph/internal/logger"
	"github.com/wegman-software/osmgraph/internal/store"
)

var (
	queryRules     []string
	queryWithin    []int64
	queryDedupKey  string
	queryLimit     int
	queryPrintTags bool
)

var queryCmd = &cobra.Command{
	Use:   "query <input.osm.pbf>",
	Short: "Select elements with the filters of a rules file",
	Long: `Load an OSM extract and run named filter rules against it.

All selected rules are evaluated in a single pass over the graph. Results
can be restricted to a bounding box (--bbox) or to the area of one or more
boundary relations (--within), and collapsed so that only one element per
distinct value of a tag is printed (--dedup-key).

Example rules file:

  cafes:
    kinds: [node, way]
    include:
      amenity: [cafe]
  fuel:
    include:
      amenity: [fuel]
    exclude:
      disused: []`,
	Args: cobra.ExactArgs(1),
	Run:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringSliceVar(&queryRules, "rule", nil, "Rule names to run (default: all rules in the file)")
	queryCmd.Flags().Int64SliceVar(&queryWithin, "within", nil, "Relation ids whose area results must lie in")
	queryCmd.Flags().StringVar(&queryDedupKey, "dedup-key", "", "Keep one element per value of this tag")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 50, "Elements to print per rule, 0 prints all")
	queryCmd.Flags().BoolVar(&queryPrintTags, "tags", false, "Print element tags")
}

func runQuery(cmd *cobra.Command, args []string) {
	log := logger.Get()
	names, filters := loadRules(queryRules)

	s := restrictToBBox(loadGraph(context.Background(), args[0]))
	if len(queryWithin) > 0 {
		s = s.Filter(insideRelations(s, queryWithin))
	}

	sets := make([][]filter.Filter, len(filters))
	for i, f := range filters {
		sets[i] = []filter.Filter{f}
	}
	results := s.FilterBatch(sets...)

	out := cmd.OutOrStdout()
	for i, res := range results {
		log.Info("Rule evaluated", zap.String("rule", names[i]), zap.Int("matches", res.Len()))
		if queryDedupKey != "" {
			res = dedupByValue(res, queryDedupKey)
		}
		fmt.Fprintf(out, "%s: %d\n", names[i], res.Len())
		printElements(out, res.Elements(), queryLimit)
	}
}

// insideRelations assembles the given relations from the master graph and
// returns a filter for their combined area.
func insideRelations(s *store.Store, ids []int64) filter.Filter {
	var set boundary.Set
	for _, id := range ids {
		e, err := s.Master().ElementByID(osm.TypeRelation, id)
		if err != nil {
			exitWithError("boundary relation not loaded", err)
		}
		mp, err := boundary.Assemble(e)
		if err != nil {
			exitWithError("boundary relation did not assemble", fmt.Errorf("%s: %w", e.Key(), err))
		}
		set = append(set, boundary.Boundary{Element: e, Shape: mp})
	}
	return filter.Inside(set)
}

// dedupByValue keeps the first element of each value of key. Elements
// without the tag are never duplicates of anything.
func dedupByValue(s *store.Store, key string) *store.Store {
	res, err := s.Deduplicate(func(a, b element.Element) element.Element {
		va, okA := a.Tag(key)
		vb, okB := b.Tag(key)
		if !okA || !okB || va != vb {
			return nil
		}
		return a
	})
	if err != nil {
		exitWithError("deduplication failed", err)
	}
	return res.Store
}

func printElements(w io.Writer, elements []element.Element, limit int) {
	for i, e := range elements {
		if limit > 0 && i == limit {
			fmt.Fprintf(w, "  ... %d more\n", len(elements)-limit)
			return
		}
		line := "  " + e.URL()
		if p, ok := e.Centroid(); ok {
			line += fmt.Sprintf(" %.6f,%.6f", p.Lat(), p.Lon())
		}
		if name, ok := e.Tag("name"); ok {
			line += " " + name
		}
		fmt.Fprintln(w, line)
		if queryPrintTags {
			for _, t := range e.Tags() {
				fmt.Fprintf(w, "      %s=%s\n", t.Key, t.Value)
			}
		}
	}
}
