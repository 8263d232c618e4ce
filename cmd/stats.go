package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/logger"
)

var (
	statsKey   string
	statsSplit bool
	statsTop   int
)

var statsCmd = &cobra.Command{
	Use:   "stats <input.osm.pbf>",
	Short: "Load an extract and summarise the element graph",
	Long: `Load an OSM extract into memory and report what it holds.

Prints element counts and build diagnostics (way nodes missing from the
extract, relation members left unresolved). With --key, also groups tagged
elements by that key's value and lists the most common values.`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsKey, "key", "k", "", "Group elements by the value of this tag")
	statsCmd.Flags().BoolVar(&statsSplit, "split", false, "Split ';' separated values when grouping")
	statsCmd.Flags().IntVar(&statsTop, "top", 20, "Number of groups to list")
}

func runStats(cmd *cobra.Command, args []string) {
	log := logger.Get()
	s := restrictToBBox(loadGraph(context.Background(), args[0]))

	st := s.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "elements           %s\n", humanize.Comma(int64(s.Len())))
	fmt.Fprintf(out, "  nodes            %s\n", humanize.Comma(int64(len(s.Nodes()))))
	fmt.Fprintf(out, "  ways             %s\n", humanize.Comma(int64(len(s.Ways()))))
	fmt.Fprintf(out, "  relations        %s\n", humanize.Comma(int64(len(s.Relations()))))
	fmt.Fprintf(out, "missing way nodes  %s\n", humanize.Comma(int64(st.MissingWayNodes)))
	fmt.Fprintf(out, "unresolved members %s\n", humanize.Comma(int64(st.UnresolvedMembers)))

	if statsKey == "" {
		return
	}

	groups := s.GroupByValue([]string{statsKey}, statsSplit)
	all := append(groups.All()[:0:0], groups.All()...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Len() > all[j].Len() })

	log.Info("Grouped elements",
		zap.String("key", statsKey),
		zap.Int("values", groups.Len()),
	)
	fmt.Fprintf(out, "\n%s (%d distinct values)\n", statsKey, groups.Len())
	for i, g := range all {
		if i == statsTop {
			fmt.Fprintf(out, "  ... %d more\n", len(all)-statsTop)
			break
		}
		fmt.Fprintf(out, "  %-30s %s\n", g.Value(), humanize.Comma(int64(g.Len())))
	}
}
