package cmd

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/osmgraph/internal/config"
	"github.com/wegman-software/osmgraph/internal/logger"
)

var (
	cfg             = config.DefaultConfig()
	verbose         bool
	logFile         string
	metricsInterval time.Duration
	bboxStr         string
)

var rootCmd = &cobra.Command{
	Use:   "osmgraph",
	Short: "In-memory OSM element graph with filter, spatial and boundary queries",
	Long: `osmgraph loads an OSM extract (PBF or XML) into a linked in-memory graph of
nodes, ways and relations and answers questions over it:

  - Tag and element kind filters, declared in YAML rule files
  - Grouping and de-duplication of matched elements
  - Nearest element and radius lookups through a grid index
  - Boundary assembly and coverage between administrative areas`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.Verbose = verbose
		cfg.LogFile = logFile
		cfg.MetricsInterval = metricsInterval

		// Initialize logger with optional file output
		if logFile != "" {
			logger.InitWithFile(verbose, logFile)
		} else {
			logger.Init(verbose)
		}

		bbox, err := config.ParseBBox(bboxStr)
		if err != nil {
			return err
		}
		cfg.BBox = bbox
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of PBF decoding workers")
	rootCmd.PersistentFlags().Float64Var(&cfg.CellSize, "cell-size", cfg.CellSize, "Spatial index cell size in degrees")
	rootCmd.PersistentFlags().DurationVar(&cfg.ProgressInterval, "progress-interval", cfg.ProgressInterval, "Interval for load progress logging")
	rootCmd.PersistentFlags().StringVarP(&cfg.RulesFile, "rules", "r", "", "YAML file of named filter rules")
	rootCmd.PersistentFlags().StringVarP(&bboxStr, "bbox", "b", "", "Restrict results to elements centred in minlon,minlat,maxlon,maxlat")

	// Logging and metrics flags
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 30*time.Second, "Interval for system metrics logging (e.g., 10s, 1m), 0 disables")
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	logger.Sync()
	os.Exit(1)
}
