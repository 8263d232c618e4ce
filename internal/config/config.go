package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// BBox represents a geographic bounding box
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
	IsSet                          bool
}

// Contains checks if a point is within the bounding box
func (b *BBox) Contains(lat, lon float64) bool {
	if !b.IsSet {
		return true
	}
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Bound returns the box as an orb.Bound, usable as a containment area
func (b *BBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// ParseBBox parses a bbox string in format "minlon,minlat,maxlon,maxlat"
func ParseBBox(s string) (*BBox, error) {
	if s == "" {
		return &BBox{IsSet: false}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must have 4 values: minlon,minlat,maxlon,maxlat")
	}

	var coords [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox coordinate %q: %w", p, err)
		}
		coords[i] = v
	}

	bbox := &BBox{
		MinLon: coords[0],
		MinLat: coords[1],
		MaxLon: coords[2],
		MaxLat: coords[3],
		IsSet:  true,
	}

	// Validate
	if bbox.MinLon > bbox.MaxLon {
		return nil, fmt.Errorf("minlon (%f) must be <= maxlon (%f)", bbox.MinLon, bbox.MaxLon)
	}
	if bbox.MinLat > bbox.MaxLat {
		return nil, fmt.Errorf("minlat (%f) must be <= maxlat (%f)", bbox.MinLat, bbox.MaxLat)
	}
	if bbox.MinLat < -90 || bbox.MaxLat > 90 || bbox.MinLon < -180 || bbox.MaxLon > 180 {
		return nil, fmt.Errorf("bbox %q is outside the coordinate range", s)
	}

	return bbox, nil
}

// Config holds the global configuration for loading and querying a graph
type Config struct {
	// Input settings
	InputFile string
	RulesFile string // Path to YAML filter rules
	BBox      *BBox  // Query area, applied to element centroids

	// Processing settings
	Workers          int     // PBF decoding goroutines
	CellSize         float64 // Spatial index cell edge in degrees
	CoverageDensity  int     // Samples per axis for boundary coverage
	ProgressInterval time.Duration

	// Logging and metrics
	Verbose         bool
	LogFile         string        // Path to log file (empty = no file logging)
	MetricsInterval time.Duration // Interval for system metrics logging
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BBox:             &BBox{},
		Workers:          runtime.NumCPU(),
		CellSize:         0.05,
		CoverageDensity:  64,
		ProgressInterval: 5 * time.Second,
		Verbose:          false,
		LogFile:          "",               // No file logging by default
		MetricsInterval:  30 * time.Second, // Log system metrics every 30 seconds
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.CellSize <= 0 || c.CellSize > 10 {
		return fmt.Errorf("cell size must be in (0, 10] degrees, got %v", c.CellSize)
	}
	if c.CoverageDensity < 1 {
		return fmt.Errorf("coverage density must be at least 1")
	}
	return nil
}
