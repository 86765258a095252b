package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/geo"
)

var precacheCmd = &cobra.Command{
	Use:   "precache",
	Short: "Download and cache the road graph ahead of time",
	Long: `Download, annotate, and persist the road graph so the first route
request does not pay the Overpass download. By default the area is the
extent of the analysis points plus the configured padding; pass an explicit
bounding box to override.

Examples:
  # Cache the graph covering the feature data
  safepath precache

  # Cache an explicit area (south west north east)
  safepath precache --bbox 28.50,77.15,28.70,77.30`,
	RunE: runPrecache,
}

func init() {
	precacheCmd.Flags().Float64Slice("bbox", nil, "explicit bounding box as south,west,north,east")
	rootCmd.AddCommand(precacheCmd)
}

func runPrecache(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("precache"); err != nil {
		return err
	}

	p, err := initPlanner()
	if err != nil {
		return err
	}

	var bounds geo.BBox
	if vals, _ := cmd.Flags().GetFloat64Slice("bbox"); len(vals) > 0 {
		if len(vals) != 4 {
			return eris.Errorf("precache: --bbox needs 4 values, got %d", len(vals))
		}
		bounds = geo.BBox{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
	} else {
		extent, err := p.Field().Extent()
		if err != nil {
			return eris.Wrap(err, "precache: derive area from feature data")
		}
		bounds = extent.Pad(cfg.Routing.BBoxPadding)
	}

	log := zap.L().With(zap.String("command", "precache"))
	log.Info("precaching graph",
		zap.Float64("north", bounds.North),
		zap.Float64("south", bounds.South),
		zap.Float64("east", bounds.East),
		zap.Float64("west", bounds.West),
	)

	entry, err := p.Precache(ctx, bounds)
	if err != nil {
		return eris.Wrap(err, "precache")
	}

	if err := p.Cache().SaveFile(cfg.Cache.Path); err != nil {
		return eris.Wrap(err, "precache: save cache")
	}

	log.Info("precache complete",
		zap.Int("nodes", entry.Graph.NodeCount()),
		zap.Int("edges", entry.Graph.EdgeCount()),
		zap.String("path", cfg.Cache.Path),
	)
	fmt.Printf("Cached %d nodes / %d edges to %s\n",
		entry.Graph.NodeCount(), entry.Graph.EdgeCount(), cfg.Cache.Path)
	return nil
}
