package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/graphcache"
	"github.com/safepath/safepath/internal/planner"
	"github.com/safepath/safepath/internal/roadnet"
	"github.com/safepath/safepath/internal/safety"
	"github.com/safepath/safepath/internal/store"
)

// initField loads the feature table, applies the weight profile, and computes
// normalized scores.
func initField() (*safety.Field, error) {
	points, err := safety.LoadCSVFile(cfg.Data.FeatureCSV)
	if err != nil {
		return nil, err
	}

	field, err := safety.NewField(points)
	if err != nil {
		return nil, err
	}

	weights := safety.DefaultWeights()
	if cfg.Data.WeightsFile != "" {
		weights, err = safety.LoadWeightsFile(cfg.Data.WeightsFile)
		if err != nil {
			return nil, err
		}
	}
	field.ComputeScores(weights)

	return field, nil
}

// initPlanner builds the full routing stack: score field, Overpass provider,
// and graph cache (warmed from disk when a cache file exists).
func initPlanner() (*planner.Planner, error) {
	field, err := initField()
	if err != nil {
		return nil, err
	}

	provider := roadnet.NewOverpassProvider(roadnet.OverpassConfig{
		Endpoint:       cfg.Overpass.Endpoint,
		Timeout:        cfg.Overpass.Timeout(),
		RequestsPerSec: cfg.Overpass.RequestsPerSec,
		MaxRetries:     cfg.Overpass.MaxRetries,
	})

	cache := graphcache.New(graphcache.WithTolerance(cfg.Cache.Tolerance))
	cache.LoadFile(cfg.Cache.Path)

	p := planner.New(field, provider, cache, planner.Options{
		BBoxPadding:  cfg.Routing.BBoxPadding,
		ShrinkFactor: cfg.Routing.ShrinkFactor,
		Annotate:     roadnet.AnnotateOptions{Workers: cfg.Routing.Workers},
	})

	zap.L().Info("planner initialized",
		zap.Int("analysis_points", field.Len()),
		zap.String("overpass_endpoint", cfg.Overpass.Endpoint),
	)
	return p, nil
}

// initStore opens the route-history database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
