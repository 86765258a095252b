package roadnet

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safepath/safepath/internal/geo"
)

// Scorer answers safety-score queries for arbitrary coordinates. Satisfied
// by safety.Field.
type Scorer interface {
	ScoreAt(lon, lat float64) (float64, error)
}

// AnnotateOptions tunes the annotation pass.
type AnnotateOptions struct {
	// Epsilon guards the safety-cost division when a score is exactly 0.
	// Default 1e-6.
	Epsilon float64
	// Workers bounds the annotation worker pool. Default: GOMAXPROCS.
	Workers int
}

// Report summarizes an annotation pass. Defaulted counts edges that were
// given neutral values because an endpoint had no coordinates; those edges
// never abort the pass, but callers can observe how many there were.
type Report struct {
	Edges     int
	Defaulted int
}

const (
	neutralSafety = 0.5
	nominalLength = 1.0
)

// Annotate assigns a safety score and safety cost to every edge of g.
//
// Per edge: the safety score is sampled at the segment midpoint, and the
// authoritative length for the cost calculation is the great-circle distance
// between the endpoints. The provider-supplied Length field is left
// untouched; it remains the fastest-route weight. safety_cost =
// length/(score+epsilon), so low-safety edges inflate in cost and a zero
// score stays finite.
//
// An edge whose endpoint is missing from the node set gets the neutral
// score and its existing length (or a nominal 1.0 when absent) instead of
// failing the whole pass. Scorer errors (scores not computed, empty table)
// do abort: those are usage errors, not data defects.
func Annotate(ctx context.Context, g *Graph, scorer Scorer, opts AnnotateOptions) (Report, error) {
	if opts.Epsilon <= 0 {
		opts.Epsilon = 1e-6
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	var all []*Edge
	for _, edges := range g.Edges {
		all = append(all, edges...)
	}
	report := Report{Edges: len(all)}
	if len(all) == 0 {
		return report, nil
	}

	chunkSize := (len(all) + opts.Workers - 1) / opts.Workers
	defaulted := make([]int, opts.Workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		lo := w * chunkSize
		if lo >= len(all) {
			break
		}
		hi := min(lo+chunkSize, len(all))
		chunk := all[lo:hi]
		slot := w

		eg.Go(func() error {
			for _, e := range chunk {
				if err := ctx.Err(); err != nil {
					return eris.Wrap(err, "roadnet: annotate cancelled")
				}
				if err := annotateEdge(g, e, scorer, opts.Epsilon, &defaulted[slot]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}

	for _, d := range defaulted {
		report.Defaulted += d
	}
	zap.L().Info("roadnet: annotated graph",
		zap.Int("edges", report.Edges),
		zap.Int("defaulted", report.Defaulted),
	)
	return report, nil
}

func annotateEdge(g *Graph, e *Edge, scorer Scorer, epsilon float64, defaulted *int) error {
	from, okFrom := g.Coord(e.From)
	to, okTo := g.Coord(e.To)

	if !okFrom || !okTo {
		length := e.Length
		if length <= 0 {
			length = nominalLength
		}
		e.Safety = neutralSafety
		e.SafetyCost = length / (neutralSafety + epsilon)
		*defaulted++
		return nil
	}

	mid := geo.Midpoint(from, to)
	score, err := scorer.ScoreAt(mid.Lon, mid.Lat)
	if err != nil {
		return eris.Wrap(err, "roadnet: score edge midpoint")
	}

	length := geo.Haversine(from, to)
	if length <= 0 {
		// Coincident endpoints; keep the cost strictly positive.
		length = nominalLength
	}
	e.Safety = score
	e.SafetyCost = length / (score + epsilon)
	return nil
}
