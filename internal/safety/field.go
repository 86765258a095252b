package safety

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/spatial"
)

var (
	// ErrNotReady is returned by score queries before ComputeScores has run.
	ErrNotReady = eris.New("safety: scores not computed")
	// ErrNoData is returned by score queries over an empty analysis-point set.
	ErrNoData = eris.New("safety: no analysis points")
)

// Field owns the analysis points, a spatial index over their coordinates,
// and one normalized score per point. Scores are undefined until
// ComputeScores has run; queries before that fail with ErrNotReady.
type Field struct {
	points []AnalysisPoint
	index  *spatial.Index
	scores []float64
}

// NewField builds a field over the loaded analysis points. An empty table is
// accepted (score queries then fail with ErrNoData) so callers can decide how
// to surface the degenerate case.
func NewField(points []AnalysisPoint) (*Field, error) {
	f := &Field{points: points}
	if len(points) == 0 {
		return f, nil
	}

	coords := make([]geo.Coord, len(points))
	for i, p := range points {
		coords[i] = geo.Coord{Lon: p.Lon, Lat: p.Lat}
	}
	index, err := spatial.New(coords)
	if err != nil {
		return nil, eris.Wrap(err, "safety: build spatial index")
	}
	f.index = index
	return f, nil
}

// Len returns the number of analysis points.
func (f *Field) Len() int {
	return len(f.points)
}

// Extent returns the bounding box covering all analysis points.
func (f *Field) Extent() (geo.BBox, error) {
	if len(f.points) == 0 {
		return geo.BBox{}, ErrNoData
	}
	box := geo.BBox{
		North: f.points[0].Lat, South: f.points[0].Lat,
		East: f.points[0].Lon, West: f.points[0].Lon,
	}
	for _, p := range f.points[1:] {
		if p.Lat > box.North {
			box.North = p.Lat
		}
		if p.Lat < box.South {
			box.South = p.Lat
		}
		if p.Lon > box.East {
			box.East = p.Lon
		}
		if p.Lon < box.West {
			box.West = p.Lon
		}
	}
	return box, nil
}

// ComputeScores derives the four components per point, combines them with
// the given weights, and min-max normalizes the result to [0,1]. When every
// raw score is equal the normalized score is defined as 1.0 for all points;
// that is the documented degenerate-input policy, not an error.
func (f *Field) ComputeScores(w Weights) {
	raw := make([]float64, len(f.points))
	for i := range f.points {
		p := &f.points[i]

		compLight := 1.0/(1.0+p.streetlightDist()) + 0.01*p.streetlightCount()
		compPolice := 1.0/(1.0+p.policeDist()) + 0.1*p.policeCount()
		compStation := 1.0/(1.0+p.stationDist()) + 0.02*p.stationCount()
		compNightlife := p.nightlifeTotal()

		raw[i] = w.Streetlight*compLight +
			w.Police*compPolice +
			w.Station*compStation +
			w.Nightlife*compNightlife
	}

	scores := make([]float64, len(raw))
	if len(raw) > 0 {
		minv, maxv := raw[0], raw[0]
		for _, v := range raw[1:] {
			if v < minv {
				minv = v
			}
			if v > maxv {
				maxv = v
			}
		}
		if maxv-minv <= 0 {
			for i := range scores {
				scores[i] = 1.0
			}
		} else {
			for i, v := range raw {
				scores[i] = (v - minv) / (maxv - minv)
			}
		}
	}
	f.scores = scores

	zap.L().Info("safety: computed scores",
		zap.Int("points", len(scores)),
		zap.Float64("weight_streetlight", w.Streetlight),
		zap.Float64("weight_police", w.Police),
		zap.Float64("weight_station", w.Station),
		zap.Float64("weight_nightlife", w.Nightlife),
	)
}

// Score returns the normalized score of the analysis point at row i.
func (f *Field) Score(i int) (float64, error) {
	if len(f.points) == 0 {
		return 0, ErrNoData
	}
	if f.scores == nil {
		return 0, ErrNotReady
	}
	return f.scores[i], nil
}

// ScoreAt returns the normalized score of the analysis point nearest to the
// given coordinate. Scores are nearest-neighbor assigned, not interpolated.
func (f *Field) ScoreAt(lon, lat float64) (float64, error) {
	if len(f.points) == 0 {
		return 0, ErrNoData
	}
	if f.scores == nil {
		return 0, ErrNotReady
	}
	idx := f.index.Nearest(geo.Coord{Lon: lon, Lat: lat})
	return f.scores[idx], nil
}
