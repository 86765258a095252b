// Package safety turns a table of analysis points with precomputed proximity
// and density features into a normalized, queryable safety score field.
package safety

// Feature default policy: a missing distance means "no such infrastructure
// anywhere nearby" and floors the component instead of dividing by zero; a
// missing count contributes nothing.
const (
	missingDistance = 9999.0
	missingCount    = 0.0
)

// AnalysisPoint is one row of the feature table: a sample location plus the
// proximity/count features the upstream feature-engineering job computed for
// it. Optional features are pointers; nil means the column was absent or the
// cell was empty, and the documented default applies. Points are immutable
// once loaded and identified by their row position.
type AnalysisPoint struct {
	Lon float64
	Lat float64

	StreetlightDist  *float64
	StreetlightCount *float64
	PoliceDist       *float64
	PoliceCount      *float64
	StationDist      *float64
	StationCount     *float64

	// NightlifeCounts holds every per-category nightlife count column
	// (bar, pub, restaurant, ...) keyed by column name.
	NightlifeCounts map[string]float64
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (p *AnalysisPoint) streetlightDist() float64  { return orDefault(p.StreetlightDist, missingDistance) }
func (p *AnalysisPoint) streetlightCount() float64 { return orDefault(p.StreetlightCount, missingCount) }
func (p *AnalysisPoint) policeDist() float64       { return orDefault(p.PoliceDist, missingDistance) }
func (p *AnalysisPoint) policeCount() float64      { return orDefault(p.PoliceCount, missingCount) }
func (p *AnalysisPoint) stationDist() float64      { return orDefault(p.StationDist, missingDistance) }
func (p *AnalysisPoint) stationCount() float64     { return orDefault(p.StationCount, missingCount) }

func (p *AnalysisPoint) nightlifeTotal() float64 {
	var sum float64
	for _, v := range p.NightlifeCounts {
		sum += v
	}
	return sum
}
