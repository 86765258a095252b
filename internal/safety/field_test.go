package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fl(v float64) *float64 { return &v }

func pointAt(lon, lat float64) AnalysisPoint {
	return AnalysisPoint{Lon: lon, Lat: lat}
}

func TestField_ScoreAt_BeforeCompute(t *testing.T) {
	f, err := NewField([]AnalysisPoint{pointAt(77.1, 28.5)})
	require.NoError(t, err)

	_, err = f.ScoreAt(77.1, 28.5)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestField_ScoreAt_NoData(t *testing.T) {
	f, err := NewField(nil)
	require.NoError(t, err)

	_, err = f.ScoreAt(77.1, 28.5)
	assert.ErrorIs(t, err, ErrNoData)

	// NoData wins even after a compute call.
	f.ComputeScores(DefaultWeights())
	_, err = f.ScoreAt(77.1, 28.5)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestField_ComputeScores_RangeAndNormalization(t *testing.T) {
	points := []AnalysisPoint{
		{Lon: 77.10, Lat: 28.50, StreetlightDist: fl(0), StreetlightCount: fl(12), PoliceDist: fl(50)},
		{Lon: 77.20, Lat: 28.55, StreetlightDist: fl(120), PoliceCount: fl(2)},
		{Lon: 77.30, Lat: 28.60, StationDist: fl(10), StationCount: fl(3)},
		{Lon: 77.40, Lat: 28.45, NightlifeCounts: map[string]float64{"count_bar": 4, "count_pub": 2}},
	}
	f, err := NewField(points)
	require.NoError(t, err)
	f.ComputeScores(DefaultWeights())

	sawMin, sawMax := false, false
	for i := range points {
		s, err := f.Score(i)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		if s == 0.0 {
			sawMin = true
		}
		if s == 1.0 {
			sawMax = true
		}
	}
	// Min-max normalization pins both extremes.
	assert.True(t, sawMin)
	assert.True(t, sawMax)
}

func TestField_ComputeScores_AllEqualIsOne(t *testing.T) {
	// Identical feature rows at distinct coordinates: max == min, so every
	// normalized score is defined to be exactly 1.0.
	points := []AnalysisPoint{
		{Lon: 77.1, Lat: 28.5, StreetlightDist: fl(10)},
		{Lon: 77.2, Lat: 28.6, StreetlightDist: fl(10)},
		{Lon: 77.3, Lat: 28.7, StreetlightDist: fl(10)},
	}
	f, err := NewField(points)
	require.NoError(t, err)
	f.ComputeScores(DefaultWeights())

	for i := range points {
		s, err := f.Score(i)
		require.NoError(t, err)
		assert.Equal(t, 1.0, s)
	}
}

func TestField_ScoreAt_Idempotent(t *testing.T) {
	points := []AnalysisPoint{
		{Lon: 77.10, Lat: 28.50, StreetlightDist: fl(5)},
		{Lon: 77.20, Lat: 28.55, StreetlightDist: fl(500)},
	}
	f, err := NewField(points)
	require.NoError(t, err)
	f.ComputeScores(DefaultWeights())

	first, err := f.ScoreAt(77.12, 28.51)
	require.NoError(t, err)
	for range 5 {
		again, err := f.ScoreAt(77.12, 28.51)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestField_StreetlightDistanceOrdering(t *testing.T) {
	// Four points, streetlight distances [0, 50, missing, missing]. The
	// distance-0 point scores highest; the two missing-data points never
	// exceed the distance-50 point.
	points := []AnalysisPoint{
		{Lon: 77.10, Lat: 28.50, StreetlightDist: fl(0)},
		{Lon: 77.20, Lat: 28.55, StreetlightDist: fl(50)},
		{Lon: 77.30, Lat: 28.60},
		{Lon: 77.40, Lat: 28.65},
	}
	f, err := NewField(points)
	require.NoError(t, err)
	f.ComputeScores(DefaultWeights())

	s0, err := f.Score(0)
	require.NoError(t, err)
	s1, err := f.Score(1)
	require.NoError(t, err)
	s2, err := f.Score(2)
	require.NoError(t, err)
	s3, err := f.Score(3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, s0)
	assert.Greater(t, s0, s1)
	assert.LessOrEqual(t, s2, s1)
	assert.LessOrEqual(t, s3, s1)
	assert.Equal(t, s2, s3)
}

func TestField_ScoreAt_NearestNeighbor(t *testing.T) {
	points := []AnalysisPoint{
		{Lon: 77.00, Lat: 28.40, StreetlightDist: fl(0), PoliceDist: fl(0)},
		{Lon: 77.50, Lat: 28.90},
	}
	f, err := NewField(points)
	require.NoError(t, err)
	f.ComputeScores(DefaultWeights())

	near, err := f.ScoreAt(77.01, 28.41)
	require.NoError(t, err)
	far, err := f.ScoreAt(77.49, 28.89)
	require.NoError(t, err)

	assert.Equal(t, 1.0, near)
	assert.Equal(t, 0.0, far)
}

func TestField_Extent(t *testing.T) {
	points := []AnalysisPoint{
		pointAt(77.1, 28.5),
		pointAt(77.4, 28.8),
		pointAt(77.2, 28.3),
	}
	f, err := NewField(points)
	require.NoError(t, err)

	box, err := f.Extent()
	require.NoError(t, err)
	assert.Equal(t, 28.8, box.North)
	assert.Equal(t, 28.3, box.South)
	assert.Equal(t, 77.4, box.East)
	assert.Equal(t, 77.1, box.West)

	empty, err := NewField(nil)
	require.NoError(t, err)
	_, err = empty.Extent()
	assert.ErrorIs(t, err, ErrNoData)
}
