package safety

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Feature table column names, addressed exactly as the upstream
// feature-engineering job writes them.
const (
	colLongitude        = "longitude"
	colLatitude         = "latitude"
	colStreetlightDist  = "distance_to_nearest_streetlight"
	colStreetlightCount = "count_of_nearby_streetlight_500m_approx"
	colPoliceDist       = "distance_to_nearest_policestation"
	colPoliceCount      = "count_of_nearby_policestation_500m_approx"
	colStationDist      = "distance_to_nearest_transportstation"
	colStationCount     = "count_of_nearby_transportstation_500m_approx"
)

// LoadCSV parses the merged feature table. longitude/latitude are mandatory
// columns; every other column is an optional numeric feature. Any column
// starting with "count_" that is not one of the three named infrastructure
// counts is treated as a nightlife category count. Absent columns and empty
// cells mean "no data" and take the documented defaults at scoring time.
func LoadCSV(r io.Reader) ([]AnalysisPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("safety: feature table is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "safety: read header")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	lonIdx, ok := colIdx[colLongitude]
	if !ok {
		return nil, eris.Errorf("safety: feature table missing %q column", colLongitude)
	}
	latIdx, ok := colIdx[colLatitude]
	if !ok {
		return nil, eris.Errorf("safety: feature table missing %q column", colLatitude)
	}

	var nightlifeCols []string
	for name := range colIdx {
		if !strings.HasPrefix(name, "count_") {
			continue
		}
		switch name {
		case colStreetlightCount, colPoliceCount, colStationCount:
			continue
		}
		nightlifeCols = append(nightlifeCols, name)
	}

	var points []AnalysisPoint
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "safety: read row %d", line)
		}
		line++

		if lonIdx >= len(record) || latIdx >= len(record) {
			return nil, eris.Errorf("safety: row %d: too few columns for coordinates", line)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[lonIdx]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "safety: row %d: parse longitude", line)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "safety: row %d: parse latitude", line)
		}

		p := AnalysisPoint{
			Lon:              lon,
			Lat:              lat,
			StreetlightDist:  cell(record, colIdx, colStreetlightDist),
			StreetlightCount: cell(record, colIdx, colStreetlightCount),
			PoliceDist:       cell(record, colIdx, colPoliceDist),
			PoliceCount:      cell(record, colIdx, colPoliceCount),
			StationDist:      cell(record, colIdx, colStationDist),
			StationCount:     cell(record, colIdx, colStationCount),
		}
		for _, name := range nightlifeCols {
			if v := cell(record, colIdx, name); v != nil {
				if p.NightlifeCounts == nil {
					p.NightlifeCounts = make(map[string]float64, len(nightlifeCols))
				}
				p.NightlifeCounts[name] = *v
			}
		}
		points = append(points, p)
	}

	zap.L().Info("safety: loaded feature table",
		zap.Int("points", len(points)),
		zap.Int("nightlife_columns", len(nightlifeCols)),
	)
	return points, nil
}

// LoadCSVFile opens and parses a feature table from disk.
func LoadCSVFile(path string) ([]AnalysisPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "safety: open feature table %s", path)
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(f)
}

// cell parses one optional numeric field. Missing column, empty cell, or a
// NaN all mean "no data".
func cell(record []string, colIdx map[string]int, name string) *float64 {
	i, ok := colIdx[name]
	if !ok || i >= len(record) {
		return nil
	}
	s := strings.TrimSpace(record[i])
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
