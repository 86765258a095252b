package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/planner"
	"github.com/safepath/safepath/internal/roadnet"
	"github.com/safepath/safepath/internal/router"
	"github.com/safepath/safepath/internal/safety"
	"github.com/safepath/safepath/internal/store"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type scoreResponse struct {
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Score float64 `json:"score"`
}

type routesRequest struct {
	Origin      geo.Coord `json:"origin"`
	Destination geo.Coord `json:"destination"`
	BBox        *geo.BBox `json:"bbox,omitempty"`
}

type routeBody struct {
	Geometry   json.RawMessage `json:"geometry"`
	LengthM    float64         `json:"length_m"`
	MeanSafety float64         `json:"mean_safety"`
	Nodes      int             `json:"nodes"`
}

type routesResponse struct {
	Safest   routeBody `json:"safest"`
	Fastest  routeBody `json:"fastest"`
	CacheHit bool      `json:"cache_hit"`
	Insight  string    `json:"insight,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSafetyScore(w http.ResponseWriter, r *http.Request) {
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if errLon != nil || errLat != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "lon and lat query parameters are required"})
		return
	}

	score, err := s.planner.GetSafetyScore(lon, lat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Lon: lon, Lat: lat, Score: score})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var req routesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "invalid request body"})
		return
	}

	rs, err := s.planner.GetRoutes(r.Context(), req.Origin, req.Destination, req.BBox)
	if err != nil {
		s.recordRoute(req, nil, "", err)
		writeError(w, err)
		return
	}

	resp := routesResponse{
		Safest:   toRouteBody(rs.Safest),
		Fastest:  toRouteBody(rs.Fastest),
		CacheHit: rs.CacheHit,
	}
	if s.insight != nil && s.insight.Enabled() {
		text, err := s.insight.RouteInsight(r.Context(), rs)
		if err != nil {
			zap.L().Warn("server: insight generation failed", zap.Error(err))
		} else {
			resp.Insight = text
		}
	}

	s.recordRoute(req, rs, resp.Insight, nil)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "DISABLED", Error: "route history is not configured"})
		return
	}

	filter := store.RouteFilter{Status: store.RouteStatus(r.URL.Query().Get("status"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	recs, err := s.history.ListRoutes(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Error: err.Error()})
		return
	}
	if recs == nil {
		recs = []store.RouteRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// recordRoute persists the request outcome. Recording failures are logged
// and never affect the response.
func (s *Server) recordRoute(req routesRequest, rs *planner.RouteSet, insightText string, reqErr error) {
	if s.history == nil {
		return
	}

	rec := store.RouteRecord{
		OriginLon: req.Origin.Lon,
		OriginLat: req.Origin.Lat,
		DestLon:   req.Destination.Lon,
		DestLat:   req.Destination.Lat,
		Status:    store.RouteStatusOK,
		Insight:   insightText,
	}
	switch {
	case eris.Is(reqErr, router.ErrNoPath):
		rec.Status = store.RouteStatusNoPath
	case eris.Is(reqErr, roadnet.ErrProviderUnavailable):
		rec.Status = store.RouteStatusProviderUnavailable
	case reqErr != nil:
		rec.Status = store.RouteStatusError
	default:
		rec.CacheHit = rs.CacheHit
		rec.SafestLen = rs.Safest.Length
		rec.SafestScore = rs.Safest.MeanSafety
		rec.FastestLen = rs.Fastest.Length
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.history.CreateRoute(ctx, rec); err != nil {
		zap.L().Warn("server: failed to record route", zap.Error(err))
	}
}

func toRouteBody(p *router.Path) routeBody {
	coords := make([]geom.Coord, len(p.Coords))
	for i, c := range p.Coords {
		coords[i] = geom.Coord{c.Lon, c.Lat}
	}

	body := routeBody{
		LengthM:    p.Length,
		MeanSafety: p.MeanSafety,
		Nodes:      len(p.NodeIDs),
	}

	if len(coords) >= 2 {
		ls := geom.NewLineString(geom.XY)
		if _, err := ls.SetCoords(coords); err == nil {
			if raw, err := geojson.Marshal(ls); err == nil {
				body.Geometry = raw
			}
		}
	} else if len(coords) == 1 {
		pt := geom.NewPoint(geom.XY)
		if _, err := pt.SetCoords(coords[0]); err == nil {
			if raw, err := geojson.Marshal(pt); err == nil {
				body.Geometry = raw
			}
		}
	}
	return body
}

// writeError maps the planner's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, roadnet.ErrProviderUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:  "PROVIDER_UNAVAILABLE",
			Error: "road network download failed; try again or request a smaller area",
		})
	case eris.Is(err, router.ErrNoPath):
		writeJSON(w, http.StatusNotFound, errorBody{
			Code:  "NO_PATH",
			Error: "no path exists between these points in the covered area",
		})
	case eris.Is(err, safety.ErrNoData):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:  "NO_DATA",
			Error: "safety data set is empty",
		})
	case eris.Is(err, safety.ErrNotReady):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:  "NOT_READY",
			Error: "safety scores have not been computed",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}
