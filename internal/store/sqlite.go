package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS routes (
	id                 TEXT PRIMARY KEY,
	origin_lon         REAL NOT NULL,
	origin_lat         REAL NOT NULL,
	dest_lon           REAL NOT NULL,
	dest_lat           REAL NOT NULL,
	status             TEXT NOT NULL,
	cache_hit          INTEGER NOT NULL DEFAULT 0,
	safest_length_m    REAL NOT NULL DEFAULT 0,
	safest_mean_safety REAL NOT NULL DEFAULT 0,
	fastest_length_m   REAL NOT NULL DEFAULT 0,
	insight            TEXT,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_routes_status ON routes(status);
CREATE INDEX IF NOT EXISTS idx_routes_created_at ON routes(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRoute(ctx context.Context, rec RouteRecord) (*RouteRecord, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (id, origin_lon, origin_lat, dest_lon, dest_lat, status,
		                     cache_hit, safest_length_m, safest_mean_safety, fastest_length_m,
		                     insight, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OriginLon, rec.OriginLat, rec.DestLon, rec.DestLat, string(rec.Status),
		rec.CacheHit, rec.SafestLen, rec.SafestScore, rec.FastestLen,
		nullIfEmpty(rec.Insight), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert route")
	}
	return &rec, nil
}

func (s *SQLiteStore) GetRoute(ctx context.Context, id string) (*RouteRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, origin_lon, origin_lat, dest_lon, dest_lat, status,
		        cache_hit, safest_length_m, safest_mean_safety, fastest_length_m,
		        insight, created_at
		 FROM routes WHERE id = ?`,
		id,
	)
	return scanRoute(row)
}

func (s *SQLiteStore) ListRoutes(ctx context.Context, filter RouteFilter) ([]RouteRecord, error) {
	query := `SELECT id, origin_lon, origin_lat, dest_lon, dest_lat, status,
	                 cache_hit, safest_length_m, safest_mean_safety, fastest_length_m,
	                 insight, created_at
	          FROM routes WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list routes")
	}
	defer rows.Close()

	var recs []RouteRecord
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list routes iterate")
}

// helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRoute(row scannable) (*RouteRecord, error) {
	var r RouteRecord
	var insight sql.NullString

	err := row.Scan(&r.ID, &r.OriginLon, &r.OriginLat, &r.DestLon, &r.DestLat, &r.Status,
		&r.CacheHit, &r.SafestLen, &r.SafestScore, &r.FastestLen,
		&insight, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("route not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan route")
	}
	r.Insight = insight.String
	return &r, nil
}
