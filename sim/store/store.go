// Package store persists generated events in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/store/migrations"
)

// ErrNotFound indicates that no event with the requested ID is stored.
var ErrNotFound = errors.New("store: event not found")

// Store persists events, their vertices and primaries.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite event store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveEvent inserts ev with all its vertices and primaries in one
// transaction. Saving an event ID twice fails.
func (s *Store) SaveEvent(ctx context.Context, ev *sim.Event) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO events (event_id, num_vertices, num_primaries, created_at) VALUES (?, ?, ?, ?)`,
		ev.ID, len(ev.Vertices), ev.NumPrimaries(), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert event %d: %w", ev.ID, err)
	}

	vertexStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vertices (event_id, vertex_index, x_mm, y_mm, z_mm, t_ns) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vertex insert: %w", err)
	}
	defer func() { _ = vertexStmt.Close() }()

	primaryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO primaries (
		   event_id, vertex_index, primary_index, particle,
		   px_ev, py_ev, pz_ev, pol_x, pol_y, pol_z
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare primary insert: %w", err)
	}
	defer func() { _ = primaryStmt.Close() }()

	for vi, v := range ev.Vertices {
		if _, err = vertexStmt.ExecContext(ctx, ev.ID, vi, v.Position.X, v.Position.Y, v.Position.Z, v.Time); err != nil {
			return fmt.Errorf("insert vertex %d of event %d: %w", vi, ev.ID, err)
		}
		for pi, p := range v.Primaries {
			if _, err = primaryStmt.ExecContext(ctx, ev.ID, vi, pi, p.Particle,
				p.Momentum.X, p.Momentum.Y, p.Momentum.Z,
				p.Polarization.X, p.Polarization.Y, p.Polarization.Z,
			); err != nil {
				return fmt.Errorf("insert primary %d of event %d: %w", pi, ev.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event %d: %w", ev.ID, err)
	}
	return nil
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CountPrimaries returns the number of primaries stored for one event.
func (s *Store) CountPrimaries(ctx context.Context, eventID int) (int, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT num_primaries FROM events WHERE event_id = ?`, eventID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, eventID)
	}
	if err != nil {
		return 0, fmt.Errorf("count primaries of event %d: %w", eventID, err)
	}
	return n, nil
}

// LoadEvent reads back a stored event with vertices and primaries in their
// original order.
func (s *Store) LoadEvent(ctx context.Context, eventID int) (*sim.Event, error) {
	var numVertices int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT num_vertices FROM events WHERE event_id = ?`, eventID).Scan(&numVertices)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("load event %d: %w", eventID, err)
	}

	ev := sim.NewEvent(eventID)
	vertexRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT x_mm, y_mm, z_mm, t_ns FROM vertices WHERE event_id = ? ORDER BY vertex_index`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load vertices of event %d: %w", eventID, err)
	}
	defer func() { _ = vertexRows.Close() }()
	for vertexRows.Next() {
		var pos r3.Vec
		var t float64
		if err := vertexRows.Scan(&pos.X, &pos.Y, &pos.Z, &t); err != nil {
			return nil, fmt.Errorf("scan vertex of event %d: %w", eventID, err)
		}
		ev.AddPrimaryVertex(sim.NewVertex(pos, t, 0))
	}
	if err := vertexRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vertices of event %d: %w", eventID, err)
	}

	primaryRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT vertex_index, particle, px_ev, py_ev, pz_ev, pol_x, pol_y, pol_z
		 FROM primaries WHERE event_id = ? ORDER BY vertex_index, primary_index`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load primaries of event %d: %w", eventID, err)
	}
	defer func() { _ = primaryRows.Close() }()
	for primaryRows.Next() {
		var vi int
		var p sim.PrimaryParticle
		if err := primaryRows.Scan(&vi, &p.Particle,
			&p.Momentum.X, &p.Momentum.Y, &p.Momentum.Z,
			&p.Polarization.X, &p.Polarization.Y, &p.Polarization.Z,
		); err != nil {
			return nil, fmt.Errorf("scan primary of event %d: %w", eventID, err)
		}
		if vi < 0 || vi >= len(ev.Vertices) {
			return nil, fmt.Errorf("primary of event %d references vertex %d", eventID, vi)
		}
		ev.Vertices[vi].AddPrimary(p)
	}
	if err := primaryRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate primaries of event %d: %w", eventID, err)
	}
	if len(ev.Vertices) != numVertices {
		return nil, fmt.Errorf("event %d: stored %d vertices, found %d", eventID, numVertices, len(ev.Vertices))
	}
	return ev, nil
}
