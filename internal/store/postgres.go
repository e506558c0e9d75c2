package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"telemetry-service/internal/models"
)

// PostgresStore implements Store on a Postgres table, for deployments that
// want the recent history to survive a restart. The same bounded-capacity
// contract applies: rows past capacity are trimmed oldest-first on append.
type PostgresStore struct {
	pool         *pgxpool.Pool
	capacity     int
	defaultLimit int
	maxLimit     int
}

// NewPostgresStore connects a pool and ensures the readings table exists.
func NewPostgresStore(ctx context.Context, dsn string, capacity, defaultLimit, maxLimit int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	s := &PostgresStore{pool: pool, capacity: capacity, defaultLimit: defaultLimit, maxLimit: maxLimit}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS readings (
        id BIGSERIAL PRIMARY KEY,
        device_id TEXT NOT NULL,
        location TEXT NOT NULL,
        methane DOUBLE PRECISION NOT NULL,
        temperature DOUBLE PRECISION NOT NULL,
        humidity DOUBLE PRECISION NOT NULL,
        ts BIGINT NOT NULL,
        error TEXT NOT NULL DEFAULT ''
    )`)
	if err != nil {
		return fmt.Errorf("%w: create readings table: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Append inserts the reading and trims rows past capacity, oldest first by
// insertion id so arrival order decides eviction, not sender timestamps.
func (s *PostgresStore) Append(ctx context.Context, r models.Reading) error {
	_, err := s.pool.Exec(ctx, `
    INSERT INTO readings (device_id, location, methane, temperature, humidity, ts, error)
    VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.DeviceID, r.Location, r.Methane, r.Temperature, r.Humidity, r.Timestamp, r.Error)
	if err != nil {
		return fmt.Errorf("%w: insert reading: %v", ErrStoreUnavailable, err)
	}

	_, err = s.pool.Exec(ctx, `
    DELETE FROM readings
    WHERE id <= (SELECT id FROM readings ORDER BY id DESC OFFSET $1 LIMIT 1)`,
		s.capacity)
	if err != nil {
		return fmt.Errorf("%w: trim readings: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Query returns the most recent matching readings, ascending by timestamp.
func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]models.Reading, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	q := `SELECT device_id, location, methane, temperature, humidity, ts, error FROM readings`
	args := []interface{}{}
	where := ""
	if f.Location != "" {
		args = append(args, f.Location)
		where = fmt.Sprintf(" WHERE location = $%d", len(args))
	}
	if f.Since > 0 {
		args = append(args, f.Since)
		if where == "" {
			where = fmt.Sprintf(" WHERE ts > $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND ts > $%d", len(args))
		}
	}
	args = append(args, limit)
	q += where + fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query readings: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []models.Reading
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.DeviceID, &r.Location, &r.Methane, &r.Temperature, &r.Humidity, &r.Timestamp, &r.Error); err != nil {
			return nil, fmt.Errorf("%w: scan reading: %v", ErrStoreUnavailable, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrStoreUnavailable, err)
	}

	// Rows arrive newest-first by arrival id; present ascending timestamps.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
