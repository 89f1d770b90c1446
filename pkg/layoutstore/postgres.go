package layoutstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netobserve/topoview/pkg/model"
)

// PGStore persists sub-topologies in PostgreSQL. The layout document is
// stored as a snappy-compressed JSON payload; the store never inspects it
// beyond the tolerant decode on read.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, verifies reachability, and ensures the schema.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sub_topologies (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			device_ids  BIGINT[] NOT NULL DEFAULT '{}',
			layout      BYTEA NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// Ping checks database connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Save upserts a sub-topology; the previous layout document is replaced
// wholesale.
func (s *PGStore) Save(ctx context.Context, st *model.SubTopology) error {
	payload, err := json.Marshal(st.Layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	compressed := snappy.Encode(nil, payload)

	ids := make([]int64, len(st.DeviceIDs))
	for i, id := range st.DeviceIDs {
		ids[i] = int64(id)
	}

	query := `
		INSERT INTO sub_topologies (id, name, description, device_ids, layout, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			device_ids = EXCLUDED.device_ids,
			layout = EXCLUDED.layout,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.pool.Exec(ctx, query,
		st.ID, st.Name, st.Description, ids, compressed, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save sub-topology: %w", err)
	}
	return nil
}

// Get retrieves a sub-topology by id.
func (s *PGStore) Get(ctx context.Context, id string) (*model.SubTopology, error) {
	query := `
		SELECT id, name, description, device_ids, layout, created_at, updated_at
		FROM sub_topologies
		WHERE id = $1
	`
	st, err := scanSubTopology(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewError("Get").Document(id).Cause(model.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to get sub-topology: %w", err)
	}
	return st, nil
}

// List returns every stored sub-topology.
func (s *PGStore) List(ctx context.Context) ([]*model.SubTopology, error) {
	query := `
		SELECT id, name, description, device_ids, layout, created_at, updated_at
		FROM sub_topologies
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-topologies: %w", err)
	}
	defer rows.Close()

	var out []*model.SubTopology
	for rows.Next() {
		st, err := scanSubTopology(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-topology: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Delete removes a sub-topology; missing ids are not an error.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sub_topologies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sub-topology: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubTopology(row rowScanner) (*model.SubTopology, error) {
	st := &model.SubTopology{}
	var ids []int64
	var compressed []byte

	err := row.Scan(&st.ID, &st.Name, &st.Description, &ids, &compressed, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}

	st.DeviceIDs = make([]uint64, len(ids))
	for i, id := range ids {
		st.DeviceIDs[i] = uint64(id)
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		// Corrupt payload degrades to automatic placement.
		st.Layout = model.LayoutDocument{NodePositions: map[uint64]model.Position{}}
		return st, nil
	}
	st.Layout = ParseDocument(payload)
	return st, nil
}
