// Package store persists accumulator snapshots and the accepted-uuid audit
// trail to PostgreSQL so a station's in-memory state survives a restart and
// an operator can reconstruct what was accepted and when.
package store

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("store: unable to connect to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("store: ping failed: %w", err)
	}
	log.Println("store: connected to PostgreSQL for accumulator persistence")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes internal/store/schema.sql, resolved relative
// to the process's working directory.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/store/schema.sql")
	if err != nil {
		return fmt.Errorf("store: failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("store: failed to execute schema migrations: %w", err)
	}
	log.Println("store: accumulator schema initialized")
	return nil
}

// SaveBucketSnapshot upserts the current accumulated vector for one bucket.
// Callers pass the raw field-element vector; it is stored in a BIGINT[]
// column, each uint64 reinterpreted bit-for-bit as an int64 (Postgres has no
// unsigned 64-bit type), so values at or above 2^63 are stored as negative
// numbers and read back unchanged.
func (s *PostgresStore) SaveBucketSnapshot(ctx context.Context, index uint32, values []uint64) error {
	sql := `
		INSERT INTO bucket_snapshot (bucket_index, values, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (bucket_index) DO UPDATE
		SET values = EXCLUDED.values, updated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, sql, index, uint64sToInt64s(values))
	if err != nil {
		return fmt.Errorf("store: failed to save bucket %d snapshot: %w", index, err)
	}
	return nil
}

// LoadBucketSnapshots returns every persisted bucket's current vector,
// keyed by bucket index, for warm-starting an Accumulator on restart.
func (s *PostgresStore) LoadBucketSnapshots(ctx context.Context) (map[uint32][]uint64, error) {
	rows, err := s.pool.Query(ctx, `SELECT bucket_index, values FROM bucket_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query bucket snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[uint32][]uint64)
	for rows.Next() {
		var index uint32
		var values []int64
		if err := rows.Scan(&index, &values); err != nil {
			return nil, fmt.Errorf("store: failed to scan bucket snapshot: %w", err)
		}
		out[index] = int64sToUint64s(values)
	}
	return out, rows.Err()
}

// RecordAcceptedUUID appends one accepted request to the audit trail. The
// unique constraint on uuid makes a retried insert for the same request a
// no-op rather than a duplicate audit row.
func (s *PostgresStore) RecordAcceptedUUID(ctx context.Context, id uuid.UUID, bucketIndex uint32) error {
	sql := `
		INSERT INTO accepted_uuid (uuid, bucket_index, accepted_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (uuid) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, sql, id, bucketIndex)
	if err != nil {
		return fmt.Errorf("store: failed to record accepted uuid %s: %w", id, err)
	}
	return nil
}

// CountAccepted returns the total number of accepted requests recorded in
// the audit trail, across all buckets.
func (s *PostgresStore) CountAccepted(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accepted_uuid`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: failed to count accepted uuids: %w", err)
	}
	return n, nil
}

func uint64sToInt64s(v []uint64) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = int64(x)
	}
	return out
}

func int64sToUint64s(v []int64) []uint64 {
	out := make([]uint64, len(v))
	for i, x := range v {
		out[i] = uint64(x)
	}
	return out
}
