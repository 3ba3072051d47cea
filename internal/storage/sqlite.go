//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"lgpkit/internal/compress"
	"lgpkit/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteAvailable = true

func newSQLiteStore(path string, codec compress.Codec) (Store, error) {
	return NewSQLiteStore(path, codec), nil
}

type SQLiteStore struct {
	path  string
	codec compress.Codec

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string, codec compress.Codec) *SQLiteStore {
	if codec == nil {
		codec = compress.NewNoOpCompressor()
	}
	return &SQLiteStore{path: path, codec: codec}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveSolution(ctx context.Context, record model.SolutionRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeSolutionPayload(record, s.codec)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO solutions (id, problem, problem_key, fingerprint, created_at_utc, schema_version, codec_version, compression, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			problem = excluded.problem,
			problem_key = excluded.problem_key,
			fingerprint = excluded.fingerprint,
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			compression = excluded.compression,
			payload = excluded.payload
	`, record.ID, record.Problem, record.ProblemKey, record.Fingerprint, record.CreatedAtUTC,
		record.SchemaVersion, record.CodecVersion, s.codec.Name(), payload)
	return err
}

func (s *SQLiteStore) GetSolution(ctx context.Context, id string) (model.SolutionRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.SolutionRecord{}, false, err
	}

	var compression string
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT compression, payload FROM solutions WHERE id = ?`, id).Scan(&compression, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SolutionRecord{}, false, nil
		}
		return model.SolutionRecord{}, false, err
	}

	record, err := decodeRow(compression, payload)
	if err != nil {
		return model.SolutionRecord{}, false, fmt.Errorf("decode solution %s: %w", id, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListSolutions(ctx context.Context, filter ListFilter) ([]model.SolutionRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, compression, payload FROM solutions`
	args := make([]any, 0, 2)
	if filter.ProblemKey != "" {
		query += ` WHERE problem_key = ?`
		args = append(args, filter.ProblemKey)
	}
	query += ` ORDER BY created_at_utc DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.SolutionRecord, 0)
	for rows.Next() {
		var id, compression string
		var payload []byte
		if err := rows.Scan(&id, &compression, &payload); err != nil {
			return nil, err
		}
		record, err := decodeRow(compression, payload)
		if err != nil {
			return nil, fmt.Errorf("decode solution %s: %w", id, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) DeleteSolution(ctx context.Context, id string) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM solutions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

// decodeRow honours the codec recorded with the row, not the store's current one.
func decodeRow(compression string, payload []byte) (model.SolutionRecord, error) {
	codec, err := compress.Parse(compression)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	return DecodeSolutionPayload(payload, codec)
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS solutions (
			id TEXT PRIMARY KEY,
			problem TEXT NOT NULL,
			problem_key TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			compression TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS solutions_problem_key ON solutions (problem_key);
	`)
	return err
}
