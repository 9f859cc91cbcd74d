package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/legalmind/internal/domain/analysis"
)

// DefaultHistoryLimit applies when RecentAnalyses gets a non-positive limit.
const DefaultHistoryLimit = 50

// Store opens a fresh connection for every operation and closes it before returning.
type Store struct {
	dialect      Dialect
	dsn          string
	historyLimit int
}

func NewStore(d Dialect, dsn string, historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{dialect: d, dsn: dsn, historyLimit: historyLimit}
}

// Dialect returns the engine name, e.g. "sqlite".
func (s *Store) Dialect() string { return s.dialect.Name }

func (s *Store) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	if s.dialect.Prepare != nil {
		if err := s.dialect.Prepare(s.dsn); err != nil {
			return err
		}
	}
	db, err := sql.Open(s.dialect.Driver, s.dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return fn(db)
}

// Init creates the tables and the history index if they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	err := s.withDB(ctx, func(db *sql.DB) error {
		for _, stmt := range s.dialect.Schema {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.StorageError{Op: "init", Err: err}
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	err := s.withDB(ctx, func(*sql.DB) error { return nil })
	if err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Check satisfies the health checker contract
func (s *Store) Check(ctx context.Context) error { return s.Ping(ctx) }

// SaveAnalysis stores text once per hash and always appends a new analysis row.
func (s *Store) SaveAnalysis(ctx context.Context, text string, r *domain.Result) error {
	if r == nil {
		return &domain.StorageError{Op: "save", Err: errors.New("nil result")}
	}
	hash := domain.TextHash(text)

	const insertAnalysis = `
INSERT INTO analyses (text_hash, original_length, summary, processing_time)
VALUES (?, ?, ?, ?)`

	err := s.withDB(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, s.dialect.rebind(s.dialect.InsertDocument), hash, text); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(insertAnalysis),
			hash, r.OriginalLength, r.Summary, r.ProcessingTime,
		); err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}

const selectRecord = `
SELECT a.id, a.created_at, a.text_hash, a.original_length, a.summary, a.processing_time, d.content
FROM analyses a
JOIN document_texts d ON d.text_hash = a.text_hash`

// RecentAnalyses returns at most limit records, newest first.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	q := selectRecord + `
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?`

	out := []*domain.Record{}
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, s.dialect.rebind(q), limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "recent", Err: err}
	}
	return out, nil
}

// GetAnalysis returns one record with its source text.
func (s *Store) GetAnalysis(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	q := selectRecord + `
WHERE a.id = ?`

	var rec *domain.Record
	err := s.withDB(ctx, func(db *sql.DB) error {
		var err error
		rec, err = scanRecord(db.QueryRowContext(ctx, s.dialect.rebind(q), int64(id)))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		rec     domain.Record
		id      int64
		created scanTime
	)
	if err := row.Scan(&id, &created, &rec.TextHash, &rec.OriginalLength, &rec.Summary, &rec.ProcessingTime, &rec.Content); err != nil {
		return nil, err
	}
	rec.ID = domain.RecordID(id)
	rec.CreatedAt = created.Time
	return &rec, nil
}
