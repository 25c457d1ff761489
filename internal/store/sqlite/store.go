// Package sqlite persists paper records in a single-table SQLite store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"paper-rag/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS papers (
	url TEXT PRIMARY KEY,
	title TEXT,
	arxiv_link TEXT,
	published TEXT,
	authors TEXT,
	summary TEXT
)`

// Store is the SQLite-backed metadata store, keyed by identifier with
// replace-on-conflict upsert semantics.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewStore opens (creating if needed) the papers database at dbPath.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating papers table: %w", err)
	}
	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// UpsertAll writes all records in one transaction: either every record of
// the call commits or none do. An existing identifier is replaced
// wholesale, never merged field-by-field. On storage failure it returns
// zero affected rows and a StorageError; the caller may continue with its
// in-memory copy.
func (s *Store) UpsertAll(ctx context.Context, records []domain.PaperRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	affected, err := s.upsertTx(ctx, records)
	if err != nil {
		s.logger.Error("metadata upsert failed, durability lost",
			zap.Int("records", len(records)),
			zap.Error(err))
		return 0, &domain.StorageError{Op: "upsert", Err: err}
	}
	return affected, nil
}

func (s *Store) upsertTx(ctx context.Context, records []domain.PaperRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO papers
		(url, title, arxiv_link, published, authors, summary)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	total := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx,
			r.Identifier, r.Title, r.DocumentLocator, r.Published, r.Authors, r.Summary)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// GetAll returns every stored record ordered by identifier.
func (s *Store) GetAll(ctx context.Context) ([]domain.PaperRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, title, arxiv_link, published, authors, summary
		FROM papers ORDER BY url`)
	if err != nil {
		return nil, &domain.StorageError{Op: "get_all", Err: err}
	}
	defer rows.Close()

	var records []domain.PaperRecord
	for rows.Next() {
		var r domain.PaperRecord
		if err := rows.Scan(&r.Identifier, &r.Title, &r.DocumentLocator,
			&r.Published, &r.Authors, &r.Summary); err != nil {
			return nil, &domain.StorageError{Op: "get_all", Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get_all", Err: err}
	}
	return records, nil
}

// Get returns the record for identifier or ErrNotFound.
func (s *Store) Get(ctx context.Context, identifier string) (domain.PaperRecord, error) {
	var r domain.PaperRecord
	err := s.db.QueryRowContext(ctx, `SELECT url, title, arxiv_link, published, authors, summary
		FROM papers WHERE url = ?`, identifier).
		Scan(&r.Identifier, &r.Title, &r.DocumentLocator, &r.Published, &r.Authors, &r.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaperRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PaperRecord{}, &domain.StorageError{Op: "get", Err: err}
	}
	return r, nil
}
