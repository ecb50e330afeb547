// Package docstore provides a SQLite-backed document store: named collections
// of JSON documents addressed by an "_id" key and queried by field equality.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
	"pblstudio/internal/docstore/migrations"
)

// FetchLimit caps every multi-document read.
const FetchLimit = 100

// IDKey is the document key holding the entity identifier.
const IDKey = "_id"

var ErrAlreadyExists = errors.New("document already exists")

var criteriaKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Document is the keyed-mapping form of an entity.
type Document map[string]any

// Criteria selects documents whose top-level fields equal the given values.
type Criteria map[string]any

// Store persists document collections in one SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite file at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
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

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errors.New("storage is not configured")
	}
	return nil
}

// Insert writes documents to collection in one transaction.
func (s *Store) Insert(ctx context.Context, collection string, docs ...Document) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert %s: %w", collection, err)
	}

	createdAt := time.Now().UTC().UnixMilli()
	for _, doc := range docs {
		id, ok := doc[IDKey].(string)
		if !ok || strings.TrimSpace(id) == "" {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: document %s is required", collection, IDKey)
		}
		body, err := json.Marshal(doc)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode %s document %q: %w", collection, id, err)
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO documents (collection, id, body, created_at) VALUES (?, ?, ?, ?)`,
			collection,
			id,
			string(body),
			createdAt,
		)
		if err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return fmt.Errorf("insert %s document %q: %w", collection, id, ErrAlreadyExists)
			}
			return fmt.Errorf("insert %s document %q: %w", collection, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert %s: %w", collection, err)
	}
	return nil
}

// Find returns up to limit documents of collection matching criteria in insertion order.
func (s *Store) Find(ctx context.Context, collection string, criteria Criteria, limit int) ([]Document, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > FetchLimit {
		limit = FetchLimit
	}

	where, args, err := buildWhere(collection, criteria)
	if err != nil {
		return nil, err
	}
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT body FROM documents WHERE `+where+` ORDER BY rowid LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0, 8)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return docs, nil
}

// Count returns the number of documents of collection matching criteria.
func (s *Store) Count(ctx context.Context, collection string, criteria Criteria) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	where, args, err := buildWhere(collection, criteria)
	if err != nil {
		return 0, err
	}

	var count int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

func buildWhere(collection string, criteria Criteria) (string, []any, error) {
	if strings.TrimSpace(collection) == "" {
		return "", nil, errors.New("collection name is required")
	}

	keys := make([]string, 0, len(criteria))
	for key := range criteria {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	clauses := []string{"collection = ?"}
	args := []any{collection}
	for _, key := range keys {
		if !criteriaKeyPattern.MatchString(key) {
			return "", nil, fmt.Errorf("invalid criteria key %q", key)
		}

		value, err := criteriaValue(criteria[key])
		if err != nil {
			return "", nil, fmt.Errorf("criteria %q: %w", key, err)
		}
		if value == nil {
			clauses = append(clauses, "json_extract(body, ?) IS NULL")
			args = append(args, "$."+key)
			continue
		}
		clauses = append(clauses, "json_extract(body, ?) = ?")
		args = append(args, "$."+key, value)
	}

	return strings.Join(clauses, " AND "), args, nil
}

func criteriaValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string, int, int32, int64, float64:
		return typed, nil
	case bool:
		if typed {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n, nil
		}
		return typed.Float64()
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func decodeDocument(body string) (Document, error) {
	decoder := json.NewDecoder(strings.NewReader(body))
	decoder.UseNumber()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
