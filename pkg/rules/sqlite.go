// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// SQLiteStore serves rule sets from a SQLite database. Rules are returned in
// ascending position order within an annotation.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens or creates the rule database at path and applies pending
// migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rules (
		annotation  TEXT NOT NULL,
		position    INTEGER NOT NULL,
		id          TEXT NOT NULL,
		pattern     TEXT NOT NULL,
		fields_json TEXT NOT NULL DEFAULT '{}',
		tags_json   TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (annotation, position),
		UNIQUE (annotation, id)
	);`,
	`CREATE TABLE IF NOT EXISTS imports (
		id          INTEGER PRIMARY KEY,
		source      TEXT NOT NULL,
		rule_count  INTEGER NOT NULL,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	var version int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return err
	}

	for i, m := range migrations {
		v := i + 1
		if v <= version {
			continue
		}
		tx, err := s.conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Rules implements Store.
func (s *SQLiteStore) Rules(ctx context.Context, name string) ([]Rule, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, pattern, fields_json, tags_json FROM rules WHERE annotation = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query rules for %q: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Rule
	for rows.Next() {
		var (
			r                    Rule
			fieldsJSON, tagsJSON string
		)
		if err := rows.Scan(&r.ID, &r.Pattern, &fieldsJSON, &tagsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &r.Fields); err != nil {
			return nil, fmt.Errorf("rule %q: decode fields: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("rule %q: decode tags: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound(name)
	}
	return out, nil
}

// Names implements Store.
func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT DISTINCT annotation FROM rules ORDER BY annotation`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// lockTimeout bounds how long Import waits for a concurrent importer.
const lockTimeout = 30 * time.Second

// Import replaces the rule sets named in sets with their new contents, in a
// single transaction. Writers are serialized across processes by an
// advisory lock next to the database file. Rule sets not named in sets are
// left untouched.
func (s *SQLiteStore) Import(ctx context.Context, source string, sets map[string][]Rule) (int, error) {
	lock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return 0, fmt.Errorf("acquire import lock: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("acquire import lock: %s is held by another process", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	count := 0
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE annotation = ?`, name); err != nil {
			return 0, err
		}
		for pos, r := range sets[name] {
			if err := r.Validate(); err != nil {
				return 0, fmt.Errorf("annotation %q: %w", name, err)
			}
			fields, err := json.Marshal(orEmptyFields(r.Fields))
			if err != nil {
				return 0, err
			}
			tags, err := json.Marshal(orEmptyTags(r.Tags))
			if err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rules (annotation, position, id, pattern, fields_json, tags_json) VALUES (?, ?, ?, ?, ?, ?)`,
				name, pos, r.ID, r.Pattern, string(fields), string(tags)); err != nil {
				return 0, fmt.Errorf("annotation %q rule %q: %w", name, r.ID, err)
			}
			count++
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO imports (source, rule_count) VALUES (?, ?)`, source, count); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func orEmptyFields(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyTags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
