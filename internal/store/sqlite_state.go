package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskline/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite stores tasks in a single table, one row per task, ordered by position.
type SQLite struct {
	Path string
}

func (s SQLite) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			category TEXT NOT NULL,
			notes TEXT NOT NULL,
			users_json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s SQLite) Load(ctx context.Context) ([]model.Task, error) {
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, err
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name, start_date, end_date, category, notes, users_json FROM tasks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var name, startS, endS, usersJSON string
		t := model.Task{}
		if err := rows.Scan(&name, &startS, &endS, &t.Category, &t.Notes, &usersJSON); err != nil {
			return nil, err
		}
		t.Name = name
		if t.Start, err = model.ParseDate(startS); err != nil {
			return nil, err
		}
		if t.End, err = model.ParseDate(endS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(usersJSON), &t.AssignedUsers); err != nil {
			return nil, err
		}
		if t.AssignedUsers == nil {
			t.AssignedUsers = []string{}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// Save replaces every row in one transaction.
func (s SQLite) Save(ctx context.Context, tasks []model.Task) error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("sqlite store: missing path")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	for i, t := range tasks {
		users := t.AssignedUsers
		if users == nil {
			users = []string{}
		}
		usersJSON, _ := json.Marshal(users)
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(name, position, start_date, end_date, category, notes, users_json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Name, i, t.Start.String(), t.End.String(), t.Category, t.Notes, string(usersJSON), nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s SQLite) Fingerprint() string { return fileStamp(s.Path, s.Path+"-wal") }

func (s SQLite) Describe() string { return "sqlite:" + s.Path }
