package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"cluedo-custom/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS game (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// SQLite stores one row per game, so a failed write only touches that game.
type SQLite struct {
	db *sqlx.DB
}

type gameRow struct {
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) LoadAll() (map[string]*game.Game, error) {
	var rows []gameRow
	if err := s.db.Select(&rows, `SELECT code, name, status, data, updated_at FROM game`); err != nil {
		return nil, err
	}
	out := make(map[string]*game.Game, len(rows))
	for _, row := range rows {
		var g game.Game
		if err := json.Unmarshal([]byte(row.Data), &g); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", row.Code, err)
		}
		out[row.Code] = &g
	}
	return out, nil
}

func (s *SQLite) Save(g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExec(`
		INSERT INTO game (code, name, status, data, updated_at)
		VALUES (:code, :name, :status, :data, :updated_at)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		gameRow{
			Code:      g.ID,
			Name:      g.Name,
			Status:    string(g.Status),
			Data:      string(data),
			UpdatedAt: time.Now().UTC(),
		})
	return err
}

func (s *SQLite) Delete(code string) error {
	_, err := s.db.Exec(`DELETE FROM game WHERE code = ?`, code)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
