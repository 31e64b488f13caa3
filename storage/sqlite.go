package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/c360studio/semprov/graph"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// SQLiteState keeps graph state in a SQLite database, one row per node,
// edge, lot and cached resolution.
type SQLiteState struct {
	conn *sql.DB
	path string
}

// OpenSQLiteState opens or creates the database at path.
func OpenSQLiteState(path string) (*SQLiteState, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One writer; WAL lets readers proceed.
	conn.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteState{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (db *SQLiteState) Close() error {
	return db.conn.Close()
}

// Load reads the snapshot written by the last Save. A database that was
// never saved to returns ErrNotFound.
func (db *SQLiteState) Load(ctx context.Context) (*graph.State, error) {
	var version string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load graph state from %s: %w", db.path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying state version: %w", err)
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, fmt.Errorf("state version %q: %w", version, graph.ErrCorruptState)
	}
	s := &graph.State{Version: v}

	rows, err := db.conn.QueryContext(ctx, `SELECT handle, catalog, lot, date, uri FROM nodes ORDER BY handle`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	for rows.Next() {
		var h int
		var n graph.NodeState
		if err := rows.Scan(&h, &n.Key.Catalog, &n.Key.Lot, &n.Key.Date, &n.URI); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		if h != len(s.Nodes) {
			rows.Close()
			return nil, fmt.Errorf("node handle %d out of sequence: %w", h, graph.ErrCorruptState)
		}
		s.Nodes = append(s.Nodes, n)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}

	rows, err = db.conn.QueryContext(ctx, `SELECT from_node, to_node, cited, accepted FROM edges ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	for rows.Next() {
		var e graph.EdgeState
		if err := rows.Scan(&e.From, &e.To, &e.Cited, &e.Accepted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		s.Edges = append(s.Edges, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reading edges: %w", err)
	}

	rows, err = db.conn.QueryContext(ctx, `SELECT catalog, lot, date, count FROM lots ORDER BY catalog, lot, date`)
	if err != nil {
		return nil, fmt.Errorf("querying lots: %w", err)
	}
	for rows.Next() {
		var l graph.LotState
		if err := rows.Scan(&l.Lot.Catalog, &l.Lot.Lot, &l.Lot.Date, &l.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning lot: %w", err)
		}
		s.Lots = append(s.Lots, l)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reading lots: %w", err)
	}

	rows, err = db.conn.QueryContext(ctx, `SELECT node, canonical, steps FROM canonical ORDER BY node`)
	if err != nil {
		return nil, fmt.Errorf("querying canonical cache: %w", err)
	}
	for rows.Next() {
		var c graph.CanonicalState
		if err := rows.Scan(&c.Node, &c.Canonical, &c.Steps); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning canonical: %w", err)
		}
		s.Canonical = append(s.Canonical, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reading canonical cache: %w", err)
	}
	return s, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

// Save replaces the stored state in one transaction.
func (db *SQLiteState) Save(ctx context.Context, s *graph.State) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"canonical", "edges", "lots", "nodes", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, `INSERT INTO nodes (handle, catalog, lot, date, uri) VALUES (?, ?, ?, ?, ?)`,
		len(s.Nodes), func(i int) []any {
			n := s.Nodes[i]
			return []any{i, n.Key.Catalog, n.Key.Lot, n.Key.Date, n.URI}
		}); err != nil {
		return fmt.Errorf("inserting nodes: %w", err)
	}
	if err := insertAll(ctx, tx, `INSERT INTO edges (idx, from_node, to_node, cited, accepted) VALUES (?, ?, ?, ?, ?)`,
		len(s.Edges), func(i int) []any {
			e := s.Edges[i]
			return []any{i, e.From, e.To, e.Cited, e.Accepted}
		}); err != nil {
		return fmt.Errorf("inserting edges: %w", err)
	}
	if err := insertAll(ctx, tx, `INSERT INTO lots (catalog, lot, date, count) VALUES (?, ?, ?, ?)`,
		len(s.Lots), func(i int) []any {
			l := s.Lots[i]
			return []any{l.Lot.Catalog, l.Lot.Lot, l.Lot.Date, l.Count}
		}); err != nil {
		return fmt.Errorf("inserting lots: %w", err)
	}
	if err := insertAll(ctx, tx, `INSERT INTO canonical (node, canonical, steps) VALUES (?, ?, ?)`,
		len(s.Canonical), func(i int) []any {
			c := s.Canonical[i]
			return []any{c.Node, c.Canonical, c.Steps}
		}); err != nil {
		return fmt.Errorf("inserting canonical cache: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(s.Version)); err != nil {
		return fmt.Errorf("writing state version: %w", err)
	}
	return tx.Commit()
}

func insertAll(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}
