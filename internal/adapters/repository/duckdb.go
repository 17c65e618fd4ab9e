package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver

	"github.com/apexlabs/flyrank/internal/domain/model"
	"github.com/apexlabs/flyrank/pkg/metrics"
)

// Schema statements. Column names and order are fixed: dashboards and
// ad-hoc queries downstream select them positionally.
const (
	createStandingsTableTmpl = `CREATE TABLE IF NOT EXISTS %s (
	"rank" INTEGER NOT NULL,
	steam_id BIGINT NOT NULL,
	"time" BIGINT NOT NULL,
	points INTEGER NOT NULL,
	course VARCHAR NOT NULL,
	"timestamp" TIMESTAMPTZ NOT NULL
)`
	createLeaderTable = `CREATE TABLE IF NOT EXISTS leader (
	steam_id BIGINT NOT NULL,
	points INTEGER NOT NULL,
	"timestamp" TIMESTAMPTZ NOT NULL,
	steam_username VARCHAR
)`

	insertStandingTmpl = `INSERT INTO %s ("rank", steam_id, "time", points, course, "timestamp") VALUES (?, ?, ?, ?, ?, ?)`
	insertLeader       = `INSERT INTO leader (steam_id, points, "timestamp", steam_username) VALUES (?, ?, ?, ?)`
)

// DuckStore implements Store on an embedded DuckDB database.
type DuckStore struct {
	conn *sql.DB
}

// Open opens a DuckDB session for one run and ensures the schema exists.
// The dsn is the database path, optionally with driver tuning parameters
// appended as a query string.
func Open(ctx context.Context, dsn string) (*DuckStore, error) {
	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", ErrPersistence, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w: %w", ErrPersistence, err)
	}

	s := &DuckStore{conn: conn}
	if err := s.ensureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// OpenStore adapts Open to the Opener signature.
func OpenStore(ctx context.Context, dsn string) (Store, error) {
	return Open(ctx, dsn)
}

func (s *DuckStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(createStandingsTableTmpl, TableRun),
		fmt.Sprintf(createStandingsTableTmpl, TableHistory),
		createLeaderTable,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w: %w", ErrPersistence, err)
		}
	}
	return nil
}

// AppendRun appends standings to the per-run audit table.
func (s *DuckStore) AppendRun(ctx context.Context, standings []model.Standing) error {
	return s.appendStandings(ctx, TableRun, standings)
}

// AppendHistory appends standings to the historical table.
func (s *DuckStore) AppendHistory(ctx context.Context, standings []model.Standing) error {
	return s.appendStandings(ctx, TableHistory, standings)
}

func (s *DuckStore) appendStandings(ctx context.Context, table string, standings []model.Standing) error {
	start := time.Now()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordSinkError(table)
		return fmt.Errorf("begin append to %s: %w: %w", table, ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertStandingTmpl, table))
	if err != nil {
		metrics.RecordSinkError(table)
		return fmt.Errorf("prepare append to %s: %w: %w", table, ErrPersistence, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range standings {
		if _, err := stmt.ExecContext(ctx,
			row.Rank, row.SteamID, row.ScoreTime, row.Points, row.Course, row.Timestamp,
		); err != nil {
			metrics.RecordSinkError(table)
			return fmt.Errorf("append row to %s: %w: %w", table, ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordSinkError(table)
		return fmt.Errorf("commit append to %s: %w: %w", table, ErrPersistence, err)
	}

	metrics.RecordSinkWrite(table, len(standings), float64(time.Since(start).Milliseconds()))
	return nil
}

// ReplaceLeaders swaps the leader table contents inside one transaction,
// so concurrent readers see either the old snapshot or the new one.
func (s *DuckStore) ReplaceLeaders(ctx context.Context, rows []model.LeaderRow) error {
	start := time.Now()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordSinkError(TableLeader)
		return fmt.Errorf("begin leader replace: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM leader"); err != nil {
		metrics.RecordSinkError(TableLeader)
		return fmt.Errorf("clear leader table: %w: %w", ErrPersistence, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertLeader)
	if err != nil {
		metrics.RecordSinkError(TableLeader)
		return fmt.Errorf("prepare leader insert: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		username := sql.NullString{String: row.Username, Valid: row.Username != ""}
		if _, err := stmt.ExecContext(ctx, row.SteamID, row.Points, row.Timestamp, username); err != nil {
			metrics.RecordSinkError(TableLeader)
			return fmt.Errorf("insert leader row: %w: %w", ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordSinkError(TableLeader)
		return fmt.Errorf("commit leader replace: %w: %w", ErrPersistence, err)
	}

	metrics.RecordSinkWrite(TableLeader, len(rows), float64(time.Since(start).Milliseconds()))
	return nil
}

// Leaders reads the current leaderboard snapshot ordered by points
// descending, matching the order it was written in.
func (s *DuckStore) Leaders(ctx context.Context) ([]model.LeaderRow, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT steam_id, points, "timestamp", steam_username FROM leader ORDER BY points DESC`)
	if err != nil {
		return nil, fmt.Errorf("query leader table: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LeaderRow
	for rows.Next() {
		var (
			row      model.LeaderRow
			username sql.NullString
		)
		if err := rows.Scan(&row.SteamID, &row.Points, &row.Timestamp, &username); err != nil {
			return nil, fmt.Errorf("scan leader row: %w: %w", ErrPersistence, err)
		}
		row.Username = username.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leader rows: %w: %w", ErrPersistence, err)
	}
	return out, nil
}

// Count returns the number of rows in one of the sink tables.
func (s *DuckStore) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case TableRun, TableHistory, TableLeader:
	default:
		return 0, fmt.Errorf("count %q: %w", table, ErrUnknownTable)
	}

	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w: %w", table, ErrPersistence, err)
	}
	return n, nil
}

// Close releases the database session.
func (s *DuckStore) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
