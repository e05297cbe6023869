package workbook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

const (
	sqliteTablesTable = "report_tables"
	sqliteCellsTable  = "report_cells"
)

var sqliteSchema = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    name TEXT PRIMARY KEY,
    header TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    col_count INTEGER NOT NULL,
    written_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS %[2]s (
    table_name TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    col_index INTEGER NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (table_name, row_index, col_index),
    FOREIGN KEY (table_name) REFERENCES %[1]s(name) ON DELETE CASCADE
);
`, sqliteTablesTable, sqliteCellsTable)

// SQLiteSink stores report tables in a SQLite database. Each table is a row of
// report_tables plus one report_cells row per non-empty cell; rows are
// 0-based and exclude the header.
type SQLiteSink struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLiteSink opens or creates the database at path and applies the schema.
func OpenSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewStorageError("failed to create database directory", err).WithContext("path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open database", err).WithContext("path", path)
	}
	// One connection keeps ":memory:" databases shared between statements.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to enable foreign keys", err).WithContext("path", path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to apply schema", err).WithContext("path", path)
	}

	return &SQLiteSink{
		db:     db,
		path:   path,
		logger: logger.With(slog.String("sink", "sqlite")),
	}, nil
}

// Name identifies the sink in logs and metrics.
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Commit replaces all given tables in a single transaction.
func (s *SQLiteSink) Commit(ctx context.Context, tables []domain.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	insertCell, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (table_name, row_index, col_index, kind, value) VALUES (?, ?, ?, ?, ?)`,
		sqliteCellsTable))
	if err != nil {
		return errors.NewStorageError("failed to prepare insert", err)
	}
	defer insertCell.Close()

	now := time.Now().UTC()
	cells := 0
	for _, table := range tables {
		if err := s.replaceTable(ctx, tx, table, now); err != nil {
			return errors.NewStorageError("failed to replace table", err).WithContext("table", table.Name)
		}
		for r, row := range table.Rows {
			for c, cell := range row {
				if cell.IsEmpty() {
					continue
				}
				if _, err := insertCell.ExecContext(ctx, table.Name, r, c, cell.Kind.String(), cell.String()); err != nil {
					return errors.NewStorageError("failed to insert cell", err).
						WithContext("table", table.Name).
						WithContext("row", r).
						WithContext("col", c)
				}
				cells++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit transaction", err)
	}

	s.logger.InfoContext(ctx, "sqlite tables written",
		slog.String("path", s.path),
		slog.Int("tables", len(tables)),
		slog.Int("cells", cells))
	return nil
}

func (s *SQLiteSink) replaceTable(ctx context.Context, tx *sql.Tx, table domain.Table, now time.Time) error {
	header, err := json.Marshal(table.Header)
	if err != nil {
		return err
	}

	width := len(table.Header)
	for _, row := range table.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE table_name = ?`, sqliteCellsTable), table.Name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, sqliteTablesTable), table.Name); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, header, row_count, col_count, written_at) VALUES (?, ?, ?, ?, ?)`, sqliteTablesTable),
		table.Name, string(header), len(table.Rows), width, now)
	return err
}

// ReadTable loads a stored table. Date cells come back as text.
func (s *SQLiteSink) ReadTable(ctx context.Context, name string) (domain.Table, error) {
	var (
		header   string
		rowCount int
		colCount int
	)
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT header, row_count, col_count FROM %s WHERE name = ?`, sqliteTablesTable), name).
		Scan(&header, &rowCount, &colCount)
	if err == sql.ErrNoRows {
		return domain.Table{}, errors.NewNotFoundError("table " + name)
	}
	if err != nil {
		return domain.Table{}, errors.NewStorageError("failed to read table", err).WithContext("table", name)
	}

	table := domain.Table{Name: name, Rows: make([][]domain.Cell, rowCount)}
	if err := json.Unmarshal([]byte(header), &table.Header); err != nil {
		return domain.Table{}, errors.NewStorageError("failed to decode header", err).WithContext("table", name)
	}
	for i := range table.Rows {
		table.Rows[i] = make([]domain.Cell, colCount)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT row_index, col_index, kind, value FROM %s WHERE table_name = ?`, sqliteCellsTable), name)
	if err != nil {
		return domain.Table{}, errors.NewStorageError("failed to read cells", err).WithContext("table", name)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r, c        int
			kind, value string
		)
		if err := rows.Scan(&r, &c, &kind, &value); err != nil {
			return domain.Table{}, errors.NewStorageError("failed to scan cell", err).WithContext("table", name)
		}
		if r >= rowCount || c >= colCount {
			continue
		}
		table.Rows[r][c] = storedCell(kind, value)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, errors.NewStorageError("failed to read cells", err).WithContext("table", name)
	}

	return table, nil
}

func storedCell(kind, value string) domain.Cell {
	if kind == domain.CellNumber.String() {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return domain.NumberCell(n)
		}
	}
	return domain.TextCell(value)
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
