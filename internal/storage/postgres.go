package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"customer-segmentation/internal/dataset"
)

const customersTable = "customers"

// PostgresStore is the relational backend. Each upload recreates the
// customers table with one typed column per dataset column, inside a
// single transaction, so readers never observe a half-written state.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres using a lib/pq DSN.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Init creates the upload-metadata table.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS segment_uploads (
			id UUID PRIMARY KEY,
			column_names TEXT NOT NULL,
			row_count BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create segment_uploads: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Replace(ctx context.Context, uploadID uuid.UUID, t *dataset.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(customersTable))); err != nil {
		return fmt.Errorf("failed to drop customers table: %w", err)
	}

	defs := make([]string, 0, len(t.Columns)+1)
	defs = append(defs, `"_seq" BIGINT NOT NULL`)
	for i := range t.Columns {
		col := &t.Columns[i]
		sqlType := "TEXT"
		if col.Kind == dataset.Numeric {
			sqlType = "DOUBLE PRECISION"
		}
		defs = append(defs, fmt.Sprintf("%s %s NOT NULL", pq.QuoteIdentifier(col.Name), sqlType))
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(customersTable), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}

	copyCols := make([]string, 0, len(t.Columns)+1)
	copyCols = append(copyCols, "_seq")
	copyCols = append(copyCols, t.ColumnNames()...)
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(customersTable, copyCols...))
	if err != nil {
		return fmt.Errorf("failed to prepare bulk copy: %w", err)
	}

	for i := 0; i < t.Rows(); i++ {
		args := make([]any, 0, len(t.Columns)+1)
		args = append(args, int64(i))
		for j := range t.Columns {
			col := &t.Columns[j]
			if col.Kind == dataset.Numeric {
				args = append(args, col.Nums[i])
			} else {
				args = append(args, col.Strs[i])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy row %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush bulk copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close bulk copy: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM segment_uploads"); err != nil {
		return fmt.Errorf("failed to clear upload metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO segment_uploads (id, column_names, row_count) VALUES ($1, $2, $3)",
		uploadID, strings.Join(t.ColumnNames(), ","), t.Rows(),
	); err != nil {
		return fmt.Errorf("failed to record upload metadata: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) Load(ctx context.Context) (*dataset.Table, error) {
	var uploadID uuid.UUID
	err := s.db.QueryRowContext(ctx, "SELECT id FROM segment_uploads LIMIT 1").Scan(&uploadID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY "_seq"`, pq.QuoteIdentifier(customersTable)))
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to inspect column types: %w", err)
	}

	t := &dataset.Table{}
	numeric := make([]bool, len(types))
	for i, ct := range types {
		if ct.Name() == "_seq" {
			continue
		}
		numeric[i] = isNumericType(ct.DatabaseTypeName())
		if numeric[i] {
			t.Columns = append(t.Columns, dataset.Column{Name: ct.Name(), Kind: dataset.Numeric})
		} else {
			t.Columns = append(t.Columns, dataset.Column{Name: ct.Name(), Kind: dataset.Text})
		}
	}

	for rows.Next() {
		holders := make([]any, len(types))
		for i := range types {
			if types[i].Name() == "_seq" {
				holders[i] = new(int64)
			} else if numeric[i] {
				holders[i] = new(float64)
			} else {
				holders[i] = new(string)
			}
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}

		colIdx := 0
		for i := range types {
			if types[i].Name() == "_seq" {
				continue
			}
			col := &t.Columns[colIdx]
			if numeric[i] {
				col.Nums = append(col.Nums, *holders[i].(*float64))
			} else {
				col.Strs = append(col.Strs, *holders[i].(*string))
			}
			colIdx++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return t, nil
}

func isNumericType(dbType string) bool {
	switch dbType {
	case "FLOAT4", "FLOAT8", "INT2", "INT4", "INT8", "NUMERIC":
		return true
	default:
		return false
	}
}
