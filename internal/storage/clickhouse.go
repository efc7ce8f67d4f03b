package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"customer-segmentation/internal/dataset"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultClickHouseConfig returns default development configuration.
func DefaultClickHouseConfig() *ClickHouseConfig {
	return &ClickHouseConfig{
		Host:     "localhost",
		Port:     9000,
		Database: "segmentation",
		Username: "default",
		Password: "",
	}
}

// columnSpec preserves schema and column order alongside the JSON
// documents, which otherwise carry neither.
type columnSpec struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ClickHouseStore is the document backend: one JSON document per
// segmented customer row, plus an upload row that acts as the commit
// point. Documents are written first; the upload row is inserted only
// after they all land, so a failed write never becomes the current
// upload.
type ClickHouseStore struct {
	conn clickhouse.Conn
	cfg  *ClickHouseConfig
}

// NewClickHouseStore connects to ClickHouse.
func NewClickHouseStore(cfg *ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &ClickHouseStore{conn: conn, cfg: cfg}, nil
}

// Init creates the upload and document tables.
func (s *ClickHouseStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS segment_uploads (
			id UUID,
			column_specs String,
			row_count UInt64,
			created_at DateTime64(3)
		) ENGINE = MergeTree ORDER BY created_at`,
		`CREATE TABLE IF NOT EXISTS segment_documents (
			upload_id UUID,
			seq UInt64,
			data String,
			created_at DateTime64(3)
		) ENGINE = MergeTree ORDER BY (upload_id, seq)`,
	}
	for _, stmt := range stmts {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) Ping(ctx context.Context) error { return s.conn.Ping(ctx) }

func (s *ClickHouseStore) Close() error { return s.conn.Close() }

func (s *ClickHouseStore) Replace(ctx context.Context, uploadID uuid.UUID, t *dataset.Table) error {
	specs := make([]columnSpec, len(t.Columns))
	for i := range t.Columns {
		specs[i] = columnSpec{Name: t.Columns[i].Name, Kind: t.Columns[i].Kind.String()}
	}
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		return fmt.Errorf("failed to marshal column specs: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO segment_documents (upload_id, seq, data, created_at)")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	now := time.Now()
	for i, rec := range t.Records() {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		if err := batch.Append(uploadID, uint64(i), string(doc), now); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	// The upload row commits the replacement.
	if err := s.conn.Exec(ctx,
		"INSERT INTO segment_uploads (id, column_specs, row_count, created_at) VALUES (?, ?, ?, ?)",
		uploadID, string(specsJSON), uint64(t.Rows()), now,
	); err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	// Superseded uploads are garbage; drop them asynchronously.
	if err := s.conn.Exec(ctx,
		"ALTER TABLE segment_documents DELETE WHERE upload_id != ?", uploadID,
	); err != nil {
		return fmt.Errorf("failed to drop superseded documents: %w", err)
	}
	if err := s.conn.Exec(ctx,
		"ALTER TABLE segment_uploads DELETE WHERE id != ?", uploadID,
	); err != nil {
		return fmt.Errorf("failed to drop superseded uploads: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Load(ctx context.Context) (*dataset.Table, error) {
	row := s.conn.QueryRow(ctx,
		"SELECT id, column_specs FROM segment_uploads ORDER BY created_at DESC LIMIT 1")

	var uploadID uuid.UUID
	var specsJSON string
	err := row.Scan(&uploadID, &specsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current upload: %w", err)
	}

	var specs []columnSpec
	if err := json.Unmarshal([]byte(specsJSON), &specs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column specs: %w", err)
	}

	t := &dataset.Table{Columns: make([]dataset.Column, len(specs))}
	for i, spec := range specs {
		kind := dataset.Text
		if spec.Kind == dataset.Numeric.String() {
			kind = dataset.Numeric
		}
		t.Columns[i] = dataset.Column{Name: spec.Name, Kind: kind}
	}

	rows, err := s.conn.Query(ctx,
		"SELECT data FROM segment_documents WHERE upload_id = ? ORDER BY seq", uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		for i := range t.Columns {
			col := &t.Columns[i]
			val, ok := rec[col.Name]
			if !ok {
				return nil, fmt.Errorf("document missing column %q", col.Name)
			}
			if col.Kind == dataset.Numeric {
				num, ok := val.(json.Number)
				if !ok {
					return nil, fmt.Errorf("column %q: expected number, got %T", col.Name, val)
				}
				f, err := num.Float64()
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", col.Name, err)
				}
				col.Nums = append(col.Nums, f)
			} else {
				str, ok := val.(string)
				if !ok {
					return nil, fmt.Errorf("column %q: expected string, got %T", col.Name, val)
				}
				col.Strs = append(col.Strs, str)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return t, nil
}
