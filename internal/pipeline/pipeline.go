// Package pipeline orchestrates the end-to-end segmentation run:
// parse and clean, prepare features, select a cluster count, fit the
// final model, and derive segment labels.
package pipeline

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"customer-segmentation/internal/cluster"
	"customer-segmentation/internal/dataset"
	"customer-segmentation/internal/features"
	"customer-segmentation/internal/insights"
	"customer-segmentation/internal/roles"
	"customer-segmentation/pkg/api"
)

// Columns appended to the cleaned table before persistence.
const (
	ClusterColumn = "Cluster"
	SegmentColumn = "CustomerSegment"
)

// Config holds the tunable clustering parameters. Seed and Restarts
// are passed through to the engine explicitly so runs are reproducible
// across processes.
type Config struct {
	MaxK     int
	Seed     int64
	Restarts int
}

// DefaultConfig returns the default pipeline parameters.
func DefaultConfig() Config {
	c := cluster.DefaultConfig()
	return Config{MaxK: cluster.DefaultMaxK, Seed: c.Seed, Restarts: c.Restarts}
}

// Result is one complete segmentation run. Everything here is derived
// per run; nothing is shared across uploads.
type Result struct {
	UploadID       uuid.UUID
	Table          *dataset.Table
	K              int
	Candidates     []int
	Inertias       []float64
	Silhouettes    []float64
	NumericColumns []string
	Roles          roles.Map
	Insights       map[int]insights.Insight
}

// Run executes the full pipeline on raw CSV bytes. It is pure and
// stateless per call: re-invoking with the same input reproduces the
// same result, including cluster ids.
func Run(raw []byte, cfg Config) (*Result, error) {
	t, err := dataset.Load(raw)
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", t.Rows()).Int("columns", len(t.Columns)).Msg("dataset cleaned")

	prep, err := features.Prepare(t)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("features", prep.NumericColumns).Msg("features standardized")

	ccfg := cluster.Config{Seed: cfg.Seed, Restarts: cfg.Restarts}
	sel, err := cluster.SelectK(prep.Matrix, cfg.MaxK, ccfg)
	if err != nil {
		return nil, err
	}
	log.Info().Int("k", sel.K).Ints("candidates", sel.Candidates).Msg("cluster count selected")

	model, err := cluster.Fit(prep.Matrix, sel.K, ccfg)
	if err != nil {
		return nil, err
	}

	clusterVals := make([]float64, len(model.Labels))
	for i, c := range model.Labels {
		clusterVals[i] = float64(c)
	}
	if err := t.AppendNumericColumn(ClusterColumn, clusterVals); err != nil {
		return nil, err
	}

	roleMap := roles.Identify(t.ColumnNames())
	ins, err := insights.Generate(t, ClusterColumn, roleMap)
	if err != nil {
		return nil, err
	}

	segments := make([]string, len(model.Labels))
	for i, c := range model.Labels {
		segments[i] = ins[c].Label
	}
	if err := t.AppendTextColumn(SegmentColumn, segments); err != nil {
		return nil, err
	}
	log.Info().Int("clusters", len(ins)).Msg("segments labeled")

	return &Result{
		UploadID:       uuid.New(),
		Table:          t,
		K:              sel.K,
		Candidates:     sel.Candidates,
		Inertias:       sel.Inertias,
		Silhouettes:    sel.Silhouettes,
		NumericColumns: prep.NumericColumns,
		Roles:          roleMap,
		Insights:       ins,
	}, nil
}

// UploadResponse renders the run as the upload wire contract.
func (r *Result) UploadResponse() api.UploadResponse {
	return api.UploadResponse{
		UploadID:  r.UploadID.String(),
		Message:   "File processed successfully",
		NClusters: r.K,
		Rows:      r.Table.Rows(),
		Columns:   r.Table.ColumnNames(),
		ModelMetrics: api.ModelMetrics{
			CandidateKs:      r.Candidates,
			Inertias:         r.Inertias,
			SilhouetteScores: r.Silhouettes,
			OptimalK:         r.K,
		},
	}
}
