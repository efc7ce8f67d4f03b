package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"customer-segmentation/internal/insights"
	"customer-segmentation/internal/pipeline"
	"customer-segmentation/internal/roles"
	contracts "customer-segmentation/pkg/api"
	"customer-segmentation/pkg/segerr"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "customer-segmentation",
		"version": Version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.jsonError(w, http.StatusServiceUnavailable, "store not ready", segerr.CodeStoreFailed)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"version": Version,
		"service": "customer-segmentation",
	})
}

// handleUpload ingests a CSV dataset, runs the segmentation pipeline,
// and fully replaces the stored table. Accepts either a multipart form
// with a "file" field or the raw CSV as the request body.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	raw, err := readUploadBody(r)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err), "")
		return
	}

	result, err := pipeline.Run(raw, s.pipeline)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	if err := s.store.Replace(r.Context(), result.UploadID, result.Table); err != nil {
		log.Error().Err(err).Msg("failed to persist segmented table")
		s.jsonError(w, http.StatusInternalServerError, "failed to persist results", segerr.CodeStoreFailed)
		return
	}

	s.jsonResponse(w, http.StatusOK, result.UploadResponse())
}

// handleCustomers returns every stored record, cluster id and segment
// label included.
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Load(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error(), segerr.CodeStoreFailed)
		return
	}
	if t == nil {
		s.jsonResponse(w, http.StatusOK, []map[string]any{})
		return
	}
	s.jsonResponse(w, http.StatusOK, t.Records())
}

// handleInsights recomputes the cluster insight map from the stored
// table. Insights are derived data, never persisted independently.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Load(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error(), segerr.CodeStoreFailed)
		return
	}
	if t == nil || t.Rows() == 0 {
		s.pipelineError(w, segerr.NewNoDataError())
		return
	}

	roleMap := roles.Identify(t.ColumnNames())
	ins, err := insights.Generate(t, pipeline.ClusterColumn, roleMap)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	resp := make(map[string]contracts.ClusterInsight, len(ins))
	for id, in := range ins {
		resp[strconv.Itoa(id)] = contracts.ClusterInsight{
			Label:       in.Label,
			Description: in.Description,
			Stats:       in.Stats,
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleExport streams the stored table as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Load(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error(), segerr.CodeStoreFailed)
		return
	}
	if t == nil || t.Rows() == 0 {
		s.pipelineError(w, segerr.NewNoDataError())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="segmented_customers.csv"`)
	if err := t.WriteCSV(w); err != nil {
		log.Error().Err(err).Msg("failed to stream CSV export")
	}
}

// readUploadBody extracts CSV bytes from a multipart "file" field or
// the raw request body.
func readUploadBody(r *http.Request) ([]byte, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err == nil && mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing multipart field %q: %w", "file", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// pipelineError maps structured pipeline errors onto HTTP statuses.
func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	code := segerr.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case segerr.CodeParseFailed:
		status = http.StatusBadRequest
	case segerr.CodeEmptyDataset, segerr.CodeNoFeatures, segerr.CodeDegenerateClusters:
		status = http.StatusUnprocessableEntity
	case segerr.CodeNoData:
		status = http.StatusNotFound
	}
	s.jsonError(w, status, err.Error(), code)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message, code string) {
	s.jsonResponse(w, status, contracts.ErrorResponse{Error: message, Code: code})
}
