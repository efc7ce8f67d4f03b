package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/internal/pipeline"
	"customer-segmentation/internal/storage"
	contracts "customer-segmentation/pkg/api"
	"customer-segmentation/pkg/segerr"
)

const sampleCSV = "CustomerID,Annual Income,Spending Score\n" +
	"1,15,10\n" +
	"2,16,12\n" +
	"3,17,11\n" +
	"4,80,90\n" +
	"5,81,88\n" +
	"6,82,89\n"

func newTestServer() *Server {
	return NewServer(storage.NewMemoryStore(), pipeline.DefaultConfig(), nil)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadSample(t *testing.T, h http.Handler) contracts.UploadResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/upload", bytes.NewBufferString(sampleCSV), "text/csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contracts.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer().Router()

	rec := doRequest(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/version", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), Version)
}

func TestUploadRawBody(t *testing.T) {
	h := newTestServer().Router()
	resp := uploadSample(t, h)

	assert.NotEmpty(t, resp.UploadID)
	assert.Equal(t, 2, resp.NClusters)
	assert.Equal(t, 6, resp.Rows)
	assert.Contains(t, resp.Columns, "Cluster")
	assert.Contains(t, resp.Columns, "CustomerSegment")
	assert.Equal(t, []int{2, 3, 4, 5}, resp.ModelMetrics.CandidateKs)
	assert.Equal(t, 2, resp.ModelMetrics.OptimalK)
}

func TestUploadMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "customers.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	h := newTestServer().Router()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/upload", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contracts.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.NClusters)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "unparseable csv",
			body:   "a,b\n\"broken\n",
			status: http.StatusBadRequest,
			code:   segerr.CodeParseFailed,
		},
		{
			name:   "empty dataset",
			body:   "a,b\n",
			status: http.StatusUnprocessableEntity,
			code:   segerr.CodeEmptyDataset,
		},
		{
			name:   "no numeric features",
			body:   "CustomerID,Name\n1,Ana\n2,Ben\n",
			status: http.StatusUnprocessableEntity,
			code:   segerr.CodeNoFeatures,
		},
	}
	h := newTestServer().Router()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/upload", bytes.NewBufferString(tt.body), "text/csv")
			assert.Equal(t, tt.status, rec.Code)

			var resp contracts.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestCustomersEmptyStore(t *testing.T) {
	h := newTestServer().Router()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCustomersAfterUpload(t *testing.T) {
	h := newTestServer().Router()
	uploadSample(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 6)
	assert.Equal(t, 0.0, records[0]["Cluster"])
	assert.Equal(t, "Low Value Customer", records[0]["CustomerSegment"])
	assert.Equal(t, 1.0, records[5]["Cluster"])
	assert.Equal(t, "High Value Customer", records[5]["CustomerSegment"])
}

func TestInsightsNoData(t *testing.T) {
	h := newTestServer().Router()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/insights", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp contracts.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, segerr.CodeNoData, resp.Code)
}

func TestInsightsAfterUpload(t *testing.T) {
	h := newTestServer().Router()
	uploadSample(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/insights", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]contracts.ClusterInsight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	assert.Equal(t, "Low Value Customer", resp["0"].Label)
	assert.Equal(t, "High Value Customer", resp["1"].Label)
	assert.Contains(t, resp["0"].Description, "Cluster 0 contains")
	assert.InDelta(t, 16, resp["0"].Stats["Annual Income"], 1e-9)
}

func TestExport(t *testing.T) {
	h := newTestServer().Router()
	uploadSample(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "segmented_customers.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "CustomerID,Annual Income,Spending Score,Cluster,CustomerSegment", lines[0])
	assert.Equal(t, "1,15,10,0,Low Value Customer", lines[1])
	assert.Equal(t, "6,82,89,1,High Value Customer", lines[6])
}

func TestExportNoData(t *testing.T) {
	h := newTestServer().Router()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/export", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer().Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/customers", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
