// Package api defines the wire contracts shared by the HTTP server and
// the CLI.
package api

// ModelMetrics carries the diagnostics of the cluster-count search, in
// candidate order.
type ModelMetrics struct {
	CandidateKs      []int     `json:"candidate_ks"`
	Inertias         []float64 `json:"inertias"`
	SilhouetteScores []float64 `json:"silhouette_scores"`
	OptimalK         int       `json:"optimal_k"`
}

// UploadResponse is returned after a dataset has been segmented and
// persisted.
type UploadResponse struct {
	UploadID     string       `json:"upload_id"`
	Message      string       `json:"message"`
	NClusters    int          `json:"n_clusters"`
	Rows         int          `json:"rows"`
	Columns      []string     `json:"columns"`
	ModelMetrics ModelMetrics `json:"model_metrics"`
}

// ClusterInsight is the derived profile of a single cluster.
type ClusterInsight struct {
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Stats       map[string]float64 `json:"stats"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
