// Package segerr provides severity-aware error types for the
// segmentation pipeline.
package segerr

import (
	"errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error codes
const (
	CodeParseFailed        = "PARSE_FAILED"
	CodeEmptyDataset       = "EMPTY_DATASET"
	CodeNoFeatures         = "NO_FEATURES"
	CodeDegenerateClusters = "DEGENERATE_CLUSTERS"
	CodeNoData             = "NO_DATA"
	CodeStoreFailed        = "STORE_FAILED"
)

// Error is a structured error with a machine-readable code.
type Error struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// CodeOf extracts the error code from err, or "" if err is not a
// structured pipeline error.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewParseError wraps a parsing failure of the raw input bytes.
func NewParseError(err error) *Error {
	return &Error{
		Code:     CodeParseFailed,
		Message:  fmt.Sprintf("input is not valid delimited text: %v", err),
		Severity: SeverityError,
	}
}

// NewEmptyDatasetError reports a dataset with nothing left to cluster.
func NewEmptyDatasetError(reason string) *Error {
	return &Error{
		Code:     CodeEmptyDataset,
		Message:  reason,
		Severity: SeverityError,
	}
}

// NewNoFeaturesError reports that no usable numeric columns remain.
func NewNoFeaturesError() *Error {
	return &Error{
		Code:     CodeNoFeatures,
		Message:  "no numeric feature columns found for clustering",
		Severity: SeverityError,
	}
}

// NewDegenerateClustersError reports a cluster count exceeding the
// record count.
func NewDegenerateClustersError(records, k int) *Error {
	return &Error{
		Code:     CodeDegenerateClusters,
		Message:  fmt.Sprintf("cannot fit %d clusters with %d records", k, records),
		Severity: SeverityError,
	}
}

// NewNoDataError reports an empty store on a query path.
func NewNoDataError() *Error {
	return &Error{
		Code:     CodeNoData,
		Message:  "no customer data available; upload a dataset first",
		Severity: SeverityWarning,
	}
}

// NewStoreFailedError wraps a persistence failure.
func NewStoreFailedError(err error) *Error {
	return &Error{
		Code:     CodeStoreFailed,
		Message:  fmt.Sprintf("storage operation failed: %v", err),
		Severity: SeverityFatal,
	}
}
