package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedModel signals an unrecognized model name.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrShapeMismatch signals a model or vector batch with inconsistent shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyInput signals that there are no vectors to fit.
	ErrEmptyInput = errors.New("empty input")
	// ErrMissingTarget signals that no dataset or vector field could be resolved.
	ErrMissingTarget = errors.New("missing target")
	// ErrRemoteWrite signals a failed write-back to the remote store.
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrUnknownOption signals an unrecognized configuration option.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidQuery signals an invalid nearest or aggregation query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNotFound signals a missing remote resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a dataset that already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized signals rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRemoteUnavailable signals that the remote service kept failing after retries.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	// ErrEmbeddingProvider signals a failed or malformed embedding provider response.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)

// Write-back steps reported by RemoteWriteError.
const (
	StepUpdateDocuments = "update_documents"
	StepUpsertCentroids = "upsert_centroids"
	StepStoreMetadata   = "store_metadata"
)

// RemoteWriteError wraps ErrRemoteWrite with enough context for a manual retry.
type RemoteWriteError struct {
	Step  string
	Batch int      // zero-based batch index, -1 when the step is not batched
	IDs   []string // document ids of the failed batch or rejected documents
	Err   error
}

func (e *RemoteWriteError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRemoteWrite.Error())
	b.WriteString(": ")
	b.WriteString(e.Step)
	if e.Batch >= 0 {
		fmt.Fprintf(&b, " batch %d", e.Batch)
	}
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " (%d documents)", len(e.IDs))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports ErrRemoteWrite equivalence so callers can match the sentinel.
func (e *RemoteWriteError) Is(target error) bool { return target == ErrRemoteWrite }

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// NewRemoteWriteError creates a write-back error for the given step and batch.
func NewRemoteWriteError(step string, batch int, ids []string, err error) error {
	return &RemoteWriteError{Step: step, Batch: batch, IDs: ids, Err: err}
}
