package clusterops

import "github.com/kailas-cloud/clusterops/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnsupportedModel  = domain.ErrUnsupportedModel
	ErrShapeMismatch     = domain.ErrShapeMismatch
	ErrEmptyInput        = domain.ErrEmptyInput
	ErrMissingTarget     = domain.ErrMissingTarget
	ErrRemoteWrite       = domain.ErrRemoteWrite
	ErrUnknownOption     = domain.ErrUnknownOption
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrNotFound          = domain.ErrNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrUnauthorized      = domain.ErrUnauthorized
	ErrRemoteUnavailable = domain.ErrRemoteUnavailable
	ErrEmbeddingProvider = domain.ErrEmbeddingProvider
)

// RemoteWriteError reports which write-back step and batch failed.
// Use errors.As() to inspect it; it also matches ErrRemoteWrite.
type RemoteWriteError = domain.RemoteWriteError

// Write-back steps reported by RemoteWriteError.
const (
	StepUpdateDocuments = domain.StepUpdateDocuments
	StepUpsertCentroids = domain.StepUpsertCentroids
	StepStoreMetadata   = domain.StepStoreMetadata
)
