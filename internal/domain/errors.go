package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by MetadataStore.Get for an unknown identifier.
	ErrNotFound = errors.New("record not found")

	// ErrNoBibMatch is returned when a bibliographic lookup yields zero
	// results for a document key.
	ErrNoBibMatch = errors.New("no bibliographic match")

	// ErrDimensionMismatch is returned when a persisted index was built
	// with a different embedder name or vector dimension than the one
	// configured for querying.
	ErrDimensionMismatch = errors.New("embedding space mismatch")
)

// FetchError reports a failed HTTP fetch. Status is zero for transport
// errors. Fetch errors are retryable per-item and never fatal to a run.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResolutionError reports that a candidate could not be resolved into a
// complete PaperRecord; the record is dropped from the current run.
type ResolutionError struct {
	Identifier string
	Reason     string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %s", e.Identifier, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// StorageError reports a metadata persistence failure. The ingestion run
// continues with the in-memory records; callers must flag that durability
// was not achieved.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
