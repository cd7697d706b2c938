package processor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrIngest is the kind shared by every ingestion failure.
var ErrIngest = errors.New("ingest event")

// IngestError reports a failure to ingest one identifier. Process has no path
// that returns it today; callers still check the error.
type IngestError struct {
	ID uuid.UUID
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("%s %s", ErrIngest, e.ID)
}

// Unwrap lets errors.Is match ErrIngest.
func (e *IngestError) Unwrap() error { return ErrIngest }
