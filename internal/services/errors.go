package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/campus-board/backend/internal/models"
)

var (
	// ErrSourceUnavailable means a club ad collection could not be read during a resync
	ErrSourceUnavailable = errors.New("source ad store unavailable")
	// ErrPartialSync means a resync wrote only part of the new envelope set
	ErrPartialSync = errors.New("partial sync failure")
	// ErrEnvelopeNotFound means no aggregate ad has the requested id
	ErrEnvelopeNotFound = errors.New("ad not found")
	// ErrQueryFailed means the aggregate store could not answer a read
	ErrQueryFailed = errors.New("ad query failed")
	// ErrSyncInProgress means another resync holds the resync lock
	ErrSyncInProgress = errors.New("resync already in progress")
	// ErrInvalidFilter means a feed filter named an unknown ad type
	ErrInvalidFilter = errors.New("invalid feed filter")
	// ErrInvalidUser means an engagement call carried no user id
	ErrInvalidUser = errors.New("user id is required")
)

// SourceUnavailableError identifies which source failed
type SourceUnavailableError struct {
	AdType models.AdType
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s ads: %v", ErrSourceUnavailable, e.AdType, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// PartialSyncError reports how many envelopes were written before the store failed
type PartialSyncError struct {
	Inserted int
	Expected int
	Err      error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("%s: wrote %d of %d ads: %v", ErrPartialSync, e.Inserted, e.Expected, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

func (e *PartialSyncError) Is(target error) bool { return target == ErrPartialSync }
