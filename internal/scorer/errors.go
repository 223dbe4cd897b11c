package scorer

import (
	"context"
	"errors"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

var (
	// ErrInvalidState is returned by StartMatch for matches that are not PENDING or READY.
	ErrInvalidState    = errors.New("operation not allowed in the current match state")
	ErrMatchNotOngoing = errors.New("match is not ongoing")
	// ErrBusy means another mutation of the same match held the lock for the whole timeout.
	ErrBusy = errors.New("match is busy")
)

// Kind classifies an error returned by the Controller.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
	KindInvalidState     Kind = "INVALID_STATE"
	KindMatchNotOngoing  Kind = "MATCH_NOT_ONGOING"
	KindIllegalIncrement Kind = "ILLEGAL_INCREMENT"
	KindScoreCapExceeded Kind = "SCORE_CAP_EXCEEDED"
	KindNothingToUndo    Kind = "NOTHING_TO_UNDO"
	KindUnknownSide      Kind = "UNKNOWN_SIDE"
	KindInvalidConfig    Kind = "INVALID_CONFIG"
	KindBusy             Kind = "BUSY"
	KindConflict         Kind = "CONFLICT"
	KindCanceled         Kind = "CANCELED"
	KindInternal         Kind = "INTERNAL"
)

// KindOf maps err to its Kind. Unrecognised errors, including repository I/O failures, are
// KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, match.ErrNotFound):
		return KindNotFound
	case errors.Is(err, match.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrMatchNotOngoing), errors.Is(err, scoring.ErrMatchDecided):
		return KindMatchNotOngoing
	case errors.Is(err, scoring.ErrIllegalIncrement):
		return KindIllegalIncrement
	case errors.Is(err, scoring.ErrScoreCapExceeded):
		return KindScoreCapExceeded
	case errors.Is(err, scoring.ErrNothingToUndo):
		return KindNothingToUndo
	case errors.Is(err, scoring.ErrUnknownSide):
		return KindUnknownSide
	case errors.Is(err, scoring.ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, match.ErrConflict):
		return KindConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}

// IsRetryable reports whether the same call may succeed if repeated later. Only contention
// errors qualify; everything else needs a different input or a fresh look at the match.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindBusy, KindConflict:
		return true
	}
	return false
}
