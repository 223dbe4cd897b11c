package scoring

import "errors"

var (
	ErrIllegalIncrement = errors.New("illegal score increment")
	ErrScoreCapExceeded = errors.New("score cap exceeded")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrUnknownSide      = errors.New("unknown side")
	ErrInvalidConfig    = errors.New("invalid match config")
	ErrMatchDecided     = errors.New("match already decided")
	// ErrCorruptHistory is returned by Replay when the history cannot be produced by legal play.
	ErrCorruptHistory = errors.New("history is not a legal point sequence")
)
