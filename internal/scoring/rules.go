package scoring

import "fmt"

const (
	// DefaultWinThreshold is the score a side must reach to take a set.
	DefaultWinThreshold = 21
	// DefaultCapPoints is the golden point: reaching it wins the set regardless of margin.
	DefaultCapPoints = 30
	// DefaultSetsToWin makes a match best of three.
	DefaultSetsToWin = 2

	minLead = 2
	// extensionPoints is how far past the threshold a set can run under deuce.
	extensionPoints = DefaultCapPoints - DefaultWinThreshold
)

// Rules evaluates set and match completion. The zero value is not useful; build one with
// NewRules or use DefaultRules.
type Rules struct {
	PointsToWin int
	MinLead     int
	PointCap    int
	SetsToWin   int
}

// DefaultRules are the standard badminton rules: 21 points, win by two, capped at 30, best of three.
var DefaultRules = Rules{
	PointsToWin: DefaultWinThreshold,
	MinLead:     minLead,
	PointCap:    DefaultCapPoints,
	SetsToWin:   DefaultSetsToWin,
}

// NewRules derives the rules from a match configuration. With extension enabled a set needs a
// two point lead and is capped at PointsPerSet+9; without it the first side to PointsPerSet wins.
func NewRules(cfg MatchConfig) Rules {
	r := Rules{
		PointsToWin: cfg.PointsPerSet,
		MinLead:     1,
		PointCap:    cfg.PointsPerSet,
		SetsToWin:   cfg.SetsToWin,
	}
	if cfg.Extension {
		r.MinLead = minLead
		r.PointCap = cfg.PointsPerSet + extensionPoints
	}
	return r
}

// IsGameComplete reports whether a set at scoreA-scoreB is over.
func (r Rules) IsGameComplete(scoreA, scoreB int) bool {
	if scoreA >= r.PointCap || scoreB >= r.PointCap {
		return true
	}
	if scoreA >= r.PointsToWin && scoreA-scoreB >= r.MinLead {
		return true
	}
	return scoreB >= r.PointsToWin && scoreB-scoreA >= r.MinLead
}

// GameWinner returns the side that won a set at scoreA-scoreB. The boolean is false while the
// set is still in play.
func (r Rules) GameWinner(scoreA, scoreB int) (Side, bool) {
	if !r.IsGameComplete(scoreA, scoreB) {
		return "", false
	}
	if scoreA > scoreB {
		return SideA, true
	}
	return SideB, true
}

// IsMatchComplete reports whether either side has won SetsToWin sets.
func (r Rules) IsMatchComplete(sets []SetResult) bool {
	_, ok := r.MatchWinner(sets)
	return ok
}

// MatchWinner returns the side holding SetsToWin set wins, if any.
func (r Rules) MatchWinner(sets []SetResult) (Side, bool) {
	var a, b int
	for _, set := range sets {
		switch set.Winner {
		case SideA:
			a++
		case SideB:
			b++
		}
	}
	switch {
	case a >= r.SetsToWin:
		return SideA, true
	case b >= r.SetsToWin:
		return SideB, true
	}
	return "", false
}

// ValidateScoreUpdate checks that moving one side from current to proposed points is a single
// legal rally.
func (r Rules) ValidateScoreUpdate(current, proposed int) error {
	if proposed > r.PointCap {
		return fmt.Errorf("%w: %d is above the cap of %d", ErrScoreCapExceeded, proposed, r.PointCap)
	}
	if proposed != current+1 {
		return fmt.Errorf("%w: %d -> %d", ErrIllegalIncrement, current, proposed)
	}
	return nil
}

// DetermineServer alternates the serve on every rally: even counts belong to initialServer,
// odd counts to the opponent.
func DetermineServer(pointsPlayed int, initialServer Side) Side {
	if pointsPlayed%2 == 0 {
		return initialServer
	}
	return initialServer.Opponent()
}

// IsGameComplete applies DefaultRules.
func IsGameComplete(scoreA, scoreB int) bool {
	return DefaultRules.IsGameComplete(scoreA, scoreB)
}

// GameWinner applies DefaultRules.
func GameWinner(scoreA, scoreB int) (Side, bool) {
	return DefaultRules.GameWinner(scoreA, scoreB)
}

// IsMatchComplete applies DefaultRules with the given number of sets to win.
func IsMatchComplete(sets []SetResult, setsToWin int) bool {
	r := DefaultRules
	r.SetsToWin = setsToWin
	return r.IsMatchComplete(sets)
}

// MatchWinner applies DefaultRules with the given number of sets to win.
func MatchWinner(sets []SetResult, setsToWin int) (Side, bool) {
	r := DefaultRules
	r.SetsToWin = setsToWin
	return r.MatchWinner(sets)
}

// ValidateScoreUpdate applies DefaultRules.
func ValidateScoreUpdate(current, proposed int) error {
	return DefaultRules.ValidateScoreUpdate(current, proposed)
}
