package scoring

import (
	"fmt"
	"time"
)

// Side identifies one of the two competitors in a match (a player or a doubles pair).
type Side string

const (
	SideA Side = "sideA"
	SideB Side = "sideB"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// ParseSide accepts the wire names ("sideA"/"sideB") as well as the short forms "a"/"b".
func ParseSide(v string) (Side, error) {
	switch v {
	case "sideA", "a", "A":
		return SideA, nil
	case "sideB", "b", "B":
		return SideB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSide, v)
}

// Score holds the points of both sides within a single set.
type Score struct {
	SideA int `json:"sideA"`
	SideB int `json:"sideB"`
}

// Of returns the points held by side.
func (s Score) Of(side Side) int {
	if side == SideA {
		return s.SideA
	}
	return s.SideB
}

// With returns a copy of s where side holds points.
func (s Score) With(side Side, points int) Score {
	if side == SideA {
		s.SideA = points
	} else {
		s.SideB = points
	}
	return s
}

// Total is the number of rallies played in the set so far.
func (s Score) Total() int {
	return s.SideA + s.SideB
}

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.SideA, s.SideB)
}

// SetResult is a completed set.
type SetResult struct {
	SetNumber int   `json:"setNumber"`
	Score     Score `json:"score"`
	Winner    Side  `json:"winner"`
}

// PointEvent records a single rally won by Side. Score is the set score after the rally.
type PointEvent struct {
	Set       int       `json:"set"`
	Side      Side      `json:"side"`
	Score     Score     `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchConfig is the rule snapshot captured when a match starts.
type MatchConfig struct {
	PointsPerSet int  `json:"pointsPerSet"`
	SetsToWin    int  `json:"setsToWin"`
	MaxSets      int  `json:"maxSets"`
	Extension    bool `json:"extension"`
}

// DefaultConfig is best of three sets to 21 with deuce extension up to 30.
func DefaultConfig() MatchConfig {
	return MatchConfig{
		PointsPerSet: 21,
		SetsToWin:    2,
		MaxSets:      3,
		Extension:    true,
	}
}

// Validate checks that the configuration describes a playable match.
func (c MatchConfig) Validate() error {
	if c.PointsPerSet < 1 {
		return fmt.Errorf("%w: pointsPerSet must be positive, got %d", ErrInvalidConfig, c.PointsPerSet)
	}
	if c.SetsToWin < 1 {
		return fmt.Errorf("%w: setsToWin must be positive, got %d", ErrInvalidConfig, c.SetsToWin)
	}
	if c.MaxSets != 2*c.SetsToWin-1 {
		return fmt.Errorf("%w: maxSets must be %d for setsToWin %d, got %d", ErrInvalidConfig, 2*c.SetsToWin-1, c.SetsToWin, c.MaxSets)
	}
	return nil
}

// PointOutcome describes what a single AddPoint did to the state.
type PointOutcome struct {
	SetComplete   bool
	MatchComplete bool
	// SetWinner is set when SetComplete is true.
	SetWinner Side
	// Winner is set when MatchComplete is true.
	Winner Side
}
