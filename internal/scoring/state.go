package scoring

import (
	"fmt"
	"time"
)

// ScoreState is the authoritative score of one match. Every CurrentScore and CurrentServer
// value can be rebuilt from History, see Replay.
type ScoreState struct {
	Sets          []SetResult  `json:"sets"`
	CurrentSet    int          `json:"currentSet"`
	CurrentScore  Score        `json:"currentScore"`
	CurrentServer Side         `json:"currentServer"`
	InitialServer Side         `json:"initialServer"`
	History       []PointEvent `json:"history"`
	MatchConfig   MatchConfig  `json:"matchConfig"`
}

// NewScoreState returns the state of a match about to play its first rally.
func NewScoreState(cfg MatchConfig, initialServer Side) (*ScoreState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !initialServer.Valid() {
		return nil, fmt.Errorf("%w: initial server %q", ErrUnknownSide, initialServer)
	}
	return &ScoreState{
		Sets:          []SetResult{},
		CurrentSet:    1,
		CurrentScore:  Score{},
		CurrentServer: initialServer,
		InitialServer: initialServer,
		History:       []PointEvent{},
		MatchConfig:   cfg,
	}, nil
}

// Rules returns the rules derived from the state's config snapshot.
func (s *ScoreState) Rules() Rules {
	return NewRules(s.MatchConfig)
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s *ScoreState) Clone() *ScoreState {
	if s == nil {
		return nil
	}
	c := *s
	c.Sets = append([]SetResult{}, s.Sets...)
	c.History = append([]PointEvent{}, s.History...)
	return &c
}

// Winner returns the match winner once the match is decided.
func (s *ScoreState) Winner() (Side, bool) {
	return s.Rules().MatchWinner(s.Sets)
}

// AddPoint records a rally won by side at the given time.
func (s *ScoreState) AddPoint(side Side, at time.Time) (PointOutcome, error) {
	if !side.Valid() {
		return PointOutcome{}, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	rules := s.Rules()
	if rules.IsMatchComplete(s.Sets) {
		return PointOutcome{}, ErrMatchDecided
	}

	current := s.CurrentScore.Of(side)
	if err := rules.ValidateScoreUpdate(current, current+1); err != nil {
		return PointOutcome{}, err
	}

	s.CurrentScore = s.CurrentScore.With(side, current+1)
	s.History = append(s.History, PointEvent{
		Set:       s.CurrentSet,
		Side:      side,
		Score:     s.CurrentScore,
		Timestamp: at,
	})
	s.CurrentServer = DetermineServer(s.CurrentScore.Total(), s.setOpener(s.CurrentSet))

	setWinner, done := rules.GameWinner(s.CurrentScore.SideA, s.CurrentScore.SideB)
	if !done {
		return PointOutcome{}, nil
	}

	s.Sets = append(s.Sets, SetResult{
		SetNumber: s.CurrentSet,
		Score:     s.CurrentScore,
		Winner:    setWinner,
	})
	outcome := PointOutcome{SetComplete: true, SetWinner: setWinner}

	if winner, ok := rules.MatchWinner(s.Sets); ok {
		outcome.MatchComplete = true
		outcome.Winner = winner
		return outcome, nil
	}

	s.CurrentSet++
	s.CurrentScore = Score{}
	s.CurrentServer = setWinner
	return outcome, nil
}

// Undo removes the last rally. When that rally closed a set the set is reopened. The returned
// PointOutcome describes what the removed rally had done, so callers can revert a completed match.
func (s *ScoreState) Undo() (PointEvent, PointOutcome, error) {
	n := len(s.History)
	if n == 0 {
		return PointEvent{}, PointOutcome{}, ErrNothingToUndo
	}
	last := s.History[n-1]
	s.History = s.History[:n-1]

	var undone PointOutcome
	if k := len(s.Sets); k > 0 && s.Sets[k-1].SetNumber == last.Set {
		closed := s.Sets[k-1]
		if winner, ok := s.Rules().MatchWinner(s.Sets); ok {
			undone.MatchComplete = true
			undone.Winner = winner
		}
		undone.SetComplete = true
		undone.SetWinner = closed.Winner
		s.Sets = s.Sets[:k-1]
		s.CurrentSet = last.Set
	}

	s.replayCurrentSet()
	return last, undone, nil
}

// replayCurrentSet recomputes CurrentScore and CurrentServer from the history of CurrentSet.
func (s *ScoreState) replayCurrentSet() {
	var score Score
	for _, ev := range s.PointsInCurrentSet() {
		score = score.With(ev.Side, score.Of(ev.Side)+1)
	}
	s.CurrentScore = score
	s.CurrentServer = DetermineServer(score.Total(), s.setOpener(s.CurrentSet))
}

// setOpener is the side serving the first rally of a set: the initial server for set one, the
// winner of the previous set afterwards.
func (s *ScoreState) setOpener(set int) Side {
	if set > 1 && len(s.Sets) >= set-1 {
		return s.Sets[set-2].Winner
	}
	return s.InitialServer
}

// PointsInCurrentSet returns the history entries of the set in play.
func (s *ScoreState) PointsInCurrentSet() []PointEvent {
	var out []PointEvent
	for _, ev := range s.History {
		if ev.Set == s.CurrentSet {
			out = append(out, ev)
		}
	}
	return out
}

// Replay rebuilds a state from scratch by re-applying history in order. It fails with
// ErrCorruptHistory if any recorded event disagrees with what the rules produce.
func Replay(cfg MatchConfig, initialServer Side, history []PointEvent) (*ScoreState, error) {
	s, err := NewScoreState(cfg, initialServer)
	if err != nil {
		return nil, err
	}
	for i, ev := range history {
		if ev.Set != s.CurrentSet {
			return nil, fmt.Errorf("%w: event %d is in set %d, expected set %d", ErrCorruptHistory, i, ev.Set, s.CurrentSet)
		}
		if _, err := s.AddPoint(ev.Side, ev.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: event %d: %w", ErrCorruptHistory, i, err)
		}
		if got := s.History[len(s.History)-1].Score; got != ev.Score {
			return nil, fmt.Errorf("%w: event %d records %s, replay gives %s", ErrCorruptHistory, i, ev.Score, got)
		}
	}
	return s, nil
}
