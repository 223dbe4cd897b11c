package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// writeMatch prints a scoreboard: completed sets, the set in play and who serves next.
func writeMatch(w io.Writer, m *match.Match) {
	fmt.Fprintf(w, "%s  [%s]", m.ID, m.Status)
	if m.Round != "" {
		fmt.Fprintf(w, "  %s", m.Round)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  A: %s\n  B: %s\n", sideName(m, scoring.SideA), sideName(m, scoring.SideB))

	s := m.Score
	if s == nil {
		return
	}
	for _, set := range s.Sets {
		fmt.Fprintf(w, "  Set %d  %2d - %-2d  won by %s\n", set.SetNumber, set.Score.SideA, set.Score.SideB, sideLabel(set.Winner))
	}
	if m.Status == match.StatusCompleted && m.Winner != nil {
		fmt.Fprintf(w, "  Winner: %s\n", sideName(m, *m.Winner))
		return
	}
	fmt.Fprintf(w, "  Set %d  %2d - %-2d  serving: %s\n", s.CurrentSet, s.CurrentScore.SideA, s.CurrentScore.SideB, sideLabel(s.CurrentServer))
}

func writeMatchList(w io.Writer, matches []*match.Match) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROUND\tSTATUS\tA\tB\tSETS")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Round, m.Status, m.SideA.Name, m.SideB.Name, setSummary(m.Score))
	}
	tw.Flush()
}

func setSummary(s *scoring.ScoreState) string {
	if s == nil {
		return "-"
	}
	parts := make([]string, 0, len(s.Sets)+1)
	for _, set := range s.Sets {
		parts = append(parts, fmt.Sprintf("%d-%d", set.Score.SideA, set.Score.SideB))
	}
	if _, decided := s.Winner(); !decided {
		parts = append(parts, fmt.Sprintf("(%d-%d)", s.CurrentScore.SideA, s.CurrentScore.SideB))
	}
	return strings.Join(parts, " ")
}

func sideName(m *match.Match, side scoring.Side) string {
	p := m.Participant(side)
	if p.Name == "" {
		return sideLabel(side)
	}
	return p.Name
}

func sideLabel(side scoring.Side) string {
	if side == scoring.SideA {
		return "A"
	}
	return "B"
}
