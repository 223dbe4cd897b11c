package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/shuttle-score/internal/config"
	"github.com/mauv0809/shuttle-score/internal/database"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/spf13/cobra"
)

var (
	tournamentID string
	dbPath       string
	doubles      bool
)

var rootCmd = &cobra.Command{
	Use:   "seeder <player names...>",
	Short: "Seed a knockout bracket of matches",
	Long: `Creates the quarter-final, semi-final and final matches of a tournament.
Quarter-finals are filled from the given names in seeding order (1 v 8, 4 v 5, 3 v 6, 2 v 7);
later rounds are created PENDING with TBD sides.`,
	Args: cobra.RangeArgs(0, 8),
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed(cmd.Context(), args)
	},
}

func init() {
	rootCmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID (generated when empty)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Local SQLite file (defaults to DB_NAME / Turso config)")
	rootCmd.Flags().BoolVar(&doubles, "doubles", false, "Give every entry two player IDs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, names []string) error {
	log.Info("Starting database seeder...")
	path, primaryURL, authToken := dbPath, "", ""
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, primaryURL, authToken = cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken
	}
	db, teardown, err := database.InitDB(path, primaryURL, authToken)
	if err != nil {
		return err
	}
	defer teardown()

	if tournamentID == "" {
		tournamentID = uuid.NewString()
	}
	repo := match.New(db)
	matches := bracket(tournamentID, entries(names), time.Now().UTC())

	startTime := time.Now()
	for _, m := range matches {
		if err := repo.CreateMatch(ctx, m); err != nil {
			return fmt.Errorf("failed to create %s match %s: %w", m.Round, m.ID, err)
		}
		log.Debug("Seeded match", "matchID", m.ID, "round", m.Round, "sideA", m.SideA.Name, "sideB", m.SideB.Name)
	}
	log.Info("Seeding complete", "tournamentID", tournamentID, "matches", len(matches), "duration", time.Since(startTime))
	for _, m := range matches {
		fmt.Printf("%s\t%s\t%s v %s\n", m.ID, m.Round, m.SideA.Name, m.SideB.Name)
	}
	return nil
}

// entries pads names to eight seeds and gives each a player ID.
func entries(names []string) []match.Participant {
	out := make([]match.Participant, 8)
	for i := range out {
		name := fmt.Sprintf("Seed %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		ids := []string{uuid.NewString()}
		if doubles {
			ids = append(ids, uuid.NewString())
		}
		out[i] = match.Participant{Name: name, PlayerIDs: ids}
	}
	return out
}

// qfDraw pairs seeds so that the top two can only meet in the final.
var qfDraw = [4][2]int{{0, 7}, {3, 4}, {2, 5}, {1, 6}}

func bracket(tournament string, seeds []match.Participant, now time.Time) []*match.Match {
	var out []*match.Match
	add := func(round match.Round, a, b match.Participant, status match.Status) {
		out = append(out, &match.Match{
			ID:           uuid.NewString(),
			TournamentID: tournament,
			Round:        round,
			Status:       status,
			SideA:        a,
			SideB:        b,
			CreatedAt:    now,
		})
	}
	tbd := match.Participant{Name: "TBD"}
	for _, pair := range qfDraw {
		add(match.RoundQuarterFinal, seeds[pair[0]], seeds[pair[1]], match.StatusReady)
	}
	add(match.RoundSemiFinal, tbd, tbd, match.StatusPending)
	add(match.RoundSemiFinal, tbd, tbd, match.StatusPending)
	add(match.RoundFinal, tbd, tbd, match.StatusPending)
	return out
}
