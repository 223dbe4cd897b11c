package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mauv0809/shuttle-score/internal/awards"
	"github.com/mauv0809/shuttle-score/internal/config"
	"github.com/mauv0809/shuttle-score/internal/database"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
	"github.com/mauv0809/shuttle-score/internal/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// console is the scoring stack opened against the database for one command.
type console struct {
	controller *scorer.Controller
	repo       match.Repository
	awards     awards.Store
	teardown   func()
}

func openConsole() (*console, error) {
	timeout, err := time.ParseDuration(lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid --lock-timeout: %w", err)
	}

	path, primaryURL, authToken := dbPath, "", ""
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path, primaryURL, authToken = cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken
	}
	db, teardown, err := database.InitDB(path, primaryURL, authToken)
	if err != nil {
		return nil, err
	}

	// Events are applied in-process so awards stay in step with console scoring.
	metricsSvc := metrics.NewService(prometheus.NewRegistry())
	local := pubsub.NewLocal()
	awardStore := awards.New(db)
	awards.NewService(awardStore, metricsSvc, local).Subscribe(local)
	repo := match.New(db)

	return &console{
		controller: scorer.New(repo, metricsSvc, local, timeout),
		repo:       repo,
		awards:     awardStore,
		teardown:   teardown,
	}, nil
}

// withConsole opens the console, runs fn and closes the database.
func withConsole(cmd *cobra.Command, fn func(ctx context.Context, c *console) error) error {
	c, err := openConsole()
	if err != nil {
		return err
	}
	defer c.teardown()
	return fn(cmd.Context(), c)
}

func init() {
	rootCmd.AddCommand(createCmd, startCmd, pointCmd, undoCmd, showCmd, verifyCmd, listCmd, pointsCmd)

	createCmd.Flags().String("id", "", "Match ID (generated when empty)")
	createCmd.Flags().String("tournament", "", "Tournament ID")
	createCmd.Flags().String("round", "", "Round label: FINAL, SEMI_FINAL, QUARTER_FINAL or any group label")
	createCmd.Flags().String("side-a", "", "Name of side A")
	createCmd.Flags().String("side-b", "", "Name of side B")
	createCmd.Flags().StringSlice("side-a-players", nil, "Player IDs of side A")
	createCmd.Flags().StringSlice("side-b-players", nil, "Player IDs of side B")
	createCmd.Flags().Bool("ready", false, "Create the match as READY instead of PENDING")
	createCmd.MarkFlagRequired("side-a")
	createCmd.MarkFlagRequired("side-b")

	startCmd.Flags().String("scorer", "", "ID of the umpire scoring the match")
	startCmd.Flags().String("server", "a", "Side serving the first rally (a or b)")
	startCmd.Flags().Int("points", 21, "Points needed to win a set")
	startCmd.Flags().Int("sets-to-win", 2, "Sets needed to win the match")
	startCmd.Flags().Bool("no-extension", false, "Play sudden death at the set target instead of win-by-two")

	listCmd.Flags().String("tournament", "", "Only list matches of this tournament")
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new match",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		id, _ := f.GetString("id")
		tournament, _ := f.GetString("tournament")
		round, _ := f.GetString("round")
		sideA, _ := f.GetString("side-a")
		sideB, _ := f.GetString("side-b")
		playersA, _ := f.GetStringSlice("side-a-players")
		playersB, _ := f.GetStringSlice("side-b-players")
		ready, _ := f.GetBool("ready")

		m := &match.Match{
			ID:           id,
			TournamentID: tournament,
			Round:        match.Round(strings.ToUpper(round)),
			SideA:        match.Participant{Name: sideA, PlayerIDs: playersA},
			SideB:        match.Participant{Name: sideB, PlayerIDs: playersB},
		}
		if ready {
			m.Status = match.StatusReady
		}
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			if err := c.controller.CreateMatch(ctx, m); err != nil {
				return err
			}
			fmt.Println(m.ID)
			return nil
		})
	},
}

var startCmd = &cobra.Command{
	Use:   "start <matchID>",
	Short: "Start a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		scorerID, _ := f.GetString("scorer")
		serverFlag, _ := f.GetString("server")
		points, _ := f.GetInt("points")
		setsToWin, _ := f.GetInt("sets-to-win")
		noExtension, _ := f.GetBool("no-extension")

		server, err := scoring.ParseSide(serverFlag)
		if err != nil {
			return err
		}
		cfg := scoring.MatchConfig{
			PointsPerSet: points,
			SetsToWin:    setsToWin,
			MaxSets:      2*setsToWin - 1,
			Extension:    !noExtension,
		}
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			if _, err := c.controller.StartMatch(ctx, args[0], scorerID, scorer.StartOptions{Config: &cfg, InitialServer: server}); err != nil {
				return err
			}
			return showMatch(ctx, c, args[0])
		})
	},
}

var pointCmd = &cobra.Command{
	Use:   "point <matchID> <a|b>",
	Short: "Record a rally won by a side",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		side, err := scoring.ParseSide(args[1])
		if err != nil {
			return err
		}
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			res, err := c.controller.AddPoint(ctx, args[0], side)
			if err != nil {
				return err
			}
			if res.SetComplete {
				fmt.Printf("Set won by %s\n", *res.SetWinner)
			}
			if res.MatchComplete {
				fmt.Printf("Match won by %s\n", *res.Winner)
			}
			return showMatch(ctx, c, args[0])
		})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <matchID>",
	Short: "Remove the last recorded rally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			if _, err := c.controller.UndoLastPoint(ctx, args[0]); err != nil {
				return err
			}
			return showMatch(ctx, c, args[0])
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <matchID>",
	Short: "Print the score of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			return showMatch(ctx, c, args[0])
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <matchID>",
	Short: "Replay a match's history and check it against the stored score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			if err := c.controller.Verify(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Match %s is consistent.\n", args[0])
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		tournament, _ := cmd.Flags().GetString("tournament")
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			matches, err := c.repo.ListMatches(ctx, tournament)
			if err != nil {
				return err
			}
			writeMatchList(os.Stdout, matches)
			return nil
		})
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points <playerID>",
	Short: "Print a player's award points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConsole(cmd, func(ctx context.Context, c *console) error {
			total, err := c.awards.PlayerPoints(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d points\n", args[0], total)
			return nil
		})
	},
}

func showMatch(ctx context.Context, c *console, matchID string) error {
	m, err := c.controller.GetScore(ctx, matchID)
	if err != nil {
		return err
	}
	writeMatch(os.Stdout, m)
	return nil
}
