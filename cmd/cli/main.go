package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	host        string
	dbPath      string
	lockTimeout string
)

var rootCmd = &cobra.Command{
	Use:   "shuttle-cli",
	Short: "A scorer console for shuttle-score",
	Long: `A command-line interface for scoring badminton matches directly against the
database, and for making requests to a running shuttle-score server.`,
	SilenceUsage: true,
}

func init() {
	// Console output is the score; keep routine logs out of the way.
	log.SetLevel(log.WarnLevel)
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Local SQLite file to score against (defaults to DB_NAME / Turso config)")
	rootCmd.PersistentFlags().StringVar(&lockTimeout, "lock-timeout", "2s", "How long to wait for a match that is being updated elsewhere")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
