package awards

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
)

// Award is the ranking credit one player receives for winning one match.
type Award struct {
	MatchID   string
	PlayerID  string
	Round     match.Round
	Points    int
	AwardedAt time.Time
}

// PlayerTotal is a leaderboard row.
type PlayerTotal struct {
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
	Wins     int    `json:"wins"`
}

type store struct {
	db *sql.DB
	mu sync.Mutex
}

// Service turns match lifecycle events into player awards.
type Service struct {
	store   Store
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
}

var roundPoints = map[match.Round]int{
	match.RoundFinal:        100,
	match.RoundSemiFinal:    50,
	match.RoundQuarterFinal: 25,
}

const defaultRoundPoints = 10

// PointsForRound is the award for winning a match in round. Unlabelled rounds earn the group-stage value.
func PointsForRound(round match.Round) int {
	if p, ok := roundPoints[round]; ok {
		return p
	}
	return defaultRoundPoints
}
