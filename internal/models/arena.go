package models

import "time"

// QueueType selects which matchmaking queue a player waits in.
type QueueType string

const (
	QueueRanked   QueueType = "ranked"
	QueueUnranked QueueType = "unranked"
)

// Valid reports whether the queue type is one of the two known queues.
func (q QueueType) Valid() bool {
	return q == QueueRanked || q == QueueUnranked
}

// PlayerStats are a player's lifetime win/loss counters, reported back on
// get_stats and updated on every finalized match.
type PlayerStats struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Matches int `json:"matches"`
}

// MatchStats is the summary a client reports with end_match: totals from
// its local resolution plus the forfeit flag the server sets when a
// disconnect forced the result.
type MatchStats struct {
	DamageDealt int  `json:"damageDealt"`
	DamageTaken int  `json:"damageTaken"`
	HealingDone int  `json:"healingDone"`
	CritsLanded int  `json:"critsLanded"`
	Forfeit     bool `json:"forfeit,omitempty"`
}

// LeaderboardEntry records one finished match for the public leaderboard.
// The board is sorted by Turns ascending: a faster win ranks higher.
type LeaderboardEntry struct {
	Winner    string    `json:"winner"`
	Loser     string    `json:"loser"`
	Turns     int       `json:"turns"`
	QueueType QueueType `json:"type"`
	Date      time.Time `json:"date"`
}
