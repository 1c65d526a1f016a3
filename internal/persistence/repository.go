package persistence

import "dungeonaut-arena/internal/models"

// Repository is the sink the session manager reports finished matches
// into, plus the read side for leaderboard and lifetime-stat queries.
// The core treats it as opaque; swapping the backing store must not
// touch the session manager.
type Repository interface {
	// RecordResult appends a leaderboard entry and bumps both players'
	// lifetime counters. The board is trimmed to maxEntries, keeping the
	// most decisive wins (fewest turns).
	RecordResult(entry models.LeaderboardEntry, maxEntries int) error

	// Leaderboard returns up to limit entries sorted by turns ascending.
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)

	// PlayerStats returns the lifetime counters for a username. Unknown
	// usernames return zeroed stats, not an error.
	PlayerStats(username string) (models.PlayerStats, error)

	Close() error
}
