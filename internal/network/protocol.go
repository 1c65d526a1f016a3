package network

import "dungeonaut-arena/internal/models"

// Message type tags. Every frame on the wire is a flat JSON object with a
// "type" field alongside the payload fields.
const (
	// Client to server
	MsgTypeSetUsername    = "set_username"
	MsgTypeJoinQueue      = "join_queue"
	MsgTypeLeaveQueue     = "leave_queue"
	MsgTypeSubmitBuild    = "submit_build"
	MsgTypeSubmitAction   = "submit_action"
	MsgTypeEndMatch       = "end_match"
	MsgTypeGetLeaderboard = "get_leaderboard"
	MsgTypeGetStats       = "get_stats"
	MsgTypePing           = "ping"

	// Server to client
	MsgTypeConnected               = "connected"
	MsgTypeUsernameSet             = "username_set"
	MsgTypeQueueJoined             = "queue_joined"
	MsgTypeQueueLeft               = "queue_left"
	MsgTypeMatchFound              = "match_found"
	MsgTypeOpponentReady           = "opponent_ready"
	MsgTypeBattleStart             = "battle_start"
	MsgTypeOpponentActionSubmitted = "opponent_action_submitted"
	MsgTypeTurnResolved            = "turn_resolved"
	MsgTypeMatchEnded              = "match_ended"
	MsgTypeLeaderboardData         = "leaderboard_data"
	MsgTypePlayerStats             = "player_stats"
	MsgTypePong                    = "pong"
	MsgTypeError                   = "error"
)

// Participant roles inside a match.
const (
	RolePlayer1 = "player1"
	RolePlayer2 = "player2"
)

// Match results as reported in match_ended.
const (
	ResultVictory = "victory"
	ResultDefeat  = "defeat"
	ResultDraw    = "draw"
)

// --- Client to Server (C2S) messages ---

// SetUsername replaces the server-assigned default name.
type SetUsername struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// JoinQueue enters a matchmaking queue. Joining a second queue type
// moves the player out of the first.
type JoinQueue struct {
	Type      string           `json:"type"`
	QueueType models.QueueType `json:"queueType"`
}

// LeaveQueue leaves whichever queue the player is waiting in.
type LeaveQueue struct {
	Type string `json:"type"`
}

// SubmitBuild delivers the pre-match stat allocation and skill set.
type SubmitBuild struct {
	Type    string       `json:"type"`
	MatchID string       `json:"matchId"`
	Build   models.Build `json:"build"`
}

// SubmitAction delivers this round's chosen action by its catalog ID
// (or basic_attack / guard).
type SubmitAction struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	Action  string `json:"action"`
}

// EndMatch reports a locally resolved terminal state with summary stats.
type EndMatch struct {
	Type     string            `json:"type"`
	MatchID  string            `json:"matchId"`
	WinnerID string            `json:"winnerId"`
	Stats    models.MatchStats `json:"stats"`
}

// GetLeaderboard requests the public leaderboard.
type GetLeaderboard struct {
	Type string `json:"type"`
}

// GetStats requests the caller's lifetime counters.
type GetStats struct {
	Type string `json:"type"`
}

// Ping is the application-level heartbeat.
type Ping struct {
	Type string `json:"type"`
}

// --- Server to Client (S2C) messages ---

// Connected is the first frame after the upgrade, carrying the assigned
// player ID and default username.
type Connected struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// UsernameSet acknowledges set_username with the (possibly truncated)
// accepted name.
type UsernameSet struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// QueueJoined acknowledges join_queue.
type QueueJoined struct {
	Type      string           `json:"type"`
	QueueType models.QueueType `json:"queueType"`
}

// QueueLeft acknowledges leave_queue.
type QueueLeft struct {
	Type string `json:"type"`
}

// MatchFound notifies a paired player of its match and role. OpponentID
// lets either peer name the winner when reporting the outcome.
type MatchFound struct {
	Type       string `json:"type"`
	MatchID    string `json:"matchId"`
	Opponent   string `json:"opponent"`
	OpponentID string `json:"opponentId"`
	YourRole   string `json:"yourRole"`
}

// OpponentReady signals that the other side has submitted its build.
type OpponentReady struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

// BattleStart carries both builds once the match goes active. PlayerData
// is always the recipient's own build.
type BattleStart struct {
	Type         string       `json:"type"`
	MatchID      string       `json:"matchId"`
	PlayerData   models.Build `json:"playerData"`
	OpponentData models.Build `json:"opponentData"`
}

// OpponentActionSubmitted tells a player the barrier is waiting on them.
type OpponentActionSubmitted struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

// TurnResolved relays both action IDs once the round barrier is
// satisfied. Each peer reconstructs the actions from the shared catalog
// and resolves the round locally.
type TurnResolved struct {
	Type           string `json:"type"`
	MatchID        string `json:"matchId"`
	Turn           int    `json:"turn"`
	YourAction     string `json:"yourAction"`
	OpponentAction string `json:"opponentAction"`
}

// MatchEnded carries the final result and the recipient's updated
// lifetime counters.
type MatchEnded struct {
	Type    string             `json:"type"`
	MatchID string             `json:"matchId"`
	Result  string             `json:"result"`
	Stats   models.PlayerStats `json:"stats"`
}

// LeaderboardData answers get_leaderboard.
type LeaderboardData struct {
	Type        string                    `json:"type"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

// PlayerStats answers get_stats.
type PlayerStats struct {
	Type  string             `json:"type"`
	Stats models.PlayerStats `json:"stats"`
}

// Pong answers ping.
type Pong struct {
	Type string `json:"type"`
}

// Error reports a rejected request (e.g. an invalid build that must be
// resubmitted). The connection stays up.
type Error struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId,omitempty"`
	Message string `json:"message"`
}
