package server

import (
	"time"

	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

// MatchState is the lifecycle state of a server-side match.
type MatchState string

const (
	MatchBuilding MatchState = "building"
	MatchReady    MatchState = "ready"
	MatchActive   MatchState = "active"
	MatchFinished MatchState = "finished"
)

// participant is one side of a match.
type participant struct {
	player       *Player
	role         string
	ready        bool
	build        models.Build
	disconnected bool

	// pendingAction buffers this round's submitted action ID until the
	// other side arrives at the barrier.
	pendingAction string
	hasAction     bool
}

// Match tracks a paired battle through its lifecycle. The server never
// resolves rounds itself; it gates and relays action pairs while both
// peers run the identical round resolution engine locally.
//
// The per-round barrier has no timeout: a peer that stays connected but
// stops submitting stalls the match indefinitely. Disconnect is the only
// forced termination.
type Match struct {
	ID        string
	QueueType models.QueueType
	State     MatchState
	Turn      int
	MaxTurns  int
	P1        *participant
	P2        *participant

	// Winner holds the winning player's ID, models.DrawMarker, or "".
	Winner string

	CreatedAt time.Time
}

// sides returns the participant for a player ID and their opponent, or
// nils when the player is not in this match.
func (m *Match) sides(playerID string) (self, other *participant) {
	switch playerID {
	case m.P1.player.ID:
		return m.P1, m.P2
	case m.P2.player.ID:
		return m.P2, m.P1
	}
	return nil, nil
}

// bothReady reports whether both builds have been submitted.
func (m *Match) bothReady() bool {
	return m.P1.ready && m.P2.ready
}

// barrierFull reports whether both sides' actions for the current round
// have arrived.
func (m *Match) barrierFull() bool {
	return m.P1.hasAction && m.P2.hasAction
}

// clearActions resets the round barrier for the next round.
func (m *Match) clearActions() {
	m.P1.pendingAction, m.P1.hasAction = "", false
	m.P2.pendingAction, m.P2.hasAction = "", false
}

// newParticipant binds a player to a match slot.
func newParticipant(p *Player, role string) *participant {
	return &participant{player: p, role: role}
}

// resultFor maps the match winner to the match_ended result string for
// one participant.
func (m *Match) resultFor(p *participant) string {
	switch m.Winner {
	case models.DrawMarker:
		return network.ResultDraw
	case p.player.ID:
		return network.ResultVictory
	default:
		return network.ResultDefeat
	}
}
