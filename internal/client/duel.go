package client

import (
	"math/rand"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

// Duel is the local mirror of one networked match. The server only
// relays builds and action IDs; each peer reconstructs the fighters and
// resolves every round on its own copy of the engine.
//
// Crit and resist rolls happen independently on each peer, so the two
// mirrored logs can disagree on random outcomes. The server accepts the
// first end-of-match report it receives, which is how the original
// behaves; see DESIGN.md for the tradeoff.
type Duel struct {
	MatchID    string
	Role       string
	SelfID     string
	OpponentID string

	You      *models.Fighter
	Opponent *models.Fighter
	Battle   *game.Battle
}

// NewDuel builds both fighters from the battle_start payload and starts
// a fresh battle. Fails only if a build slipped past server validation.
func NewDuel(selfID, username string, found network.MatchFound, start network.BattleStart, rng *rand.Rand) (*Duel, error) {
	you, err := game.NewFighter(username, true, start.PlayerData)
	if err != nil {
		return nil, err
	}
	// The engine keys winner and stats by fighter name, so two peers with
	// the same username must not share one.
	opponentName := found.Opponent
	if opponentName == username {
		opponentName += " (opponent)"
	}
	opponent, err := game.NewFighter(opponentName, false, start.OpponentData)
	if err != nil {
		return nil, err
	}
	return &Duel{
		MatchID:    start.MatchID,
		Role:       found.YourRole,
		SelfID:     selfID,
		OpponentID: found.OpponentID,
		You:        you,
		Opponent:   opponent,
		Battle:     game.NewBattle(you, opponent, rng),
	}, nil
}

// ApplyTurn resolves one round from the relayed action pair. An action
// ID missing from the catalog degrades to a basic attack rather than
// desyncing the match.
func (d *Duel) ApplyTurn(msg network.TurnResolved) models.RoundLog {
	d.You.SelectedAction = d.lookupAction(msg.YourAction)
	d.Opponent.SelectedAction = d.lookupAction(msg.OpponentAction)
	return d.Battle.ResolveRound()
}

func (d *Duel) lookupAction(id string) *models.Skill {
	action, ok := game.ActionByID(id)
	if !ok {
		logging.Warn("unknown action id, using basic attack", logging.Fields{
			"match": d.MatchID, "action": id,
		})
	}
	return action
}

// Over reports whether the local battle has reached a terminal state.
func (d *Duel) Over() bool {
	return d.Battle.Over()
}

// Report produces the end_match frame for the locally resolved outcome.
func (d *Duel) Report() network.EndMatch {
	winnerID := models.DrawMarker
	switch d.Battle.Winner {
	case d.You.Name:
		winnerID = d.SelfID
	case d.Opponent.Name:
		winnerID = d.OpponentID
	}
	return network.EndMatch{
		Type:     network.MsgTypeEndMatch,
		MatchID:  d.MatchID,
		WinnerID: winnerID,
		Stats:    d.Battle.StatsFor(d.You.Name),
	}
}

// ForfeitReport concedes the match, naming the opponent as winner.
func (d *Duel) ForfeitReport() network.EndMatch {
	stats := d.Battle.StatsFor(d.You.Name)
	stats.Forfeit = true
	return network.EndMatch{
		Type:     network.MsgTypeEndMatch,
		MatchID:  d.MatchID,
		WinnerID: d.OpponentID,
		Stats:    stats,
	}
}
