package server

import (
	"time"

	"github.com/google/uuid"

	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

// queueEntry is one player waiting to be paired. FIFO within a queue
// type: the two oldest entries are matched first.
type queueEntry struct {
	playerID string
	joinedAt time.Time
}

// joinQueue puts a player in the requested queue, removing them from the
// other queue first (a player waits in at most one), then attempts
// pairing immediately.
func (d *Dispatcher) joinQueue(p *Player, queueType models.QueueType) {
	d.leaveQueues(p.ID)
	d.queues[queueType] = append(d.queues[queueType], queueEntry{
		playerID: p.ID,
		joinedAt: d.now(),
	})
	p.QueueType = queueType
	logging.Info("player joined queue", logging.Fields{
		"player": p.Username, "queue": queueType,
	})
	d.tryCreateMatch(queueType)
}

// leaveQueues removes a player from every queue. No-op if not queued.
func (d *Dispatcher) leaveQueues(playerID string) {
	for qt, entries := range d.queues {
		filtered := entries[:0]
		for _, e := range entries {
			if e.playerID != playerID {
				filtered = append(filtered, e)
			}
		}
		d.queues[qt] = filtered
	}
	if p, ok := d.players[playerID]; ok {
		p.QueueType = ""
	}
}

// tryCreateMatch pairs the two oldest entries of a queue into a new
// match in the building state. A lone entry keeps waiting.
func (d *Dispatcher) tryCreateMatch(queueType models.QueueType) {
	queue := d.queues[queueType]
	if len(queue) < 2 {
		return
	}

	e1, e2 := queue[0], queue[1]
	d.queues[queueType] = append([]queueEntry{}, queue[2:]...)

	p1, ok1 := d.players[e1.playerID]
	p2, ok2 := d.players[e2.playerID]
	if !ok1 || !ok2 {
		// A stale entry slipped through; requeue the survivor.
		if ok1 {
			d.queues[queueType] = append([]queueEntry{e1}, d.queues[queueType]...)
		}
		if ok2 {
			d.queues[queueType] = append([]queueEntry{e2}, d.queues[queueType]...)
		}
		return
	}
	p1.QueueType, p2.QueueType = "", ""

	match := &Match{
		ID:        uuid.New().String(),
		QueueType: queueType,
		State:     MatchBuilding,
		MaxTurns:  d.maxTurns,
		P1:        newParticipant(p1, network.RolePlayer1),
		P2:        newParticipant(p2, network.RolePlayer2),
		CreatedAt: d.now(),
	}
	d.matches[match.ID] = match
	p1.MatchID = match.ID
	p2.MatchID = match.ID

	d.send(p1, network.MatchFound{
		Type: network.MsgTypeMatchFound, MatchID: match.ID,
		Opponent: p2.Username, OpponentID: p2.ID, YourRole: network.RolePlayer1,
	})
	d.send(p2, network.MatchFound{
		Type: network.MsgTypeMatchFound, MatchID: match.ID,
		Opponent: p1.Username, OpponentID: p1.ID, YourRole: network.RolePlayer2,
	})

	logging.Info("match created", logging.Fields{
		"match": match.ID, "queue": queueType,
		"player1": p1.Username, "player2": p2.Username,
	})
}
