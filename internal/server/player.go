package server

import (
	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
)

// sendBufferSize bounds the per-player outbound queue. A slow reader
// drops frames rather than blocking the dispatcher.
const sendBufferSize = 32

// Player is one connected peer as the dispatcher sees it. All fields are
// owned by the dispatcher goroutine; the write pump only drains Send.
type Player struct {
	ID       string
	Username string
	Stats    models.PlayerStats

	// QueueType is the queue the player waits in, "" when not queued.
	QueueType models.QueueType

	// MatchID is the player's current match, "" when idle.
	MatchID string

	// Send carries encoded frames to the connection's write pump. Closed
	// by the dispatcher when the player is removed.
	Send chan []byte
}

// enqueue hands a frame to the write pump without blocking. Frames for a
// backed-up connection are dropped and logged.
func (p *Player) enqueue(frame []byte) {
	select {
	case p.Send <- frame:
	default:
		logging.Warn("send buffer full, dropping frame", logging.Fields{
			"player": p.Username,
		})
	}
}
