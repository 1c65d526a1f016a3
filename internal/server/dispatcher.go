package server

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
	"dungeonaut-arena/internal/persistence"
)

// maxUsernameLen bounds set_username input.
const maxUsernameLen = 20

type eventKind int

const (
	evConnect eventKind = iota
	evMessage
	evDisconnect
	evRemoveMatch
)

// event is one unit of work for the dispatcher goroutine.
type event struct {
	kind    eventKind
	player  *Player
	data    []byte
	matchID string
}

// Dispatcher owns every piece of mutable server state: connected
// players, both matchmaking queues and the match table. All of it is
// touched from a single goroutine that drains the events channel, so
// handlers run to completion without locks. The protocol assumes this
// single-threaded handling model.
type Dispatcher struct {
	cfg  Config
	repo persistence.Repository

	players map[string]*Player
	queues  map[models.QueueType][]queueEntry
	matches map[string]*Match

	maxTurns int

	events chan event
	quit   chan struct{}

	// now is swappable for tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher backed by the given repository.
func NewDispatcher(cfg Config, repo persistence.Repository) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		repo:     repo,
		players:  make(map[string]*Player),
		queues:   make(map[models.QueueType][]queueEntry),
		matches:  make(map[string]*Match),
		maxTurns: game.MaxRounds,
		events:   make(chan event, 256),
		quit:     make(chan struct{}),
		now:      time.Now,
	}
}

// Run drains the event channel until Stop is called. It must be the only
// goroutine touching dispatcher state.
func (d *Dispatcher) Run() {
	interval := d.cfg.StatusInterval
	if interval <= 0 {
		interval = time.Minute
	}
	status := time.NewTicker(interval)
	defer status.Stop()

	for {
		select {
		case ev := <-d.events:
			d.handle(ev)
		case <-status.C:
			d.logStatus()
		case <-d.quit:
			return
		}
	}
}

// Stop terminates the Run loop.
func (d *Dispatcher) Stop() {
	close(d.quit)
}

// Connect registers a fresh connection and returns its Player handle.
// Called from the connection goroutine before the read pump starts.
func (d *Dispatcher) Connect() *Player {
	p := &Player{
		ID:       uuid.New().String(),
		Username: fmt.Sprintf("Player%d", rand.Intn(10000)),
		Send:     make(chan []byte, sendBufferSize),
	}
	d.events <- event{kind: evConnect, player: p}
	return p
}

// Post hands an inbound frame to the dispatcher.
func (d *Dispatcher) Post(p *Player, data []byte) {
	d.events <- event{kind: evMessage, player: p, data: data}
}

// Disconnect reports a closed connection.
func (d *Dispatcher) Disconnect(p *Player) {
	d.events <- event{kind: evDisconnect, player: p}
}

func (d *Dispatcher) handle(ev event) {
	switch ev.kind {
	case evConnect:
		d.handleConnect(ev.player)
	case evMessage:
		d.handleFrame(ev.player, ev.data)
	case evDisconnect:
		d.handleDisconnect(ev.player)
	case evRemoveMatch:
		delete(d.matches, ev.matchID)
		logging.Info("match removed", logging.Fields{"match": ev.matchID})
	}
}

func (d *Dispatcher) handleConnect(p *Player) {
	d.players[p.ID] = p
	d.send(p, network.Connected{
		Type: network.MsgTypeConnected, PlayerID: p.ID, Username: p.Username,
	})
	logging.Info("player connected", logging.Fields{"player": p.ID})
}

// handleFrame decodes one inbound frame and routes it by type tag.
func (d *Dispatcher) handleFrame(p *Player, data []byte) {
	if _, ok := d.players[p.ID]; !ok {
		logging.Warn("frame from unknown player", logging.Fields{"player": p.ID})
		return
	}

	msgType, err := network.PeekType(data)
	if err != nil {
		logging.Warn("malformed message", logging.Fields{
			"player": p.Username, "error": err.Error(),
		})
		return
	}

	switch msgType {
	case network.MsgTypeSetUsername:
		var msg network.SetUsername
		if network.Decode(data, &msg) == nil {
			d.handleSetUsername(p, msg.Username)
		}
	case network.MsgTypeJoinQueue:
		var msg network.JoinQueue
		if network.Decode(data, &msg) == nil {
			d.handleJoinQueue(p, msg.QueueType)
		}
	case network.MsgTypeLeaveQueue:
		d.leaveQueues(p.ID)
		d.send(p, network.QueueLeft{Type: network.MsgTypeQueueLeft})
	case network.MsgTypeSubmitBuild:
		var msg network.SubmitBuild
		if network.Decode(data, &msg) == nil {
			d.handleSubmitBuild(p, msg.MatchID, msg.Build)
		}
	case network.MsgTypeSubmitAction:
		var msg network.SubmitAction
		if network.Decode(data, &msg) == nil {
			d.handleSubmitAction(p, msg.MatchID, msg.Action)
		}
	case network.MsgTypeEndMatch:
		var msg network.EndMatch
		if network.Decode(data, &msg) == nil {
			d.handleEndMatch(p, msg.MatchID, msg.WinnerID, msg.Stats)
		}
	case network.MsgTypeGetLeaderboard:
		d.handleGetLeaderboard(p)
	case network.MsgTypeGetStats:
		d.send(p, network.PlayerStats{Type: network.MsgTypePlayerStats, Stats: p.Stats})
	case network.MsgTypePing:
		d.send(p, network.Pong{Type: network.MsgTypePong})
	default:
		logging.Warn("unknown message type", logging.Fields{
			"player": p.Username, "type": msgType,
		})
	}
}

func (d *Dispatcher) handleSetUsername(p *Player, username string) {
	runes := []rune(username)
	if len(runes) > maxUsernameLen {
		runes = runes[:maxUsernameLen]
	}
	if len(runes) > 0 {
		p.Username = string(runes)
	}

	// Pick up lifetime counters recorded under this name.
	if d.repo != nil {
		if stats, err := d.repo.PlayerStats(p.Username); err == nil {
			p.Stats = stats
		} else {
			logging.Error("load player stats", err, logging.Fields{"player": p.Username})
		}
	}

	d.send(p, network.UsernameSet{Type: network.MsgTypeUsernameSet, Username: p.Username})
	logging.Info("username set", logging.Fields{"player": p.ID, "username": p.Username})
}

func (d *Dispatcher) handleJoinQueue(p *Player, queueType models.QueueType) {
	if !queueType.Valid() {
		logging.Warn(ErrInvalidQueueType.Error(), logging.Fields{
			"player": p.Username, "queue": queueType,
		})
		d.send(p, network.Error{
			Type:    network.MsgTypeError,
			Message: fmt.Sprintf("%s: %q", ErrInvalidQueueType, queueType),
		})
		return
	}
	if p.MatchID != "" {
		// One active match at a time.
		logging.Warn("join_queue while in match", logging.Fields{"player": p.Username})
		return
	}
	// Ack before pairing so queue_joined always precedes match_found.
	d.send(p, network.QueueJoined{Type: network.MsgTypeQueueJoined, QueueType: queueType})
	d.joinQueue(p, queueType)
}

func (d *Dispatcher) handleSubmitBuild(p *Player, matchID string, build models.Build) {
	match, self, other := d.lookupMatch(p, matchID)
	if match == nil {
		return
	}
	if match.State != MatchBuilding {
		logging.Warn("build submitted outside building state", logging.Fields{
			"match": matchID, "state": match.State,
		})
		return
	}

	if err := game.ValidateBuild(build); err != nil {
		d.send(p, network.Error{
			Type: network.MsgTypeError, MatchID: matchID, Message: err.Error(),
		})
		return
	}

	self.build = build
	self.ready = true
	d.send(other.player, network.OpponentReady{
		Type: network.MsgTypeOpponentReady, MatchID: matchID,
	})

	if !match.bothReady() {
		return
	}

	// Both builds in: start the battle immediately. Each side gets its
	// own build back plus the opponent's.
	match.State = MatchReady
	d.send(match.P1.player, network.BattleStart{
		Type: network.MsgTypeBattleStart, MatchID: matchID,
		PlayerData: match.P1.build, OpponentData: match.P2.build,
	})
	d.send(match.P2.player, network.BattleStart{
		Type: network.MsgTypeBattleStart, MatchID: matchID,
		PlayerData: match.P2.build, OpponentData: match.P1.build,
	})
	match.State = MatchActive
	logging.Info("battle started", logging.Fields{
		"match": matchID,
		"player1": match.P1.player.Username, "player2": match.P2.player.Username,
	})
}

func (d *Dispatcher) handleSubmitAction(p *Player, matchID, action string) {
	match, self, other := d.lookupMatch(p, matchID)
	if match == nil {
		return
	}
	if match.State != MatchActive {
		logging.Warn(ErrActionOnInactiveMatch.Error(), logging.Fields{
			"match": matchID, "state": match.State,
		})
		return
	}

	self.pendingAction = action
	self.hasAction = true

	if !match.barrierFull() {
		// The barrier waits on the other side; let them know.
		d.send(other.player, network.OpponentActionSubmitted{
			Type: network.MsgTypeOpponentActionSubmitted, MatchID: matchID,
		})
		return
	}

	// Both actions buffered: relay the pair to both sides. The received
	// order is irrelevant; each peer's engine orders by priority and
	// speed.
	match.Turn++
	d.send(match.P1.player, network.TurnResolved{
		Type: network.MsgTypeTurnResolved, MatchID: matchID, Turn: match.Turn,
		YourAction: match.P1.pendingAction, OpponentAction: match.P2.pendingAction,
	})
	d.send(match.P2.player, network.TurnResolved{
		Type: network.MsgTypeTurnResolved, MatchID: matchID, Turn: match.Turn,
		YourAction: match.P2.pendingAction, OpponentAction: match.P1.pendingAction,
	})
	match.clearActions()
}

func (d *Dispatcher) handleEndMatch(p *Player, matchID, winnerID string, stats models.MatchStats) {
	match, _, _ := d.lookupMatch(p, matchID)
	if match == nil {
		return
	}
	if match.State != MatchActive {
		// Finished already (the other peer reported first) or never
		// started; either way there is nothing to finalize.
		return
	}
	d.finalizeMatch(match, winnerID, stats)
}

func (d *Dispatcher) handleGetLeaderboard(p *Player) {
	if d.repo == nil {
		d.send(p, network.LeaderboardData{Type: network.MsgTypeLeaderboardData})
		return
	}
	entries, err := d.repo.Leaderboard(d.cfg.LeaderboardSize)
	if err != nil {
		logging.Error("load leaderboard", err, nil)
		d.send(p, network.Error{Type: network.MsgTypeError, Message: "leaderboard unavailable"})
		return
	}
	d.send(p, network.LeaderboardData{Type: network.MsgTypeLeaderboardData, Leaderboard: entries})
}

// finalizeMatch moves a match to finished, updates counters, persists the
// result and notifies both sides. The match lingers for the retention
// window so a late get_stats or duplicate report still finds it.
func (d *Dispatcher) finalizeMatch(match *Match, winnerID string, stats models.MatchStats) {
	match.State = MatchFinished
	match.Winner = winnerID
	match.P1.player.MatchID = ""
	match.P2.player.MatchID = ""

	if winnerID == models.DrawMarker {
		match.P1.player.Stats.Matches++
		match.P2.player.Stats.Matches++
	} else {
		winner, loser := match.sides(winnerID)
		if winner == nil {
			logging.Warn("end_match with unknown winner", logging.Fields{
				"match": match.ID, "winner": winnerID,
			})
		} else {
			winner.player.Stats.Wins++
			winner.player.Stats.Matches++
			loser.player.Stats.Losses++
			loser.player.Stats.Matches++

			if d.repo != nil {
				entry := models.LeaderboardEntry{
					Winner:    winner.player.Username,
					Loser:     loser.player.Username,
					Turns:     match.Turn,
					QueueType: match.QueueType,
					Date:      d.now(),
				}
				if err := d.repo.RecordResult(entry, d.cfg.LeaderboardSize); err != nil {
					logging.Error("persist match result", err, logging.Fields{"match": match.ID})
				}
			}
		}
	}

	for _, side := range []*participant{match.P1, match.P2} {
		if side.disconnected {
			continue
		}
		d.send(side.player, network.MatchEnded{
			Type: network.MsgTypeMatchEnded, MatchID: match.ID,
			Result: match.resultFor(side), Stats: side.player.Stats,
		})
	}

	logging.Info("match ended", logging.Fields{
		"match": match.ID, "winner": winnerID, "turns": match.Turn,
		"forfeit": stats.Forfeit,
	})

	retention := d.cfg.MatchRetention
	if retention <= 0 {
		retention = 30 * time.Second
	}
	matchID := match.ID
	time.AfterFunc(retention, func() {
		// The dispatcher may already be stopped when the timer fires.
		select {
		case d.events <- event{kind: evRemoveMatch, matchID: matchID}:
		case <-d.quit:
		}
	})
}

func (d *Dispatcher) handleDisconnect(p *Player) {
	logging.Info("player disconnected", logging.Fields{"player": p.Username})
	d.leaveQueues(p.ID)

	if match, ok := d.matches[p.MatchID]; ok && match.State != MatchFinished {
		self, other := match.sides(p.ID)
		if self != nil {
			self.disconnected = true
			switch match.State {
			case MatchActive:
				// Forfeit: the remaining peer wins immediately.
				d.finalizeMatch(match, other.player.ID, models.MatchStats{Forfeit: true})
			default:
				// Battle never started; free the opponent instead of
				// granting a zero-round win.
				match.State = MatchFinished
				other.player.MatchID = ""
				d.send(other.player, network.Error{
					Type: network.MsgTypeError, MatchID: match.ID,
					Message: "opponent disconnected before battle start",
				})
				delete(d.matches, match.ID)
			}
		}
	}

	delete(d.players, p.ID)
	close(p.Send)
}

// lookupMatch resolves a match reference from a message, verifying the
// sender belongs to it. Returns nils (after logging) otherwise.
func (d *Dispatcher) lookupMatch(p *Player, matchID string) (*Match, *participant, *participant) {
	match, ok := d.matches[matchID]
	if !ok {
		logging.Warn(ErrUnknownMatch.Error(), logging.Fields{
			"player": p.Username, "match": matchID,
		})
		return nil, nil, nil
	}
	self, other := match.sides(p.ID)
	if self == nil {
		logging.Warn(ErrUnknownPlayer.Error(), logging.Fields{
			"player": p.Username, "match": matchID,
		})
		return nil, nil, nil
	}
	return match, self, other
}

// send encodes and queues a message for one player.
func (d *Dispatcher) send(p *Player, msg interface{}) {
	frame, err := network.Encode(msg)
	if err != nil {
		logging.Error("encode message", err, logging.Fields{"player": p.Username})
		return
	}
	p.enqueue(frame)
}

func (d *Dispatcher) logStatus() {
	logging.Info("server status", logging.Fields{
		"players_online": len(d.players),
		"ranked_queue":   len(d.queues[models.QueueRanked]),
		"unranked_queue": len(d.queues[models.QueueUnranked]),
		"active_matches": len(d.matches),
	})
}
