package server

import (
	"strings"
	"testing"
	"time"

	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

// fakeRepo captures persistence calls for assertions.
type fakeRepo struct {
	recorded []models.LeaderboardEntry
	entries  []models.LeaderboardEntry
	stats    map[string]models.PlayerStats
}

func (r *fakeRepo) RecordResult(entry models.LeaderboardEntry, maxEntries int) error {
	r.recorded = append(r.recorded, entry)
	return nil
}

func (r *fakeRepo) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	return r.entries, nil
}

func (r *fakeRepo) PlayerStats(username string) (models.PlayerStats, error) {
	return r.stats[username], nil
}

func (r *fakeRepo) Close() error { return nil }

func testDispatcher(repo *fakeRepo) *Dispatcher {
	cfg := Config{
		LeaderboardSize: 100,
		MatchRetention:  time.Minute,
	}
	if repo == nil {
		return NewDispatcher(cfg, nil)
	}
	return NewDispatcher(cfg, repo)
}

// drain processes every queued event synchronously, standing in for the
// Run loop.
func drain(d *Dispatcher) {
	for {
		select {
		case ev := <-d.events:
			d.handle(ev)
		default:
			return
		}
	}
}

func connect(t *testing.T, d *Dispatcher) *Player {
	t.Helper()
	p := d.Connect()
	drain(d)
	if got := recvType(t, p); got != network.MsgTypeConnected {
		t.Fatalf("first frame = %s, want connected", got)
	}
	return p
}

func post(t *testing.T, d *Dispatcher, p *Player, msg interface{}) {
	t.Helper()
	data, err := network.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	d.Post(p, data)
	drain(d)
}

// recvFrame pops the next queued outbound frame, failing if none is
// waiting.
func recvFrame(t *testing.T, p *Player) []byte {
	t.Helper()
	select {
	case data := <-p.Send:
		return data
	default:
		t.Fatalf("no frame queued for %s", p.Username)
		return nil
	}
}

func recvType(t *testing.T, p *Player) string {
	t.Helper()
	msgType, err := network.PeekType(recvFrame(t, p))
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	return msgType
}

func recvAs(t *testing.T, p *Player, wantType string, v interface{}) {
	t.Helper()
	data := recvFrame(t, p)
	msgType, _ := network.PeekType(data)
	if msgType != wantType {
		t.Fatalf("frame type = %s, want %s", msgType, wantType)
	}
	if err := network.Decode(data, v); err != nil {
		t.Fatalf("decode %s: %v", wantType, err)
	}
}

func noFrame(t *testing.T, p *Player) {
	t.Helper()
	select {
	case data := <-p.Send:
		msgType, _ := network.PeekType(data)
		t.Fatalf("unexpected frame %s for %s", msgType, p.Username)
	default:
	}
}

func validBuild() models.Build {
	return models.Build{
		Stats:  models.BuildStats{Vitality: 3, Strength: 3, Agility: 2, Luck: 2},
		Skills: []string{"shadow_strike", "stunning_strike", "healing_light", "power_up"},
	}
}

// pairPlayers connects two players and walks them into an active match.
func pairPlayers(t *testing.T, d *Dispatcher) (*Player, *Player, string) {
	t.Helper()
	p1 := connect(t, d)
	p2 := connect(t, d)

	post(t, d, p1, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	if got := recvType(t, p1); got != network.MsgTypeQueueJoined {
		t.Fatalf("frame = %s, want queue_joined", got)
	}

	post(t, d, p2, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})

	var found1, found2 network.MatchFound
	recvAs(t, p1, network.MsgTypeMatchFound, &found1)
	if got := recvType(t, p2); got != network.MsgTypeQueueJoined {
		t.Fatalf("frame = %s, want queue_joined", got)
	}
	recvAs(t, p2, network.MsgTypeMatchFound, &found2)

	if found1.MatchID != found2.MatchID {
		t.Fatalf("match IDs differ: %s vs %s", found1.MatchID, found2.MatchID)
	}
	if found1.YourRole != network.RolePlayer1 || found2.YourRole != network.RolePlayer2 {
		t.Fatalf("roles = %s/%s, want player1/player2", found1.YourRole, found2.YourRole)
	}
	if found1.OpponentID != p2.ID || found2.OpponentID != p1.ID {
		t.Fatal("opponent IDs not exchanged")
	}

	matchID := found1.MatchID
	post(t, d, p1, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: matchID, Build: validBuild()})
	if got := recvType(t, p2); got != network.MsgTypeOpponentReady {
		t.Fatalf("frame = %s, want opponent_ready", got)
	}

	post(t, d, p2, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: matchID, Build: validBuild()})
	if got := recvType(t, p1); got != network.MsgTypeOpponentReady {
		t.Fatalf("frame = %s, want opponent_ready", got)
	}

	var start1, start2 network.BattleStart
	recvAs(t, p1, network.MsgTypeBattleStart, &start1)
	recvAs(t, p2, network.MsgTypeBattleStart, &start2)

	if d.matches[matchID].State != MatchActive {
		t.Fatalf("match state = %s, want active", d.matches[matchID].State)
	}
	return p1, p2, matchID
}

func TestConnectAssignsDefaultUsername(t *testing.T) {
	d := testDispatcher(nil)
	p := d.Connect()
	drain(d)

	var hello network.Connected
	recvAs(t, p, network.MsgTypeConnected, &hello)
	if hello.PlayerID != p.ID {
		t.Fatalf("player ID = %s, want %s", hello.PlayerID, p.ID)
	}
	if !strings.HasPrefix(hello.Username, "Player") {
		t.Fatalf("default username = %q, want Player prefix", hello.Username)
	}
}

func TestSetUsernameTruncates(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)

	long := strings.Repeat("x", 25)
	post(t, d, p, network.SetUsername{Type: network.MsgTypeSetUsername, Username: long})

	var ack network.UsernameSet
	recvAs(t, p, network.MsgTypeUsernameSet, &ack)
	if len(ack.Username) != maxUsernameLen {
		t.Fatalf("username length = %d, want %d", len(ack.Username), maxUsernameLen)
	}
	if p.Username != ack.Username {
		t.Fatal("ack diverges from stored username")
	}
}

func TestSetUsernameLoadsLifetimeStats(t *testing.T) {
	repo := &fakeRepo{stats: map[string]models.PlayerStats{
		"veteran": {Wins: 9, Losses: 3, Matches: 12},
	}}
	d := testDispatcher(repo)
	p := connect(t, d)

	post(t, d, p, network.SetUsername{Type: network.MsgTypeSetUsername, Username: "veteran"})
	recvFrame(t, p) // username_set

	if p.Stats.Wins != 9 || p.Stats.Matches != 12 {
		t.Fatalf("stats = %+v, want the persisted counters", p.Stats)
	}
}

func TestJoinQueueRejectsUnknownType(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)

	post(t, d, p, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: "casual"})
	if got := recvType(t, p); got != network.MsgTypeError {
		t.Fatalf("frame = %s, want error", got)
	}
	if len(d.queues[models.QueueRanked])+len(d.queues[models.QueueUnranked]) != 0 {
		t.Fatal("player was queued anyway")
	}
}

func TestQueuePairsTwoOldest(t *testing.T) {
	d := testDispatcher(nil)
	pairPlayers(t, d)

	// A third player keeps waiting.
	p3 := connect(t, d)
	post(t, d, p3, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	if got := recvType(t, p3); got != network.MsgTypeQueueJoined {
		t.Fatalf("frame = %s, want queue_joined", got)
	}
	noFrame(t, p3)
	if len(d.queues[models.QueueRanked]) != 1 {
		t.Fatalf("ranked queue = %d, want 1", len(d.queues[models.QueueRanked]))
	}
}

func TestJoinSecondQueueMovesPlayer(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)

	post(t, d, p, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	recvFrame(t, p)
	post(t, d, p, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueUnranked})
	recvFrame(t, p)

	if len(d.queues[models.QueueRanked]) != 0 {
		t.Fatal("player still in ranked queue")
	}
	if len(d.queues[models.QueueUnranked]) != 1 {
		t.Fatal("player missing from unranked queue")
	}
	if p.QueueType != models.QueueUnranked {
		t.Fatalf("queue type = %s, want unranked", p.QueueType)
	}
}

func TestLeaveQueue(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)

	post(t, d, p, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	recvFrame(t, p)
	post(t, d, p, network.LeaveQueue{Type: network.MsgTypeLeaveQueue})
	if got := recvType(t, p); got != network.MsgTypeQueueLeft {
		t.Fatalf("frame = %s, want queue_left", got)
	}
	if len(d.queues[models.QueueRanked]) != 0 {
		t.Fatal("player still queued after leave")
	}
}

func TestInvalidBuildCanBeResubmitted(t *testing.T) {
	d := testDispatcher(nil)
	p1 := connect(t, d)
	p2 := connect(t, d)
	post(t, d, p1, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueUnranked})
	post(t, d, p2, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueUnranked})
	recvFrame(t, p1) // queue_joined
	var found network.MatchFound
	recvAs(t, p1, network.MsgTypeMatchFound, &found)

	bad := models.Build{Skills: []string{"shadow_strike"}}
	post(t, d, p1, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: found.MatchID, Build: bad})

	var errMsg network.Error
	recvAs(t, p1, network.MsgTypeError, &errMsg)
	if errMsg.MatchID != found.MatchID {
		t.Fatalf("error match ID = %s, want %s", errMsg.MatchID, found.MatchID)
	}
	if d.matches[found.MatchID].State != MatchBuilding {
		t.Fatal("rejected build changed the match state")
	}

	post(t, d, p1, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: found.MatchID, Build: validBuild()})
	if !d.matches[found.MatchID].P1.ready {
		t.Fatal("resubmitted valid build not accepted")
	}
}

func TestBattleStartCarriesOwnBuildAsPlayerData(t *testing.T) {
	d := testDispatcher(nil)
	p1 := connect(t, d)
	p2 := connect(t, d)
	post(t, d, p1, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	post(t, d, p2, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	recvFrame(t, p1)
	var found network.MatchFound
	recvAs(t, p1, network.MsgTypeMatchFound, &found)
	recvFrame(t, p2)
	recvFrame(t, p2) // match_found

	b1 := validBuild()
	b2 := models.Build{
		Stats:  models.BuildStats{Vitality: 0, Strength: 6, Agility: 2, Luck: 2},
		Skills: []string{"devastating_blow", "execute", "feint", "weaken"},
	}
	post(t, d, p1, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: found.MatchID, Build: b1})
	post(t, d, p2, network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: found.MatchID, Build: b2})
	recvFrame(t, p1) // opponent_ready
	recvFrame(t, p2) // opponent_ready

	var start1, start2 network.BattleStart
	recvAs(t, p1, network.MsgTypeBattleStart, &start1)
	recvAs(t, p2, network.MsgTypeBattleStart, &start2)

	if start1.PlayerData.Skills[0] != b1.Skills[0] || start1.OpponentData.Skills[0] != b2.Skills[0] {
		t.Fatal("player1 received swapped builds")
	}
	if start2.PlayerData.Skills[0] != b2.Skills[0] || start2.OpponentData.Skills[0] != b1.Skills[0] {
		t.Fatal("player2 received swapped builds")
	}
}

func TestActionBarrierRelaysBothActions(t *testing.T) {
	d := testDispatcher(nil)
	p1, p2, matchID := pairPlayers(t, d)

	post(t, d, p1, network.SubmitAction{Type: network.MsgTypeSubmitAction, MatchID: matchID, Action: "shadow_strike"})
	if got := recvType(t, p2); got != network.MsgTypeOpponentActionSubmitted {
		t.Fatalf("frame = %s, want opponent_action_submitted", got)
	}
	noFrame(t, p1)

	post(t, d, p2, network.SubmitAction{Type: network.MsgTypeSubmitAction, MatchID: matchID, Action: "guard"})

	var turn1, turn2 network.TurnResolved
	recvAs(t, p1, network.MsgTypeTurnResolved, &turn1)
	recvAs(t, p2, network.MsgTypeTurnResolved, &turn2)

	if turn1.Turn != 1 || turn2.Turn != 1 {
		t.Fatalf("turn = %d/%d, want 1", turn1.Turn, turn2.Turn)
	}
	if turn1.YourAction != "shadow_strike" || turn1.OpponentAction != "guard" {
		t.Fatalf("player1 pair = (%s, %s), want (shadow_strike, guard)", turn1.YourAction, turn1.OpponentAction)
	}
	if turn2.YourAction != "guard" || turn2.OpponentAction != "shadow_strike" {
		t.Fatalf("player2 pair = (%s, %s), want (guard, shadow_strike)", turn2.YourAction, turn2.OpponentAction)
	}

	if d.matches[matchID].barrierFull() {
		t.Fatal("barrier not cleared for the next round")
	}
}

func TestEndMatchFinalizesAndPersists(t *testing.T) {
	repo := &fakeRepo{}
	d := testDispatcher(repo)
	p1, p2, matchID := pairPlayers(t, d)
	d.matches[matchID].Turn = 7

	post(t, d, p1, network.EndMatch{
		Type: network.MsgTypeEndMatch, MatchID: matchID, WinnerID: p1.ID,
		Stats: models.MatchStats{DamageDealt: 130},
	})

	var end1, end2 network.MatchEnded
	recvAs(t, p1, network.MsgTypeMatchEnded, &end1)
	recvAs(t, p2, network.MsgTypeMatchEnded, &end2)

	if end1.Result != network.ResultVictory || end2.Result != network.ResultDefeat {
		t.Fatalf("results = %s/%s, want victory/defeat", end1.Result, end2.Result)
	}
	if end1.Stats.Wins != 1 || end2.Stats.Losses != 1 {
		t.Fatalf("stats = %+v / %+v, want one win and one loss", end1.Stats, end2.Stats)
	}
	if p1.MatchID != "" || p2.MatchID != "" {
		t.Fatal("players still bound to the finished match")
	}

	if len(repo.recorded) != 1 {
		t.Fatalf("persisted entries = %d, want 1", len(repo.recorded))
	}
	entry := repo.recorded[0]
	if entry.Winner != p1.Username || entry.Loser != p2.Username || entry.Turns != 7 {
		t.Fatalf("entry = %+v, want winner %s over %s in 7 turns", entry, p1.Username, p2.Username)
	}

	// Duplicate report from the other peer is ignored.
	post(t, d, p2, network.EndMatch{Type: network.MsgTypeEndMatch, MatchID: matchID, WinnerID: p2.ID})
	noFrame(t, p1)
	noFrame(t, p2)
	if len(repo.recorded) != 1 {
		t.Fatal("duplicate report persisted a second entry")
	}
}

func TestFinishedMatchRemovedAfterRetention(t *testing.T) {
	d := NewDispatcher(Config{
		LeaderboardSize: 100,
		MatchRetention:  10 * time.Millisecond,
	}, &fakeRepo{})
	t.Cleanup(d.Stop)
	p1, _, matchID := pairPlayers(t, d)

	post(t, d, p1, network.EndMatch{Type: network.MsgTypeEndMatch, MatchID: matchID, WinnerID: p1.ID})
	if _, ok := d.matches[matchID]; !ok {
		t.Fatal("finished match dropped before retention elapsed")
	}

	// The timer posts the removal event once retention elapses.
	deadline := time.Now().Add(2 * time.Second)
	for {
		drain(d)
		if _, ok := d.matches[matchID]; !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("finished match still retained")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDrawIsNotPersisted(t *testing.T) {
	repo := &fakeRepo{}
	d := testDispatcher(repo)
	p1, p2, matchID := pairPlayers(t, d)

	post(t, d, p1, network.EndMatch{Type: network.MsgTypeEndMatch, MatchID: matchID, WinnerID: models.DrawMarker})

	var end1, end2 network.MatchEnded
	recvAs(t, p1, network.MsgTypeMatchEnded, &end1)
	recvAs(t, p2, network.MsgTypeMatchEnded, &end2)
	if end1.Result != network.ResultDraw || end2.Result != network.ResultDraw {
		t.Fatalf("results = %s/%s, want draw/draw", end1.Result, end2.Result)
	}
	if len(repo.recorded) != 0 {
		t.Fatal("draw landed on the leaderboard")
	}
	if p1.Stats.Matches != 1 || p1.Stats.Wins != 0 || p2.Stats.Matches != 1 {
		t.Fatal("draw should bump only the match counters")
	}
}

func TestDisconnectDuringActiveMatchForfeits(t *testing.T) {
	repo := &fakeRepo{}
	d := testDispatcher(repo)
	p1, p2, matchID := pairPlayers(t, d)

	d.Disconnect(p1)
	drain(d)

	var end network.MatchEnded
	recvAs(t, p2, network.MsgTypeMatchEnded, &end)
	if end.Result != network.ResultVictory {
		t.Fatalf("result = %s, want victory by forfeit", end.Result)
	}
	if d.matches[matchID].Winner != p2.ID {
		t.Fatalf("winner = %s, want %s", d.matches[matchID].Winner, p2.ID)
	}
	if len(repo.recorded) != 1 || repo.recorded[0].Winner != p2.Username {
		t.Fatal("forfeit result not persisted for the survivor")
	}
	if _, ok := d.players[p1.ID]; ok {
		t.Fatal("disconnected player still registered")
	}
}

func TestDisconnectBeforeBattleStartVoidsMatch(t *testing.T) {
	d := testDispatcher(nil)
	p1 := connect(t, d)
	p2 := connect(t, d)
	post(t, d, p1, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	post(t, d, p2, network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: models.QueueRanked})
	recvFrame(t, p1)
	var found network.MatchFound
	recvAs(t, p1, network.MsgTypeMatchFound, &found)
	recvFrame(t, p2)
	recvFrame(t, p2)

	d.Disconnect(p1)
	drain(d)

	var errMsg network.Error
	recvAs(t, p2, network.MsgTypeError, &errMsg)
	if errMsg.MatchID != found.MatchID {
		t.Fatalf("error match = %s, want %s", errMsg.MatchID, found.MatchID)
	}
	if _, ok := d.matches[found.MatchID]; ok {
		t.Fatal("voided match still in the table")
	}
	if p2.MatchID != "" {
		t.Fatal("survivor still bound to the voided match")
	}
	if p2.Stats.Wins != 0 {
		t.Fatal("pre-battle disconnect must not award a win")
	}
}

func TestGetLeaderboard(t *testing.T) {
	repo := &fakeRepo{entries: []models.LeaderboardEntry{
		{Winner: "ada", Loser: "bo", Turns: 4, QueueType: models.QueueRanked},
		{Winner: "bo", Loser: "cy", Turns: 9, QueueType: models.QueueRanked},
	}}
	d := testDispatcher(repo)
	p := connect(t, d)

	post(t, d, p, network.GetLeaderboard{Type: network.MsgTypeGetLeaderboard})

	var lb network.LeaderboardData
	recvAs(t, p, network.MsgTypeLeaderboardData, &lb)
	if len(lb.Leaderboard) != 2 || lb.Leaderboard[0].Winner != "ada" {
		t.Fatalf("leaderboard = %+v, want the repo entries in order", lb.Leaderboard)
	}
}

func TestGetStatsAndPing(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)
	p.Stats = models.PlayerStats{Wins: 2, Losses: 1, Matches: 3}

	post(t, d, p, network.GetStats{Type: network.MsgTypeGetStats})
	var stats network.PlayerStats
	recvAs(t, p, network.MsgTypePlayerStats, &stats)
	if stats.Stats.Wins != 2 || stats.Stats.Matches != 3 {
		t.Fatalf("stats = %+v, want the player's counters", stats.Stats)
	}

	post(t, d, p, network.Ping{Type: network.MsgTypePing})
	if got := recvType(t, p); got != network.MsgTypePong {
		t.Fatalf("frame = %s, want pong", got)
	}
}

func TestMalformedFrameIsIgnored(t *testing.T) {
	d := testDispatcher(nil)
	p := connect(t, d)

	d.Post(p, []byte("{not json"))
	drain(d)
	noFrame(t, p)

	// The connection stays usable.
	post(t, d, p, network.Ping{Type: network.MsgTypePing})
	if got := recvType(t, p); got != network.MsgTypePong {
		t.Fatalf("frame = %s, want pong after a malformed frame", got)
	}
}

func TestActionOnFinishedMatchIsIgnored(t *testing.T) {
	d := testDispatcher(nil)
	p1, p2, matchID := pairPlayers(t, d)

	post(t, d, p1, network.EndMatch{Type: network.MsgTypeEndMatch, MatchID: matchID, WinnerID: p1.ID})
	recvFrame(t, p1)
	recvFrame(t, p2)

	post(t, d, p1, network.SubmitAction{Type: network.MsgTypeSubmitAction, MatchID: matchID, Action: "guard"})
	noFrame(t, p1)
	noFrame(t, p2)
}
