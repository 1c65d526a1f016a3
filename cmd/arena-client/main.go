package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"dungeonaut-arena/internal/client"
	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

func main() {
	serverURL := flag.String("server", client.DefaultServerURL, "arena server websocket URL")
	name := flag.String("name", "", "username (server assigns a default when empty)")
	queue := flag.String("queue", "unranked", "queue type: ranked or unranked")
	practice := flag.Bool("practice", false, "play a local match against the Rival")
	leaderboard := flag.Bool("leaderboard", false, "print the leaderboard and exit")
	flag.Parse()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if *practice {
		runPractice(*name, rng)
		return
	}
	if *leaderboard {
		printLeaderboard(*serverURL)
		return
	}
	runOnline(*serverURL, *name, models.QueueType(*queue), rng)
}

// initUI prefers the full termbox screen and falls back to the plain
// console when the terminal cannot enter raw mode.
func initUI() client.UI {
	tb := client.NewTermboxUI()
	if err := tb.Init(); err == nil {
		return tb
	} else {
		logging.Warn("terminal screen unavailable, using console", logging.Fields{"error": err.Error()})
	}
	ui := client.NewConsoleUI()
	ui.Init()
	return ui
}

func runPractice(name string, rng *rand.Rand) {
	if name == "" {
		name = "You"
	}

	ui := initUI()
	defer ui.Close()

	build := ui.ChooseBuild()
	match, err := client.NewPractice(name, build, rng)
	if err != nil {
		ui.Close()
		logging.Fatal("create practice match", err, nil)
	}

	for !match.Over() {
		ui.SetStatus("Practice match vs %s", match.Rival.Name)
		ui.RenderBattle(match.You, match.Rival, match.Battle.Round+1)
		id, quit := ui.ChooseAction(match.You)
		if quit {
			return
		}
		action, _ := game.ActionByID(id)
		log := match.PlayRound(action)
		ui.AddRound(log)
	}

	ui.RenderBattle(match.You, match.Rival, match.Battle.Round)
	showResult(ui, resultLine(match.Battle.Winner, match.You.Name))
}

func runOnline(serverURL, name string, queueType models.QueueType, rng *rand.Rand) {
	if !queueType.Valid() {
		fmt.Fprintf(os.Stderr, "unknown queue type %q\n", queueType)
		os.Exit(2)
	}

	c := client.NewClient(serverURL)
	if err := c.Connect(); err != nil {
		logging.Fatal("connect", err, logging.Fields{"server": serverURL})
	}
	defer c.Close()

	if name != "" {
		if err := c.SetUsername(name); err != nil {
			logging.Fatal("set username", err, nil)
		}
	}

	ui := initUI()
	defer ui.Close()

	build := ui.ChooseBuild()
	if err := c.JoinQueue(queueType); err != nil {
		ui.Close()
		logging.Fatal("join queue", err, nil)
	}
	ui.RenderMessage(fmt.Sprintf("Searching for a %s opponent...", queueType))

	var found network.MatchFound
	var duel *client.Duel

	for data := range c.Frames {
		msgType, err := network.PeekType(data)
		if err != nil {
			continue
		}

		switch msgType {
		case network.MsgTypeConnected:
			// The link dropped and came back as a fresh player; any
			// match in flight was forfeited server-side.
			duel = nil
			c.JoinQueue(queueType)
			ui.ClearEvents()
			ui.RenderMessage("Reconnected. Searching for a new opponent...")

		case network.MsgTypeMatchFound:
			if network.Decode(data, &found) != nil {
				continue
			}
			c.SubmitBuild(found.MatchID, build)
			ui.RenderMessage(
				fmt.Sprintf("Matched against %s (%s).", found.Opponent, found.YourRole),
				"Waiting for both builds...")

		case network.MsgTypeOpponentReady:
			ui.RenderMessage(
				fmt.Sprintf("Matched against %s.", found.Opponent),
				"Opponent is ready. Waiting for battle start...")

		case network.MsgTypeBattleStart:
			var start network.BattleStart
			if network.Decode(data, &start) != nil {
				continue
			}
			duel, err = client.NewDuel(c.PlayerID, c.Username, found, start, rng)
			if err != nil {
				logging.Error("start battle", err, logging.Fields{"match": start.MatchID})
				continue
			}
			ui.ClearEvents()
			ui.SetStatus("Battle started against %s", found.Opponent)
			if conceded := pickAndSubmit(c, ui, duel); conceded {
				duel = nil
			}

		case network.MsgTypeOpponentActionSubmitted:
			if duel != nil {
				ui.SetStatus("Opponent has locked in an action")
				ui.RenderBattle(duel.You, duel.Opponent, duel.Battle.Round+1)
			}

		case network.MsgTypeTurnResolved:
			var turn network.TurnResolved
			if network.Decode(data, &turn) != nil || duel == nil {
				continue
			}
			roundLog := duel.ApplyTurn(turn)
			ui.AddRound(roundLog)
			if duel.Over() {
				ui.RenderBattle(duel.You, duel.Opponent, duel.Battle.Round)
				c.EndMatch(duel.Report())
				continue
			}
			if conceded := pickAndSubmit(c, ui, duel); conceded {
				duel = nil
			}

		case network.MsgTypeMatchEnded:
			var ended network.MatchEnded
			if network.Decode(data, &ended) != nil {
				continue
			}
			showResult(ui,
				fmt.Sprintf("Match over: %s", ended.Result),
				fmt.Sprintf("Record: %d wins / %d losses over %d matches",
					ended.Stats.Wins, ended.Stats.Losses, ended.Stats.Matches))
			return

		case network.MsgTypeError:
			var errMsg network.Error
			if network.Decode(data, &errMsg) != nil {
				continue
			}
			if errMsg.MatchID != "" && duel == nil {
				// Build rejected; fix it and resubmit.
				build = ui.ChooseBuild()
				c.SubmitBuild(errMsg.MatchID, build)
				continue
			}
			ui.SetStatus("Server: %s", errMsg.Message)

		case network.MsgTypePong, network.MsgTypeUsernameSet,
			network.MsgTypeQueueJoined, network.MsgTypeQueueLeft:
			// Acknowledgements need no handling.
		}
	}
}

// pickAndSubmit renders the battle, blocks for the player's choice and
// submits it. Returns true if the player conceded instead.
func pickAndSubmit(c *client.Client, ui client.UI, duel *client.Duel) bool {
	ui.RenderBattle(duel.You, duel.Opponent, duel.Battle.Round+1)
	id, quit := ui.ChooseAction(duel.You)
	if quit {
		c.EndMatch(duel.ForfeitReport())
		return true
	}
	if err := c.SubmitAction(duel.MatchID, id); err != nil {
		logging.Error("submit action", err, logging.Fields{"match": duel.MatchID})
		return false
	}
	ui.SetStatus("Action locked in. Waiting for opponent...")
	ui.RenderBattle(duel.You, duel.Opponent, duel.Battle.Round+1)
	return false
}

func resultLine(winner, you string) string {
	switch winner {
	case models.DrawMarker:
		return "The match is a draw."
	case you:
		return "Victory!"
	default:
		return "Defeat."
	}
}

func showResult(ui client.UI, lines ...string) {
	lines = append(lines, "", "Press any key to exit.")
	ui.RenderMessage(lines...)
	ui.WaitKey()
}

func printLeaderboard(serverURL string) {
	c := client.NewClient(serverURL)
	if err := c.Connect(); err != nil {
		logging.Fatal("connect", err, logging.Fields{"server": serverURL})
	}
	defer c.Close()

	if err := c.RequestLeaderboard(); err != nil {
		logging.Fatal("request leaderboard", err, nil)
	}

	timeout := time.After(10 * time.Second)
	for {
		select {
		case data, ok := <-c.Frames:
			if !ok {
				logging.Fatal("connection closed", nil, nil)
			}
			msgType, err := network.PeekType(data)
			if err != nil || msgType != network.MsgTypeLeaderboardData {
				continue
			}
			var lb network.LeaderboardData
			if err := network.Decode(data, &lb); err != nil {
				logging.Fatal("decode leaderboard", err, nil)
			}
			if len(lb.Leaderboard) == 0 {
				fmt.Println("Leaderboard is empty.")
				return
			}
			fmt.Printf("%-4s %-20s %-20s %-6s %-8s %s\n", "#", "Winner", "Loser", "Turns", "Queue", "Date")
			for i, e := range lb.Leaderboard {
				fmt.Printf("%-4d %-20s %-20s %-6d %-8s %s\n",
					i+1, e.Winner, e.Loser, e.Turns, e.QueueType, e.Date.Format("2006-01-02 15:04"))
			}
			return
		case <-timeout:
			logging.Fatal("leaderboard request timed out", nil, nil)
		}
	}
}
