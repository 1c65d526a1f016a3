package client

import "dungeonaut-arena/internal/models"

// UI is the player-facing surface of the client. TermboxUI draws a full
// terminal screen; ConsoleUI is the plain line-based fallback used when
// the terminal cannot enter raw mode.
type UI interface {
	Init() error
	Close()

	SetStatus(format string, args ...any)
	AddRound(log models.RoundLog)
	AddEvent(message string)
	ClearEvents()

	RenderBattle(you, opponent *models.Fighter, round int)
	RenderMessage(lines ...string)

	// ChooseBuild walks the player through stat allocation and skill
	// selection. Empty input keeps the default build's values.
	ChooseBuild() models.Build

	// ChooseAction blocks until the player picks a legal action.
	// Returns the action ID, or quit=true if the player conceded.
	ChooseAction(you *models.Fighter) (actionID string, quit bool)

	// WaitKey blocks until the player acknowledges the screen.
	WaitKey()
}
