package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nsf/termbox-go"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/models"
)

const (
	hpBarWidth   = 24
	maxLogLines  = 10
	statusLineY  = 21
	eventLogY    = 10
	skillPromptY = 7
)

// TermboxUI draws the duel screen and collects player input. All termbox
// calls happen on the goroutine driving the client loop.
type TermboxUI struct {
	events []string
	status string
}

func NewTermboxUI() *TermboxUI {
	return &TermboxUI{}
}

func (ui *TermboxUI) Init() error {
	return termbox.Init()
}

func (ui *TermboxUI) Close() {
	termbox.Close()
}

// DisplayStaticText draws text at given coordinates without flushing.
func (ui *TermboxUI) DisplayStaticText(x, y int, text string, fg, bg termbox.Attribute) {
	for i, r := range []rune(text) {
		termbox.SetCell(x+i, y, r, fg, bg)
	}
}

// SetStatus replaces the one-line status banner at the bottom.
func (ui *TermboxUI) SetStatus(format string, args ...any) {
	ui.status = fmt.Sprintf(format, args...)
}

// AddRound appends a resolved round's events to the scrolling log.
func (ui *TermboxUI) AddRound(log models.RoundLog) {
	for _, ev := range log.Events {
		ui.AddEvent(ev.Message)
	}
}

// AddEvent appends one line to the scrolling log.
func (ui *TermboxUI) AddEvent(message string) {
	if message == "" {
		return
	}
	ui.events = append(ui.events, message)
	if len(ui.events) > maxLogLines {
		ui.events = ui.events[len(ui.events)-maxLogLines:]
	}
}

// ClearEvents empties the scrolling log between matches.
func (ui *TermboxUI) ClearEvents() {
	ui.events = nil
}

// RenderBattle draws the full duel screen: both fighters, the player's
// skill bar with cooldowns, the event log and the status banner.
func (ui *TermboxUI) RenderBattle(you, opponent *models.Fighter, round int) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	ui.DisplayStaticText(1, 0, fmt.Sprintf("=== Round %d ===", round), termbox.ColorYellow, termbox.ColorDefault)

	ui.renderFighter(1, 1, you, termbox.ColorGreen)
	ui.renderFighter(42, 1, opponent, termbox.ColorRed)

	ui.renderSkillBar(you)

	ui.DisplayStaticText(1, eventLogY-1, "--- Battle Log ---", termbox.ColorCyan, termbox.ColorDefault)
	for i, line := range ui.events {
		ui.DisplayStaticText(1, eventLogY+i, line, termbox.ColorWhite, termbox.ColorDefault)
	}

	if ui.status != "" {
		ui.DisplayStaticText(1, statusLineY, ui.status, termbox.ColorMagenta, termbox.ColorDefault)
	}

	termbox.Flush()
}

// RenderMessage clears the screen and shows centered-ish lines of text.
func (ui *TermboxUI) RenderMessage(lines ...string) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for i, line := range lines {
		ui.DisplayStaticText(2, 2+i, line, termbox.ColorWhite, termbox.ColorDefault)
	}
	termbox.Flush()
}

func (ui *TermboxUI) renderFighter(x, y int, f *models.Fighter, color termbox.Attribute) {
	ui.DisplayStaticText(x, y, f.Name, color|termbox.AttrBold, termbox.ColorDefault)
	ui.DisplayStaticText(x, y+1, hpBar(f.HP, f.MaxHP), color, termbox.ColorDefault)
	ui.DisplayStaticText(x, y+2, fmt.Sprintf("HP %d/%d  Shield %d", f.HP, f.MaxHP, f.Shield),
		termbox.ColorWhite, termbox.ColorDefault)
	ui.DisplayStaticText(x, y+3, fmt.Sprintf("ATK %d  SPD %d", f.Attack, f.CurrentSpeed),
		termbox.ColorWhite, termbox.ColorDefault)
	if line := statusLine(f); line != "" {
		ui.DisplayStaticText(x, y+4, line, termbox.ColorYellow, termbox.ColorDefault)
	}
}

func (ui *TermboxUI) renderSkillBar(you *models.Fighter) {
	parts := make([]string, 0, len(you.Skills)+2)
	for i, eq := range you.Skills {
		label := fmt.Sprintf("[%d]%s", i+1, eq.Skill.Name)
		if !eq.Ready() {
			label += fmt.Sprintf("(%d)", eq.CurrentCooldown)
		}
		parts = append(parts, label)
	}
	parts = append(parts, "[a]Attack", "[g]Guard")
	ui.DisplayStaticText(1, skillPromptY, strings.Join(parts, "  "), termbox.ColorCyan, termbox.ColorDefault)
	ui.DisplayStaticText(1, skillPromptY+1, "Pick an action (q to concede)", termbox.ColorWhite, termbox.ColorDefault)
}

// hpBar renders a fixed-width bar like [##########------].
func hpBar(hp, maxHP int) string {
	if maxHP <= 0 {
		maxHP = 1
	}
	filled := hp * hpBarWidth / maxHP
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", hpBarWidth-filled) + "]"
}

// statusLine formats active statuses in a stable order.
func statusLine(f *models.Fighter) string {
	if len(f.Status) == 0 {
		return ""
	}
	parts := make([]string, 0, len(f.Status))
	for effect, turns := range f.Status {
		parts = append(parts, fmt.Sprintf("%s(%d)", effect, turns))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// ChooseAction blocks on the keyboard until the player picks a legal
// action. Returns the action ID, or quit=true if the player conceded.
func (ui *TermboxUI) ChooseAction(you *models.Fighter) (actionID string, quit bool) {
	for {
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}
		switch {
		case ev.Ch == 'q' || ev.Key == termbox.KeyEsc:
			return "", true
		case ev.Ch == 'a':
			return game.ActionBasicAttack, false
		case ev.Ch == 'g':
			return game.ActionGuard, false
		case ev.Ch >= '1' && ev.Ch <= '9':
			idx := int(ev.Ch - '1')
			if idx >= len(you.Skills) {
				continue
			}
			eq := you.Skills[idx]
			if !eq.Ready() {
				ui.DisplayStaticText(1, statusLineY,
					fmt.Sprintf("%s is on cooldown (%d more rounds)   ", eq.Skill.Name, eq.CurrentCooldown),
					termbox.ColorMagenta, termbox.ColorDefault)
				termbox.Flush()
				continue
			}
			return eq.Skill.ID, false
		}
	}
}

// WaitKey blocks until any key is pressed.
func (ui *TermboxUI) WaitKey() {
	for {
		if ev := termbox.PollEvent(); ev.Type == termbox.EventKey {
			return
		}
	}
}

// GetTextInput prompts for a line of text at the given location.
func (ui *TermboxUI) GetTextInput(prompt string, x, y int, fg, bg termbox.Attribute) string {
	ui.DisplayStaticText(x, y, prompt, fg, bg)
	termbox.Flush()

	var runes []rune
	inputX := x + len(prompt)

	for {
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}

		switch ev.Key {
		case termbox.KeyEnter:
			return string(runes)
		case termbox.KeyEsc:
			return ""
		case termbox.KeySpace:
			runes = append(runes, ' ')
		case termbox.KeyBackspace, termbox.KeyBackspace2:
			if len(runes) > 0 {
				runes = runes[:len(runes)-1]
				termbox.SetCell(inputX+len(runes), y, ' ', fg, bg)
			}
		default:
			if ev.Ch != 0 {
				runes = append(runes, ev.Ch)
			}
		}

		for i := 0; i < 50; i++ {
			termbox.SetCell(inputX+i, y, ' ', fg, bg)
		}
		for i, r := range runes {
			termbox.SetCell(inputX+i, y, r, fg, bg)
		}
		termbox.Flush()
	}
}
