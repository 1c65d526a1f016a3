package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/models"
)

// ConsoleUI is the line-based fallback for terminals where termbox
// cannot initialize (pipes, dumb terminals). Everything scrolls; events
// print as they happen instead of redrawing a fixed screen.
type ConsoleUI struct {
	reader *bufio.Reader
}

func NewConsoleUI() *ConsoleUI {
	return &ConsoleUI{reader: bufio.NewReader(os.Stdin)}
}

func (ui *ConsoleUI) Init() error { return nil }
func (ui *ConsoleUI) Close()      {}

func (ui *ConsoleUI) SetStatus(format string, args ...any) {
	fmt.Printf("* "+format+"\n", args...)
}

func (ui *ConsoleUI) AddRound(log models.RoundLog) {
	for _, ev := range log.Events {
		ui.AddEvent(ev.Message)
	}
}

func (ui *ConsoleUI) AddEvent(message string) {
	if message != "" {
		fmt.Println("  " + message)
	}
}

// ClearEvents is a no-op; the console log just scrolls.
func (ui *ConsoleUI) ClearEvents() {}

func (ui *ConsoleUI) RenderBattle(you, opponent *models.Fighter, round int) {
	fmt.Printf("\n=== Round %d ===\n", round)
	ui.printFighter(you)
	ui.printFighter(opponent)
}

func (ui *ConsoleUI) printFighter(f *models.Fighter) {
	fmt.Printf("%-20s %s HP %d/%d  Shield %d  ATK %d  SPD %d",
		f.Name, hpBar(f.HP, f.MaxHP), f.HP, f.MaxHP, f.Shield, f.Attack, f.CurrentSpeed)
	if line := statusLine(f); line != "" {
		fmt.Printf("  [%s]", line)
	}
	fmt.Println()
}

func (ui *ConsoleUI) RenderMessage(lines ...string) {
	fmt.Println()
	for _, line := range lines {
		fmt.Println(line)
	}
}

func (ui *ConsoleUI) ChooseBuild() models.Build {
	build := DefaultBuild()
	catalog := game.Catalog()

	fmt.Println("\n=== Build Your Fighter ===")
	fmt.Printf("Allocate %d stat points as: vitality strength agility luck\n", statBudget)
	fmt.Println("(enter for balanced 3 3 2 2)")
	for {
		stats, err := parseStats(ui.prompt("Stats: "))
		if err != nil {
			fmt.Println("Invalid:", err)
			continue
		}
		if stats != nil {
			build.Stats = *stats
		}
		break
	}

	for i, sk := range catalog {
		fmt.Printf("%2d) %-18s %s cd%d\n", i+1, sk.Name, sk.Category, sk.Cooldown)
	}
	fmt.Printf("Pick %d skills by number, e.g. \"1 4 11 15\" (enter for default)\n", game.EquippedSkillCount)
	for {
		ids, err := parseSkillPicks(ui.prompt("Skills: "), catalog)
		if err != nil {
			fmt.Println("Invalid:", err)
			continue
		}
		if ids != nil {
			build.Skills = ids
		}
		if err := game.ValidateBuild(build); err != nil {
			fmt.Println("Invalid:", err)
			continue
		}
		break
	}
	return build
}

func (ui *ConsoleUI) ChooseAction(you *models.Fighter) (actionID string, quit bool) {
	parts := make([]string, 0, len(you.Skills)+2)
	for i, eq := range you.Skills {
		label := fmt.Sprintf("[%d]%s", i+1, eq.Skill.Name)
		if !eq.Ready() {
			label += fmt.Sprintf("(%d)", eq.CurrentCooldown)
		}
		parts = append(parts, label)
	}
	parts = append(parts, "[a]Attack", "[g]Guard", "[q]Concede")
	fmt.Println(strings.Join(parts, "  "))

	for {
		switch line := ui.prompt("Action: "); line {
		case "q":
			return "", true
		case "a":
			return game.ActionBasicAttack, false
		case "g":
			return game.ActionGuard, false
		default:
			if len(line) != 1 || line[0] < '1' || line[0] > '9' {
				fmt.Println("Unknown action.")
				continue
			}
			idx := int(line[0] - '1')
			if idx >= len(you.Skills) {
				fmt.Println("Unknown action.")
				continue
			}
			eq := you.Skills[idx]
			if !eq.Ready() {
				fmt.Printf("%s is on cooldown (%d more rounds)\n", eq.Skill.Name, eq.CurrentCooldown)
				continue
			}
			return eq.Skill.ID, false
		}
	}
}

func (ui *ConsoleUI) WaitKey() {
	fmt.Print("Press enter to continue.")
	ui.reader.ReadString('\n')
}

func (ui *ConsoleUI) prompt(label string) string {
	fmt.Print(label)
	line, _ := ui.reader.ReadString('\n')
	return strings.TrimSpace(line)
}
