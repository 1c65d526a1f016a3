package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nsf/termbox-go"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/models"
)

const statBudget = 10

// DefaultBuild is the balanced loadout used when the player skips the
// build screen.
func DefaultBuild() models.Build {
	return models.Build{
		Stats:  models.BuildStats{Vitality: 3, Strength: 3, Agility: 2, Luck: 2},
		Skills: []string{"shadow_strike", "stunning_strike", "healing_light", "power_up"},
	}
}

// ChooseBuild walks the player through stat allocation and skill
// selection on the termbox screen. Empty input at either prompt falls
// back to the default build's values.
func (ui *TermboxUI) ChooseBuild() models.Build {
	build := DefaultBuild()
	catalog := game.Catalog()

	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	ui.DisplayStaticText(1, 0, "=== Build Your Fighter ===", termbox.ColorYellow, termbox.ColorDefault)
	ui.DisplayStaticText(1, 2, fmt.Sprintf("Allocate %d stat points as: vitality strength agility luck", statBudget),
		termbox.ColorWhite, termbox.ColorDefault)
	ui.DisplayStaticText(1, 3, "(enter for balanced 3 3 2 2)", termbox.ColorCyan, termbox.ColorDefault)
	termbox.Flush()

	for {
		line := ui.GetTextInput("Stats: ", 1, 4, termbox.ColorWhite, termbox.ColorDefault)
		stats, err := parseStats(line)
		if err != nil {
			ui.DisplayStaticText(1, 5, "Invalid: "+err.Error()+strings.Repeat(" ", 20), termbox.ColorRed, termbox.ColorDefault)
			termbox.Flush()
			continue
		}
		if stats != nil {
			build.Stats = *stats
		}
		break
	}

	col := 0
	for i, sk := range catalog {
		x := 1 + (col * 40)
		y := 7 + (i % 8)
		if i%8 == 7 {
			col++
		}
		line := fmt.Sprintf("%2d) %-18s %s cd%d", i+1, sk.Name, sk.Category, sk.Cooldown)
		ui.DisplayStaticText(x, y, line, termbox.ColorWhite, termbox.ColorDefault)
	}
	ui.DisplayStaticText(1, 16, fmt.Sprintf("Pick %d skills by number, e.g. \"1 4 11 15\" (enter for default)", game.EquippedSkillCount),
		termbox.ColorCyan, termbox.ColorDefault)
	termbox.Flush()

	for {
		line := ui.GetTextInput("Skills: ", 1, 17, termbox.ColorWhite, termbox.ColorDefault)
		ids, err := parseSkillPicks(line, catalog)
		if err != nil {
			ui.DisplayStaticText(1, 18, "Invalid: "+err.Error()+strings.Repeat(" ", 20), termbox.ColorRed, termbox.ColorDefault)
			termbox.Flush()
			continue
		}
		if ids != nil {
			build.Skills = ids
		}
		if err := game.ValidateBuild(build); err != nil {
			ui.DisplayStaticText(1, 18, "Invalid: "+err.Error()+strings.Repeat(" ", 20), termbox.ColorRed, termbox.ColorDefault)
			termbox.Flush()
			continue
		}
		break
	}
	return build
}

// parseStats reads four non-negative integers summing to at most the
// budget. Empty input returns nil (keep defaults).
func parseStats(line string) (*models.BuildStats, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 4 {
		return nil, fmt.Errorf("expected 4 numbers, got %d", len(fields))
	}
	vals := make([]int, 4)
	total := 0
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q is not a non-negative number", f)
		}
		vals[i] = n
		total += n
	}
	if total > statBudget {
		return nil, fmt.Errorf("%d points allocated, budget is %d", total, statBudget)
	}
	return &models.BuildStats{
		Vitality: vals[0], Strength: vals[1], Agility: vals[2], Luck: vals[3],
	}, nil
}

// parseSkillPicks maps 1-based catalog indexes to skill IDs. Empty input
// returns nil (keep defaults).
func parseSkillPicks(line string, catalog []*models.Skill) ([]string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != game.EquippedSkillCount {
		return nil, fmt.Errorf("expected %d picks, got %d", game.EquippedSkillCount, len(fields))
	}
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(catalog) {
			return nil, fmt.Errorf("%q is not a catalog number", f)
		}
		ids = append(ids, catalog[n-1].ID)
	}
	return ids, nil
}
