package game

import (
	"errors"
	"fmt"

	"dungeonaut-arena/internal/models"
)

// ErrInvalidBuild is returned when a build does not carry exactly four
// known catalog skills.
var ErrInvalidBuild = errors.New("build must contain exactly 4 known skills")

// EquippedSkillCount is the fixed size of a PvP skill set.
const EquippedSkillCount = 4

// ValidateBuild checks that a build names exactly four distinct catalog
// skills.
func ValidateBuild(build models.Build) error {
	if len(build.Skills) != EquippedSkillCount {
		return fmt.Errorf("%w: got %d", ErrInvalidBuild, len(build.Skills))
	}
	seen := make(map[string]bool, EquippedSkillCount)
	for _, id := range build.Skills {
		if _, ok := SkillByID(id); !ok {
			return fmt.Errorf("%w: unknown skill %q", ErrInvalidBuild, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate skill %q", ErrInvalidBuild, id)
		}
		seen[id] = true
	}
	return nil
}

// NewFighter creates match-scoped fighter state from a build. Stat
// derivation matches the progression system's allocation rules; cooldowns
// start at zero.
func NewFighter(name string, isPlayer bool, build models.Build) (*models.Fighter, error) {
	if err := ValidateBuild(build); err != nil {
		return nil, err
	}

	maxHP := 100 + build.Stats.Vitality*10
	attack := 10 + build.Stats.Strength*3
	speed := 100 + build.Stats.Agility*5
	crit := 0.1 + float64(build.Stats.Luck)*0.05

	f := &models.Fighter{
		Name:             name,
		IsPlayer:         isPlayer,
		HP:               maxHP,
		MaxHP:            maxHP,
		BaseAttack:       attack,
		Attack:           attack,
		Speed:            speed,
		CurrentSpeed:     speed,
		CritChance:       crit,
		StatusResistance: 0.2,
		Status:           make(map[models.StatusEffect]int),
	}
	equip(f, build.Skills)
	return f, nil
}

// RivalFighter is the built-in opponent used when no second peer is
// connected. Fixed sheet, fixed skill set covering the categories the
// opponent policy prefers.
func RivalFighter() *models.Fighter {
	f := &models.Fighter{
		Name:             "Rival",
		IsPlayer:         false,
		HP:               120,
		MaxHP:            120,
		BaseAttack:       12,
		Attack:           12,
		Speed:            110,
		CurrentSpeed:     110,
		CritChance:       0.15,
		StatusResistance: 0.25,
		Status:           make(map[models.StatusEffect]int),
	}
	equip(f, []string{"shadow_strike", "stunning_strike", "healing_light", "power_up"})
	return f
}

func equip(f *models.Fighter, ids []string) {
	f.Skills = make([]*models.EquippedSkill, 0, len(ids))
	for _, id := range ids {
		if s, ok := SkillByID(id); ok {
			f.Skills = append(f.Skills, &models.EquippedSkill{Skill: s})
		}
	}
	f.DominantCategory = dominantCategory(f.Skills)
}

// dominantCategory picks the most common category among the equipped
// skills; earlier equips win ties. Defaults to sustain when nothing is
// equipped, matching how the original resolved an unknown defender type.
func dominantCategory(skills []*models.EquippedSkill) models.SkillCategory {
	if len(skills) == 0 {
		return models.CategorySustain
	}
	counts := make(map[models.SkillCategory]int)
	for _, es := range skills {
		counts[es.Skill.Category]++
	}
	best := skills[0].Skill.Category
	for _, es := range skills {
		if counts[es.Skill.Category] > counts[best] {
			best = es.Skill.Category
		}
	}
	return best
}
