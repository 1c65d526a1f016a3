package game

import (
	"math/rand"

	"dungeonaut-arena/internal/models"
)

// ChooseAction picks an action for the built-in opponent. Single-step
// heuristic, re-evaluated every round: heal when hurting, occasionally
// open with control, otherwise look for burst, then anything off
// cooldown, then fall back to a basic attack.
func ChooseAction(self *models.Fighter, rng *rand.Rand) *models.Skill {
	var available []*models.EquippedSkill
	for _, es := range self.Skills {
		if es.Ready() {
			available = append(available, es)
		}
	}

	if self.HPRatio() < 0.3 {
		if s := firstOfCategory(available, models.CategorySustain); s != nil {
			return s
		}
	}

	if rng.Float64() < 0.3 && len(available) > 0 {
		if s := firstOfCategory(available, models.CategoryControl); s != nil {
			return s
		}
	}

	if s := firstOfCategory(available, models.CategoryBurst); s != nil {
		return s
	}

	if len(available) > 0 {
		return available[rng.Intn(len(available))].Skill
	}

	return BasicAttack()
}

func firstOfCategory(skills []*models.EquippedSkill, cat models.SkillCategory) *models.Skill {
	for _, es := range skills {
		if es.Skill.Category == cat {
			return es.Skill
		}
	}
	return nil
}
