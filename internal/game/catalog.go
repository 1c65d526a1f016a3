package game

import (
	"fmt"
	"math"

	"dungeonaut-arena/internal/models"
)

// Action IDs that are not catalog skills but are always available.
const (
	ActionBasicAttack = "basic_attack"
	ActionGuard       = "guard"
)

// The two always-available pseudo-actions. They carry no Effect; the
// engine handles them directly.
var (
	basicAttack = &models.Skill{
		ID:       ActionBasicAttack,
		Name:     "Basic Attack",
		Priority: models.PriorityNormal,
	}
	guard = &models.Skill{
		ID:       ActionGuard,
		Name:     "Guard",
		Priority: models.PriorityNormal,
	}
)

// BasicAttack returns the shared basic attack action.
func BasicAttack() *models.Skill { return basicAttack }

// Guard returns the shared guard action.
func Guard() *models.Skill { return guard }

// catalog is the fixed skill table. Both peers must hold an identical
// copy for mirrored resolution to agree, so it is compiled in rather
// than loaded from a file.
var catalog = []*models.Skill{
	// Burst
	{
		ID: "shadow_strike", Name: "Shadow Strike",
		Category: models.CategoryBurst, Priority: models.PriorityNormal, Cooldown: 3,
		Desc: "Deal 120% damage, +30% if target stunned",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			damage := float64(attacker.Attack) * 1.2
			msg := fmt.Sprintf("%s strikes from the shadows!", attacker.Name)
			if defender.HasStatus(models.StatusStunned) {
				damage *= 1.3
				msg += " (Bonus damage on stunned target!)"
			}
			return models.Outcome{Damage: int(math.Floor(damage)), Message: msg}
		},
	},
	{
		ID: "devastating_blow", Name: "Devastating Blow",
		Category: models.CategoryBurst, Priority: models.PriorityNormal, Cooldown: 4,
		Desc: "Deal 160% damage, exhausts self for 2 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Damage:     int(math.Floor(float64(attacker.Attack) * 1.6)),
				Message:    fmt.Sprintf("%s unleashes a devastating blow!", attacker.Name),
				SelfStatus: &models.StatusApply{Effect: models.StatusExhausted, Duration: 2},
			}
		},
	},
	{
		ID: "execute", Name: "Execute",
		Category: models.CategoryBurst, Priority: models.PriorityNormal, Cooldown: 5,
		Desc: "Deal 100% damage, +50% if target below 40% HP",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			damage := float64(attacker.Attack)
			msg := fmt.Sprintf("%s attempts an execution!", attacker.Name)
			if defender.HPRatio() < 0.4 {
				damage *= 1.5
				msg += " (Low HP bonus!)"
			}
			return models.Outcome{Damage: int(math.Floor(damage)), Message: msg}
		},
	},

	// Control
	{
		ID: "stunning_strike", Name: "Stunning Strike",
		Category: models.CategoryControl, Priority: models.PriorityNormal, Cooldown: 4,
		Desc: "Deal 80% damage and stun for 1 turn",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			out := models.Outcome{
				Damage:  int(math.Floor(float64(attacker.Attack) * 0.8)),
				Message: fmt.Sprintf("%s lands a stunning strike!", attacker.Name),
			}
			// An already-stunned target cannot be re-stunned.
			if !defender.HasStatus(models.StatusStunned) {
				out.TargetStatus = &models.StatusApply{Effect: models.StatusStunned, Duration: 1, Resistible: true}
			}
			return out
		},
	},
	{
		ID: "silence", Name: "Silence",
		Category: models.CategoryControl, Priority: models.PriorityHigh, Cooldown: 3,
		Desc: "Prevent target from using skills for 2 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:      fmt.Sprintf("%s silences %s!", attacker.Name, defender.Name),
				TargetStatus: &models.StatusApply{Effect: models.StatusSilenced, Duration: 2, Resistible: true},
			}
		},
	},
	{
		ID: "slow", Name: "Crippling Slow",
		Category: models.CategoryControl, Priority: models.PriorityNormal, Cooldown: 3,
		Desc: "Reduce target speed by 50% for 3 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:               fmt.Sprintf("%s slows %s!", attacker.Name, defender.Name),
				TargetStatus:          &models.StatusApply{Effect: models.StatusSlowed, Duration: 3},
				TargetSpeedMultiplier: 0.5,
			}
		},
	},

	// Mobility
	{
		ID: "dodge_roll", Name: "Dodge Roll",
		Category: models.CategoryMobility, Priority: models.PriorityHigh, Cooldown: 3,
		Desc: "Evade next attack and counter for 60% damage",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:    fmt.Sprintf("%s prepares to dodge!", attacker.Name),
				SelfStatus: &models.StatusApply{Effect: models.StatusDodging, Duration: 1},
			}
		},
	},
	{
		ID: "rapid_assault", Name: "Rapid Assault",
		Category: models.CategoryMobility, Priority: models.PriorityHigh, Cooldown: 4,
		Desc: "Strike first, deal 90% damage",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Damage:    int(math.Floor(float64(attacker.Attack) * 0.9)),
				Message:   fmt.Sprintf("%s strikes with incredible speed!", attacker.Name),
				ActsFirst: true,
			}
		},
	},
	{
		ID: "feint", Name: "Feint",
		Category: models.CategoryMobility, Priority: models.PriorityNormal, Cooldown: 2,
		Desc: "Deal 50% damage, reset one skill cooldown",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Damage:        int(math.Floor(float64(attacker.Attack) * 0.5)),
				Message:       fmt.Sprintf("%s feints and resets a cooldown!", attacker.Name),
				ResetCooldown: true,
			}
		},
	},

	// Sustain
	{
		ID: "healing_light", Name: "Healing Light",
		Category: models.CategorySustain, Priority: models.PriorityNormal, Cooldown: 4,
		Desc: "Restore 30% max HP",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			heal := int(math.Floor(float64(attacker.MaxHP) * 0.3))
			return models.Outcome{
				Healing: heal,
				Message: fmt.Sprintf("%s heals for %d HP!", attacker.Name, heal),
			}
		},
	},
	{
		ID: "barrier", Name: "Barrier",
		Category: models.CategorySustain, Priority: models.PriorityHigh, Cooldown: 4,
		Desc: "Shield for 40% max HP for 2 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:        fmt.Sprintf("%s raises a barrier!", attacker.Name),
				ShieldFraction: 0.4,
				SelfStatus:     &models.StatusApply{Effect: models.StatusShielded, Duration: 2},
			}
		},
	},
	{
		ID: "life_steal", Name: "Life Steal",
		Category: models.CategorySustain, Priority: models.PriorityNormal, Cooldown: 3,
		Desc: "Deal 70% damage, heal for 100% of damage dealt",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			damage := int(math.Floor(float64(attacker.Attack) * 0.7))
			return models.Outcome{
				Damage:  damage,
				Healing: damage,
				Message: fmt.Sprintf("%s drains life from %s!", attacker.Name, defender.Name),
			}
		},
	},

	// Utility
	{
		ID: "cleanse", Name: "Cleanse",
		Category: models.CategoryUtility, Priority: models.PriorityHigh, Cooldown: 5,
		Desc: "Remove all debuffs and gain immunity for 1 turn",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:           fmt.Sprintf("%s cleanses all debuffs!", attacker.Name),
				ClearSelfStatuses: true,
				SelfStatus:        &models.StatusApply{Effect: models.StatusImmune, Duration: 1},
			}
		},
	},
	{
		ID: "weaken", Name: "Weaken",
		Category: models.CategoryUtility, Priority: models.PriorityNormal, Cooldown: 3,
		Desc: "Target takes +25% damage for 3 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:      fmt.Sprintf("%s weakens %s!", attacker.Name, defender.Name),
				TargetStatus: &models.StatusApply{Effect: models.StatusVulnerable, Duration: 3},
			}
		},
	},
	{
		ID: "power_up", Name: "Power Up",
		Category: models.CategoryUtility, Priority: models.PriorityLow, Cooldown: 5,
		Desc: "Increase attack by 40% for 4 turns",
		Effect: func(attacker, defender *models.Fighter) models.Outcome {
			return models.Outcome{
				Message:          fmt.Sprintf("%s powers up!", attacker.Name),
				SelfStatus:       &models.StatusApply{Effect: models.StatusPowered, Duration: 4},
				AttackMultiplier: 1.4,
			}
		},
	},
}

// Catalog returns the full immutable skill catalog.
func Catalog() []*models.Skill {
	return catalog
}

// SkillByID looks up a catalog skill by ID.
func SkillByID(id string) (*models.Skill, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// ActionByID resolves any submitted action identifier: a catalog skill,
// basic attack or guard. Unknown identifiers fall back to a basic attack
// so a malformed submission stays recoverable; the second return value is
// false in that case so the caller can log it.
func ActionByID(id string) (*models.Skill, bool) {
	switch id {
	case ActionBasicAttack:
		return basicAttack, true
	case ActionGuard:
		return guard, true
	}
	if s, ok := SkillByID(id); ok {
		return s, true
	}
	return basicAttack, false
}
