package game

import (
	"math"
	"math/rand"

	"dungeonaut-arena/internal/models"
)

// Battle tuning constants shared by both peers.
const (
	MaxRounds = 30

	CritMultiplier       = 1.5
	VulnerableMultiplier = 1.25
	GuardMultiplier      = 0.5

	AdvantageMultiplier    = 1.15
	DisadvantageMultiplier = 0.9

	GuardShieldFraction  = 0.2
	DodgeCounterFraction = 0.6
)

// advantages maps each category to the one it beats and the one it loses
// to. Utility sits outside the wheel.
var advantages = map[models.SkillCategory]struct {
	strong models.SkillCategory
	weak   models.SkillCategory
}{
	models.CategoryBurst:    {strong: models.CategorySustain, weak: models.CategoryControl},
	models.CategoryControl:  {strong: models.CategoryMobility, weak: models.CategoryBurst},
	models.CategoryMobility: {strong: models.CategoryBurst, weak: models.CategorySustain},
	models.CategorySustain:  {strong: models.CategoryControl, weak: models.CategoryMobility},
}

// CategoryMultiplier returns the advantage multiplier applied to a
// skill's raw damage, before the shared damage formula.
func CategoryMultiplier(attacker, defender models.SkillCategory) float64 {
	m, ok := advantages[attacker]
	if !ok {
		return 1.0
	}
	switch defender {
	case m.strong:
		return AdvantageMultiplier
	case m.weak:
		return DisadvantageMultiplier
	default:
		return 1.0
	}
}

// DamageResult is the output of the shared damage formula.
type DamageResult struct {
	Damage int  // damage applied to HP after shield absorption
	Crit   bool // whether the crit roll landed
}

// ResolveDamage runs the shared damage formula for a base amount: crit,
// vulnerability, guard (single use, cleared here), then shield
// absorption. It mutates the defender's shield and guarding status but
// not HP; the caller applies the returned damage.
func ResolveDamage(attacker, defender *models.Fighter, base float64, rng *rand.Rand) DamageResult {
	damage := base
	crit := false

	if rng.Float64() < attacker.CritChance {
		damage *= CritMultiplier
		crit = true
	}

	if defender.HasStatus(models.StatusVulnerable) {
		damage *= VulnerableMultiplier
	}

	if defender.HasStatus(models.StatusGuarding) {
		damage *= GuardMultiplier
		defender.ClearStatus(models.StatusGuarding)
	}

	if defender.Shield > 0 {
		if float64(defender.Shield) >= damage {
			defender.Shield = int(float64(defender.Shield) - damage)
			return DamageResult{Damage: 0, Crit: crit}
		}
		damage -= float64(defender.Shield)
		defender.Shield = 0
	}

	return DamageResult{Damage: int(math.Floor(damage)), Crit: crit}
}
