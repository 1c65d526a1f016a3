package models

// SkillCategory groups skills for the type-advantage matchup.
type SkillCategory string

const (
	CategoryBurst    SkillCategory = "burst"
	CategoryControl  SkillCategory = "control"
	CategoryMobility SkillCategory = "mobility"
	CategorySustain  SkillCategory = "sustain"
	CategoryUtility  SkillCategory = "utility"
)

// Priority determines action ordering before speed is considered.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Rank maps a priority tier to a sortable value. Unknown tiers are treated
// as normal, same as the original ordering table.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// EffectFunc computes the declarative outcome of a skill. Effects must not
// mutate either fighter; every mutation is applied centrally by the round
// resolution engine so effects stay unit-testable in isolation.
type EffectFunc func(attacker, defender *Fighter) Outcome

// Skill is an immutable catalog entry. The catalog itself lives in the
// game package; a fighter equips copies via EquippedSkill.
type Skill struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category SkillCategory `json:"category"`
	Priority Priority      `json:"priority"`
	Cooldown int           `json:"cooldown"` // base cooldown in rounds
	Desc     string        `json:"desc"`
	Effect   EffectFunc    `json:"-"`
}

// EquippedSkill is a catalog skill carried into a match, tracking its own
// remaining cooldown. Cooldowns reset to 0 when the match goes active.
type EquippedSkill struct {
	Skill           *Skill `json:"skill"`
	CurrentCooldown int    `json:"current_cooldown"`
}

// Ready reports whether the skill is off cooldown.
func (es *EquippedSkill) Ready() bool {
	return es.CurrentCooldown == 0
}
