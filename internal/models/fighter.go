package models

// StatusEffect identifies a temporary condition on a fighter. Each active
// effect is tracked as a remaining-duration counter in rounds.
type StatusEffect string

const (
	StatusStunned    StatusEffect = "stunned"
	StatusSilenced   StatusEffect = "silenced"
	StatusVulnerable StatusEffect = "vulnerable"
	StatusGuarding   StatusEffect = "guarding"
	StatusPowered    StatusEffect = "powered"
	StatusSlowed     StatusEffect = "slowed"
	StatusDodging    StatusEffect = "dodging"
	StatusShielded   StatusEffect = "shielded"
	StatusExhausted  StatusEffect = "exhausted"
	StatusImmune     StatusEffect = "immune"
)

// BuildStats is the stat allocation a player brings into a match. It comes
// from the progression system, which this core treats as opaque input.
type BuildStats struct {
	Vitality int `json:"vitality"`
	Strength int `json:"strength"`
	Agility  int `json:"agility"`
	Luck     int `json:"luck"`
}

// Build is a player's pre-match configuration: stat allocation plus the
// IDs of exactly four catalog skills.
type Build struct {
	Stats  BuildStats `json:"stats"`
	Skills []string   `json:"skills"`
}

// Fighter is one combatant's mutable, match-scoped state. Only the round
// resolution engine and effect resolver mutate it; presentation code must
// treat it as read-only.
type Fighter struct {
	Name     string `json:"name"`
	IsPlayer bool   `json:"is_player"` // self vs opponent role tag

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`

	BaseAttack int `json:"base_attack"`
	Attack     int `json:"attack"` // current, modified by powered

	Speed        int `json:"speed"`
	CurrentSpeed int `json:"current_speed"` // modified by slowed

	CritChance       float64 `json:"crit_chance"`
	StatusResistance float64 `json:"status_resistance"`

	Shield int `json:"shield"`

	Status map[StatusEffect]int `json:"status"` // effect -> rounds remaining

	Skills []*EquippedSkill `json:"skills"`

	// DominantCategory is the defender side of the category-advantage
	// lookup: the most common category among the equipped skills.
	DominantCategory SkillCategory `json:"dominant_category"`

	// SelectedAction holds this round's chosen action, nil between rounds.
	SelectedAction *Skill `json:"-"`
}

// HasStatus reports whether the effect is active (counter > 0).
func (f *Fighter) HasStatus(s StatusEffect) bool {
	return f.Status[s] > 0
}

// SetStatus activates (or refreshes) an effect for the given duration.
func (f *Fighter) SetStatus(s StatusEffect, rounds int) {
	if f.Status == nil {
		f.Status = make(map[StatusEffect]int)
	}
	f.Status[s] = rounds
}

// ClearStatus removes an effect and reverts any stat modifier it carried.
func (f *Fighter) ClearStatus(s StatusEffect) {
	delete(f.Status, s)
	switch s {
	case StatusPowered:
		f.Attack = f.BaseAttack
	case StatusSlowed:
		f.CurrentSpeed = f.Speed
	}
}

// ApplyDamage subtracts HP, clamped at 0. Shield interaction happens in
// the damage formula before this is called.
func (f *Fighter) ApplyDamage(dmg int) {
	f.HP -= dmg
	if f.HP < 0 {
		f.HP = 0
	}
}

// Heal restores HP up to MaxHP.
func (f *Fighter) Heal(amount int) int {
	before := f.HP
	f.HP += amount
	if f.HP > f.MaxHP {
		f.HP = f.MaxHP
	}
	return f.HP - before
}

// AddShield grants shield points. Shield never goes negative; the damage
// formula is the only consumer.
func (f *Fighter) AddShield(points int) {
	f.Shield += points
	if f.Shield < 0 {
		f.Shield = 0
	}
}

// Defeated reports whether the fighter has been reduced to 0 HP.
func (f *Fighter) Defeated() bool {
	return f.HP <= 0
}

// SkillByID returns the equipped skill with the given catalog ID, or nil.
func (f *Fighter) SkillByID(id string) *EquippedSkill {
	for _, es := range f.Skills {
		if es.Skill.ID == id {
			return es
		}
	}
	return nil
}

// HPRatio is current HP as a fraction of max, used by the opponent policy
// and by execute-style effects.
func (f *Fighter) HPRatio() float64 {
	if f.MaxHP == 0 {
		return 0
	}
	return float64(f.HP) / float64(f.MaxHP)
}
