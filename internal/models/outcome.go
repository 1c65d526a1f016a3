package models

// StatusApply describes a status effect an outcome wants to place on a
// fighter. Resistible applications roll against the target's status
// resistance before taking hold; unresistible ones always land (unless
// the target is immune).
type StatusApply struct {
	Effect     StatusEffect `json:"effect"`
	Duration   int          `json:"duration"`
	Resistible bool         `json:"resistible"`
}

// Outcome is the declarative result of resolving one action. Effects fill
// in the raw values; the engine applies the category multiplier, the
// shared damage formula and every state mutation, then records the final
// numbers back onto the outcome for the round log.
type Outcome struct {
	Damage  int    `json:"damage"`  // raw damage before multipliers
	Healing int    `json:"healing"` // HP restored to the actor
	Message string `json:"message"`

	SelfStatus   *StatusApply `json:"self_status,omitempty"`
	TargetStatus *StatusApply `json:"target_status,omitempty"`

	// ClearSelfStatuses wipes every status on the actor before SelfStatus
	// is applied (cleanse).
	ClearSelfStatuses bool `json:"clear_self_statuses,omitempty"`

	// ResetCooldown zeroes the actor's skill with the shortest nonzero
	// remaining cooldown (feint).
	ResetCooldown bool `json:"reset_cooldown,omitempty"`

	// ShieldFraction grants the actor shield equal to this fraction of
	// max HP (barrier).
	ShieldFraction float64 `json:"shield_fraction,omitempty"`

	// AttackMultiplier, when nonzero, sets the actor's current attack to
	// base attack times this value for the duration of SelfStatus.
	AttackMultiplier float64 `json:"attack_multiplier,omitempty"`

	// TargetSpeedMultiplier, when nonzero, scales the target's current
	// speed for the duration of TargetStatus.
	TargetSpeedMultiplier float64 `json:"target_speed_multiplier,omitempty"`

	// ActsFirst marks skills that strike ahead of normal ordering. The
	// catalog also gives such skills high priority, so this is carried
	// for the round log rather than consulted by the sort.
	ActsFirst bool `json:"acts_first,omitempty"`

	// Filled in by the engine after the damage formula runs.
	Critical    bool `json:"critical,omitempty"`
	FinalDamage int  `json:"final_damage"`
}

// RoundEventType classifies entries in the round log.
type RoundEventType string

const (
	EventStatus  RoundEventType = "status"
	EventAttack  RoundEventType = "attack"
	EventDefense RoundEventType = "defense"
	EventSkill   RoundEventType = "skill"
	EventCounter RoundEventType = "counter"
	EventBlocked RoundEventType = "blocked"
	EventKO      RoundEventType = "ko"
	EventDraw    RoundEventType = "draw"
	EventWarning RoundEventType = "warning"
)

// RoundEvent is one entry in a round's log, derived from an Outcome or
// emitted directly by the engine (stun gates, knockouts, the draw).
type RoundEvent struct {
	Type       RoundEventType `json:"type"`
	Message    string         `json:"message"`
	Actor      string         `json:"actor,omitempty"`
	Target     string         `json:"target,omitempty"`
	ActionName string         `json:"action_name,omitempty"`
	Damage     int            `json:"damage,omitempty"`
	Healing    int            `json:"healing,omitempty"`
	Critical   bool           `json:"critical,omitempty"`
}

// RoundLog is the ordered record of everything that happened in one
// resolved round.
type RoundLog struct {
	Round  int          `json:"round"`
	Events []RoundEvent `json:"events"`

	// Winner is set when the round produced a terminal state: a fighter
	// name on knockout, DrawMarker on a turn-limit draw, empty otherwise.
	Winner string `json:"winner,omitempty"`
}

// DrawMarker is the winner value recorded for a turn-limit draw.
const DrawMarker = "draw"
