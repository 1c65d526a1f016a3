package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"dungeonaut-arena/internal/models"
)

// Battle is the match-scoped state the round resolution engine runs over.
// Both peers (or a peer and the built-in opponent) construct an identical
// Battle from the exchanged builds and feed it the same action pairs.
//
// Randomness is injected so a fixed RNG makes resolution a pure function
// of its inputs. Note that two networked peers roll crits and resists
// independently, so their mirrored logs can disagree on random outcomes;
// that is inherited behavior, not something this engine papers over.
type Battle struct {
	Player   *models.Fighter
	Opponent *models.Fighter

	Round     int
	MaxRounds int

	Log []models.RoundLog

	// Winner is empty while the battle runs, then a fighter name or
	// models.DrawMarker.
	Winner string

	rng   *rand.Rand
	stats map[string]*models.MatchStats
}

// NewBattle creates a battle between two freshly built fighters.
func NewBattle(player, opponent *models.Fighter, rng *rand.Rand) *Battle {
	return &Battle{
		Player:    player,
		Opponent:  opponent,
		MaxRounds: MaxRounds,
		rng:       rng,
		stats: map[string]*models.MatchStats{
			player.Name:   {},
			opponent.Name: {},
		},
	}
}

// Over reports whether a terminal state has been reached.
func (b *Battle) Over() bool {
	return b.Winner != ""
}

// StatsFor returns the accumulated match totals for a fighter.
func (b *Battle) StatsFor(name string) models.MatchStats {
	if s, ok := b.stats[name]; ok {
		return *s
	}
	return models.MatchStats{}
}

// ResolveRound resolves one round from both fighters' selected actions.
// The sequence is fixed: stun gates, start-of-round status ticks, action
// ordering by priority then speed, execution with knockout short-circuit,
// the turn-limit draw check, then end-of-round cooldown ticks.
func (b *Battle) ResolveRound() models.RoundLog {
	b.Round++
	log := models.RoundLog{Round: b.Round}

	for _, f := range []*models.Fighter{b.Player, b.Opponent} {
		if f.HasStatus(models.StatusStunned) {
			log.Events = append(log.Events, models.RoundEvent{
				Type:    models.EventStatus,
				Message: fmt.Sprintf("%s is stunned and cannot act!", f.Name),
				Actor:   f.Name,
			})
			f.Status[models.StatusStunned]--
			if f.Status[models.StatusStunned] <= 0 {
				f.ClearStatus(models.StatusStunned)
			}
			f.SelectedAction = nil
		}
		b.tickStatuses(f)
	}

	type queued struct {
		actor, target *models.Fighter
		action        *models.Skill
	}
	var actions []queued
	if b.Player.SelectedAction != nil {
		actions = append(actions, queued{b.Player, b.Opponent, b.Player.SelectedAction})
	}
	if b.Opponent.SelectedAction != nil {
		actions = append(actions, queued{b.Opponent, b.Player, b.Opponent.SelectedAction})
	}

	// High priority beats everything; speed only breaks priority ties.
	sort.SliceStable(actions, func(i, j int) bool {
		pi, pj := actions[i].action.Priority.Rank(), actions[j].action.Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return actions[i].actor.CurrentSpeed > actions[j].actor.CurrentSpeed
	})

	for _, q := range actions {
		if q.actor.Defeated() || q.target.Defeated() {
			continue
		}
		b.executeAction(q.actor, q.target, q.action, &log)

		if q.target.Defeated() {
			log.Events = append(log.Events, models.RoundEvent{
				Type:    models.EventKO,
				Message: fmt.Sprintf("%s has been defeated!", q.target.Name),
				Target:  q.target.Name,
			})
			b.Winner = q.actor.Name
			break
		}
		if q.actor.Defeated() { // dodge counter can finish the attacker
			log.Events = append(log.Events, models.RoundEvent{
				Type:    models.EventKO,
				Message: fmt.Sprintf("%s has been defeated!", q.actor.Name),
				Target:  q.actor.Name,
			})
			b.Winner = q.target.Name
			break
		}
	}

	if b.Round >= b.MaxRounds && b.Winner == "" {
		log.Events = append(log.Events, models.RoundEvent{
			Type:    models.EventDraw,
			Message: "Time limit reached! Match is a draw.",
		})
		b.Winner = models.DrawMarker
	}

	for _, f := range []*models.Fighter{b.Player, b.Opponent} {
		for _, es := range f.Skills {
			if es.CurrentCooldown > 0 {
				es.CurrentCooldown--
			}
		}
		f.SelectedAction = nil
	}

	log.Winner = b.Winner
	b.Log = append(b.Log, log)
	return log
}

// tickStatuses applies the start-of-round duration decrement. Stun is
// excluded: the stun gate above consumes its counter. Powered and slowed
// revert their stat modifiers on expiry via ClearStatus.
func (b *Battle) tickStatuses(f *models.Fighter) {
	for s := range f.Status {
		if s == models.StatusStunned {
			continue
		}
		f.Status[s]--
		if f.Status[s] <= 0 {
			f.ClearStatus(s)
		}
	}
}

func (b *Battle) executeAction(actor, target *models.Fighter, action *models.Skill, log *models.RoundLog) {
	switch action.ID {
	case ActionBasicAttack:
		b.executeBasicAttack(actor, target, log)
	case ActionGuard:
		b.executeGuard(actor, log)
	default:
		b.executeSkill(actor, target, action, log)
	}
}

func (b *Battle) executeBasicAttack(actor, target *models.Fighter, log *models.RoundLog) {
	if target.HasStatus(models.StatusDodging) {
		target.ClearStatus(models.StatusDodging)
		counter := int(math.Floor(float64(actor.Attack) * DodgeCounterFraction))
		actor.ApplyDamage(counter)
		b.recordDamage(target, actor, counter, false)
		log.Events = append(log.Events, models.RoundEvent{
			Type:       models.EventCounter,
			Message:    fmt.Sprintf("%s dodges %s's Basic Attack and counters for %d damage!", target.Name, actor.Name, counter),
			Actor:      target.Name,
			Target:     actor.Name,
			ActionName: "Basic Attack",
			Damage:     counter,
		})
		return
	}

	res := ResolveDamage(actor, target, float64(actor.Attack), b.rng)
	target.ApplyDamage(res.Damage)
	b.recordDamage(actor, target, res.Damage, res.Crit)

	msg := fmt.Sprintf("%s uses Basic Attack for %d damage!", actor.Name, res.Damage)
	if res.Crit {
		msg += " CRITICAL HIT!"
	}
	log.Events = append(log.Events, models.RoundEvent{
		Type:       models.EventAttack,
		Message:    msg,
		Actor:      actor.Name,
		Target:     target.Name,
		ActionName: "Basic Attack",
		Damage:     res.Damage,
		Critical:   res.Crit,
	})
}

func (b *Battle) executeGuard(actor *models.Fighter, log *models.RoundLog) {
	actor.SetStatus(models.StatusGuarding, 1)
	gain := int(math.Floor(float64(actor.MaxHP) * GuardShieldFraction))
	actor.AddShield(gain)
	log.Events = append(log.Events, models.RoundEvent{
		Type:       models.EventDefense,
		Message:    fmt.Sprintf("%s uses Guard! Gains %d shield!", actor.Name, gain),
		Actor:      actor.Name,
		ActionName: "Guard",
	})
}

func (b *Battle) executeSkill(actor, target *models.Fighter, action *models.Skill, log *models.RoundLog) {
	if actor.HasStatus(models.StatusSilenced) {
		log.Events = append(log.Events, models.RoundEvent{
			Type:       models.EventBlocked,
			Message:    fmt.Sprintf("%s is silenced and cannot use %s!", actor.Name, action.Name),
			Actor:      actor.Name,
			ActionName: action.Name,
		})
		return
	}

	out := action.Effect(actor, target)
	msg := out.Message

	if out.ClearSelfStatuses {
		for s := range actor.Status {
			actor.ClearStatus(s)
		}
	}

	if out.SelfStatus != nil {
		actor.SetStatus(out.SelfStatus.Effect, out.SelfStatus.Duration)
		if out.AttackMultiplier > 0 {
			actor.Attack = int(math.Floor(float64(actor.BaseAttack) * out.AttackMultiplier))
		}
	}

	if out.TargetStatus != nil {
		switch {
		case target.HasStatus(models.StatusImmune):
			msg += fmt.Sprintf(" %s is immune!", target.Name)
		case out.TargetStatus.Resistible && b.rng.Float64() <= target.StatusResistance:
			msg += fmt.Sprintf(" %s resists!", target.Name)
		default:
			target.SetStatus(out.TargetStatus.Effect, out.TargetStatus.Duration)
			if out.TargetSpeedMultiplier > 0 {
				target.CurrentSpeed = int(math.Floor(float64(target.Speed) * out.TargetSpeedMultiplier))
			}
		}
	}

	if out.ShieldFraction > 0 {
		actor.Shield = int(math.Floor(float64(actor.MaxHP) * out.ShieldFraction))
	}

	if out.ResetCooldown {
		var reset *models.EquippedSkill
		for _, es := range actor.Skills {
			if es.CurrentCooldown > 0 && (reset == nil || es.CurrentCooldown < reset.CurrentCooldown) {
				reset = es
			}
		}
		if reset != nil {
			reset.CurrentCooldown = 0
		}
	}

	if out.Damage > 0 {
		mult := CategoryMultiplier(action.Category, target.DominantCategory)
		raw := int(math.Floor(float64(out.Damage) * mult))
		res := ResolveDamage(actor, target, float64(raw), b.rng)
		target.ApplyDamage(res.Damage)
		b.recordDamage(actor, target, res.Damage, res.Crit)
		out.FinalDamage = res.Damage
		out.Critical = res.Crit
		if res.Crit {
			msg += fmt.Sprintf(" Deals %d damage! CRITICAL HIT!", res.Damage)
		} else if res.Damage > 0 {
			msg += fmt.Sprintf(" Deals %d damage!", res.Damage)
		}
	}

	if out.Healing > 0 {
		healed := actor.Heal(out.Healing)
		b.stats[actor.Name].HealingDone += healed
	}

	// Exhaustion taxes the cooldown, including this skill's own when the
	// effect just applied it.
	if es := actor.SkillByID(action.ID); es != nil {
		es.CurrentCooldown = action.Cooldown
		if actor.HasStatus(models.StatusExhausted) {
			es.CurrentCooldown++
		}
	}

	log.Events = append(log.Events, models.RoundEvent{
		Type:       models.EventSkill,
		Message:    msg,
		Actor:      actor.Name,
		Target:     target.Name,
		ActionName: action.Name,
		Damage:     out.FinalDamage,
		Healing:    out.Healing,
		Critical:   out.Critical,
	})
}

func (b *Battle) recordDamage(dealer, taker *models.Fighter, dmg int, crit bool) {
	if s, ok := b.stats[dealer.Name]; ok {
		s.DamageDealt += dmg
		if crit {
			s.CritsLanded++
		}
	}
	if s, ok := b.stats[taker.Name]; ok {
		s.DamageTaken += dmg
	}
}
