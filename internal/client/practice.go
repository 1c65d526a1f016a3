package client

import (
	"math/rand"

	"dungeonaut-arena/internal/game"
	"dungeonaut-arena/internal/models"
)

// Practice runs a fully local match against the built-in Rival. No
// server involvement; the Rival picks its own actions each round.
type Practice struct {
	You    *models.Fighter
	Rival  *models.Fighter
	Battle *game.Battle

	rng *rand.Rand
}

func NewPractice(username string, build models.Build, rng *rand.Rand) (*Practice, error) {
	you, err := game.NewFighter(username, true, build)
	if err != nil {
		return nil, err
	}
	rival := game.RivalFighter()
	if rival.Name == username {
		rival.Name += " (rival)"
	}
	return &Practice{
		You:    you,
		Rival:  rival,
		Battle: game.NewBattle(you, rival, rng),
		rng:    rng,
	}, nil
}

// PlayRound resolves one round with the given player action against the
// Rival's own choice.
func (p *Practice) PlayRound(action *models.Skill) models.RoundLog {
	p.You.SelectedAction = action
	p.Rival.SelectedAction = game.ChooseAction(p.Rival, p.rng)
	return p.Battle.ResolveRound()
}

func (p *Practice) Over() bool {
	return p.Battle.Over()
}
