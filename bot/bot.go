package bot

import (
	"fmt"

	"github.com/minaorangina/kings/game"
)

// Strategy plans a whole turn for the player at seat. The snapshot belongs
// to the strategy and may be modified. The plan ends with a DiscardHand
// unless it wins the game first.
type Strategy interface {
	PlayTurn(snapshot *game.GameState, seat int) []game.Action
}

// StrategyFunc adapts a function to a Strategy
type StrategyFunc func(snapshot *game.GameState, seat int) []game.Action

func (f StrategyFunc) PlayTurn(snapshot *game.GameState, seat int) []game.Action {
	return f(snapshot, seat)
}

// Passive never plays a card
var Passive = StrategyFunc(func(*game.GameState, int) []game.Action {
	return []game.Action{game.NewDiscard()}
})

// New returns the named strategy
func New(name string) (Strategy, error) {
	switch name {
	case "", "heuristic":
		return Heuristic{}, nil
	case "passive":
		return Passive, nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %q", name)
	}
}
