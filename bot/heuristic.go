package bot

import (
	"github.com/minaorangina/kings/deck"
	"github.com/minaorangina/kings/game"
)

// Heuristic scores cards by how useful they are to each player. It gives
// away house piles that are worth more to its opponents than to itself,
// then lays down every card it can.
type Heuristic struct{}

func (h Heuristic) PlayTurn(snapshot *game.GameState, seat int) []game.Action {
	var actions []game.Action

	// play runs a on the snapshot, reporting whether the plan should go on
	play := func(a game.Action) bool {
		outcome, err := snapshot.Apply(seat, a)
		if err != nil {
			return false
		}
		actions = append(actions, a)
		return outcome.Kind != game.GameWon
	}

	me := snapshot.Players[seat]

	var attackers []game.HousePile
	for _, slot := range game.HousePiles {
		pile := me.House[slot]
		if pile == nil {
			continue
		}
		if h.pileValue(snapshot, seat, pile) < float64(game.Strength(pile)) {
			attackers = append(attackers, slot)
		}
	}

	for _, slot := range attackers {
		target, ok := h.weakestOpponent(snapshot, seat)
		if !ok {
			break
		}
		play(game.NewAttack(slot, target))
	}

	for {
		a, ok := h.nextPlacement(snapshot, seat)
		if !ok {
			break
		}
		if !play(a) {
			if snapshot.Won() {
				return actions
			}
			break
		}
	}

	return append(actions, game.NewDiscard())
}

// cardValue scores card for every player: a card is worth more to the
// owner of its suit the fuller their King pile is, and worth one for every
// house pile it could be added to.
func (Heuristic) cardValue(g *game.GameState, c deck.Card) []float64 {
	values := make([]float64, len(g.Players))
	for i, ps := range g.Players {
		if ps.Suit == c.Suit {
			values[i] += float64(ps.King.Count())/2 + 2
		}
		for _, pile := range ps.House {
			if pile != nil && game.CanAddToPile(pile, c) {
				values[i]++
			}
		}
	}
	return values
}

// pileValue is what keeping pile is worth to seat: its own score counts
// against the scores of everyone else.
func (h Heuristic) pileValue(g *game.GameState, seat int, pile *deck.SpecialPile) float64 {
	total := 0.0
	for _, c := range pile.Cards.Cards() {
		for i, v := range h.cardValue(g, c) {
			if i == seat {
				total -= v
			} else {
				total += v
			}
		}
	}
	return total
}

// weakestOpponent picks the opponent whose first house pile is weakest
func (Heuristic) weakestOpponent(g *game.GameState, seat int) (deck.Suit, bool) {
	var (
		target deck.Suit
		best   int
		found  bool
	)
	for i, ps := range g.Players {
		if i == seat {
			continue
		}
		slot, ok := ps.FirstHousePile()
		if !ok {
			continue
		}
		strength := game.Strength(ps.House[slot])
		if !found || strength < best {
			target, best, found = ps.Suit, strength, true
		}
	}
	return target, found
}

// nextPlacement finds the first card in hand that can be put down
func (Heuristic) nextPlacement(g *game.GameState, seat int) (game.Action, bool) {
	me := g.Players[seat]

	for _, c := range me.Hand.Cards() {
		switch {
		case c.Rank == deck.King:
			continue

		case c.Rank.IsPicture():
			for _, slot := range game.HousePiles {
				if me.House[slot] == nil {
					return game.NewAddCard(game.PileOf(slot), c), true
				}
			}

		case c.Suit == me.Suit:
			return game.NewAddCard(game.KingPile, c), true

		default:
			for _, slot := range game.HousePiles {
				if pile := me.House[slot]; pile != nil && game.CanAddToPile(pile, c) {
					return game.NewAddCard(game.PileOf(slot), c), true
				}
			}
		}
	}

	return game.Action{}, false
}
