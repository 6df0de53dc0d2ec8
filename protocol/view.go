package protocol

import (
	"github.com/minaorangina/kings/deck"
	"github.com/minaorangina/kings/game"
)

// GameView is the public part of a game: nobody's hand is visible
type GameView struct {
	Round   game.RoundState `json:"round"`
	Stock   int             `json:"stock"`
	Discard int             `json:"discard"`
	Players []PlayerView    `json:"players"`
	// Winner is -1 while the game is running
	Winner int `json:"winner"`
}

type PlayerView struct {
	Suit  string               `json:"suit"`
	King  *deck.SpecialPile    `json:"king"`
	House [3]*deck.SpecialPile `json:"house"`
	Hand  int                  `json:"hand"`
}

// NewGameView copies the public part of g
func NewGameView(g *game.GameState) GameView {
	view := GameView{
		Round:   g.Round,
		Stock:   g.Stock.Count(),
		Discard: g.Discard.Count(),
		Players: make([]PlayerView, len(g.Players)),
		Winner:  g.Winner,
	}

	for i, ps := range g.Players {
		pv := PlayerView{
			Suit: string(ps.Suit.Code()),
			King: ps.King.Clone(),
			Hand: ps.Hand.Count(),
		}
		for h, pile := range ps.House {
			pv.House[h] = pile.Clone()
		}
		view.Players[i] = pv
	}

	return view
}
