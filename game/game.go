package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/minaorangina/kings/deck"
)

var (
	ErrTooFewPlayers    = errors.New("minimum of 2 players required")
	ErrTooManyPlayers   = errors.New("maximum of 4 players allowed")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("attacks are only allowed before organizing")
	ErrNoSuchPile       = errors.New("no such pile")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrIllegalPlacement = errors.New("card cannot be placed there")
	ErrPileOccupied     = fmt.Errorf("%w: house pile already occupied", ErrIllegalPlacement)
	ErrUnknownTarget    = errors.New("no player has that suit")
	ErrMalformedAction  = errors.New("malformed action")
	ErrGameOver         = errors.New("game is already over")
)

const (
	minPlayers = 2
	maxPlayers = 4

	// HandSize is the number of cards drawn at the start of a turn
	HandSize = 5

	DefaultWinThreshold = 9
)

// PlayerSuits is the order in which suits are handed to players
var PlayerSuits = []deck.Suit{deck.Hearts, deck.Spades, deck.Diamonds, deck.Clubs}

// Options configures a new game. The zero value is a four player game
// without blank filler cards.
type Options struct {
	Players      int
	WinThreshold int
	BlankFiller  int
	// Source seeds the game. A random source is used when nil.
	Source *rand.PCG
}

// GameState is the full state of one game. It is not safe for concurrent use.
type GameState struct {
	src *rand.PCG
	rng *rand.Rand

	Round        RoundState
	Discard      *deck.Pile
	Stock        *deck.Pile
	Players      []*PlayerState
	WinThreshold int
	// Winner is the index of the winning player, or -1
	Winner int
}

// New deals a new game. Player 0 starts in the Attack phase holding the
// first hand drawn from the stock.
func New(opts Options) (*GameState, error) {
	if opts.Players == 0 {
		opts.Players = maxPlayers
	}
	if opts.Players < minPlayers {
		return nil, ErrTooFewPlayers
	}
	if opts.Players > maxPlayers {
		return nil, ErrTooManyPlayers
	}
	if opts.WinThreshold <= 0 {
		opts.WinThreshold = DefaultWinThreshold
	}
	if opts.BlankFiller < 0 {
		opts.BlankFiller = 0
	}

	src := opts.Source
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	g := &GameState{
		src:          src,
		rng:          rand.New(src),
		Discard:      deck.NewPile(),
		WinThreshold: opts.WinThreshold,
		Winner:       -1,
	}

	cards := deck.New(opts.BlankFiller)
	cards.Shuffle(g.rng)
	g.Stock = cards.Pile()

	for i := 0; i < opts.Players; i++ {
		g.Players = append(g.Players, NewPlayerState(PlayerSuits[i]))
	}

	// start "before" player 0 so the first advance deals to them
	g.Round = RoundState{Player: opts.Players - 1, Phase: AttackPhase}
	g.advance()

	return g, nil
}

// CurrentPlayer is the index of the player whose turn it is
func (g *GameState) CurrentPlayer() int {
	return g.Round.Player
}

// Won reports whether a player has reached the win threshold
func (g *GameState) Won() bool {
	return g.Winner >= 0
}

// PlayerBySuit finds the index of the player holding suit
func (g *GameState) PlayerBySuit(suit deck.Suit) (int, bool) {
	for i, ps := range g.Players {
		if ps.Suit == suit {
			return i, true
		}
	}
	return -1, false
}

// Apply validates and performs action on behalf of player. A rejected
// action leaves the state unchanged.
func (g *GameState) Apply(player int, action Action) (Outcome, error) {
	if g.Won() {
		return Outcome{}, ErrGameOver
	}
	if player != g.Round.Player {
		return Outcome{}, ErrNotYourTurn
	}
	if err := action.validate(); err != nil {
		return Outcome{}, err
	}

	var err error
	switch action.Kind {
	case Attack:
		err = g.attack(player, action.House, action.Target)
	case AddCardToPile:
		err = g.addCardToPile(player, action.Pile, action.Card)
	case SwapHousePile:
		g.Players[player].Swap(action.House, action.Other)
		g.Round.Phase = OrganizePhase
	case DiscardHand:
		g.Discard.AddPile(g.Players[player].Hand)
		g.advance()
		return Outcome{Kind: NextPlayer, Player: g.Round.Player}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	if g.Players[player].King.Count() >= g.WinThreshold {
		g.Winner = player
		return Outcome{Kind: GameWon, Player: player}, nil
	}

	return Outcome{Kind: Nominal, Player: player}, nil
}

func (g *GameState) attack(player int, house HousePile, target deck.Suit) error {
	if g.Round.Phase != AttackPhase {
		return ErrWrongPhase
	}

	attacker := g.Players[player]
	pile := attacker.House[house]
	if pile == nil {
		return fmt.Errorf("%w: house pile %s", ErrNoSuchPile, house)
	}

	idx, ok := g.PlayerBySuit(target)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	defender := g.Players[idx]

	attacker.House[house] = nil

	slot, ok := defender.FirstHousePile()
	if !ok {
		g.Discard.Add(pile.Special)
		g.Discard.AddPile(pile.Cards)
		return nil
	}

	defending := defender.House[slot]
	if Strength(pile) > Strength(defending) {
		defender.House[slot] = nil
		g.Discard.Add(defending.Special)
		attacker.Hand.AddPile(defending.Cards)
		g.Discard.Add(pile.Special)
		g.Discard.AddPile(pile.Cards)
		return nil
	}

	defender.Hand.AddPile(pile.Cards)
	g.Discard.Add(pile.Special)
	return nil
}

func (g *GameState) addCardToPile(player int, target PlayerPile, card deck.Card) error {
	ps := g.Players[player]
	if !ps.Hand.Contains(card) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}

	switch {
	case card.Rank == deck.King:
		return fmt.Errorf("%w: kings cannot be played", ErrIllegalPlacement)

	case card.Rank.IsPicture():
		if target.IsKing() {
			return fmt.Errorf("%w: %s cannot go on the king pile", ErrIllegalPlacement, card)
		}
		house := target.House()
		if ps.House[house] != nil {
			return fmt.Errorf("%w: %s", ErrPileOccupied, house)
		}
		ps.Hand.TakeCard(card)
		ps.House[house] = deck.NewSpecialPile(card)

	default:
		pile := ps.Pile(target)
		if pile == nil {
			return fmt.Errorf("%w: house pile %s", ErrNoSuchPile, target)
		}
		if !CanAddToPile(pile, card) {
			return fmt.Errorf("%w: %s on %s", ErrIllegalPlacement, card, pile.Special)
		}
		ps.Hand.TakeCard(card)
		pile.Cards.Add(card)
	}

	g.Round.Phase = OrganizePhase
	return nil
}

// advance ends the current turn. The stock is topped up from the shuffled
// discard pile when it cannot cover a full hand.
func (g *GameState) advance() {
	if g.Stock.Count() < HandSize {
		discarded := g.Discard.Take()
		discarded.Shuffle(g.rng)
		g.Stock.AddPile(discarded)
	}

	hand := g.Stock.TakeUpToN(HandSize)

	g.Round.Player = (g.Round.Player + 1) % len(g.Players)
	g.Round.Phase = AttackPhase
	g.Players[g.Round.Player].Hand.AddPile(hand)
}

// CardCount counts every card in the game, Kings included
func (g *GameState) CardCount() int {
	total := g.Stock.Count() + g.Discard.Count()
	for _, ps := range g.Players {
		total += ps.CardCount()
	}
	return total
}

// Clone returns a deep copy, including the random generator's position
func (g *GameState) Clone() *GameState {
	c := &GameState{
		Round:        g.Round,
		Discard:      g.Discard.Clone(),
		Stock:        g.Stock.Clone(),
		Players:      make([]*PlayerState, len(g.Players)),
		WinThreshold: g.WinThreshold,
		Winner:       g.Winner,
	}
	if g.src != nil {
		src := *g.src
		c.src = &src
		c.rng = rand.New(c.src)
	}
	for i, ps := range g.Players {
		c.Players[i] = ps.Clone()
	}
	return c
}

// ExpectedCardCount is the number of cards a game with the given options holds
func ExpectedCardCount(players, blankFiller int) int {
	return 12*len(deck.Suits) + players + 12*blankFiller
}
