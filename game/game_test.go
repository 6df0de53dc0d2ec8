package game

import (
	"testing"

	"github.com/minaorangina/kings/deck"
	utils "github.com/minaorangina/kings/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default game seats four players and deals to player 0", func(t *testing.T) {
		g, err := New(Options{})
		utils.AssertNoError(t, err)

		utils.AssertEqual(t, len(g.Players), 4)
		utils.AssertEqual(t, g.Round.Player, 0)
		utils.AssertEqual(t, g.Round.Phase, AttackPhase)
		utils.AssertEqual(t, g.WinThreshold, DefaultWinThreshold)
		utils.AssertEqual(t, g.Winner, -1)

		utils.AssertEqual(t, g.Players[0].Hand.Count(), HandSize)
		for _, ps := range g.Players[1:] {
			utils.AssertEqual(t, ps.Hand.Count(), 0)
		}
		utils.AssertEqual(t, g.Stock.Count(), 48-HandSize)
		utils.AssertEqual(t, g.Discard.Count(), 0)
	})

	t.Run("players get suits in seating order with their own king", func(t *testing.T) {
		g := testGame(t, 4)

		for i, suit := range []deck.Suit{deck.Hearts, deck.Spades, deck.Diamonds, deck.Clubs} {
			utils.AssertEqual(t, g.Players[i].Suit, suit)
			utils.AssertEqual(t, g.Players[i].King.Special, card(deck.King, suit))
			utils.AssertEqual(t, g.Players[i].King.Count(), 0)
		}
	})

	t.Run("card count includes kings and blank filler", func(t *testing.T) {
		for players := 2; players <= 4; players++ {
			g, err := New(Options{Players: players, BlankFiller: 4})
			utils.AssertNoError(t, err)
			utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(players, 4))
		}
		utils.AssertEqual(t, ExpectedCardCount(4, 4), 48+4+48)
	})

	t.Run("player count is bounded", func(t *testing.T) {
		_, err := New(Options{Players: 1})
		utils.AssertErrorIs(t, err, ErrTooFewPlayers)

		_, err = New(Options{Players: 5})
		utils.AssertErrorIs(t, err, ErrTooManyPlayers)
	})

	t.Run("same source deals the same game", func(t *testing.T) {
		a := testGame(t, 3)
		b := testGame(t, 3)
		assert.Equal(t, a.Players[0].Hand.Cards(), b.Players[0].Hand.Cards())
		assert.Equal(t, a.Stock.Cards(), b.Stock.Cards())
	})
}

func TestApplyRejections(t *testing.T) {
	t.Run("only the current player may act and the state is untouched", func(t *testing.T) {
		g := testGame(t, 4)
		before := g.Clone()

		for _, player := range []int{1, 2, 3, -1, 9} {
			_, err := g.Apply(player, NewDiscard())
			utils.AssertErrorIs(t, err, ErrNotYourTurn)
		}
		assert.Equal(t, before, g)
	})

	t.Run("attacking after organizing is rejected", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		give(t, g, 0, card(deck.Jack, deck.Hearts), card(deck.Queen, deck.Hearts))

		_, err := g.Apply(0, NewAddCard(PileOf(HouseOne), card(deck.Jack, deck.Hearts)))
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, g.Round.Phase, OrganizePhase)

		before := g.Clone()
		_, err = g.Apply(0, NewAttack(HouseOne, deck.Spades))
		utils.AssertErrorIs(t, err, ErrWrongPhase)
		assert.Equal(t, before, g)
	})

	t.Run("swapping moves the turn to organizing", func(t *testing.T) {
		g := testGame(t, 2)
		_, err := g.Apply(0, NewSwap(HouseTwo, HouseTwo))
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, g.Round.Phase, OrganizePhase)
	})

	t.Run("cards must be in hand", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)

		_, err := g.Apply(0, NewAddCard(KingPile, card(deck.Two, deck.Hearts)))
		utils.AssertErrorIs(t, err, ErrCardNotInHand)
	})

	t.Run("placing on an empty slot needs a picture card", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		give(t, g, 0, card(deck.Five, deck.Hearts))

		_, err := g.Apply(0, NewAddCard(PileOf(HouseThree), card(deck.Five, deck.Hearts)))
		utils.AssertErrorIs(t, err, ErrNoSuchPile)
	})

	t.Run("malformed actions are rejected", func(t *testing.T) {
		g := testGame(t, 2)
		for _, a := range []Action{
			{Kind: ActionKind(42)},
			NewAttack(HousePile(3), deck.Spades),
			NewAttack(HouseOne, deck.Blank),
			NewSwap(HouseOne, HousePile(-1)),
			NewAddCard(PlayerPile(7), card(deck.Two, deck.Hearts)),
			NewAddCard(KingPile, deck.Card{Suit: deck.Hearts}),
		} {
			_, err := g.Apply(0, a)
			utils.AssertErrorIs(t, err, ErrMalformedAction)
		}
	})
}

func TestIllegalPlacement(t *testing.T) {
	g := testGame(t, 2)
	clearHands(g)
	openHouse(t, g, 0, HouseOne, card(deck.Jack, deck.Hearts))
	openHouse(t, g, 0, HouseTwo, card(deck.Queen, deck.Spades))
	openHouse(t, g, 0, HouseThree, card(deck.Ace, deck.Clubs))

	pictures := []deck.Card{
		card(deck.Jack, deck.Spades),
		card(deck.Queen, deck.Hearts),
		card(deck.Ace, deck.Hearts),
	}
	give(t, g, 0, pictures...)
	// a stray king; conservation is not under test here
	king := card(deck.King, deck.Diamonds)
	g.Players[0].Hand.Add(king)

	targets := []PlayerPile{PileOf(HouseOne), PileOf(HouseTwo), PileOf(HouseThree), KingPile}

	for _, target := range targets {
		before := g.Clone()
		_, err := g.Apply(0, NewAddCard(target, king))
		utils.AssertErrorIs(t, err, ErrIllegalPlacement)
		assert.Equal(t, before, g)

		for _, c := range pictures {
			_, err := g.Apply(0, NewAddCard(target, c))
			utils.AssertErrorIs(t, err, ErrIllegalPlacement)
			if !target.IsKing() {
				utils.AssertErrorIs(t, err, ErrPileOccupied)
			}
			assert.Equal(t, before, g)
		}
	}
}

func TestTwoPlayerTurn(t *testing.T) {
	g := testGame(t, 2)
	clearHands(g)

	t.Log("Given player 0 holds the Jack of Hearts and a club")
	jack, club := card(deck.Jack, deck.Hearts), card(deck.Six, deck.Clubs)
	give(t, g, 0, jack, club)

	t.Log("When they open house pile 1 with the Jack")
	outcome, err := g.Apply(0, NewAddCard(PileOf(HouseOne), jack))
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, outcome, Outcome{Kind: Nominal, Player: 0})
	utils.AssertEqual(t, g.Players[0].House[HouseOne].Special, jack)
	utils.AssertEqual(t, g.Round.Phase, OrganizePhase)

	t.Log("Then a club cannot go on the Jack of Hearts")
	_, err = g.Apply(0, NewAddCard(PileOf(HouseOne), club))
	utils.AssertErrorIs(t, err, ErrIllegalPlacement)

	t.Log("And discarding hands the turn to player 1 with a fresh hand")
	stock := g.Stock.Count()
	outcome, err = g.Apply(0, NewDiscard())
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, outcome, Outcome{Kind: NextPlayer, Player: 1})
	utils.AssertEqual(t, g.Round, RoundState{Player: 1, Phase: AttackPhase})
	utils.AssertEqual(t, g.Players[0].Hand.Count(), 0)
	utils.AssertEqual(t, g.Players[1].Hand.Count(), HandSize)
	utils.AssertEqual(t, g.Stock.Count(), stock-HandSize)
	utils.AssertTrue(t, g.Discard.Contains(club))
	utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(2, 0))
}

func TestAttack(t *testing.T) {
	t.Run("jack pile of three beats queen pile of one", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		openHouse(t, g, 0, HouseTwo, card(deck.Jack, deck.Hearts),
			card(deck.Two, deck.Hearts), card(deck.Three, deck.Hearts), card(deck.Four, deck.Hearts))
		openHouse(t, g, 1, HouseOne, card(deck.Queen, deck.Spades), card(deck.Nine, deck.Clubs))

		outcome, err := g.Apply(0, NewAttack(HouseTwo, deck.Spades))
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, outcome.Kind, Nominal)

		utils.AssertTrue(t, g.Players[0].House[HouseTwo] == nil)
		utils.AssertTrue(t, g.Players[1].House[HouseOne] == nil)
		assert.Equal(t, []deck.Card{card(deck.Nine, deck.Clubs)}, g.Players[0].Hand.Cards())
		assert.ElementsMatch(t, []deck.Card{
			card(deck.Queen, deck.Spades),
			card(deck.Jack, deck.Hearts),
			card(deck.Two, deck.Hearts),
			card(deck.Three, deck.Hearts),
			card(deck.Four, deck.Hearts),
		}, g.Discard.Cards())
		utils.AssertEqual(t, g.Round.Phase, AttackPhase)
		utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(2, 0))
	})

	t.Run("a tie keeps the defender in place", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		openHouse(t, g, 0, HouseOne, card(deck.Jack, deck.Hearts),
			card(deck.Two, deck.Hearts), card(deck.Three, deck.Hearts))
		openHouse(t, g, 1, HouseTwo, card(deck.Queen, deck.Spades), card(deck.Nine, deck.Clubs))

		_, err := g.Apply(0, NewAttack(HouseOne, deck.Spades))
		utils.AssertNoError(t, err)

		utils.AssertTrue(t, g.Players[0].House[HouseOne] == nil)
		utils.AssertEqual(t, g.Players[1].House[HouseTwo].Count(), 1)
		assert.ElementsMatch(t, []deck.Card{card(deck.Two, deck.Hearts), card(deck.Three, deck.Hearts)},
			g.Players[1].Hand.Cards())
		assert.Equal(t, []deck.Card{card(deck.Jack, deck.Hearts)}, g.Discard.Cards())
		utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(2, 0))
	})

	t.Run("attacking a player without house piles wastes the pile", func(t *testing.T) {
		g := testGame(t, 3)
		clearHands(g)
		openHouse(t, g, 0, HouseThree, card(deck.Ace, deck.Hearts), card(deck.Five, deck.Diamonds))

		_, err := g.Apply(0, NewAttack(HouseThree, deck.Diamonds))
		utils.AssertNoError(t, err)
		utils.AssertTrue(t, g.Players[0].House[HouseThree] == nil)
		utils.AssertEqual(t, g.Discard.Count(), 2)
		utils.AssertEqual(t, g.Players[2].Hand.Count(), 0)
	})

	t.Run("targets must be a seated player", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		openHouse(t, g, 0, HouseOne, card(deck.Jack, deck.Hearts))
		before := g.Clone()

		for _, suit := range []deck.Suit{deck.Diamonds, deck.Clubs} {
			_, err := g.Apply(0, NewAttack(HouseOne, suit))
			utils.AssertErrorIs(t, err, ErrUnknownTarget)
		}
		assert.Equal(t, before, g)
	})

	t.Run("attacking yourself takes your own pile into your hand", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		openHouse(t, g, 0, HouseOne, card(deck.Queen, deck.Hearts), card(deck.Two, deck.Clubs))
		openHouse(t, g, 0, HouseTwo, card(deck.Jack, deck.Hearts),
			card(deck.Three, deck.Clubs), card(deck.Four, deck.Clubs), card(deck.Five, deck.Clubs))

		t.Log("Given house two outranks house one, which is first in slot order")
		_, err := g.Apply(0, NewAttack(HouseTwo, deck.Hearts))
		utils.AssertNoError(t, err)

		utils.AssertTrue(t, g.Players[0].House[HouseOne] == nil)
		utils.AssertTrue(t, g.Players[0].House[HouseTwo] == nil)
		assert.Equal(t, []deck.Card{card(deck.Two, deck.Clubs)}, g.Players[0].Hand.Cards())
		utils.AssertEqual(t, g.Players[1].Hand.Count(), 0)
		utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(2, 0))
	})

	t.Run("a tie with yourself returns the cards to your hand", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		openHouse(t, g, 0, HouseOne, card(deck.Queen, deck.Hearts), card(deck.Two, deck.Clubs))
		openHouse(t, g, 0, HouseThree, card(deck.Jack, deck.Hearts),
			card(deck.Three, deck.Clubs), card(deck.Four, deck.Clubs))

		_, err := g.Apply(0, NewAttack(HouseThree, deck.Hearts))
		utils.AssertNoError(t, err)

		utils.AssertEqual(t, g.Players[0].House[HouseOne].Count(), 1)
		utils.AssertTrue(t, g.Players[0].House[HouseThree] == nil)
		assert.ElementsMatch(t, []deck.Card{card(deck.Three, deck.Clubs), card(deck.Four, deck.Clubs)},
			g.Players[0].Hand.Cards())
		assert.Equal(t, []deck.Card{card(deck.Jack, deck.Hearts)}, g.Discard.Cards())
		utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(2, 0))
	})

	t.Run("attacking needs a pile", func(t *testing.T) {
		g := testGame(t, 2)
		_, err := g.Apply(0, NewAttack(HouseTwo, deck.Spades))
		utils.AssertErrorIs(t, err, ErrNoSuchPile)
	})
}

func TestRoundAdvance(t *testing.T) {
	t.Run("short stock is topped up from the discard pile", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)

		cards := g.Stock.Take()
		stock, err := cards.TakeN(3)
		require.NoError(t, err)
		discard, err := cards.TakeN(20)
		require.NoError(t, err)
		g.Stock.AddPile(stock)
		g.Discard.AddPile(discard)

		_, err = g.Apply(0, NewDiscard())
		utils.AssertNoError(t, err)

		utils.AssertEqual(t, g.Players[1].Hand.Count(), HandSize)
		utils.AssertEqual(t, g.Stock.Count(), 3+20-HandSize)
		utils.AssertEqual(t, g.Discard.Count(), 0)
	})

	t.Run("an empty game deals what is left", func(t *testing.T) {
		g := testGame(t, 2)
		clearHands(g)
		g.Stock.TakeUpToN(g.Stock.Count() - 2)

		_, err := g.Apply(0, NewDiscard())
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, g.Players[1].Hand.Count(), 2)
		utils.AssertEqual(t, g.Stock.Count(), 0)
	})

	t.Run("turns cycle through every player", func(t *testing.T) {
		g := testGame(t, 3)
		for _, next := range []int{1, 2, 0, 1} {
			outcome, err := g.Apply(g.CurrentPlayer(), NewDiscard())
			utils.AssertNoError(t, err)
			utils.AssertEqual(t, outcome, Outcome{Kind: NextPlayer, Player: next})
		}
		utils.AssertEqual(t, g.CardCount(), ExpectedCardCount(3, 0))
	})
}

func TestWin(t *testing.T) {
	g := testGame(t, 2)
	clearHands(g)

	t.Log("Given player 0 has eight cards on their King pile")
	hearts := []deck.Card{}
	for _, r := range []deck.Rank{deck.Two, deck.Three, deck.Four, deck.Five, deck.Six, deck.Seven, deck.Eight, deck.Nine} {
		hearts = append(hearts, card(r, deck.Hearts))
	}
	for _, c := range hearts {
		require.True(t, g.Stock.TakeCard(c))
		g.Players[0].King.Cards.Add(c)
	}
	give(t, g, 0, card(deck.Ten, deck.Hearts))

	t.Log("When they add the ninth")
	outcome, err := g.Apply(0, NewAddCard(KingPile, card(deck.Ten, deck.Hearts)))

	t.Log("Then they win")
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, outcome, Outcome{Kind: GameWon, Player: 0})
	utils.AssertTrue(t, g.Won())
	utils.AssertEqual(t, g.Winner, 0)

	t.Log("And nothing else can happen")
	for _, player := range []int{0, 1} {
		_, err = g.Apply(player, NewDiscard())
		utils.AssertErrorIs(t, err, ErrGameOver)
	}
}

func TestConfigurableWinThreshold(t *testing.T) {
	g, err := New(Options{Players: 2, WinThreshold: 1})
	utils.AssertNoError(t, err)
	clearHands(g)
	give(t, g, 0, card(deck.Seven, deck.Hearts))

	outcome, err := g.Apply(0, NewAddCard(KingPile, card(deck.Seven, deck.Hearts)))
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, outcome.Kind, GameWon)
}

func TestClone(t *testing.T) {
	g := testGame(t, 2)
	c := g.Clone()
	assert.Equal(t, g, c)

	_, err := c.Apply(0, NewDiscard())
	utils.AssertNoError(t, err)

	utils.AssertEqual(t, g.Round.Player, 0)
	utils.AssertEqual(t, g.Players[0].Hand.Count(), HandSize)
	assert.NotEqual(t, g, c)

	t.Run("clones draw the same shuffles", func(t *testing.T) {
		a := testGame(t, 2)
		clearHands(a)
		a.Discard.AddPile(a.Stock.TakeUpToN(45))
		b := a.Clone()

		_, err := a.Apply(0, NewDiscard())
		utils.AssertNoError(t, err)
		_, err = b.Apply(0, NewDiscard())
		utils.AssertNoError(t, err)
		assert.Equal(t, a.Players[1].Hand.Cards(), b.Players[1].Hand.Cards())
	})
}
