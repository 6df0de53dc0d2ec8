package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/minaorangina/kings/deck"
	"github.com/minaorangina/kings/protocol"
)

// everyone lets the viewer see whichever hand is being played
const everyone = -1

// renderState prints one panel per seat above the shared piles. The
// current player's hand is shown when viewer may see it.
func renderState(view *protocol.GameView, hand []deck.Card, viewer int) {
	if view == nil {
		return
	}

	var seats []pterm.Panel
	for i, p := range view.Players {
		current := i == view.Round.Player
		var shown []deck.Card
		if current && (viewer == everyone || viewer == i) {
			shown = hand
		}
		seats = append(seats, pterm.Panel{Data: seatBox(i, p, current, shown)})
	}

	pterm.Println()
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		seats,
		{{Data: boardBox(view)}},
	}).Render()
}

func renderWinner(seat int) {
	pterm.Success.Printfln("Seat %d wins!", seat)
}

func seatBox(seat int, p protocol.PlayerView, current bool, hand []deck.Card) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(1).WithBottomPadding(1)

	suit := p.Suit
	if parsed, err := deck.ParseSuit(p.Suit); err == nil {
		suit = parsed.String()
	}
	title := fmt.Sprintf("Seat %d %s", seat, suit)
	if current {
		title = pterm.LightGreen(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "King: %d\n", p.King.Count())
	for i, house := range p.House {
		fmt.Fprintf(&b, "House %d: %s\n", i+1, describePile(house))
	}
	fmt.Fprintf(&b, "Hand: %d", p.Hand)
	if len(hand) > 0 {
		b.WriteString("\n" + pterm.BgGreen.Sprint(cardList(hand)))
	}

	return pbox.WithTitle(title).WithTitleTopLeft().Sprint(b.String())
}

func boardBox(view *protocol.GameView) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4)
	return pbox.WithTitle(pterm.LightYellow("|TABLE|")).WithTitleTopCenter().Sprintf(
		"Stock: %d  Discard: %d  Turn: seat %d (%s)",
		view.Stock, view.Discard, view.Round.Player, view.Round.Phase,
	)
}

func describePile(p *deck.SpecialPile) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", p.Special, p.Count())
}

func cardList(cards []deck.Card) string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.String())
	}
	return strings.Join(names, " ")
}
