package game

import (
	"fmt"
	"strings"

	"github.com/minaorangina/kings/deck"
)

type ActionKind int

const (
	Attack ActionKind = iota
	AddCardToPile
	SwapHousePile
	DiscardHand
)

var actionTags = map[ActionKind]string{
	Attack:        "atck:",
	AddCardToPile: "actp:",
	SwapHousePile: "swap:",
	DiscardHand:   "dscd:",
}

// Action is one move by the current player. Only the fields used by Kind
// are set, so actions built by the constructors compare with ==.
type Action struct {
	Kind ActionKind
	// House is the attacking pile for Attack and the first slot for SwapHousePile
	House  HousePile
	Target deck.Suit
	Pile   PlayerPile
	Card   deck.Card
	Other  HousePile
}

func NewAttack(house HousePile, target deck.Suit) Action {
	return Action{Kind: Attack, House: house, Target: target}
}

func NewAddCard(pile PlayerPile, card deck.Card) Action {
	return Action{Kind: AddCardToPile, Pile: pile, Card: card}
}

func NewSwap(a, b HousePile) Action {
	return Action{Kind: SwapHousePile, House: a, Other: b}
}

func NewDiscard() Action {
	return Action{Kind: DiscardHand}
}

func (a Action) validate() error {
	switch a.Kind {
	case Attack:
		if !a.House.Valid() || a.Target < deck.Hearts || a.Target >= deck.Blank {
			return fmt.Errorf("%w: %+v", ErrMalformedAction, a)
		}
	case AddCardToPile:
		if !a.Pile.Valid() || !a.Card.Rank.Valid() || a.Card.Suit < deck.Hearts || a.Card.Suit > deck.Blank {
			return fmt.Errorf("%w: %+v", ErrMalformedAction, a)
		}
	case SwapHousePile:
		if !a.House.Valid() || !a.Other.Valid() {
			return fmt.Errorf("%w: %+v", ErrMalformedAction, a)
		}
	case DiscardHand:
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedAction, a.Kind)
	}
	return nil
}

// String encodes the action, e.g. "atck:2h" or "actp:kc5"
func (a Action) String() string {
	var b strings.Builder
	b.WriteString(actionTags[a.Kind])
	switch a.Kind {
	case Attack:
		b.WriteByte(a.House.Code())
		b.WriteByte(a.Target.Code())
	case AddCardToPile:
		b.WriteByte(a.Pile.Code())
		b.WriteString(a.Card.Code())
	case SwapHousePile:
		b.WriteByte(a.House.Code())
		b.WriteByte(a.Other.Code())
	}
	return b.String()
}

func (a Action) MarshalText() ([]byte, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction decodes an action. Anything other than an exact encoding is
// rejected with ErrMalformedAction.
func ParseAction(s string) (Action, error) {
	malformed := fmt.Errorf("%w: %q", ErrMalformedAction, s)

	if len(s) < 5 {
		return Action{}, malformed
	}
	tag, body := s[:5], s[5:]

	switch tag {
	case actionTags[Attack]:
		if len(body) != 2 {
			return Action{}, malformed
		}
		house, ok := parseHousePile(body[0])
		if !ok {
			return Action{}, malformed
		}
		suit, err := deck.ParseSuit(body[1:])
		if err != nil || suit == deck.Blank {
			return Action{}, malformed
		}
		return NewAttack(house, suit), nil

	case actionTags[AddCardToPile]:
		if len(body) != 3 {
			return Action{}, malformed
		}
		pile, ok := parsePlayerPile(body[0])
		if !ok {
			return Action{}, malformed
		}
		card, err := deck.ParseCard(body[1:])
		if err != nil {
			return Action{}, malformed
		}
		return NewAddCard(pile, card), nil

	case actionTags[SwapHousePile]:
		if len(body) != 2 {
			return Action{}, malformed
		}
		a, okA := parseHousePile(body[0])
		b, okB := parseHousePile(body[1])
		if !okA || !okB {
			return Action{}, malformed
		}
		return NewSwap(a, b), nil

	case actionTags[DiscardHand]:
		if body != "" {
			return Action{}, malformed
		}
		return NewDiscard(), nil
	}

	return Action{}, malformed
}
