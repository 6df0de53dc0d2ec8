package deck

import (
	"errors"
	"fmt"
)

var ErrUnknownCode = errors.New("unknown card code")

// Rank represents a rank in a deck of cards.
// Ranks are cyclic: King is followed by Ace.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = map[Rank]string{
	Ace:   "Ace",
	Two:   "Two",
	Three: "Three",
	Four:  "Four",
	Five:  "Five",
	Six:   "Six",
	Seven: "Seven",
	Eight: "Eight",
	Nine:  "Nine",
	Ten:   "Ten",
	Jack:  "Jack",
	Queen: "Queen",
	King:  "King",
}

// Ten is written as "1" so every code is a single character
var rankCodes = map[Rank]byte{
	Ace:   'a',
	Two:   '2',
	Three: '3',
	Four:  '4',
	Five:  '5',
	Six:   '6',
	Seven: '7',
	Eight: '8',
	Nine:  '9',
	Ten:   '1',
	Jack:  'j',
	Queen: 'q',
	King:  'k',
}

// Ranks lists every rank from King down to Ace
var Ranks = []Rank{King, Queen, Jack, Ten, Nine, Eight, Seven, Six, Five, Four, Three, Two, Ace}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// Valid reports whether r is one of the thirteen ranks
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// Up returns the next rank, wrapping King to Ace
func (r Rank) Up() Rank {
	if r == King {
		return Ace
	}
	return r + 1
}

// Down returns the previous rank, wrapping Ace to King
func (r Rank) Down() Rank {
	if r == Ace {
		return King
	}
	return r - 1
}

// IsPicture reports whether the rank opens a house pile.
// Kings are not picture cards here: they only ever live on King piles.
func (r Rank) IsPicture() bool {
	return r == Jack || r == Queen || r == Ace
}

// Code returns the single character code of the rank
func (r Rank) Code() byte {
	return rankCodes[r]
}

// ParseRank parses a single character rank code
func ParseRank(s string) (Rank, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: rank %q", ErrUnknownCode, s)
	}
	for r, c := range rankCodes {
		if c == s[0] {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: rank %q", ErrUnknownCode, s)
}

// Suit represents a suit in a deck of cards
type Suit int

const (
	Hearts Suit = iota
	Spades
	Clubs
	Diamonds
	// Blank is the filler suit. Blank cards belong to no player.
	Blank
)

var suitNames = map[Suit]string{
	Hearts:   "Hearts",
	Spades:   "Spades",
	Clubs:    "Clubs",
	Diamonds: "Diamonds",
	Blank:    "Blanks",
}

var suitCodes = map[Suit]byte{
	Hearts:   'h',
	Spades:   's',
	Clubs:    'c',
	Diamonds: 'd',
	Blank:    'b',
}

// Suits lists the four player suits
var Suits = []Suit{Hearts, Spades, Clubs, Diamonds}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

// Code returns the single character code of the suit
func (s Suit) Code() byte {
	return suitCodes[s]
}

// ParseSuit parses a single character suit code, including the blank suit
func ParseSuit(s string) (Suit, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: suit %q", ErrUnknownCode, s)
	}
	for suit, c := range suitCodes {
		if c == s[0] {
			return suit, nil
		}
	}
	return 0, fmt.Errorf("%w: suit %q", ErrUnknownCode, s)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard constructs a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Suit: suit, Rank: rank}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Code returns the two character suit+rank code, e.g. "c1" for the Ten of Clubs
func (c Card) Code() string {
	return string([]byte{c.Suit.Code(), c.Rank.Code()})
}

// ParseCard parses a two character suit+rank code
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: card %q", ErrUnknownCode, s)
	}
	suit, err := ParseSuit(s[0:1])
	if err != nil {
		return Card{}, err
	}
	rank, err := ParseRank(s[1:2])
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
