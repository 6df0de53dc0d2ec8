package deck

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
)

var ErrNotEnoughCards = errors.New("not enough cards in pile")

// Pile is an ordered stack of cards. The last card pushed is the top.
type Pile struct {
	cards []Card
}

// NewPile constructs a pile. The last card given ends up on top.
func NewPile(cards ...Card) *Pile {
	p := &Pile{cards: make([]Card, 0, len(cards))}
	p.cards = append(p.cards, cards...)
	return p
}

// Count returns the number of cards in the pile
func (p *Pile) Count() int {
	return len(p.cards)
}

func (p *Pile) IsEmpty() bool {
	return len(p.cards) == 0
}

// Cards returns a copy of the cards, bottom first
func (p *Pile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// Add pushes a card onto the top of the pile
func (p *Pile) Add(c Card) {
	p.cards = append(p.cards, c)
}

// AddPile moves every card of other onto the top of p, leaving other empty
func (p *Pile) AddPile(other *Pile) {
	if other == nil {
		return
	}
	p.cards = append(p.cards, other.cards...)
	other.cards = nil
}

// Take empties the pile and returns its former contents
func (p *Pile) Take() *Pile {
	taken := &Pile{cards: p.cards}
	p.cards = nil
	return taken
}

// TakeCard removes one card equal to c, reporting whether it was found
func (p *Pile) TakeCard(c Card) bool {
	for i, card := range p.cards {
		if card == c {
			p.cards = append(p.cards[:i], p.cards[i+1:]...)
			return true
		}
	}
	return false
}

// TakeN removes exactly n cards from the top
func (p *Pile) TakeN(n int) (*Pile, error) {
	if n < 0 || n > len(p.cards) {
		return nil, ErrNotEnoughCards
	}
	return p.TakeUpToN(n), nil
}

// TakeUpToN removes at most n cards from the top. It never fails.
func (p *Pile) TakeUpToN(n int) *Pile {
	if n >= len(p.cards) {
		return p.Take()
	}
	if n <= 0 {
		return NewPile()
	}
	split := len(p.cards) - n
	taken := NewPile(p.cards[split:]...)
	p.cards = p.cards[:split]
	return taken
}

// Shuffle permutes the pile uniformly using rng
func (p *Pile) Shuffle(rng *rand.Rand) {
	Deck(p.cards).Shuffle(rng)
}

// Contains reports whether c is in the pile
func (p *Pile) Contains(c Card) bool {
	for _, card := range p.cards {
		if card == c {
			return true
		}
	}
	return false
}

// ContainsRank reports whether any card of the given rank is in the pile
func (p *Pile) ContainsRank(r Rank) bool {
	for _, card := range p.cards {
		if card.Rank == r {
			return true
		}
	}
	return false
}

// RankCounts counts the cards of each rank
func (p *Pile) RankCounts() map[Rank]int {
	counts := map[Rank]int{}
	for _, card := range p.cards {
		counts[card.Rank]++
	}
	return counts
}

func (p *Pile) Clone() *Pile {
	if p == nil {
		return nil
	}
	if p.cards == nil {
		return &Pile{}
	}
	return NewPile(p.cards...)
}

func (p *Pile) MarshalJSON() ([]byte, error) {
	if p.cards == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.cards)
}

func (p *Pile) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	p.cards = cards
	return nil
}

// SpecialPile is a pile governed by the card it was opened with.
// House piles are opened by a Jack, Queen or Ace; King piles by a King.
type SpecialPile struct {
	Special Card  `json:"special"`
	Cards   *Pile `json:"cards"`
}

func NewSpecialPile(special Card) *SpecialPile {
	return &SpecialPile{Special: special, Cards: NewPile()}
}

// Count returns the number of cards on top of the special card
func (sp *SpecialPile) Count() int {
	return sp.Cards.Count()
}

func (sp *SpecialPile) Clone() *SpecialPile {
	if sp == nil {
		return nil
	}
	return &SpecialPile{Special: sp.Special, Cards: sp.Cards.Clone()}
}
