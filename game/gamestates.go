package game

import "fmt"

// TurnPhase is the part of a turn the current player is in
type TurnPhase int

const (
	// AttackPhase is the only phase in which a player may attack
	AttackPhase TurnPhase = iota
	// OrganizePhase starts with the first pile change of a turn
	OrganizePhase
)

var phaseNames = map[TurnPhase]string{
	AttackPhase:   "attack",
	OrganizePhase: "organize",
}

func (p TurnPhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TurnPhase(%d)", int(p))
}

func (p TurnPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *TurnPhase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown turn phase %q", text)
}

type RoundState struct {
	Player int       `json:"player"`
	Phase  TurnPhase `json:"phase"`
}

// HousePile addresses one of the three house pile slots
type HousePile int

const (
	HouseOne HousePile = iota
	HouseTwo
	HouseThree
)

// HousePiles lists the slots in order
var HousePiles = []HousePile{HouseOne, HouseTwo, HouseThree}

func (h HousePile) Valid() bool {
	return h >= HouseOne && h <= HouseThree
}

// Code is the slot number as written in actions, "1" to "3"
func (h HousePile) Code() byte {
	return '1' + byte(h)
}

func (h HousePile) String() string {
	return string(h.Code())
}

func parseHousePile(b byte) (HousePile, bool) {
	h := HousePile(b - '1')
	if b < '1' || !h.Valid() {
		return 0, false
	}
	return h, true
}

// PlayerPile addresses a house pile slot or the King pile
type PlayerPile int

// KingPile addresses the player's King pile
const KingPile PlayerPile = 3

// PileOf addresses a house pile slot
func PileOf(h HousePile) PlayerPile {
	return PlayerPile(h)
}

func (p PlayerPile) IsKing() bool {
	return p == KingPile
}

// House returns the slot addressed. Only meaningful when !IsKing().
func (p PlayerPile) House() HousePile {
	return HousePile(p)
}

func (p PlayerPile) Valid() bool {
	return p.IsKing() || p.House().Valid()
}

func (p PlayerPile) Code() byte {
	if p.IsKing() {
		return 'k'
	}
	return p.House().Code()
}

func (p PlayerPile) String() string {
	return string(p.Code())
}

func parsePlayerPile(b byte) (PlayerPile, bool) {
	if b == 'k' {
		return KingPile, true
	}
	h, ok := parseHousePile(b)
	return PileOf(h), ok
}

type OutcomeKind int

const (
	// Nominal means the same player keeps playing
	Nominal OutcomeKind = iota
	// NextPlayer means the turn passed to Outcome.Player
	NextPlayer
	// GameWon means Outcome.Player won and the game is over
	GameWon
)

var outcomeNames = map[OutcomeKind]string{
	Nominal:    "nominal",
	NextPlayer: "next_player",
	GameWon:    "game_won",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of a successfully applied action
type Outcome struct {
	Kind OutcomeKind
	// Player is the acting player, the next player or the winner depending on Kind
	Player int
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s(%d)", o.Kind, o.Player)
}
