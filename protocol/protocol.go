package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/minaorangina/kings/deck"
	"github.com/minaorangina/kings/game"
)

var ErrUnknownEvent = errors.New("unknown event")

// Cmd represents the kind of an event
type Cmd int

const (
	Null Cmd = iota
	StateChanged
	GameWon
	Error
)

var CmdNames = map[Cmd]string{
	Null:         "Null",
	StateChanged: "StateChanged",
	GameWon:      "GameWon",
	Error:        "Error",
}

var NameToCmd = map[string]Cmd{
	"Null":         Null,
	"StateChanged": StateChanged,
	"GameWon":      GameWon,
	"Error":        Error,
}

func (c Cmd) String() string {
	return CmdNames[c]
}

// wire prefixes
const (
	stateTag   = "state:"
	handTag    = "hand:"
	gameWonTag = "gmwon:"
	errorTag   = "error:"
)

// Event is a message from a game to its subscribers
type Event struct {
	Command Cmd
	// View is set for StateChanged
	View *GameView
	// Hand is the current player's hand. It is only ever sent to that player.
	Hand []deck.Card
	// Winner is set for GameWon
	Winner int
	// Reason is set for Error
	Reason string
}

// NewStateChanged snapshots g for broadcasting
func NewStateChanged(g *game.GameState) Event {
	view := NewGameView(g)
	return Event{
		Command: StateChanged,
		View:    &view,
		Hand:    g.Players[g.Round.Player].Hand.Cards(),
	}
}

func NewGameWon(winner int) Event {
	return Event{Command: GameWon, Winner: winner}
}

func NewError(err error) Event {
	return Event{Command: Error, Reason: err.Error()}
}

// Encode renders the event for the subscriber sitting at seat.
// Spectators pass a negative seat.
func (e Event) Encode(seat int) (string, error) {
	switch e.Command {
	case StateChanged:
		if e.View == nil {
			return "", fmt.Errorf("%w: state without a view", ErrUnknownEvent)
		}
		data, err := json.Marshal(e.View)
		if err != nil {
			return "", err
		}
		msg := stateTag + string(data)
		if seat >= 0 && seat == e.View.Round.Player {
			msg += "\n" + handTag + encodeCards(e.Hand)
		}
		return msg, nil

	case GameWon:
		return gameWonTag + strconv.Itoa(e.Winner), nil

	case Error:
		return errorTag + e.Reason, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownEvent, e.Command)
}

// Decode parses an encoded event
func Decode(msg string) (Event, error) {
	switch {
	case strings.HasPrefix(msg, stateTag):
		body, hand, hasHand := strings.Cut(strings.TrimPrefix(msg, stateTag), "\n")

		var view GameView
		if err := json.Unmarshal([]byte(body), &view); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrUnknownEvent, err)
		}
		e := Event{Command: StateChanged, View: &view}

		if hasHand {
			if !strings.HasPrefix(hand, handTag) {
				return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, hand)
			}
			cards, err := decodeCards(strings.TrimPrefix(hand, handTag))
			if err != nil {
				return Event{}, err
			}
			e.Hand = cards
		}
		return e, nil

	case strings.HasPrefix(msg, gameWonTag):
		winner, err := strconv.Atoi(strings.TrimPrefix(msg, gameWonTag))
		if err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrUnknownEvent, err)
		}
		return NewGameWon(winner), nil

	case strings.HasPrefix(msg, errorTag):
		return Event{Command: Error, Reason: strings.TrimPrefix(msg, errorTag)}, nil
	}

	return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, msg)
}

func encodeCards(cards []deck.Card) string {
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.Code()
	}
	return strings.Join(codes, " ")
}

func decodeCards(s string) ([]deck.Card, error) {
	cards := []deck.Card{}
	for _, code := range strings.Fields(s) {
		c, err := deck.ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
