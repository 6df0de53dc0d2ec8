package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minaorangina/kings/game"
)

const retries = 3

const (
	helpText = `You are seat %d. Type one action per line:
  atck:<pile><suit>   attack with house pile 1-3, e.g. atck:1s
  actp:<pile><card>   play a card onto pile 1-3 or k, e.g. actp:kh7
  swap:<pile><pile>   swap two house piles, e.g. swap:12
  dscd:               discard your hand and end your turn
`
	promptText      = "\nYour move: "
	retryActionText = "That is not an action (%v). Try again.\n"
	rejectedText    = "You can't do that: %v\n"
	giveUpText      = "Too many tries, discarding your hand.\n"
)

type conn struct {
	In  io.Reader
	Out io.Writer
}

func sendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

type submitter interface {
	SubmitAction(seat int, action game.Action) (game.Outcome, error)
}

// terminalPlayer plays a seat from a terminal
type terminalPlayer struct {
	seat  int
	out   io.Writer
	lines chan string
}

func newTerminalPlayer(seat int, c conn) *terminalPlayer {
	p := &terminalPlayer{
		seat:  seat,
		out:   c.Out,
		lines: make(chan string),
	}
	go p.scan(c.In)

	sendText(p.out, helpText, seat)
	return p
}

func (p *terminalPlayer) scan(in io.Reader) {
	reader := bufio.NewScanner(in)
	for reader.Scan() {
		p.lines <- reader.Text()
	}
	close(p.lines)
}

// play asks for actions until one is accepted. After too many bad entries
// the hand is discarded.
func (p *terminalPlayer) play(ctx context.Context, g submitter) error {
	for retriesLeft := retries; retriesLeft > 0; retriesLeft-- {
		sendText(p.out, promptText)

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-p.lines:
			if !ok {
				return io.EOF
			}
			line = strings.TrimSpace(l)
		}

		action, err := game.ParseAction(line)
		if err != nil {
			sendText(p.out, retryActionText, err)
			continue
		}
		if _, err := g.SubmitAction(p.seat, action); err != nil {
			sendText(p.out, rejectedText, err)
			continue
		}
		return nil
	}

	sendText(p.out, giveUpText)
	_, err := g.SubmitAction(p.seat, game.NewDiscard())
	return err
}
