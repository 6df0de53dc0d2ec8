package engine

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/minaorangina/kings/bot"
	"github.com/minaorangina/kings/game"
	"github.com/minaorangina/kings/protocol"
)

var (
	ErrSeatsFull            = errors.New("all seats are taken")
	ErrInvalidAIPlayerCount = errors.New("number of AI players must be between 0 and 4")
	ErrUnknownCredential    = errors.New("unknown credential")
	ErrNotStarted           = errors.New("game has not started")
	ErrUnknownSeat          = errors.New("unknown seat")
	ErrClosed               = errors.New("game is closed")

	errStaleTurn = errors.New("turn is over")
)

// NumSeats is the number of seats a game waits for before starting
const NumSeats = 4

const defaultMoveInterval = time.Second

type GameEngineOpts struct {
	// AIPlayers fills the first seats with bots
	AIPlayers int
	// Strategy plays for the bots. Defaults to bot.Heuristic.
	Strategy bot.Strategy
	// Game configures the deal. The player count is always NumSeats.
	Game game.Options
	// MoveInterval paces bot moves. Defaults to one second.
	MoveInterval time.Duration
	// TurnTimeout discards a stalled human's hand. Zero disables it.
	TurnTimeout time.Duration
	// Backlog bounds each subscriber's queue
	Backlog int
	Logger  *zap.Logger
}

type seat struct {
	bot        bot.Strategy
	credential string
}

// GameEngine runs one game. Every access to the game goes through its lock,
// and every accepted action is broadcast to subscribers.
type GameEngine struct {
	mu        sync.Mutex
	state     *game.GameState
	seats     []seat
	started   bool
	closed    bool
	createdAt time.Time
	wonAt     time.Time

	// turn increments at every turn change so that bots and timers
	// scheduled for an earlier turn can tell they are stale
	turn      int
	turnTimer *time.Timer

	moveInterval time.Duration
	turnTimeout  time.Duration

	hub    *hub
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

// NewGameEngine deals a game and seats opts.AIPlayers bots. The game
// starts straight away when every seat is a bot.
func NewGameEngine(opts GameEngineOpts) (*GameEngine, error) {
	if opts.AIPlayers < 0 || opts.AIPlayers > NumSeats {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAIPlayerCount, opts.AIPlayers)
	}
	if opts.Strategy == nil {
		opts.Strategy = bot.Heuristic{}
	}
	if opts.MoveInterval <= 0 {
		opts.MoveInterval = defaultMoveInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	opts.Game.Players = NumSeats
	state, err := game.New(opts.Game)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &GameEngine{
		state:        state,
		createdAt:    time.Now(),
		moveInterval: opts.MoveInterval,
		turnTimeout:  opts.TurnTimeout,
		hub:          newHub(opts.Backlog),
		ctx:          ctx,
		cancel:       cancel,
		log:          opts.Logger,
	}

	for i := 0; i < opts.AIPlayers; i++ {
		e.seats = append(e.seats, seat{bot: opts.Strategy})
	}

	e.mu.Lock()
	e.startIfReady()
	e.mu.Unlock()

	return e, nil
}

// JoinAsHuman takes the next free seat and returns the credential that
// authenticates it.
func (e *GameEngine) JoinAsHuman() (int, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, "", ErrClosed
	}
	if len(e.seats) >= NumSeats {
		return 0, "", ErrSeatsFull
	}

	idx := len(e.seats)
	credential := newCredential(idx)
	e.seats = append(e.seats, seat{credential: credential})
	e.log.Info("human joined", zap.Int("seat", idx))

	e.startIfReady()

	return idx, credential, nil
}

// Authenticate maps a credential to its seat
func (e *GameEngine) Authenticate(credential string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.seats {
		if s.bot != nil {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(s.credential), []byte(credential)) == 1 {
			return i, nil
		}
	}
	return 0, ErrUnknownCredential
}

// SubmitAction applies action for the player at seat
func (e *GameEngine) SubmitAction(seat int, action game.Action) (game.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.apply(seat, action)
}

// Subscribe opens a live feed of the game. The feed starts with a snapshot
// and then carries every later event.
func (e *GameEngine) Subscribe() *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	initial := []protocol.Event{protocol.NewStateChanged(e.state)}
	if e.state.Won() {
		initial = append(initial, protocol.NewGameWon(e.state.Winner))
	}
	return e.hub.subscribe(initial...)
}

// Snapshot returns a copy of the game
func (e *GameEngine) Snapshot() *game.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.Clone()
}

// View returns the public part of the game
func (e *GameEngine) View() protocol.GameView {
	e.mu.Lock()
	defer e.mu.Unlock()

	return protocol.NewGameView(e.state)
}

func (e *GameEngine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.started
}

func (e *GameEngine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.Won()
}

// WonAt reports when the game was won
func (e *GameEngine) WonAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.wonAt, e.state.Won()
}

func (e *GameEngine) CreatedAt() time.Time {
	return e.createdAt
}

// Seated counts the occupied seats
func (e *GameEngine) Seated() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.seats)
}

// Close stops the bots and the turn timer and ends every subscription
func (e *GameEngine) Close() {
	e.cancel()

	e.mu.Lock()
	e.closed = true
	e.stopTimer()
	e.mu.Unlock()

	e.hub.close()
	e.wg.Wait()
}

// apply must be called with e.mu held
func (e *GameEngine) apply(seat int, action game.Action) (game.Outcome, error) {
	if e.closed {
		return game.Outcome{}, ErrClosed
	}
	if !e.started {
		return game.Outcome{}, ErrNotStarted
	}
	if seat < 0 || seat >= len(e.seats) {
		return game.Outcome{}, fmt.Errorf("%w: %d", ErrUnknownSeat, seat)
	}

	outcome, err := e.state.Apply(seat, action)
	if err != nil {
		return outcome, err
	}

	e.hub.publish(protocol.NewStateChanged(e.state))

	switch outcome.Kind {
	case game.GameWon:
		e.stopTimer()
		e.wonAt = time.Now()
		e.hub.publish(protocol.NewGameWon(outcome.Player))
		e.log.Info("game won", zap.Int("seat", outcome.Player))
	case game.NextPlayer:
		e.beginTurn()
	}

	return outcome, nil
}

// startIfReady must be called with e.mu held
func (e *GameEngine) startIfReady() {
	if e.started || len(e.seats) < NumSeats {
		return
	}

	e.started = true
	e.log.Info("game started")
	e.hub.publish(protocol.NewStateChanged(e.state))
	e.beginTurn()
}

// beginTurn schedules whoever is to play. It must be called with e.mu held.
func (e *GameEngine) beginTurn() {
	e.turn++
	e.stopTimer()
	if e.closed {
		return
	}

	current := e.state.CurrentPlayer()
	s := e.seats[current]

	if s.bot != nil {
		plan := s.bot.PlayTurn(e.state.Clone(), current)
		if len(plan) == 0 {
			plan = []game.Action{game.NewDiscard()}
		}
		e.wg.Add(1)
		go e.playPlan(e.turn, current, plan)
		return
	}

	if e.turnTimeout > 0 {
		turn := e.turn
		e.turnTimer = time.AfterFunc(e.turnTimeout, func() {
			e.expireTurn(turn, current)
		})
	}
}

// stopTimer must be called with e.mu held
func (e *GameEngine) stopTimer() {
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
}

// submitForTurn applies action only if turn is still being played
func (e *GameEngine) submitForTurn(turn, seat int, action game.Action) (game.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if turn != e.turn {
		return game.Outcome{}, errStaleTurn
	}
	return e.apply(seat, action)
}

// playPlan plays a bot's moves one per interval. A plan that turns out to
// be illegal is abandoned and the bot's hand discarded.
func (e *GameEngine) playPlan(turn, seat int, plan []game.Action) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.moveInterval)
	defer ticker.Stop()

	log := e.log.With(zap.Int("seat", seat), zap.Int("turn", turn))

	for _, action := range plan {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
		}

		outcome, err := e.submitForTurn(turn, seat, action)
		switch {
		case err == nil:
		case errors.Is(err, errStaleTurn), errors.Is(err, ErrClosed), errors.Is(err, game.ErrGameOver):
			return
		default:
			log.Error("bot move rejected", zap.Stringer("action", action), zap.Error(err))
			if _, err := e.submitForTurn(turn, seat, game.NewDiscard()); err != nil && !errors.Is(err, errStaleTurn) {
				log.Error("bot could not end its turn", zap.Error(err))
			}
			return
		}

		log.Debug("bot moved", zap.Stringer("action", action), zap.Stringer("outcome", outcome))
		if outcome.Kind != game.Nominal {
			return
		}
	}
}

func (e *GameEngine) expireTurn(turn, seat int) {
	_, err := e.submitForTurn(turn, seat, game.NewDiscard())
	if err == nil {
		e.log.Info("turn timed out", zap.Int("seat", seat))
		return
	}
	if !errors.Is(err, errStaleTurn) && !errors.Is(err, ErrClosed) {
		e.log.Error("could not expire turn", zap.Int("seat", seat), zap.Error(err))
	}
}

func newCredential(seat int) string {
	return fmt.Sprintf("%d:%s", seat, uuid.NewV4().String())
}
