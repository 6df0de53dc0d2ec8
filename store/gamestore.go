package store

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/minaorangina/kings/engine"
)

var (
	ErrUnknownGameID        = errors.New("unknown game ID")
	ErrInvalidAIPlayerCount = engine.ErrInvalidAIPlayerCount
)

type GameStore interface {
	Create(aiPlayers int) (uint64, error)
	Find(gameID uint64) (*engine.GameEngine, error)
	Prune(maxAge time.Duration) int
	Len() int
	Close()
}

// InMemoryGameStore maps game id to game engine
type InMemoryGameStore struct {
	mu    sync.RWMutex
	games map[uint64]*engine.GameEngine

	engineOpts    engine.GameEngineOpts
	finishedGrace time.Duration
	newID         func() uint64
	log           *zap.Logger
}

const defaultFinishedGrace = time.Minute

type InMemoryGameStoreOpts struct {
	// Engine is the template for every new game. AIPlayers and Logger are
	// set per game.
	Engine engine.GameEngineOpts
	Logger *zap.Logger
	// FinishedGrace keeps a won game around so that its subscribers receive
	// the result. Defaults to one minute.
	FinishedGrace time.Duration
	// NewID generates game ids. Defaults to random ids.
	NewID func() uint64
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore(opts InMemoryGameStoreOpts) *InMemoryGameStore {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FinishedGrace <= 0 {
		opts.FinishedGrace = defaultFinishedGrace
	}
	if opts.NewID == nil {
		opts.NewID = rand.Uint64
	}

	return &InMemoryGameStore{
		games:         map[uint64]*engine.GameEngine{},
		engineOpts:    opts.Engine,
		finishedGrace: opts.FinishedGrace,
		newID:         opts.NewID,
		log:           opts.Logger,
	}
}

// Create starts a game with aiPlayers bots and returns its id
func (s *InMemoryGameStore) Create(aiPlayers int) (uint64, error) {
	if aiPlayers < 0 || aiPlayers > engine.NumSeats {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidAIPlayerCount, aiPlayers)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for _, exists := s.games[id]; exists; _, exists = s.games[id] {
		id = s.newID()
	}

	opts := s.engineOpts
	opts.AIPlayers = aiPlayers
	opts.Logger = s.log.With(zap.String("game_id", FormatID(id)))

	ge, err := engine.NewGameEngine(opts)
	if err != nil {
		return 0, err
	}
	s.games[id] = ge

	s.log.Info("game created", zap.String("game_id", FormatID(id)), zap.Int("ai_players", aiPlayers))
	return id, nil
}

func (s *InMemoryGameStore) Find(gameID uint64) (*engine.GameEngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ge, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameID, FormatID(gameID))
	}
	return ge, nil
}

// Prune closes and forgets games older than maxAge and games won more than
// the finished grace period ago
func (s *InMemoryGameStore) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	stale := map[uint64]*engine.GameEngine{}
	for id, ge := range s.games {
		wonAt, won := ge.WonAt()
		if time.Since(ge.CreatedAt()) > maxAge || (won && time.Since(wonAt) > s.finishedGrace) {
			stale[id] = ge
			delete(s.games, id)
		}
	}
	s.mu.Unlock()

	for id, ge := range stale {
		ge.Close()
		s.log.Info("game pruned", zap.String("game_id", FormatID(id)))
	}
	return len(stale)
}

func (s *InMemoryGameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.games)
}

// Close closes every game
func (s *InMemoryGameStore) Close() {
	s.mu.Lock()
	games := s.games
	s.games = map[uint64]*engine.GameEngine{}
	s.mu.Unlock()

	for _, ge := range games {
		ge.Close()
	}
}

// FormatID writes a game id as 16 hex digits
func FormatID(gameID uint64) string {
	return fmt.Sprintf("%016x", gameID)
}

// ParseID reads a game id written by FormatID
func ParseID(s string) (uint64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGameID, s)
	}
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGameID, s)
	}
	return id, nil
}
