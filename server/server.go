package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minaorangina/kings/engine"
	"github.com/minaorangina/kings/game"
	"github.com/minaorangina/kings/store"
)

var ErrAuthRequired = errors.New("credential required")

const apiPrefix = "/api/v0"

type CreateGameRes struct {
	GameID string `json:"game_id"`
}

type JoinGameRes struct {
	GameID     string `json:"game_id"`
	Seat       int    `json:"seat"`
	Credential string `json:"credential"`
}

type ActionRes struct {
	Outcome    string `json:"outcome"`
	NextPlayer *int   `json:"next_player,omitempty"`
	Winner     *int   `json:"winner,omitempty"`
}

type ServerOpts struct {
	// AllowedOrigins is checked for CORS and websocket upgrades. Empty or
	// "*" allows any origin.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// GameServer is a game server
type GameServer struct {
	store    store.GameStore
	upgrader websocket.Upgrader
	handler  http.Handler
	log      *zap.Logger
}

// NewServer creates a new GameServer
func NewServer(str store.GameStore, opts ServerOpts) *GameServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &GameServer{
		store: str,
		log:   opts.Logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}

	router := http.NewServeMux()
	router.HandleFunc("POST "+apiPrefix+"/create", s.HandleCreateGame)
	router.HandleFunc("POST "+apiPrefix+"/game/join/{id}", s.HandleJoinGame)
	router.HandleFunc("POST "+apiPrefix+"/game/action/{id}", s.HandleAction)
	router.HandleFunc("GET "+apiPrefix+"/game/state/{id}", s.HandleGameState)
	router.HandleFunc("GET "+apiPrefix+"/game/stream/{id}", s.HandleStream)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Authorization"}),
	)
	access := zap.NewStdLog(opts.Logger.Named("http")).Writer()

	s.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{opts.Logger}),
	)(handlers.LoggingHandler(access, cors(router)))

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.handler.ServeHTTP(w, r)
}

// HandleCreateGame creates a game with ai_players bots
func (g *GameServer) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	aiPlayers := 0
	if raw := r.URL.Query().Get("ai_players"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			g.writeError(w, fmt.Errorf("%w: %q", store.ErrInvalidAIPlayerCount, raw))
			return
		}
		aiPlayers = n
	}

	gameID, err := g.store.Create(aiPlayers)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.writeJSON(w, http.StatusCreated, CreateGameRes{GameID: store.FormatID(gameID)})
}

// HandleJoinGame seats a human and hands back their credential
func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	ge, err := g.findGame(r)
	if err != nil {
		g.writeError(w, err)
		return
	}

	seat, credential, err := ge.JoinAsHuman()
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.writeJSON(w, http.StatusOK, JoinGameRes{
		GameID:     r.PathValue("id"),
		Seat:       seat,
		Credential: credential,
	})
}

// HandleAction submits one action for the authenticated seat
func (g *GameServer) HandleAction(w http.ResponseWriter, r *http.Request) {
	ge, err := g.findGame(r)
	if err != nil {
		g.writeError(w, err)
		return
	}

	credential, err := credentialFrom(r)
	if err != nil {
		g.writeError(w, err)
		return
	}
	if credential == "" {
		g.writeError(w, ErrAuthRequired)
		return
	}
	seat, err := ge.Authenticate(credential)
	if err != nil {
		g.writeError(w, err)
		return
	}

	action, err := game.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		g.writeError(w, err)
		return
	}

	outcome, err := ge.SubmitAction(seat, action)
	if err != nil {
		g.writeError(w, err)
		return
	}

	res := ActionRes{Outcome: outcome.Kind.String()}
	switch outcome.Kind {
	case game.NextPlayer:
		res.NextPlayer = &outcome.Player
	case game.GameWon:
		res.Winner = &outcome.Player
	}
	g.writeJSON(w, http.StatusOK, res)
}

// HandleGameState returns the public view of a game
func (g *GameServer) HandleGameState(w http.ResponseWriter, r *http.Request) {
	ge, err := g.findGame(r)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.writeJSON(w, http.StatusOK, ge.View())
}

// HandleStream upgrades to a websocket carrying the game's events. Without
// a credential the connection is a spectator.
func (g *GameServer) HandleStream(w http.ResponseWriter, r *http.Request) {
	ge, err := g.findGame(r)
	if err != nil {
		g.writeError(w, err)
		return
	}

	seat := spectator
	credential, err := credentialFrom(r)
	if err != nil {
		g.writeError(w, err)
		return
	}
	if credential != "" {
		seat, err = ge.Authenticate(credential)
		if err != nil {
			g.writeError(w, err)
			return
		}
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		g.log.Warn("could not upgrade to websocket", zap.Error(err))
		return
	}

	c := newStreamConn(conn, ge, seat, g.log.With(
		zap.String("game_id", r.PathValue("id")),
		zap.Int("seat", seat),
	))
	go c.writePump()
	c.readPump()
}

func (g *GameServer) findGame(r *http.Request) (*engine.GameEngine, error) {
	gameID, err := store.ParseID(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	return g.store.Find(gameID)
}

// credentialFrom reads a base64 credential from Basic auth or the auth
// query parameter. An empty credential means none was sent.
func credentialFrom(r *http.Request) (string, error) {
	encoded := r.URL.Query().Get("auth")
	if header := r.Header.Get("Authorization"); header != "" {
		var ok bool
		encoded, ok = strings.CutPrefix(header, "Basic ")
		if !ok {
			return "", fmt.Errorf("%w: expected basic auth", ErrAuthRequired)
		}
	}
	if encoded == "" {
		return "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return string(decoded), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrMalformedAction),
		errors.Is(err, store.ErrInvalidAIPlayerCount):
		return http.StatusBadRequest

	case errors.Is(err, ErrAuthRequired),
		errors.Is(err, engine.ErrUnknownCredential):
		return http.StatusUnauthorized

	case errors.Is(err, engine.ErrSeatsFull):
		return http.StatusForbidden

	case errors.Is(err, store.ErrUnknownGameID):
		return http.StatusNotFound

	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, engine.ErrNotStarted),
		errors.Is(err, engine.ErrClosed):
		return http.StatusConflict

	case errors.Is(err, game.ErrNoSuchPile),
		errors.Is(err, game.ErrCardNotInHand),
		errors.Is(err, game.ErrIllegalPlacement),
		errors.Is(err, game.ErrUnknownTarget),
		errors.Is(err, engine.ErrUnknownSeat):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func (g *GameServer) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		g.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func (g *GameServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		g.log.Error("could not marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

type recoveryLogger struct {
	log *zap.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("handler panicked", zap.String("panic", fmt.Sprint(v...)))
}
