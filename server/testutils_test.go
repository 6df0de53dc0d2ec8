package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minaorangina/kings/bot"
	"github.com/minaorangina/kings/engine"
	utils "github.com/minaorangina/kings/internal"
	"github.com/minaorangina/kings/store"
)

const streamTestTimeout = 2 * time.Second

func newTestStore(t *testing.T) *store.InMemoryGameStore {
	t.Helper()

	str := store.NewInMemoryGameStore(store.InMemoryGameStoreOpts{
		Engine: engine.GameEngineOpts{Strategy: bot.Passive, MoveInterval: time.Millisecond},
	})
	t.Cleanup(str.Close)
	return str
}

func newCreateGameRequest(aiPlayers string) *http.Request {
	request, _ := http.NewRequest(http.MethodPost, apiPrefix+"/create?ai_players="+aiPlayers, nil)
	return request
}

func newJoinGameRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodPost, apiPrefix+"/game/join/"+gameID, nil)
	return request
}

func newGameStateRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodGet, apiPrefix+"/game/state/"+gameID, nil)
	return request
}

func newActionRequest(gameID, action, credential string) *http.Request {
	target := apiPrefix + "/game/action/" + gameID + "?action=" + url.QueryEscape(action)
	request, _ := http.NewRequest(http.MethodPost, target, nil)
	if credential != "" {
		request.Header.Set("Authorization", basicAuth(credential))
	}
	return request
}

func basicAuth(credential string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credential))
}

func serve(server http.Handler, request *http.Request) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	server.ServeHTTP(response, request)
	return response
}

func mustDecode(t *testing.T, body io.Reader, into interface{}) {
	t.Helper()

	err := json.NewDecoder(body).Decode(into)
	if err != nil {
		t.Fatalf("could not unmarshal json: %s", err.Error())
	}
}

func mustCreateGame(t *testing.T, server http.Handler, aiPlayers int) string {
	t.Helper()

	response := serve(server, newCreateGameRequest(fmt.Sprint(aiPlayers)))
	assertStatus(t, response.Code, http.StatusCreated)

	var got CreateGameRes
	mustDecode(t, response.Body, &got)
	return got.GameID
}

func mustJoinGame(t *testing.T, server http.Handler, gameID string) JoinGameRes {
	t.Helper()

	response := serve(server, newJoinGameRequest(gameID))
	assertStatus(t, response.Code, http.StatusOK)

	var got JoinGameRes
	mustDecode(t, response.Body, &got)
	return got
}

// mustStartGame creates a game of four humans and returns its id and the
// credentials by seat
func mustStartGame(t *testing.T, server http.Handler) (string, []string) {
	t.Helper()

	gameID := mustCreateGame(t, server, 0)
	credentials := []string{}
	for i := 0; i < engine.NumSeats; i++ {
		credentials = append(credentials, mustJoinGame(t, server, gameID).Credential)
	}
	return gameID, credentials
}

// ASSERTIONS

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("could not open a ws connection on %s, code %d: %v", url, status, err)
	}
	utils.AssertNotNil(t, ws)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func makeWSUrl(serverURL, gameID, credential string) string {
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + apiPrefix + "/game/stream/" + gameID
	if credential != "" {
		wsURL += "?auth=" + url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(credential)))
	}
	return wsURL
}

func mustReadMessage(t *testing.T, ws *websocket.Conn) string {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(streamTestTimeout))
	msgType, msg, err := ws.ReadMessage()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, msgType, websocket.TextMessage)
	return string(msg)
}
