package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/service"
	"github.com/robalobadob/hilo/internal/store"
)

// firstValue makes every mystery number equal to the range minimum.
type firstValue struct{}

func (firstValue) IntN(int) int { return 0 }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	games := service.NewGameService(st, st, service.WithSource(firstValue{}))
	players := service.NewPlayerService(st)
	ts := httptest.NewServer(New(games, players, Options{ClientOrigin: "http://example.test"}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("%s %s: expected json content type, got %q", method, path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func createPlayer(t *testing.T, ts *httptest.Server, name string) service.PlayerView {
	t.Helper()
	var p service.PlayerView
	if code := do(t, ts, http.MethodPost, "/players", fmt.Sprintf(`{"name":%q}`, name), &p); code != http.StatusCreated {
		t.Fatalf("create player: expected 201, got %d", code)
	}
	return p
}

func createGame(t *testing.T, ts *httptest.Server, ids ...string) service.GameView {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"minValue": 1, "maxValue": 10, "playerIds": ids})
	var g service.GameView
	if code := do(t, ts, http.MethodPost, "/games", string(body), &g); code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d", code)
	}
	return g
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]bool
	if code := do(t, ts, http.MethodGet, "/health", "", &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("unexpected health %d %v", code, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/games", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Fatalf("unexpected origin %q", got)
	}
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)
	ada := createPlayer(t, ts, "ada")
	bo := createPlayer(t, ts, "bo")
	g := createGame(t, ts, ada.ID, bo.ID)

	if g.Round != 1 || g.Status != game.StatusOngoing || len(g.Players) != 2 {
		t.Fatalf("unexpected game %+v", g)
	}

	var out service.GuessOutcome
	path := "/games/" + g.ID + "/guesses"
	if code := do(t, ts, http.MethodPost, path, fmt.Sprintf(`{"playerId":%q,"guess":1}`, ada.ID), &out); code != http.StatusOK {
		t.Fatalf("guess: expected 200, got %d", code)
	}
	if out.Result != game.ResultWin || out.Status != game.StatusWaiting {
		t.Fatalf("unexpected outcome %+v", out)
	}

	var e errorBody
	if code := do(t, ts, http.MethodPost, path, fmt.Sprintf(`{"playerId":%q,"guess":2}`, ada.ID), &e); code != http.StatusConflict || e.Error != "ALREADY_GUESSED_THIS_ROUND" {
		t.Fatalf("expected 409 already guessed, got %d %+v", code, e)
	}

	if code := do(t, ts, http.MethodPost, path, fmt.Sprintf(`{"playerId":%q,"guess":5}`, bo.ID), &out); code != http.StatusOK {
		t.Fatalf("guess: expected 200, got %d", code)
	}
	if out.Result != game.ResultLo || out.Status != game.StatusFinished {
		t.Fatalf("unexpected outcome %+v", out)
	}

	if code := do(t, ts, http.MethodPost, path, fmt.Sprintf(`{"playerId":%q,"guess":1}`, bo.ID), &e); code != http.StatusConflict || e.Error != "GAME_FINISHED" {
		t.Fatalf("expected 409 finished, got %d %+v", code, e)
	}

	var restarted service.GameView
	if code := do(t, ts, http.MethodPost, "/games/"+g.ID+"/restart", "", &restarted); code != http.StatusCreated {
		t.Fatalf("restart: expected 201, got %d", code)
	}
	if restarted.ID == g.ID || restarted.Status != game.StatusOngoing {
		t.Fatalf("unexpected restarted game %+v", restarted)
	}

	var finished []service.GameView
	if code := do(t, ts, http.MethodGet, "/games?finished=true", "", &finished); code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if len(finished) != 1 || finished[0].ID != g.ID {
		t.Fatalf("unexpected finished games %+v", finished)
	}

	var board []service.PlayerView
	if code := do(t, ts, http.MethodGet, "/players/leaderboard?limit=1", "", &board); code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", code)
	}
	if len(board) != 1 || board[0].ID != ada.ID || board[0].Wins != 1 || board[0].GamesPlayed != 2 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestResponsesHideMysteryNumbers(t *testing.T) {
	ts := newTestServer(t)
	p := createPlayer(t, ts, "ada")
	g := createGame(t, ts, p.ID)

	res, err := http.Get(ts.URL + "/games/" + g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, _ := json.Marshal(raw)
	if strings.Contains(strings.ToLower(string(b)), "mystery") {
		t.Fatalf("response leaks mystery number: %s", b)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	p := createPlayer(t, ts, "ada")
	other := createPlayer(t, ts, "bo")
	g := createGame(t, ts, p.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"blank name", http.MethodPost, "/players", `{"name":"  "}`, http.StatusBadRequest, "INVALID_PLAYER_NAME"},
		{"bad json", http.MethodPost, "/players", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown player", http.MethodGet, "/players/ghost", "", http.StatusNotFound, "PLAYER_NOT_FOUND"},
		{"unknown game", http.MethodGet, "/games/nope", "", http.StatusNotFound, "GAME_NOT_FOUND"},
		{"bad range", http.MethodPost, "/games", `{"minValue":5,"maxValue":5,"playerIds":["x"]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"no players", http.MethodPost, "/games", `{"minValue":1,"maxValue":5,"playerIds":[]}`, http.StatusBadRequest, "NO_PLAYERS"},
		{"duplicate", http.MethodPost, "/games", fmt.Sprintf(`{"minValue":1,"maxValue":5,"playerIds":[%q,%q]}`, p.ID, p.ID), http.StatusBadRequest, "DUPLICATE_PLAYER"},
		{"game with unknown player", http.MethodPost, "/games", `{"minValue":1,"maxValue":5,"playerIds":["ghost"]}`, http.StatusNotFound, "PLAYER_NOT_FOUND"},
		{"not in game", http.MethodPost, "/games/" + g.ID + "/guesses", fmt.Sprintf(`{"playerId":%q,"guess":3}`, other.ID), http.StatusBadRequest, "PLAYER_NOT_IN_GAME"},
		{"out of range", http.MethodPost, "/games/" + g.ID + "/guesses", fmt.Sprintf(`{"playerId":%q,"guess":11}`, p.ID), http.StatusBadRequest, "GUESS_OUT_OF_RANGE"},
		{"missing guess", http.MethodPost, "/games/" + g.ID + "/guesses", fmt.Sprintf(`{"playerId":%q}`, p.ID), http.StatusBadRequest, "BAD_REQUEST"},
		{"restart unfinished", http.MethodPost, "/games/" + g.ID + "/restart", "", http.StatusConflict, "GAME_NOT_FINISHED"},
		{"bad finished filter", http.MethodGet, "/games?finished=maybe", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad limit", http.MethodGet, "/players/leaderboard?limit=0", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"no route", http.MethodGet, "/nowhere", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e errorBody
			code := do(t, ts, tc.method, tc.path, tc.body, &e)
			if code != tc.status || e.Error != tc.code {
				t.Fatalf("expected %d %s, got %d %+v", tc.status, tc.code, code, e)
			}
			if e.Message == "" {
				t.Fatal("expected a message")
			}
		})
	}
}

func TestClassifyHidesInternalErrors(t *testing.T) {
	status, body := classify(errors.New("pq: connection refused"))
	if status != http.StatusInternalServerError || body.Error != "INTERNAL" {
		t.Fatalf("unexpected classification %d %+v", status, body)
	}
	if strings.Contains(body.Message, "pq") {
		t.Fatalf("internal error text leaked: %q", body.Message)
	}

	status, body = classify(fmt.Errorf("update: %w", store.ErrConflict))
	if status != http.StatusConflict || body.Error != "CONFLICT" {
		t.Fatalf("unexpected conflict classification %d %+v", status, body)
	}
}
