package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/huddle/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(zerolog.Nop(), RouterConfig{
		Store:      store.NewMemoryStore(),
		SessionTTL: time.Hour,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func register(t *testing.T, h http.Handler, name string) string {
	t.Helper()
	rec := doJSON(t, h, "POST", "/register", "", map[string]any{
		"name":     name,
		"email":    name + "@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", name, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("register returned no token")
	}
	return resp.Token
}

// TestTieLifecycle drives the whole flow over HTTP: two users, two options,
// a one-one tie, close, spinner tiebreak, terminal decision.
func TestTieLifecycle(t *testing.T) {
	h := newTestRouter(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	// Alice opens a room
	rec := doJSON(t, h, "POST", "/rooms", alice, map[string]any{"title": "dinner"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room: status %d, body %s", rec.Code, rec.Body.String())
	}
	var room struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	decode(t, rec, &room)

	// Bob joins by code
	rec = doJSON(t, h, "POST", "/rooms/join", bob, map[string]any{"code": room.Code})
	if rec.Code != http.StatusOK {
		t.Fatalf("join: status %d, body %s", rec.Code, rec.Body.String())
	}

	// Two options
	var sushi, pizza struct {
		ID string `json:"id"`
	}
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/options", alice, map[string]any{"text": "sushi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("option sushi: status %d", rec.Code)
	}
	decode(t, rec, &sushi)
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/options", bob, map[string]any{"text": "pizza"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("option pizza: status %d", rec.Code)
	}
	decode(t, rec, &pizza)

	// One vote each, a one-one tie
	for _, v := range []struct{ token, option string }{{alice, sushi.ID}, {bob, pizza.ID}} {
		rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/vote", v.token, map[string]any{"option_id": v.option})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("vote: status %d, body %s", rec.Code, rec.Body.String())
		}
	}

	// Ballot says voted, never for whom
	rec = doJSON(t, h, "GET", "/rooms/"+room.ID+"/ballot", alice, nil)
	var ballot struct {
		HasVoted bool `json:"has_voted"`
	}
	decode(t, rec, &ballot)
	if !ballot.HasVoted {
		t.Error("alice's ballot should read voted")
	}

	// Result classifies the tie
	rec = doJSON(t, h, "GET", "/rooms/"+room.ID+"/result", alice, nil)
	var result struct {
		Status string `json:"status"`
		Tied   []struct {
			ID string `json:"id"`
		} `json:"tied"`
	}
	decode(t, rec, &result)
	if result.Status != "tie" || len(result.Tied) != 2 {
		t.Fatalf("result = %+v, want a two way tie", result)
	}

	// Outright decide refuses a tie
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/decide", alice, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("decide on tie: status %d, want 409", rec.Code)
	}

	// Close voting, then spin for it
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/close", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close: status %d", rec.Code)
	}
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/tiebreak", alice, map[string]any{"method": "spinner"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("tiebreak: status %d, body %s", rec.Code, rec.Body.String())
	}
	var tb struct {
		Decision struct {
			Tiebreaker string `json:"tiebreaker"`
		} `json:"decision"`
		Winner struct {
			ID string `json:"id"`
		} `json:"winner"`
		Draw struct {
			Segment int `json:"segment"`
		} `json:"draw"`
	}
	decode(t, rec, &tb)
	if tb.Decision.Tiebreaker != "spinner" {
		t.Errorf("tiebreaker = %q, want spinner", tb.Decision.Tiebreaker)
	}
	if tb.Winner.ID != sushi.ID && tb.Winner.ID != pizza.ID {
		t.Errorf("winner %q is not one of the tied options", tb.Winner.ID)
	}

	// The room is settled: no more votes, no second decision
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/vote", bob, map[string]any{"option_id": sushi.ID})
	if rec.Code != http.StatusConflict {
		t.Errorf("vote after decision: status %d, want 409", rec.Code)
	}
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/tiebreak", alice, map[string]any{"method": "coin"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second tiebreak: status %d, want 409", rec.Code)
	}

	// Both participants see the decision
	rec = doJSON(t, h, "GET", "/decisions", bob, nil)
	var decisions struct {
		Decisions []struct {
			Option struct {
				ID string `json:"id"`
			} `json:"option"`
		} `json:"decisions"`
	}
	decode(t, rec, &decisions)
	if len(decisions.Decisions) != 1 || decisions.Decisions[0].Option.ID != tb.Winner.ID {
		t.Errorf("decisions = %+v, want the recorded winner", decisions.Decisions)
	}
}

func TestOutrightDecision(t *testing.T) {
	h := newTestRouter(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	rec := doJSON(t, h, "POST", "/rooms", alice, map[string]any{"title": "movie"})
	var room struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	decode(t, rec, &room)
	doJSON(t, h, "POST", "/rooms/join", bob, map[string]any{"code": room.Code})

	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/options", alice, map[string]any{"text": "dune"})
	var dune struct {
		ID string `json:"id"`
	}
	decode(t, rec, &dune)

	for _, token := range []string{alice, bob} {
		rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/vote", token, map[string]any{"option_id": dune.ID})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("vote: status %d", rec.Code)
		}
	}

	// Only the creator may decide
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/decide", bob, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-creator decide: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/decide", alice, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("decide: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Decision struct {
			Tiebreaker string `json:"tiebreaker"`
		} `json:"decision"`
		Winner struct {
			ID string `json:"id"`
		} `json:"winner"`
	}
	decode(t, rec, &resp)
	if resp.Decision.Tiebreaker != "none" || resp.Winner.ID != dune.ID {
		t.Errorf("decision = %+v, want dune with no tiebreaker", resp)
	}
}

func TestAuthAndVisibility(t *testing.T) {
	h := newTestRouter(t)
	alice := register(t, h, "alice")
	mallory := register(t, h, "mallory")

	rec := doJSON(t, h, "POST", "/rooms", alice, map[string]any{"title": "secret"})
	var room struct {
		ID string `json:"id"`
	}
	decode(t, rec, &room)

	// No token at all
	if rec := doJSON(t, h, "GET", "/rooms", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", rec.Code)
	}

	// Non-participants cannot tell the room exists
	if rec := doJSON(t, h, "GET", "/rooms/"+room.ID, mallory, nil); rec.Code != http.StatusNotFound {
		t.Errorf("outsider room fetch: status %d, want 404", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/rooms/not-a-uuid", alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("malformed room id: status %d, want 404", rec.Code)
	}

	// Logout revokes the token
	if rec := doJSON(t, h, "POST", "/logout", alice, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/me", alice, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: status %d, want 401", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")

	rec := doJSON(t, h, "POST", "/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" || resp.User.Email != "alice@example.com" {
		t.Errorf("login response = %+v", resp)
	}

	rec = doJSON(t, h, "POST", "/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/register", "", map[string]any{
		"name":     "impostor",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate registration: status %d, want 409", rec.Code)
	}
}

func TestPublicEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("stats: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("root: status %d", rec.Code)
	}
}

func TestCoinNeedsExactlyTwo(t *testing.T) {
	h := newTestRouter(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")
	carol := register(t, h, "carol")

	rec := doJSON(t, h, "POST", "/rooms", alice, map[string]any{"title": "lunch"})
	var room struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	decode(t, rec, &room)
	doJSON(t, h, "POST", "/rooms/join", bob, map[string]any{"code": room.Code})
	doJSON(t, h, "POST", "/rooms/join", carol, map[string]any{"code": room.Code})

	ids := make([]string, 3)
	for i, text := range []string{"ramen", "tacos", "salad"} {
		rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/options", alice, map[string]any{"text": text})
		var opt struct {
			ID string `json:"id"`
		}
		decode(t, rec, &opt)
		ids[i] = opt.ID
	}
	for i, token := range []string{alice, bob, carol} {
		rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/vote", token, map[string]any{"option_id": ids[i]})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("vote: status %d", rec.Code)
		}
	}

	// A three way tie cannot be settled by coin
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/tiebreak", alice, map[string]any{"method": "coin"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("coin on three way tie: status %d, want 409", rec.Code)
	}

	// Dice handles any tie size
	rec = doJSON(t, h, "POST", "/rooms/"+room.ID+"/tiebreak", alice, map[string]any{"method": "dice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("dice tiebreak: status %d, body %s", rec.Code, rec.Body.String())
	}
	var tb struct {
		Draw struct {
			DiceFace int `json:"dice_face"`
		} `json:"draw"`
		Winner struct {
			ID string `json:"id"`
		} `json:"winner"`
	}
	decode(t, rec, &tb)
	if tb.Draw.DiceFace < 1 || tb.Draw.DiceFace > 6 {
		t.Errorf("dice face = %d, want 1..6", tb.Draw.DiceFace)
	}
	if tb.Winner.ID != ids[tb.Draw.DiceFace%3] {
		t.Errorf("winner does not follow the reported face")
	}
}
