package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eldtechnologies/huddle/internal/models"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "huddle.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// TestSQLiteFullFlow walks the whole lifecycle against the durable backend:
// register, create, join, submit, vote, revote, decide.
func TestSQLiteFullFlow(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStore(t)

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	room := mustRoom(t, s, alice.ID, "dinner")
	if !room.IsOpen || len(room.Participants) != 1 {
		t.Fatalf("fresh room = %+v", room)
	}

	joined, err := s.JoinRoom(ctx, bob.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if len(joined.Participants) != 2 {
		t.Fatalf("participants = %v, want 2", joined.Participants)
	}

	sushi := mustOption(t, s, alice.ID, room.ID, "sushi")
	pizza := mustOption(t, s, bob.ID, room.ID, "pizza")

	mustVote(t, s, alice.ID, room.ID, sushi.ID)
	mustVote(t, s, bob.ID, room.ID, sushi.ID)
	mustVote(t, s, bob.ID, room.ID, pizza.ID) // revote

	if got := tallyOf(t, s, alice.ID, room.ID, sushi.ID); got != 1 {
		t.Errorf("sushi tally = %d, want 1 after revote", got)
	}
	if got := tallyOf(t, s, alice.ID, room.ID, pizza.ID); got != 1 {
		t.Errorf("pizza tally = %d, want 1", got)
	}

	voted, err := s.HasVoted(ctx, bob.ID, room.ID)
	if err != nil || !voted {
		t.Errorf("HasVoted(bob) = (%v, %v), want (true, nil)", voted, err)
	}

	decision, err := s.CreateDecision(ctx, alice.ID, room.ID, sushi.ID, models.TiebreakerCoin)
	if err != nil {
		t.Fatalf("CreateDecision: %v", err)
	}
	if decision.Tiebreaker != models.TiebreakerCoin {
		t.Errorf("tiebreaker = %q, want coin", decision.Tiebreaker)
	}

	got, err := s.GetRoom(ctx, bob.ID, room.ID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if got.IsOpen {
		t.Error("room still open after decision")
	}
	if _, err := s.CreateDecision(ctx, alice.ID, room.ID, sushi.ID, models.TiebreakerNone); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second decision: got %v, want ErrInvalidState", err)
	}

	views, err := s.ListDecisions(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(views) != 1 || views[0].Option.ID != sushi.ID {
		t.Errorf("decisions = %+v, want one for sushi", views)
	}
}

func TestSQLiteAccessControl(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStore(t)

	alice := mustUser(t, s, "alice")
	mallory := mustUser(t, s, "mallory")
	room := mustRoom(t, s, alice.ID, "private")

	if _, err := s.GetRoom(ctx, mallory.ID, room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("outsider GetRoom: got %v, want ErrRoomNotFound", err)
	}
	if _, err := s.ListOptions(ctx, mallory.ID, room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("outsider ListOptions: got %v, want ErrRoomNotFound", err)
	}
	if _, err := s.CloseVoting(ctx, mallory.ID, room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("outsider CloseVoting: got %v, want ErrRoomNotFound", err)
	}
	if _, err := s.CreateRoom(ctx, uuid.Nil, "x", "", 0); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("nil caller CreateRoom: got %v, want ErrUnauthenticated", err)
	}
}

func TestSQLiteSessions(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStore(t)
	alice := mustUser(t, s, "alice")

	token, err := s.CreateSession(ctx, alice.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	user, err := s.GetSession(ctx, token)
	if err != nil || user == nil || user.ID != alice.ID {
		t.Fatalf("GetSession = (%v, %v), want alice", user, err)
	}

	expired, err := s.CreateSession(ctx, alice.ID, -time.Second)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	user, err = s.GetSession(ctx, expired)
	if err != nil || user != nil {
		t.Errorf("expired GetSession = (%v, %v), want (nil, nil)", user, err)
	}

	if err := s.DeleteSession(ctx, token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	user, err = s.GetSession(ctx, token)
	if err != nil || user != nil {
		t.Errorf("GetSession after delete = (%v, %v), want (nil, nil)", user, err)
	}
}

func TestSQLiteEmailTaken(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStore(t)
	if _, err := s.CreateUser(ctx, "alice", "alice@example.com", "x"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, "impostor", "alice@example.com", "y"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}
