package tiebreak

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"

	"github.com/eldtechnologies/huddle/internal/models"
)

func opts(votes ...int) []models.Option {
	out := make([]models.Option, len(votes))
	for i, v := range votes {
		out[i] = models.Option{ID: uuid.Must(uuid.NewV7()), Votes: v}
	}
	return out
}

func seededRNG(a, b uint64) *rand.Rand {
	return rand.New(rand.NewPCG(a, b))
}

func TestTally(t *testing.T) {
	tests := []struct {
		name     string
		votes    []int
		want     Kind
		wantTied int
	}{
		{"clear winner", []int{3, 2, 1}, Winner, 0},
		{"two way tie", []int{3, 3, 1}, Tie, 2},
		{"three way tie", []int{2, 2, 2}, Tie, 3},
		{"no votes", []int{0, 0, 0}, NoVotes, 0},
		{"empty room", nil, NoVotes, 0},
		{"single option", []int{5}, Winner, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := opts(tt.votes...)
			got := Tally(options)
			if got.Kind != tt.want {
				t.Fatalf("Tally(%v).Kind = %v, want %v", tt.votes, got.Kind, tt.want)
			}
			if tt.want == Tie && len(got.Tied) != tt.wantTied {
				t.Errorf("tied set size = %d, want %d", len(got.Tied), tt.wantTied)
			}
		})
	}
}

func TestTallyWinnerIdentity(t *testing.T) {
	options := opts(1, 4, 2)
	got := Tally(options)
	if got.Kind != Winner || got.Winner.ID != options[1].ID {
		t.Fatalf("Tally picked %+v, want second option", got.Winner)
	}
}

func TestTallyTiePreservesOrder(t *testing.T) {
	options := opts(2, 1, 2, 2)
	got := Tally(options)
	if got.Kind != Tie {
		t.Fatalf("Kind = %v, want Tie", got.Kind)
	}
	want := []uuid.UUID{options[0].ID, options[2].ID, options[3].ID}
	for i, id := range want {
		if got.Tied[i].ID != id {
			t.Fatalf("tied[%d] = %s, want %s", i, got.Tied[i].ID, id)
		}
	}
}

func TestNewSessionRejectsNonTies(t *testing.T) {
	if _, err := NewSession(nil); !errors.Is(err, ErrNoTie) {
		t.Errorf("NewSession(nil): got %v, want ErrNoTie", err)
	}
	if _, err := NewSession(opts(3)); !errors.Is(err, ErrNoTie) {
		t.Errorf("NewSession(one option): got %v, want ErrNoTie", err)
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name    string
		k       int
		method  models.Tiebreaker
		wantErr error
	}{
		{"dice two way", 2, models.TiebreakerDice, nil},
		{"dice five way", 5, models.TiebreakerDice, nil},
		{"spinner three way", 3, models.TiebreakerSpinner, nil},
		{"coin two way", 2, models.TiebreakerCoin, nil},
		{"coin three way", 3, models.TiebreakerCoin, ErrCoinNeedsTwo},
		{"none is not a method", 2, models.TiebreakerNone, ErrBadMethod},
		{"garbage method", 2, models.Tiebreaker("dart"), ErrBadMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes := make([]int, tt.k)
			for i := range votes {
				votes[i] = 1
			}
			s, err := NewSession(opts(votes...))
			if err != nil {
				t.Fatalf("NewSession: %v", err)
			}
			err = s.Choose(tt.method)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Choose(%s) = %v, want %v", tt.method, err, tt.wantErr)
			}
			if tt.wantErr == nil && s.State() != Resolving {
				t.Errorf("state = %v, want Resolving", s.State())
			}
		})
	}
}

func TestResolveDice(t *testing.T) {
	tied := opts(1, 1, 1)
	s, err := NewSession(tied)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Choose(models.TiebreakerDice); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	res, err := s.Resolve(seededRNG(1, 2))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Draw.DiceFace < 1 || res.Draw.DiceFace > 6 {
		t.Fatalf("dice face = %d, want 1..6", res.Draw.DiceFace)
	}
	// The reported face must be the face that picked the winner
	if res.Winner.ID != tied[res.Draw.DiceFace%len(tied)].ID {
		t.Errorf("winner does not match face %d", res.Draw.DiceFace)
	}
}

func TestResolveSpinner(t *testing.T) {
	tied := opts(2, 2, 2, 2)
	s, err := NewSession(tied)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Choose(models.TiebreakerSpinner); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	res, err := s.Resolve(seededRNG(3, 4))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Draw.Segment < 0 || res.Draw.Segment >= len(tied) {
		t.Fatalf("segment = %d, want 0..%d", res.Draw.Segment, len(tied)-1)
	}
	if res.Winner.ID != tied[res.Draw.Segment].ID {
		t.Errorf("winner does not match segment %d", res.Draw.Segment)
	}
}

func TestResolveCoin(t *testing.T) {
	tied := opts(1, 1)
	s, err := NewSession(tied)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Choose(models.TiebreakerCoin); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	res, err := s.Resolve(seededRNG(5, 6))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	switch res.Draw.CoinFace {
	case "heads":
		if res.Winner.ID != tied[0].ID {
			t.Error("heads should pick the first tied option")
		}
	case "tails":
		if res.Winner.ID != tied[1].ID {
			t.Error("tails should pick the second tied option")
		}
	default:
		t.Fatalf("coin face = %q", res.Draw.CoinFace)
	}
}

func TestResolveDeterministicForSeed(t *testing.T) {
	tied := opts(1, 1, 1, 1, 1)
	run := func() Result {
		s, err := NewSession(tied)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		if err := s.Choose(models.TiebreakerSpinner); err != nil {
			t.Fatalf("Choose: %v", err)
		}
		res, err := s.Resolve(seededRNG(42, 42))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if a.Winner.ID != b.Winner.ID || a.Draw != b.Draw {
		t.Errorf("same seed gave different draws: %+v vs %+v", a.Draw, b.Draw)
	}
}

func TestSessionIsTerminal(t *testing.T) {
	s, err := NewSession(opts(1, 1))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// Resolve before choosing is out of order
	if _, err := s.Resolve(seededRNG(1, 1)); !errors.Is(err, ErrWrongState) {
		t.Errorf("Resolve before Choose: got %v, want ErrWrongState", err)
	}

	if err := s.Choose(models.TiebreakerCoin); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if err := s.Choose(models.TiebreakerDice); !errors.Is(err, ErrWrongState) {
		t.Errorf("second Choose: got %v, want ErrWrongState", err)
	}

	if _, err := s.Resolve(seededRNG(1, 1)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.State() != Resolved {
		t.Errorf("state = %v, want Resolved", s.State())
	}
	if _, err := s.Resolve(seededRNG(1, 1)); !errors.Is(err, ErrWrongState) {
		t.Errorf("second Resolve: got %v, want ErrWrongState", err)
	}
	if err := s.Choose(models.TiebreakerCoin); !errors.Is(err, ErrWrongState) {
		t.Errorf("Choose after Resolve: got %v, want ErrWrongState", err)
	}
}
