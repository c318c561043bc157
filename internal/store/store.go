package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eldtechnologies/huddle/internal/models"
)

// Error taxonomy. Every store operation either returns its result or fails
// with exactly one of these kinds; failures leave prior state untouched.
var (
	// ErrUnauthenticated means no caller identity was supplied.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotAuthorized means the caller is not the room creator.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrRoomNotFound covers both unknown rooms and rooms the caller has not
	// joined. The two are deliberately merged so non-participants cannot
	// probe for room existence.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull means the participant cap was reached on join.
	ErrRoomFull = errors.New("room is full")
	// ErrVotingClosed means a mutation was attempted after the room closed.
	ErrVotingClosed = errors.New("voting is closed")
	// ErrInvalidState covers precondition violations: an option outside the
	// room, a second decision for a room, a tiebreak over a non-tie.
	ErrInvalidState = errors.New("invalid state")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials means the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DataStore defines the interface for storage of users, rooms, options,
// votes, decisions and sessions. MemoryStore is the authoritative backend;
// SQLiteStore implements the same contract for deployments that want the
// state to survive a restart.
//
// Every room operation takes the caller's user ID explicitly; there is no
// ambient "current user". uuid.Nil yields ErrUnauthenticated.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Session operations ("current caller identity" provider)
	CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	GetSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error

	// Room operations
	CreateRoom(ctx context.Context, callerID uuid.UUID, title, description string, maxParticipants int) (*models.Room, error)
	JoinRoom(ctx context.Context, callerID uuid.UUID, code string) (*models.Room, error)
	ListRooms(ctx context.Context, callerID uuid.UUID) ([]models.Room, error)
	GetRoom(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error)
	CloseVoting(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error)

	// Option and vote operations
	CreateOption(ctx context.Context, callerID, roomID uuid.UUID, text string) (*models.Option, error)
	ListOptions(ctx context.Context, callerID, roomID uuid.UUID) ([]models.Option, error)
	CastVote(ctx context.Context, callerID, roomID, optionID uuid.UUID) error
	HasVoted(ctx context.Context, callerID, roomID uuid.UUID) (bool, error)

	// Decision operations
	CreateDecision(ctx context.Context, callerID, roomID, winningOptionID uuid.UUID, tiebreaker models.Tiebreaker) (*models.Decision, error)
	ListDecisions(ctx context.Context, callerID uuid.UUID) ([]models.DecisionView, error)

	// Aggregates for the stats endpoint
	CountUsers(ctx context.Context) (int64, error)
	CountRooms(ctx context.Context) (int64, error)
	CountVotes(ctx context.Context) (int64, error)
	CountDecisions(ctx context.Context) (int64, error)
}
