package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eldtechnologies/huddle/internal/models"
)

// voteKey identifies the single vote a user may hold in a room.
type voteKey struct {
	userID uuid.UUID
	roomID uuid.UUID
}

type session struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryStore is the in-process backend. All tables live behind one RWMutex;
// the mutation methods are the only write path, and every method returns
// copies so callers cannot reach into shared state.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*models.User
	usersByEmail map[string]uuid.UUID
	rooms        map[uuid.UUID]*models.Room
	roomsByCode  map[string]uuid.UUID
	roomIDs      []uuid.UUID // creation order, for stable listings
	options      map[uuid.UUID]*models.Option
	roomOptions  map[uuid.UUID][]uuid.UUID // roomID -> option IDs in creation order
	votes        map[voteKey]*models.Vote
	decisions    map[uuid.UUID]*models.Decision // keyed by roomID: one per room
	decisionIDs  []uuid.UUID                    // roomIDs in decision order
	sessions     map[string]session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]uuid.UUID),
		rooms:        make(map[uuid.UUID]*models.Room),
		roomsByCode:  make(map[string]uuid.UUID),
		options:      make(map[uuid.UUID]*models.Option),
		roomOptions:  make(map[uuid.UUID][]uuid.UUID),
		votes:        make(map[voteKey]*models.Vote),
		decisions:    make(map[uuid.UUID]*models.Decision),
		sessions:     make(map[string]session),
	}
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() {}

// Ping always succeeds for the memory backend.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// CreateUser registers a new user. Emails are unique.
func (s *MemoryStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.usersByEmail[email] = user.ID

	u := *user
	return &u, nil
}

// GetUserByID retrieves a user, or nil if unknown.
func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

// GetUserByEmail retrieves a user by email, or nil if unknown.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	u := *s.users[id]
	return &u, nil
}

// CreateSession issues a bearer token for the user.
func (s *MemoryStore) CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return "", ErrUnauthenticated
	}
	s.sessions[token] = session{userID: userID, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

// GetSession resolves a token to its user, or nil if the token is unknown
// or expired. Expired sessions are pruned lazily.
func (s *MemoryStore) GetSession(ctx context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}
	u := *s.users[sess.userID]
	return &u, nil
}

// DeleteSession revokes a token. Unknown tokens are a no-op.
func (s *MemoryStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// CreateRoom opens a new room with a fresh unique invite code. The caller
// becomes the creator and first participant.
func (s *MemoryStore) CreateRoom(ctx context.Context, callerID uuid.UUID, title, description string, maxParticipants int) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.uniqueCodeLocked()
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:              uuid.Must(uuid.NewV7()),
		Code:            code,
		Title:           title,
		Description:     description,
		CreatorID:       callerID,
		CreatedAt:       time.Now(),
		IsOpen:          true,
		MaxParticipants: maxParticipants,
		Participants:    []uuid.UUID{callerID},
	}
	s.rooms[room.ID] = room
	s.roomsByCode[code] = room.ID
	s.roomIDs = append(s.roomIDs, room.ID)

	return copyRoom(room), nil
}

// uniqueCodeLocked generates an invite code not used by any existing room,
// regenerating on collision. Caller must hold the write lock.
func (s *MemoryStore) uniqueCodeLocked() (string, error) {
	for {
		code, err := NewRoomCode()
		if err != nil {
			return "", err
		}
		if _, taken := s.roomsByCode[code]; !taken {
			return code, nil
		}
	}
}

// JoinRoom adds the caller to the room with the given invite code. Joining
// a room the caller already belongs to returns the room unchanged.
func (s *MemoryStore) JoinRoom(ctx context.Context, callerID uuid.UUID, code string) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.roomsByCode[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	room := s.rooms[roomID]

	if room.IsParticipant(callerID) {
		return copyRoom(room), nil
	}
	if room.MaxParticipants > 0 && len(room.Participants) >= room.MaxParticipants {
		return nil, ErrRoomFull
	}

	room.Participants = append(room.Participants, callerID)
	return copyRoom(room), nil
}

// ListRooms returns the rooms the caller participates in, oldest first.
func (s *MemoryStore) ListRooms(ctx context.Context, callerID uuid.UUID) ([]models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rooms []models.Room
	for _, id := range s.roomIDs {
		room := s.rooms[id]
		if room.IsParticipant(callerID) {
			rooms = append(rooms, *copyRoom(room))
		}
	}
	return rooms, nil
}

// GetRoom returns the room if the caller participates in it. Missing rooms
// and rooms the caller has not joined are indistinguishable.
func (s *MemoryStore) GetRoom(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.roomForLocked(callerID, roomID)
	if err != nil {
		return nil, err
	}
	return copyRoom(room), nil
}

// roomForLocked resolves a room the caller may see. Caller must hold a lock.
func (s *MemoryStore) roomForLocked(callerID, roomID uuid.UUID) (*models.Room, error) {
	room, ok := s.rooms[roomID]
	if !ok || !room.IsParticipant(callerID) {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// CloseVoting closes the room. Only the creator may close voting.
func (s *MemoryStore) CloseVoting(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomForLocked(callerID, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != callerID {
		return nil, ErrNotAuthorized
	}

	room.IsOpen = false
	return copyRoom(room), nil
}

// CreateOption appends an option to an open room. The open check lives here,
// not in the client: a closed room rejects options no matter who asks.
func (s *MemoryStore) CreateOption(ctx context.Context, callerID, roomID uuid.UUID, text string) (*models.Option, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomForLocked(callerID, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsOpen {
		return nil, ErrVotingClosed
	}

	option := &models.Option{
		ID:          uuid.Must(uuid.NewV7()),
		RoomID:      roomID,
		Text:        text,
		SubmittedBy: callerID,
		CreatedAt:   time.Now(),
		Votes:       0,
	}
	s.options[option.ID] = option
	s.roomOptions[roomID] = append(s.roomOptions[roomID], option.ID)

	o := *option
	return &o, nil
}

// ListOptions returns the room's options in submission order.
func (s *MemoryStore) ListOptions(ctx context.Context, callerID, roomID uuid.UUID) ([]models.Option, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.roomForLocked(callerID, roomID); err != nil {
		return nil, err
	}

	ids := s.roomOptions[roomID]
	options := make([]models.Option, 0, len(ids))
	for _, id := range ids {
		options = append(options, *s.options[id])
	}
	return options, nil
}

// CastVote records the caller's single vote in the room. A revote moves the
// existing vote: the old option's tally drops by one, the new option's rises
// by one, and the vote timestamp is refreshed. Both tallies change under the
// same lock, so repeated calls can never double count.
func (s *MemoryStore) CastVote(ctx context.Context, callerID, roomID, optionID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomForLocked(callerID, roomID)
	if err != nil {
		return err
	}
	if !room.IsOpen {
		return ErrVotingClosed
	}

	target, ok := s.options[optionID]
	if !ok || target.RoomID != roomID {
		return ErrInvalidState
	}

	key := voteKey{userID: callerID, roomID: roomID}
	if existing, voted := s.votes[key]; voted {
		if prev, ok := s.options[existing.OptionID]; ok {
			prev.Votes--
		}
		existing.OptionID = optionID
		existing.CreatedAt = time.Now()
	} else {
		s.votes[key] = &models.Vote{
			UserID:    callerID,
			OptionID:  optionID,
			RoomID:    roomID,
			CreatedAt: time.Now(),
		}
	}

	target.Votes++
	return nil
}

// HasVoted reports whether the caller has a vote in the room. A nil caller
// simply has not voted.
func (s *MemoryStore) HasVoted(ctx context.Context, callerID, roomID uuid.UUID) (bool, error) {
	if callerID == uuid.Nil {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, voted := s.votes[voteKey{userID: callerID, roomID: roomID}]
	return voted, nil
}

// CreateDecision records the room's terminal decision and closes the room.
// Only the creator may decide, the winning option must belong to the room,
// and a room decides at most once.
func (s *MemoryStore) CreateDecision(ctx context.Context, callerID, roomID, winningOptionID uuid.UUID, tiebreaker models.Tiebreaker) (*models.Decision, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if tiebreaker == "" {
		tiebreaker = models.TiebreakerNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomForLocked(callerID, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != callerID {
		return nil, ErrNotAuthorized
	}
	if _, decided := s.decisions[roomID]; decided {
		return nil, ErrInvalidState
	}
	winner, ok := s.options[winningOptionID]
	if !ok || winner.RoomID != roomID {
		return nil, ErrInvalidState
	}

	decision := &models.Decision{
		ID:              uuid.Must(uuid.NewV7()),
		RoomID:          roomID,
		WinningOptionID: winningOptionID,
		Tiebreaker:      tiebreaker,
		ResolvedAt:      time.Now(),
	}
	s.decisions[roomID] = decision
	s.decisionIDs = append(s.decisionIDs, roomID)

	// A decision is terminal: the room closes as part of recording it.
	room.IsOpen = false

	d := *decision
	return &d, nil
}

// ListDecisions returns the decisions of the caller's rooms, joined with
// room and winning option, oldest first.
func (s *MemoryStore) ListDecisions(ctx context.Context, callerID uuid.UUID) ([]models.DecisionView, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []models.DecisionView
	for _, roomID := range s.decisionIDs {
		room := s.rooms[roomID]
		if !room.IsParticipant(callerID) {
			continue
		}
		decision := s.decisions[roomID]
		views = append(views, models.DecisionView{
			Decision: *decision,
			Room:     *copyRoom(room),
			Option:   *s.options[decision.WinningOptionID],
		})
	}
	return views, nil
}

// CountUsers returns the number of registered users.
func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// CountRooms returns the number of rooms.
func (s *MemoryStore) CountRooms(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rooms)), nil
}

// CountVotes returns the number of vote records.
func (s *MemoryStore) CountVotes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.votes)), nil
}

// CountDecisions returns the number of decisions.
func (s *MemoryStore) CountDecisions(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.decisions)), nil
}

// copyRoom returns a copy whose participant slice is detached from the
// store's table.
func copyRoom(room *models.Room) *models.Room {
	r := *room
	r.Participants = make([]uuid.UUID, len(room.Participants))
	copy(r.Participants, room.Participants)
	return &r
}
