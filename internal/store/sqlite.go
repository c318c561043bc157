package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eldtechnologies/huddle/internal/models"
)

// SQLiteStore implements DataStore over a local SQLite file for deployments
// that want rooms to survive a restart. Semantics match MemoryStore exactly.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
// If dbPath is empty, defaults to "./data/huddle.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/huddle.db"
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		code TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		creator_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL,
		is_open INTEGER NOT NULL DEFAULT 1,
		max_participants INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS room_participants (
		room_id TEXT NOT NULL REFERENCES rooms(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		joined_at DATETIME NOT NULL,
		PRIMARY KEY (room_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS options (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id),
		text TEXT NOT NULL,
		submitted_by TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL,
		votes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS votes (
		user_id TEXT NOT NULL REFERENCES users(id),
		room_id TEXT NOT NULL REFERENCES rooms(id),
		option_id TEXT NOT NULL REFERENCES options(id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, room_id)
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		room_id TEXT UNIQUE NOT NULL REFERENCES rooms(id),
		winning_option_id TEXT NOT NULL REFERENCES options(id),
		tiebreaker TEXT NOT NULL DEFAULT 'none',
		resolved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_code ON rooms(code);
	CREATE INDEX IF NOT EXISTS idx_participants_user ON room_participants(user_id);
	CREATE INDEX IF NOT EXISTS idx_options_room ON options(room_id);
	CREATE INDEX IF NOT EXISTS idx_votes_room ON votes(room_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser registers a new user. Emails are unique.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)
	`, email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user, or nil if unknown.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE id = ?
	`, id.String()))
}

// GetUserByEmail retrieves a user by email, or nil if unknown.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = ?
	`, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := row.Scan(&idStr, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CreateSession issues a bearer token for the user.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUnauthenticated
	}

	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`, token, userID.String(), time.Now().Add(ttl))
	if err != nil {
		return "", err
	}
	return token, nil
}

// GetSession resolves a token to its user, or nil if unknown or expired.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*models.User, error) {
	user := &models.User{}
	var idStr string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token).Scan(&idStr, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(expiresAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
		return nil, nil
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// DeleteSession revokes a token. Unknown tokens are a no-op.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// CreateRoom opens a new room with a fresh unique invite code.
func (s *SQLiteStore) CreateRoom(ctx context.Context, callerID uuid.UUID, title, description string, maxParticipants int) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var code string
	for {
		code, err = NewRoomCode()
		if err != nil {
			return nil, err
		}
		var taken bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM rooms WHERE code = ?)
		`, code).Scan(&taken); err != nil {
			return nil, err
		}
		if !taken {
			break
		}
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

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, code, title, description, creator_id, created_at, is_open, max_participants)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
	`, room.ID.String(), room.Code, room.Title, room.Description, room.CreatorID.String(), room.CreatedAt, room.MaxParticipants)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_participants (room_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, room.ID.String(), callerID.String(), room.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return room, nil
}

// JoinRoom adds the caller to the room with the given invite code.
func (s *SQLiteStore) JoinRoom(ctx context.Context, callerID uuid.UUID, code string) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	room, err := s.scanRoomRow(ctx, tx, `
		SELECT id, code, title, description, creator_id, created_at, is_open, max_participants
		FROM rooms WHERE code = ?
	`, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := s.loadParticipants(ctx, tx, room); err != nil {
		return nil, err
	}

	if room.IsParticipant(callerID) {
		return room, tx.Commit()
	}
	if room.MaxParticipants > 0 && len(room.Participants) >= room.MaxParticipants {
		return nil, ErrRoomFull
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_participants (room_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, room.ID.String(), callerID.String(), time.Now())
	if err != nil {
		return nil, err
	}
	room.Participants = append(room.Participants, callerID)

	return room, tx.Commit()
}

// ListRooms returns the rooms the caller participates in, oldest first.
func (s *SQLiteStore) ListRooms(ctx context.Context, callerID uuid.UUID) ([]models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.code, r.title, r.description, r.creator_id, r.created_at, r.is_open, r.max_participants
		FROM rooms r
		JOIN room_participants p ON p.room_id = r.id
		WHERE p.user_id = ?
		ORDER BY r.created_at
	`, callerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		if err := s.loadParticipants(ctx, s.db, &rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// GetRoom returns the room if the caller participates in it.
func (s *SQLiteStore) GetRoom(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.roomFor(ctx, s.db, callerID, roomID)
}

// CloseVoting closes the room. Only the creator may close voting.
func (s *SQLiteStore) CloseVoting(ctx context.Context, callerID, roomID uuid.UUID) (*models.Room, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	room, err := s.roomFor(ctx, tx, callerID, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != callerID {
		return nil, ErrNotAuthorized
	}

	_, err = tx.ExecContext(ctx, `UPDATE rooms SET is_open = 0 WHERE id = ?`, roomID.String())
	if err != nil {
		return nil, err
	}
	room.IsOpen = false

	return room, tx.Commit()
}

// CreateOption appends an option to an open room.
func (s *SQLiteStore) CreateOption(ctx context.Context, callerID, roomID uuid.UUID, text string) (*models.Option, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	room, err := s.roomFor(ctx, s.db, callerID, roomID)
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
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO options (id, room_id, text, submitted_by, created_at, votes)
		VALUES (?, ?, ?, ?, ?, 0)
	`, option.ID.String(), roomID.String(), option.Text, callerID.String(), option.CreatedAt)
	if err != nil {
		return nil, err
	}
	return option, nil
}

// ListOptions returns the room's options in submission order.
func (s *SQLiteStore) ListOptions(ctx context.Context, callerID, roomID uuid.UUID) ([]models.Option, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if _, err := s.roomFor(ctx, s.db, callerID, roomID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, text, submitted_by, created_at, votes
		FROM options WHERE room_id = ?
		ORDER BY created_at, id
	`, roomID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		var idStr, roomStr, byStr string
		if err := rows.Scan(&idStr, &roomStr, &opt.Text, &byStr, &opt.CreatedAt, &opt.Votes); err != nil {
			return nil, err
		}
		opt.ID = uuid.MustParse(idStr)
		opt.RoomID = uuid.MustParse(roomStr)
		opt.SubmittedBy = uuid.MustParse(byStr)
		options = append(options, opt)
	}
	return options, rows.Err()
}

// CastVote records or moves the caller's single vote in the room. The old
// tally decrement, the vote repoint and the new tally increment commit as
// one transaction.
func (s *SQLiteStore) CastVote(ctx context.Context, callerID, roomID, optionID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	room, err := s.roomFor(ctx, tx, callerID, roomID)
	if err != nil {
		return err
	}
	if !room.IsOpen {
		return ErrVotingClosed
	}

	var inRoom bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM options WHERE id = ? AND room_id = ?)
	`, optionID.String(), roomID.String()).Scan(&inRoom)
	if err != nil {
		return err
	}
	if !inRoom {
		return ErrInvalidState
	}

	var prevOptionID string
	err = tx.QueryRowContext(ctx, `
		SELECT option_id FROM votes WHERE user_id = ? AND room_id = ?
	`, callerID.String(), roomID.String()).Scan(&prevOptionID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO votes (user_id, room_id, option_id, created_at)
			VALUES (?, ?, ?, ?)
		`, callerID.String(), roomID.String(), optionID.String(), time.Now())
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE options SET votes = votes - 1 WHERE id = ?
		`, prevOptionID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE votes SET option_id = ?, created_at = ?
			WHERE user_id = ? AND room_id = ?
		`, optionID.String(), time.Now(), callerID.String(), roomID.String())
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE options SET votes = votes + 1 WHERE id = ?
	`, optionID.String())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// HasVoted reports whether the caller has a vote in the room.
func (s *SQLiteStore) HasVoted(ctx context.Context, callerID, roomID uuid.UUID) (bool, error) {
	if callerID == uuid.Nil {
		return false, nil
	}

	var voted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM votes WHERE user_id = ? AND room_id = ?)
	`, callerID.String(), roomID.String()).Scan(&voted)
	return voted, err
}

// CreateDecision records the room's terminal decision and closes the room.
func (s *SQLiteStore) CreateDecision(ctx context.Context, callerID, roomID, winningOptionID uuid.UUID, tiebreaker models.Tiebreaker) (*models.Decision, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if tiebreaker == "" {
		tiebreaker = models.TiebreakerNone
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	room, err := s.roomFor(ctx, tx, callerID, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != callerID {
		return nil, ErrNotAuthorized
	}

	var decided bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM decisions WHERE room_id = ?)
	`, roomID.String()).Scan(&decided)
	if err != nil {
		return nil, err
	}
	if decided {
		return nil, ErrInvalidState
	}

	var inRoom bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM options WHERE id = ? AND room_id = ?)
	`, winningOptionID.String(), roomID.String()).Scan(&inRoom)
	if err != nil {
		return nil, err
	}
	if !inRoom {
		return nil, ErrInvalidState
	}

	decision := &models.Decision{
		ID:              uuid.Must(uuid.NewV7()),
		RoomID:          roomID,
		WinningOptionID: winningOptionID,
		Tiebreaker:      tiebreaker,
		ResolvedAt:      time.Now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (id, room_id, winning_option_id, tiebreaker, resolved_at)
		VALUES (?, ?, ?, ?, ?)
	`, decision.ID.String(), roomID.String(), winningOptionID.String(), string(tiebreaker), decision.ResolvedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE rooms SET is_open = 0 WHERE id = ?`, roomID.String())
	if err != nil {
		return nil, err
	}

	return decision, tx.Commit()
}

// ListDecisions returns the decisions of the caller's rooms, joined with
// room and winning option, oldest first.
func (s *SQLiteStore) ListDecisions(ctx context.Context, callerID uuid.UUID) ([]models.DecisionView, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.room_id, d.winning_option_id, d.tiebreaker, d.resolved_at,
		       o.id, o.room_id, o.text, o.submitted_by, o.created_at, o.votes
		FROM decisions d
		JOIN room_participants p ON p.room_id = d.room_id AND p.user_id = ?
		JOIN options o ON o.id = d.winning_option_id
		ORDER BY d.resolved_at, d.id
	`, callerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.DecisionView
	for rows.Next() {
		var view models.DecisionView
		var dID, dRoom, dWin, dTB string
		var oID, oRoom, oBy string
		err := rows.Scan(
			&dID, &dRoom, &dWin, &dTB, &view.ResolvedAt,
			&oID, &oRoom, &view.Option.Text, &oBy, &view.Option.CreatedAt, &view.Option.Votes,
		)
		if err != nil {
			return nil, err
		}
		view.Decision.ID = uuid.MustParse(dID)
		view.Decision.RoomID = uuid.MustParse(dRoom)
		view.Decision.WinningOptionID = uuid.MustParse(dWin)
		view.Decision.Tiebreaker = models.Tiebreaker(dTB)
		view.Option.ID = uuid.MustParse(oID)
		view.Option.RoomID = uuid.MustParse(oRoom)
		view.Option.SubmittedBy = uuid.MustParse(oBy)
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range views {
		room, err := s.roomFor(ctx, s.db, callerID, views[i].Decision.RoomID)
		if err != nil {
			return nil, err
		}
		views[i].Room = *room
	}
	return views, nil
}

// CountUsers returns the number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountRooms returns the number of rooms.
func (s *SQLiteStore) CountRooms(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM rooms`)
}

// CountVotes returns the number of vote records.
func (s *SQLiteStore) CountVotes(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM votes`)
}

// CountDecisions returns the number of decisions.
func (s *SQLiteStore) CountDecisions(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM decisions`)
}

func (s *SQLiteStore) count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

// querier covers *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// roomFor loads a room the caller may see, with participants. Missing rooms
// and rooms the caller has not joined are indistinguishable.
func (s *SQLiteStore) roomFor(ctx context.Context, q querier, callerID, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.scanRoomRow(ctx, q, `
		SELECT id, code, title, description, creator_id, created_at, is_open, max_participants
		FROM rooms WHERE id = ?
	`, roomID.String())
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := s.loadParticipants(ctx, q, room); err != nil {
		return nil, err
	}
	if !room.IsParticipant(callerID) {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *SQLiteStore) scanRoomRow(ctx context.Context, q querier, query string, args ...any) (*models.Room, error) {
	room, err := scanRoom(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*models.Room, error) {
	room := &models.Room{}
	var idStr, creatorStr string
	var isOpen int
	err := row.Scan(&idStr, &room.Code, &room.Title, &room.Description,
		&creatorStr, &room.CreatedAt, &isOpen, &room.MaxParticipants)
	if err != nil {
		return nil, err
	}
	room.ID = uuid.MustParse(idStr)
	room.CreatorID = uuid.MustParse(creatorStr)
	room.IsOpen = isOpen == 1
	return room, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, q querier, room *models.Room) error {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM room_participants
		WHERE room_id = ?
		ORDER BY joined_at, user_id
	`, room.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	room.Participants = room.Participants[:0]
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return err
		}
		room.Participants = append(room.Participants, uuid.MustParse(idStr))
	}
	return rows.Err()
}
