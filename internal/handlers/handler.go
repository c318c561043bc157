package handlers

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	mathrand "math/rand/v2"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eldtechnologies/huddle/internal/store"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store      store.DataStore
	redis      *redis.Client // nil unless rate limiting is configured
	sessionTTL time.Duration

	// newRNG supplies the randomness for tiebreak draws. Tests swap in a
	// seeded source.
	newRNG func() *mathrand.Rand
}

// NewHandler creates a new Handler over the given store. rdb may be nil.
func NewHandler(s store.DataStore, rdb *redis.Client, sessionTTL time.Duration) *Handler {
	return &Handler{
		store:      s,
		redis:      rdb,
		sessionTTL: sessionTTL,
		newRNG:     cryptoSeededRNG,
	}
}

// cryptoSeededRNG returns a fresh PCG source seeded from the OS. One source
// per draw keeps the handlers free of shared mutable state.
func cryptoSeededRNG() *mathrand.Rand {
	var seed [16]byte
	_, _ = rand.Read(seed[:])
	return mathrand.New(mathrand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// StoreError maps the store's error kinds onto HTTP status codes.
func (h *Handler) StoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnauthenticated),
		errors.Is(err, store.ErrInvalidCredentials):
		h.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotAuthorized):
		h.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrRoomNotFound):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrRoomFull),
		errors.Is(err, store.ErrVotingClosed),
		errors.Is(err, store.ErrInvalidState),
		errors.Is(err, store.ErrEmailTaken):
		h.Error(w, http.StatusConflict, err.Error())
	default:
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// roomIDParam parses the {id} URL parameter. A malformed ID behaves like a
// room that does not exist.
func (h *Handler) roomIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusNotFound, store.ErrRoomNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

// sanitizeText trims and limits text to maxLen bytes, removing control
// characters.
func sanitizeText(text string, maxLen int) string {
	text = strings.TrimSpace(text)

	// Remove control characters
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	if len(text) > maxLen {
		text = text[:maxLen]
	}

	return text
}

// isValidEmail validates email addresses using RFC 5322 pattern.
func isValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}
