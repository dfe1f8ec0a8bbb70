// Package history keeps per-chat conversation context for the language
// model. Histories are bounded, in-memory only, and lost on restart.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCap is the maximum number of turns kept per chat
const DefaultCap = 100

// Role identifies who produced a turn
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool"
)

// Turn is one entry in a chat's conversation history
type Turn struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Name    string    `json:"name,omitempty"` // function name for tool results
	At      time.Time `json:"at"`
}

// Store holds bounded per-chat histories. Appends to the same chat are
// serialized; different chats never interact.
type Store struct {
	mu        sync.Mutex
	cap       int
	histories map[int64][]Turn
}

// NewStore creates a history store with the given per-chat cap.
// A cap <= 0 falls back to DefaultCap.
func NewStore(cap int) *Store {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Store{
		cap:       cap,
		histories: make(map[int64][]Turn),
	}
}

// Append adds a turn to the chat's history, evicting oldest turns when
// the cap is exceeded
func (s *Store) Append(chatID int64, role Role, content string) Turn {
	return s.append(chatID, Turn{Role: role, Content: content})
}

// AppendToolResult adds a tool-result turn associated with the given
// function call
func (s *Store) AppendToolResult(chatID int64, callID, name, result string) Turn {
	return s.append(chatID, Turn{ID: callID, Role: RoleToolResult, Content: result, Name: name})
}

func (s *Store) append(chatID int64, t Turn) Turn {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.histories[chatID], t)
	if len(turns) > s.cap {
		turns = turns[len(turns)-s.cap:]
	}
	s.histories[chatID] = turns
	return t
}

// Get returns a copy of the chat's history, oldest first. A chat with
// no history yields an empty slice.
func (s *Store) Get(chatID int64) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.histories[chatID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of stored turns for a chat
func (s *Store) Len(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.histories[chatID])
}

// Clear drops a chat's history
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, chatID)
}
