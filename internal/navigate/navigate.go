// Package navigate holds the single-use pending state between a
// navigation request and the user's location share.
package navigate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jinbless/moelclaw/internal/naver"
)

// Pending is one awaiting-location entry. At most one exists per chat;
// a newer navigation request replaces it.
type Pending struct {
	ID          string
	Destination string      // resolved address text
	Point       naver.Point // destination coordinates
	PromptMsgID int         // the location-request prompt, removed after use
	CreatedAt   time.Time
}

// Store is the in-memory pending-navigation map, keyed by chat.
// Entries live until consumed or process restart; no expiry is modeled.
type Store struct {
	mu      sync.Mutex
	pending map[int64]Pending
}

// NewStore creates an empty pending store
func NewStore() *Store {
	return &Store{pending: make(map[int64]Pending)}
}

// Set records a pending entry for the chat, replacing any previous one
func (s *Store) Set(chatID int64, destination string, point naver.Point, promptMsgID int) Pending {
	p := Pending{
		ID:          uuid.NewString(),
		Destination: destination,
		Point:       point,
		PromptMsgID: promptMsgID,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.pending[chatID] = p
	s.mu.Unlock()
	return p
}

// Pop atomically reads and deletes the chat's pending entry. ok is
// false when nothing was pending; a second Pop for the same request is
// a no-op.
func (s *Store) Pop(chatID int64) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return p, ok
}

// Peek returns the chat's pending entry without consuming it
func (s *Store) Peek(chatID int64) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[chatID]
	return p, ok
}
