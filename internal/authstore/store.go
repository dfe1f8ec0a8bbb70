// Package authstore persists per-chat Google OAuth tokens. It backs the
// /auth command, supplies access tokens for shared-calendar requests,
// and provides the recipient list for the daily report.
package authstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/logging"
)

// ErrNoCredentials means no chat has a usable token yet
var ErrNoCredentials = errors.New("no stored credentials")

// Store wraps the SQLite database holding chat tokens
type Store struct {
	db *sql.DB
}

// Open opens or creates the token database
func Open(statePath string) (*Store, error) {
	dbPath := filepath.Join(statePath, "tokens.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open token database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping token database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			chat_id       INTEGER PRIMARY KEY,
			access_token  TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			expiry        TIMESTAMP NOT NULL,
			updated_at    TIMESTAMP NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tokens table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores or replaces a chat's token
func (s *Store) Save(chatID int64, token calendar.Token) error {
	_, err := s.db.Exec(`
		INSERT INTO tokens (chat_id, access_token, refresh_token, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`,
		chatID, token.AccessToken, token.RefreshToken, token.Expiry, time.Now())
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Get returns a chat's stored token
func (s *Store) Get(chatID int64) (calendar.Token, bool, error) {
	var token calendar.Token
	err := s.db.QueryRow(`
		SELECT access_token, refresh_token, expiry FROM tokens WHERE chat_id = ?`,
		chatID).Scan(&token.AccessToken, &token.RefreshToken, &token.Expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.Token{}, false, nil
	}
	if err != nil {
		return calendar.Token{}, false, fmt.Errorf("load token: %w", err)
	}
	return token, true, nil
}

// Authorized reports whether a chat has completed the auth flow
func (s *Store) Authorized(chatID int64) bool {
	_, ok, err := s.Get(chatID)
	if err != nil {
		logging.Error("authstore", "lookup for chat %d: %v", chatID, err)
		return false
	}
	return ok
}

// ListAuthorized returns every chat with stored credentials
func (s *Store) ListAuthorized() ([]int64, error) {
	rows, err := s.db.Query(`SELECT chat_id FROM tokens ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		chats = append(chats, id)
	}
	return chats, rows.Err()
}

// Delete removes a chat's credentials
func (s *Store) Delete(chatID int64) error {
	_, err := s.db.Exec(`DELETE FROM tokens WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// TokenSource yields a usable access token for shared-calendar requests,
// refreshing stored tokens through oauth as they expire. Any chat's
// grant works: the calendar is shared.
type TokenSource struct {
	store *Store
	oauth *calendar.OAuth
}

// NewTokenSource creates a token source over the store
func NewTokenSource(store *Store, oauth *calendar.OAuth) *TokenSource {
	return &TokenSource{store: store, oauth: oauth}
}

// Token implements calendar.TokenSource
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	rows, err := ts.store.db.Query(`
		SELECT chat_id, access_token, refresh_token, expiry FROM tokens ORDER BY updated_at DESC`)
	if err != nil {
		return "", fmt.Errorf("load tokens: %w", err)
	}

	type row struct {
		chatID int64
		token  calendar.Token
	}
	var candidates []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.chatID, &r.token.AccessToken, &r.token.RefreshToken, &r.token.Expiry); err != nil {
			rows.Close()
			return "", fmt.Errorf("scan token: %w", err)
		}
		candidates = append(candidates, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate tokens: %w", err)
	}

	for _, r := range candidates {
		if r.token.Valid() {
			return r.token.AccessToken, nil
		}
		if r.token.RefreshToken == "" {
			continue
		}
		refreshed, err := ts.oauth.Refresh(ctx, r.token.RefreshToken)
		if err != nil {
			logging.Error("authstore", "refresh for chat %d: %v", r.chatID, err)
			continue
		}
		if err := ts.store.Save(r.chatID, refreshed); err != nil {
			logging.Error("authstore", "persist refreshed token for chat %d: %v", r.chatID, err)
		}
		return refreshed.AccessToken, nil
	}

	return "", ErrNoCredentials
}
