package authstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)

	token := calendar.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	if err := s.Save(1, token); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Get(1)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.AccessToken != "access-1" || got.RefreshToken != "refresh-1" {
		t.Errorf("token = %+v", got)
	}

	if _, ok, _ := s.Get(2); ok {
		t.Error("unknown chat must have no token")
	}
}

func TestSaveReplaces(t *testing.T) {
	s := testStore(t)

	s.Save(1, calendar.Token{AccessToken: "old", Expiry: time.Now()})
	s.Save(1, calendar.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)})

	got, _, err := s.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("expected the replacement token, got %q", got.AccessToken)
	}
}

func TestAuthorized(t *testing.T) {
	s := testStore(t)

	if s.Authorized(1) {
		t.Error("chat 1 is not authorized yet")
	}
	s.Save(1, calendar.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)})
	if !s.Authorized(1) {
		t.Error("chat 1 should be authorized after save")
	}
}

func TestListAuthorized(t *testing.T) {
	s := testStore(t)

	s.Save(3, calendar.Token{AccessToken: "a", Expiry: time.Now()})
	s.Save(1, calendar.Token{AccessToken: "b", Expiry: time.Now()})

	chats, err := s.ListAuthorized()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 2 || chats[0] != 1 || chats[1] != 3 {
		t.Errorf("chats = %v", chats)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	s.Save(1, calendar.Token{AccessToken: "a", Expiry: time.Now()})
	if err := s.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Authorized(1) {
		t.Error("deleted chat must not stay authorized")
	}
}

func TestTokenSourceUsesValidToken(t *testing.T) {
	s := testStore(t)
	s.Save(1, calendar.Token{
		AccessToken: "valid-access",
		Expiry:      time.Now().Add(time.Hour),
	})

	ts := NewTokenSource(s, calendar.NewOAuth("id", "secret", "uri"))
	got, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "valid-access" {
		t.Errorf("token = %q", got)
	}
}

func TestTokenSourceEmpty(t *testing.T) {
	s := testStore(t)

	ts := NewTokenSource(s, calendar.NewOAuth("id", "secret", "uri"))
	_, err := ts.Token(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}
