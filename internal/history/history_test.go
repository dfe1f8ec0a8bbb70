package history

import (
	"fmt"
	"testing"
)

func TestAppendBelowCap(t *testing.T) {
	s := NewStore(100)

	s.Append(1, RoleUser, "안녕")
	s.Append(1, RoleAssistant, "무엇을 도와드릴까요?")

	turns := s.Get(1)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "안녕" {
		t.Errorf("first turn wrong: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("second turn wrong: %+v", turns[1])
	}
}

// The cap property: for N > cap appends the stored length is exactly
// cap and the turns are the most recent ones in original order
func TestCapEviction(t *testing.T) {
	s := NewStore(100)

	for i := 0; i < 250; i++ {
		s.Append(7, RoleUser, fmt.Sprintf("message %d", i))
	}

	turns := s.Get(7)
	if len(turns) != 100 {
		t.Fatalf("expected exactly 100 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		want := fmt.Sprintf("message %d", 150+i)
		if turn.Content != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, turn.Content)
		}
	}
}

func TestGetUnknownChatIsEmpty(t *testing.T) {
	s := NewStore(0)
	if turns := s.Get(42); len(turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(turns))
	}
}

func TestChatsAreIndependent(t *testing.T) {
	s := NewStore(100)
	s.Append(1, RoleUser, "one")
	s.Append(2, RoleUser, "two")

	if got := s.Get(1)[0].Content; got != "one" {
		t.Errorf("chat 1: got %q", got)
	}
	if got := s.Get(2)[0].Content; got != "two" {
		t.Errorf("chat 2: got %q", got)
	}
	if s.Len(1) != 1 || s.Len(2) != 1 {
		t.Errorf("expected independent lengths, got %d and %d", s.Len(1), s.Len(2))
	}
}

func TestAppendToolResult(t *testing.T) {
	s := NewStore(100)
	s.Append(1, RoleUser, "오늘 일정 뭐야?")
	s.AppendToolResult(1, "call-abc", "get_today_events", `{"ok":true}`)

	turns := s.Get(1)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	tr := turns[1]
	if tr.Role != RoleToolResult {
		t.Errorf("expected tool-result role, got %s", tr.Role)
	}
	if tr.ID != "call-abc" {
		t.Errorf("expected call ID preserved, got %q", tr.ID)
	}
	if tr.Name != "get_today_events" {
		t.Errorf("expected function name, got %q", tr.Name)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(100)
	s.Append(1, RoleUser, "original")

	turns := s.Get(1)
	turns[0].Content = "mutated"

	if got := s.Get(1)[0].Content; got != "original" {
		t.Errorf("stored history was mutated through a Get result: %q", got)
	}
}
