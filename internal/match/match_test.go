package match

import (
	"errors"
	"testing"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
)

func event(id, title string, start time.Time) calendar.Event {
	return calendar.Event{ID: id, Summary: title, Start: start, End: start.Add(time.Hour)}
}

func TestResolveByTitle(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	candidates := []calendar.Event{
		event("a", "회의A", at),
		event("b", "회의B", at.Add(2*time.Hour)),
	}

	got, err := Resolve(Ref{Title: "회의A"}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("expected event a, got %s", got.ID)
	}
}

func TestResolveTitleIsCaseInsensitiveSubstring(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	candidates := []calendar.Event{
		event("a", "Team Standup", at),
		event("b", "점심 약속", at.Add(2*time.Hour)),
	}

	got, err := Resolve(Ref{Title: "standup"}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("expected event a, got %s", got.ID)
	}
}

func TestResolveByStartTime(t *testing.T) {
	ten := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	noon := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	candidates := []calendar.Event{
		event("a", "회의", ten),
		event("b", "회의", noon),
	}

	// Title matches both; the start time breaks the tie
	got, err := Resolve(Ref{Title: "회의", Start: &noon}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "b" {
		t.Errorf("expected event b, got %s", got.ID)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	candidates := []calendar.Event{
		event("a", "회의A", at),
		event("b", "회의B", at),
	}

	_, err := Resolve(Ref{}, candidates)
	if !errors.Is(err, ErrAmbiguousOrNotFound) {
		t.Errorf("expected ErrAmbiguousOrNotFound, got %v", err)
	}

	// "회의" matches both titles, still ambiguous
	_, err = Resolve(Ref{Title: "회의"}, candidates)
	if !errors.Is(err, ErrAmbiguousOrNotFound) {
		t.Errorf("expected ErrAmbiguousOrNotFound, got %v", err)
	}
}

// A single candidate wins even when the reference does not match it
func TestResolveSingleCandidateFallback(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	candidates := []calendar.Event{event("a", "회의A", at)}

	got, err := Resolve(Ref{Title: "무관한값"}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("expected the lone candidate, got %s", got.ID)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	_, err := Resolve(Ref{Title: "회의"}, nil)
	if !errors.Is(err, ErrAmbiguousOrNotFound) {
		t.Errorf("expected ErrAmbiguousOrNotFound, got %v", err)
	}
}
