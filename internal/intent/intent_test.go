package intent

import (
	"errors"
	"testing"
)

func TestLookupCategories(t *testing.T) {
	cases := []struct {
		name string
		cat  Category
	}{
		{"add_event", Mutation},
		{"add_events_by_range", Mutation},
		{"add_multiday_event", Mutation},
		{"delete_event", Mutation},
		{"delete_events_by_range", Mutation},
		{"edit_event", Mutation},
		{"get_today_events", Query},
		{"get_week_events", Query},
		{"search_events", Query},
		{"navigate", Navigation},
	}
	for _, tc := range cases {
		op, cat, ok := Lookup(tc.name)
		if !ok {
			t.Errorf("Lookup(%q): not found", tc.name)
			continue
		}
		if string(op) != tc.name || cat != tc.cat {
			t.Errorf("Lookup(%q) = %s, %s", tc.name, op, cat)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, _, ok := Lookup("reboot_server"); ok {
		t.Error("unknown name must not resolve")
	}
	if _, _, ok := Lookup(""); ok {
		t.Error("empty name must not resolve")
	}
}

func TestAddEventValidation(t *testing.T) {
	call := &Call{Op: OpAddEvent, Args: map[string]any{
		"title": "치과", "date": "2024-06-15", "start_time": "14:00",
	}}
	args, err := call.AddEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Title != "치과" || args.Date != "2024-06-15" || args.StartTime != "14:00" {
		t.Errorf("decoded wrong: %+v", args)
	}

	call = &Call{Op: OpAddEvent, Args: map[string]any{"date": "2024-06-15", "start_time": "14:00"}}
	_, err = call.AddEvent()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Errorf("expected validation error on title, got %v", err)
	}
}

func TestEditEventRequiresChanges(t *testing.T) {
	call := &Call{Op: OpEditEvent, Args: map[string]any{
		"title": "회의", "date": "2024-06-15", "changes": map[string]any{},
	}}
	_, err := call.EditEvent()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "changes" {
		t.Errorf("expected validation error on changes, got %v", err)
	}

	call.Args["changes"] = map[string]any{"start_time": "16:00"}
	args, err := call.EditEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Changes.StartTime != "16:00" {
		t.Errorf("changes decoded wrong: %+v", args.Changes)
	}
}

func TestDeleteEventsByRangeValidation(t *testing.T) {
	// Keyword is optional, the window is not
	call := &Call{Op: OpDeleteEventsByRange, Args: map[string]any{
		"date_from": "2024-06-01", "date_to": "2024-06-30",
	}}
	if _, err := call.DeleteEventsByRange(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	call.Args = map[string]any{"keyword": "회의", "date_from": "2024-06-01"}
	_, err := call.DeleteEventsByRange()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "date_to" {
		t.Errorf("expected validation error on date_to, got %v", err)
	}
}

func TestSearchEventsAllOptional(t *testing.T) {
	call := &Call{Op: OpSearchEvents, Args: map[string]any{}}
	if _, err := call.SearchEvents(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNavigateValidation(t *testing.T) {
	call := &Call{Op: OpNavigate, Args: map[string]any{}}
	_, err := call.Navigate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "destination" {
		t.Errorf("expected validation error on destination, got %v", err)
	}
}

func TestSummaryDatePriority(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"explicit date wins", map[string]any{
			"date":      "2024-06-15",
			"date_from": "2024-05-01",
			"changes":   map[string]any{"date": "2024-04-01"},
		}, "2024-06-15"},
		{"date_from next", map[string]any{
			"date_from": "2024-05-01",
			"changes":   map[string]any{"date": "2024-04-01"},
		}, "2024-05-01"},
		{"changes date last", map[string]any{
			"changes": map[string]any{"date": "2024-04-01"},
		}, "2024-04-01"},
		{"nothing present", map[string]any{"title": "회의"}, ""},
	}
	for _, tc := range cases {
		call := &Call{Args: tc.args}
		if got := call.SummaryDate(); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
