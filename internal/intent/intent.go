// Package intent defines the closed vocabulary of operations the
// assistant understands and the typed arguments each one carries.
package intent

import (
	"encoding/json"
	"fmt"
)

// Category partitions operations by side-effect class
type Category int

const (
	Mutation Category = iota
	Query
	Navigation
)

func (c Category) String() string {
	switch c {
	case Mutation:
		return "mutation"
	case Query:
		return "query"
	case Navigation:
		return "navigation"
	}
	return "unknown"
}

// Operation is one of the supported function names
type Operation string

const (
	OpAddEvent            Operation = "add_event"
	OpAddEventsByRange    Operation = "add_events_by_range"
	OpAddMultidayEvent    Operation = "add_multiday_event"
	OpDeleteEvent         Operation = "delete_event"
	OpDeleteEventsByRange Operation = "delete_events_by_range"
	OpEditEvent           Operation = "edit_event"
	OpGetTodayEvents      Operation = "get_today_events"
	OpGetWeekEvents       Operation = "get_week_events"
	OpSearchEvents        Operation = "search_events"
	OpNavigate            Operation = "navigate"
)

// categories is the total mapping from operation to side-effect class.
// Every operation appears here exactly once; Lookup rejects anything else.
var categories = map[Operation]Category{
	OpAddEvent:            Mutation,
	OpAddEventsByRange:    Mutation,
	OpAddMultidayEvent:    Mutation,
	OpDeleteEvent:         Mutation,
	OpDeleteEventsByRange: Mutation,
	OpEditEvent:           Mutation,
	OpGetTodayEvents:      Query,
	OpGetWeekEvents:       Query,
	OpSearchEvents:        Query,
	OpNavigate:            Navigation,
}

// Lookup returns the category for a function name. ok is false for
// names outside the vocabulary; the caller treats those as plain text.
func Lookup(name string) (Operation, Category, bool) {
	op := Operation(name)
	cat, ok := categories[op]
	return op, cat, ok
}

// Operations returns all supported operation names
func Operations() []Operation {
	ops := make([]Operation, 0, len(categories))
	for op := range categories {
		ops = append(ops, op)
	}
	return ops
}

// Call is a structured function call produced by the language model.
// Immutable once received.
type Call struct {
	ID       string
	Op       Operation
	Category Category
	Args     map[string]any
}

// ValidationError reports a malformed or missing argument. It is shown
// to the user as a clarification request, never as a raw failure.
type ValidationError struct {
	Op    Operation
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid argument %q", e.Op, e.Field)
}

// Changes holds the partial update for edit_event
type Changes struct {
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether no field of the change set is populated
func (c Changes) Empty() bool {
	return c == Changes{}
}

// AddEventArgs are the arguments for add_event
type AddEventArgs struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// AddEventsByRangeArgs are the arguments for add_events_by_range
// (one event per day from DateFrom through DateTo inclusive)
type AddEventsByRangeArgs struct {
	Title     string `json:"title"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

// AddMultidayEventArgs are the arguments for add_multiday_event
// (a single all-day event spanning DateFrom..DateTo inclusive)
type AddMultidayEventArgs struct {
	Title       string `json:"title"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Description string `json:"description,omitempty"`
}

// DeleteEventArgs are the arguments for delete_event
type DeleteEventArgs struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
}

// DeleteEventsByRangeArgs are the arguments for delete_events_by_range
type DeleteEventsByRangeArgs struct {
	Keyword  string `json:"keyword,omitempty"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// EditEventArgs are the arguments for edit_event
type EditEventArgs struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time,omitempty"`
	Changes   Changes `json:"changes"`
}

// SearchEventsArgs are the arguments for search_events
type SearchEventsArgs struct {
	Keyword  string `json:"keyword,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// NavigateArgs are the arguments for navigate
type NavigateArgs struct {
	Destination string `json:"destination"`
}

// decode round-trips the raw argument map through JSON into a typed struct
func decode(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// AddEvent decodes and validates add_event arguments
func (c *Call) AddEvent() (AddEventArgs, error) {
	var a AddEventArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.Title == "":
		return a, &ValidationError{Op: c.Op, Field: "title"}
	case a.Date == "":
		return a, &ValidationError{Op: c.Op, Field: "date"}
	case a.StartTime == "":
		return a, &ValidationError{Op: c.Op, Field: "start_time"}
	}
	return a, nil
}

// AddEventsByRange decodes and validates add_events_by_range arguments
func (c *Call) AddEventsByRange() (AddEventsByRangeArgs, error) {
	var a AddEventsByRangeArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.Title == "":
		return a, &ValidationError{Op: c.Op, Field: "title"}
	case a.DateFrom == "":
		return a, &ValidationError{Op: c.Op, Field: "date_from"}
	case a.DateTo == "":
		return a, &ValidationError{Op: c.Op, Field: "date_to"}
	case a.StartTime == "":
		return a, &ValidationError{Op: c.Op, Field: "start_time"}
	}
	return a, nil
}

// AddMultidayEvent decodes and validates add_multiday_event arguments
func (c *Call) AddMultidayEvent() (AddMultidayEventArgs, error) {
	var a AddMultidayEventArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.Title == "":
		return a, &ValidationError{Op: c.Op, Field: "title"}
	case a.DateFrom == "":
		return a, &ValidationError{Op: c.Op, Field: "date_from"}
	case a.DateTo == "":
		return a, &ValidationError{Op: c.Op, Field: "date_to"}
	}
	return a, nil
}

// DeleteEvent decodes and validates delete_event arguments
func (c *Call) DeleteEvent() (DeleteEventArgs, error) {
	var a DeleteEventArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.Title == "":
		return a, &ValidationError{Op: c.Op, Field: "title"}
	case a.Date == "":
		return a, &ValidationError{Op: c.Op, Field: "date"}
	}
	return a, nil
}

// DeleteEventsByRange decodes and validates delete_events_by_range arguments
func (c *Call) DeleteEventsByRange() (DeleteEventsByRangeArgs, error) {
	var a DeleteEventsByRangeArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.DateFrom == "":
		return a, &ValidationError{Op: c.Op, Field: "date_from"}
	case a.DateTo == "":
		return a, &ValidationError{Op: c.Op, Field: "date_to"}
	}
	return a, nil
}

// EditEvent decodes and validates edit_event arguments
func (c *Call) EditEvent() (EditEventArgs, error) {
	var a EditEventArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	switch {
	case a.Title == "":
		return a, &ValidationError{Op: c.Op, Field: "title"}
	case a.Date == "":
		return a, &ValidationError{Op: c.Op, Field: "date"}
	case a.Changes.Empty():
		return a, &ValidationError{Op: c.Op, Field: "changes"}
	}
	return a, nil
}

// SearchEvents decodes search_events arguments (all optional)
func (c *Call) SearchEvents() (SearchEventsArgs, error) {
	var a SearchEventsArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	return a, nil
}

// Navigate decodes and validates navigate arguments
func (c *Call) Navigate() (NavigateArgs, error) {
	var a NavigateArgs
	if err := decode(c.Args, &a); err != nil {
		return a, err
	}
	if a.Destination == "" {
		return a, &ValidationError{Op: c.Op, Field: "destination"}
	}
	return a, nil
}

// SummaryDate extracts the date that scopes a post-mutation month
// summary: an explicit date, then date_from, then a nested changes.date,
// whichever is present first.
func (c *Call) SummaryDate() string {
	if d, ok := c.Args["date"].(string); ok && d != "" {
		return d
	}
	if d, ok := c.Args["date_from"].(string); ok && d != "" {
		return d
	}
	if changes, ok := c.Args["changes"].(map[string]any); ok {
		if d, ok := changes["date"].(string); ok && d != "" {
			return d
		}
	}
	return ""
}
