package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/dates"
	"github.com/jinbless/moelclaw/internal/history"
	"github.com/jinbless/moelclaw/internal/intent"
	"github.com/jinbless/moelclaw/internal/logging"
)

// defaultSearchWindow bounds an open-ended search when the intent gives
// no date range
const defaultSearchWindow = 30 * 24 * time.Hour

// executeQuery fetches the relevant event window, records it as a
// tool-result turn, and runs the second, tool-free model pass to turn
// the raw data into a conversational answer
func (e *Engine) executeQuery(ctx context.Context, chatID int64, call *intent.Call) error {
	events, keyword, err := e.fetchQueryWindow(ctx, call)
	if err != nil {
		return e.failCall(chatID, call, err)
	}

	payload, err := queryPayload(events, keyword)
	if err != nil {
		return e.failCall(chatID, call, err)
	}
	e.hist.AppendToolResult(chatID, call.ID, string(call.Op), payload)

	answer, err := e.llm.Summarize(ctx, e.hist.Get(chatID))
	if err != nil {
		logging.Error("engine", "summarize for chat %d: %v", chatID, err)
		return e.transport.SendText(chatID, msgTransientError)
	}

	e.hist.Append(chatID, history.RoleAssistant, answer)
	return e.transport.SendText(chatID, answer)
}

// fetchQueryWindow lists the events a query operation covers. The
// user's free-text keyword is never passed to the backend filter here:
// backend keyword matching under-matches Korean substrings, so search
// filtering is deferred to the summarization pass.
func (e *Engine) fetchQueryWindow(ctx context.Context, call *intent.Call) ([]calendar.Event, string, error) {
	now := e.now().In(e.loc)

	switch call.Op {
	case intent.OpGetTodayEvents:
		start, end := dates.DayBounds(now)
		events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
		return events, "", err

	case intent.OpGetWeekEvents:
		start, end := dates.WeekBounds(now)
		events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
		return events, "", err

	case intent.OpSearchEvents:
		args, err := call.SearchEvents()
		if err != nil {
			return nil, "", err
		}

		start, _ := dates.DayBounds(now)
		if args.DateFrom != "" {
			start, err = dates.Parse(args.DateFrom, e.loc)
			if err != nil {
				return nil, "", err
			}
		}
		end := start.Add(defaultSearchWindow)
		if args.DateTo != "" {
			to, err := dates.Parse(args.DateTo, e.loc)
			if err != nil {
				return nil, "", err
			}
			end = dates.ExclusiveEnd(to)
		}

		events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
		return events, args.Keyword, err
	}

	return nil, "", fmt.Errorf("unhandled query %s", call.Op)
}

// queryEvent is the tool-result shape for one event
type queryEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Start       string `json:"start,omitempty"` // HH:MM, omitted for all-day
	End         string `json:"end,omitempty"`
	AllDay      bool   `json:"all_day,omitempty"`
	LastDay     string `json:"last_day,omitempty"` // inclusive, for multi-day spans
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// queryPayload renders raw event data for the tool-result turn
func queryPayload(events []calendar.Event, keyword string) (string, error) {
	out := struct {
		Keyword string       `json:"keyword,omitempty"`
		Count   int          `json:"count"`
		Events  []queryEvent `json:"events"`
	}{
		Keyword: keyword,
		Count:   len(events),
		Events:  make([]queryEvent, 0, len(events)),
	}

	for _, e := range events {
		qe := queryEvent{
			Title:       e.Summary,
			Date:        e.Start.Format(dates.DateLayout),
			AllDay:      e.AllDay,
			Location:    e.Location,
			Description: e.Description,
		}
		if e.AllDay {
			if last := dates.InclusiveEnd(e.End); last.After(e.Start) {
				qe.LastDay = last.Format(dates.DateLayout)
			}
		} else {
			qe.Start = e.Start.Format(dates.TimeLayout)
			qe.End = e.End.Format(dates.TimeLayout)
		}
		out.Events = append(out.Events, qe)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal query payload: %w", err)
	}
	return string(data), nil
}
