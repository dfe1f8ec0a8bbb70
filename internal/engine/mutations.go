package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/dates"
	"github.com/jinbless/moelclaw/internal/intent"
	"github.com/jinbless/moelclaw/internal/logging"
	"github.com/jinbless/moelclaw/internal/match"
	"github.com/jinbless/moelclaw/internal/summary"
)

// defaultEventLength is used when the intent omits an end time
const defaultEventLength = time.Hour

// executeMutation dispatches a mutation call, reports the outcome, and
// on success follows up with the affected month's summary view
func (e *Engine) executeMutation(ctx context.Context, chatID int64, call *intent.Call) error {
	var confirmation string
	var err error

	switch call.Op {
	case intent.OpAddEvent:
		confirmation, err = e.addEvent(ctx, call)
	case intent.OpAddEventsByRange:
		confirmation, err = e.addEventsByRange(ctx, call)
	case intent.OpAddMultidayEvent:
		confirmation, err = e.addMultidayEvent(ctx, call)
	case intent.OpDeleteEvent:
		confirmation, err = e.deleteEvent(ctx, call)
	case intent.OpDeleteEventsByRange:
		confirmation, err = e.deleteEventsByRange(ctx, call)
	case intent.OpEditEvent:
		confirmation, err = e.editEvent(ctx, call)
	default:
		err = fmt.Errorf("unhandled mutation %s", call.Op)
	}

	if err != nil {
		return e.failCall(chatID, call, err)
	}

	e.recordResult(chatID, call, true, confirmation)
	if err := e.transport.SendText(chatID, confirmation); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	e.sendMonthSummary(ctx, chatID, call)
	return nil
}

// sendMonthSummary fetches and sends the month view for the mutated
// date. The mutation already succeeded, so a failure here is only
// logged.
func (e *Engine) sendMonthSummary(ctx context.Context, chatID int64, call *intent.Call) {
	dateStr := call.SummaryDate()
	if dateStr == "" {
		return
	}
	date, err := dates.Parse(dateStr, e.loc)
	if err != nil {
		logging.Error("engine", "month summary date %q: %v", dateStr, err)
		return
	}

	start, end := dates.MonthBounds(date)
	events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
	if err != nil {
		logging.Error("engine", "month summary fetch: %v", err)
		return
	}

	text := summary.Month(date.Year(), date.Month(), events)
	if err := e.transport.SendText(chatID, text); err != nil {
		logging.Error("engine", "send month summary: %v", err)
	}
}

// eventTimes builds the start/end for a timed event from intent fields
func (e *Engine) eventTimes(dateStr, startStr, endStr string) (start, end time.Time, err error) {
	date, err := dates.Parse(dateStr, e.loc)
	if err != nil {
		return start, end, err
	}
	h, m, err := dates.ParseTime(startStr)
	if err != nil {
		return start, end, err
	}
	start = dates.At(date, h, m)

	if endStr == "" {
		return start, start.Add(defaultEventLength), nil
	}
	eh, em, err := dates.ParseTime(endStr)
	if err != nil {
		return start, end, err
	}
	end = dates.At(date, eh, em)
	if !end.After(start) {
		// Past-midnight end times roll into the next day
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func (e *Engine) addEvent(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.AddEvent()
	if err != nil {
		return "", err
	}

	start, end, err := e.eventTimes(args.Date, args.StartTime, args.EndTime)
	if err != nil {
		return "", err
	}

	_, err = e.cal.CreateEvent(ctx, calendar.EventDraft{
		Summary:     args.Title,
		Description: args.Description,
		Location:    args.Location,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}

	timeStr := args.StartTime
	if args.EndTime != "" {
		timeStr += " - " + args.EndTime
	}
	lines := []string{
		"✅ 일정이 추가되었습니다!",
		"",
		"📅 " + args.Date,
		"🕐 " + timeStr,
		"📝 " + args.Title,
	}
	if args.Location != "" {
		lines = append(lines, "📍 "+args.Location)
	}
	if args.Description != "" {
		lines = append(lines, "💬 "+args.Description)
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Engine) addEventsByRange(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.AddEventsByRange()
	if err != nil {
		return "", err
	}

	from, err := dates.Parse(args.DateFrom, e.loc)
	if err != nil {
		return "", err
	}
	to, err := dates.Parse(args.DateTo, e.loc)
	if err != nil {
		return "", err
	}
	if to.Before(from) {
		return "", &intent.ValidationError{Op: call.Op, Field: "date_to"}
	}

	created := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		start, end, err := e.eventTimes(day.Format(dates.DateLayout), args.StartTime, args.EndTime)
		if err != nil {
			return "", err
		}
		if _, err := e.cal.CreateEvent(ctx, calendar.EventDraft{
			Summary: args.Title,
			Start:   start,
			End:     end,
		}); err != nil {
			return "", fmt.Errorf("create event for %s (%d created): %w",
				day.Format(dates.DateLayout), created, err)
		}
		created++
	}

	return fmt.Sprintf("✅ %d개 일정이 추가되었습니다!\n\n📅 %s ~ %s\n🕐 %s\n📝 %s",
		created, args.DateFrom, args.DateTo, args.StartTime, args.Title), nil
}

func (e *Engine) addMultidayEvent(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.AddMultidayEvent()
	if err != nil {
		return "", err
	}

	from, err := dates.Parse(args.DateFrom, e.loc)
	if err != nil {
		return "", err
	}
	to, err := dates.Parse(args.DateTo, e.loc)
	if err != nil {
		return "", err
	}
	if to.Before(from) {
		return "", &intent.ValidationError{Op: call.Op, Field: "date_to"}
	}

	// All-day spans store an exclusive end date
	_, err = e.cal.CreateEvent(ctx, calendar.EventDraft{
		Summary:     args.Title,
		Description: args.Description,
		Start:       from,
		End:         dates.ExclusiveEnd(to),
		AllDay:      true,
	})
	if err != nil {
		return "", fmt.Errorf("create multiday event: %w", err)
	}

	return fmt.Sprintf("✅ 일정이 추가되었습니다!\n\n📅 %s ~ %s (종일)\n📝 %s",
		args.DateFrom, args.DateTo, args.Title), nil
}

// resolveEvent fetches the day's events and narrows them to the one the
// reference means
func (e *Engine) resolveEvent(ctx context.Context, dateStr, title, startStr string) (calendar.Event, error) {
	date, err := dates.Parse(dateStr, e.loc)
	if err != nil {
		return calendar.Event{}, err
	}

	start, end := dates.DayBounds(date)
	candidates, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
	if err != nil {
		return calendar.Event{}, fmt.Errorf("list events for %s: %w", dateStr, err)
	}

	ref := match.Ref{Title: title}
	if startStr != "" {
		h, m, err := dates.ParseTime(startStr)
		if err != nil {
			return calendar.Event{}, err
		}
		at := dates.At(date, h, m)
		ref.Start = &at
	}

	return match.Resolve(ref, candidates)
}

func (e *Engine) deleteEvent(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.DeleteEvent()
	if err != nil {
		return "", err
	}

	event, err := e.resolveEvent(ctx, args.Date, args.Title, args.StartTime)
	if err != nil {
		return "", err
	}

	if err := e.cal.DeleteEvent(ctx, event.ID); err != nil {
		return "", fmt.Errorf("delete event %s: %w", event.ID, err)
	}

	return fmt.Sprintf("🗑️ 일정이 삭제되었습니다!\n\n📅 %s\n📝 %s", args.Date, event.Summary), nil
}

func (e *Engine) deleteEventsByRange(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.DeleteEventsByRange()
	if err != nil {
		return "", err
	}

	from, err := dates.Parse(args.DateFrom, e.loc)
	if err != nil {
		return "", err
	}
	to, err := dates.Parse(args.DateTo, e.loc)
	if err != nil {
		return "", err
	}
	if to.Before(from) {
		return "", &intent.ValidationError{Op: call.Op, Field: "date_to"}
	}

	// Ranged deletion filters by keyword at the backend: a keyword
	// mismatch there fails safe (the event survives)
	events, err := e.cal.ListEvents(ctx, calendar.ListParams{
		TimeMin: from,
		TimeMax: dates.ExclusiveEnd(to),
		Query:   args.Keyword,
	})
	if err != nil {
		return "", fmt.Errorf("list events in range: %w", err)
	}
	if len(events) == 0 {
		return "", match.ErrAmbiguousOrNotFound
	}

	deleted := 0
	for _, ev := range events {
		if err := e.cal.DeleteEvent(ctx, ev.ID); err != nil {
			return "", fmt.Errorf("delete event %s (%d deleted): %w", ev.ID, deleted, err)
		}
		deleted++
	}

	msg := fmt.Sprintf("🗑️ %d개 일정이 삭제되었습니다!\n\n📅 %s ~ %s", deleted, args.DateFrom, args.DateTo)
	if args.Keyword != "" {
		msg += fmt.Sprintf("\n🔍 %q", args.Keyword)
	}
	return msg, nil
}

func (e *Engine) editEvent(ctx context.Context, call *intent.Call) (string, error) {
	args, err := call.EditEvent()
	if err != nil {
		return "", err
	}

	event, err := e.resolveEvent(ctx, args.Date, args.Title, args.StartTime)
	if err != nil {
		return "", err
	}

	patch, details, err := e.buildPatch(event, args.Changes)
	if err != nil {
		return "", err
	}

	updated, err := e.cal.PatchEvent(ctx, event.ID, patch)
	if err != nil {
		return "", fmt.Errorf("patch event %s: %w", event.ID, err)
	}

	msg := fmt.Sprintf("✏️ 일정이 수정되었습니다!\n\n📝 %s", updated.Summary)
	if len(details) > 0 {
		msg += "\n\n변경사항:\n• " + strings.Join(details, "\n• ")
	}
	return msg, nil
}

// buildPatch converts an intent change set into a calendar patch plus
// the per-field lines for the confirmation message
func (e *Engine) buildPatch(event calendar.Event, changes intent.Changes) (calendar.EventPatch, []string, error) {
	var patch calendar.EventPatch
	var details []string

	if changes.Title != "" {
		patch.Summary = &changes.Title
		details = append(details, "제목 → "+changes.Title)
	}
	if changes.Location != "" {
		patch.Location = &changes.Location
		details = append(details, "장소 → "+changes.Location)
	}
	if changes.Description != "" {
		patch.Description = &changes.Description
		details = append(details, "설명 → "+changes.Description)
	}

	if changes.Date != "" || changes.StartTime != "" || changes.EndTime != "" {
		day := event.Start
		if changes.Date != "" {
			parsed, err := dates.Parse(changes.Date, e.loc)
			if err != nil {
				return patch, nil, err
			}
			day = parsed
			details = append(details, "날짜 → "+changes.Date)
		}

		hour, minute := event.Start.Hour(), event.Start.Minute()
		if changes.StartTime != "" {
			h, m, err := dates.ParseTime(changes.StartTime)
			if err != nil {
				return patch, nil, err
			}
			hour, minute = h, m
			details = append(details, "시작 → "+changes.StartTime)
		}
		start := dates.At(day, hour, minute)

		end := start.Add(event.End.Sub(event.Start))
		if changes.EndTime != "" {
			h, m, err := dates.ParseTime(changes.EndTime)
			if err != nil {
				return patch, nil, err
			}
			end = dates.At(day, h, m)
			if !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
			details = append(details, "종료 → "+changes.EndTime)
		}

		patch.Start = &start
		patch.End = &end
	}

	return patch, details, nil
}
