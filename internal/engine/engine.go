// Package engine turns incoming chat messages into calendar mutations,
// queries, and navigation flows, and renders the results back into the
// conversation.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/dates"
	"github.com/jinbless/moelclaw/internal/history"
	"github.com/jinbless/moelclaw/internal/intent"
	"github.com/jinbless/moelclaw/internal/llm"
	"github.com/jinbless/moelclaw/internal/logging"
	"github.com/jinbless/moelclaw/internal/match"
	"github.com/jinbless/moelclaw/internal/naver"
	"github.com/jinbless/moelclaw/internal/navigate"
	"github.com/jinbless/moelclaw/internal/summary"
)

// Calendar is the shared-calendar CRUD contract the engine depends on
type Calendar interface {
	ListEvents(ctx context.Context, params calendar.ListParams) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, draft calendar.EventDraft) (*calendar.Event, error)
	PatchEvent(ctx context.Context, eventID string, patch calendar.EventPatch) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// LLM is the language-model contract: classify with tools, summarize
// without
type LLM interface {
	Classify(ctx context.Context, turns []history.Turn) (*llm.Result, error)
	Summarize(ctx context.Context, turns []history.Turn) (string, error)
}

// Geocoder resolves destination text to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (naver.Place, error)
}

// Transport is the outbound messaging contract
type Transport interface {
	SendText(chatID int64, text string) error
	// SendLocationPrompt asks the user to share their location and
	// returns the prompt's message ID for later cleanup
	SendLocationPrompt(chatID int64, text string) (int, error)
	DeleteMessage(chatID int64, messageID int) error
}

const (
	msgNotUnderstood  = "메시지를 이해하지 못했습니다. 다시 시도해주세요.\n예: \"내일 오후 2시에 치과 예약\""
	msgTransientError = "요청 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	msgAmbiguous      = "어떤 일정인지 특정할 수 없습니다. 제목이나 시간을 더 자세히 알려주세요."
	msgFallbackReply  = "무엇을 도와드릴까요?"
)

// Engine is the intent dispatch and conversation engine
type Engine struct {
	cal       Calendar
	llm       LLM
	geo       Geocoder
	transport Transport
	hist      *history.Store
	pending   *navigate.Store
	loc       *time.Location
	now       func() time.Time
}

// Config holds the engine's collaborators
type Config struct {
	Calendar  Calendar
	LLM       LLM
	Geocoder  Geocoder
	Transport Transport
	History   *history.Store
	Pending   *navigate.Store
	Location  *time.Location
	Now       func() time.Time // defaults to time.Now
}

// New creates an engine
func New(cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cal:       cfg.Calendar,
		llm:       cfg.LLM,
		geo:       cfg.Geocoder,
		transport: cfg.Transport,
		hist:      cfg.History,
		pending:   cfg.Pending,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
}

// SetTransport wires the outbound transport after construction; the
// transport needs the engine for inbound dispatch, so one side has to
// be attached late
func (e *Engine) SetTransport(t Transport) {
	e.transport = t
}

// HandleMessage runs the full dispatch flow for one inbound text
// message: record the turn, classify, execute, reply
func (e *Engine) HandleMessage(ctx context.Context, chatID int64, text string) error {
	e.hist.Append(chatID, history.RoleUser, text)

	result, err := e.llm.Classify(ctx, e.hist.Get(chatID))
	if err != nil {
		logging.Error("engine", "classify for chat %d: %v", chatID, err)
		return e.transport.SendText(chatID, msgNotUnderstood)
	}

	if result.Call == nil {
		reply := result.Text
		if reply == "" {
			reply = msgFallbackReply
		}
		e.hist.Append(chatID, history.RoleAssistant, reply)
		return e.transport.SendText(chatID, reply)
	}

	call := result.Call
	logging.Info("engine", "chat %d -> %s (%s)", chatID, call.Op, call.Category)

	switch call.Category {
	case intent.Mutation:
		return e.executeMutation(ctx, chatID, call)
	case intent.Query:
		return e.executeQuery(ctx, chatID, call)
	case intent.Navigation:
		return e.executeNavigation(ctx, chatID, call)
	}
	return e.transport.SendText(chatID, msgNotUnderstood)
}

// HandleLocation consumes a location share. With nothing pending it is
// a silent no-op; otherwise it finishes the navigation flow and cleans
// up the prompt and location-share messages.
func (e *Engine) HandleLocation(ctx context.Context, chatID int64, lat, lng float64, locationMsgID int) error {
	p, ok := e.pending.Pop(chatID)
	if !ok {
		logging.Debug("engine", "location from chat %d with nothing pending, ignoring", chatID)
		return nil
	}

	origin := naver.Point{Lat: lat, Lng: lng}
	url := naver.DirectionsURL(origin, p.Point, p.Destination)

	text := fmt.Sprintf("🗺️ %s까지 가는 길:\n%s", p.Destination, url)
	if err := e.transport.SendText(chatID, text); err != nil {
		return fmt.Errorf("send directions: %w", err)
	}

	// Cosmetic cleanup: failures here don't affect correctness
	if err := e.transport.DeleteMessage(chatID, p.PromptMsgID); err != nil {
		logging.Debug("engine", "delete prompt message: %v", err)
	}
	if err := e.transport.DeleteMessage(chatID, locationMsgID); err != nil {
		logging.Debug("engine", "delete location message: %v", err)
	}
	return nil
}

// TodayListing returns the formatted today view without a
// language-model pass (used by the /today command and the daily report)
func (e *Engine) TodayListing(ctx context.Context) (string, error) {
	start, end := dates.DayBounds(e.now().In(e.loc))
	events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
	if err != nil {
		return "", fmt.Errorf("list today's events: %w", err)
	}
	return summary.Today(events), nil
}

// WeekListing returns the formatted this-week view without a
// language-model pass
func (e *Engine) WeekListing(ctx context.Context) (string, error) {
	start, end := dates.WeekBounds(e.now().In(e.loc))
	events, err := e.cal.ListEvents(ctx, calendar.ListParams{TimeMin: start, TimeMax: end})
	if err != nil {
		return "", fmt.Errorf("list week's events: %w", err)
	}
	return summary.Week(events), nil
}

// recordResult appends the tool-result turn for a call so later model
// turns see what actually happened
func (e *Engine) recordResult(chatID int64, call *intent.Call, ok bool, detail string) {
	payload, err := json.Marshal(map[string]any{"ok": ok, "detail": detail})
	if err != nil {
		payload = []byte(`{"ok":false}`)
	}
	e.hist.AppendToolResult(chatID, call.ID, string(call.Op), string(payload))
}

// failCall records a failed call and reports it to the user in terms of
// the error taxonomy: clarification for validation errors, a specific
// message for unresolved references, a transient note otherwise
func (e *Engine) failCall(chatID int64, call *intent.Call, err error) error {
	logging.Error("engine", "%s for chat %d: %v", call.Op, chatID, err)
	e.recordResult(chatID, call, false, err.Error())

	var verr *intent.ValidationError
	switch {
	case errors.As(err, &verr):
		return e.transport.SendText(chatID,
			fmt.Sprintf("요청에 필요한 정보가 부족합니다 (%s). 다시 알려주세요.", verr.Field))
	case errors.Is(err, match.ErrAmbiguousOrNotFound):
		return e.transport.SendText(chatID, msgAmbiguous)
	default:
		return e.transport.SendText(chatID, msgTransientError)
	}
}

// executeNavigation geocodes the destination, stores pending state, and
// prompts for the user's location. A failed geocode leaves no pending
// state behind.
func (e *Engine) executeNavigation(ctx context.Context, chatID int64, call *intent.Call) error {
	args, err := call.Navigate()
	if err != nil {
		return e.failCall(chatID, call, err)
	}

	place, err := e.geo.Geocode(ctx, args.Destination)
	if errors.Is(err, naver.ErrNotFound) {
		e.recordResult(chatID, call, false, "destination not found")
		return e.transport.SendText(chatID,
			fmt.Sprintf("📍 %q 위치를 찾을 수 없습니다.", args.Destination))
	}
	if err != nil {
		return e.failCall(chatID, call, err)
	}

	prompt := fmt.Sprintf("📍 %s까지 길찾기\n현재 위치를 공유해주세요.", place.Address)
	msgID, err := e.transport.SendLocationPrompt(chatID, prompt)
	if err != nil {
		return e.failCall(chatID, call, err)
	}

	e.pending.Set(chatID, place.Address, place.Point, msgID)
	e.recordResult(chatID, call, true, fmt.Sprintf("awaiting location for %s", place.Address))
	return nil
}
