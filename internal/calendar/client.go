// Package calendar is a Google Calendar v3 client for the single shared
// calendar. Authentication uses OAuth bearer tokens supplied by a
// TokenSource; the wire format handling covers both timed and all-day
// events (all-day end dates are exclusive, per the Calendar API).
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://www.googleapis.com/calendar/v3"

// TokenSource supplies a valid OAuth access token for each request
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the Google Calendar API for one calendar
type Client struct {
	httpClient *http.Client
	calendarID string
	tokens     TokenSource
	loc        *time.Location
}

// NewClient creates a calendar client. All-day dates are interpreted in
// loc (defaults to UTC).
func NewClient(calendarID string, tokens TokenSource, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		calendarID: calendarID,
		tokens:     tokens,
		loc:        loc,
	}
}

// CalendarID returns the configured calendar ID
func (c *Client) CalendarID() string {
	return c.calendarID
}

// Event represents a calendar event
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"` // exclusive for all-day spans
	AllDay      bool      `json:"all_day"`
	Status      string    `json:"status"`
}

// googleEvent is the Calendar API wire format
type googleEvent struct {
	ID          string          `json:"id,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Status      string          `json:"status,omitempty"`
	Start       *googleDateTime `json:"start,omitempty"`
	End         *googleDateTime `json:"end,omitempty"`
}

type googleDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventsResponse struct {
	Items []googleEvent `json:"items"`
}

// request makes an authenticated request to the Calendar API
func (c *Client) request(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("calendar API error (%d): %s", errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("calendar API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ListParams scopes an event listing
type ListParams struct {
	TimeMin    time.Time // start of window (required)
	TimeMax    time.Time // end of window, exclusive (required)
	Query      string    // backend keyword filter; empty means unfiltered
	MaxResults int       // default 250
}

// ListEvents retrieves events in the window, expanded and ordered by
// start time
func (c *Client) ListEvents(ctx context.Context, params ListParams) ([]Event, error) {
	if params.MaxResults == 0 {
		params.MaxResults = 250
	}

	queryParams := url.Values{}
	queryParams.Set("timeMin", params.TimeMin.Format(time.RFC3339))
	queryParams.Set("timeMax", params.TimeMax.Format(time.RFC3339))
	queryParams.Set("maxResults", fmt.Sprintf("%d", params.MaxResults))
	queryParams.Set("singleEvents", "true")
	queryParams.Set("orderBy", "startTime")
	if params.Query != "" {
		queryParams.Set("q", params.Query)
	}

	path := fmt.Sprintf("/calendars/%s/events?%s", url.PathEscape(c.calendarID), queryParams.Encode())
	data, err := c.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse events response: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		event, err := c.convertEvent(&item)
		if err != nil {
			continue // Skip malformed events
		}
		if event.Status == "cancelled" {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// EventDraft holds the fields for a new event. For all-day events End
// must already be the exclusive end date.
type EventDraft struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// CreateEvent creates a new event and returns it with its assigned ID
func (c *Client) CreateEvent(ctx context.Context, draft EventDraft) (*Event, error) {
	body := googleEvent{
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
	}

	if draft.AllDay {
		body.Start = &googleDateTime{Date: draft.Start.Format("2006-01-02")}
		body.End = &googleDateTime{Date: draft.End.Format("2006-01-02")}
	} else {
		body.Start = &googleDateTime{
			DateTime: draft.Start.Format(time.RFC3339),
			TimeZone: draft.Start.Location().String(),
		}
		body.End = &googleDateTime{
			DateTime: draft.End.Format(time.RFC3339),
			TimeZone: draft.End.Location().String(),
		}
	}

	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(c.calendarID))
	data, err := c.request(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse created event: %w", err)
	}

	event, err := c.convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// EventPatch holds a partial update; nil fields are left untouched
type EventPatch struct {
	Summary     *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
}

// PatchEvent applies a partial update to an existing event
func (c *Client) PatchEvent(ctx context.Context, eventID string, patch EventPatch) (*Event, error) {
	body := googleEvent{}
	if patch.Summary != nil {
		body.Summary = *patch.Summary
	}
	if patch.Description != nil {
		body.Description = *patch.Description
	}
	if patch.Location != nil {
		body.Location = *patch.Location
	}
	if patch.Start != nil {
		body.Start = &googleDateTime{
			DateTime: patch.Start.Format(time.RFC3339),
			TimeZone: patch.Start.Location().String(),
		}
	}
	if patch.End != nil {
		body.End = &googleDateTime{
			DateTime: patch.End.Format(time.RFC3339),
			TimeZone: patch.End.Location().String(),
		}
	}

	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	data, err := c.request(ctx, "PATCH", path, body)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse patched event: %w", err)
	}

	event, err := c.convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	_, err := c.request(ctx, "DELETE", path, nil)
	return err
}

// convertEvent converts a Calendar API event to our Event type
func (c *Client) convertEvent(item *googleEvent) (Event, error) {
	event := Event{
		ID:          item.ID,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
	}

	if item.Start != nil {
		if item.Start.DateTime != "" {
			t, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				return Event{}, fmt.Errorf("parse start time: %w", err)
			}
			event.Start = t.In(c.loc)
		} else if item.Start.Date != "" {
			t, err := time.ParseInLocation("2006-01-02", item.Start.Date, c.loc)
			if err != nil {
				return Event{}, fmt.Errorf("parse start date: %w", err)
			}
			event.Start = t
			event.AllDay = true
		}
	}

	if item.End != nil {
		if item.End.DateTime != "" {
			t, err := time.Parse(time.RFC3339, item.End.DateTime)
			if err != nil {
				return Event{}, fmt.Errorf("parse end time: %w", err)
			}
			event.End = t.In(c.loc)
		} else if item.End.Date != "" {
			t, err := time.ParseInLocation("2006-01-02", item.End.Date, c.loc)
			if err != nil {
				return Event{}, fmt.Errorf("parse end date: %w", err)
			}
			event.End = t
		}
	}

	return event, nil
}
