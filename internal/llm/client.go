// Package llm calls an OpenAI-compatible chat-completions API. Two
// entry points, two deliberate contracts: Classify offers the function
// vocabulary and may return a structured call; Summarize offers no
// tools and has a bounded output length.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jinbless/moelclaw/internal/history"
	"github.com/jinbless/moelclaw/internal/intent"
	"github.com/jinbless/moelclaw/internal/logging"
)

const defaultBaseURL = "https://api.openai.com/v1"

const (
	classifyMaxTokens  = 500
	summarizeMaxTokens = 400
)

// Client calls the chat-completions endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	loc        *time.Location // for today's date in the system prompt
	now        func() time.Time
}

// NewClient creates an LLM client
func NewClient(apiKey, model string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		loc:        loc,
		now:        time.Now,
	}
}

// Result is the outcome of a classify call: either plain text to relay
// or a structured function call, never both
type Result struct {
	Text string
	Call *intent.Call
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Tools     []toolDef     `json:"tools,omitempty"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify sends the conversation with the function vocabulary attached
// and returns either the model's text reply or its function call
func (c *Client) Classify(ctx context.Context, turns []history.Turn) (*Result, error) {
	req := chatRequest{
		Model:     c.model,
		Messages:  c.messages(classifySystemPrompt(c.now().In(c.loc)), turns),
		Tools:     toolDefs(),
		MaxTokens: classifyMaxTokens,
	}

	msg, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(msg.ToolCalls) == 0 {
		return &Result{Text: msg.Content}, nil
	}

	tc := msg.ToolCalls[0]
	op, cat, ok := intent.Lookup(tc.Function.Name)
	if !ok {
		// Unknown function name: treat as no tool call
		logging.Info("llm", "ignoring unknown function %q", tc.Function.Name)
		return &Result{Text: msg.Content}, nil
	}

	args := make(map[string]any)
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("parse arguments for %s: %w", op, err)
		}
	}

	return &Result{Call: &intent.Call{
		ID:       tc.ID,
		Op:       op,
		Category: cat,
		Args:     args,
	}}, nil
}

// Summarize sends the conversation (including the latest tool result)
// without any tool definitions and returns a short natural-language
// answer
func (c *Client) Summarize(ctx context.Context, turns []history.Turn) (string, error) {
	req := chatRequest{
		Model:     c.model,
		Messages:  c.messages(summarizeSystemPrompt, turns),
		MaxTokens: summarizeMaxTokens,
	}

	msg, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (c *Client) complete(ctx context.Context, req chatRequest) (*chatMessage, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat API returned no choices")
	}

	return &parsed.Choices[0].Message, nil
}

// messages converts stored turns to wire messages. A tool-result turn
// expands to the assistant tool-call stub plus the tool reply so the
// API sees a well-formed call/result pair.
func (c *Client) messages(systemPrompt string, turns []history.Turn) []chatMessage {
	msgs := make([]chatMessage, 0, len(turns)+1)
	msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})

	for _, t := range turns {
		switch t.Role {
		case history.RoleToolResult:
			msgs = append(msgs,
				chatMessage{
					Role: "assistant",
					ToolCalls: []toolCall{{
						ID:       t.ID,
						Type:     "function",
						Function: functionCall{Name: t.Name, Arguments: "{}"},
					}},
				},
				chatMessage{
					Role:       "tool",
					Content:    t.Content,
					ToolCallID: t.ID,
					Name:       t.Name,
				},
			)
		case history.RoleAssistant:
			msgs = append(msgs, chatMessage{Role: "assistant", Content: t.Content})
		default:
			msgs = append(msgs, chatMessage{Role: "user", Content: t.Content})
		}
	}
	return msgs
}
