package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/upadhyai/backend/models"
	ws "github.com/upadhyai/backend/websocket"
)

// InvocationErrorKind classifies why a webhook exchange failed. Each kind maps
// to a distinct user-facing message and HTTP status; they are never collapsed
// into a generic failure.
type InvocationErrorKind int

const (
	InvocationTimeout InvocationErrorKind = iota
	InvocationNetwork
	InvocationStatus
	InvocationEmpty
)

func (k InvocationErrorKind) String() string {
	switch k {
	case InvocationTimeout:
		return "timeout"
	case InvocationNetwork:
		return "network"
	case InvocationStatus:
		return "status"
	case InvocationEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

type InvocationError struct {
	Kind   InvocationErrorKind
	Agent  string
	Status int
	cause  error
}

func (e *InvocationError) Error() string {
	switch e.Kind {
	case InvocationTimeout:
		return fmt.Sprintf("agent %q did not respond in time", e.Agent)
	case InvocationNetwork:
		return fmt.Sprintf("could not reach agent %q", e.Agent)
	case InvocationStatus:
		return fmt.Sprintf("agent %q returned status %d", e.Agent, e.Status)
	case InvocationEmpty:
		return fmt.Sprintf("agent %q returned an empty response", e.Agent)
	default:
		return fmt.Sprintf("agent %q invocation failed", e.Agent)
	}
}

func (e *InvocationError) Unwrap() error {
	return e.cause
}

// InvocationResult is a successful exchange: the parsed response body, the
// raw bytes as received, and the display content extracted for rendering.
type InvocationResult struct {
	Content string          `json:"content"`
	Raw     json.RawMessage `json:"raw"`
}

type AgentLogStore interface {
	CreateAgentLog(ctx context.Context, log *models.AgentLog) error
}

type EventPublisher interface {
	Publish(userID string, event ws.Event)
}

// AgentInvoker performs the webhook exchange for agent invocations: one JSON
// POST carrying the caller's identity, their input, and their profile, with a
// bounded wait. A successful exchange appends an execution log row and pushes
// a refresh event to the caller's feed; a failed exchange appends nothing.
type AgentInvoker struct {
	client  *http.Client
	logs    AgentLogStore
	events  EventPublisher
	timeout time.Duration
}

func NewAgentInvoker(logs AgentLogStore, events EventPublisher, timeout time.Duration) *AgentInvoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AgentInvoker{
		client:  &http.Client{},
		logs:    logs,
		events:  events,
		timeout: timeout,
	}
}

// webhookPayload is the request contract every agent receives: the caller's
// identity, their input, and their full current profile. The profile key is
// always present, null when the caller has no profile row yet.
type webhookPayload struct {
	UserID  string                 `json:"user_id"`
	Input   map[string]interface{} `json:"input"`
	Profile *models.Profile        `json:"profile"`
}

// Invoke sends input to agent's webhook on behalf of user. The input map is
// owned by the caller and is not mutated. Errors are always *InvocationError.
func (inv *AgentInvoker) Invoke(ctx context.Context, user *models.User, agent *models.Agent, input map[string]interface{}, profile *models.Profile) (*InvocationResult, error) {
	payload := webhookPayload{
		UserID:  user.ID,
		Input:   input,
		Profile: profile,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &InvocationError{Kind: InvocationNetwork, Agent: agent.Name, cause: err}
	}

	webhookCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(webhookCtx, http.MethodPost, agent.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, &InvocationError{Kind: InvocationNetwork, Agent: agent.Name, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := inv.client.Do(req)
	if err != nil {
		kind := InvocationNetwork
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			kind = InvocationTimeout
		}
		observeInvocation(agent.Name, kind.String(), time.Since(start).Seconds())
		slog.Error("Agent invocation failed", "agent", agent.Name, "kind", kind.String(), "error", err, "user_id", user.ID)
		return nil, &InvocationError{Kind: kind, Agent: agent.Name, cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observeInvocation(agent.Name, InvocationNetwork.String(), time.Since(start).Seconds())
		slog.Error("Agent response read failed", "agent", agent.Name, "error", err, "user_id", user.ID)
		return nil, &InvocationError{Kind: InvocationNetwork, Agent: agent.Name, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observeInvocation(agent.Name, InvocationStatus.String(), time.Since(start).Seconds())
		slog.Error("Agent returned non-success status", "agent", agent.Name, "status", resp.StatusCode, "user_id", user.ID)
		return nil, &InvocationError{Kind: InvocationStatus, Agent: agent.Name, Status: resp.StatusCode}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		observeInvocation(agent.Name, InvocationEmpty.String(), time.Since(start).Seconds())
		slog.Error("Agent returned empty response", "agent", agent.Name, "user_id", user.ID)
		return nil, &InvocationError{Kind: InvocationEmpty, Agent: agent.Name}
	}

	// A body that is not valid JSON is wrapped as a plain-text response so
	// the exchange still succeeds and gets logged.
	var parsed interface{}
	stored := raw
	if err := json.Unmarshal(raw, &parsed); err != nil {
		parsed = string(raw)
		stored, _ = json.Marshal(string(raw))
	}

	observeInvocation(agent.Name, "success", time.Since(start).Seconds())

	logRow := &models.AgentLog{
		UserID:       user.ID,
		AgentName:    agent.Name,
		InputData:    input,
		ResponseData: stored,
	}

	// The exchange is already over; the append gets its own budget instead of
	// whatever is left of the webhook deadline.
	logCtx, cancelLog := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancelLog()
	if err := inv.logs.CreateAgentLog(logCtx, logRow); err != nil {
		// The exchange itself succeeded; the caller still gets the result.
		slog.Error("Failed to append agent log", "agent", agent.Name, "error", err, "user_id", user.ID)
	} else if inv.events != nil {
		inv.events.Publish(user.ID, ws.Event{Type: "agent_log", Agent: agent.Name, At: time.Now()})
	}

	slog.Info("Agent invoked", "agent", agent.Name, "user_id", user.ID, "duration_ms", time.Since(start).Milliseconds())
	return &InvocationResult{Content: ExtractContent(parsed), Raw: json.RawMessage(stored)}, nil
}

// ExtractContent pulls the display text out of an arbitrary agent response.
// Arrays are probed through their first element; objects are probed for the
// conventional keys in order; anything else falls back to its serialized
// form.
func ExtractContent(data interface{}) string {
	switch v := data.(type) {
	case []interface{}:
		if len(v) > 0 {
			return extractFromValue(v[0])
		}
	case string:
		return v
	default:
		return extractFromValue(data)
	}
	return serialize(data)
}

var contentKeys = []string{"output", "response", "content", "message", "text"}

func extractFromValue(v interface{}) string {
	switch item := v.(type) {
	case string:
		return item
	case map[string]interface{}:
		for _, key := range contentKeys {
			if s, ok := item[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return serialize(v)
}

func serialize(v interface{}) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
