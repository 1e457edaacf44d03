package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/upadhyai/backend/models"
	ws "github.com/upadhyai/backend/websocket"
)

type fakeLogStore struct {
	mu        sync.Mutex
	logs      []*models.AgentLog
	err       error
	deadlines []time.Time
}

func (f *fakeLogStore) CreateAgentLog(ctx context.Context, log *models.AgentLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		f.deadlines = append(f.deadlines, deadline)
	}
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeLogStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (f *fakePublisher) Publish(userID string, event ws.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testInvoke(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*InvocationResult, error, *fakeLogStore, *fakePublisher) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logs := &fakeLogStore{}
	events := &fakePublisher{}
	invoker := NewAgentInvoker(logs, events, timeout)

	user := &models.User{ID: "u-1", Email: "test@example.com"}
	agent := &models.Agent{ID: "a-1", Name: "Verify Profile", Route: "/verify-profile", WebhookURL: server.URL, IsActive: true}
	profile := &models.Profile{ID: "p-1", UserID: "u-1", Name: "Test Student"}

	result, err := invoker.Invoke(context.Background(), user, agent, map[string]interface{}{"message": "hello"}, profile)
	return result, err, logs, events
}

func TestInvokeObjectResponse(t *testing.T) {
	result, err, logs, events := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, expected POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, expected application/json", ct)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("payload did not decode: %v", err)
		}
		if payload["user_id"] != "u-1" {
			t.Errorf("user_id = %v, expected u-1", payload["user_id"])
		}
		profile, ok := payload["profile"].(map[string]interface{})
		if !ok {
			t.Errorf("profile = %v, expected the caller's profile object", payload["profile"])
		} else if profile["id"] != "p-1" {
			t.Errorf("profile id = %v, expected p-1", profile["id"])
		}
		w.Write([]byte(`{"output": "all good"}`))
	}, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "all good" {
		t.Errorf("content = %q, expected %q", result.Content, "all good")
	}
	if logs.count() != 1 {
		t.Errorf("log rows = %d, expected 1", logs.count())
	}
	if events.count() != 1 {
		t.Errorf("events = %d, expected 1", events.count())
	}
}

func TestInvokeWithoutProfileSendsNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("payload did not decode: %v", err)
		}
		value, present := payload["profile"]
		if !present {
			t.Error("profile key missing, expected an explicit null")
		}
		if value != nil {
			t.Errorf("profile = %v, expected null", value)
		}
		w.Write([]byte(`{"output": "ok"}`))
	}))
	t.Cleanup(server.Close)

	invoker := NewAgentInvoker(&fakeLogStore{}, &fakePublisher{}, 0)
	user := &models.User{ID: "u-1"}
	agent := &models.Agent{Name: "Verify Profile", WebhookURL: server.URL}

	if _, err := invoker.Invoke(context.Background(), user, agent, map[string]interface{}{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvokeLogWriteOutlivesWebhookDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"output": "slow but fine"}`))
	}))
	t.Cleanup(server.Close)

	logs := &fakeLogStore{}
	webhookTimeout := 100 * time.Millisecond
	invoker := NewAgentInvoker(logs, &fakePublisher{}, webhookTimeout)
	user := &models.User{ID: "u-1"}
	agent := &models.Agent{Name: "Verify Profile", WebhookURL: server.URL}

	start := time.Now()
	if _, err := invoker.Invoke(context.Background(), user, agent, map[string]interface{}{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs.mu.Lock()
	deadlines := append([]time.Time(nil), logs.deadlines...)
	logs.mu.Unlock()
	if len(deadlines) != 1 {
		t.Fatalf("log writes = %d, expected 1", len(deadlines))
	}
	// The append runs on its own budget, not on what is left of the webhook
	// deadline after the exchange.
	if remaining := deadlines[0].Sub(start); remaining <= webhookTimeout {
		t.Errorf("log deadline %v after start, expected more than the webhook timeout %v", remaining, webhookTimeout)
	}
}

func TestInvokeArrayResponse(t *testing.T) {
	result, err, _, _ := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"output": "first"}, {"output": "second"}]`))
	}, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "first" {
		t.Errorf("content = %q, expected the first element's output", result.Content)
	}
}

func TestInvokePlainTextResponse(t *testing.T) {
	result, err, logs, _ := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}, 0)

	if err != nil {
		t.Fatalf("plain text must not fail the exchange: %v", err)
	}
	if result.Content != "not json at all" {
		t.Errorf("content = %q, expected the raw text", result.Content)
	}
	if logs.count() != 1 {
		t.Error("a successful plain-text exchange must still be logged")
	}
}

func TestInvokeNonSuccessStatus(t *testing.T) {
	_, err, logs, events := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, 0)

	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.Kind != InvocationStatus {
		t.Fatalf("err = %v, expected a status invocation error", err)
	}
	if invErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", invErr.Status)
	}
	if logs.count() != 0 {
		t.Error("failed exchanges must not be logged")
	}
	if events.count() != 0 {
		t.Error("failed exchanges must not publish events")
	}
}

func TestInvokeEmptyResponse(t *testing.T) {
	_, err, logs, _ := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, 0)

	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.Kind != InvocationEmpty {
		t.Fatalf("err = %v, expected an empty invocation error", err)
	}
	if logs.count() != 0 {
		t.Error("empty responses must not be logged")
	}
}

func TestInvokeTimeout(t *testing.T) {
	_, err, logs, _ := testInvoke(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"output": "too late"}`))
	}, 20*time.Millisecond)

	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.Kind != InvocationTimeout {
		t.Fatalf("err = %v, expected a timeout invocation error", err)
	}
	if logs.count() != 0 {
		t.Error("timed-out exchanges must not be logged")
	}
}

func TestInvokeNetworkFailure(t *testing.T) {
	logs := &fakeLogStore{}
	invoker := NewAgentInvoker(logs, &fakePublisher{}, 0)
	user := &models.User{ID: "u-1"}
	agent := &models.Agent{Name: "Verify Profile", WebhookURL: "http://127.0.0.1:1/unreachable"}

	_, err := invoker.Invoke(context.Background(), user, agent, map[string]interface{}{}, nil)

	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.Kind != InvocationNetwork {
		t.Fatalf("err = %v, expected a network invocation error", err)
	}
	if logs.count() != 0 {
		t.Error("failed exchanges must not be logged")
	}
}

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{name: "string passthrough", input: "hello", expected: "hello"},
		{name: "output key", input: map[string]interface{}{"output": "a"}, expected: "a"},
		{name: "response key", input: map[string]interface{}{"response": "b"}, expected: "b"},
		{name: "content key", input: map[string]interface{}{"content": "c"}, expected: "c"},
		{name: "message key", input: map[string]interface{}{"message": "d"}, expected: "d"},
		{name: "text key", input: map[string]interface{}{"text": "e"}, expected: "e"},
		{
			name:     "output wins over later keys",
			input:    map[string]interface{}{"output": "a", "text": "e"},
			expected: "a",
		},
		{
			name:     "array of strings takes the first",
			input:    []interface{}{"first", "second"},
			expected: "first",
		},
		{
			name:     "array of objects probes the first",
			input:    []interface{}{map[string]interface{}{"message": "hi"}},
			expected: "hi",
		},
		{
			name:     "unrecognized object serializes",
			input:    map[string]interface{}{"other": "x"},
			expected: "{\n  \"other\": \"x\"\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractContent(tt.input); got != tt.expected {
				t.Errorf("ExtractContent() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
