package modeldispatch

import (
	"context"
	"errors"
	"testing"

	"maestro/internal/llm"
	"maestro/internal/merrors"
	"maestro/internal/settings"
)

// mockChatClient is a test double for the ChatClient dependency.
type mockChatClient struct {
	responses []string
	errs      []error
	model     string
	callCount int
}

func (m *mockChatClient) Chat(ctx context.Context, messages []llm.Message) (*llm.ChatResponse, error) {
	idx := m.callCount
	m.callCount++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	content := "ok"
	if idx < len(m.responses) {
		content = m.responses[idx]
	}
	resp := &llm.ChatResponse{
		Choices: []struct {
			Message llm.Message `json:"message"`
		}{{Message: llm.Message{Role: "assistant", Content: content}}},
	}
	resp.Usage.PromptTokens = 10
	resp.Usage.CompletionTokens = 5
	resp.Usage.TotalTokens = 15
	return resp, nil
}

func (m *mockChatClient) SetModel(model string) { m.model = model }
func (m *mockChatClient) GetModel() string      { return m.model }

func newTestResolver() *settings.Resolver {
	r := settings.New()
	r.RegisterAll(settings.DefaultSpecs())
	// Keep retry waits instant in tests; production default is 2s.
	r.Register(settings.Spec{Name: "retry_delay", Default: 0, Kind: settings.KindInt})
	return r
}

func TestDispatchSuccess(t *testing.T) {
	client := &mockChatClient{responses: []string{"hello"}}
	d := New(newTestResolver(), client, 0)

	content, details, err := d.Dispatch(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, RoleResearch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "hello" {
		t.Errorf("expected content %q, got %q", "hello", content)
	}
	if details.PromptTokens != 10 || details.CompletionTokens != 5 {
		t.Errorf("unexpected details: %+v", details)
	}
}

func TestDispatchRetriesTransientThenSucceeds(t *testing.T) {
	client := &mockChatClient{
		errs:      []error{errors.New("network hiccup"), nil},
		responses: []string{"", "recovered"},
	}
	d := New(newTestResolver(), client, 0)

	content, _, err := d.Dispatch(context.Background(), nil, RoleDefault, nil)
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if content != "recovered" {
		t.Errorf("expected recovered content, got %q", content)
	}
	if client.callCount != 2 {
		t.Errorf("expected 2 attempts, got %d", client.callCount)
	}
}

func TestDispatchAuthFailureIsNonRetriable(t *testing.T) {
	client := &mockChatClient{errs: []error{errors.New("API error 401: invalid key")}}
	d := New(newTestResolver(), client, 0)

	_, _, err := d.Dispatch(context.Background(), nil, RoleDefault, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !merrors.OfKind(err, merrors.AuthenticationFailed) {
		t.Errorf("expected AuthenticationFailed, got %v", err)
	}
	if client.callCount != 1 {
		t.Errorf("expected exactly one attempt for a non-retriable error, got %d", client.callCount)
	}
}

func TestDispatchOverridesPinModel(t *testing.T) {
	client := &mockChatClient{responses: []string{"ok"}}
	d := New(newTestResolver(), client, 0)

	_, details, err := d.Dispatch(context.Background(), nil, RoleWriting, &Overrides{Model: "pinned/model", Provider: "custom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.ModelName != "pinned/model" || details.Provider != "custom" {
		t.Errorf("expected pinned model/provider, got %+v", details)
	}
}

func TestCostTrackerAccumulates(t *testing.T) {
	client := &mockChatClient{responses: []string{"a", "b"}}
	d := New(newTestResolver(), client, 0)

	for i := 0; i < 2; i++ {
		if _, _, err := d.Dispatch(context.Background(), nil, RoleDefault, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap := d.CostTracker().Snapshot()
	var total Totals
	for _, t := range snap {
		total.Calls += t.Calls
		total.PromptTokens += t.PromptTokens
	}
	if total.Calls != 2 {
		t.Errorf("expected 2 recorded calls, got %d", total.Calls)
	}
	if total.PromptTokens != 20 {
		t.Errorf("expected 20 accumulated prompt tokens, got %d", total.PromptTokens)
	}
}
