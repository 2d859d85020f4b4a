package llmagents

import (
	"context"
	"testing"

	"maestro/internal/llm"
	"maestro/internal/modeldispatch"
	"maestro/internal/settings"
)

type fakeChatClient struct {
	response string
	model    string
}

func (f *fakeChatClient) Chat(ctx context.Context, messages []llm.Message) (*llm.ChatResponse, error) {
	resp := &llm.ChatResponse{}
	resp.Choices = []struct {
		Message llm.Message `json:"message"`
	}{{Message: llm.Message{Role: "assistant", Content: f.response}}}
	return resp, nil
}

func (f *fakeChatClient) SetModel(model string) { f.model = model }
func (f *fakeChatClient) GetModel() string       { return f.model }

func newTestDispatcher(response string) *modeldispatch.Dispatcher {
	resolver := settings.New()
	resolver.RegisterAll(settings.DefaultSpecs())
	client := &fakeChatClient{response: response}
	return modeldispatch.New(resolver, client, 0)
}

func TestExtractJSONStripsMarkdownFence(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	if got := extractJSON(in); got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONFindsArrayAmongProse(t *testing.T) {
	in := "Here is the result:\n[{\"x\":1}]\nThanks."
	if got := extractJSON(in); got != `[{"x":1}]` {
		t.Errorf("got %q", got)
	}
}

func TestPlanAdapterParsesOutline(t *testing.T) {
	raw := `{"mission_goal":"survey coffee","report_outline":[{"section_id":"s1","title":"Intro","research_strategy":"research_based","subsections":[]}]}`
	d := newTestDispatcher(raw)
	a := PlanAdapter{Dispatcher: d}

	plan, err := a.Plan(context.Background(), "plan a report about coffee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.MissionGoal != "survey coffee" {
		t.Errorf("got mission goal %q", plan.MissionGoal)
	}
	if len(plan.ReportOutline) != 1 || plan.ReportOutline[0].SectionID != "s1" {
		t.Errorf("got outline %+v", plan.ReportOutline)
	}
}

func TestYesNoAdapterRecognizesYes(t *testing.T) {
	d := newTestDispatcher("Yes, that looks correct.")
	a := YesNoAdapter{Dispatcher: d}
	ok, err := a.Ask(context.Background(), "is this valid?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}
}

func TestYesNoAdapterRecognizesNo(t *testing.T) {
	d := newTestDispatcher("No, it is missing a section.")
	a := YesNoAdapter{Dispatcher: d}
	ok, err := a.Ask(context.Background(), "is this valid?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}

func TestQualityAdapterParsesVerdict(t *testing.T) {
	raw := "score: 8\nsufficient: yes\nrefined_query: none"
	d := newTestDispatcher(raw)
	a := QualityAdapter{Dispatcher: d}
	verdict, err := a.Assess(context.Background(), "query", "some content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Score != 8 || !verdict.IsSufficient || verdict.RefinedQuery != "" {
		t.Errorf("got %+v", verdict)
	}
}

func TestQualityAdapterFallsBackOnUnparseableResponse(t *testing.T) {
	d := newTestDispatcher("I cannot determine quality.")
	a := QualityAdapter{Dispatcher: d}
	verdict, err := a.Assess(context.Background(), "query", "short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Score != 5 || verdict.IsSufficient {
		t.Errorf("expected fallback verdict, got %+v", verdict)
	}
}
