package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
)

// fakeAI replays a scripted sequence of responses, one per Complete call.
type fakeAI struct {
	calls     int
	responses []fakeResponse
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeAI) Complete(ctx context.Context, model, system, user string) (string, error) {
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	r := f.responses[i]
	return r.text, r.err
}

func testBriefConfig() config.BriefConfig {
	return config.BriefConfig{
		MaxWords:           350,
		ContextBulletsExec: 3,
		ContextBulletsIC:   5,
		MaxAttempts:        3,
		BackoffBase:        time.Millisecond,
		MaxFiles:           10,
		MaxFileBytes:       10 << 20,
	}
}

func testMeta(level model.AudienceLevel) model.MeetingMetadata {
	return model.MeetingMetadata{
		Title:         "Q3 Launch Review",
		Attendees:     "Ana, Li",
		MeetingType:   model.MeetingTypeDecision,
		AudienceLevel: level,
	}
}

func newTestGenerator(t *testing.T, ai *fakeAI) *briefUC {
	t.Helper()
	logger := zerolog.Nop()
	g, err := NewBriefGenerator(ai, "test-model", testBriefConfig(), &logger)
	if err != nil {
		t.Fatalf("NewBriefGenerator: %v", err)
	}
	return g
}

const validBriefJSON = `{
  "goal": "Decide the launch date",
  "context": ["c1", "c2", "c3", "c4", "c5", "c6"],
  "options": [{"option": "Launch now", "pros": ["momentum"], "cons": ["risk"]}],
  "risks_tradeoffs": ["support load"],
  "decisions": ["TBD"],
  "action_checklist": [{"owner": "TBD (PM)", "task": "confirm date", "due_date": "TBD"}],
  "sources": [{"label": "Launch plan", "filename": "PLAN.docx"}]
}`

func TestGenerateSuccess(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{
		{text: "Here is the brief:\n```json\n" + validBriefJSON + "\n```"},
	}}
	g := newTestGenerator(t, ai)

	brief, err := g.Generate(context.Background(), testMeta(model.AudienceExec), "text", []string{"plan.docx", "budget.xlsx"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ai.calls != 1 {
		t.Errorf("model called %d times, want 1", ai.calls)
	}
	if brief.Goal != "Decide the launch date" {
		t.Errorf("goal = %q", brief.Goal)
	}
	// Exec audience caps context at 3 even when the model returned more.
	if len(brief.Context) != 3 {
		t.Errorf("context has %d bullets, want 3", len(brief.Context))
	}
	if brief.WordCount == 0 || brief.WordCount > 350 {
		t.Errorf("word count %d out of range", brief.WordCount)
	}
}

func TestGenerateCoversAllSources(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{{text: validBriefJSON}}}
	g := newTestGenerator(t, ai)

	brief, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", []string{"plan.docx", "budget.xlsx"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	byFile := map[string]model.BriefSource{}
	for _, s := range brief.Sources {
		byFile[s.Filename] = s
	}
	// PLAN.docx matches plan.docx case-insensitively; no synthetic duplicate.
	if _, ok := byFile["plan.docx"]; ok {
		t.Error("synthetic entry added for a file the model already cited")
	}
	syn, ok := byFile["budget.xlsx"]
	if !ok {
		t.Fatal("missing synthetic entry for uncited budget.xlsx")
	}
	if syn.Label != "Referenced document" {
		t.Errorf("synthetic label = %q", syn.Label)
	}
	if len(brief.Sources) != 2 {
		t.Errorf("sources len = %d, want 2", len(brief.Sources))
	}
}

func TestGenerateRetriesExhaustedOnMalformedJSON(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{{text: "{not json"}}}
	g := newTestGenerator(t, ai)

	_, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil)
	if !errors.Is(err, domain.ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if ai.calls != 3 {
		t.Errorf("model called %d times, want 3", ai.calls)
	}
}

func TestGenerateEmptyResponseConsumesRetries(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{{text: "   "}}}
	g := newTestGenerator(t, ai)

	_, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil)
	if !errors.Is(err, domain.ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if ai.calls != 3 {
		t.Errorf("model called %d times, want 3", ai.calls)
	}
}

func TestGenerateTransientThenSuccess(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{
		{err: errors.New("upstream 503")},
		{text: validBriefJSON},
	}}
	g := newTestGenerator(t, ai)

	if _, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ai.calls != 2 {
		t.Errorf("model called %d times, want 2", ai.calls)
	}
}

func TestGenerateStructureMismatchDoesNotRetry(t *testing.T) {
	// "decisions" is a required key; its absence is a contract violation.
	ai := &fakeAI{responses: []fakeResponse{
		{text: `{"goal": "g", "context": [], "options": [], "risks_tradeoffs": [], "action_checklist": []}`},
	}}
	g := newTestGenerator(t, ai)

	_, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil)
	if !errors.Is(err, domain.ErrInvalidStructure) {
		t.Fatalf("err = %v, want ErrInvalidStructure", err)
	}
	if ai.calls != 1 {
		t.Errorf("model called %d times, want 1", ai.calls)
	}
}

func TestGenerateAuthAbortsImmediately(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{
		{err: domain.ErrAuthentication},
	}}
	g := newTestGenerator(t, ai)

	_, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil)
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
	if ai.calls != 1 {
		t.Errorf("model called %d times, want 1", ai.calls)
	}
}

func TestGenerateEmptyListsNormalized(t *testing.T) {
	ai := &fakeAI{responses: []fakeResponse{
		{text: `{"goal": "g", "context": [], "options": [], "risks_tradeoffs": [], "decisions": [], "action_checklist": []}`},
	}}
	g := newTestGenerator(t, ai)

	brief, err := g.Generate(context.Background(), testMeta(model.AudienceIC), "text", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if brief.Context == nil || brief.Options == nil || brief.RisksTradeoffs == nil ||
		brief.Decisions == nil || brief.ActionChecklist == nil || brief.Sources == nil {
		t.Error("all list fields must be non-nil after finalize")
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Sure! Here you go: {\"a\": 1} Hope that helps.", `{"a": 1}`},
		{"no object here", "no object here"},
	}
	for _, c := range cases {
		if got := extractJSONObject(c.in); got != c.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
