package usecase

import (
	"strings"
	"testing"

	"meeting-brief-service/internal/domain/model"
)

func TestCombineDocuments(t *testing.T) {
	docs := []model.DocumentContent{
		{Filename: "plan.docx", Text: "launch plan"},
		{Filename: "budget.xlsx", Text: "numbers"},
	}
	got := CombineDocuments(docs)
	want := "--- plan.docx ---\nlaunch plan\n\n--- budget.xlsx ---\nnumbers"
	if got != want {
		t.Errorf("CombineDocuments = %q, want %q", got, want)
	}
}

func TestContextCapPerAudience(t *testing.T) {
	if got := contextCap(model.AudienceExec, 3, 5); got != 3 {
		t.Errorf("exec cap = %d, want 3", got)
	}
	if got := contextCap(model.AudienceIC, 3, 5); got != 5 {
		t.Errorf("ic cap = %d, want 5", got)
	}
}

func TestSystemPromptNamesEveryFile(t *testing.T) {
	meta := model.MeetingMetadata{Title: "Q3", Attendees: "a,b", MeetingType: model.MeetingTypeDecision, AudienceLevel: model.AudienceExec}
	p := systemPrompt(meta, []string{"plan.docx", "budget.xlsx"}, 3, 350)
	for _, fn := range []string{"plan.docx", "budget.xlsx"} {
		if !strings.Contains(p, fn) {
			t.Errorf("system prompt missing filename %s", fn)
		}
	}
}
