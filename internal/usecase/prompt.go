package usecase

import (
	"fmt"
	"strings"

	"meeting-brief-service/internal/domain/model"
)

// CombineDocuments concatenates extracted documents as labeled sections so
// the model can cite the originating file.
func CombineDocuments(docs []model.DocumentContent) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("--- ")
		b.WriteString(d.Filename)
		b.WriteString(" ---\n")
		b.WriteString(d.Text)
	}
	return b.String()
}

func contextCap(level model.AudienceLevel, execCap, icCap int) int {
	if level == model.AudienceExec {
		return execCap
	}
	return icCap
}

func systemPrompt(meta model.MeetingMetadata, filenames []string, bulletCap, maxWords int) string {
	audience := "an individual contributor audience: detailed and implementation-aware"
	if meta.AudienceLevel == model.AudienceExec {
		audience = "an executive audience: compressed and strategic"
	}

	var b strings.Builder
	b.WriteString("You prepare structured meeting briefs. Respond with a single JSON object and nothing else, using exactly these keys: ")
	b.WriteString(`"goal" (one sentence string), "context" (array of strings), "options" (array of {"option","pros","cons"}), "risks_tradeoffs" (array of strings), "decisions" (array of strings), "action_checklist" (array of {"owner","task","due_date","source"}), "sources" (array of {"label","filename","section"}).`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Ground every statement strictly in the provided documents. Never invent facts.\n")
	fmt.Fprintf(&b, "- Write for %s.\n", audience)
	fmt.Fprintf(&b, "- At most %d context bullets.\n", bulletCap)
	b.WriteString(`- When an action owner is unknown use "TBD (role)"; when a due date is unknown use "TBD". Never fabricate either.` + "\n")
	fmt.Fprintf(&b, "- Keep the whole brief under %d words.\n", maxWords)
	fmt.Fprintf(&b, "- Every supplied file must appear in \"sources\", even if only as \"referenced for background\". Files: %s.\n",
		strings.Join(filenames, ", "))
	b.WriteString(`- Cite inline with "[Source: filename]" where a specific document supports a point.`)
	return b.String()
}

func userPrompt(meta model.MeetingMetadata, combinedText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", meta.Title)
	fmt.Fprintf(&b, "Attendees: %s\n", meta.Attendees)
	fmt.Fprintf(&b, "Meeting type: %s\n", meta.MeetingType)
	fmt.Fprintf(&b, "Audience: %s\n\n", meta.AudienceLevel)
	b.WriteString("Documents:\n\n")
	b.WriteString(combinedText)
	return b.String()
}
