package usecase

import (
	"regexp"
	"strings"

	"meeting-brief-service/internal/domain/model"
)

// Citation annotations of the form "[Source: filename]" are presentation
// metadata, not content; they are stripped before counting.
var citationPattern = regexp.MustCompile(`\[Source:[^\]]*\]`)

func StripCitations(s string) string {
	return citationPattern.ReplaceAllString(s, "")
}

func countWords(s string) int {
	return len(strings.Fields(StripCitations(s)))
}

// BriefWordCount computes the word count over content fields only: goal,
// context, options, risks, decisions and the action checklist. The sources
// list and per-item source citations are excluded entirely.
func BriefWordCount(b *model.Brief) int {
	n := countWords(b.Goal)
	for _, c := range b.Context {
		n += countWords(c)
	}
	for _, o := range b.Options {
		n += countWords(o.Option)
		for _, p := range o.Pros {
			n += countWords(p)
		}
		for _, c := range o.Cons {
			n += countWords(c)
		}
	}
	for _, r := range b.RisksTradeoffs {
		n += countWords(r)
	}
	for _, d := range b.Decisions {
		n += countWords(d)
	}
	for _, a := range b.ActionChecklist {
		n += countWords(a.Owner)
		n += countWords(a.Task)
		n += countWords(a.DueDate)
	}
	return n
}

// enforceWordBudget trims trailing context bullets until the brief fits the
// budget, never below a single remaining bullet, and stamps the final count.
func enforceWordBudget(b *model.Brief, maxWords int) {
	wc := BriefWordCount(b)
	for wc > maxWords && len(b.Context) > 1 {
		b.Context = b.Context[:len(b.Context)-1]
		wc = BriefWordCount(b)
	}
	b.WordCount = wc
}
