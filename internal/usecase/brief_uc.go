package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/adapter"
	"meeting-brief-service/internal/infra/logging"
	"meeting-brief-service/internal/infra/metrics"
)

// Compile-time check
var _ BriefGenerator = (*briefUC)(nil)

// BriefGenerator turns meeting metadata plus combined document text into a
// validated, word-limited, citation-complete brief.
type BriefGenerator interface {
	Generate(ctx context.Context, meta model.MeetingMetadata, combinedText string, filenames []string) (*model.Brief, error)
}

// briefSchema is the structural contract for the model response. Required
// list fields must be present (possibly empty); absence is a validation
// failure, not an empty list.
const briefSchema = `{
  "type": "object",
  "required": ["goal", "context", "options", "risks_tradeoffs", "decisions", "action_checklist"],
  "properties": {
    "goal": {"type": "string"},
    "context": {"type": "array", "items": {"type": "string"}},
    "options": {"type": "array", "items": {"type": "object"}},
    "risks_tradeoffs": {"type": "array", "items": {"type": "string"}},
    "decisions": {"type": "array", "items": {"type": "string"}},
    "action_checklist": {"type": "array", "items": {"type": "object"}},
    "sources": {"type": "array", "items": {"type": "object"}}
  }
}`

type briefUC struct {
	ai     adapter.AIServiceAdapter
	model  string
	cfg    config.BriefConfig
	schema *jsonschema.Schema
	enc    *tiktoken.Tiktoken
	log    *zerolog.Logger
}

func NewBriefGenerator(ai adapter.AIServiceAdapter, modelName string, cfg config.BriefConfig, log *zerolog.Logger) (*briefUC, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("brief.json", strings.NewReader(briefSchema)); err != nil {
		return nil, fmt.Errorf("add brief schema: %w", err)
	}
	schema, err := compiler.Compile("brief.json")
	if err != nil {
		return nil, fmt.Errorf("compile brief schema: %w", err)
	}

	// Token counting is best-effort; without an encoding the prompt is sent
	// untrimmed.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn().Err(err).Msg("tiktoken encoding unavailable, prompt trimming disabled")
		enc = nil
	}

	return &briefUC{ai: ai, model: modelName, cfg: cfg, schema: schema, enc: enc, log: log}, nil
}

func (u *briefUC) Generate(ctx context.Context, meta model.MeetingMetadata, combinedText string, filenames []string) (*model.Brief, error) {
	defer logging.TraceDuration(u.log, "BriefUC.Generate")()

	bulletCap := contextCap(meta.AudienceLevel, u.cfg.ContextBulletsExec, u.cfg.ContextBulletsIC)
	system := systemPrompt(meta, filenames, bulletCap, u.cfg.MaxWords)
	user := userPrompt(meta, u.trimToTokenBudget(combinedText))

	var lastErr error
	for attempt := 1; attempt <= u.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := Backoff(attempt-1, u.cfg.BackoffBase)
			u.log.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("retrying generation")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		start := time.Now()
		raw, err := u.ai.Complete(ctx, u.model, system, user)
		metrics.ObserveGeneration(u.model, time.Since(start), err == nil)
		if err != nil {
			if errors.Is(err, domain.ErrAuthentication) {
				// Credential failures cannot heal by retrying.
				return nil, err
			}
			lastErr = err
			continue
		}
		if strings.TrimSpace(raw) == "" {
			lastErr = domain.ErrEmptyResponse
			continue
		}

		payload, err := u.decodeAndValidate(raw)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidStructure) {
				// A shape mismatch is a contract violation, not flakiness.
				return nil, err
			}
			lastErr = err
			continue
		}

		return u.finalize(payload, filenames, bulletCap), nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrRetriesExhausted, u.cfg.MaxAttempts, lastErr)
}

// briefPayload is the wire shape of the model response, minus the locally
// computed word count and timestamp.
type briefPayload struct {
	Goal            string              `json:"goal"`
	Context         []string            `json:"context"`
	Options         []model.BriefOption `json:"options"`
	RisksTradeoffs  []string            `json:"risks_tradeoffs"`
	Decisions       []string            `json:"decisions"`
	ActionChecklist []model.ActionItem  `json:"action_checklist"`
	Sources         []model.BriefSource `json:"sources"`
}

func (u *briefUC) decodeAndValidate(raw string) (*briefPayload, error) {
	doc := extractJSONObject(raw)

	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err)
	}
	if err := u.schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStructure, err)
	}

	var payload briefPayload
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		// The document passed the schema but a nested field carries a type
		// the schema does not pin down.
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStructure, err)
	}
	return &payload, nil
}

// finalize applies the post-generation contract: non-nil lists, full source
// coverage, the audience context cap, and the word budget.
func (u *briefUC) finalize(p *briefPayload, filenames []string, bulletCap int) *model.Brief {
	b := &model.Brief{
		Goal:            p.Goal,
		Context:         ensureList(p.Context),
		Options:         p.Options,
		RisksTradeoffs:  ensureList(p.RisksTradeoffs),
		Decisions:       ensureList(p.Decisions),
		ActionChecklist: p.ActionChecklist,
		Sources:         p.Sources,
		CreatedAt:       time.Now(),
	}
	if b.Options == nil {
		b.Options = []model.BriefOption{}
	}
	if b.ActionChecklist == nil {
		b.ActionChecklist = []model.ActionItem{}
	}
	if b.Sources == nil {
		b.Sources = []model.BriefSource{}
	}
	if len(b.Context) > bulletCap {
		b.Context = b.Context[:bulletCap]
	}

	b.Sources = coverSources(b.Sources, filenames)
	enforceWordBudget(b, u.cfg.MaxWords)
	return b
}

func ensureList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// coverSources guarantees an entry per input filename regardless of model
// compliance, matching case-insensitively and appending synthetic
// "Referenced document" entries for anything missing.
func coverSources(sources []model.BriefSource, filenames []string) []model.BriefSource {
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		seen[strings.ToLower(s.Filename)] = true
	}
	for _, fn := range filenames {
		if !seen[strings.ToLower(fn)] {
			sources = append(sources, model.BriefSource{Label: "Referenced document", Filename: fn})
		}
	}
	return sources
}

// extractJSONObject peels markdown code fences and surrounding prose off a
// model response, keeping the outermost JSON object.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func (u *briefUC) trimToTokenBudget(text string) string {
	if u.enc == nil || u.cfg.PromptTokenBudget <= 0 {
		return text
	}
	tokens := u.enc.Encode(text, nil, nil)
	if len(tokens) <= u.cfg.PromptTokenBudget {
		return text
	}
	u.log.Warn().Int("tokens", len(tokens)).Int("budget", u.cfg.PromptTokenBudget).Msg("document text exceeds prompt budget, trimming")
	return u.enc.Decode(tokens[:u.cfg.PromptTokenBudget])
}
