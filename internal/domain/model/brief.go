package model

import "time"

// BriefOption is a considered option with its tradeoffs.
type BriefOption struct {
	Option string   `json:"option"`
	Pros   []string `json:"pros"`
	Cons   []string `json:"cons"`
}

// ActionItem carries the "TBD (role)" / "TBD" sentinels when the owner or due
// date is unknown; the generator never fabricates either.
type ActionItem struct {
	Owner   string `json:"owner"`
	Task    string `json:"task"`
	DueDate string `json:"due_date"`
	Source  string `json:"source,omitempty"`
}

// BriefSource links brief content back to an originating file.
type BriefSource struct {
	Label    string  `json:"label"`
	Filename string  `json:"filename"`
	Section  *string `json:"section"`
}

// Brief is the generated artifact. Created exactly once when a job completes,
// immutable afterwards.
type Brief struct {
	ID              string        `json:"id"`
	MeetingID       string        `json:"meeting_id"`
	Goal            string        `json:"goal"`
	Context         []string      `json:"context"`
	Options         []BriefOption `json:"options"`
	RisksTradeoffs  []string      `json:"risks_tradeoffs"`
	Decisions       []string      `json:"decisions"`
	ActionChecklist []ActionItem  `json:"action_checklist"`
	Sources         []BriefSource `json:"sources"`
	WordCount       int           `json:"word_count"`
	CreatedAt       time.Time     `json:"-"`
}

// PublicBrief is the wire shape returned to clients; the internal creation
// timestamp surfaces as generated_at.
type PublicBrief struct {
	Brief
	GeneratedAt time.Time `json:"generated_at"`
}

func (b *Brief) Public() PublicBrief {
	return PublicBrief{Brief: *b, GeneratedAt: b.CreatedAt}
}

// BriefWithMeeting is the listing row: a brief joined with its meeting.
type BriefWithMeeting struct {
	Brief   *Brief   `json:"brief"`
	Meeting *Meeting `json:"meeting"`
}
