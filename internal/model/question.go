package model

// QuestionType enumerates the three question shapes the scoring API serves.
// Wire values are the upstream API's own type strings.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "radio"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeText           QuestionType = "text"
)

// Valid reports whether t is one of the three supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeText:
		return true
	}
	return false
}

// Option is one selectable choice of a question.
// IsCorrect is only populated by the upstream API in post-attempt review
// payloads and must never reach a client while the attempt is live.
type Option struct {
	ID        int64   `json:"id"`
	Text      string  `json:"option_text"`
	Image     *string `json:"option_image"`
	IsCorrect *bool   `json:"is_correct,omitempty"`
}

// Question is a single attempt question as served by the scoring API.
// Immutable once loaded for an attempt.
type Question struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Type          QuestionType `json:"type"`
	Image         *string      `json:"image"`
	TotalMarks    float64      `json:"total_marks"`
	NegativeMarks float64      `json:"negative_marks"`
	Options       []Option     `json:"options"`
}

// HasOption reports whether the question carries an option with the given ID.
func (q *Question) HasOption(id int64) bool {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return true
		}
	}
	return false
}

// Sanitized returns a copy of the question with correctness flags stripped,
// safe to hand to a client during a live attempt.
func (q *Question) Sanitized() Question {
	out := *q
	out.Options = make([]Option, len(q.Options))
	for i, opt := range q.Options {
		opt.IsCorrect = nil
		out.Options[i] = opt
	}
	return out
}
