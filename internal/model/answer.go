package model

import (
	"encoding/json"
	"fmt"
)

// AnswerKind tags which variant of an Answer is populated.
type AnswerKind string

const (
	AnswerKindSingle   AnswerKind = "single"
	AnswerKindMultiple AnswerKind = "multiple"
	AnswerKindText     AnswerKind = "text"
)

// KindForType maps a question's declared type to the answer variant it takes.
// The variant is fixed once at question-load time and never re-inferred from
// whichever payload field happens to be non-null.
func KindForType(t QuestionType) (AnswerKind, error) {
	switch t {
	case QuestionTypeSingleChoice:
		return AnswerKindSingle, nil
	case QuestionTypeMultipleChoice:
		return AnswerKindMultiple, nil
	case QuestionTypeText:
		return AnswerKindText, nil
	}
	return "", fmt.Errorf("unsupported question type %q", t)
}

// Answer is a tagged union: exactly the variant named by Kind is populated.
//   - single:   OptionID (nullable)
//   - multiple: OptionIDs (set of IDs)
//   - text:     Text (nullable)
type Answer struct {
	Kind      AnswerKind
	OptionID  *int64
	OptionIDs []int64
	Text      *string
}

// EmptyAnswer returns an unanswered Answer of the variant matching t.
func EmptyAnswer(t QuestionType) (Answer, error) {
	kind, err := KindForType(t)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Kind: kind}, nil
}

// SingleAnswer builds a single-choice answer.
func SingleAnswer(optionID int64) Answer {
	return Answer{Kind: AnswerKindSingle, OptionID: &optionID}
}

// MultipleAnswer builds a multiple-choice answer. Duplicate IDs are dropped;
// first-seen order is preserved.
func MultipleAnswer(optionIDs ...int64) Answer {
	seen := make(map[int64]struct{}, len(optionIDs))
	ids := make([]int64, 0, len(optionIDs))
	for _, id := range optionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return Answer{Kind: AnswerKindMultiple, OptionIDs: ids}
}

// TextAnswer builds a free-text answer.
func TextAnswer(value string) Answer {
	return Answer{Kind: AnswerKindText, Text: &value}
}

// IsEmpty reports whether no content has been entered for this answer.
// An empty string counts as unanswered for text questions.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerKindSingle:
		return a.OptionID == nil
	case AnswerKindMultiple:
		return len(a.OptionIDs) == 0
	case AnswerKindText:
		return a.Text == nil || *a.Text == ""
	}
	return true
}

// MatchesType reports whether the answer's variant is the one the question's
// declared type takes.
func (a Answer) MatchesType(t QuestionType) bool {
	kind, err := KindForType(t)
	if err != nil {
		return false
	}
	return a.Kind == kind
}

// Validate checks the tagged-union invariant: only the variant named by Kind
// may carry content.
func (a Answer) Validate() error {
	switch a.Kind {
	case AnswerKindSingle:
		if len(a.OptionIDs) > 0 || a.Text != nil {
			return fmt.Errorf("single answer carries foreign variant content")
		}
	case AnswerKindMultiple:
		if a.OptionID != nil || a.Text != nil {
			return fmt.Errorf("multiple answer carries foreign variant content")
		}
	case AnswerKindText:
		if a.OptionID != nil || len(a.OptionIDs) > 0 {
			return fmt.Errorf("text answer carries foreign variant content")
		}
	default:
		return fmt.Errorf("answer has no variant tag")
	}
	return nil
}

// answerJSON is the serialized answer shape. Field names match the browser
// build of the player so durable mirrors written by either side interoperate.
type answerJSON struct {
	OptionID  *int64  `json:"optionId"`
	OptionIDs []int64 `json:"optionIds,omitempty"`
	Text      *string `json:"text"`
}

// MarshalJSON emits only the tagged variant's content; unused fields are null.
func (a Answer) MarshalJSON() ([]byte, error) {
	out := answerJSON{}
	switch a.Kind {
	case AnswerKindSingle:
		out.OptionID = a.OptionID
	case AnswerKindMultiple:
		out.OptionIDs = a.OptionIDs
	case AnswerKindText:
		out.Text = a.Text
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores serialized content without a variant tag. The caller
// must coerce the result against the question's declared type (see Coerced)
// before storing it.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Kind = ""
	a.OptionID = raw.OptionID
	a.OptionIDs = raw.OptionIDs
	a.Text = raw.Text
	return nil
}

// InferKind determines which variant a tag-less payload populated. At most
// one variant may carry content; none means the payload clears the answer
// (kind "" with a nil error). Used only to classify inbound request payloads
// before validation against the question's declared type — stored answers
// always carry an explicit tag.
func (a Answer) InferKind() (AnswerKind, error) {
	var kinds []AnswerKind
	if a.OptionID != nil {
		kinds = append(kinds, AnswerKindSingle)
	}
	if len(a.OptionIDs) > 0 {
		kinds = append(kinds, AnswerKindMultiple)
	}
	if a.Text != nil {
		kinds = append(kinds, AnswerKindText)
	}
	switch len(kinds) {
	case 0:
		return "", nil
	case 1:
		return kinds[0], nil
	}
	return "", fmt.Errorf("answer payload populates %d variants", len(kinds))
}

// Coerced fixes the variant tag of a deserialized answer to the one matching
// the question type, discarding content from any other variant. Content of
// the matching variant is kept as-is.
func (a Answer) Coerced(t QuestionType) (Answer, error) {
	kind, err := KindForType(t)
	if err != nil {
		return Answer{}, err
	}
	out := Answer{Kind: kind}
	switch kind {
	case AnswerKindSingle:
		out.OptionID = a.OptionID
	case AnswerKindMultiple:
		out.OptionIDs = a.OptionIDs
	case AnswerKindText:
		out.Text = a.Text
	}
	return out, nil
}
