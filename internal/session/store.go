package session

import (
	"encoding/json"
	"fmt"

	"github.com/quizdesk/testplayer/internal/model"
)

// SetAnswer replaces the answer of the currently visible question. The
// variant must match the question's declared type; this is checked here even
// though handlers coerce payloads, so a mismatch can never reach the answer
// map or the wire.
func (s *Session) SetAnswer(questionID int64, ans model.Answer) error {
	if s.terminal {
		return ErrTerminal
	}

	q := s.questions[s.index]
	if q.ID != questionID {
		return ErrNotCurrentQuestion
	}
	if !ans.MatchesType(q.Type) {
		return fmt.Errorf("%w: question %d is %q", ErrValidationMismatch, questionID, q.Type)
	}
	if err := ans.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationMismatch, err)
	}
	if err := s.checkOptions(q, ans); err != nil {
		return err
	}

	s.answers[questionID] = ans
	return nil
}

// checkOptions rejects option IDs that do not belong to the question.
func (s *Session) checkOptions(q model.Question, ans model.Answer) error {
	switch ans.Kind {
	case model.AnswerKindSingle:
		if ans.OptionID != nil && !q.HasOption(*ans.OptionID) {
			return fmt.Errorf("%w: option %d not in question %d", ErrValidationMismatch, *ans.OptionID, q.ID)
		}
	case model.AnswerKindMultiple:
		for _, id := range ans.OptionIDs {
			if !q.HasOption(id) {
				return fmt.Errorf("%w: option %d not in question %d", ErrValidationMismatch, id, q.ID)
			}
		}
	}
	return nil
}

// SeedFromMirror restores answers from a serialized mirror snapshot written
// before a reload. Only question IDs present in both the loaded question list
// and the mirror are restored; each restored answer is coerced to the
// question's declared variant. Unparseable snapshots are ignored wholesale —
// a stale mirror must not block a fresh attempt.
func (s *Session) SeedFromMirror(raw string) {
	var stored map[int64]model.Answer
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return
	}

	for id, a := range stored {
		idx, ok := s.byID[id]
		if !ok {
			continue
		}
		coerced, err := a.Coerced(s.questions[idx].Type)
		if err != nil {
			continue
		}
		s.answers[id] = coerced
	}
}
