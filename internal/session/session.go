// Package session implements the timed test-attempt state machine: the
// ordered question list, the answer map, the seen-set and current index, the
// remaining-seconds clock and the exactly-once completion guard. The package
// is pure state; upstream saves and mirror writes are orchestrated by the
// service layer.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizdesk/testplayer/internal/model"
)

var (
	// ErrNoQuestions means the loader produced an empty question list; no
	// attempt can be entered.
	ErrNoQuestions = errors.New("session: no questions loaded")
	// ErrTerminal means the attempt already has its final result; no further
	// mutation or ticking is meaningful.
	ErrTerminal = errors.New("session: attempt is terminal")
	// ErrValidationMismatch means an answer's variant does not match the
	// question's declared type. Checked before every store and save.
	ErrValidationMismatch = errors.New("session: answer variant does not match question type")
	// ErrNotCurrentQuestion means an answer arrived for a question other than
	// the one currently visible.
	ErrNotCurrentQuestion = errors.New("session: answer is not for the current question")
	// ErrIndexOutOfRange rejects a jump outside [0, len(questions)).
	ErrIndexOutOfRange = errors.New("session: question index out of range")
)

// Session is the state of one live attempt. It is not safe for concurrent
// use; callers serialize access (the service holds one mutex per attempt).
type Session struct {
	testID    int64
	questions []model.Question
	byID      map[int64]int // question ID → index

	answers map[int64]model.Answer
	seen    map[int64]struct{}
	index   int

	remaining int
	terminal  bool
	// completing guards the completion path: at most one in-flight
	// final-result computation, reset on failure so the client can retry.
	completing bool

	result *model.FinalResult
}

// New creates an attempt over the loaded questions with the configured
// duration. Every question gets an empty answer of its declared variant and
// the first question counts as seen.
func New(testID int64, questions []model.Question, configuredSeconds int) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if configuredSeconds <= 0 {
		return nil, fmt.Errorf("session: configured duration must be positive, got %d", configuredSeconds)
	}

	s := &Session{
		testID:    testID,
		questions: questions,
		byID:      make(map[int64]int, len(questions)),
		answers:   make(map[int64]model.Answer, len(questions)),
		seen:      make(map[int64]struct{}),
		remaining: configuredSeconds,
	}

	for i, q := range questions {
		if _, dup := s.byID[q.ID]; dup {
			return nil, fmt.Errorf("session: duplicate question ID %d", q.ID)
		}
		s.byID[q.ID] = i

		empty, err := model.EmptyAnswer(q.Type)
		if err != nil {
			return nil, fmt.Errorf("session: question %d: %w", q.ID, err)
		}
		s.answers[q.ID] = empty
	}

	s.seen[questions[0].ID] = struct{}{}
	return s, nil
}

// TestID returns the attempt's test identifier.
func (s *Session) TestID() int64 {
	return s.testID
}

// Current returns the visible question and its answer.
func (s *Session) Current() (model.Question, model.Answer) {
	q := s.questions[s.index]
	return q, s.answers[q.ID]
}

// Index returns the current question index.
func (s *Session) Index() int {
	return s.index
}

// AtLast reports whether the visible question is the final one.
func (s *Session) AtLast() bool {
	return s.index == len(s.questions)-1
}

// Terminal reports whether the final result has been obtained.
func (s *Session) Terminal() bool {
	return s.terminal
}

// Remaining returns the remaining seconds on the attempt clock.
func (s *Session) Remaining() int {
	return s.remaining
}

// Tick decrements the clock by one second while the attempt is live.
// It returns true exactly when the clock strikes zero on a live attempt,
// which is the signal to run the forced-completion path.
func (s *Session) Tick() bool {
	if s.terminal || s.remaining <= 0 {
		return false
	}
	s.remaining--
	return s.remaining == 0
}

// BeginCompletion claims the completion path. It returns false when the
// attempt is already terminal or a completion is in flight, so the path runs
// at most once even when timer expiry and manual submission coincide.
func (s *Session) BeginCompletion() bool {
	if s.terminal || s.completing {
		return false
	}
	s.completing = true
	return true
}

// FailCompletion releases the completion claim after a failed final-result
// call, allowing a retry.
func (s *Session) FailCompletion() {
	s.completing = false
}

// CompleteWith records the final result and freezes the attempt.
func (s *Session) CompleteWith(result model.FinalResult) {
	s.result = &result
	s.terminal = true
	s.completing = false
}

// Result returns the final scorecard once terminal.
func (s *Session) Result() (*model.FinalResult, bool) {
	if !s.terminal || s.result == nil {
		return nil, false
	}
	return s.result, true
}

// Snapshot builds the client-facing state view. Questions are sanitized so
// correctness flags cannot leak into a live attempt.
func (s *Session) Snapshot() model.AttemptState {
	questions := make([]model.Question, len(s.questions))
	attempted := 0
	for i := range s.questions {
		questions[i] = s.questions[i].Sanitized()
		if !s.answers[s.questions[i].ID].IsEmpty() {
			attempted++
		}
	}

	answers := make(map[int64]model.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	seen := make([]int64, 0, len(s.seen))
	for _, q := range s.questions {
		if _, ok := s.seen[q.ID]; ok {
			seen = append(seen, q.ID)
		}
	}

	return model.AttemptState{
		TestID:       s.testID,
		Questions:    questions,
		CurrentIndex: s.index,
		Answers:      answers,
		Seen:         seen,
		Attempted:    attempted,
		Remaining:    s.remaining,
		Terminal:     s.terminal,
	}
}

// MarshalAnswers serializes the full answer map for the durable mirror.
func (s *Session) MarshalAnswers() (string, error) {
	raw, err := json.Marshal(s.answers)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
