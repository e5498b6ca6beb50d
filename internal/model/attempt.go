package model

// StartAttemptRequest is the payload for opening (or rebuilding) an attempt.
// DurationMinutes is supplied by the dashboard that launched the test; when
// omitted, the previously stored duration value is used.
type StartAttemptRequest struct {
	TestID          int64 `json:"test_id" binding:"required,min=1"`
	DurationMinutes int   `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
}

// SubmitAnswerRequest replaces the answer of the currently visible question.
// The answer carries whichever variant field applies; the variant must match
// the question's declared type.
type SubmitAnswerRequest struct {
	QuestionID int64   `json:"question_id" binding:"required,min=1"`
	Answer     *Answer `json:"answer" binding:"required"`
}

// JumpRequest moves the visible question to an absolute index (sidebar grid).
type JumpRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// AttemptState is the client-facing snapshot of a live attempt.
// Questions are sanitized; correctness flags never appear here.
type AttemptState struct {
	TestID       int64            `json:"test_id"`
	Questions    []Question       `json:"questions"`
	CurrentIndex int              `json:"current_index"`
	Answers      map[int64]Answer `json:"answers"`
	Seen         []int64          `json:"seen"`
	Attempted    int              `json:"attempted"`
	Remaining    int              `json:"remaining_seconds"`
	Terminal     bool             `json:"terminal"`
}
