// Package gateway is the HTTP client for the external scoring API. The API
// owns question payloads, per-answer records and final score computation;
// the player only preserves wire compatibility with it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/model"
)

// SessionContext carries the caller identity for upstream calls. The token is
// the student's scoring-API token, handed over explicitly per call instead of
// being read from ambient state.
type SessionContext struct {
	Token string
}

// Client talks to the scoring API.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	log     zerolog.Logger
}

// NewClient creates a scoring API client. retries bounds transport-level
// retries of the idempotent final-result call; saves are never retried here
// (the caller owns save-retry semantics).
func NewClient(baseURL string, timeout time.Duration, retries int, log zerolog.Logger) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		log:     log.With().Str("component", "scoring_gateway").Logger(),
	}
}

// ListSubmissions returns the ordered question IDs assigned to the attempt.
// GET /api/testsubmission/getTestQuestionSubmissions?test_id=
func (c *Client) ListSubmissions(ctx context.Context, sctx SessionContext, testID int64) ([]int64, error) {
	var resp struct {
		Submissions []struct {
			QuestionID int64 `json:"question_id"`
		} `json:"submissions"`
	}

	q := url.Values{"test_id": {strconv.FormatInt(testID, 10)}}
	if err := c.get(ctx, sctx, "/api/testsubmission/getTestQuestionSubmissions", q, &resp); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	ids := make([]int64, 0, len(resp.Submissions))
	for _, s := range resp.Submissions {
		ids = append(ids, s.QuestionID)
	}
	return ids, nil
}

// FetchQuestion retrieves one question's full payload. The endpoint also
// marks the question "seen/unanswered" server-side, which is why the loader
// calls it exactly once per question.
// GET /api/testsubmission/setQuestionStatusUnanswered?test_id=&question_id=
func (c *Client) FetchQuestion(ctx context.Context, sctx SessionContext, testID, questionID int64) (model.Question, error) {
	var resp struct {
		Question model.Question `json:"question"`
	}

	q := url.Values{
		"test_id":     {strconv.FormatInt(testID, 10)},
		"question_id": {strconv.FormatInt(questionID, 10)},
	}
	if err := c.get(ctx, sctx, "/api/testsubmission/setQuestionStatusUnanswered", q, &resp); err != nil {
		return model.Question{}, fmt.Errorf("fetch question %d: %w", questionID, err)
	}

	if !resp.Question.Type.Valid() {
		return model.Question{}, fmt.Errorf("fetch question %d: unsupported type %q", questionID, resp.Question.Type)
	}
	return resp.Question, nil
}

// answerRecord is the wire shape of one saved answer. Unused variant fields
// are serialized as null, matching the API contract.
type answerRecord struct {
	QuestionID int64   `json:"question_id"`
	OptionID   *int64  `json:"option_id"`
	OptionIDs  []int64 `json:"option_ids"`
	Text       *string `json:"text"`
}

// SaveOutcome reports side information from a save call. AllAnswered means
// the API now has a record for every question of the attempt and the final
// result can be computed.
type SaveOutcome struct {
	AllAnswered bool
}

// SaveAnswer POSTs one answer record for the attempt.
// POST /api/testsubmission/submitTest
func (c *Client) SaveAnswer(ctx context.Context, sctx SessionContext, testID, questionID int64, ans model.Answer) (SaveOutcome, error) {
	record := answerRecord{QuestionID: questionID}
	switch ans.Kind {
	case model.AnswerKindSingle:
		record.OptionID = ans.OptionID
	case model.AnswerKindMultiple:
		record.OptionIDs = ans.OptionIDs
	case model.AnswerKindText:
		record.Text = ans.Text
	default:
		return SaveOutcome{}, fmt.Errorf("save answer: answer has no variant tag")
	}

	payload := struct {
		TestID  int64          `json:"test_id"`
		Answers []answerRecord `json:"answers"`
	}{TestID: testID, Answers: []answerRecord{record}}

	var resp struct {
		PendingSubmission struct {
			Unanswered int `json:"unanswered"`
		} `json:"pendingsubmission"`
	}

	if err := c.post(ctx, sctx, "/api/testsubmission/submitTest", payload, &resp); err != nil {
		return SaveOutcome{}, fmt.Errorf("save answer: %w", err)
	}

	// unanswered == 1 is the API's "everything answered" flag.
	return SaveOutcome{AllAnswered: resp.PendingSubmission.Unanswered == 1}, nil
}

// ComputeFinalResult asks the API for the scored summary. The call is
// idempotent server-side, so transport failures are retried up to the
// configured bound before giving up.
// GET /api/testsubmission/submitFinalResult?test_id=
func (c *Client) ComputeFinalResult(ctx context.Context, sctx SessionContext, testID int64) (model.FinalResult, error) {
	q := url.Values{"test_id": {strconv.FormatInt(testID, 10)}}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Warn().
				Int64("test_id", testID).
				Int("attempt", attempt).
				Err(lastErr).
				Msg("Retrying final result call")
			select {
			case <-ctx.Done():
				return model.FinalResult{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}

		var resp struct {
			Result model.FinalResult `json:"result"`
		}
		if err := c.get(ctx, sctx, "/api/testsubmission/submitFinalResult", q, &resp); err != nil {
			lastErr = err
			continue
		}
		return resp.Result, nil
	}
	return model.FinalResult{}, fmt.Errorf("compute final result: %w", lastErr)
}

func (c *Client) get(ctx context.Context, sctx SessionContext, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, sctx, out)
}

func (c *Client) post(ctx context.Context, sctx SessionContext, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, sctx, out)
}

func (c *Client) do(req *http.Request, sctx SessionContext, out interface{}) error {
	req.Header.Set("token", sctx.Token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
