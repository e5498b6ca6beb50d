package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/testplayer/internal/gateway"
	"github.com/quizdesk/testplayer/internal/model"
	"github.com/quizdesk/testplayer/internal/response"
	"github.com/quizdesk/testplayer/internal/service"
	"github.com/quizdesk/testplayer/internal/session"
	"github.com/quizdesk/testplayer/internal/validator"
)

// AttemptHandler exposes the timed attempt flow: start, answer, navigation,
// submission and the terminal scorecard.
type AttemptHandler struct {
	attempts *service.AttemptService
	tokens   *service.TokenService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, tokens *service.TokenService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts, tokens: tokens}
}

// StartAttempt godoc
// POST /api/v1/attempts
// Loads the attempt from the scoring API and returns an attempt token plus
// the initial state. The scoring-API token arrives in the "token" header and
// is held only in memory for the attempt's lifetime.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	upstream := c.GetHeader("token")
	if upstream == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Start(c.Request.Context(), gateway.SessionContext{Token: upstream}, req)
	if err != nil {
		failAttempt(c, err)
		return
	}

	token, err := h.tokens.GenerateAttemptToken(req.TestID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"attempt_token": token,
		"state":         state,
	})
}

// GetState godoc
// GET /api/v1/attempts/:test_id/state
func (h *AttemptHandler) GetState(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	state, err := h.attempts.State(testID)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// SubmitAnswer godoc
// PUT /api/v1/attempts/:test_id/answer
// Replaces the answer of the currently visible question and write-through
// persists the mirror. Does not touch the upstream API.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.SubmitAnswer(c.Request.Context(), testID, req)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Next godoc
// POST /api/v1/attempts/:test_id/next
// Saves the current answer upstream if present, then advances. On the last
// question this flows into the completion path.
func (h *AttemptHandler) Next(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	state, err := h.attempts.Next(c.Request.Context(), testID)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Previous godoc
// POST /api/v1/attempts/:test_id/previous
func (h *AttemptHandler) Previous(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	state, err := h.attempts.Previous(testID)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Jump godoc
// POST /api/v1/attempts/:test_id/jump
func (h *AttemptHandler) Jump(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Jump(testID, *req.Index)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/attempts/:test_id/submit
// Manual completion, and the retry affordance after a blocking final-result
// failure. Idempotent once terminal.
func (h *AttemptHandler) Submit(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	result, err := h.attempts.Submit(c.Request.Context(), testID)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"result":    result,
		"scorecard": result.Scorecard(),
	})
}

// GetResult godoc
// GET /api/v1/attempts/:test_id/result
func (h *AttemptHandler) GetResult(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	result, err := h.attempts.Result(testID)
	if err != nil {
		failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"result":    result,
		"scorecard": result.Scorecard(),
	})
}

func parseTestID(c *gin.Context) (int64, bool) {
	testID, err := strconv.ParseInt(c.Param("test_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return testID, true
}

// failAttempt maps flow errors onto the response taxonomy. Load failures are
// fatal to attempt start, save failures recoverable, final-result failures
// blocking-but-retriable.
func failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrLoadFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrLoadFailed)
	case errors.Is(err, service.ErrSaveFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrSaveFailed)
	case errors.Is(err, service.ErrResultFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrResultFailed)
	case errors.Is(err, service.ErrResultPending):
		response.Fail(c, http.StatusConflict, response.ErrResultPending)
	case errors.Is(err, session.ErrTerminal):
		response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
	case errors.Is(err, session.ErrValidationMismatch):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidationMismatch)
	case errors.Is(err, session.ErrNotCurrentQuestion):
		response.FailWithFields(c, http.StatusConflict, response.ErrValidation,
			map[string]string{"question_id": "not the currently visible question"})
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
