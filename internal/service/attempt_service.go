package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/config"
	"github.com/quizdesk/testplayer/internal/gateway"
	"github.com/quizdesk/testplayer/internal/mirror"
	"github.com/quizdesk/testplayer/internal/model"
	"github.com/quizdesk/testplayer/internal/session"
)

// AttemptService owns all live attempts: it loads them from the scoring API,
// runs their countdowns, routes answers and navigation into the state
// machine, and drives the exactly-once completion path shared by manual
// submission, last-question Next, upstream all-answered chaining and timer
// expiry.
type AttemptService struct {
	gw    *gateway.Client
	store mirror.Store
	log   zerolog.Logger

	// tickInterval is one second in production; tests shrink it.
	tickInterval time.Duration
	// completionTimeout bounds the background forced-completion call fired
	// by the countdown, which has no request context to inherit.
	completionTimeout time.Duration

	mu       sync.RWMutex
	attempts map[int64]*attempt // keyed by test ID, one live attempt each
}

// attempt pairs a session with its countdown and caller identity. All state
// access goes through mu; the completion flags inside the session make the
// terminal transition idempotent, the mutex merely serializes.
type attempt struct {
	mu        sync.Mutex
	sess      *session.Session
	sctx      gateway.SessionContext
	countdown *session.Countdown
	touched   time.Time
}

// NewAttemptService creates the attempt registry.
func NewAttemptService(gw *gateway.Client, store mirror.Store, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		gw:                gw,
		store:             store,
		log:               log.With().Str("component", "attempt_service").Logger(),
		tickInterval:      time.Second,
		completionTimeout: 30 * time.Second,
		attempts:          make(map[int64]*attempt),
	}
}

// SetTickInterval overrides the countdown tick for tests.
func (s *AttemptService) SetTickInterval(d time.Duration) {
	s.tickInterval = d
}

// Start loads the attempt for a test and registers it. The whole load aborts
// on any upstream failure — no partial attempt is entered. Restarting a test
// that already has a live attempt rebuilds it: answers come back from the
// durable mirror, the clock restarts from the configured duration (observed
// reload behavior of the flow this player replaces).
func (s *AttemptService) Start(ctx context.Context, sctx gateway.SessionContext, req model.StartAttemptRequest) (model.AttemptState, error) {
	minutes, err := s.resolveDuration(ctx, req.DurationMinutes)
	if err != nil {
		return model.AttemptState{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	ids, err := s.gw.ListSubmissions(ctx, sctx, req.TestID)
	if err != nil {
		return model.AttemptState{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	questions := make([]model.Question, 0, len(ids))
	for _, qid := range ids {
		// Fetching also marks the question unanswered server-side, so this
		// runs exactly once per question per load.
		q, err := s.gw.FetchQuestion(ctx, sctx, req.TestID, qid)
		if err != nil {
			return model.AttemptState{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		questions = append(questions, q)
	}

	sess, err := session.New(req.TestID, questions, minutes*60)
	if err != nil {
		return model.AttemptState{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	// Recover answers from a previous run of this attempt, if any survive.
	raw, err := s.store.Get(ctx, config.MirrorKey.AnswersKey(req.TestID))
	switch {
	case err == nil:
		sess.SeedFromMirror(raw)
	case !errors.Is(err, mirror.ErrNotFound):
		s.log.Warn().Err(err).Int64("test_id", req.TestID).Msg("Mirror read failed, starting clean")
	}

	att := &attempt{
		sess:      sess,
		sctx:      sctx,
		countdown: session.NewCountdown(s.tickInterval),
		touched:   time.Now(),
	}

	s.mu.Lock()
	if old, ok := s.attempts[req.TestID]; ok {
		old.countdown.Stop()
	}
	s.attempts[req.TestID] = att
	s.mu.Unlock()

	go s.runCountdown(req.TestID, att)

	s.log.Info().
		Int64("test_id", req.TestID).
		Int("questions", len(questions)).
		Int("duration_minutes", minutes).
		Msg("Attempt started")

	att.mu.Lock()
	defer att.mu.Unlock()
	return sess.Snapshot(), nil
}

// resolveDuration prefers the caller-supplied value (persisting it for
// rebuilds) and falls back to the stored one. The duration comes from the
// dashboard that launched the test, never from the question payload.
func (s *AttemptService) resolveDuration(ctx context.Context, requested int) (int, error) {
	if requested > 0 {
		if err := s.store.Set(ctx, config.MirrorKey.DurationKey(), strconv.Itoa(requested)); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist configured duration")
		}
		return requested, nil
	}

	raw, err := s.store.Get(ctx, config.MirrorKey.DurationKey())
	if err != nil {
		return 0, fmt.Errorf("configured duration missing: %v", err)
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("stored duration %q is not a positive minute count", raw)
	}
	return minutes, nil
}

// State returns the current snapshot of a live attempt.
func (s *AttemptService) State(testID int64) (model.AttemptState, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return model.AttemptState{}, err
	}
	att.mu.Lock()
	defer att.mu.Unlock()
	return att.sess.Snapshot(), nil
}

// SubmitAnswer replaces the answer of the currently visible question and
// write-through persists the whole answer map to the durable mirror, so a
// reload loses navigation position at most, never answer content.
func (s *AttemptService) SubmitAnswer(ctx context.Context, testID int64, req model.SubmitAnswerRequest) (model.AttemptState, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return model.AttemptState{}, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	att.touched = time.Now()

	ans, err := s.tagPayload(att.sess, req)
	if err != nil {
		return model.AttemptState{}, err
	}
	if err := att.sess.SetAnswer(req.QuestionID, ans); err != nil {
		return model.AttemptState{}, err
	}

	s.persistMirror(ctx, att.sess)
	return att.sess.Snapshot(), nil
}

// tagPayload classifies an inbound tag-less answer payload. An empty payload
// clears the answer using the question's own variant; a populated one keeps
// the variant it populated so a type mismatch is caught by SetAnswer rather
// than papered over.
func (s *AttemptService) tagPayload(sess *session.Session, req model.SubmitAnswerRequest) (model.Answer, error) {
	kind, err := req.Answer.InferKind()
	if err != nil {
		return model.Answer{}, fmt.Errorf("%w: %v", session.ErrValidationMismatch, err)
	}

	ans := *req.Answer
	if kind == "" {
		q, _ := sess.Current()
		empty, err := model.EmptyAnswer(q.Type)
		if err != nil {
			return model.Answer{}, err
		}
		return empty, nil
	}
	ans.Kind = kind
	if ans.Kind == model.AnswerKindMultiple {
		// Normalize to set semantics.
		ans = model.MultipleAnswer(ans.OptionIDs...)
	}
	return ans, nil
}

// Next saves the current answer upstream when one exists, then advances.
// A failed save leaves the index unchanged and the answer in place — the
// user retries by navigating again. Reaching the last question, or the API
// reporting every question answered, flows into the completion path.
func (s *AttemptService) Next(ctx context.Context, testID int64) (model.AttemptState, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return model.AttemptState{}, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	att.touched = time.Now()

	if att.sess.Terminal() {
		return model.AttemptState{}, session.ErrTerminal
	}

	q, ans := att.sess.Current()
	allAnswered := false
	if !ans.IsEmpty() {
		outcome, err := s.gw.SaveAnswer(ctx, att.sctx, testID, q.ID, ans)
		if err != nil {
			return model.AttemptState{}, fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		allAnswered = outcome.AllAnswered
	}

	last, err := att.sess.Advance()
	if err != nil {
		return model.AttemptState{}, err
	}

	if last || allAnswered {
		// The answer just left was already saved; completion must not save
		// it a second time.
		if err := s.completeLocked(ctx, testID, att, false); err != nil {
			return model.AttemptState{}, err
		}
	}

	return att.sess.Snapshot(), nil
}

// Previous moves back one question. It never saves — the observed asymmetry
// of the flow this player replaces, kept deliberately.
func (s *AttemptService) Previous(testID int64) (model.AttemptState, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return model.AttemptState{}, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	att.touched = time.Now()

	if err := att.sess.Retreat(); err != nil {
		return model.AttemptState{}, err
	}
	return att.sess.Snapshot(), nil
}

// Jump makes the question at index current. Like Previous it never saves;
// an edited answer left behind stays local until a forward save or the
// forced-completion sweep.
func (s *AttemptService) Jump(testID int64, index int) (model.AttemptState, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return model.AttemptState{}, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	att.touched = time.Now()

	if err := att.sess.JumpTo(index); err != nil {
		return model.AttemptState{}, err
	}
	return att.sess.Snapshot(), nil
}

// Submit runs the completion path on user request. Safe to call again after
// a blocking final-result failure; once terminal it simply returns the
// already-obtained result.
func (s *AttemptService) Submit(ctx context.Context, testID int64) (*model.FinalResult, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return nil, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	att.touched = time.Now()

	if err := s.completeLocked(ctx, testID, att, true); err != nil {
		return nil, err
	}
	res, ok := att.sess.Result()
	if !ok {
		return nil, ErrResultPending
	}
	return res, nil
}

// Result returns the terminal scorecard.
func (s *AttemptService) Result(testID int64) (*model.FinalResult, error) {
	att, err := s.lookup(testID)
	if err != nil {
		return nil, err
	}

	att.mu.Lock()
	defer att.mu.Unlock()

	res, ok := att.sess.Result()
	if !ok {
		return nil, ErrResultPending
	}
	return res, nil
}

// completeLocked is the single completion routine. Caller holds att.mu.
// The BeginCompletion guard makes it a no-op when the attempt is already
// terminal or another completion is in flight, so timer expiry and manual
// submission in the same instant produce exactly one final-result call.
func (s *AttemptService) completeLocked(ctx context.Context, testID int64, att *attempt, saveCurrent bool) error {
	if !att.sess.BeginCompletion() {
		return nil
	}

	if saveCurrent {
		q, ans := att.sess.Current()
		if !ans.IsEmpty() {
			if _, err := s.gw.SaveAnswer(ctx, att.sctx, testID, q.ID, ans); err != nil {
				att.sess.FailCompletion()
				return fmt.Errorf("%w: %v", ErrSaveFailed, err)
			}
		}
	}

	res, err := s.gw.ComputeFinalResult(ctx, att.sctx, testID)
	if err != nil {
		att.sess.FailCompletion()
		return fmt.Errorf("%w: %v", ErrResultFailed, err)
	}

	att.sess.CompleteWith(res)
	att.countdown.Stop()

	// Terminal cleanup: the mirror and the stored duration go away with the
	// attempt. Failures here only cost a later stale-mirror coercion.
	if err := s.store.Delete(ctx, config.MirrorKey.AnswersKey(testID)); err != nil {
		s.log.Warn().Err(err).Int64("test_id", testID).Msg("Mirror cleanup failed")
	}
	if err := s.store.Delete(ctx, config.MirrorKey.DurationKey()); err != nil {
		s.log.Warn().Err(err).Msg("Duration cleanup failed")
	}

	s.log.Info().
		Int64("test_id", testID).
		Str("final_result", res.FinalResult).
		Msg("Attempt completed")
	return nil
}

// runCountdown drives one attempt's clock. When the clock strikes zero on a
// live attempt the forced-completion path runs with the same routine as a
// manual submit.
func (s *AttemptService) runCountdown(testID int64, att *attempt) {
	att.countdown.Run(func() bool {
		att.mu.Lock()
		zero := att.sess.Tick()
		terminal := att.sess.Terminal()
		att.mu.Unlock()

		if zero {
			s.forceComplete(testID, att)
			return true
		}
		return terminal
	})
}

// forceComplete is the timer-expiry branch of the completion path: save the
// in-progress answer if present, then compute the final result. A failure
// leaves the attempt live at zero seconds; the client unblocks via Submit.
func (s *AttemptService) forceComplete(testID int64, att *attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), s.completionTimeout)
	defer cancel()

	att.mu.Lock()
	defer att.mu.Unlock()

	if err := s.completeLocked(ctx, testID, att, true); err != nil {
		s.log.Error().Err(err).Int64("test_id", testID).Msg("Forced completion failed, awaiting manual retry")
	}
}

// persistMirror write-through persists the answer map. Mirror trouble is
// advisory: the in-memory store still holds the answer.
func (s *AttemptService) persistMirror(ctx context.Context, sess *session.Session) {
	raw, err := sess.MarshalAnswers()
	if err != nil {
		s.log.Error().Err(err).Int64("test_id", sess.TestID()).Msg("Answer map serialization failed")
		return
	}
	if err := s.store.Set(ctx, config.MirrorKey.AnswersKey(sess.TestID()), raw); err != nil {
		s.log.Warn().Err(err).Int64("test_id", sess.TestID()).Msg("Mirror write failed")
	}
}

func (s *AttemptService) lookup(testID int64) (*attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	att, ok := s.attempts[testID]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return att, nil
}

// Reap evicts terminal attempts and attempts idle past the grace period,
// stopping their countdowns. Returns the number evicted. Called periodically
// by the reaper worker.
func (s *AttemptService) Reap(grace time.Duration) int {
	cutoff := time.Now().Add(-grace)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for testID, att := range s.attempts {
		att.mu.Lock()
		stale := att.sess.Terminal() || att.touched.Before(cutoff)
		att.mu.Unlock()

		if stale {
			att.countdown.Stop()
			delete(s.attempts, testID)
			evicted++
		}
	}
	return evicted
}

// Live reports the number of registered attempts. Used by the health
// endpoint and the reaper's log line.
func (s *AttemptService) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}
