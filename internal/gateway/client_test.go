package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/model"
)

func testClient(t *testing.T, handler http.Handler, retries int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, retries, zerolog.Nop()), srv
}

func TestListSubmissions(t *testing.T) {
	var gotToken, gotTestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/getTestQuestionSubmissions", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		gotTestID = r.URL.Query().Get("test_id")
		fmt.Fprint(w, `{"submissions":[{"question_id":11},{"question_id":7},{"question_id":23}]}`)
	})

	c, _ := testClient(t, mux, 0)
	ids, err := c.ListSubmissions(context.Background(), SessionContext{Token: "stu-token"}, 42)
	if err != nil {
		t.Fatal(err)
	}

	if gotToken != "stu-token" {
		t.Errorf("token header = %q, want stu-token", gotToken)
	}
	if gotTestID != "42" {
		t.Errorf("test_id = %q, want 42", gotTestID)
	}
	want := []int64{11, 7, 23}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d (order must be preserved)", i, ids[i], want[i])
		}
	}
}

func TestFetchQuestion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/setQuestionStatusUnanswered", func(w http.ResponseWriter, r *http.Request) {
		qid := r.URL.Query().Get("question_id")
		if qid == "666" {
			fmt.Fprint(w, `{"question":{"id":666,"name":"Bad","type":"essay"}}`)
			return
		}
		fmt.Fprint(w, `{"question":{"id":11,"name":"Pick","type":"radio","options":[{"id":1,"option_text":"A","option_image":null}]}}`)
	})

	c, _ := testClient(t, mux, 0)

	q, err := c.FetchQuestion(context.Background(), SessionContext{}, 42, 11)
	if err != nil {
		t.Fatal(err)
	}
	if q.Type != model.QuestionTypeSingleChoice || len(q.Options) != 1 {
		t.Errorf("question = %+v", q)
	}

	if _, err := c.FetchQuestion(context.Background(), SessionContext{}, 42, 666); err == nil {
		t.Error("expected error for unsupported question type")
	}
}

func TestSaveAnswerWirePayload(t *testing.T) {
	type record struct {
		QuestionID int64            `json:"question_id"`
		OptionID   *int64           `json:"option_id"`
		OptionIDs  *json.RawMessage `json:"option_ids"`
		Text       *string          `json:"text"`
	}
	var got struct {
		TestID  int64    `json:"test_id"`
		Answers []record `json:"answers"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/submitTest", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		fmt.Fprint(w, `{"pendingsubmission":{"unanswered":0}}`)
	})
	c, _ := testClient(t, mux, 0)

	t.Run("single answer nulls other variants", func(t *testing.T) {
		outcome, err := c.SaveAnswer(context.Background(), SessionContext{}, 42, 11, model.SingleAnswer(3))
		if err != nil {
			t.Fatal(err)
		}
		if outcome.AllAnswered {
			t.Error("unanswered=0 must not flag all-answered")
		}

		if got.TestID != 42 || len(got.Answers) != 1 {
			t.Fatalf("payload = %+v", got)
		}
		rec := got.Answers[0]
		if rec.QuestionID != 11 || rec.OptionID == nil || *rec.OptionID != 3 {
			t.Errorf("record = %+v", rec)
		}
		if rec.Text != nil {
			t.Error("text should be null for a single answer")
		}
	})

	t.Run("untagged answer rejected before the wire", func(t *testing.T) {
		if _, err := c.SaveAnswer(context.Background(), SessionContext{}, 42, 11, model.Answer{}); err == nil {
			t.Error("expected error for untagged answer")
		}
	})
}

func TestSaveAnswerAllAnsweredFlag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/submitTest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pendingsubmission":{"unanswered":1}}`)
	})
	c, _ := testClient(t, mux, 0)

	outcome, err := c.SaveAnswer(context.Background(), SessionContext{}, 42, 11, model.TextAnswer("done"))
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.AllAnswered {
		t.Error("unanswered=1 should flag all-answered")
	}
}

func TestComputeFinalResultRetries(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/submitFinalResult", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"result":{"total_questions":5,"final_score":"80","final_result":"PASS"}}`)
	})
	c, _ := testClient(t, mux, 2)

	res, err := c.ComputeFinalResult(context.Background(), SessionContext{}, 42)
	if err != nil {
		t.Fatal(err)
	}
	if res.FinalResult != "PASS" || res.TotalQuestions != 5 {
		t.Errorf("result = %+v", res)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestComputeFinalResultGivesUp(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testsubmission/submitFinalResult", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c, _ := testClient(t, mux, 1)

	if _, err := c.ComputeFinalResult(context.Background(), SessionContext{}, 42); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2 (initial + one retry)", got)
	}
}
