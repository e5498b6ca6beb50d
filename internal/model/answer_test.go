package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestKindForType(t *testing.T) {
	tests := []struct {
		name    string
		qtype   QuestionType
		want    AnswerKind
		wantErr bool
	}{
		{"radio maps to single", QuestionTypeSingleChoice, AnswerKindSingle, false},
		{"multiple_choice maps to multiple", QuestionTypeMultipleChoice, AnswerKindMultiple, false},
		{"text maps to text", QuestionTypeText, AnswerKindText, false},
		{"unknown type rejected", QuestionType("essay"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindForType(tt.qtype)
			if (err != nil) != tt.wantErr {
				t.Fatalf("KindForType(%q) error = %v, wantErr %v", tt.qtype, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("KindForType(%q) = %q, want %q", tt.qtype, got, tt.want)
			}
		})
	}
}

func TestAnswerIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		ans  Answer
		want bool
	}{
		{"empty single", Answer{Kind: AnswerKindSingle}, true},
		{"populated single", SingleAnswer(3), false},
		{"empty multiple", Answer{Kind: AnswerKindMultiple}, true},
		{"populated multiple", MultipleAnswer(1, 2), false},
		{"nil text", Answer{Kind: AnswerKindText}, true},
		{"empty string text counts as unanswered", TextAnswer(""), true},
		{"populated text", TextAnswer("photosynthesis"), false},
		{"untagged", Answer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ans.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMultipleAnswerDeduplicates(t *testing.T) {
	ans := MultipleAnswer(3, 1, 3, 2, 1)
	want := []int64{3, 1, 2}
	if !reflect.DeepEqual(ans.OptionIDs, want) {
		t.Errorf("MultipleAnswer option IDs = %v, want %v", ans.OptionIDs, want)
	}
}

func TestAnswerValidate(t *testing.T) {
	text := "hello"
	one := int64(1)

	tests := []struct {
		name    string
		ans     Answer
		wantErr bool
	}{
		{"clean single", SingleAnswer(1), false},
		{"clean multiple", MultipleAnswer(1, 2), false},
		{"clean text", TextAnswer("x"), false},
		{"single with text content", Answer{Kind: AnswerKindSingle, OptionID: &one, Text: &text}, true},
		{"multiple with option_id content", Answer{Kind: AnswerKindMultiple, OptionID: &one}, true},
		{"text with option_ids content", Answer{Kind: AnswerKindText, Text: &text, OptionIDs: []int64{1}}, true},
		{"no tag", Answer{OptionID: &one}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ans.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswerMarshalEmitsOnlyTaggedVariant(t *testing.T) {
	one := int64(1)
	text := "stale"

	// Foreign variant content must never reach the wire even if present.
	dirty := Answer{Kind: AnswerKindSingle, OptionID: &one, Text: &text}

	raw, err := json.Marshal(dirty)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if string(decoded["optionId"]) != "1" {
		t.Errorf("optionId = %s, want 1", decoded["optionId"])
	}
	if string(decoded["text"]) != "null" {
		t.Errorf("text = %s, want null", decoded["text"])
	}
	if _, ok := decoded["optionIds"]; ok {
		t.Error("optionIds should be omitted for a single answer")
	}
}

func TestAnswerRoundTripThroughMirrorFormat(t *testing.T) {
	tests := []struct {
		name  string
		qtype QuestionType
		ans   Answer
	}{
		{"single", QuestionTypeSingleChoice, SingleAnswer(7)},
		{"multiple", QuestionTypeMultipleChoice, MultipleAnswer(2, 5)},
		{"text", QuestionTypeText, TextAnswer("mitochondria")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.ans)
			if err != nil {
				t.Fatal(err)
			}

			var restored Answer
			if err := json.Unmarshal(raw, &restored); err != nil {
				t.Fatal(err)
			}
			if restored.Kind != "" {
				t.Errorf("deserialized answer should be untagged, got kind %q", restored.Kind)
			}

			coerced, err := restored.Coerced(tt.qtype)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(coerced, tt.ans) {
				t.Errorf("round trip = %+v, want %+v", coerced, tt.ans)
			}
		})
	}
}

func TestAnswerCoercedDiscardsForeignContent(t *testing.T) {
	one := int64(1)
	text := "leftover"
	dirty := Answer{OptionID: &one, Text: &text}

	coerced, err := dirty.Coerced(QuestionTypeText)
	if err != nil {
		t.Fatal(err)
	}
	if coerced.Kind != AnswerKindText {
		t.Errorf("kind = %q, want %q", coerced.Kind, AnswerKindText)
	}
	if coerced.OptionID != nil {
		t.Error("option ID should be discarded when coercing to text")
	}
	if coerced.Text == nil || *coerced.Text != "leftover" {
		t.Errorf("text content lost: %v", coerced.Text)
	}
}

func TestInferKind(t *testing.T) {
	one := int64(1)
	text := "x"

	tests := []struct {
		name    string
		ans     Answer
		want    AnswerKind
		wantErr bool
	}{
		{"empty payload clears", Answer{}, "", false},
		{"single", Answer{OptionID: &one}, AnswerKindSingle, false},
		{"multiple", Answer{OptionIDs: []int64{1}}, AnswerKindMultiple, false},
		{"text", Answer{Text: &text}, AnswerKindText, false},
		{"two variants populated", Answer{OptionID: &one, Text: &text}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ans.InferKind()
			if (err != nil) != tt.wantErr {
				t.Fatalf("InferKind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("InferKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
