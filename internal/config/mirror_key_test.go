package config

import "testing"

func TestMirrorKeys(t *testing.T) {
	if got := MirrorKey.AnswersKey(42); got != "test_answers_42" {
		t.Errorf("AnswersKey(42) = %q, want test_answers_42", got)
	}
	// The duration key is deliberately fixed, not namespaced per test.
	if got := MirrorKey.DurationKey(); got != "testDuration" {
		t.Errorf("DurationKey() = %q, want testDuration", got)
	}
}
