package mirror

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "test_answers_42", `{"1":{"optionId":2}}`); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "test_answers_42")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"1":{"optionId":2}}` {
		t.Errorf("Get = %q", got)
	}

	if err := s.Set(ctx, "test_answers_42", "{}"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "test_answers_42")
	if got != "{}" {
		t.Errorf("overwrite lost: %q", got)
	}

	if err := s.Delete(ctx, "test_answers_42"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "test_answers_42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}

	// Deleting an absent key is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}
