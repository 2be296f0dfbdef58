package repo

import (
	"testing"

	"github.com/google/uuid"
)

func TestNullInt(t *testing.T) {
	if got := nullInt(0); got != nil {
		t.Errorf("expected nil for zero, got %d", *got)
	}
	got := nullInt(3600)
	if got == nil || *got != 3600 {
		t.Errorf("expected 3600, got %v", got)
	}
}

func TestNullString(t *testing.T) {
	if got := nullString(""); got != nil {
		t.Errorf("expected nil for empty string, got %q", *got)
	}
	got := nullString("0 9 * * *")
	if got == nil || *got != "0 9 * * *" {
		t.Errorf("expected cron expression, got %v", got)
	}
}

func TestNullUUID(t *testing.T) {
	if got := nullUUID(nil); got != nil {
		t.Errorf("expected nil for nil pointer, got %v", got)
	}
	zero := uuid.Nil
	if got := nullUUID(&zero); got != nil {
		t.Errorf("expected nil for zero UUID, got %v", got)
	}
	id := uuid.New()
	if got := nullUUID(&id); got == nil || *got != id {
		t.Errorf("expected %v, got %v", id, got)
	}
}
