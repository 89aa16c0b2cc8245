package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	if !IsValid(a) || !IsValid(b) {
		t.Fatalf("expected valid UUIDs, got %q and %q", a, b)
	}
	if a == b {
		t.Errorf("expected distinct ids")
	}
	if v := googleuuid.MustParse(a).Version(); v != 7 {
		t.Errorf("expected version 7, got %d", v)
	}
}

func TestIsValid(t *testing.T) {
	if IsValid("not-a-uuid") {
		t.Errorf("expected invalid")
	}
}
