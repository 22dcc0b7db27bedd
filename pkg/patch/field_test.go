package patch

import (
	"encoding/json"
	"testing"
)

type payload struct {
	Description Field[string]  `json:"description"`
	Assignee    Field[int64]   `json:"assignee"`
	Tags        Field[[]int64] `json:"tags"`
}

func TestField_AbsentKeyIsUnset(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Description.IsUnset() {
		t.Fatal("absent key must be Unset")
	}
	if p.Description.IsClear() {
		t.Fatal("absent key must not be Clear")
	}
}

func TestField_NullIsClear(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{"assignee": null}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Assignee.IsUnset() {
		t.Fatal("null key must not be Unset")
	}
	if !p.Assignee.IsClear() {
		t.Fatal("null key must be Clear")
	}
	if _, ok := p.Assignee.Get(); ok {
		t.Fatal("Clear field must not carry a value")
	}
}

func TestField_ValueIsSet(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{"description": "buy milk", "tags": [2, 3]}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := p.Description.Get()
	if !ok || v != "buy milk" {
		t.Fatalf("expected set value %q, got %q (set=%v)", "buy milk", v, ok)
	}
	tags, ok := p.Tags.Get()
	if !ok || len(tags) != 2 || tags[0] != 2 || tags[1] != 3 {
		t.Fatalf("expected tags [2 3], got %v (set=%v)", tags, ok)
	}
}

func TestField_Or(t *testing.T) {
	if got := Set("new").Or("stored"); got != "new" {
		t.Fatalf("Set.Or: expected new, got %q", got)
	}
	var unset Field[string]
	if got := unset.Or("stored"); got != "stored" {
		t.Fatalf("Unset.Or: expected stored, got %q", got)
	}
}

func TestField_OrPtr(t *testing.T) {
	stored := int64(7)

	var unset Field[int64]
	if got := unset.OrPtr(&stored); got == nil || *got != 7 {
		t.Fatalf("Unset.OrPtr must keep stored, got %v", got)
	}

	if got := Clear[int64]().OrPtr(&stored); got != nil {
		t.Fatalf("Clear.OrPtr must yield nil, got %v", *got)
	}

	if got := Set(int64(9)).OrPtr(&stored); got == nil || *got != 9 {
		t.Fatalf("Set.OrPtr must yield new value, got %v", got)
	}
}

func TestField_RoundTripThroughDecoder(t *testing.T) {
	// Tri-state must survive the whole decode path used by handlers.
	var p payload
	if err := json.Unmarshal([]byte(`{"description": null, "assignee": 4}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Description.IsClear() {
		t.Fatal("description must be Clear")
	}
	if v, ok := p.Assignee.Get(); !ok || v != 4 {
		t.Fatalf("assignee must be Set(4), got %v (set=%v)", v, ok)
	}
	if !p.Tags.IsUnset() {
		t.Fatal("tags must stay Unset")
	}
}
