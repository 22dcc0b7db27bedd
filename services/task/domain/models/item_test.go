package models

import "testing"

func TestItemStatus_Valid(t *testing.T) {
	for _, s := range []ItemStatus{StatusTodo, StatusInProgress, StatusDone} {
		if !s.Valid() {
			t.Fatalf("%s must be valid", s)
		}
	}
	for _, s := range []ItemStatus{"", "todo", "DONE ", "CANCELLED"} {
		if s.Valid() {
			t.Fatalf("%q must be invalid", s)
		}
	}
}

func TestItem_TagIDs(t *testing.T) {
	item := &Item{Tags: []Tag{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}}
	ids := item.TagIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestItem_TagIDs_NilTags(t *testing.T) {
	item := &Item{}
	ids := item.TagIDs()
	if ids == nil {
		t.Fatal("TagIDs must return an empty slice, not nil")
	}
	if len(ids) != 0 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestVersioned_Accessors(t *testing.T) {
	item := &Item{ID: 42, Version: 3}
	if item.EntityID() != 42 || item.EntityVersion() != 3 {
		t.Fatalf("unexpected accessors: %d v%d", item.EntityID(), item.EntityVersion())
	}

	tag := &Tag{ID: 1, Version: 0}
	if tag.EntityID() != 1 || tag.EntityVersion() != 0 {
		t.Fatalf("unexpected accessors: %d v%d", tag.EntityID(), tag.EntityVersion())
	}
}
