package services

import (
	"context"
	"testing"
)

func TestReconcileItemTagsDeduplicatesDesired(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	itemTags := env.uow.Repos().ItemTags

	if err := reconcileItemTags(ctx, itemTags, 1, []int64{10, 10, 20}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	links, err := itemTags.FindAllByItemID(ctx, 1)
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected one link per distinct tag, got %+v", links)
	}
}

func TestReconcileItemTagsEmptyDesiredRemovesAll(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	itemTags := env.uow.Repos().ItemTags

	if err := reconcileItemTags(ctx, itemTags, 1, []int64{10, 20}); err != nil {
		t.Fatalf("seed links: %v", err)
	}
	if err := reconcileItemTags(ctx, itemTags, 1, nil); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	links, err := itemTags.FindAllByItemID(ctx, 1)
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no links, got %+v", links)
	}
}

func TestSameTagSet(t *testing.T) {
	cases := []struct {
		name string
		a, b []int64
		want bool
	}{
		{"both empty", nil, []int64{}, true},
		{"order ignored", []int64{1, 2, 3}, []int64{3, 1, 2}, true},
		{"duplicates ignored", []int64{1, 1, 2}, []int64{2, 1}, true},
		{"different members", []int64{1, 2}, []int64{1, 3}, false},
		{"subset", []int64{1}, []int64{1, 2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameTagSet(tc.a, tc.b); got != tc.want {
				t.Fatalf("sameTagSet(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
