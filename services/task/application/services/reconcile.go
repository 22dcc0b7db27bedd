package services

import (
	"context"
	"fmt"

	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// reconcileItemTags diffs the item's currently persisted tag links against the
// desired tag set and applies the minimal delete/insert statements. The join
// table has no composite unique key, so blind inserts would create duplicate
// rows, and replace-all would churn the synthetic ids of unchanged links.
// Links absent from desired are deleted; desired tags without a link get one
// new row; links present on both sides are left untouched.
//
// Runs inside the caller's transaction: current links are re-read here, never
// taken from state loaded before a suspension point.
func reconcileItemTags(ctx context.Context, itemTags repositories.ItemTagRepository, itemID int64, desired []int64) error {
	current, err := itemTags.FindAllByItemID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load item tags: %w", err)
	}

	desiredSet := make(map[int64]struct{}, len(desired))
	for _, tagID := range desired {
		desiredSet[tagID] = struct{}{}
	}

	var removedIDs []int64
	existing := make(map[int64]struct{}, len(current))
	for _, link := range current {
		existing[link.TagID] = struct{}{}
		if _, ok := desiredSet[link.TagID]; !ok {
			removedIDs = append(removedIDs, link.ID)
		}
	}

	if len(removedIDs) > 0 {
		if err := itemTags.DeleteByIDs(ctx, removedIDs); err != nil {
			return fmt.Errorf("delete item tags: %w", err)
		}
	}

	for _, tagID := range desired {
		if _, ok := existing[tagID]; ok {
			continue
		}
		if _, err := itemTags.Insert(ctx, &models.ItemTag{ItemID: itemID, TagID: tagID}); err != nil {
			return fmt.Errorf("insert item tag: %w", err)
		}
		existing[tagID] = struct{}{}
	}
	return nil
}

// sameTagSet reports whether the two id slices describe the same set,
// regardless of order or duplicates.
func sameTagSet(a, b []int64) bool {
	as := make(map[int64]struct{}, len(a))
	for _, id := range a {
		as[id] = struct{}{}
	}
	bs := make(map[int64]struct{}, len(b))
	for _, id := range b {
		bs[id] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}
