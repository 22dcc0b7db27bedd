// Package events defines the domain events published by the task services.
// Events are written through the transactional outbox, so they are only
// visible once the owning operation commits.
package events

import "time"

// Topics for item lifecycle events.
const (
	TopicItemCreated = "task.item.created"
	TopicItemUpdated = "task.item.updated"
	TopicItemDeleted = "task.item.deleted"
)

// ItemEvent is the payload for all item lifecycle topics.
type ItemEvent struct {
	EventID     string    `json:"event_id"`
	ItemID      int64     `json:"item_id"`
	Version     int64     `json:"version"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
	TagIDs      []int64   `json:"tag_ids"`
	Actor       string    `json:"actor,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
