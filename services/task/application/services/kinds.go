package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/taskmanager/pkg/auth"
	"github.com/ghuser/taskmanager/services/task/domain"
	domainevents "github.com/ghuser/taskmanager/services/task/domain/events"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

const (
	maxDescriptionLength = 4000
	maxNameLength        = 100
	maxUserIDLength      = 36
	maxEmailLength       = 256
)

// itemKind is the capability surface for Items: the only kind with
// associations (tags) and lifecycle events.
type itemKind struct{}

func (itemKind) Name() string { return "item" }

func (itemKind) Store(r *repositories.Repositories) repositories.Store[*models.Item] {
	return r.Items
}

func (itemKind) Validate(ctx context.Context, r *repositories.Repositories, e *models.Item) error {
	if err := requireText("item description", e.Description, maxDescriptionLength); err != nil {
		return err
	}
	if !e.Status.Valid() {
		return domain.NewInvalidArgument("unknown item status %q", e.Status)
	}
	if e.AssigneeID != nil {
		if _, err := r.Persons.FindByID(ctx, *e.AssigneeID); err != nil {
			return err
		}
	}
	for _, tagID := range e.TagIDs() {
		if _, err := r.Tags.FindByID(ctx, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (itemKind) Reconcile(ctx context.Context, r *repositories.Repositories, e *models.Item) error {
	return reconcileItemTags(ctx, r.ItemTags, e.ID, e.TagIDs())
}

func (itemKind) Cascade(ctx context.Context, r *repositories.Repositories, e *models.Item) error {
	return r.ItemTags.DeleteAllByItemID(ctx, e.ID)
}

func (itemKind) Notify(ctx context.Context, r *repositories.Repositories, action Action, e *models.Item) error {
	if r.Events == nil {
		return nil
	}
	var topic string
	switch action {
	case ActionCreated:
		topic = domainevents.TopicItemCreated
	case ActionUpdated:
		topic = domainevents.TopicItemUpdated
	case ActionDeleted:
		topic = domainevents.TopicItemDeleted
	}
	actor, _ := auth.ActorFromCtx(ctx)
	return r.Events.Publish(ctx, topic, domainevents.ItemEvent{
		EventID:     uuid.NewString(),
		ItemID:      e.ID,
		Version:     e.Version,
		Description: e.Description,
		Status:      string(e.Status),
		AssigneeID:  e.AssigneeID,
		TagIDs:      e.TagIDs(),
		Actor:       actor,
		OccurredAt:  time.Now().UTC(),
	})
}

// tagKind: no associations of its own; deleting a tag unlinks it from items
// but never deletes the items.
type tagKind struct{}

func (tagKind) Name() string { return "tag" }

func (tagKind) Store(r *repositories.Repositories) repositories.Store[*models.Tag] {
	return r.Tags
}

func (tagKind) Validate(_ context.Context, _ *repositories.Repositories, e *models.Tag) error {
	return requireText("tag name", e.Name, maxNameLength)
}

func (tagKind) Reconcile(context.Context, *repositories.Repositories, *models.Tag) error { return nil }

func (tagKind) Cascade(ctx context.Context, r *repositories.Repositories, e *models.Tag) error {
	links, err := r.ItemTags.FindAllByTagID(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := r.ItemTags.DeleteAllByTagID(ctx, e.ID); err != nil {
		return err
	}
	// the linked set is unknowable once the rows are gone, so the refresh
	// events for the affected items are emitted here, not in Notify
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ItemID)
	}
	return refreshItems(ctx, r, ids)
}

// Notify refreshes the items linked to an updated tag: cached items embed the
// tag name, so consumers must rebuild their copy after a rename.
func (tagKind) Notify(ctx context.Context, r *repositories.Repositories, action Action, e *models.Tag) error {
	if action != ActionUpdated || r.Events == nil {
		return nil
	}
	links, err := r.ItemTags.FindAllByTagID(ctx, e.ID)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ItemID)
	}
	return refreshItems(ctx, r, ids)
}

// personKind: deleting a person cascades to their assigned items and those
// items' tag links, in that order.
type personKind struct{}

func (personKind) Name() string { return "person" }

func (personKind) Store(r *repositories.Repositories) repositories.Store[*models.Person] {
	return r.Persons
}

func (personKind) Validate(_ context.Context, _ *repositories.Repositories, e *models.Person) error {
	if err := requireText("person first name", e.FirstName, maxNameLength); err != nil {
		return err
	}
	return requireText("person last name", e.LastName, maxNameLength)
}

func (personKind) Reconcile(context.Context, *repositories.Repositories, *models.Person) error {
	return nil
}

// Cascade removes the person's items and their tag links, then publishes a
// deleted event per item. Without those events cascade-deleted items would
// keep serving from consumer caches until their entries expire.
func (personKind) Cascade(ctx context.Context, r *repositories.Repositories, e *models.Person) error {
	items, err := r.Items.FindByAssigneeID(ctx, e.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := populateTags(ctx, r, item); err != nil {
			return err
		}
		if err := r.ItemTags.DeleteAllByItemID(ctx, item.ID); err != nil {
			return err
		}
	}
	if err := r.Items.DeleteByAssigneeID(ctx, e.ID); err != nil {
		return err
	}
	for _, item := range items {
		if err := (itemKind{}).Notify(ctx, r, ActionDeleted, item); err != nil {
			return err
		}
	}
	return nil
}

// Notify refreshes the items assigned to an updated person: cached items
// embed the assignee's name fields.
func (personKind) Notify(ctx context.Context, r *repositories.Repositories, action Action, e *models.Person) error {
	if action != ActionUpdated || r.Events == nil {
		return nil
	}
	items, err := r.Items.FindByAssigneeID(ctx, e.ID)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return refreshItems(ctx, r, ids)
}

// userKind mirrors external identities; no dependents of its own.
type userKind struct{}

func (userKind) Name() string { return "user" }

func (userKind) Store(r *repositories.Repositories) repositories.Store[*models.User] {
	return r.Users
}

func (userKind) Validate(_ context.Context, _ *repositories.Repositories, e *models.User) error {
	if err := requireText("user id", e.UserID, maxUserIDLength); err != nil {
		return err
	}
	if err := requireText("user email", e.Email, maxEmailLength); err != nil {
		return err
	}
	if !strings.Contains(e.Email, "@") {
		return domain.NewInvalidArgument("user email %q is not an email address", e.Email)
	}
	if err := requireText("user first name", e.FirstName, maxNameLength); err != nil {
		return err
	}
	return requireText("user last name", e.LastName, maxNameLength)
}

func (userKind) Reconcile(context.Context, *repositories.Repositories, *models.User) error {
	return nil
}

func (userKind) Cascade(context.Context, *repositories.Repositories, *models.User) error {
	return nil
}

func (userKind) Notify(context.Context, *repositories.Repositories, Action, *models.User) error {
	return nil
}

// refreshItems publishes an updated event for each item so consumers rebuild
// their denormalized copies; the Redis item cache embeds tag and assignee
// fields and the worker rereads the item on every updated event.
func refreshItems(ctx context.Context, r *repositories.Repositories, itemIDs []int64) error {
	if r.Events == nil {
		return nil
	}
	for _, id := range itemIDs {
		item, err := r.Items.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if err := populateTags(ctx, r, item); err != nil {
			return err
		}
		if err := (itemKind{}).Notify(ctx, r, ActionUpdated, item); err != nil {
			return err
		}
	}
	return nil
}

// populateTags loads the item's tag relation so event payloads carry the
// current tag ids.
func populateTags(ctx context.Context, r *repositories.Repositories, item *models.Item) error {
	tags, err := r.Tags.FindAllByItemID(ctx, item.ID)
	if err != nil {
		return err
	}
	item.Tags = make([]models.Tag, len(tags))
	for i, t := range tags {
		item.Tags[i] = *t
	}
	return nil
}

func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewInvalidArgument("%s must not be blank", field)
	}
	if len(value) > max {
		return domain.NewInvalidArgument("%s must not exceed %d characters", field, max)
	}
	return nil
}
