package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ghuser/taskmanager/pkg/config"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/pkg/patch"
	"github.com/ghuser/taskmanager/services/task/domain"
	domainevents "github.com/ghuser/taskmanager/services/task/domain/events"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
	"github.com/ghuser/taskmanager/services/task/infrastructure/persistence/memory"
)

// newTestLogger creates a logger that discards everything below error.
func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type testEnv struct {
	store *memory.Store
	uow   *memory.UnitOfWork
	items *ItemService
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)
	return &testEnv{
		store: store,
		uow:   uow,
		items: NewItemService(uow, nil, newTestLogger()),
	}
}

func (e *testEnv) seedTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	var saved *models.Tag
	err := e.uow.InTx(context.Background(), func(r *repositories.Repositories) error {
		var err error
		saved, err = r.Tags.Insert(context.Background(), &models.Tag{Name: name})
		return err
	})
	if err != nil {
		t.Fatalf("seed tag %q: %v", name, err)
	}
	return saved
}

func (e *testEnv) seedPerson(t *testing.T, first, last string) *models.Person {
	t.Helper()
	var saved *models.Person
	err := e.uow.InTx(context.Background(), func(r *repositories.Repositories) error {
		var err error
		saved, err = r.Persons.Insert(context.Background(), &models.Person{FirstName: first, LastName: last})
		return err
	})
	if err != nil {
		t.Fatalf("seed person %s %s: %v", first, last, err)
	}
	return saved
}

func (e *testEnv) linksOf(t *testing.T, itemID int64) []*models.ItemTag {
	t.Helper()
	links, err := e.uow.Repos().ItemTags.FindAllByItemID(context.Background(), itemID)
	if err != nil {
		t.Fatalf("load links of item %d: %v", itemID, err)
	}
	return links
}

func int64Ptr(v int64) *int64 { return &v }

func TestItemServiceCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	backend := env.seedTag(t, "backend")
	alice := env.seedPerson(t, "Alice", "Smith")

	saved, err := env.items.Create(ctx, &models.Item{
		Description: "write release notes",
		Status:      models.StatusTodo,
		AssigneeID:  &alice.ID,
		Tags:        []models.Tag{{ID: urgent.ID}, {ID: backend.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if saved.Version != 0 {
		t.Fatalf("expected version 0, got %d", saved.Version)
	}
	if saved.CreatedDate.IsZero() || saved.LastModifiedDate.IsZero() {
		t.Fatal("expected both dates to be stamped")
	}
	if saved.Assignee == nil || saved.Assignee.FirstName != "Alice" {
		t.Fatalf("expected the assignee to be populated, got %+v", saved.Assignee)
	}
	if len(saved.Tags) != 2 || saved.Tags[0].Name != "backend" || saved.Tags[1].Name != "urgent" {
		t.Fatalf("expected tags sorted by name, got %+v", saved.Tags)
	}

	evts := env.store.Events()
	if len(evts) != 1 || evts[0].Topic != domainevents.TopicItemCreated {
		t.Fatalf("expected one %s event, got %+v", domainevents.TopicItemCreated, evts)
	}
	evt, ok := evts[0].Payload.(domainevents.ItemEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", evts[0].Payload)
	}
	if evt.ItemID != saved.ID || evt.Version != 0 || len(evt.TagIDs) != 2 {
		t.Fatalf("unexpected event payload %+v", evt)
	}
	if evt.EventID == "" {
		t.Fatal("expected a generated event id")
	}
}

func TestItemServiceCreateRejectsPresetIdentity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for name, item := range map[string]*models.Item{
		"preset id":      {ID: 7, Description: "x", Status: models.StatusTodo},
		"preset version": {Version: 3, Description: "x", Status: models.StatusTodo},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := env.items.Create(ctx, item); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
	if len(env.store.Events()) != 0 {
		t.Fatal("rejected creates must not publish events")
	}
}

func TestItemServiceCreateUnknownReferences(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.items.Create(ctx, &models.Item{
		Description: "x",
		Status:      models.StatusTodo,
		Tags:        []models.Tag{{ID: 99}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown tag, got %v", err)
	}

	_, err = env.items.Create(ctx, &models.Item{
		Description: "x",
		Status:      models.StatusTodo,
		AssigneeID:  int64Ptr(42),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown assignee, got %v", err)
	}
}

func TestItemServiceUpdateReconcilesLinks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	t1 := env.seedTag(t, "a")
	t2 := env.seedTag(t, "b")
	t3 := env.seedTag(t, "c")
	t4 := env.seedTag(t, "d")

	saved, err := env.items.Create(ctx, &models.Item{
		Description: "retag me",
		Status:      models.StatusTodo,
		Tags:        []models.Tag{{ID: t1.ID}, {ID: t2.ID}, {ID: t3.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before := map[int64]int64{}
	for _, link := range env.linksOf(t, saved.ID) {
		before[link.TagID] = link.ID
	}
	if len(before) != 3 {
		t.Fatalf("expected 3 links, got %d", len(before))
	}

	updated, err := env.items.Update(ctx, saved.ID, int64Ptr(saved.Version), ItemUpdate{
		Description: "retag me",
		Status:      models.StatusTodo,
		TagIDs:      []int64{t2.ID, t3.ID, t4.ID},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("expected version 1, got %d", updated.Version)
	}

	after := map[int64]int64{}
	for _, link := range env.linksOf(t, saved.ID) {
		after[link.TagID] = link.ID
	}
	if len(after) != 3 {
		t.Fatalf("expected 3 links after update, got %d", len(after))
	}
	if _, gone := after[t1.ID]; gone {
		t.Fatal("link to removed tag must be deleted")
	}
	if after[t2.ID] != before[t2.ID] || after[t3.ID] != before[t3.ID] {
		t.Fatalf("unchanged links must keep their row ids: before %v after %v", before, after)
	}
	if _, ok := after[t4.ID]; !ok {
		t.Fatal("expected a new link for the added tag")
	}
}

func TestItemServiceUpdateVersionConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	saved, err := env.items.Create(ctx, &models.Item{Description: "contended", Status: models.StatusTodo})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := env.items.Update(ctx, saved.ID, int64Ptr(0), ItemUpdate{Description: "writer one", Status: models.StatusInProgress})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1, got %d", first.Version)
	}

	_, err = env.items.Update(ctx, saved.ID, int64Ptr(0), ItemUpdate{Description: "writer two", Status: models.StatusDone})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a VersionConflictError, got %T", err)
	}
	if conflict.Expected != 0 || conflict.Found != 1 {
		t.Fatalf("expected 0/1, got %d/%d", conflict.Expected, conflict.Found)
	}

	current, err := env.items.GetByID(ctx, saved.ID, nil)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Description != "writer one" {
		t.Fatalf("losing writer must not be applied, got %q", current.Description)
	}
}

func TestItemServiceGetByIDVersionPrecheck(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	saved, err := env.items.Create(ctx, &models.Item{Description: "read me", Status: models.StatusTodo})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.items.GetByID(ctx, saved.ID, int64Ptr(0)); err != nil {
		t.Fatalf("matching expectation must succeed: %v", err)
	}
	if _, err := env.items.GetByID(ctx, saved.ID, int64Ptr(5)); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if _, err := env.items.GetByID(ctx, 999, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemServicePatchMergesFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	alice := env.seedPerson(t, "Alice", "Smith")

	saved, err := env.items.Create(ctx, &models.Item{
		Description: "initial",
		Status:      models.StatusTodo,
		AssigneeID:  &alice.ID,
		Tags:        []models.Tag{{ID: urgent.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	linkID := env.linksOf(t, saved.ID)[0].ID

	patched, err := env.items.Patch(ctx, saved.ID, int64Ptr(saved.Version), ItemPatch{
		Status: patch.Set(models.StatusInProgress),
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if patched.Version != 1 {
		t.Fatalf("expected version 1, got %d", patched.Version)
	}
	if patched.Description != "initial" {
		t.Fatalf("unset field must keep the stored value, got %q", patched.Description)
	}
	if patched.Status != models.StatusInProgress {
		t.Fatalf("expected in_progress, got %q", patched.Status)
	}
	if patched.Assignee == nil || patched.Assignee.ID != alice.ID {
		t.Fatal("unset assignee must keep the stored value")
	}

	links := env.linksOf(t, saved.ID)
	if len(links) != 1 || links[0].ID != linkID {
		t.Fatalf("untouched tags must keep their link rows, got %+v", links)
	}
}

func TestItemServicePatchClearsNullableFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	alice := env.seedPerson(t, "Alice", "Smith")

	saved, err := env.items.Create(ctx, &models.Item{
		Description: "initial",
		Status:      models.StatusTodo,
		AssigneeID:  &alice.ID,
		Tags:        []models.Tag{{ID: urgent.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patched, err := env.items.Patch(ctx, saved.ID, nil, ItemPatch{
		AssigneeID: patch.Clear[int64](),
		TagIDs:     patch.Clear[[]int64](),
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if patched.AssigneeID != nil || patched.Assignee != nil {
		t.Fatalf("expected the assignee to be cleared, got %+v", patched.Assignee)
	}
	if len(patched.Tags) != 0 {
		t.Fatalf("expected no tags, got %+v", patched.Tags)
	}
	if links := env.linksOf(t, saved.ID); len(links) != 0 {
		t.Fatalf("expected no links, got %+v", links)
	}
}

func TestItemServicePatchRejectsClearingRequiredFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	saved, err := env.items.Create(ctx, &models.Item{Description: "keep me", Status: models.StatusTodo})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for name, p := range map[string]ItemPatch{
		"description": {Description: patch.Clear[string]()},
		"status":      {Status: patch.Clear[models.ItemStatus]()},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := env.items.Patch(ctx, saved.ID, nil, p); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	current, err := env.items.GetByID(ctx, saved.ID, nil)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Version != 0 {
		t.Fatalf("rejected patches must not bump the version, got %d", current.Version)
	}
}

func TestItemServicePatchNoChangesIsNoOp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	saved, err := env.items.Create(ctx, &models.Item{
		Description: "steady",
		Status:      models.StatusTodo,
		Tags:        []models.Tag{{ID: urgent.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	linkID := env.linksOf(t, saved.ID)[0].ID
	eventsBefore := len(env.store.Events())

	patched, err := env.items.Patch(ctx, saved.ID, int64Ptr(0), ItemPatch{
		Description: patch.Set("steady"),
		Status:      patch.Set(models.StatusTodo),
		TagIDs:      patch.Set([]int64{urgent.ID}),
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if patched.Version != 0 {
		t.Fatalf("a no-op patch must not bump the version, got %d", patched.Version)
	}
	if got := len(env.store.Events()); got != eventsBefore {
		t.Fatalf("a no-op patch must not publish events, got %d new", got-eventsBefore)
	}
	if links := env.linksOf(t, saved.ID); len(links) != 1 || links[0].ID != linkID {
		t.Fatalf("a no-op patch must not rewrite link rows, got %+v", links)
	}
}

func TestItemServiceDelete(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	saved, err := env.items.Create(ctx, &models.Item{
		Description: "short lived",
		Status:      models.StatusTodo,
		Tags:        []models.Tag{{ID: urgent.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.items.Delete(ctx, saved.ID, int64Ptr(3)); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale delete must conflict, got %v", err)
	}
	if err := env.items.Delete(ctx, saved.ID, int64Ptr(0)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.items.GetByID(ctx, saved.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if links := env.linksOf(t, saved.ID); len(links) != 0 {
		t.Fatalf("delete must remove the item's links, got %+v", links)
	}

	evts := env.store.Events()
	if len(evts) == 0 || evts[len(evts)-1].Topic != domainevents.TopicItemDeleted {
		t.Fatalf("expected a %s event, got %+v", domainevents.TopicItemDeleted, evts)
	}
}

func TestItemServiceFindAllPaged(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"first", "second", "third"} {
		saved, err := env.items.Create(ctx, &models.Item{Description: desc, Status: models.StatusTodo})
		if err != nil {
			t.Fatalf("Create %q: %v", desc, err)
		}
		ids = append(ids, saved.ID)
	}

	page, total, err := env.items.FindAllPaged(ctx, repositories.PageRequest{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("FindAllPaged: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page) != 2 || page[0].ID != ids[0] || page[1].ID != ids[1] {
		t.Fatalf("unexpected first page %+v", page)
	}

	page, _, err = env.items.FindAllPaged(ctx, repositories.PageRequest{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("FindAllPaged: %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[2] {
		t.Fatalf("unexpected second page %+v", page)
	}
}

func TestItemServiceUpdateRollsBackOnFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	urgent := env.seedTag(t, "urgent")
	saved, err := env.items.Create(ctx, &models.Item{
		Description: "stable",
		Status:      models.StatusTodo,
		Tags:        []models.Tag{{ID: urgent.ID}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	linkID := env.linksOf(t, saved.ID)[0].ID

	_, err = env.items.Update(ctx, saved.ID, nil, ItemUpdate{
		Description: "half applied",
		Status:      models.StatusTodo,
		TagIDs:      []int64{urgent.ID, 999},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the unknown tag, got %v", err)
	}

	current, err := env.items.GetByID(ctx, saved.ID, nil)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Description != "stable" || current.Version != 0 {
		t.Fatalf("a failed update must leave the item untouched, got %+v", current)
	}
	if links := env.linksOf(t, saved.ID); len(links) != 1 || links[0].ID != linkID {
		t.Fatalf("a failed update must leave the links untouched, got %+v", links)
	}
}

func TestItemServiceValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.items.Create(ctx, &models.Item{Description: "  ", Status: models.StatusTodo}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank description: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := env.items.Create(ctx, &models.Item{Description: "x", Status: "bogus"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("unknown status: expected ErrInvalidArgument, got %v", err)
	}
}
