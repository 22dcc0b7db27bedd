package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/taskmanager/pkg/auth"
	pkgcache "github.com/ghuser/taskmanager/pkg/cache"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/pkg/patch"
	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// ItemUpdate carries the full replacement state for an item update. A nil
// TagIDs removes every tag link.
type ItemUpdate struct {
	Description string
	Status      models.ItemStatus
	AssigneeID  *int64
	TagIDs      []int64
}

// ItemPatch carries tri-state fields for a partial item update. Unset fields
// keep the stored value; Description and Status are non-nullable and reject
// an explicit clear at merge time.
type ItemPatch struct {
	Description patch.Field[string]
	Status      patch.Field[models.ItemStatus]
	AssigneeID  patch.Field[int64]
	TagIDs      patch.Field[[]int64]
}

// ItemService orchestrates versioned CRUD for Items: the generic resource
// flow plus relation population (assignee, tags) and the Redis read cache.
// Reads with a version expectation always go to the store — the cache only
// answers plain lookups and is invalidated on every write.
type ItemService struct {
	uow   repositories.UnitOfWork
	res   *Resource[*models.Item]
	cache *pkgcache.ItemCache
	log   logger.Logger
}

// NewItemService returns an ItemService wired with the given unit of work and
// optional cache.
func NewItemService(uow repositories.UnitOfWork, itemCache *pkgcache.ItemCache, log logger.Logger) *ItemService {
	return &ItemService{
		uow:   uow,
		res:   NewResource[*models.Item](uow, itemKind{}),
		cache: itemCache,
		log:   log,
	}
}

// GetByID retrieves an item with its assignee and tags populated. When
// expectedVersion is set the read is a concurrency pre-check and bypasses the
// cache entirely.
func (s *ItemService) GetByID(ctx context.Context, id int64, expectedVersion *int64) (*models.Item, error) {
	if s.cache != nil && expectedVersion == nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return cachedToItem(cached), nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.res.GetByID(ctx, id, expectedVersion)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, s.uow.Repos(), item); err != nil {
		return nil, err
	}
	s.warmCache(item)
	return item, nil
}

// FindAllPaged returns one page of items ordered by last modification time,
// with relations populated, plus the total count.
func (s *ItemService) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Item, int64, error) {
	items, total, err := s.res.FindAllPaged(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	r := s.uow.Repos()
	for _, item := range items {
		if err := s.populate(ctx, r, item); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Create persists a new item and its tag links in one transaction. The id and
// version must be unset.
func (s *ItemService) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	saved, err := s.res.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, s.uow.Repos(), saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Update replaces the item's fields and reconciles its tag links, guarded by
// the optimistic version check.
func (s *ItemService) Update(ctx context.Context, id int64, expectedVersion *int64, in ItemUpdate) (*models.Item, error) {
	saved, err := s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.Item) (*models.Item, error) {
		next := *stored
		next.Description = in.Description
		next.Status = in.Status
		next.AssigneeID = in.AssigneeID
		next.Assignee = nil
		next.Tags = tagRefs(in.TagIDs)
		return &next, nil
	})
	if err != nil {
		return nil, err
	}
	s.dropCache(ctx, id)
	if err := s.populate(ctx, s.uow.Repos(), saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Patch merges the tri-state fields onto the stored item and updates it. A
// patch that changes nothing is a no-op: no write, no version bump.
func (s *ItemService) Patch(ctx context.Context, id int64, expectedVersion *int64, p ItemPatch) (*models.Item, error) {
	saved, err := s.res.Update(ctx, id, expectedVersion, func(r *repositories.Repositories, stored *models.Item) (*models.Item, error) {
		if p.Description.IsClear() {
			return nil, domain.NewInvalidArgument("item description cannot be cleared")
		}
		if p.Status.IsClear() {
			return nil, domain.NewInvalidArgument("item status cannot be cleared")
		}

		links, err := r.ItemTags.FindAllByItemID(ctx, stored.ID)
		if err != nil {
			return nil, fmt.Errorf("load item tags: %w", err)
		}
		currentIDs := make([]int64, 0, len(links))
		for _, link := range links {
			currentIDs = append(currentIDs, link.TagID)
		}

		next := *stored
		next.Description = p.Description.Or(stored.Description)
		next.Status = p.Status.Or(stored.Status)
		next.AssigneeID = p.AssigneeID.OrPtr(stored.AssigneeID)
		next.Assignee = nil

		desired := currentIDs
		if p.TagIDs.IsClear() {
			desired = nil
		} else if v, ok := p.TagIDs.Get(); ok {
			desired = v
		}
		next.Tags = tagRefs(desired)

		if next.Description == stored.Description &&
			next.Status == stored.Status &&
			equalID(next.AssigneeID, stored.AssigneeID) &&
			sameTagSet(desired, currentIDs) {
			return nil, errNoChanges
		}
		return &next, nil
	})
	if err != nil {
		return nil, err
	}
	s.dropCache(ctx, id)
	if err := s.populate(ctx, s.uow.Repos(), saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes the item and its tag links in one transaction, after the
// version pre-check.
func (s *ItemService) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	if err := s.res.Delete(ctx, id, expectedVersion); err != nil {
		return err
	}
	actor, _ := auth.ActorFromCtx(ctx)
	s.log.InfoContext(ctx, "item deleted", "item_id", id, "actor", actor)
	s.dropCache(ctx, id)
	return nil
}

// populate loads the assignee and tags relations onto item. Tags come back
// sorted by name.
func (s *ItemService) populate(ctx context.Context, r *repositories.Repositories, item *models.Item) error {
	tags, err := r.Tags.FindAllByItemID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("load tags of item %d: %w", item.ID, err)
	}
	item.Tags = make([]models.Tag, len(tags))
	for i, t := range tags {
		item.Tags[i] = *t
	}

	item.Assignee = nil
	if item.AssigneeID != nil {
		assignee, err := r.Persons.FindByID(ctx, *item.AssigneeID)
		if err != nil {
			return fmt.Errorf("load assignee of item %d: %w", item.ID, err)
		}
		item.Assignee = assignee
	}
	return nil
}

func (s *ItemService) warmCache(item *models.Item) {
	if s.cache == nil {
		return
	}
	go func() {
		if err := s.cache.Set(context.Background(), itemToCached(item)); err != nil {
			s.log.Warn("item cache warm failed", "item_id", item.ID, "error", err)
		}
	}()
}

func (s *ItemService) dropCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "item cache invalidation failed", "item_id", id, "error", err)
	}
}

// tagRefs builds an id-only Tags relation; names are filled in by populate.
func tagRefs(ids []int64) []models.Tag {
	if len(ids) == 0 {
		return nil
	}
	tags := make([]models.Tag, len(ids))
	for i, id := range ids {
		tags[i] = models.Tag{ID: id}
	}
	return tags
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cachedToItem(c *pkgcache.CachedItem) *models.Item {
	item := &models.Item{
		ID:               c.ID,
		Version:          c.Version,
		Description:      c.Description,
		Status:           models.ItemStatus(c.Status),
		AssigneeID:       c.AssigneeID,
		CreatedDate:      c.CreatedDate,
		LastModifiedDate: c.LastModifiedDate,
	}
	if c.Assignee != nil {
		item.Assignee = &models.Person{
			ID:        c.Assignee.ID,
			Version:   c.Assignee.Version,
			FirstName: c.Assignee.FirstName,
			LastName:  c.Assignee.LastName,
		}
	}
	if len(c.Tags) > 0 {
		item.Tags = make([]models.Tag, len(c.Tags))
		for i, t := range c.Tags {
			item.Tags[i] = models.Tag{ID: t.ID, Version: t.Version, Name: t.Name}
		}
	}
	return item
}

func itemToCached(item *models.Item) *pkgcache.CachedItem {
	c := &pkgcache.CachedItem{
		ID:               item.ID,
		Version:          item.Version,
		Description:      item.Description,
		Status:           string(item.Status),
		AssigneeID:       item.AssigneeID,
		CreatedDate:      item.CreatedDate,
		LastModifiedDate: item.LastModifiedDate,
	}
	if item.Assignee != nil {
		c.Assignee = &pkgcache.CachedPerson{
			ID:        item.Assignee.ID,
			Version:   item.Assignee.Version,
			FirstName: item.Assignee.FirstName,
			LastName:  item.Assignee.LastName,
		}
	}
	for _, t := range item.Tags {
		c.Tags = append(c.Tags, pkgcache.CachedTag{ID: t.ID, Version: t.Version, Name: t.Name})
	}
	return c
}
