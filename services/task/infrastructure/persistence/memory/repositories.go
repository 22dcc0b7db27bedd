package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

type itemRepository struct{ s *Store }

func (r *itemRepository) FindByID(_ context.Context, id int64) (*models.Item, error) {
	e, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewNotFound("item", id)
	}
	return cloneItem(e), nil
}

func (r *itemRepository) FindAllPaged(_ context.Context, page repositories.PageRequest) ([]*models.Item, int64, error) {
	all := make([]*models.Item, 0, len(r.s.items))
	for _, e := range r.s.items {
		all = append(all, cloneItem(e))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].LastModifiedDate.Equal(all[j].LastModifiedDate) {
			return all[i].LastModifiedDate.Before(all[j].LastModifiedDate)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, page), int64(len(r.s.items)), nil
}

func (r *itemRepository) Insert(_ context.Context, e *models.Item) (*models.Item, error) {
	saved := cloneItem(e)
	saved.ID = r.s.nextID()
	saved.Version = 0
	now := time.Now().UTC()
	saved.CreatedDate = now
	saved.LastModifiedDate = now
	r.s.items[saved.ID] = cloneItem(saved)
	return saved, nil
}

func (r *itemRepository) UpdateIfVersionMatches(_ context.Context, e *models.Item) (*models.Item, error) {
	stored, ok := r.s.items[e.ID]
	if !ok {
		return nil, domain.NewNotFound("item", e.ID)
	}
	if stored.Version != e.Version {
		return nil, domain.NewVersionConflict("item", e.ID, e.Version, stored.Version)
	}
	saved := cloneItem(e)
	saved.Version++
	saved.CreatedDate = stored.CreatedDate
	saved.LastModifiedDate = time.Now().UTC()
	r.s.items[saved.ID] = cloneItem(saved)
	return saved, nil
}

func (r *itemRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.items[id]; !ok {
		return domain.NewNotFound("item", id)
	}
	delete(r.s.items, id)
	return nil
}

func (r *itemRepository) FindByAssigneeID(_ context.Context, assigneeID int64) ([]*models.Item, error) {
	var out []*models.Item
	for _, e := range r.s.items {
		if e.AssigneeID != nil && *e.AssigneeID == assigneeID {
			out = append(out, cloneItem(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *itemRepository) DeleteByAssigneeID(_ context.Context, assigneeID int64) error {
	for id, e := range r.s.items {
		if e.AssigneeID != nil && *e.AssigneeID == assigneeID {
			delete(r.s.items, id)
		}
	}
	return nil
}

type tagRepository struct{ s *Store }

func (r *tagRepository) FindByID(_ context.Context, id int64) (*models.Tag, error) {
	e, ok := r.s.tags[id]
	if !ok {
		return nil, domain.NewNotFound("tag", id)
	}
	return cloneTag(e), nil
}

func (r *tagRepository) FindAllPaged(_ context.Context, page repositories.PageRequest) ([]*models.Tag, int64, error) {
	all := make([]*models.Tag, 0, len(r.s.tags))
	for _, e := range r.s.tags {
		all = append(all, cloneTag(e))
	}
	sortTags(all)
	return paginate(all, page), int64(len(r.s.tags)), nil
}

func (r *tagRepository) FindAllByItemID(_ context.Context, itemID int64) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, link := range r.s.links {
		if link.ItemID != itemID {
			continue
		}
		if tag, ok := r.s.tags[link.TagID]; ok {
			out = append(out, cloneTag(tag))
		}
	}
	sortTags(out)
	return out, nil
}

func (r *tagRepository) Insert(_ context.Context, e *models.Tag) (*models.Tag, error) {
	saved := cloneTag(e)
	saved.ID = r.s.nextID()
	saved.Version = 0
	now := time.Now().UTC()
	saved.CreatedDate = now
	saved.LastModifiedDate = now
	r.s.tags[saved.ID] = cloneTag(saved)
	return saved, nil
}

func (r *tagRepository) UpdateIfVersionMatches(_ context.Context, e *models.Tag) (*models.Tag, error) {
	stored, ok := r.s.tags[e.ID]
	if !ok {
		return nil, domain.NewNotFound("tag", e.ID)
	}
	if stored.Version != e.Version {
		return nil, domain.NewVersionConflict("tag", e.ID, e.Version, stored.Version)
	}
	saved := cloneTag(e)
	saved.Version++
	saved.CreatedDate = stored.CreatedDate
	saved.LastModifiedDate = time.Now().UTC()
	r.s.tags[saved.ID] = cloneTag(saved)
	return saved, nil
}

func (r *tagRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.tags[id]; !ok {
		return domain.NewNotFound("tag", id)
	}
	delete(r.s.tags, id)
	return nil
}

type personRepository struct{ s *Store }

func (r *personRepository) FindByID(_ context.Context, id int64) (*models.Person, error) {
	e, ok := r.s.persons[id]
	if !ok {
		return nil, domain.NewNotFound("person", id)
	}
	return clonePerson(e), nil
}

func (r *personRepository) FindAllPaged(_ context.Context, page repositories.PageRequest) ([]*models.Person, int64, error) {
	all := make([]*models.Person, 0, len(r.s.persons))
	for _, e := range r.s.persons {
		all = append(all, clonePerson(e))
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID < b.ID
	})
	return paginate(all, page), int64(len(r.s.persons)), nil
}

func (r *personRepository) Insert(_ context.Context, e *models.Person) (*models.Person, error) {
	saved := clonePerson(e)
	saved.ID = r.s.nextID()
	saved.Version = 0
	now := time.Now().UTC()
	saved.CreatedDate = now
	saved.LastModifiedDate = now
	r.s.persons[saved.ID] = clonePerson(saved)
	return saved, nil
}

func (r *personRepository) UpdateIfVersionMatches(_ context.Context, e *models.Person) (*models.Person, error) {
	stored, ok := r.s.persons[e.ID]
	if !ok {
		return nil, domain.NewNotFound("person", e.ID)
	}
	if stored.Version != e.Version {
		return nil, domain.NewVersionConflict("person", e.ID, e.Version, stored.Version)
	}
	saved := clonePerson(e)
	saved.Version++
	saved.CreatedDate = stored.CreatedDate
	saved.LastModifiedDate = time.Now().UTC()
	r.s.persons[saved.ID] = clonePerson(saved)
	return saved, nil
}

func (r *personRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.persons[id]; !ok {
		return domain.NewNotFound("person", id)
	}
	delete(r.s.persons, id)
	return nil
}

type userRepository struct{ s *Store }

func (r *userRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	e, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	return cloneUser(e), nil
}

func (r *userRepository) FindByUserID(_ context.Context, userID string) (*models.User, error) {
	for _, e := range r.s.users {
		if e.UserID == userID {
			return cloneUser(e), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepository) FindAllPaged(_ context.Context, page repositories.PageRequest) ([]*models.User, int64, error) {
	all := make([]*models.User, 0, len(r.s.users))
	for _, e := range r.s.users {
		all = append(all, cloneUser(e))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Email != all[j].Email {
			return strings.ToLower(all[i].Email) < strings.ToLower(all[j].Email)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, page), int64(len(r.s.users)), nil
}

func (r *userRepository) Insert(_ context.Context, e *models.User) (*models.User, error) {
	saved := cloneUser(e)
	saved.ID = r.s.nextID()
	saved.Version = 0
	now := time.Now().UTC()
	saved.CreatedDate = now
	saved.LastModifiedDate = now
	r.s.users[saved.ID] = cloneUser(saved)
	return saved, nil
}

func (r *userRepository) UpdateIfVersionMatches(_ context.Context, e *models.User) (*models.User, error) {
	stored, ok := r.s.users[e.ID]
	if !ok {
		return nil, domain.NewNotFound("user", e.ID)
	}
	if stored.Version != e.Version {
		return nil, domain.NewVersionConflict("user", e.ID, e.Version, stored.Version)
	}
	saved := cloneUser(e)
	saved.Version++
	saved.UserID = stored.UserID
	saved.CreatedDate = stored.CreatedDate
	saved.LastModifiedDate = time.Now().UTC()
	r.s.users[saved.ID] = cloneUser(saved)
	return saved, nil
}

func (r *userRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.users[id]; !ok {
		return domain.NewNotFound("user", id)
	}
	delete(r.s.users, id)
	return nil
}

type itemTagRepository struct{ s *Store }

func (r *itemTagRepository) FindAllByItemID(_ context.Context, itemID int64) ([]*models.ItemTag, error) {
	var out []*models.ItemTag
	for _, link := range r.s.links {
		if link.ItemID == itemID {
			out = append(out, cloneItemTag(link))
		}
	}
	sortLinks(out)
	return out, nil
}

func (r *itemTagRepository) FindAllByTagID(_ context.Context, tagID int64) ([]*models.ItemTag, error) {
	var out []*models.ItemTag
	for _, link := range r.s.links {
		if link.TagID == tagID {
			out = append(out, cloneItemTag(link))
		}
	}
	sortLinks(out)
	return out, nil
}

func (r *itemTagRepository) Insert(_ context.Context, link *models.ItemTag) (*models.ItemTag, error) {
	saved := cloneItemTag(link)
	saved.ID = r.s.nextID()
	r.s.links[saved.ID] = cloneItemTag(saved)
	return saved, nil
}

func (r *itemTagRepository) DeleteByIDs(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(r.s.links, id)
	}
	return nil
}

func (r *itemTagRepository) DeleteAllByItemID(_ context.Context, itemID int64) error {
	for id, link := range r.s.links {
		if link.ItemID == itemID {
			delete(r.s.links, id)
		}
	}
	return nil
}

func (r *itemTagRepository) DeleteAllByTagID(_ context.Context, tagID int64) error {
	for id, link := range r.s.links {
		if link.TagID == tagID {
			delete(r.s.links, id)
		}
	}
	return nil
}

func (r *itemTagRepository) DeleteOrphaned(_ context.Context) (int64, error) {
	var n int64
	for id, link := range r.s.links {
		_, itemOK := r.s.items[link.ItemID]
		_, tagOK := r.s.tags[link.TagID]
		if !itemOK || !tagOK {
			delete(r.s.links, id)
			n++
		}
	}
	return n, nil
}

func sortTags(tags []*models.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].ID < tags[j].ID
	})
}

func sortLinks(links []*models.ItemTag) {
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
}

func paginate[T any](all []T, page repositories.PageRequest) []T {
	offset := page.Offset()
	if offset >= len(all) {
		return nil
	}
	end := offset + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
