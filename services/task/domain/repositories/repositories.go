// Package repositories defines the persistence interfaces for the task
// bounded context. The domain layer owns these interfaces; infrastructure
// (postgres, memory) implements them.
package repositories

import (
	"context"

	"github.com/ghuser/taskmanager/services/task/domain/models"
)

// PageRequest contains pagination parameters for list queries. Sorting is the
// kind-specific default order of each repository, stable with an id tie-break.
type PageRequest struct {
	Page int // zero-based page index
	Size int // records per page
}

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the number of records to skip.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// Store is the persistence surface shared by every versioned entity kind.
// Insert assigns the id, sets version to 0, and stamps both dates.
// UpdateIfVersionMatches persists e conditionally on the stored version
// equalling e's version, incrementing it by 1; a losing writer receives a
// VersionConflictError, a vanished row a NotFoundError.
type Store[T models.Versioned] interface {
	FindByID(ctx context.Context, id int64) (T, error)
	FindAllPaged(ctx context.Context, page PageRequest) ([]T, int64, error)
	Insert(ctx context.Context, e T) (T, error)
	UpdateIfVersionMatches(ctx context.Context, e T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ItemRepository persists Items. The loaded relations (Assignee, Tags) are
// not written by any of these methods; tag links go through ItemTagRepository.
type ItemRepository interface {
	Store[*models.Item]
	FindByAssigneeID(ctx context.Context, assigneeID int64) ([]*models.Item, error)
	DeleteByAssigneeID(ctx context.Context, assigneeID int64) error
}

// TagRepository persists Tags.
type TagRepository interface {
	Store[*models.Tag]
	// FindAllByItemID returns the tags linked to an item, sorted by name.
	FindAllByItemID(ctx context.Context, itemID int64) ([]*models.Tag, error)
}

// PersonRepository persists Persons.
type PersonRepository interface {
	Store[*models.Person]
}

// UserRepository persists Users.
type UserRepository interface {
	Store[*models.User]
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
}

// ItemTagRepository persists the item↔tag join rows.
type ItemTagRepository interface {
	FindAllByItemID(ctx context.Context, itemID int64) ([]*models.ItemTag, error)
	FindAllByTagID(ctx context.Context, tagID int64) ([]*models.ItemTag, error)
	Insert(ctx context.Context, link *models.ItemTag) (*models.ItemTag, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
	DeleteAllByItemID(ctx context.Context, itemID int64) error
	DeleteAllByTagID(ctx context.Context, tagID int64) error
	// DeleteOrphaned removes join rows whose item or tag no longer exists and
	// returns how many were removed. Used by the maintenance sweep.
	DeleteOrphaned(ctx context.Context) (int64, error)
}
