package services

import (
	"context"

	"github.com/ghuser/taskmanager/pkg/auth"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/pkg/patch"
	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// TagPatch carries tri-state fields for a partial tag update. Name is
// non-nullable and rejects an explicit clear at merge time.
type TagPatch struct {
	Name patch.Field[string]
}

// TagService orchestrates versioned CRUD for Tags. Deleting a tag unlinks it
// from every item; the items themselves survive.
type TagService struct {
	res *Resource[*models.Tag]
	log logger.Logger
}

// NewTagService returns a TagService wired with the given unit of work.
func NewTagService(uow repositories.UnitOfWork, log logger.Logger) *TagService {
	return &TagService{
		res: NewResource[*models.Tag](uow, tagKind{}),
		log: log,
	}
}

func (s *TagService) GetByID(ctx context.Context, id int64, expectedVersion *int64) (*models.Tag, error) {
	return s.res.GetByID(ctx, id, expectedVersion)
}

func (s *TagService) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Tag, int64, error) {
	return s.res.FindAllPaged(ctx, page)
}

func (s *TagService) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	return s.res.Create(ctx, tag)
}

func (s *TagService) Update(ctx context.Context, id int64, expectedVersion *int64, name string) (*models.Tag, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.Tag) (*models.Tag, error) {
		next := *stored
		next.Name = name
		return &next, nil
	})
}

func (s *TagService) Patch(ctx context.Context, id int64, expectedVersion *int64, p TagPatch) (*models.Tag, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.Tag) (*models.Tag, error) {
		if p.Name.IsClear() {
			return nil, domain.NewInvalidArgument("tag name cannot be cleared")
		}
		next := *stored
		next.Name = p.Name.Or(stored.Name)
		if next.Name == stored.Name {
			return nil, errNoChanges
		}
		return &next, nil
	})
}

func (s *TagService) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	if err := s.res.Delete(ctx, id, expectedVersion); err != nil {
		return err
	}
	actor, _ := auth.ActorFromCtx(ctx)
	s.log.InfoContext(ctx, "tag deleted", "tag_id", id, "actor", actor)
	return nil
}
