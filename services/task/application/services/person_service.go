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

// PersonUpdate carries the full replacement state for a person update.
type PersonUpdate struct {
	FirstName string
	LastName  string
}

// PersonPatch carries tri-state fields for a partial person update. Both
// names are non-nullable and reject an explicit clear at merge time.
type PersonPatch struct {
	FirstName patch.Field[string]
	LastName  patch.Field[string]
}

// PersonService orchestrates versioned CRUD for Persons. Deleting a person
// cascades to the items assigned to them and those items' tag links.
type PersonService struct {
	res *Resource[*models.Person]
	log logger.Logger
}

// NewPersonService returns a PersonService wired with the given unit of work.
func NewPersonService(uow repositories.UnitOfWork, log logger.Logger) *PersonService {
	return &PersonService{
		res: NewResource[*models.Person](uow, personKind{}),
		log: log,
	}
}

func (s *PersonService) GetByID(ctx context.Context, id int64, expectedVersion *int64) (*models.Person, error) {
	return s.res.GetByID(ctx, id, expectedVersion)
}

func (s *PersonService) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Person, int64, error) {
	return s.res.FindAllPaged(ctx, page)
}

func (s *PersonService) Create(ctx context.Context, person *models.Person) (*models.Person, error) {
	return s.res.Create(ctx, person)
}

func (s *PersonService) Update(ctx context.Context, id int64, expectedVersion *int64, in PersonUpdate) (*models.Person, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.Person) (*models.Person, error) {
		next := *stored
		next.FirstName = in.FirstName
		next.LastName = in.LastName
		return &next, nil
	})
}

func (s *PersonService) Patch(ctx context.Context, id int64, expectedVersion *int64, p PersonPatch) (*models.Person, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.Person) (*models.Person, error) {
		if p.FirstName.IsClear() {
			return nil, domain.NewInvalidArgument("person first name cannot be cleared")
		}
		if p.LastName.IsClear() {
			return nil, domain.NewInvalidArgument("person last name cannot be cleared")
		}
		next := *stored
		next.FirstName = p.FirstName.Or(stored.FirstName)
		next.LastName = p.LastName.Or(stored.LastName)
		if next.FirstName == stored.FirstName && next.LastName == stored.LastName {
			return nil, errNoChanges
		}
		return &next, nil
	})
}

func (s *PersonService) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	if err := s.res.Delete(ctx, id, expectedVersion); err != nil {
		return err
	}
	actor, _ := auth.ActorFromCtx(ctx)
	s.log.InfoContext(ctx, "person deleted", "person_id", id, "actor", actor)
	return nil
}
