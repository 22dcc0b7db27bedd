package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/taskmanager/pkg/auth"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/pkg/patch"
	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// UserUpdate carries the full replacement state for a user update. The
// external user id is immutable and is not part of it.
type UserUpdate struct {
	Email     string
	FirstName string
	LastName  string
}

// UserPatch carries tri-state fields for a partial user update. All fields
// are non-nullable and reject an explicit clear at merge time.
type UserPatch struct {
	Email     patch.Field[string]
	FirstName patch.Field[string]
	LastName  patch.Field[string]
}

// UserService orchestrates versioned CRUD for Users. Users are standalone:
// nothing references them, so deletion has no cascade.
type UserService struct {
	res *Resource[*models.User]
	log logger.Logger
}

// NewUserService returns a UserService wired with the given unit of work.
func NewUserService(uow repositories.UnitOfWork, log logger.Logger) *UserService {
	return &UserService{
		res: NewResource[*models.User](uow, userKind{}),
		log: log,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64, expectedVersion *int64) (*models.User, error) {
	return s.res.GetByID(ctx, id, expectedVersion)
}

func (s *UserService) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.User, int64, error) {
	return s.res.FindAllPaged(ctx, page)
}

// Create persists a new user. When the external user id is blank a fresh
// UUID is assigned.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user != nil && user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	return s.res.Create(ctx, user)
}

func (s *UserService) Update(ctx context.Context, id int64, expectedVersion *int64, in UserUpdate) (*models.User, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.User) (*models.User, error) {
		next := *stored
		next.Email = in.Email
		next.FirstName = in.FirstName
		next.LastName = in.LastName
		return &next, nil
	})
}

func (s *UserService) Patch(ctx context.Context, id int64, expectedVersion *int64, p UserPatch) (*models.User, error) {
	return s.res.Update(ctx, id, expectedVersion, func(_ *repositories.Repositories, stored *models.User) (*models.User, error) {
		if p.Email.IsClear() {
			return nil, domain.NewInvalidArgument("user email cannot be cleared")
		}
		if p.FirstName.IsClear() {
			return nil, domain.NewInvalidArgument("user first name cannot be cleared")
		}
		if p.LastName.IsClear() {
			return nil, domain.NewInvalidArgument("user last name cannot be cleared")
		}
		next := *stored
		next.Email = p.Email.Or(stored.Email)
		next.FirstName = p.FirstName.Or(stored.FirstName)
		next.LastName = p.LastName.Or(stored.LastName)
		if next.Email == stored.Email && next.FirstName == stored.FirstName && next.LastName == stored.LastName {
			return nil, errNoChanges
		}
		return &next, nil
	})
}

func (s *UserService) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	if err := s.res.Delete(ctx, id, expectedVersion); err != nil {
		return err
	}
	actor, _ := auth.ActorFromCtx(ctx)
	s.log.InfoContext(ctx, "user deleted", "user_id", id, "actor", actor)
	return nil
}
