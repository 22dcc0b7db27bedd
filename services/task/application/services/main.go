package services

import (
	"github.com/ghuser/taskmanager/pkg/app"
	"github.com/ghuser/taskmanager/pkg/cache"
	"github.com/ghuser/taskmanager/services/task/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires the versioned-resource services with their infrastructure
// implementations.
type Services struct {
	Item   *ItemService
	Tag    *TagService
	Person *PersonService
	User   *UserService
}

// New wires all task application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	uow := postgres.NewUnitOfWork(a.Db, a.EventBus, a.Logger)
	itemCache := cache.NewItemCache(a.Redis)
	return &Services{
		Item:   NewItemService(uow, itemCache, a.Logger),
		Tag:    NewTagService(uow, a.Logger),
		Person: NewPersonService(uow, a.Logger),
		User:   NewUserService(uow, a.Logger),
	}
}
