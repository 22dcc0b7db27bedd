package repositories

import "context"

// Repositories bundles all repositories of the bounded context, bound to a
// single database handle — either the shared pool or one open transaction.
type Repositories struct {
	Items    ItemRepository
	Tags     TagRepository
	Persons  PersonRepository
	Users    UserRepository
	ItemTags ItemTagRepository

	// Events publishes domain events atomically with the surrounding
	// transaction (transactional outbox). Nil when event publishing is not
	// wired (e.g. maintenance jobs).
	Events EventPublisher
}

// EventPublisher writes a domain event. Inside InTx the write shares the
// transaction, so the event is only visible if the whole operation commits.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// UnitOfWork is the transaction boundary for the bounded context. Every
// public write operation of the services runs as one InTx call: either all
// row writes, join-row changes, cascaded deletes, and event publishes commit,
// or none do.
type UnitOfWork interface {
	// InTx runs fn atomically. The Repositories passed to fn observe
	// uncommitted writes made earlier in the same fn.
	InTx(ctx context.Context, fn func(r *Repositories) error) error

	// Repos returns repositories bound to the shared handle, for
	// single-statement reads that need no transaction.
	Repos() *Repositories
}
