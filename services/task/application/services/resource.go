package services

import (
	"context"
	"errors"

	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// Action names a lifecycle transition, passed to the Kind's Notify hook.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Kind supplies the per-entity-kind behavior the generic resource flow needs.
// The create/update/patch/delete control flow is written once in Resource;
// each entity kind only contributes its store, field rules, association
// reconciliation, dependent cascade, and event notification.
type Kind[T models.Versioned] interface {
	Name() string
	Store(r *repositories.Repositories) repositories.Store[T]

	// Validate checks field rules and referential integrity. Runs before any
	// write, inside the operation's transaction.
	Validate(ctx context.Context, r *repositories.Repositories, e T) error

	// Reconcile syncs the kind's associations with e's desired state, after
	// validation and before the row write. Kinds without associations return nil.
	Reconcile(ctx context.Context, r *repositories.Repositories, e T) error

	// Cascade removes dependents before the row itself is deleted.
	Cascade(ctx context.Context, r *repositories.Repositories, e T) error

	// Notify publishes the kind's lifecycle event inside the transaction.
	Notify(ctx context.Context, r *repositories.Repositories, action Action, e T) error
}

// errNoChanges is returned by an apply func to signal that the merged entity
// equals the stored one. The update is skipped entirely: no row write, no
// reconciliation, no version bump.
var errNoChanges = errors.New("no changes")

// Resource implements optimistic-concurrency CRUD for one entity kind. Every
// write runs as one UnitOfWork transaction; the store's conditional update is
// the sole serialization point between racing writers, and a version pre-check
// fails fast before side effects.
type Resource[T models.Versioned] struct {
	uow  repositories.UnitOfWork
	kind Kind[T]
}

// NewResource returns the generic resource flow for the given kind.
func NewResource[T models.Versioned](uow repositories.UnitOfWork, kind Kind[T]) *Resource[T] {
	return &Resource[T]{uow: uow, kind: kind}
}

// GetByID returns the stored entity. When expectedVersion is non-nil and
// differs from the stored version, the result is a VersionConflictError; this
// pre-check lets callers fail before attempting a dependent operation.
func (s *Resource[T]) GetByID(ctx context.Context, id int64, expectedVersion *int64) (T, error) {
	var zero T
	e, err := s.kind.Store(s.uow.Repos()).FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.precheck(e, expectedVersion); err != nil {
		return zero, err
	}
	return e, nil
}

// FindAllPaged returns one page plus the total count, in the kind's default
// order (stable, id tie-break).
func (s *Resource[T]) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]T, int64, error) {
	return s.kind.Store(s.uow.Repos()).FindAllPaged(ctx, page.Normalize())
}

// Create inserts a new entity. The id and version must both be unset; the
// store assigns the id and sets version 0. Associations (if the kind has any)
// are reconciled from an empty current set in the same transaction.
func (s *Resource[T]) Create(ctx context.Context, e T) (T, error) {
	var out T
	err := s.uow.InTx(ctx, func(r *repositories.Repositories) error {
		if e.EntityID() != 0 || e.EntityVersion() != 0 {
			return domain.NewInvalidArgument("when creating a %s, the id and the version must be unset", s.kind.Name())
		}
		if err := s.kind.Validate(ctx, r, e); err != nil {
			return err
		}
		saved, err := s.kind.Store(r).Insert(ctx, e)
		if err != nil {
			return err
		}
		if err := s.kind.Reconcile(ctx, r, saved); err != nil {
			return err
		}
		if err := s.kind.Notify(ctx, r, ActionCreated, saved); err != nil {
			return err
		}
		out = saved
		return nil
	})
	return out, err
}

// Update loads the stored entity, pre-checks expectedVersion, and lets apply
// produce the entity to persist from the stored one. The apply func must keep
// the stored version and created date; it may return errNoChanges to skip the
// write. If a writer raced between the pre-check and the conditional write,
// the store reports a VersionConflictError — never retried here.
func (s *Resource[T]) Update(
	ctx context.Context,
	id int64,
	expectedVersion *int64,
	apply func(r *repositories.Repositories, stored T) (T, error),
) (T, error) {
	var out T
	err := s.uow.InTx(ctx, func(r *repositories.Repositories) error {
		store := s.kind.Store(r)
		stored, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.precheck(stored, expectedVersion); err != nil {
			return err
		}
		next, err := apply(r, stored)
		if errors.Is(err, errNoChanges) {
			out = stored
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.kind.Validate(ctx, r, next); err != nil {
			return err
		}
		if err := s.kind.Reconcile(ctx, r, next); err != nil {
			return err
		}
		saved, err := store.UpdateIfVersionMatches(ctx, next)
		if err != nil {
			return err
		}
		if err := s.kind.Notify(ctx, r, ActionUpdated, saved); err != nil {
			return err
		}
		out = saved
		return nil
	})
	return out, err
}

// Delete removes the entity after a version pre-check. Dependents and their
// own associations are cascaded first, inside the same transaction, so no
// dangling join rows survive a commit.
func (s *Resource[T]) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	return s.uow.InTx(ctx, func(r *repositories.Repositories) error {
		store := s.kind.Store(r)
		stored, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.precheck(stored, expectedVersion); err != nil {
			return err
		}
		if err := s.kind.Cascade(ctx, r, stored); err != nil {
			return err
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		return s.kind.Notify(ctx, r, ActionDeleted, stored)
	})
}

func (s *Resource[T]) precheck(stored T, expectedVersion *int64) error {
	if expectedVersion != nil && *expectedVersion != stored.EntityVersion() {
		return domain.NewVersionConflict(s.kind.Name(), stored.EntityID(), *expectedVersion, stored.EntityVersion())
	}
	return nil
}
