// Package memory implements the task repositories in process memory. It
// backs the service-level tests and mirrors the postgres semantics: id
// assignment on insert, conditional version updates, and all-or-nothing
// transactions via snapshot and restore.
//
// InTx serializes writers with a store-wide mutex; reads outside a
// transaction are unsynchronized. That is enough for the tests it exists for,
// not for concurrent production use.
package memory

import (
	"context"
	"sync"

	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// Event is one payload recorded in place of a real outbox publish.
type Event struct {
	Topic   string
	Payload any
}

// Store holds every entity kind plus the recorded events.
type Store struct {
	mu      sync.Mutex
	seq     int64
	items   map[int64]*models.Item
	tags    map[int64]*models.Tag
	persons map[int64]*models.Person
	users   map[int64]*models.User
	links   map[int64]*models.ItemTag
	events  []Event
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		items:   map[int64]*models.Item{},
		tags:    map[int64]*models.Tag{},
		persons: map[int64]*models.Person{},
		users:   map[int64]*models.User{},
		links:   map[int64]*models.ItemTag{},
	}
}

// Events returns the events recorded by committed transactions, in commit
// order.
func (s *Store) Events() []Event { return s.events }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	seq     int64
	items   map[int64]*models.Item
	tags    map[int64]*models.Tag
	persons map[int64]*models.Person
	users   map[int64]*models.User
	links   map[int64]*models.ItemTag
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		seq:     s.seq,
		items:   cloneMap(s.items, cloneItem),
		tags:    cloneMap(s.tags, cloneTag),
		persons: cloneMap(s.persons, clonePerson),
		users:   cloneMap(s.users, cloneUser),
		links:   cloneMap(s.links, cloneItemTag),
	}
}

func (s *Store) restore(snap snapshot) {
	s.seq = snap.seq
	s.items = snap.items
	s.tags = snap.tags
	s.persons = snap.persons
	s.users = snap.users
	s.links = snap.links
}

// UnitOfWork implements repositories.UnitOfWork over a Store.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork returns a UnitOfWork over the given store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Repos returns repositories bound to the store, outside any transaction.
// Its Events publisher is nil.
func (u *UnitOfWork) Repos() *repositories.Repositories {
	return newRepositories(u.store, nil)
}

// InTx runs fn against the store under the writer lock. On error every
// change fn made is rolled back and its events are discarded.
func (u *UnitOfWork) InTx(_ context.Context, fn func(r *repositories.Repositories) error) error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	collector := &eventCollector{}
	if err := fn(newRepositories(s, collector)); err != nil {
		s.restore(snap)
		return err
	}
	s.events = append(s.events, collector.pending...)
	return nil
}

func newRepositories(s *Store, pub repositories.EventPublisher) *repositories.Repositories {
	return &repositories.Repositories{
		Items:    &itemRepository{s: s},
		Tags:     &tagRepository{s: s},
		Persons:  &personRepository{s: s},
		Users:    &userRepository{s: s},
		ItemTags: &itemTagRepository{s: s},
		Events:   pub,
	}
}

// eventCollector stages events until the transaction commits.
type eventCollector struct {
	pending []Event
}

func (c *eventCollector) Publish(_ context.Context, topic string, payload any) error {
	c.pending = append(c.pending, Event{Topic: topic, Payload: payload})
	return nil
}

func cloneMap[T any](m map[int64]T, clone func(T) T) map[int64]T {
	out := make(map[int64]T, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func cloneItem(e *models.Item) *models.Item {
	c := *e
	if e.AssigneeID != nil {
		v := *e.AssigneeID
		c.AssigneeID = &v
	}
	c.Assignee = nil
	c.Tags = append([]models.Tag(nil), e.Tags...)
	return &c
}

func cloneTag(e *models.Tag) *models.Tag { c := *e; return &c }

func clonePerson(e *models.Person) *models.Person { c := *e; return &c }

func cloneUser(e *models.User) *models.User { c := *e; return &c }

func cloneItemTag(e *models.ItemTag) *models.ItemTag { c := *e; return &c }
