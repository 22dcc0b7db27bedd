// Package postgres implements the task repositories against PostgreSQL.
// Writes go through UnitOfWork.InTx so row changes, join-table reconciliation
// and outbox events commit atomically.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/taskmanager/pkg/database"
	"github.com/ghuser/taskmanager/pkg/events"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// UnitOfWork hands out repository bundles: transaction-bound ones via InTx,
// and a pool-bound read-only bundle via Repos.
type UnitOfWork struct {
	db    *database.Database
	bus   *events.EventBus
	log   logger.Logger
	plain *repositories.Repositories
}

// NewUnitOfWork returns a UnitOfWork over the given pool and event bus. The
// bus may be nil; events are then skipped.
func NewUnitOfWork(db *database.Database, bus *events.EventBus, log logger.Logger) *UnitOfWork {
	return &UnitOfWork{
		db:    db,
		bus:   bus,
		log:   log,
		plain: newRepositories(db.DB(), nil),
	}
}

// Repos returns repositories bound to the connection pool, outside any
// transaction. Its Events publisher is nil.
func (u *UnitOfWork) Repos() *repositories.Repositories { return u.plain }

// InTx runs fn with repositories bound to a single transaction. Events
// published through the bundle's Events publisher land in the Watermill
// outbox within the same transaction.
func (u *UnitOfWork) InTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	return u.db.WithTx(ctx, func(tx *sql.Tx) error {
		var pub repositories.EventPublisher
		if u.bus != nil {
			p, err := u.bus.NewTxPublisher(tx)
			if err != nil {
				return fmt.Errorf("tx publisher: %w", err)
			}
			pub = &txPublisher{pub: p}
		}
		return fn(newRepositories(tx, pub))
	})
}

func newRepositories(q database.Queryer, pub repositories.EventPublisher) *repositories.Repositories {
	return &repositories.Repositories{
		Items:    NewItemRepository(q),
		Tags:     NewTagRepository(q),
		Persons:  NewPersonRepository(q),
		Users:    NewUserRepository(q),
		ItemTags: NewItemTagRepository(q),
		Events:   pub,
	}
}

// txPublisher adapts a transaction-bound Watermill publisher to the domain's
// EventPublisher. Payloads are JSON; OTel trace context rides in the message
// metadata like EventBus.Publish does.
type txPublisher struct {
	pub message.Publisher
}

func (p *txPublisher) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// storeErr tags an infrastructure failure so callers can distinguish it from
// the domain outcomes (not found, version conflict).
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
