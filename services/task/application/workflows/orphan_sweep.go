// Package workflows holds the Temporal maintenance workflows for the task
// bounded context.
package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

const (
	// TaskQueue is the Temporal task queue for task maintenance workflows.
	TaskQueue = "taskmanager-maintenance"

	// OrphanSweepWorkflowID is the fixed workflow id of the scheduled sweep.
	OrphanSweepWorkflowID = "item-tag-orphan-sweep"

	// OrphanSweepCron runs the sweep hourly.
	OrphanSweepCron = "0 * * * *"
)

// Activities bundles the activity implementations with their dependencies.
type Activities struct {
	uow repositories.UnitOfWork
	log logger.Logger
}

// NewActivities returns the activity set wired with the given unit of work.
func NewActivities(uow repositories.UnitOfWork, log logger.Logger) *Activities {
	return &Activities{uow: uow, log: log}
}

// SweepOrphanedItemTags deletes item↔tag join rows whose item or tag row no
// longer exists, and returns how many were removed.
func (a *Activities) SweepOrphanedItemTags(ctx context.Context) (int64, error) {
	var removed int64
	err := a.uow.InTx(ctx, func(r *repositories.Repositories) error {
		n, err := r.ItemTags.DeleteOrphaned(ctx)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		a.log.InfoContext(ctx, "orphaned item tags removed", "count", removed)
	}
	return removed, nil
}

// OrphanSweepWorkflow runs one sweep of the item_tag table. Scheduled with
// OrphanSweepCron from the worker process.
func OrphanSweepWorkflow(ctx workflow.Context) (int64, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var removed int64
	if err := workflow.ExecuteActivity(ctx, "SweepOrphanedItemTags").Get(ctx, &removed); err != nil {
		return 0, err
	}
	workflow.GetLogger(ctx).Info("orphan sweep completed", "removed", removed)
	return removed, nil
}
