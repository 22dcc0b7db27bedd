package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ghuser/taskmanager/pkg/database"
	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/models"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

const itemColumns = `id, version, description, status, assignee_id, created_date, last_modified_date`

// ItemRepository implements repositories.ItemRepository. It never touches the
// Assignee and Tags relations; those are loaded separately.
type ItemRepository struct {
	q database.Queryer
}

// NewItemRepository returns an ItemRepository over the given connection or
// transaction.
func NewItemRepository(q database.Queryer) *ItemRepository {
	return &ItemRepository{q: q}
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM item WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("item", id)
		}
		return nil, storeErr("query item", err)
	}
	return item, nil
}

func (r *ItemRepository) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Item, int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM item ORDER BY last_modified_date, id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, storeErr("query items", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, 0, storeErr("scan items", err)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM item`).Scan(&total); err != nil {
		return nil, 0, storeErr("count items", err)
	}
	return items, total, nil
}

func (r *ItemRepository) Insert(ctx context.Context, e *models.Item) (*models.Item, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO item (version, description, status, assignee_id, created_date, last_modified_date)
		 VALUES (0, $1, $2, $3, now(), now())
		 RETURNING id, version, created_date, last_modified_date`,
		e.Description, string(e.Status), nullableID(e.AssigneeID),
	).Scan(&saved.ID, &saved.Version, &saved.CreatedDate, &saved.LastModifiedDate)
	if err != nil {
		return nil, storeErr("insert item", err)
	}
	return &saved, nil
}

// UpdateIfVersionMatches writes e guarded by the stored version. Zero rows
// updated means a racing writer won or the row is gone; a re-read tells which.
func (r *ItemRepository) UpdateIfVersionMatches(ctx context.Context, e *models.Item) (*models.Item, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`UPDATE item
		 SET description = $1, status = $2, assignee_id = $3, version = version + 1, last_modified_date = now()
		 WHERE id = $4 AND version = $5
		 RETURNING version, last_modified_date`,
		e.Description, string(e.Status), nullableID(e.AssigneeID), e.ID, e.Version,
	).Scan(&saved.Version, &saved.LastModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.conflict(ctx, e)
		}
		return nil, storeErr("update item", err)
	}
	return &saved, nil
}

func (r *ItemRepository) conflict(ctx context.Context, e *models.Item) error {
	current, err := r.FindByID(ctx, e.ID)
	if err != nil {
		return err
	}
	return domain.NewVersionConflict("item", e.ID, e.Version, current.Version)
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM item WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete item", err)
	}
	if n == 0 {
		return domain.NewNotFound("item", id)
	}
	return nil
}

func (r *ItemRepository) FindByAssigneeID(ctx context.Context, assigneeID int64) ([]*models.Item, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM item WHERE assignee_id = $1 ORDER BY id`, assigneeID)
	if err != nil {
		return nil, storeErr("query items by assignee", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, storeErr("scan items by assignee", err)
	}
	return items, nil
}

func (r *ItemRepository) DeleteByAssigneeID(ctx context.Context, assigneeID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM item WHERE assignee_id = $1`, assigneeID); err != nil {
		return storeErr("delete items by assignee", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var status string
	var assigneeID sql.NullInt64
	if err := row.Scan(&item.ID, &item.Version, &item.Description, &status, &assigneeID,
		&item.CreatedDate, &item.LastModifiedDate); err != nil {
		return nil, err
	}
	item.Status = models.ItemStatus(status)
	if assigneeID.Valid {
		item.AssigneeID = &assigneeID.Int64
	}
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*models.Item, error) {
	defer rows.Close() //nolint:errcheck
	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
