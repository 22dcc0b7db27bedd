package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ghuser/taskmanager/pkg/database"
	"github.com/ghuser/taskmanager/services/task/domain/models"
)

// ItemTagRepository implements repositories.ItemTagRepository over the
// item_tag join table.
type ItemTagRepository struct {
	q database.Queryer
}

// NewItemTagRepository returns an ItemTagRepository over the given connection
// or transaction.
func NewItemTagRepository(q database.Queryer) *ItemTagRepository {
	return &ItemTagRepository{q: q}
}

func (r *ItemTagRepository) FindAllByItemID(ctx context.Context, itemID int64) ([]*models.ItemTag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, item_id, tag_id FROM item_tag WHERE item_id = $1 ORDER BY id`, itemID)
	if err != nil {
		return nil, storeErr("query item tags by item", err)
	}
	links, err := collectItemTags(rows)
	if err != nil {
		return nil, storeErr("scan item tags by item", err)
	}
	return links, nil
}

func (r *ItemTagRepository) FindAllByTagID(ctx context.Context, tagID int64) ([]*models.ItemTag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, item_id, tag_id FROM item_tag WHERE tag_id = $1 ORDER BY id`, tagID)
	if err != nil {
		return nil, storeErr("query item tags by tag", err)
	}
	links, err := collectItemTags(rows)
	if err != nil {
		return nil, storeErr("scan item tags by tag", err)
	}
	return links, nil
}

func (r *ItemTagRepository) Insert(ctx context.Context, link *models.ItemTag) (*models.ItemTag, error) {
	saved := *link
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO item_tag (item_id, tag_id) VALUES ($1, $2) RETURNING id`,
		link.ItemID, link.TagID,
	).Scan(&saved.ID)
	if err != nil {
		return nil, storeErr("insert item tag", err)
	}
	return &saved, nil
}

func (r *ItemTagRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `DELETE FROM item_tag WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return storeErr("delete item tags", err)
	}
	return nil
}

func (r *ItemTagRepository) DeleteAllByItemID(ctx context.Context, itemID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM item_tag WHERE item_id = $1`, itemID); err != nil {
		return storeErr("delete item tags by item", err)
	}
	return nil
}

func (r *ItemTagRepository) DeleteAllByTagID(ctx context.Context, tagID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM item_tag WHERE tag_id = $1`, tagID); err != nil {
		return storeErr("delete item tags by tag", err)
	}
	return nil
}

// DeleteOrphaned removes join rows whose item or tag row is gone. Cascades
// keep the table consistent in normal operation; this is the safety net the
// maintenance sweep runs on a schedule.
func (r *ItemTagRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM item_tag it
		 WHERE NOT EXISTS (SELECT 1 FROM item i WHERE i.id = it.item_id)
		    OR NOT EXISTS (SELECT 1 FROM tag t WHERE t.id = it.tag_id)`)
	if err != nil {
		return 0, storeErr("delete orphaned item tags", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete orphaned item tags", err)
	}
	return n, nil
}

func collectItemTags(rows *sql.Rows) ([]*models.ItemTag, error) {
	defer rows.Close() //nolint:errcheck
	var links []*models.ItemTag
	for rows.Next() {
		var link models.ItemTag
		if err := rows.Scan(&link.ID, &link.ItemID, &link.TagID); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}
