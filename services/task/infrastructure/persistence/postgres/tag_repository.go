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

const tagColumns = `id, version, name, created_date, last_modified_date`

// TagRepository implements repositories.TagRepository.
type TagRepository struct {
	q database.Queryer
}

// NewTagRepository returns a TagRepository over the given connection or
// transaction.
func NewTagRepository(q database.Queryer) *TagRepository {
	return &TagRepository{q: q}
}

func (r *TagRepository) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tag WHERE id = $1`, id)
	tag, err := scanTag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("tag", id)
		}
		return nil, storeErr("query tag", err)
	}
	return tag, nil
}

func (r *TagRepository) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Tag, int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tag ORDER BY name, id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, storeErr("query tags", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, 0, storeErr("scan tags", err)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM tag`).Scan(&total); err != nil {
		return nil, 0, storeErr("count tags", err)
	}
	return tags, total, nil
}

func (r *TagRepository) FindAllByItemID(ctx context.Context, itemID int64) ([]*models.Tag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT t.id, t.version, t.name, t.created_date, t.last_modified_date
		 FROM tag t JOIN item_tag it ON it.tag_id = t.id
		 WHERE it.item_id = $1
		 ORDER BY t.name, t.id`, itemID)
	if err != nil {
		return nil, storeErr("query tags by item", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, storeErr("scan tags by item", err)
	}
	return tags, nil
}

func (r *TagRepository) Insert(ctx context.Context, e *models.Tag) (*models.Tag, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO tag (version, name, created_date, last_modified_date)
		 VALUES (0, $1, now(), now())
		 RETURNING id, version, created_date, last_modified_date`,
		e.Name,
	).Scan(&saved.ID, &saved.Version, &saved.CreatedDate, &saved.LastModifiedDate)
	if err != nil {
		return nil, storeErr("insert tag", err)
	}
	return &saved, nil
}

func (r *TagRepository) UpdateIfVersionMatches(ctx context.Context, e *models.Tag) (*models.Tag, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`UPDATE tag SET name = $1, version = version + 1, last_modified_date = now()
		 WHERE id = $2 AND version = $3
		 RETURNING version, last_modified_date`,
		e.Name, e.ID, e.Version,
	).Scan(&saved.Version, &saved.LastModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			current, ferr := r.FindByID(ctx, e.ID)
			if ferr != nil {
				return nil, ferr
			}
			return nil, domain.NewVersionConflict("tag", e.ID, e.Version, current.Version)
		}
		return nil, storeErr("update tag", err)
	}
	return &saved, nil
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tag WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete tag", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete tag", err)
	}
	if n == 0 {
		return domain.NewNotFound("tag", id)
	}
	return nil
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	if err := row.Scan(&tag.ID, &tag.Version, &tag.Name, &tag.CreatedDate, &tag.LastModifiedDate); err != nil {
		return nil, err
	}
	return &tag, nil
}

func collectTags(rows *sql.Rows) ([]*models.Tag, error) {
	defer rows.Close() //nolint:errcheck
	var tags []*models.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
