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

const userColumns = `id, version, user_id, email, first_name, last_name, created_date, last_modified_date`

// UserRepository implements repositories.UserRepository. The users table is
// named in the plural because "user" is reserved in PostgreSQL.
type UserRepository struct {
	q database.Queryer
}

// NewUserRepository returns a UserRepository over the given connection or
// transaction.
func NewUserRepository(q database.Queryer) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("user", id)
		}
		return nil, storeErr("query user", err)
	}
	return user, nil
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("query user by user id", err)
	}
	return user, nil
}

func (r *UserRepository) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.User, int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email, id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, storeErr("query users", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, storeErr("scan users", err)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, storeErr("count users", err)
	}
	return users, total, nil
}

func (r *UserRepository) Insert(ctx context.Context, e *models.User) (*models.User, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO users (version, user_id, email, first_name, last_name, created_date, last_modified_date)
		 VALUES (0, $1, $2, $3, $4, now(), now())
		 RETURNING id, version, created_date, last_modified_date`,
		e.UserID, e.Email, e.FirstName, e.LastName,
	).Scan(&saved.ID, &saved.Version, &saved.CreatedDate, &saved.LastModifiedDate)
	if err != nil {
		return nil, storeErr("insert user", err)
	}
	return &saved, nil
}

// UpdateIfVersionMatches never writes user_id; the external identity is
// immutable once created.
func (r *UserRepository) UpdateIfVersionMatches(ctx context.Context, e *models.User) (*models.User, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`UPDATE users SET email = $1, first_name = $2, last_name = $3, version = version + 1, last_modified_date = now()
		 WHERE id = $4 AND version = $5
		 RETURNING version, last_modified_date`,
		e.Email, e.FirstName, e.LastName, e.ID, e.Version,
	).Scan(&saved.Version, &saved.LastModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			current, ferr := r.FindByID(ctx, e.ID)
			if ferr != nil {
				return nil, ferr
			}
			return nil, domain.NewVersionConflict("user", e.ID, e.Version, current.Version)
		}
		return nil, storeErr("update user", err)
	}
	return &saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete user", err)
	}
	if n == 0 {
		return domain.NewNotFound("user", id)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Version, &user.UserID, &user.Email, &user.FirstName,
		&user.LastName, &user.CreatedDate, &user.LastModifiedDate); err != nil {
		return nil, err
	}
	return &user, nil
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	defer rows.Close() //nolint:errcheck
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
