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

const personColumns = `id, version, first_name, last_name, created_date, last_modified_date`

// PersonRepository implements repositories.PersonRepository.
type PersonRepository struct {
	q database.Queryer
}

// NewPersonRepository returns a PersonRepository over the given connection or
// transaction.
func NewPersonRepository(q database.Queryer) *PersonRepository {
	return &PersonRepository{q: q}
}

func (r *PersonRepository) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM person WHERE id = $1`, id)
	person, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("person", id)
		}
		return nil, storeErr("query person", err)
	}
	return person, nil
}

func (r *PersonRepository) FindAllPaged(ctx context.Context, page repositories.PageRequest) ([]*models.Person, int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+personColumns+` FROM person ORDER BY first_name, last_name, id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, storeErr("query persons", err)
	}
	persons, err := collectPersons(rows)
	if err != nil {
		return nil, 0, storeErr("scan persons", err)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM person`).Scan(&total); err != nil {
		return nil, 0, storeErr("count persons", err)
	}
	return persons, total, nil
}

func (r *PersonRepository) Insert(ctx context.Context, e *models.Person) (*models.Person, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO person (version, first_name, last_name, created_date, last_modified_date)
		 VALUES (0, $1, $2, now(), now())
		 RETURNING id, version, created_date, last_modified_date`,
		e.FirstName, e.LastName,
	).Scan(&saved.ID, &saved.Version, &saved.CreatedDate, &saved.LastModifiedDate)
	if err != nil {
		return nil, storeErr("insert person", err)
	}
	return &saved, nil
}

func (r *PersonRepository) UpdateIfVersionMatches(ctx context.Context, e *models.Person) (*models.Person, error) {
	saved := *e
	err := r.q.QueryRowContext(ctx,
		`UPDATE person SET first_name = $1, last_name = $2, version = version + 1, last_modified_date = now()
		 WHERE id = $3 AND version = $4
		 RETURNING version, last_modified_date`,
		e.FirstName, e.LastName, e.ID, e.Version,
	).Scan(&saved.Version, &saved.LastModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			current, ferr := r.FindByID(ctx, e.ID)
			if ferr != nil {
				return nil, ferr
			}
			return nil, domain.NewVersionConflict("person", e.ID, e.Version, current.Version)
		}
		return nil, storeErr("update person", err)
	}
	return &saved, nil
}

func (r *PersonRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM person WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete person", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete person", err)
	}
	if n == 0 {
		return domain.NewNotFound("person", id)
	}
	return nil
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var person models.Person
	if err := row.Scan(&person.ID, &person.Version, &person.FirstName, &person.LastName,
		&person.CreatedDate, &person.LastModifiedDate); err != nil {
		return nil, err
	}
	return &person, nil
}

func collectPersons(rows *sql.Rows) ([]*models.Person, error) {
	defer rows.Close() //nolint:errcheck
	var persons []*models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}
