package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = "id, name, surname, birth_date, email, active, created_at, updated_at"

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

func (r *userRepository) Search(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error) {
	filter = filter.Normalized()

	where := []string{
		"($1 = '' OR name ILIKE '%' || $1 || '%')",
		"($2 = '' OR surname ILIKE '%' || $2 || '%')",
		"($3::boolean IS NULL OR active = $3)",
	}
	clause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM users WHERE " + clause
	if err := r.pool.QueryRow(ctx, countQuery, filter.Name, filter.Surname, filter.Active).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s ORDER BY %s LIMIT $4 OFFSET $5",
		userColumns, clause, sortClause(filter.Sort),
	)
	rows, err := r.pool.Query(ctx, query,
		filter.Name, filter.Surname, filter.Active,
		filter.Size, filter.Page*filter.Size,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, filter.Size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.UserPage{
		Users: users,
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
	}, nil
}

func (r *userRepository) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	const query = `
	INSERT INTO users (name, surname, birth_date, email, active)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	user := &domain.User{
		Name:      input.Name,
		Surname:   input.Surname,
		BirthDate: input.BirthDate,
		Email:     input.Email,
		Active:    input.Active,
	}
	err := r.pool.QueryRow(ctx, query,
		input.Name, input.Surname, input.BirthDate, input.Email, input.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateUnique(err, domain.ErrEmailTaken)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, id int64, input domain.UserInput) (*domain.User, error) {
	const query = `
	UPDATE users
	SET name = $2,
		surname = $3,
		birth_date = $4,
		email = $5,
		active = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	user := &domain.User{
		ID:        id,
		Name:      input.Name,
		Surname:   input.Surname,
		BirthDate: input.BirthDate,
		Email:     input.Email,
		Active:    input.Active,
	}
	err := r.pool.QueryRow(ctx, query,
		id, input.Name, input.Surname, input.BirthDate, input.Email, input.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, translateUnique(err, domain.ErrEmailTaken)
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	// payment_cards rows cascade via the FK constraint.
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1", id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.BirthDate,
		&user.Email,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func sortClause(sort string) string {
	switch sort {
	case "name":
		return "name ASC, id ASC"
	case "surname":
		return "surname ASC, id ASC"
	case "created_at":
		return "created_at DESC, id ASC"
	default:
		return "id ASC"
	}
}
