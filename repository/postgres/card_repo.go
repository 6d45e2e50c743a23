package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/repository"
)

type cardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository instantiates a Postgres-backed card repository.
func NewCardRepository(pool *pgxpool.Pool) repository.CardRepository {
	return &cardRepository{pool: pool}
}

const cardColumns = "id, user_id, number, holder, expiration_date, active, created_at, updated_at"

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_cards WHERE id = $1", cardColumns)
	return scanCard(r.pool.QueryRow(ctx, query, id))
}

func (r *cardRepository) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_cards WHERE number = $1", cardColumns)
	return scanCard(r.pool.QueryRow(ctx, query, number))
}

func (r *cardRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_cards WHERE user_id = $1 ORDER BY id", cardColumns)
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]domain.Card, 0, domain.MaxCardsPerUser)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func (r *cardRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payment_cards WHERE user_id = $1", ownerID).Scan(&count)
	return count, err
}

func (r *cardRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM payment_cards WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (r *cardRepository) Create(ctx context.Context, ownerID int64, input domain.CardInput) (*domain.Card, error) {
	const query = `
	INSERT INTO payment_cards (user_id, number, holder, expiration_date, active)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	card := &domain.Card{
		UserID:         ownerID,
		Number:         input.Number,
		Holder:         input.Holder,
		ExpirationDate: input.ExpirationDate,
		Active:         input.Active,
	}
	err := r.pool.QueryRow(ctx, query,
		ownerID, input.Number, input.Holder, input.ExpirationDate, input.Active,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return nil, translateUnique(err, domain.ErrCardNumberTaken)
	}
	return card, nil
}

func (r *cardRepository) Update(ctx context.Context, id int64, input domain.CardInput) (*domain.Card, error) {
	const query = `
	UPDATE payment_cards
	SET number = $2,
		holder = $3,
		expiration_date = $4,
		active = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING user_id, created_at, updated_at
	`
	card := &domain.Card{
		ID:             id,
		Number:         input.Number,
		Holder:         input.Holder,
		ExpirationDate: input.ExpirationDate,
		Active:         input.Active,
	}
	err := r.pool.QueryRow(ctx, query,
		id, input.Number, input.Holder, input.ExpirationDate, input.Active,
	).Scan(&card.UserID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, translateUnique(err, domain.ErrCardNumberTaken)
	}
	return card, nil
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM payment_cards WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *cardRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE payment_cards SET active = $2, updated_at = NOW() WHERE id = $1", id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func scanCard(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Card, error) {
	var card domain.Card
	if err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Number,
		&card.Holder,
		&card.ExpirationDate,
		&card.Active,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}
