package postgresql

import (
	"context"

	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type endUserRepository struct {
	db *database.DB
}

func NewEndUserRepository(db *database.DB) enduser.Repository {
	return &endUserRepository{db: db}
}

func (r *endUserRepository) GetByID(ctx context.Context, id, clientID string) (enduser.EndUser, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, client_id, name, email, phone, created_at, updated_at
		FROM end_users
		WHERE id = $1 AND client_id = $2
	`

	var u enduser.EndUser
	err := q.QueryRow(ctx, query, id, clientID).Scan(
		&u.ID, &u.ClientID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return enduser.EndUser{}, enduser.ErrEndUserNotFound
		}
		return enduser.EndUser{}, err
	}
	return u, nil
}

func (r *endUserRepository) ListByClient(ctx context.Context, clientID string) ([]enduser.EndUser, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, client_id, name, email, phone, created_at, updated_at
		FROM end_users
		WHERE client_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []enduser.EndUser
	for rows.Next() {
		var u enduser.EndUser
		if err := rows.Scan(&u.ID, &u.ClientID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *endUserRepository) Create(ctx context.Context, u enduser.EndUser) (enduser.EndUser, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO end_users (id, client_id, name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, u.ID, u.ClientID, u.Name, u.Email, u.Phone).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return enduser.EndUser{}, err
	}
	return u, nil
}
