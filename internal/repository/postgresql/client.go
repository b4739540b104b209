package postgresql

import (
	"context"

	"github.com/duetap/duetap-backend-go/internal/domain/client"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clientRepository struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) client.Repository {
	return &clientRepository{db: db}
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (client.Client, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, business_name, email, currency, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var c client.Client
	err := q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.BusinessName, &c.Email, &c.Currency, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return client.Client{}, client.ErrClientNotFound
		}
		return client.Client{}, err
	}
	return c, nil
}
