package postgresql

import (
	"context"

	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type templateRepository struct {
	db *database.DB
}

func NewTemplateRepository(db *database.DB) template.Repository {
	return &templateRepository{db: db}
}

const templateColumns = `
	id, client_id, name, title, body, recurring_duration, duration_unit,
	notification_method, payment_method, default_amount, is_active,
	created_at, updated_at
`

func scanTemplate(row pgx.Row) (template.Template, error) {
	var t template.Template
	err := row.Scan(
		&t.ID, &t.ClientID, &t.Name, &t.Title, &t.Body,
		&t.RecurringDuration, &t.DurationUnit,
		&t.NotificationMethod, &t.PaymentMethod,
		&t.DefaultAmount, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id, clientID string) (template.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + templateColumns + `
		FROM notification_templates
		WHERE id = $1 AND client_id = $2
	`

	t, err := scanTemplate(q.QueryRow(ctx, query, id, clientID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return template.Template{}, template.ErrTemplateNotFound
		}
		return template.Template{}, err
	}
	return t, nil
}

func (r *templateRepository) ListByClient(ctx context.Context, clientID string) ([]template.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + templateColumns + `
		FROM notification_templates
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Create(ctx context.Context, t template.Template) (template.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_templates (
			id, client_id, name, title, body, recurring_duration, duration_unit,
			notification_method, payment_method, default_amount, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		t.ID, t.ClientID, t.Name, t.Title, t.Body,
		t.RecurringDuration, t.DurationUnit,
		t.NotificationMethod, t.PaymentMethod,
		t.DefaultAmount, t.IsActive,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (r *templateRepository) HasActiveSubscriptions(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE template_id = $1 AND status = 'ACTIVE'
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *templateRepository) SetActive(ctx context.Context, id, clientID string, active bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notification_templates
		SET is_active = $3, updated_at = NOW()
		WHERE id = $1 AND client_id = $2
	`

	tag, err := q.Exec(ctx, query, id, clientID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return template.ErrTemplateNotFound
	}
	return nil
}
