package postgresql

import (
	"context"
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type subscriptionRepository struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) subscription.Repository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, client_id, end_user_id, template_id, amount, status,
	next_due_date, last_paid_date, start_date, end_date, custom_overrides,
	created_at, updated_at
`

func scanSubscription(row pgx.Row) (subscription.Subscription, error) {
	var s subscription.Subscription
	var overrides []int64
	err := row.Scan(
		&s.ID, &s.ClientID, &s.EndUserID, &s.TemplateID, &s.Amount, &s.Status,
		&s.NextDueDate, &s.LastPaidDate, &s.StartDate, &s.EndDate, &overrides,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return subscription.Subscription{}, err
	}
	s.CustomOverrides = make([]int, len(overrides))
	for i, o := range overrides {
		s.CustomOverrides[i] = int(o)
	}
	return s, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id, clientID string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE id = $1 AND client_id = $2
	`

	s, err := scanSubscription(q.QueryRow(ctx, query, id, clientID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, err
	}
	return s, nil
}

func (r *subscriptionRepository) ListByClient(ctx context.Context, clientID string) ([]subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

func (r *subscriptionRepository) FindActiveByEndUserAndTemplate(ctx context.Context, endUserID, templateID string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE end_user_id = $1 AND template_id = $2 AND status = 'ACTIVE'
		LIMIT 1
	`

	s, err := scanSubscription(q.QueryRow(ctx, query, endUserID, templateID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, err
	}
	return s, nil
}

func (r *subscriptionRepository) ListActiveDue(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = 'ACTIVE' AND next_due_date <= $1
		ORDER BY next_due_date
	`

	rows, err := q.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]subscription.Subscription, error) {
	var subs []subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepository) Create(ctx context.Context, s subscription.Subscription) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	overrides := make([]int64, len(s.CustomOverrides))
	for i, o := range s.CustomOverrides {
		overrides[i] = int64(o)
	}

	query := `
		INSERT INTO subscriptions (
			id, client_id, end_user_id, template_id, amount, status,
			next_due_date, start_date, end_date, custom_overrides
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ID, s.ClientID, s.EndUserID, s.TemplateID, s.Amount, s.Status,
		s.NextDueDate, s.StartDate, s.EndDate, overrides,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return subscription.Subscription{}, err
	}
	return s, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id string, status subscription.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) UpdateNextDueDate(ctx context.Context, id string, nextDueDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET next_due_date = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, nextDueDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) UpdateLastPaidDate(ctx context.Context, id string, paidAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET last_paid_date = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, id string, endedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET status = 'CANCELLED', end_date = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, endedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	// Dependent rows first; tasks and payments reference the subscription.
	if _, err := q.Exec(ctx, `DELETE FROM tasks WHERE subscription_id = $1`, id); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM payments WHERE subscription_id = $1`, id); err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}
