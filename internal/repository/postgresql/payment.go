package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type paymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.Repository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	id, client_id, end_user_id, subscription_id, amount, status,
	due_date, paid_date, payment_method, gateway_payment_id, payment_link,
	notifications_sent, last_notification_sent, created_at, updated_at
`

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.ClientID, &p.EndUserID, &p.SubscriptionID, &p.Amount, &p.Status,
		&p.DueDate, &p.PaidDate, &p.PaymentMethod, &p.GatewayPaymentID, &p.PaymentLink,
		&p.NotificationsSent, &p.LastNotificationSent, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id, clientID string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1 AND client_id = $2
	`

	p, err := scanPayment(q.QueryRow(ctx, query, id, clientID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE gateway_payment_id = $1
	`

	p, err := scanPayment(q.QueryRow(ctx, query, gatewayPaymentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID string, dueDate time.Time) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE subscription_id = $1 AND due_date = $2
	`

	p, err := scanPayment(q.QueryRow(ctx, query, subscriptionID, dueDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) FirstOutstandingBySubscription(ctx context.Context, subscriptionID string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE subscription_id = $1 AND status IN ('PENDING', 'OVERDUE')
		ORDER BY due_date ASC
		LIMIT 1
	`

	p, err := scanPayment(q.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payment.Payment{}, payment.ErrNoActivePayment
		}
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID string) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE client_id = $1
		ORDER BY due_date DESC
	`

	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (
			id, client_id, end_user_id, subscription_id, amount, status,
			due_date, payment_method, gateway_payment_id, payment_link
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID, p.ClientID, p.EndUserID, p.SubscriptionID, p.Amount, p.Status,
		p.DueDate, p.PaymentMethod, p.GatewayPaymentID, p.PaymentLink,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		// Unique (subscription_id, due_date): a concurrent materializer won
		// the race, return the row it created.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.GetBySubscriptionAndDueDate(ctx, p.SubscriptionID, p.DueDate)
		}
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status payment.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, gatewayPaymentID *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET status = 'PAID',
		    paid_date = $2,
		    gateway_payment_id = COALESCE($3, gateway_payment_id),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, paidAt, gatewayPaymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) IncrementNotifications(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET notifications_sent = notifications_sent + 1,
		    last_notification_sent = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) CancelPendingBySubscription(ctx context.Context, subscriptionID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE subscription_id = $1 AND status = 'PENDING'
	`

	tag, err := q.Exec(ctx, query, subscriptionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *paymentRepository) CountPaidBySubscription(ctx context.Context, subscriptionID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*) FROM payments
		WHERE subscription_id = $1 AND status = 'PAID'
	`

	var count int
	if err := q.QueryRow(ctx, query, subscriptionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *paymentRepository) MarkOverdueDueBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET status = 'OVERDUE', updated_at = NOW()
		WHERE status = 'PENDING' AND due_date < $1
	`

	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
