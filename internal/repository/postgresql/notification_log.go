package postgresql

import (
	"context"

	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
)

type notificationLogRepository struct {
	db *database.DB
}

func NewNotificationLogRepository(db *database.DB) notification.LogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, l notification.Log) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_logs (
			id, client_id, end_user_id, payment_id, channel, recipient,
			subject, content, status, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		l.ID, l.ClientID, l.EndUserID, l.PaymentID, l.Channel, l.Recipient,
		l.Subject, l.Content, l.Status, l.ErrorMessage,
	)
	return err
}

func (r *notificationLogRepository) ListByPayment(ctx context.Context, paymentID, clientID string) ([]notification.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, client_id, end_user_id, payment_id, channel, recipient,
		       subject, content, status, error_message, created_at
		FROM notification_logs
		WHERE payment_id = $1 AND client_id = $2
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, paymentID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []notification.Log
	for rows.Next() {
		var l notification.Log
		if err := rows.Scan(
			&l.ID, &l.ClientID, &l.EndUserID, &l.PaymentID, &l.Channel, &l.Recipient,
			&l.Subject, &l.Content, &l.Status, &l.ErrorMessage, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
