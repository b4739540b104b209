package postgresql

import (
	"context"
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.Repository {
	return &taskRepository{db: db}
}

const taskColumns = `
	id, client_id, end_user_id, template_id, subscription_id, payment_id,
	template_name, template_title, template_body, payment_link,
	notification_method, notification_date, due_date, amount, is_sent,
	created_at, updated_at
`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID, &t.ClientID, &t.EndUserID, &t.TemplateID, &t.SubscriptionID, &t.PaymentID,
		&t.TemplateName, &t.TemplateTitle, &t.TemplateBody, &t.PaymentLink,
		&t.NotificationMethod, &t.NotificationDate, &t.DueDate, &t.Amount, &t.IsSent,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id, clientID string) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND client_id = $2
	`

	t, err := scanTask(q.QueryRow(ctx, query, id, clientID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *taskRepository) ListByClient(ctx context.Context, clientID string, isSent *bool) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE client_id = $1 AND ($2::boolean IS NULL OR is_sent = $2)
		ORDER BY notification_date
	`

	rows, err := q.Query(ctx, query, clientID, isSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) ListDueUnsent(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_sent = false AND notification_date BETWEEN $1 AND $2
		ORDER BY notification_date
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows pgx.Rows) ([]task.Task, error) {
	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tasks (
			id, client_id, end_user_id, template_id, subscription_id, payment_id,
			template_name, template_title, template_body, payment_link,
			notification_method, notification_date, due_date, amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	created := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		err := q.QueryRow(ctx, query,
			t.ID, t.ClientID, t.EndUserID, t.TemplateID, t.SubscriptionID, t.PaymentID,
			t.TemplateName, t.TemplateTitle, t.TemplateBody, t.PaymentLink,
			t.NotificationMethod, t.NotificationDate, t.DueDate, t.Amount,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	return created, nil
}

func (r *taskRepository) Claim(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// Conditional flip; zero rows means another worker got there first.
	query := `
		UPDATE tasks
		SET is_sent = true, updated_at = NOW()
		WHERE id = $1 AND is_sent = false
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Release(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tasks
		SET is_sent = false, updated_at = NOW()
		WHERE id = $1
	`

	_, err := q.Exec(ctx, query, id)
	return err
}
