package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/client"
	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/duetap/duetap-backend-go/internal/pkg/schedule"
)

// TaskMaterializer creates the reminder tasks for a freshly materialized
// payment cycle. Satisfied by the reminder service.
type TaskMaterializer interface {
	MaterializeTasks(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, pay payment.Payment) ([]task.Task, error)
}

// Service materializes payment cycles and advances due subscriptions.
type Service struct {
	subscriptionRepo subscription.Repository
	templateRepo     template.Repository
	endUserRepo      enduser.Repository
	clientRepo       client.Repository
	paymentRepo      payment.Repository
	generators       map[template.PaymentMethod]payment.LinkGenerator
	tasks            TaskMaterializer
	txManager        database.TxManager
	cfg              config.BillingConfig
}

func NewService(
	subscriptionRepo subscription.Repository,
	templateRepo template.Repository,
	endUserRepo enduser.Repository,
	clientRepo client.Repository,
	paymentRepo payment.Repository,
	generators map[template.PaymentMethod]payment.LinkGenerator,
	tasks TaskMaterializer,
	txManager database.TxManager,
	cfg config.BillingConfig,
) *Service {
	return &Service{
		subscriptionRepo: subscriptionRepo,
		templateRepo:     templateRepo,
		endUserRepo:      endUserRepo,
		clientRepo:       clientRepo,
		paymentRepo:      paymentRepo,
		generators:       generators,
		tasks:            tasks,
		txManager:        txManager,
		cfg:              cfg,
	}
}

// MaterializePayment ensures one PENDING payment exists for the
// subscription's given due date. It is idempotent on (subscriptionID,
// dueDate): an existing payment is returned unchanged with created=false.
// Payment-link generation is best-effort; the payment persists without a
// link when the gateway call fails.
func (s *Service) MaterializePayment(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, dueDate time.Time) (payment.Payment, bool, error) {
	existing, err := s.paymentRepo.GetBySubscriptionAndDueDate(ctx, sub.ID, dueDate)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, payment.ErrPaymentNotFound) {
		return payment.Payment{}, false, fmt.Errorf("check existing payment: %w", err)
	}

	if _, ok := s.generators[tmpl.PaymentMethod]; !ok {
		return payment.Payment{}, false, payment.ErrMethodNotConfigured
	}

	p := payment.Payment{
		ID:             uuid.New().String(),
		ClientID:       sub.ClientID,
		EndUserID:      sub.EndUserID,
		SubscriptionID: sub.ID,
		Amount:         sub.Amount,
		Status:         payment.StatusPending,
		DueDate:        dueDate,
		PaymentMethod:  tmpl.PaymentMethod,
	}

	if link, err := s.createLink(ctx, sub, tmpl, user); err != nil {
		slog.Warn("payment link generation failed, creating payment without link",
			"subscription_id", sub.ID,
			"payment_method", tmpl.PaymentMethod,
			"error", err,
		)
	} else {
		p.PaymentLink = &link.URL
		p.GatewayPaymentID = &link.ProviderLinkID
	}

	created, err := s.paymentRepo.Create(ctx, p)
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("create payment: %w", err)
	}
	// Create falls back to the existing row on a unique-violation race.
	return created, created.ID == p.ID, nil
}

func (s *Service) createLink(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser) (payment.LinkResult, error) {
	gen := s.generators[tmpl.PaymentMethod]

	// The client's currency wins over the deployment default.
	currency := s.cfg.Currency
	if cl, err := s.clientRepo.GetByID(ctx, sub.ClientID); err != nil {
		slog.Warn("client lookup failed, using default currency",
			"client_id", sub.ClientID, "error", err)
	} else if cl.Currency != "" {
		currency = cl.Currency
	}

	req := payment.LinkRequest{
		ClientID:    sub.ClientID,
		Amount:      sub.Amount,
		Currency:    currency,
		Description: fmt.Sprintf("%s - %s", tmpl.Name, user.Name),
	}
	req.CustomerName = user.Name
	if user.Email != nil {
		req.CustomerEmail = *user.Email
	}
	if user.Phone != nil {
		req.CustomerPhone = *user.Phone
	}

	linkCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	return gen.CreateLink(linkCtx, req)
}

// AdvanceDueCycles rolls every ACTIVE subscription whose due date has
// arrived into its next cycle: materialize the due payment (and its
// reminder tasks when renewal reminders are on), then advance nextDueDate.
// Each subscription runs in its own transaction; one failure never stops
// the rest of the batch.
func (s *Service) AdvanceDueCycles(ctx context.Context, now time.Time) error {
	due, err := s.subscriptionRepo.ListActiveDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due subscriptions: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	slog.Info("advancing due subscriptions", "count", len(due))

	var failed int
	for _, sub := range due {
		if err := s.advanceOne(ctx, sub); err != nil {
			failed++
			slog.Error("failed to advance subscription cycle",
				"subscription_id", sub.ID,
				"client_id", sub.ClientID,
				"error", err,
			)
		}
	}

	slog.Info("cycle advance complete", "total", len(due), "failed", failed)
	return nil
}

func (s *Service) advanceOne(ctx context.Context, sub subscription.Subscription) error {
	tmpl, err := s.templateRepo.GetByID(ctx, sub.TemplateID, sub.ClientID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	user, err := s.endUserRepo.GetByID(ctx, sub.EndUserID, sub.ClientID)
	if err != nil {
		return fmt.Errorf("load end user: %w", err)
	}

	next, err := schedule.Advance(sub.NextDueDate, tmpl.RecurringDuration, schedule.Unit(tmpl.DurationUnit))
	if err != nil {
		return fmt.Errorf("compute next due date: %w", err)
	}

	// Past its end date: retire instead of billing another cycle. Same
	// semantics as an explicit cancel, so outstanding PENDING payments stop
	// generating reminders.
	if sub.EndDate != nil && sub.NextDueDate.After(*sub.EndDate) {
		slog.Info("subscription past end date, cancelling",
			"subscription_id", sub.ID, "end_date", *sub.EndDate)
		return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.subscriptionRepo.Cancel(ctx, sub.ID, *sub.EndDate); err != nil {
				return err
			}
			if _, err := s.paymentRepo.CancelPendingBySubscription(ctx, sub.ID); err != nil {
				return fmt.Errorf("cancel pending payments: %w", err)
			}
			return nil
		})
	}

	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		pay, created, err := s.MaterializePayment(ctx, sub, tmpl, user, sub.NextDueDate)
		if err != nil {
			return fmt.Errorf("materialize payment: %w", err)
		}

		if created && s.cfg.RenewalReminders {
			if _, err := s.tasks.MaterializeTasks(ctx, sub, tmpl, user, pay); err != nil {
				return fmt.Errorf("materialize tasks: %w", err)
			}
		}

		if err := s.subscriptionRepo.UpdateNextDueDate(ctx, sub.ID, next); err != nil {
			return fmt.Errorf("update next due date: %w", err)
		}
		return nil
	})
}
