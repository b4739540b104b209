package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/duetap/duetap-backend-go/internal/pkg/schedule"
)

// PaymentMaterializer creates the PENDING payment for a new billing cycle.
// Satisfied by the billing service.
type PaymentMaterializer interface {
	MaterializePayment(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, dueDate time.Time) (payment.Payment, bool, error)
}

// TaskMaterializer creates the reminder tasks for a payment cycle.
// Satisfied by the reminder service.
type TaskMaterializer interface {
	MaterializeTasks(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, pay payment.Payment) ([]task.Task, error)
}

// ReminderDispatcher re-sends a reminder for a subscription's outstanding
// payment. Satisfied by the reminder service.
type ReminderDispatcher interface {
	DispatchForSubscription(ctx context.Context, sub subscription.Subscription, tmpl template.Template) ([]notification.DispatchResult, error)
}

type subscriptionService struct {
	subscriptionRepo subscription.Repository
	templateRepo     template.Repository
	endUserRepo      enduser.Repository
	paymentRepo      payment.Repository
	payments         PaymentMaterializer
	tasks            TaskMaterializer
	dispatcher       ReminderDispatcher
	txManager        database.TxManager
}

func NewSubscriptionService(
	subscriptionRepo subscription.Repository,
	templateRepo template.Repository,
	endUserRepo enduser.Repository,
	paymentRepo payment.Repository,
	payments PaymentMaterializer,
	tasks TaskMaterializer,
	dispatcher ReminderDispatcher,
	txManager database.TxManager,
) subscription.Service {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		templateRepo:     templateRepo,
		endUserRepo:      endUserRepo,
		paymentRepo:      paymentRepo,
		payments:         payments,
		tasks:            tasks,
		dispatcher:       dispatcher,
		txManager:        txManager,
	}
}

func (s *subscriptionService) Create(ctx context.Context, clientID string, req subscription.CreateRequest) (subscription.Response, error) {
	if err := req.Validate(); err != nil {
		return subscription.Response{}, err
	}

	tmpl, err := s.templateRepo.GetByID(ctx, req.TemplateID, clientID)
	if err != nil {
		return subscription.Response{}, err
	}
	if !tmpl.IsActive {
		return subscription.Response{}, template.ErrTemplateInactive
	}

	user, err := s.endUserRepo.GetByID(ctx, req.EndUserID, clientID)
	if err != nil {
		return subscription.Response{}, err
	}

	// At most one ACTIVE subscription per (end user, template) pair.
	_, err = s.subscriptionRepo.FindActiveByEndUserAndTemplate(ctx, req.EndUserID, req.TemplateID)
	if err == nil {
		return subscription.Response{}, subscription.ErrDuplicateActive
	}
	if !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return subscription.Response{}, fmt.Errorf("check duplicate subscription: %w", err)
	}

	nextDue, start, end := req.ParsedDates(time.Now())

	sub := subscription.Subscription{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		EndUserID:       req.EndUserID,
		TemplateID:      req.TemplateID,
		Amount:          req.Amount,
		Status:          subscription.StatusActive,
		NextDueDate:     nextDue,
		StartDate:       start,
		EndDate:         end,
		CustomOverrides: req.CustomOverrides,
	}

	// Subscription, first payment and its reminder tasks land together or
	// not at all.
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.subscriptionRepo.Create(ctx, sub)
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		sub = created

		pay, _, err := s.payments.MaterializePayment(ctx, sub, tmpl, user, nextDue)
		if err != nil {
			return fmt.Errorf("materialize first payment: %w", err)
		}

		if _, err := s.tasks.MaterializeTasks(ctx, sub, tmpl, user, pay); err != nil {
			return fmt.Errorf("materialize reminder tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return subscription.Response{}, err
	}

	return subscription.ToResponse(sub), nil
}

func (s *subscriptionService) Get(ctx context.Context, clientID, id string) (subscription.Response, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return subscription.Response{}, err
	}
	return subscription.ToResponse(sub), nil
}

func (s *subscriptionService) List(ctx context.Context, clientID string) ([]subscription.Response, error) {
	subs, err := s.subscriptionRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	responses := make([]subscription.Response, len(subs))
	for i, sub := range subs {
		responses[i] = subscription.ToResponse(sub)
	}
	return responses, nil
}

func (s *subscriptionService) Pause(ctx context.Context, clientID, id string) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return err
	}
	if sub.Status != subscription.StatusActive {
		return subscription.ErrNotActive
	}
	return s.subscriptionRepo.UpdateStatus(ctx, id, subscription.StatusPaused)
}

func (s *subscriptionService) Resume(ctx context.Context, clientID, id string) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return err
	}
	if sub.Status != subscription.StatusPaused {
		return subscription.ErrNotPaused
	}

	tmpl, err := s.templateRepo.GetByID(ctx, sub.TemplateID, clientID)
	if err != nil {
		return err
	}

	// The paused gap doesn't owe payments: the next cycle restarts from now.
	nextDue, err := schedule.Advance(time.Now(), tmpl.RecurringDuration, schedule.Unit(tmpl.DurationUnit))
	if err != nil {
		return fmt.Errorf("compute next due date: %w", err)
	}

	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.subscriptionRepo.UpdateStatus(ctx, id, subscription.StatusActive); err != nil {
			return err
		}
		return s.subscriptionRepo.UpdateNextDueDate(ctx, id, nextDue)
	})
}

func (s *subscriptionService) Cancel(ctx context.Context, clientID, id string) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return err
	}
	if sub.Status == subscription.StatusCancelled {
		return subscription.ErrAlreadyCancelled
	}

	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.subscriptionRepo.Cancel(ctx, id, time.Now()); err != nil {
			return err
		}
		if _, err := s.paymentRepo.CancelPendingBySubscription(ctx, id); err != nil {
			return fmt.Errorf("cancel pending payments: %w", err)
		}
		return nil
	})
}

func (s *subscriptionService) Delete(ctx context.Context, clientID, id string) error {
	if _, err := s.subscriptionRepo.GetByID(ctx, id, clientID); err != nil {
		return err
	}

	paidCount, err := s.paymentRepo.CountPaidBySubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("count paid payments: %w", err)
	}
	if paidCount > 0 {
		return subscription.ErrHasPaymentHistory
	}

	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		return s.subscriptionRepo.Delete(ctx, id)
	})
}

func (s *subscriptionService) ResendNotification(ctx context.Context, clientID, id string) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return err
	}

	tmpl, err := s.templateRepo.GetByID(ctx, sub.TemplateID, clientID)
	if err != nil {
		return err
	}

	_, err = s.dispatcher.DispatchForSubscription(ctx, sub, tmpl)
	return err
}
