package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// Service applies gateway webhook events and manual payment operations.
type Service struct {
	paymentRepo      payment.Repository
	subscriptionRepo subscription.Repository
	logRepo          notification.LogRepository
	txManager        database.TxManager
}

func NewService(
	paymentRepo payment.Repository,
	subscriptionRepo subscription.Repository,
	logRepo notification.LogRepository,
	txManager database.TxManager,
) *Service {
	return &Service{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		logRepo:          logRepo,
		txManager:        txManager,
	}
}

func (s *Service) Get(ctx context.Context, clientID, id string) (payment.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id, clientID)
}

func (s *Service) List(ctx context.Context, clientID string) ([]payment.Payment, error) {
	return s.paymentRepo.ListByClient(ctx, clientID)
}

func (s *Service) ListNotifications(ctx context.Context, clientID, paymentID string) ([]notification.Log, error) {
	if _, err := s.paymentRepo.GetByID(ctx, paymentID, clientID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByPayment(ctx, paymentID, clientID)
}

// ApplyGatewayEvent reconciles one provider webhook event against the
// payment it targets, looked up by the provider-side link ID. Unknown events
// are logged and dropped; the webhook endpoint never retries on our behalf.
func (s *Service) ApplyGatewayEvent(ctx context.Context, gatewayPaymentID string, event payment.GatewayEvent, occurredAt time.Time) error {
	p, err := s.paymentRepo.GetByGatewayID(ctx, gatewayPaymentID)
	if err != nil {
		return err
	}

	switch event {
	case payment.EventPaid:
		if p.Status == payment.StatusPaid {
			return nil
		}
		return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.paymentRepo.MarkPaid(ctx, p.ID, occurredAt, nil); err != nil {
				return err
			}
			return s.subscriptionRepo.UpdateLastPaidDate(ctx, p.SubscriptionID, occurredAt)
		})
	case payment.EventCancelled:
		return s.paymentRepo.UpdateStatus(ctx, p.ID, payment.StatusCancelled)
	case payment.EventFailed:
		return s.paymentRepo.UpdateStatus(ctx, p.ID, payment.StatusFailed)
	default:
		slog.Warn("ignoring unknown gateway event",
			"event", event, "gateway_payment_id", gatewayPaymentID)
		return nil
	}
}

// MarkAsPaid records an out-of-band payment (cash, bank transfer) from the
// client dashboard.
func (s *Service) MarkAsPaid(ctx context.Context, clientID, paymentID string, req payment.MarkAsPaidRequest) (payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return payment.Payment{}, err
	}

	p, err := s.paymentRepo.GetByID(ctx, paymentID, clientID)
	if err != nil {
		return payment.Payment{}, err
	}
	if p.Status == payment.StatusPaid {
		return payment.Payment{}, payment.ErrAlreadyPaid
	}

	paidAt := time.Now()
	if req.PaidDate != "" {
		paidAt, _ = validator.IsValidDate(req.PaidDate)
	}

	var gatewayID *string
	if req.GatewayPaymentID != "" {
		gatewayID = &req.GatewayPaymentID
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.MarkPaid(ctx, p.ID, paidAt, gatewayID); err != nil {
			return err
		}
		return s.subscriptionRepo.UpdateLastPaidDate(ctx, p.SubscriptionID, paidAt)
	})
	if err != nil {
		return payment.Payment{}, fmt.Errorf("mark paid: %w", err)
	}

	return s.paymentRepo.GetByID(ctx, paymentID, clientID)
}

// MarkOverdue flips PENDING payments past their due date to OVERDUE.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	affected, err := s.paymentRepo.MarkOverdueDueBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	if affected > 0 {
		slog.Info("marked payments overdue", "count", affected)
	}
	return affected, nil
}
