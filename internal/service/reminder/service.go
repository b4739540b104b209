package reminder

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
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	tmpldomain "github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/schedule"
	tmplrender "github.com/duetap/duetap-backend-go/internal/pkg/template"
)

// Service materializes reminder tasks, dispatches them over the template's
// channels and runs the daily sweep.
type Service struct {
	taskRepo    task.Repository
	paymentRepo payment.Repository
	endUserRepo enduser.Repository
	clientRepo  client.Repository
	logRepo     notification.LogRepository
	senders     map[notification.Channel]notification.Sender
	cfg         config.BillingConfig
}

func NewService(
	taskRepo task.Repository,
	paymentRepo payment.Repository,
	endUserRepo enduser.Repository,
	clientRepo client.Repository,
	logRepo notification.LogRepository,
	senders map[notification.Channel]notification.Sender,
	cfg config.BillingConfig,
) *Service {
	return &Service{
		taskRepo:    taskRepo,
		paymentRepo: paymentRepo,
		endUserRepo: endUserRepo,
		clientRepo:  clientRepo,
		logRepo:     logRepo,
		senders:     senders,
		cfg:         cfg,
	}
}

// MaterializeTasks creates one reminder task per offset in the
// subscription's custom overrides (default: a single reminder on the due
// date). Title and body are rendered once, here; tasks carry the snapshot.
// Runs on whatever querier the context carries, so callers can wrap it in a
// transaction together with the payment insert.
func (s *Service) MaterializeTasks(ctx context.Context, sub subscription.Subscription, tmpl tmpldomain.Template, user enduser.EndUser, pay payment.Payment) ([]task.Task, error) {
	cl, err := s.clientRepo.GetByID(ctx, sub.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	link := ""
	if pay.PaymentLink != nil {
		link = *pay.PaymentLink
	}

	vars := tmplrender.Vars{
		"name":          user.Name,
		"amount":        tmplrender.FormatAmount(sub.Amount),
		"due_date":      tmplrender.FormatDate(pay.DueDate),
		"business_name": cl.BusinessName,
		"payment_link":  link,
		"currency":      s.currencyFor(cl),
		"template_name": tmpl.Name,
	}

	title, missing := tmplrender.Render(tmpl.Title, vars)
	body, missingBody := tmplrender.Render(tmpl.Body, vars)
	missing = append(missing, missingBody...)
	if len(missing) > 0 {
		slog.Warn("template has unresolved placeholders",
			"template_id", tmpl.ID, "placeholders", missing)
	}

	offsets := sub.CustomOverrides
	if len(offsets) == 0 {
		offsets = []int{0}
	}

	tasks := make([]task.Task, 0, len(offsets))
	for _, offset := range offsets {
		notifyAt, err := schedule.OffsetFromDue(pay.DueDate, offset, schedule.Unit(tmpl.DurationUnit))
		if err != nil {
			return nil, fmt.Errorf("compute notification date for offset %d: %w", offset, err)
		}

		tasks = append(tasks, task.Task{
			ID:                 uuid.New().String(),
			ClientID:           sub.ClientID,
			EndUserID:          sub.EndUserID,
			TemplateID:         tmpl.ID,
			SubscriptionID:     sub.ID,
			PaymentID:          &pay.ID,
			TemplateName:       tmpl.Name,
			TemplateTitle:      title,
			TemplateBody:       body,
			PaymentLink:        pay.PaymentLink,
			NotificationMethod: tmpl.NotificationMethod,
			NotificationDate:   notifyAt,
			DueDate:            pay.DueDate,
			Amount:             sub.Amount,
		})
	}

	return s.taskRepo.CreateBatch(ctx, tasks)
}

// currencyFor prefers the client's own currency over the deployment default.
func (s *Service) currencyFor(cl client.Client) string {
	if cl.Currency != "" {
		return cl.Currency
	}
	return s.cfg.Currency
}

// Dispatch sends one task's reminder. It resolves the subscription's
// earliest outstanding payment (PENDING or OVERDUE, due date ascending) and
// attempts every channel the template asked for; a missing contact or
// provider failure becomes a failed per-channel result, never an error. The
// payment's notification counter is bumped once per dispatch regardless of
// channel outcome.
func (s *Service) Dispatch(ctx context.Context, t task.Task) ([]notification.DispatchResult, error) {
	pay, err := s.paymentRepo.FirstOutstandingBySubscription(ctx, t.SubscriptionID)
	if err != nil {
		return nil, err
	}

	user, err := s.endUserRepo.GetByID(ctx, t.EndUserID, t.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load end user: %w", err)
	}

	link := ""
	if pay.PaymentLink != nil {
		link = *pay.PaymentLink
	} else if t.PaymentLink != nil {
		link = *t.PaymentLink
	}

	results := s.sendChannels(ctx, pay, user, t.NotificationMethod, t.TemplateTitle, t.TemplateBody, link)

	if err := s.paymentRepo.IncrementNotifications(ctx, pay.ID, time.Now()); err != nil {
		slog.Error("failed to bump notification counter", "payment_id", pay.ID, "error", err)
	}

	return results, nil
}

func (s *Service) sendChannels(ctx context.Context, pay payment.Payment, user enduser.EndUser, method tmpldomain.NotificationMethod, subject, body, link string) []notification.DispatchResult {
	var results []notification.DispatchResult

	if method == tmpldomain.MethodWhatsApp || method == tmpldomain.MethodBoth {
		results = append(results, s.sendOne(ctx, pay, user, notification.ChannelWhatsApp, user.Phone, subject, body, link))
	}
	if method == tmpldomain.MethodEmail || method == tmpldomain.MethodBoth {
		results = append(results, s.sendOne(ctx, pay, user, notification.ChannelEmail, user.Email, subject, body, link))
	}

	return results
}

func (s *Service) sendOne(ctx context.Context, pay payment.Payment, user enduser.EndUser, channel notification.Channel, contact *string, subject, body, link string) notification.DispatchResult {
	result := notification.DispatchResult{Channel: channel}

	if contact == nil || *contact == "" {
		result.Error = notification.ErrMissingContact.Error()
		s.logAttempt(ctx, pay, user, channel, "", subject, body, &result.Error)
		return result
	}

	sender, ok := s.senders[channel]
	if !ok {
		result.Error = fmt.Sprintf("no sender configured for channel %s", channel)
		s.logAttempt(ctx, pay, user, channel, *contact, subject, body, &result.Error)
		return result
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()

	messageID, err := sender.Send(sendCtx, notification.Message{
		Recipient:   *contact,
		Subject:     subject,
		Body:        body,
		PaymentLink: link,
	})
	if err != nil {
		result.Error = err.Error()
		slog.Error("notification send failed",
			"channel", channel, "payment_id", pay.ID, "error", err)
		s.logAttempt(ctx, pay, user, channel, *contact, subject, body, &result.Error)
		return result
	}

	result.Success = true
	result.MessageID = messageID
	s.logAttempt(ctx, pay, user, channel, *contact, subject, body, nil)
	return result
}

func (s *Service) logAttempt(ctx context.Context, pay payment.Payment, user enduser.EndUser, channel notification.Channel, recipient, subject, content string, errMsg *string) {
	status := "sent"
	if errMsg != nil {
		status = "failed"
	}

	err := s.logRepo.Create(ctx, notification.Log{
		ID:           uuid.New().String(),
		ClientID:     pay.ClientID,
		EndUserID:    user.ID,
		PaymentID:    pay.ID,
		Channel:      channel,
		Recipient:    recipient,
		Subject:      subject,
		Content:      content,
		Status:       status,
		ErrorMessage: errMsg,
	})
	if err != nil {
		slog.Error("failed to persist notification log", "payment_id", pay.ID, "error", err)
	}
}

// RunDailySweep claims and dispatches every unsent task whose notification
// date falls on the given day. Tasks failing to dispatch before any send
// attempt release their claim so a later sweep retries them; everything else
// is catch-log-continue.
func (s *Service) RunDailySweep(ctx context.Context, now time.Time) error {
	from, to := schedule.StartOfDay(now), schedule.EndOfDay(now)

	due, err := s.taskRepo.ListDueUnsent(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list due tasks: %w", err)
	}

	if len(due) == 0 {
		slog.Info("daily sweep: no reminders due", "date", from.Format("2006-01-02"))
		return nil
	}

	slog.Info("daily sweep starting", "date", from.Format("2006-01-02"), "count", len(due))

	var sent, skipped, failed int
	for _, t := range due {
		switch err := s.claimAndDispatch(ctx, t); {
		case err == nil:
			sent++
		case errors.Is(err, task.ErrTaskAlreadySent), errors.Is(err, payment.ErrNoActivePayment):
			skipped++
		default:
			failed++
			slog.Error("daily sweep: task dispatch failed", "task_id", t.ID, "error", err)
		}
	}

	slog.Info("daily sweep complete", "sent", sent, "skipped", skipped, "failed", failed)
	return nil
}

// claimAndDispatch is the shared path for the sweep and manual triggers:
// claim first, dispatch after, release on a dispatch that attempted nothing.
func (s *Service) claimAndDispatch(ctx context.Context, t task.Task) error {
	claimed, err := s.taskRepo.Claim(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("claim task: %w", err)
	}
	if !claimed {
		return task.ErrTaskAlreadySent
	}

	if _, err := s.Dispatch(ctx, t); err != nil {
		// Nothing was attempted; hand the task back for a later sweep.
		if releaseErr := s.taskRepo.Release(ctx, t.ID); releaseErr != nil {
			slog.Error("failed to release task claim", "task_id", t.ID, "error", releaseErr)
		}
		return err
	}
	return nil
}

// DispatchTask is the manual trigger behind the support API. Same claim and
// dispatch path as the sweep.
func (s *Service) DispatchTask(ctx context.Context, clientID, taskID string) ([]notification.DispatchResult, error) {
	t, err := s.taskRepo.GetByID(ctx, taskID, clientID)
	if err != nil {
		return nil, err
	}
	if t.IsSent {
		return nil, task.ErrTaskAlreadySent
	}

	claimed, err := s.taskRepo.Claim(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	if !claimed {
		return nil, task.ErrTaskAlreadySent
	}

	results, err := s.Dispatch(ctx, t)
	if err != nil {
		if releaseErr := s.taskRepo.Release(ctx, t.ID); releaseErr != nil {
			slog.Error("failed to release task claim", "task_id", t.ID, "error", releaseErr)
		}
		return nil, err
	}
	return results, nil
}

// DispatchForSubscription re-sends a reminder for the subscription's
// earliest outstanding payment outside any task, rendering the template
// fresh. Used by the resend-notification endpoint.
func (s *Service) DispatchForSubscription(ctx context.Context, sub subscription.Subscription, tmpl tmpldomain.Template) ([]notification.DispatchResult, error) {
	pay, err := s.paymentRepo.FirstOutstandingBySubscription(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	user, err := s.endUserRepo.GetByID(ctx, sub.EndUserID, sub.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load end user: %w", err)
	}
	cl, err := s.clientRepo.GetByID(ctx, sub.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	link := ""
	if pay.PaymentLink != nil {
		link = *pay.PaymentLink
	}

	vars := tmplrender.Vars{
		"name":          user.Name,
		"amount":        tmplrender.FormatAmount(pay.Amount),
		"due_date":      tmplrender.FormatDate(pay.DueDate),
		"business_name": cl.BusinessName,
		"payment_link":  link,
		"currency":      s.currencyFor(cl),
		"template_name": tmpl.Name,
	}

	subject, _ := tmplrender.Render(tmpl.Title, vars)
	body, _ := tmplrender.Render(tmpl.Body, vars)

	results := s.sendChannels(ctx, pay, user, tmpl.NotificationMethod, subject, body, link)

	if err := s.paymentRepo.IncrementNotifications(ctx, pay.ID, time.Now()); err != nil {
		slog.Error("failed to bump notification counter", "payment_id", pay.ID, "error", err)
	}

	return results, nil
}
