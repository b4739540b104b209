package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/client"
	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
)

// ==================== Fakes ====================

type fakeTaskRepo struct {
	tasks []task.Task
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id, clientID string) (task.Task, error) {
	for _, t := range r.tasks {
		if t.ID == id && t.ClientID == clientID {
			return t, nil
		}
	}
	return task.Task{}, task.ErrTaskNotFound
}

func (r *fakeTaskRepo) ListByClient(ctx context.Context, clientID string, isSent *bool) ([]task.Task, error) {
	var out []task.Task
	for _, t := range r.tasks {
		if t.ClientID == clientID && (isSent == nil || t.IsSent == *isSent) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListDueUnsent(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	var out []task.Task
	for _, t := range r.tasks {
		if !t.IsSent && !t.NotificationDate.Before(from) && !t.NotificationDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CreateBatch(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	r.tasks = append(r.tasks, tasks...)
	return tasks, nil
}

func (r *fakeTaskRepo) Claim(ctx context.Context, id string) (bool, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			if r.tasks[i].IsSent {
				return false, nil
			}
			r.tasks[i].IsSent = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTaskRepo) Release(ctx context.Context, id string) error {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].IsSent = false
		}
	}
	return nil
}

type fakePaymentRepo struct {
	payments []payment.Payment
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id, clientID string) (payment.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID string, dueDate time.Time) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) FirstOutstandingBySubscription(ctx context.Context, subscriptionID string) (payment.Payment, error) {
	var best *payment.Payment
	for i := range r.payments {
		p := r.payments[i]
		if p.SubscriptionID == subscriptionID && p.IsOutstanding() {
			if best == nil || p.DueDate.Before(best.DueDate) {
				best = &r.payments[i]
			}
		}
	}
	if best == nil {
		return payment.Payment{}, payment.ErrNoActivePayment
	}
	return *best, nil
}

func (r *fakePaymentRepo) ListByClient(ctx context.Context, clientID string) ([]payment.Payment, error) {
	return r.payments, nil
}

func (r *fakePaymentRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, id string, status payment.Status) error {
	return nil
}

func (r *fakePaymentRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time, gatewayPaymentID *string) error {
	return nil
}

func (r *fakePaymentRepo) IncrementNotifications(ctx context.Context, id string, at time.Time) error {
	for i := range r.payments {
		if r.payments[i].ID == id {
			r.payments[i].NotificationsSent++
			r.payments[i].LastNotificationSent = &at
			return nil
		}
	}
	return payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) CancelPendingBySubscription(ctx context.Context, subscriptionID string) (int64, error) {
	return 0, nil
}

func (r *fakePaymentRepo) CountPaidBySubscription(ctx context.Context, subscriptionID string) (int, error) {
	return 0, nil
}

func (r *fakePaymentRepo) MarkOverdueDueBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeEndUserRepo struct {
	users []enduser.EndUser
}

func (r *fakeEndUserRepo) GetByID(ctx context.Context, id, clientID string) (enduser.EndUser, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return enduser.EndUser{}, enduser.ErrEndUserNotFound
}

func (r *fakeEndUserRepo) ListByClient(ctx context.Context, clientID string) ([]enduser.EndUser, error) {
	return r.users, nil
}

func (r *fakeEndUserRepo) Create(ctx context.Context, u enduser.EndUser) (enduser.EndUser, error) {
	return u, nil
}

type fakeClientRepo struct {
	client client.Client
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (client.Client, error) {
	if r.client.ID != id {
		return client.Client{}, client.ErrClientNotFound
	}
	return r.client, nil
}

type fakeLogRepo struct {
	logs []notification.Log
}

func (r *fakeLogRepo) Create(ctx context.Context, l notification.Log) error {
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeLogRepo) ListByPayment(ctx context.Context, paymentID, clientID string) ([]notification.Log, error) {
	return r.logs, nil
}

type stubSender struct {
	messageID string
	err       error
	sent      []notification.Message
}

func (s *stubSender) Send(ctx context.Context, msg notification.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return s.messageID, s.err
}

// ==================== Fixtures ====================

func strptr(s string) *string { return &s }

func testCfg() config.BillingConfig {
	return config.BillingConfig{
		Currency:         "INR",
		RenewalReminders: true,
		GatewayTimeout:   time.Second,
		NotifyTimeout:    time.Second,
	}
}

func fixtures() (subscription.Subscription, template.Template, enduser.EndUser, payment.Payment) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	link := "https://rzp.io/abc"
	sub := subscription.Subscription{
		ID:              "sub-1",
		ClientID:        "client-1",
		EndUserID:       "user-1",
		TemplateID:      "tmpl-1",
		Amount:          decimal.NewFromFloat(499.5),
		Status:          subscription.StatusActive,
		NextDueDate:     due,
		CustomOverrides: []int{-2, 0, 3},
	}
	tmpl := template.Template{
		ID:                 "tmpl-1",
		ClientID:           "client-1",
		Name:               "Gym Membership",
		Title:              "Payment due, {{name}}",
		Body:               "Hi {{name}}, {{amount}} {{currency}} is due on {{due_date}} to {{business_name}}.",
		RecurringDuration:  1,
		DurationUnit:       template.UnitDays,
		NotificationMethod: template.MethodWhatsApp,
		PaymentMethod:      template.PaymentRazorpay,
		IsActive:           true,
	}
	user := enduser.EndUser{
		ID:       "user-1",
		ClientID: "client-1",
		Name:     "Asha",
		Phone:    strptr("+911234567890"),
		Email:    strptr("asha@example.com"),
	}
	pay := payment.Payment{
		ID:             "pay-1",
		ClientID:       "client-1",
		EndUserID:      "user-1",
		SubscriptionID: "sub-1",
		Amount:         sub.Amount,
		Status:         payment.StatusPending,
		DueDate:        due,
		PaymentLink:    &link,
	}
	return sub, tmpl, user, pay
}

func newTestReminderService(taskRepo *fakeTaskRepo, payRepo *fakePaymentRepo, userRepo *fakeEndUserRepo, logRepo *fakeLogRepo, whatsapp, email notification.Sender) *Service {
	senders := map[notification.Channel]notification.Sender{}
	if whatsapp != nil {
		senders[notification.ChannelWhatsApp] = whatsapp
	}
	if email != nil {
		senders[notification.ChannelEmail] = email
	}
	clientRepo := &fakeClientRepo{client: client.Client{ID: "client-1", BusinessName: "FitLife Gym", Currency: "INR"}}
	return NewService(taskRepo, payRepo, userRepo, clientRepo, logRepo, senders, testCfg())
}

// ==================== MaterializeTasks ====================

func TestMaterializeTasks_OnePerOffset(t *testing.T) {
	sub, tmpl, user, pay := fixtures()
	taskRepo := &fakeTaskRepo{}
	svc := newTestReminderService(taskRepo, &fakePaymentRepo{}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, &stubSender{}, nil)

	tasks, err := svc.MaterializeTasks(context.Background(), sub, tmpl, user, pay)

	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.True(t, tasks[0].NotificationDate.Equal(pay.DueDate.AddDate(0, 0, -2)))
	assert.True(t, tasks[1].NotificationDate.Equal(pay.DueDate))
	assert.True(t, tasks[2].NotificationDate.Equal(pay.DueDate.AddDate(0, 0, 3)))

	for _, tk := range tasks {
		assert.False(t, tk.IsSent)
		assert.Equal(t, "Payment due, Asha", tk.TemplateTitle)
		assert.Equal(t, "Hi Asha, 499.50 INR is due on 15 Mar 2026 to FitLife Gym.", tk.TemplateBody)
		assert.Equal(t, tmpl.NotificationMethod, tk.NotificationMethod)
		require.NotNil(t, tk.PaymentID)
		assert.Equal(t, pay.ID, *tk.PaymentID)
	}
}

func TestMaterializeTasks_DefaultsToDueDateReminder(t *testing.T) {
	sub, tmpl, user, pay := fixtures()
	sub.CustomOverrides = nil
	taskRepo := &fakeTaskRepo{}
	svc := newTestReminderService(taskRepo, &fakePaymentRepo{}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, &stubSender{}, nil)

	tasks, err := svc.MaterializeTasks(context.Background(), sub, tmpl, user, pay)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].NotificationDate.Equal(pay.DueDate))
}

func TestMaterializeTasks_LeavesUnknownPlaceholders(t *testing.T) {
	sub, tmpl, user, pay := fixtures()
	tmpl.Body = "Hi {{name}}, ref {{order_ref}}."
	svc := newTestReminderService(&fakeTaskRepo{}, &fakePaymentRepo{}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, &stubSender{}, nil)

	tasks, err := svc.MaterializeTasks(context.Background(), sub, tmpl, user, pay)

	require.NoError(t, err)
	assert.Equal(t, "Hi Asha, ref {{order_ref}}.", tasks[0].TemplateBody)
}

func TestMaterializeTasks_RendersClientCurrency(t *testing.T) {
	sub, tmpl, user, pay := fixtures()
	clientRepo := &fakeClientRepo{client: client.Client{ID: "client-1", BusinessName: "FitLife Gym", Currency: "USD"}}
	senders := map[notification.Channel]notification.Sender{notification.ChannelWhatsApp: &stubSender{}}
	svc := NewService(&fakeTaskRepo{}, &fakePaymentRepo{}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, clientRepo, &fakeLogRepo{}, senders, testCfg())

	tasks, err := svc.MaterializeTasks(context.Background(), sub, tmpl, user, pay)

	require.NoError(t, err)
	assert.Equal(t, "Hi Asha, 499.50 USD is due on 15 Mar 2026 to FitLife Gym.", tasks[0].TemplateBody)
}

func TestMaterializeTasks_DefaultCurrencyWhenClientHasNone(t *testing.T) {
	sub, tmpl, user, pay := fixtures()
	clientRepo := &fakeClientRepo{client: client.Client{ID: "client-1", BusinessName: "FitLife Gym"}}
	senders := map[notification.Channel]notification.Sender{notification.ChannelWhatsApp: &stubSender{}}
	svc := NewService(&fakeTaskRepo{}, &fakePaymentRepo{}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, clientRepo, &fakeLogRepo{}, senders, testCfg())

	tasks, err := svc.MaterializeTasks(context.Background(), sub, tmpl, user, pay)

	require.NoError(t, err)
	assert.Equal(t, "Hi Asha, 499.50 INR is due on 15 Mar 2026 to FitLife Gym.", tasks[0].TemplateBody)
}

// ==================== Dispatch ====================

func dueTask(pay payment.Payment) task.Task {
	return task.Task{
		ID:                 "task-1",
		ClientID:           pay.ClientID,
		EndUserID:          pay.EndUserID,
		TemplateID:         "tmpl-1",
		SubscriptionID:     pay.SubscriptionID,
		PaymentID:          &pay.ID,
		TemplateTitle:      "Payment due, Asha",
		TemplateBody:       "Hi Asha, payment is due.",
		PaymentLink:        pay.PaymentLink,
		NotificationMethod: template.MethodWhatsApp,
		NotificationDate:   pay.DueDate,
		DueDate:            pay.DueDate,
		Amount:             pay.Amount,
	}
}

func TestDispatch_SendsAndCounts(t *testing.T) {
	_, _, user, pay := fixtures()
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	logRepo := &fakeLogRepo{}
	wa := &stubSender{messageID: "wamid-1"}
	svc := newTestReminderService(&fakeTaskRepo{}, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, logRepo, wa, nil)

	results, err := svc.Dispatch(context.Background(), dueTask(pay))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, notification.ChannelWhatsApp, results[0].Channel)
	assert.Equal(t, "wamid-1", results[0].MessageID)

	require.Len(t, wa.sent, 1)
	assert.Equal(t, "+911234567890", wa.sent[0].Recipient)
	assert.Equal(t, "https://rzp.io/abc", wa.sent[0].PaymentLink)

	assert.Equal(t, 1, payRepo.payments[0].NotificationsSent)
	require.Len(t, logRepo.logs, 1)
	assert.Equal(t, "sent", logRepo.logs[0].Status)
}

func TestDispatch_NoOutstandingPayment(t *testing.T) {
	_, _, user, pay := fixtures()
	pay.Status = payment.StatusPaid
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	svc := newTestReminderService(&fakeTaskRepo{}, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, &stubSender{}, nil)

	_, err := svc.Dispatch(context.Background(), dueTask(pay))

	assert.ErrorIs(t, err, payment.ErrNoActivePayment)
}

func TestDispatch_MissingContactIsFailedResultNotError(t *testing.T) {
	_, _, user, pay := fixtures()
	user.Phone = nil
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	logRepo := &fakeLogRepo{}
	svc := newTestReminderService(&fakeTaskRepo{}, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, logRepo, &stubSender{}, nil)

	results, err := svc.Dispatch(context.Background(), dueTask(pay))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, notification.ErrMissingContact.Error(), results[0].Error)

	// An attempt happened, so the counter still moves.
	assert.Equal(t, 1, payRepo.payments[0].NotificationsSent)
	require.Len(t, logRepo.logs, 1)
	assert.Equal(t, "failed", logRepo.logs[0].Status)
}

func TestDispatch_BothChannelsPartialFailure(t *testing.T) {
	_, _, user, pay := fixtures()
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	logRepo := &fakeLogRepo{}
	wa := &stubSender{err: errors.New("provider 500")}
	mail := &stubSender{}
	svc := newTestReminderService(&fakeTaskRepo{}, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, logRepo, wa, mail)

	tk := dueTask(pay)
	tk.NotificationMethod = template.MethodBoth
	results, err := svc.Dispatch(context.Background(), tk)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success) // whatsapp
	assert.True(t, results[1].Success)  // email

	assert.Equal(t, 1, payRepo.payments[0].NotificationsSent, "counter bumps once per dispatch")
	assert.Len(t, logRepo.logs, 2)
}

// ==================== RunDailySweep ====================

func TestRunDailySweep_SendsTodaysTasksOnly(t *testing.T) {
	_, _, user, pay := fixtures()
	today := dueTask(pay)
	tomorrow := dueTask(pay)
	tomorrow.ID = "task-2"
	tomorrow.NotificationDate = today.NotificationDate.AddDate(0, 0, 1)

	taskRepo := &fakeTaskRepo{tasks: []task.Task{today, tomorrow}}
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	wa := &stubSender{}
	svc := newTestReminderService(taskRepo, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, wa, nil)

	require.NoError(t, svc.RunDailySweep(context.Background(), pay.DueDate.Add(8*time.Hour)))

	assert.Len(t, wa.sent, 1)
	sent, _ := taskRepo.GetByID(context.Background(), "task-1", pay.ClientID)
	assert.True(t, sent.IsSent)
	unsent, _ := taskRepo.GetByID(context.Background(), "task-2", pay.ClientID)
	assert.False(t, unsent.IsSent)
}

func TestRunDailySweep_SecondSweepSendsNothing(t *testing.T) {
	_, _, user, pay := fixtures()
	taskRepo := &fakeTaskRepo{tasks: []task.Task{dueTask(pay)}}
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	wa := &stubSender{}
	svc := newTestReminderService(taskRepo, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, wa, nil)

	now := pay.DueDate.Add(8 * time.Hour)
	require.NoError(t, svc.RunDailySweep(context.Background(), now))
	require.NoError(t, svc.RunDailySweep(context.Background(), now))

	assert.Len(t, wa.sent, 1)
	assert.Equal(t, 1, payRepo.payments[0].NotificationsSent)
}

func TestRunDailySweep_ReleasesClaimWhenNoActivePayment(t *testing.T) {
	_, _, user, pay := fixtures()
	pay.Status = payment.StatusPaid
	taskRepo := &fakeTaskRepo{tasks: []task.Task{dueTask(pay)}}
	payRepo := &fakePaymentRepo{payments: []payment.Payment{pay}}
	wa := &stubSender{}
	svc := newTestReminderService(taskRepo, payRepo, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, wa, nil)

	require.NoError(t, svc.RunDailySweep(context.Background(), pay.DueDate.Add(8*time.Hour)))

	assert.Empty(t, wa.sent)
	tk, _ := taskRepo.GetByID(context.Background(), "task-1", pay.ClientID)
	assert.False(t, tk.IsSent, "claim released so a later sweep can retry")
}

// ==================== DispatchTask ====================

func TestDispatchTask_AlreadySent(t *testing.T) {
	_, _, user, pay := fixtures()
	tk := dueTask(pay)
	tk.IsSent = true
	taskRepo := &fakeTaskRepo{tasks: []task.Task{tk}}
	svc := newTestReminderService(taskRepo, &fakePaymentRepo{payments: []payment.Payment{pay}}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, &stubSender{}, nil)

	_, err := svc.DispatchTask(context.Background(), pay.ClientID, tk.ID)

	assert.ErrorIs(t, err, task.ErrTaskAlreadySent)
}

func TestDispatchTask_SendsOnce(t *testing.T) {
	_, _, user, pay := fixtures()
	taskRepo := &fakeTaskRepo{tasks: []task.Task{dueTask(pay)}}
	wa := &stubSender{messageID: "wamid-9"}
	svc := newTestReminderService(taskRepo, &fakePaymentRepo{payments: []payment.Payment{pay}}, &fakeEndUserRepo{users: []enduser.EndUser{user}}, &fakeLogRepo{}, wa, nil)

	results, err := svc.DispatchTask(context.Background(), pay.ClientID, "task-1")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	_, err = svc.DispatchTask(context.Background(), pay.ClientID, "task-1")
	assert.ErrorIs(t, err, task.ErrTaskAlreadySent)
}
