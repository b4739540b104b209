package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// ==================== Fakes ====================

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSubRepo struct {
	subs []subscription.Subscription
}

func (r *fakeSubRepo) GetByID(ctx context.Context, id, clientID string) (subscription.Subscription, error) {
	for _, s := range r.subs {
		if s.ID == id && s.ClientID == clientID {
			return s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) ListByClient(ctx context.Context, clientID string) ([]subscription.Subscription, error) {
	var out []subscription.Subscription
	for _, s := range r.subs {
		if s.ClientID == clientID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) FindActiveByEndUserAndTemplate(ctx context.Context, endUserID, templateID string) (subscription.Subscription, error) {
	for _, s := range r.subs {
		if s.EndUserID == endUserID && s.TemplateID == templateID && s.Status == subscription.StatusActive {
			return s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) ListActiveDue(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	return nil, nil
}

func (r *fakeSubRepo) Create(ctx context.Context, s subscription.Subscription) (subscription.Subscription, error) {
	r.subs = append(r.subs, s)
	return s, nil
}

func (r *fakeSubRepo) UpdateStatus(ctx context.Context, id string, status subscription.Status) error {
	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs[i].Status = status
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) UpdateNextDueDate(ctx context.Context, id string, nextDueDate time.Time) error {
	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs[i].NextDueDate = nextDueDate
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) UpdateLastPaidDate(ctx context.Context, id string, paidAt time.Time) error {
	return nil
}

func (r *fakeSubRepo) Cancel(ctx context.Context, id string, endedAt time.Time) error {
	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs[i].Status = subscription.StatusCancelled
			r.subs[i].EndDate = &endedAt
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) Delete(ctx context.Context, id string) error {
	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

type fakeTemplateRepo struct {
	templates []template.Template
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id, clientID string) (template.Template, error) {
	for _, t := range r.templates {
		if t.ID == id && t.ClientID == clientID {
			return t, nil
		}
	}
	return template.Template{}, template.ErrTemplateNotFound
}

func (r *fakeTemplateRepo) ListByClient(ctx context.Context, clientID string) ([]template.Template, error) {
	return r.templates, nil
}

func (r *fakeTemplateRepo) Create(ctx context.Context, t template.Template) (template.Template, error) {
	return t, nil
}

func (r *fakeTemplateRepo) HasActiveSubscriptions(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (r *fakeTemplateRepo) SetActive(ctx context.Context, id, clientID string, active bool) error {
	return nil
}

type fakeEndUserRepo struct {
	users []enduser.EndUser
}

func (r *fakeEndUserRepo) GetByID(ctx context.Context, id, clientID string) (enduser.EndUser, error) {
	for _, u := range r.users {
		if u.ID == id && u.ClientID == clientID {
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

type fakePayRepo struct {
	payments []payment.Payment
}

func (r *fakePayRepo) GetByID(ctx context.Context, id, clientID string) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePayRepo) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePayRepo) GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID string, dueDate time.Time) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (r *fakePayRepo) FirstOutstandingBySubscription(ctx context.Context, subscriptionID string) (payment.Payment, error) {
	return payment.Payment{}, payment.ErrNoActivePayment
}

func (r *fakePayRepo) ListByClient(ctx context.Context, clientID string) ([]payment.Payment, error) {
	return r.payments, nil
}

func (r *fakePayRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *fakePayRepo) UpdateStatus(ctx context.Context, id string, status payment.Status) error {
	return nil
}

func (r *fakePayRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time, gatewayPaymentID *string) error {
	return nil
}

func (r *fakePayRepo) IncrementNotifications(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r *fakePayRepo) CancelPendingBySubscription(ctx context.Context, subscriptionID string) (int64, error) {
	var n int64
	for i := range r.payments {
		if r.payments[i].SubscriptionID == subscriptionID && r.payments[i].Status == payment.StatusPending {
			r.payments[i].Status = payment.StatusCancelled
			n++
		}
	}
	return n, nil
}

func (r *fakePayRepo) CountPaidBySubscription(ctx context.Context, subscriptionID string) (int, error) {
	n := 0
	for _, p := range r.payments {
		if p.SubscriptionID == subscriptionID && p.Status == payment.StatusPaid {
			n++
		}
	}
	return n, nil
}

func (r *fakePayRepo) MarkOverdueDueBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubPaymentMaterializer struct {
	calls int
	pay   payment.Payment
	err   error
}

func (m *stubPaymentMaterializer) MaterializePayment(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, dueDate time.Time) (payment.Payment, bool, error) {
	m.calls++
	if m.err != nil {
		return payment.Payment{}, false, m.err
	}
	p := m.pay
	p.SubscriptionID = sub.ID
	p.DueDate = dueDate
	return p, true, nil
}

type stubTaskMaterializer struct {
	calls int
}

func (m *stubTaskMaterializer) MaterializeTasks(ctx context.Context, sub subscription.Subscription, tmpl template.Template, user enduser.EndUser, pay payment.Payment) ([]task.Task, error) {
	m.calls++
	return nil, nil
}

type stubDispatcher struct {
	calls int
	err   error
}

func (d *stubDispatcher) DispatchForSubscription(ctx context.Context, sub subscription.Subscription, tmpl template.Template) ([]notification.DispatchResult, error) {
	d.calls++
	return nil, d.err
}

// ==================== Fixtures ====================

func strptr(s string) *string { return &s }

func templateFixture() template.Template {
	return template.Template{
		ID:                 "tmpl-1",
		ClientID:           "client-1",
		Name:               "Gym Membership",
		Title:              "Payment due",
		Body:               "Payment due",
		RecurringDuration:  1,
		DurationUnit:       template.UnitMonths,
		NotificationMethod: template.MethodWhatsApp,
		PaymentMethod:      template.PaymentRazorpay,
		IsActive:           true,
	}
}

func endUserFixture() enduser.EndUser {
	return enduser.EndUser{
		ID:       "user-1",
		ClientID: "client-1",
		Name:     "Asha",
		Phone:    strptr("+911234567890"),
	}
}

type deps struct {
	subRepo    *fakeSubRepo
	tmplRepo   *fakeTemplateRepo
	userRepo   *fakeEndUserRepo
	payRepo    *fakePayRepo
	payments   *stubPaymentMaterializer
	tasks      *stubTaskMaterializer
	dispatcher *stubDispatcher
}

func newTestSubscriptionService(d *deps) subscription.Service {
	return NewSubscriptionService(
		d.subRepo, d.tmplRepo, d.userRepo, d.payRepo,
		d.payments, d.tasks, d.dispatcher, passthroughTx{},
	)
}

func defaultDeps() *deps {
	return &deps{
		subRepo:    &fakeSubRepo{},
		tmplRepo:   &fakeTemplateRepo{templates: []template.Template{templateFixture()}},
		userRepo:   &fakeEndUserRepo{users: []enduser.EndUser{endUserFixture()}},
		payRepo:    &fakePayRepo{},
		payments:   &stubPaymentMaterializer{pay: payment.Payment{ID: "pay-1", Status: payment.StatusPending}},
		tasks:      &stubTaskMaterializer{},
		dispatcher: &stubDispatcher{},
	}
}

func createRequest() subscription.CreateRequest {
	return subscription.CreateRequest{
		EndUserID:       "user-1",
		TemplateID:      "tmpl-1",
		Amount:          decimal.NewFromInt(500),
		NextDueDate:     "2026-04-01",
		CustomOverrides: []int{-2, 0, 3},
	}
}

// ==================== Create ====================

func TestCreate_EnrollsWithPaymentAndTasks(t *testing.T) {
	d := defaultDeps()
	svc := newTestSubscriptionService(d)

	resp, err := svc.Create(context.Background(), "client-1", createRequest())

	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, resp.Status)
	assert.Equal(t, []int{-2, 0, 3}, resp.CustomOverrides)
	assert.True(t, resp.NextDueDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, d.payments.calls)
	assert.Equal(t, 1, d.tasks.calls)
	assert.Len(t, d.subRepo.subs, 1)
}

func TestCreate_ValidationFailure(t *testing.T) {
	d := defaultDeps()
	svc := newTestSubscriptionService(d)

	req := createRequest()
	req.Amount = decimal.Zero
	req.NextDueDate = ""
	_, err := svc.Create(context.Background(), "client-1", req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, d.payments.calls, "nothing persisted before validation")
}

func TestCreate_InactiveTemplate(t *testing.T) {
	d := defaultDeps()
	d.tmplRepo.templates[0].IsActive = false
	svc := newTestSubscriptionService(d)

	_, err := svc.Create(context.Background(), "client-1", createRequest())

	assert.ErrorIs(t, err, template.ErrTemplateInactive)
}

func TestCreate_RejectsDuplicateActivePair(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{{
		ID:         "sub-existing",
		ClientID:   "client-1",
		EndUserID:  "user-1",
		TemplateID: "tmpl-1",
		Status:     subscription.StatusActive,
	}}
	svc := newTestSubscriptionService(d)

	_, err := svc.Create(context.Background(), "client-1", createRequest())

	assert.ErrorIs(t, err, subscription.ErrDuplicateActive)
}

func TestCreate_AllowsReenrollAfterCancel(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{{
		ID:         "sub-old",
		ClientID:   "client-1",
		EndUserID:  "user-1",
		TemplateID: "tmpl-1",
		Status:     subscription.StatusCancelled,
	}}
	svc := newTestSubscriptionService(d)

	_, err := svc.Create(context.Background(), "client-1", createRequest())

	assert.NoError(t, err)
}

func TestCreate_WrongTenant(t *testing.T) {
	d := defaultDeps()
	svc := newTestSubscriptionService(d)

	_, err := svc.Create(context.Background(), "client-other", createRequest())

	assert.ErrorIs(t, err, template.ErrTemplateNotFound)
}

// ==================== Lifecycle ====================

func activeSub() subscription.Subscription {
	return subscription.Subscription{
		ID:          "sub-1",
		ClientID:    "client-1",
		EndUserID:   "user-1",
		TemplateID:  "tmpl-1",
		Amount:      decimal.NewFromInt(500),
		Status:      subscription.StatusActive,
		NextDueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPauseAndResume(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{activeSub()}
	svc := newTestSubscriptionService(d)
	ctx := context.Background()

	require.NoError(t, svc.Pause(ctx, "client-1", "sub-1"))
	got, _ := d.subRepo.GetByID(ctx, "sub-1", "client-1")
	assert.Equal(t, subscription.StatusPaused, got.Status)

	// Pausing twice is rejected.
	assert.ErrorIs(t, svc.Pause(ctx, "client-1", "sub-1"), subscription.ErrNotActive)

	before := time.Now()
	require.NoError(t, svc.Resume(ctx, "client-1", "sub-1"))
	got, _ = d.subRepo.GetByID(ctx, "sub-1", "client-1")
	assert.Equal(t, subscription.StatusActive, got.Status)
	// Next due restarts one template cycle (a month) from now.
	assert.True(t, got.NextDueDate.After(before.AddDate(0, 1, -1)))

	assert.ErrorIs(t, svc.Resume(ctx, "client-1", "sub-1"), subscription.ErrNotPaused)
}

func TestCancel_CancelsPendingPayments(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{activeSub()}
	d.payRepo.payments = []payment.Payment{
		{ID: "pay-1", SubscriptionID: "sub-1", Status: payment.StatusPending},
		{ID: "pay-2", SubscriptionID: "sub-1", Status: payment.StatusPaid},
	}
	svc := newTestSubscriptionService(d)
	ctx := context.Background()

	require.NoError(t, svc.Cancel(ctx, "client-1", "sub-1"))

	got, _ := d.subRepo.GetByID(ctx, "sub-1", "client-1")
	assert.Equal(t, subscription.StatusCancelled, got.Status)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, payment.StatusCancelled, d.payRepo.payments[0].Status)
	assert.Equal(t, payment.StatusPaid, d.payRepo.payments[1].Status, "paid history untouched")

	assert.ErrorIs(t, svc.Cancel(ctx, "client-1", "sub-1"), subscription.ErrAlreadyCancelled)
}

func TestDelete_ForbiddenWithPaidHistory(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{activeSub()}
	d.payRepo.payments = []payment.Payment{
		{ID: "pay-1", SubscriptionID: "sub-1", Status: payment.StatusPaid},
	}
	svc := newTestSubscriptionService(d)

	err := svc.Delete(context.Background(), "client-1", "sub-1")

	assert.ErrorIs(t, err, subscription.ErrHasPaymentHistory)
	assert.Len(t, d.subRepo.subs, 1)
}

func TestDelete_RemovesUnpaidSubscription(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{activeSub()}
	svc := newTestSubscriptionService(d)

	require.NoError(t, svc.Delete(context.Background(), "client-1", "sub-1"))

	assert.Empty(t, d.subRepo.subs)
}

func TestResendNotification_RoutesThroughDispatcher(t *testing.T) {
	d := defaultDeps()
	d.subRepo.subs = []subscription.Subscription{activeSub()}
	svc := newTestSubscriptionService(d)

	require.NoError(t, svc.ResendNotification(context.Background(), "client-1", "sub-1"))

	assert.Equal(t, 1, d.dispatcher.calls)
}
