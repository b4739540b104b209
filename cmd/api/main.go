package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/go-chi/jwtauth/v5"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
	appHTTP "github.com/duetap/duetap-backend-go/internal/handler/http"
	"github.com/duetap/duetap-backend-go/internal/pkg/cron"
	"github.com/duetap/duetap-backend-go/internal/pkg/database"
	"github.com/duetap/duetap-backend-go/internal/pkg/email"
	"github.com/duetap/duetap-backend-go/internal/pkg/razorpay"
	"github.com/duetap/duetap-backend-go/internal/pkg/stripe"
	"github.com/duetap/duetap-backend-go/internal/pkg/whatsapp"
	"github.com/duetap/duetap-backend-go/internal/repository/postgresql"
	billingService "github.com/duetap/duetap-backend-go/internal/service/billing"
	endUserService "github.com/duetap/duetap-backend-go/internal/service/enduser"
	paymentService "github.com/duetap/duetap-backend-go/internal/service/payment"
	reminderService "github.com/duetap/duetap-backend-go/internal/service/reminder"
	subscriptionService "github.com/duetap/duetap-backend-go/internal/service/subscription"
	templateService "github.com/duetap/duetap-backend-go/internal/service/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	clientRepo := postgresql.NewClientRepository(db)
	templateRepo := postgresql.NewTemplateRepository(db)
	endUserRepo := postgresql.NewEndUserRepository(db)
	subscriptionRepo := postgresql.NewSubscriptionRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	notificationLogRepo := postgresql.NewNotificationLogRepository(db)
	txManager := postgresql.NewTxManager(db)

	emailSender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email sender:", err)
	}
	senders := map[notification.Channel]notification.Sender{
		notification.ChannelEmail:    emailSender,
		notification.ChannelWhatsApp: whatsapp.NewSender(cfg.WhatsApp),
	}

	generators := map[template.PaymentMethod]payment.LinkGenerator{}
	if cfg.Razorpay.KeyID != "" {
		generators[template.PaymentRazorpay] = razorpay.NewClient(cfg.Razorpay)
	}
	if cfg.Stripe.SecretKey != "" {
		generators[template.PaymentStripe] = stripe.NewClient(cfg.Stripe)
	}

	reminderSvc := reminderService.NewService(
		taskRepo,
		paymentRepo,
		endUserRepo,
		clientRepo,
		notificationLogRepo,
		senders,
		cfg.Billing,
	)
	billingSvc := billingService.NewService(
		subscriptionRepo,
		templateRepo,
		endUserRepo,
		clientRepo,
		paymentRepo,
		generators,
		reminderSvc,
		txManager,
		cfg.Billing,
	)
	paymentSvc := paymentService.NewService(paymentRepo, subscriptionRepo, notificationLogRepo, txManager)
	templateSvc := templateService.NewTemplateService(templateRepo)
	endUserSvc := endUserService.NewEndUserService(endUserRepo)
	subscriptionSvc := subscriptionService.NewSubscriptionService(
		subscriptionRepo,
		templateRepo,
		endUserRepo,
		paymentRepo,
		billingSvc,
		reminderSvc,
		reminderSvc,
		txManager,
	)

	scheduler := cron.NewScheduler(slog.Default())
	billingJobs := cron.NewBillingJobs(billingSvc, reminderSvc, paymentSvc, cfg.Cron)
	if err := billingJobs.RegisterJobs(scheduler); err != nil {
		log.Fatal("Failed to register cron jobs:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	jwtAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	templateHandler := appHTTP.NewTemplateHandler(templateSvc)
	endUserHandler := appHTTP.NewEndUserHandler(endUserSvc)
	subscriptionHandler := appHTTP.NewSubscriptionHandler(subscriptionSvc)
	paymentHandler := appHTTP.NewPaymentHandler(paymentSvc)
	taskHandler := appHTTP.NewTaskHandler(taskRepo, reminderSvc)
	webhookHandler := appHTTP.NewWebhookHandler(paymentSvc)

	router := appHTTP.NewRouter(
		cfg,
		jwtAuth,
		templateHandler,
		endUserHandler,
		subscriptionHandler,
		paymentHandler,
		taskHandler,
		webhookHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutdown signal received")
	if err := server.Close(); err != nil {
		slog.Error("server close failed", "error", err)
	}
}
