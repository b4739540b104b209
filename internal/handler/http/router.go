package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	jwtAuth *jwtauth.JWTAuth,
	templateHandler TemplateHandler,
	endUserHandler EndUserHandler,
	subscriptionHandler SubscriptionHandler,
	paymentHandler PaymentHandler,
	taskHandler TaskHandler,
	webhookHandler WebhookHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "duetap-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	// Gateway callbacks authenticate out of band, not with client JWTs
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookHandler.HandleRazorpay)
		r.Post("/stripe", webhookHandler.HandleStripe)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtAuth))
			r.Use(middleware.AuthRequired(jwtAuth))

			r.Route("/templates", func(r chi.Router) {
				r.Post("/", templateHandler.Create)
				r.Get("/", templateHandler.List)
				r.Get("/{id}", templateHandler.Get)
				r.Post("/{id}/activate", templateHandler.Activate)
				r.Post("/{id}/deactivate", templateHandler.Deactivate)
			})

			r.Route("/end-users", func(r chi.Router) {
				r.Post("/", endUserHandler.Create)
				r.Get("/", endUserHandler.List)
				r.Get("/{id}", endUserHandler.Get)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", subscriptionHandler.Create)
				r.Get("/", subscriptionHandler.List)
				r.Get("/{id}", subscriptionHandler.Get)
				r.Delete("/{id}", subscriptionHandler.Delete)
				r.Post("/{id}/pause", subscriptionHandler.Pause)
				r.Post("/{id}/resume", subscriptionHandler.Resume)
				r.Post("/{id}/cancel", subscriptionHandler.Cancel)
				r.Post("/{id}/resend-notification", subscriptionHandler.ResendNotification)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", paymentHandler.List)
				r.Get("/{id}", paymentHandler.Get)
				r.Post("/{id}/mark-paid", paymentHandler.MarkAsPaid)
				r.Get("/{id}/notifications", paymentHandler.ListNotifications)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Get("/{id}", taskHandler.Get)
				r.Post("/{id}/dispatch", taskHandler.Dispatch)
			})
		})
	})

	return r
}
