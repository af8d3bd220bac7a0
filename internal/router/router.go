package router

import (
	"log"
	"net/http"

	"github.com/coral-stay/api/internal/config"
	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/handler"
	mw "github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/recommend"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/store"
	"github.com/coral-stay/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, st *store.Store, orders *service.OrderService, leave *service.LeaveService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Next.js dev server
			"https://coral-stay.vercel.app",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param). A new
	// watcher gets the current queue before any delta lands.
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		initial, err := ws.QueueEvent(orders.ActiveQueue())
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		ws.ServeOrders(hub, cfg.JWTSecret, initial, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Profile
		authHandler.RegisterProfileRoutes(r)

		// Menu: everyone reads, admins mutate
		menuHandler := handler.NewMenuHandler(st)
		r.Route("/menu", func(r chi.Router) {
			menuHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				menuHandler.RegisterAdminRoutes(r)
			})
		})

		// Orders
		orderHandler := handler.NewOrderHandler(orders)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Reviews
		reviewService := service.NewReviewService(st)
		reviewHandler := handler.NewReviewHandler(reviewService)
		r.Route("/reviews", reviewHandler.RegisterRoutes)

		// Leave requests
		leaveHandler := handler.NewLeaveHandler(leave)
		r.Route("/leave", leaveHandler.RegisterRoutes)

		// Recommendations
		recommendClient := recommend.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		recommendHandler := handler.NewRecommendationHandler(recommendClient, st)
		r.Route("/recommendations", recommendHandler.RegisterRoutes)

		// Dashboard (admin only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			statsService := service.NewStatsService(st)
			dashboardHandler := handler.NewDashboardHandler(statsService)
			r.Route("/dashboard", dashboardHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
