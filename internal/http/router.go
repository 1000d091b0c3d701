package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentpay-backend/internal/handlers"
	"rentpay-backend/internal/middleware"
	"rentpay-backend/pkg/utils"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Payment      *handlers.PaymentHandler
	Webhook      *handlers.WebhookHandler
	Property     *handlers.PropertyHandler
	User         *handlers.UserHandler
	Account      *handlers.AccountHandler
	Notification *handlers.NotificationHandler
	Health       *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(middleware.MetricsMiddleware)

	r.HandleFunc("/", handlers.Index).Methods("GET")

	// Payments
	paymentsAPI := apiGroup(r, "/api/payments", "POST")
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", h.Payment.CreateIntent).Methods("POST")

	// Processor webhook - authenticated by signature, not bearer token
	webhookAPI := apiGroup(r, "/api/webhook", "POST")
	webhookAPI.HandleFunc("", h.Webhook.Handle).Methods("POST")

	// Properties
	propertiesAPI := apiGroup(r, "/api/properties", "GET", "POST", "PUT", "DELETE")
	propertiesAPI.Use(authMiddleware.Authenticate)
	propertiesAPI.HandleFunc("", h.Property.List).Methods("GET")
	propertiesAPI.HandleFunc("", h.Property.Create).Methods("POST")
	propertiesAPI.HandleFunc("", h.Property.Update).Methods("PUT")
	propertiesAPI.HandleFunc("", h.Property.Delete).Methods("DELETE")
	propertiesAPI.HandleFunc("/assign-tenant", h.Property.AssignTenant).Methods("POST")
	propertiesAPI.HandleFunc("/tenancies/{id}/deactivate", h.Property.DeactivateTenancy).Methods("POST")
	propertiesAPI.HandleFunc("/{id}", h.Property.Update).Methods("PUT")
	propertiesAPI.HandleFunc("/{id}", h.Property.Delete).Methods("DELETE")

	// Profile
	usersAPI := apiGroup(r, "/api/users", "GET", "PUT")
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", h.User.Get).Methods("GET")
	usersAPI.HandleFunc("", h.User.Update).Methods("PUT")

	// Processor account
	stripeAPI := apiGroup(r, "/api/stripe", "GET", "POST", "DELETE")
	stripeAPI.Use(authMiddleware.Authenticate)
	stripeAPI.HandleFunc("/payment-methods", h.Account.PaymentMethods).Methods("GET")
	stripeAPI.HandleFunc("/payment-methods/{id}", h.Account.DetachPaymentMethod).Methods("DELETE")
	stripeAPI.HandleFunc("/payment-history", h.Account.PaymentHistory).Methods("GET")
	stripeAPI.HandleFunc("/payment-history/{id}/receipt", h.Account.Receipt).Methods("GET")
	stripeAPI.HandleFunc("/setup-intent", h.Account.SetupIntent).Methods("POST")

	// Live payment notifications
	notificationsAPI := apiGroup(r, "/api/notifications", "GET")
	notificationsAPI.Use(authMiddleware.AuthenticateQuery)
	notificationsAPI.HandleFunc("/ws", h.Notification.Subscribe).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// apiGroup mounts a subrouter whose responses carry the group's CORS headers.
// Middleware only runs for matched routes, so OPTIONS gets a catch-all route
// and is answered before authentication. The catch-all uses a MatcherFunc
// rather than Methods so that unknown paths stay 404 instead of 405.
func apiGroup(r *mux.Router, prefix string, methods ...string) *mux.Router {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.Use(middleware.RouteCORS(methods...))
	sub.NewRoute().MatcherFunc(isOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return sub
}

func isOptions(r *http.Request, _ *mux.RouteMatch) bool {
	return r.Method == http.MethodOptions
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.Error(w, http.StatusNotFound, "Endpoint not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	utils.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
