package main

import (
	"log"
	"net/http"

	httphandlers "cardkeeper/internal/interfaces/http"
	"cardkeeper/internal/shared/config"
	"cardkeeper/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/cards", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleCards)))
	mux.Handle("/api/cards/{id}", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleCard)))
	mux.Handle("/api/cards/{id}/credit-limit", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleCreditLimit)))
	mux.Handle("/api/cards/{id}/clear", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleClearData)))

	mux.Handle("/api/transactions", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleAppend)))
	mux.Handle("/api/transactions/{id}", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleDelete)))

	mux.Handle("/api/balance/overview", authMiddleware(http.HandlerFunc(deps.BalanceHandler.HandleOverview)))
	mux.Handle("/api/balance/months/{year}/{month}", authMiddleware(http.HandlerFunc(deps.BalanceHandler.HandleMonthDetails)))
	mux.Handle("/api/balance/confirm", authMiddleware(http.HandlerFunc(deps.BalanceHandler.HandleConfirmMonth)))

	mux.Handle("/api/import/csv", authMiddleware(http.HandlerFunc(deps.ImportHandler.HandleImportCSV)))

	mux.Handle("/api/notifications/register-device", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleRegisterDevice)))
	mux.Handle("/api/notifications/unregister-device", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleUnregisterDevice)))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(middleware.Telemetry(middleware.Tracing(mux))))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
