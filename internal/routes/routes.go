package routes

import (
	"net/http"

	"github.com/breachboard/breachboard/internal/app"
	"github.com/breachboard/breachboard/internal/handler"
	"github.com/breachboard/breachboard/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	dashboard := handler.NewDashboardHandler(app.DashboardService)
	password := handler.NewPasswordHandler(app.DashboardService)
	backup := handler.NewBackupHandler(app.BackupService)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", dashboard.Home)
	mux.HandleFunc("GET /login", auth.LoginRequired)
	mux.HandleFunc("POST /auth/register", middleware.RequireGuest(auth.Register))
	mux.HandleFunc("POST /auth/login", middleware.RequireGuest(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// Protected routes (/app/*) — every one passes the session gate first
	mux.HandleFunc("GET /app/dashboard", middleware.RequireAuth(dashboard.DashboardPage))
	mux.HandleFunc("POST /app/dashboard", middleware.RequireAuth(dashboard.Refresh))
	mux.HandleFunc("POST /app/password-check", middleware.RequireAuth(password.Check))
	mux.HandleFunc("GET /app/backup", middleware.RequireAuth(backup.Export))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserRepository),
	)
}
