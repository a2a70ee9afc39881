package middleware

import (
	"net/http"

	"github.com/breachboard/breachboard/internal/ctxkeys"
	"github.com/breachboard/breachboard/internal/repository"
	"github.com/breachboard/breachboard/internal/service"
)

// AuthMiddleware checks for a session token and adds the user to context if valid
func AuthMiddleware(authService *service.AuthService, userRepository repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session_token")
			if err != nil {
				// No cookie, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				// Invalid token, clear cookie and continue
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := userRepository.ByID(userID)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Security: never carry the hash through request context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth gates every protected operation: without an authenticated user
// the wrapped handler never runs and the caller is redirected to login.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireGuest ensures the user is not authenticated
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
