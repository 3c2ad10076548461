package api

import (
	"net/http"

	"claudehub/internal/middleware"
)

// Routes wires every endpoint behind CORS and request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	public := func(path string, fn http.HandlerFunc) {
		mux.Handle(path, middleware.CORSMiddleware(fn))
	}
	private := func(path string, fn http.HandlerFunc) {
		mux.Handle(path, middleware.CORSMiddleware(h.RequireSession(fn)))
	}

	public("/health", h.HealthHandler)
	public("/api/claude", h.ClaudeHandler)

	public("/api/auth/signup", h.SignUpHandler)
	public("/api/auth/signin", h.SignInHandler)
	public("/api/auth/reset-password", h.ResetPasswordHandler)
	public("/api/auth/update-password", h.UpdatePasswordHandler)
	private("/api/auth/signout", h.SignOutHandler)
	private("/api/auth/session", h.SessionHandler)

	private("/api/profile", h.ProfileHandler)
	private("/api/dashboard", h.DashboardHandler)
	private("/api/projects", h.ProjectsHandler)
	private("/api/charts", h.ChartsHandler)
	private("/api/forms", h.FormsHandler)

	private("/api/chat", h.ChatHandler)
	private("/api/chat/messages", h.ChatMessageHandler)

	return middleware.LoggingMiddleware(mux)
}
