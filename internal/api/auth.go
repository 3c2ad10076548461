package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"claudehub/internal/auth"
	"claudehub/internal/records"

	"github.com/sirupsen/logrus"
)

const minPasswordLength = 6

// checkPassword returns why a new password is rejected, or "" when it is acceptable.
func checkPassword(password string) string {
	switch {
	case len(password) < minPasswordLength:
		return "Password must be at least 6 characters"
	case len(password) > auth.MaxPasswordLength:
		return "Password must be at most 72 bytes"
	}
	return ""
}

type sessionKey struct{}

// SessionFromContext returns the session resolved by RequireSession.
func SessionFromContext(ctx context.Context) (*records.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*records.Session)
	return s, ok
}

// RequireSession resolves the bearer token to a live session and rejects the
// request otherwise.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		session, err := h.records.GetSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, records.ErrInvalidSession) {
				writeError(w, http.StatusUnauthorized, "Session is invalid or has expired")
				return
			}
			logrus.Errorf("Failed to resolve session: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if msg := checkPassword(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	session, err := h.records.SignUp(r.Context(), records.SignUpParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if errors.Is(err, records.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		logrus.Errorf("Sign up failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.records.Demo() && (strings.TrimSpace(req.Email) == "" || req.Password == "") {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.records.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, records.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logrus.Errorf("Sign in failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SignOutHandler revokes the caller's session and drops its conversation.
func (h *Handler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	session, _ := SessionFromContext(r.Context())

	if err := h.records.SignOut(r.Context(), session.Token); err != nil && !errors.Is(err, records.ErrInvalidSession) {
		logrus.Errorf("Sign out failed for session %s: %v", session.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	h.chats.Drop(session.ID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "Signed out"})
}

func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	session, _ := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, session)
}

// ResetPasswordHandler answers the same way whether or not the account exists.
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.records.ResetPassword(r.Context(), req.Email); err != nil {
		logrus.Errorf("Password reset failed: %v", err)
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If an account exists for this email, a reset link has been sent."})
}

func (h *Handler) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if msg := checkPassword(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.records.UpdatePassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) || errors.Is(err, auth.ErrTokenAlreadyUsed) {
			writeError(w, http.StatusBadRequest, "Reset link is invalid or has expired")
			return
		}
		logrus.Errorf("Password update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
}
