package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opencivic/infrawatch/pkg/logging"
)

// Handler handles the /auth HTTP endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	user, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields), errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrEmailTaken):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("signup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	message := "Account created successfully. Note: You have user access only."
	if user.Role == RoleAdmin {
		message = "Admin account created successfully"
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "success", "message": message})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	token, user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
	})
}

// Verify handles POST /auth/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	session, err := h.service.Verify(r.Context(), req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "valid": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "valid": true, "user": session})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if err := h.service.Logout(r.Context(), req.Token); err != nil {
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Logged out successfully"})
}
