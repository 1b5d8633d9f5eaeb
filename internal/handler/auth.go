package handler

import (
	"errors"
	"net/http"

	"github.com/motormania/motormania-go/internal/middleware"
	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/service"
	"github.com/motormania/motormania-go/internal/token"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleSignup handles POST /api/v1/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already exists.")
			return
		}
		writeServerError(w, "Failed to register user. Please try again.", err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully.", resp)
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Unknown email and wrong password answer identically.
			writeError(w, http.StatusUnauthorized, "Incorrect email or password.")
			return
		}
		writeServerError(w, "An internal error occurred during login.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful.", resp)
}

// HandleRefresh handles POST /api/v1/auth/refresh requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			writeError(w, http.StatusUnauthorized, "Refresh token has expired.")
		case errors.Is(err, token.ErrNotYetValid):
			writeError(w, http.StatusUnauthorized, "Refresh token is not yet valid.")
		case errors.Is(err, token.ErrInvalidToken), errors.Is(err, token.ErrInvalidClaims):
			writeError(w, http.StatusUnauthorized, "Invalid refresh token.")
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusUnauthorized, "Refresh token not found, invalid, or expired in database.")
		default:
			writeServerError(w, "An internal error occurred during token refresh.", err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Token refreshed successfully.", resp)
}

// HandleLogout handles POST /api/v1/auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	if err := h.service.Logout(r.Context(), identity.ID); err != nil {
		writeServerError(w, "An error occurred during logout.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Logout successful. User session terminated.", nil)
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	resp, err := h.service.Me(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w, "An internal error occurred.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "User retrieved successfully.", resp)
}
