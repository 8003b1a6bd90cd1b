package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-finance-tracker/internal/middleware"
	"go-finance-tracker/internal/model"
	"go-finance-tracker/internal/service"
	"go-finance-tracker/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func clientMeta(r *http.Request) service.ClientMeta {
	return service.ClientMeta{
		IP:        middleware.ExtractClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	pair, err := h.service.Register(r.Context(), payload.Username, payload.Password, clientMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Message:      "registered",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
		Username:     pair.Username,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	pair, err := h.service.Login(r.Context(), payload.Username, payload.Password, clientMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Message:      "logged in",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
		Username:     pair.Username,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.BadRequest("refreshToken is required"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Token:    pair.AccessToken,
		UserID:   pair.UserID,
		Username: pair.Username,
	})
}

// Logout revokes the presented access token. It always reports success:
// the client is logging out either way, and a failed revocation write
// is a server-side concern.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	token, hasToken := middleware.RawTokenFromContext(r.Context())
	if ok && hasToken {
		h.service.Logout(r.Context(), token, claims.UserID)
	}

	writeJSON(w, http.StatusOK, model.SimpleResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	writeJSON(w, http.StatusOK, model.MeResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
	})
}
