package handler

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// AuthService is the subset of the auth service the handler needs
type AuthService interface {
	SignUp(ctx context.Context, req *service.SignUpRequest, client service.ClientInfo) (*service.AuthResponse, error)
	SignIn(ctx context.Context, req *service.SignInRequest, client service.ClientInfo) (*service.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResponse, error)
	SignOut(ctx context.Context, a *actor.Actor, refreshToken string) error
	Me(ctx context.Context, a *actor.Actor) (*service.MeResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	service AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// PublicRoutes mounts the endpoints reachable without a token
func (h *AuthHandler) PublicRoutes(r chi.Router) {
	r.Post("/sign-up", h.SignUp)
	r.Post("/sign-in", h.SignIn)
	r.Post("/refresh", h.Refresh)
}

// ProtectedRoutes mounts the endpoints that need an authenticated actor
func (h *AuthHandler) ProtectedRoutes(r chi.Router) {
	r.Post("/sign-out", h.SignOut)
	r.Get("/me", h.Me)
}

// SignUp registers a new account
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := httputil.Bind(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	resp, err := h.service.SignUp(r.Context(), &req, clientInfo(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, resp)
}

// SignIn handles email and password sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := httputil.Bind(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	resp, err := h.service.SignIn(r.Context(), &req, clientInfo(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := httputil.Bind(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// SignOut revokes the current access token and, when given, the refresh token's session
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req service.SignOutRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, r, err)
			return
		}
	}

	if err := h.service.SignOut(r.Context(), actor.FromContext(r.Context()), req.RefreshToken); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// Me returns the current user's information
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Me(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

func clientInfo(r *http.Request) service.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return service.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
