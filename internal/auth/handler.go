package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.With(RequireAuth).Get("/me", h.handleMe)
	r.With(RequireAuth).Post("/logout", h.handleLogout)
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// NewUserResponse maps a domain user to its API view.
func NewUserResponse(user *User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	if !user.LastLogin.IsZero() && user.LastLogin.Unix() > 0 {
		last := user.LastLogin
		resp.LastLogin = &last
	}
	return resp
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.Register(r.Context(), req.Email, req.Username, req.FullName, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			shared.RespondError(w, http.StatusBadRequest, "username or email already registered")
			return
		}
		h.logger.Error("register user", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, NewUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			shared.RespondError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        NewUserResponse(user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	user, err := h.service.repo.FindByID(r.Context(), p.UserID)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, NewUserResponse(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Logout(r.Context(), p.TokenID); err != nil {
		h.logger.Warn("revoke session", slog.Any("error", err))
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "successfully logged out"})
}
