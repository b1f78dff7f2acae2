// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
)

type Handler struct {
	service   *Service
	reset     *ResetFlow
	validator *validator.Validate
}

func NewHandler(service *Service, reset *ResetFlow) *Handler {
	return &Handler{
		service:   service,
		reset:     reset,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /auth. strict wraps the anonymous credential
// endpoints with a tighter rate limit.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	strict func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(strict)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			core.JSONError(w, core.NewAppError(
				err,
				"user with this email already exists",
				http.StatusBadRequest,
				"DUPLICATE_EMAIL",
			))
		case errors.Is(err, core.ErrPasswordTooLong):
			core.BadRequest(w, "password must be at most 72 bytes")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Message(w, http.StatusCreated, "user registered")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.NewAppError(
				err,
				"invalid email or password",
				http.StatusUnauthorized,
				"INVALID_CREDENTIALS",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.reset.RequestReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, ErrDeliveryFailed):
			core.JSONError(w, core.NewAppError(
				err,
				"could not send password reset instructions",
				http.StatusBadGateway,
				"DELIVERY_FAILED",
			))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Message(w, http.StatusOK, "password reset instructions sent")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.reset.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOrExpiredToken):
			core.JSONError(w, core.NewAppError(
				err,
				"invalid or expired reset token",
				http.StatusBadRequest,
				"INVALID_RESET_TOKEN",
			))
		case errors.Is(err, core.ErrPasswordTooLong):
			core.BadRequest(w, "password must be at most 72 bytes")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Message(w, http.StatusOK, "password updated")
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrUnauthorized) {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetIdentity(r.Context())); err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "logged out")
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.DebugContext(r.Context(), "invalid request body", "error", err)
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
