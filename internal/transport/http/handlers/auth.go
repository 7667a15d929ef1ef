package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/domain"
	"github.com/lanehart/authd/internal/logger"
	"github.com/lanehart/authd/internal/transport/http/dto"
	"github.com/lanehart/authd/internal/transport/http/middleware"
	"github.com/lanehart/authd/internal/transport/http/response"
)

// AuthHandler exposes the auth service over HTTP.
type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		middleware.SignupsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.SignupsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user registered")

	response.Created(w, dto.SignupResponse{
		Success: true,
		Message: "account created, check your email to verify it",
		UserID:  res.User.ID,
		User:    dto.NewUserView(res.User),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	response.OK(w, dto.LoginResponse{
		Success:   true,
		Token:     res.Token.AccessToken,
		TokenType: res.Token.TokenType,
		ExpiresIn: res.Token.ExpiresIn,
		User:      dto.NewUserView(res.User),
	})
}

// VerifyEmail handles GET /verify-email/{token}.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Success: true, Message: "email verified"})
}

// ResendVerification handles POST /resend-verification. Like
// forgot-password, the response never reveals whether the address
// exists or is already verified.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestEmailVerification(r.Context(), req.Email); err != nil {
		logger.WithCtx(r.Context()).Error().Err(err).Msg("resend verification failed")
	}
	response.OK(w, dto.MessageResponse{
		Success: true,
		Message: "if that address needs verification, a new link has been sent",
	})
}

// ForgotPassword handles POST /forgot-password. The response never
// reveals whether the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		logger.WithCtx(r.Context()).Error().Err(err).Msg("password reset request failed")
	}
	response.OK(w, dto.MessageResponse{
		Success: true,
		Message: "if that address is registered, a reset link has been sent",
	})
}

// ValidateResetToken handles GET /reset-password/{token}. It checks the
// token without consuming it so a form can be shown first.
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if err := h.svc.ValidateResetToken(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Success: true, Message: "token is valid"})
}

// ResetPassword handles POST /reset-password/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if err := h.svc.ResetPassword(r.Context(), token, req.Password); err != nil {
		middleware.PasswordResetsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.PasswordResetsTotal.WithLabelValues("success").Inc()

	response.OK(w, dto.MessageResponse{Success: true, Message: "password updated"})
}

// Me handles GET /me. RequireAuth has already loaded the user once; we
// fetch the record again to return the freshest projection.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}
	u, err := h.svc.GetUserByID(r.Context(), uid)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MeResponse{Success: true, User: dto.NewUserView(u)})
}

// Promote handles POST /promote (superuser only).
func (h *AuthHandler) Promote(w http.ResponseWriter, r *http.Request) {
	var req dto.PromoteRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Promote(r.Context(), req.Email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	actor, _ := middleware.UserIDFromContext(r.Context())
	logger.WithCtx(r.Context()).Info().
		Str("target_user_id", u.ID).
		Str("actor_user_id", actor).
		Msg("user promoted to superuser")

	response.OK(w, dto.MessageResponse{Success: true, Message: "user promoted to superuser"})
}

func errCode(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return "internal"
}
