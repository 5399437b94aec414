package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pratik-mahalle/mediremind/internal/api/dto"
	"github.com/pratik-mahalle/mediremind/internal/api/middleware"
	"github.com/pratik-mahalle/mediremind/internal/auth"
	"github.com/pratik-mahalle/mediremind/internal/domain/user"
	"github.com/pratik-mahalle/mediremind/internal/pkg/errors"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/metrics"
	"github.com/pratik-mahalle/mediremind/internal/pkg/utils"
	"github.com/pratik-mahalle/mediremind/internal/pkg/validator"
	"github.com/pratik-mahalle/mediremind/internal/services"
)

// maxBodyBytes caps auth request bodies
const maxBodyBytes = 1 << 16

// Authenticator issues and revokes session tokens
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users     user.Service
	auth      Authenticator
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users user.Service, authn Authenticator, log *logger.Logger, val *validator.Validator) *AuthHandler {
	return &AuthHandler{
		users:     users,
		auth:      authn,
		logger:    log,
		validator: val,
	}
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may go on.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}

	// The first violation becomes the message so clients can show it as is
	if errs := h.validator.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError(errs[0].Message, errs))
		return false
	}
	return true
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req) {
		metrics.RecordLogin(metrics.OutcomeInvalid)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, user.ErrInvalidCredentials) {
			metrics.RecordLogin(metrics.OutcomeFailure)
			h.logger.With("email", user.NormalizeEmail(req.Email)).Warn("Authentication failed")
			utils.WriteError(w, errors.Unauthorized("Invalid email or password"))
			return
		}
		metrics.RecordLogin(metrics.OutcomeError)
		h.logger.ErrorWithErr(err, "Login failed")
		utils.WriteError(w, errors.Internal("Login failed", err))
		return
	}

	metrics.RecordLogin(metrics.OutcomeSuccess)
	middleware.AddLogField(w, "user_id", session.User.ID)

	utils.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   session.Token,
		User:    dto.NewUserDTO(session.User),
	})
}

// Register handles POST /api/auth/register. It never logs the user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decode(w, r, &req) {
		metrics.RecordRegistration(metrics.OutcomeInvalid, "")
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		metrics.RecordRegistration(metrics.OutcomeInvalid, "")
		utils.WriteError(w, errors.BadRequest("role must be one of [PATIENT CAREGIVER]"))
		return
	}

	created, err := h.users.Register(r.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     role,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, user.ErrEmailTaken):
			metrics.RecordRegistration(metrics.OutcomeFailure, string(role))
			utils.WriteError(w, errors.Conflict("Email already registered"))
		case stderrors.Is(err, user.ErrPasswordTooLong):
			metrics.RecordRegistration(metrics.OutcomeInvalid, string(role))
			utils.WriteError(w, errors.BadRequest("password must be at most 72 bytes long"))
		default:
			metrics.RecordRegistration(metrics.OutcomeError, string(role))
			h.logger.ErrorWithErr(err, "Failed to register user")
			utils.WriteError(w, errors.Internal("Failed to register user", err))
		}
		return
	}

	metrics.RecordRegistration(metrics.OutcomeSuccess, string(role))
	middleware.AddLogField(w, "user_id", created.ID)

	utils.WriteSuccessWithMessage(w, http.StatusCreated, "User registered successfully", dto.NewUserDTO(created))
}

// Logout handles POST /api/auth/logout by revoking the presented token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		h.logger.ErrorWithErr(err, "Failed to revoke token")
		utils.WriteError(w, errors.Internal("Failed to log out", err))
		return
	}

	metrics.RecordLogout()
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if stderrors.Is(err, user.ErrNotFound) {
			utils.WriteError(w, errors.NotFound("User"))
			return
		}
		h.logger.ErrorWithErr(err, "Failed to get user")
		utils.WriteError(w, errors.Internal("Failed to get user", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewUserDTO(u))
}
