package handler

import (
	"errors"
	"strings"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/response"
	"skillbridge/internal/usecase"
	ucauth "skillbridge/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type resendRequest struct {
	Email string `json:"email"`
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// RegisterRoutes mounts the public endpoints. limit guards the credential
// endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	if limit == nil {
		limit = func(c fiber.Ctx) error { return c.Next() }
	}

	r.Post("/register", limit, h.Register)
	r.Post("/login", limit, h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Get("/verify", h.Verify)
	r.Post("/verify", h.Verify)
	r.Post("/resend", limit, h.Resend)
}

func (h *AuthHandler) RegisterProtectedRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/session", h.Session)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, err := h.uc.Register(c.Context(), ucauth.RegisterInput{Email: req.Email, Password: req.Password, FullName: req.FullName})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	data := map[string]any{"user": dto.NewUserResponse(usr)}
	return response.Success(c, fiber.StatusCreated, "Check your email to confirm your account", data)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, sess, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	data := map[string]any{
		"user":    dto.NewUserResponse(usr),
		"session": sess,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

// Refresh accepts the refresh token in the body or as a bearer token.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok := h.refreshToken(c)
	if tok == "" {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	sess, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		}
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"session": sess})
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	var req tokenRequest
	_ = c.Bind().Body(&req)
	access, _ := middleware.BearerToken(c.Get("Authorization"))

	if err := h.uc.Logout(c.Context(), strings.TrimSpace(req.RefreshToken), access); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, "Signed out", nil)
}

func (h *AuthHandler) Verify(c fiber.Ctx) error {
	token := c.Query("token")
	if token == "" && c.Method() == fiber.MethodPost {
		var req verifyRequest
		if err := c.Bind().Body(&req); err == nil {
			token = req.Token
		}
	}

	res, err := h.uc.VerifyEmail(c.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrVerificationExpired):
			return middleware.NewAppError(fiber.StatusBadRequest, "Verification link has expired", nil, err)
		case errors.Is(err, usecase.ErrVerificationInvalid):
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid verification link", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
	}

	msg := "Email confirmed"
	if res.AlreadyConfirmed {
		msg = "Email already confirmed"
	}
	data := map[string]any{
		"user_id":           res.UserID,
		"email":             res.Email,
		"already_confirmed": res.AlreadyConfirmed,
	}
	return response.Success(c, fiber.StatusOK, msg, data)
}

func (h *AuthHandler) Resend(c fiber.Ctx) error {
	var req resendRequest
	if err := c.Bind().Body(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	_ = h.uc.ResendVerification(c.Context(), strings.TrimSpace(req.Email))
	return response.Success(c, fiber.StatusOK, "If the account exists, a new confirmation link was sent", nil)
}

func (h *AuthHandler) Session(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	info, err := h.uc.Session(c.Context(), userID, middleware.TokenExpiresAt(c))
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	data := map[string]any{
		"profile":    dto.NewProfileResponse(info.Profile, nowUTC()),
		"is_admin":   info.IsAdmin,
		"expires_at": info.ExpiresAt,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) refreshToken(c fiber.Ctx) string {
	var req tokenRequest
	if err := c.Bind().Body(&req); err == nil {
		if tok := strings.TrimSpace(req.RefreshToken); tok != "" {
			return tok
		}
	}
	tok, _ := middleware.BearerToken(c.Get("Authorization"))
	return tok
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid email or password", nil, err)
	case errors.Is(err, ucauth.ErrEmailNotVerified):
		return middleware.NewAppError(fiber.StatusForbidden, "Please confirm your email before signing in", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
