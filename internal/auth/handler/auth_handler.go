package handler

import (
	"errors"
	"strings"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/dashboard-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgMissingSignupFields = "Please provide name, email and password"
	msgMissingResetFields  = "Please provide email, OTP and new password"
	msgEmailRegistered     = "Email already registered"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidIdentity     = "Invalid identity token"
	msgProviderMissing     = "Google Client ID not configured"
	msgEmailNotFound       = "Email not found"
	msgOTPInvalid          = "OTP expired or invalid"
	msgOTPMismatch         = "Invalid OTP"
	msgOTPExpired          = "OTP expired"
	msgOTPSent             = "OTP sent successfully"
	msgResetDone           = "Password reset successful"
	msgNoToken             = "No token provided"
	msgInvalidToken        = "Invalid token"
	msgLoggedOut           = "Logged out successfully"
	msgInvalidInput        = "Invalid request body"
	msgServerError         = "Server error"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input dto.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidInput)
	}

	resp, err := h.authService.Signup(c.UserContext(), input)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(resp)
	case errors.Is(err, autherror.ErrValidation):
		return message(c, fiber.StatusBadRequest, msgMissingSignupFields)
	case errors.Is(err, autherror.ErrPasswordTooLong):
		return message(c, fiber.StatusBadRequest, msgPasswordTooLong)
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return message(c, fiber.StatusBadRequest, msgEmailRegistered)
	default:
		return h.serverError(c, "signup failed", err)
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidInput)
	}
	input.IPAddress = clientIP(c)

	resp, err := h.authService.Login(c.UserContext(), input)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(resp)
	case errors.Is(err, autherror.ErrInvalidCredentials):
		return message(c, fiber.StatusBadRequest, msgInvalidCredentials)
	default:
		return h.serverError(c, "login failed", err)
	}
}

func (h *AuthHandler) FederatedLogin(c *fiber.Ctx) error {
	var input dto.FederatedLoginInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidInput)
	}
	input.IPAddress = clientIP(c)

	resp, err := h.authService.FederatedLogin(c.UserContext(), input)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(resp)
	case errors.Is(err, autherror.ErrInvalidIdentityToken):
		h.logger.Info("identity token rejected", zap.Error(err))
		return message(c, fiber.StatusUnauthorized, msgInvalidIdentity)
	case errors.Is(err, autherror.ErrIdentityProviderNotConfigured):
		return message(c, fiber.StatusInternalServerError, msgProviderMissing)
	default:
		return h.serverError(c, "federated login failed", err)
	}
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidInput)
	}

	devCode, err := h.authService.RequestPasswordReset(c.UserContext(), input)
	switch {
	case err == nil:
		out := dto.ForgotPasswordOutput{Message: msgOTPSent}
		if devCode != "" {
			out.DevNote = "Development build: OTP is " + devCode
		}
		return c.Status(fiber.StatusOK).JSON(out)
	case errors.Is(err, autherror.ErrEmailNotFound):
		return message(c, fiber.StatusNotFound, msgEmailNotFound)
	default:
		return h.serverError(c, "forgot password failed", err)
	}
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidInput)
	}

	err := h.authService.ResetPassword(c.UserContext(), input)
	switch {
	case err == nil:
		return message(c, fiber.StatusOK, msgResetDone)
	case errors.Is(err, autherror.ErrValidation):
		return message(c, fiber.StatusBadRequest, msgMissingResetFields)
	case errors.Is(err, autherror.ErrPasswordTooLong):
		return message(c, fiber.StatusBadRequest, msgPasswordTooLong)
	case errors.Is(err, autherror.ErrOTPNotFound):
		return message(c, fiber.StatusBadRequest, msgOTPInvalid)
	case errors.Is(err, autherror.ErrOTPMismatch):
		return message(c, fiber.StatusBadRequest, msgOTPMismatch)
	case errors.Is(err, autherror.ErrOTPExpired):
		return message(c, fiber.StatusBadRequest, msgOTPExpired)
	default:
		return h.serverError(c, "reset password failed", err)
	}
}

// VerifyToken runs behind RequireBearer.
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	claims, ok := c.Locals(localClaims).(*service.SessionClaims)
	if !ok {
		return message(c, fiber.StatusUnauthorized, msgInvalidToken)
	}

	return c.Status(fiber.StatusOK).JSON(dto.VerifyTokenOutput{
		Valid: true,
		User: dto.UserOutput{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
		},
	})
}

// Logout runs behind RequireBearer.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)

	if err := h.authService.Logout(c.UserContext(), token); err != nil {
		if errors.Is(err, autherror.ErrInvalidToken) {
			return message(c, fiber.StatusUnauthorized, msgInvalidToken)
		}
		return h.serverError(c, "logout failed", err)
	}
	return message(c, fiber.StatusOK, msgLoggedOut)
}

func (h *AuthHandler) IdentityProviderClientID(c *fiber.Ctx) error {
	clientID, err := h.authService.IdentityProviderClientID()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgProviderMissing})
	}
	return c.Status(fiber.StatusOK).JSON(dto.ClientIDOutput{ClientID: clientID})
}

func (h *AuthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func (h *AuthHandler) serverError(c *fiber.Ctx, msg string, err error) error {
	h.logger.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return message(c, fiber.StatusInternalServerError, msgServerError)
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.MessageResponse{Message: msg})
}

// clientIP prefers the first X-Forwarded-For hop over the peer address.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return c.IP()
}
