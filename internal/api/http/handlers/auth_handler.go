package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/dto"
	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/service"
	apperrors "github.com/spec-kit/farm-portal/pkg/util/errorutil"
)

// AuthHandler exposes the sign-in flow.
type AuthHandler struct {
	sessions *service.SessionManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions *service.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Challenge POST /auth/challenge. Opens a session, or refreshes the code of
// the one named in the body.
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	var req dto.ChallengeRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if req.SessionID != "" {
		if s, ok := h.sessions.Get(req.SessionID); ok {
			return c.JSON(fiber.Map{"data": dto.ChallengeResponse{SessionID: s.ID(), Challenge: s.RegenerateChallenge()}})
		}
	}
	s := h.sessions.Open()
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ChallengeResponse{SessionID: s.ID(), Challenge: s.Challenge()}})
}

// Login POST /auth/login. A failed attempt reports the new challenge.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.SessionID == "" || req.Identifier == "" || req.Password == "" {
		return apperrors.NewValidationError("sessionId, identifier, password required", nil)
	}

	user, token, err := h.sessions.Login(c.UserContext(), req.SessionID, req.Identifier, req.Password, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeMismatch) || errors.Is(err, domain.ErrInvalidCredentials) {
			if s, ok := h.sessions.Get(req.SessionID); ok {
				de := apperrors.ToDomainError(err)
				de.Details = map[string]any{"challenge": s.Challenge()}
				return de
			}
		}
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Resume POST /auth/resume signs in the remembered user on a session.
func (h *AuthHandler) Resume(c *fiber.Ctx) error {
	var req dto.ResumeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.SessionID == "" {
		return apperrors.NewValidationError("sessionId required", nil)
	}
	user, token, err := h.sessions.Resume(c.UserContext(), req.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sign in required")
	}
	if err := h.sessions.Logout(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ForgotPassword POST /auth/password/forgot.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.sessions.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}
