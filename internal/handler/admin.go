package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"lingua-daily/internal/dto"
	"lingua-daily/internal/repository"
	"lingua-daily/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminAuthMiddleware rejects requests without a valid Bearer token issued
// by Login.
func AdminAuthMiddleware(adminService service.AdminService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			if err := adminService.VerifyToken(strings.TrimPrefix(auth, "Bearer ")); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req dto.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.adminService.Login(req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return c.JSON(http.StatusOK, dto.AdminLoginResponse{Success: true, Token: token})
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.adminService.Dashboard())
}

func (h *AdminHandler) CancelSubscription(c echo.Context) error {
	var req dto.AdminCancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.adminService.CancelSubscription(req.Email); err != nil {
		if errors.Is(err, repository.ErrSubscriberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscriber not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ExtendSubscription(c echo.Context) error {
	var req dto.AdminExtendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	expires, err := h.adminService.ExtendSubscription(req.Email, req.Days)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscriber not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.AdminExtendResponse{Success: true, NewExpiry: expires.UnixMilli()})
}

func (h *AdminHandler) CleanupPending(c echo.Context) error {
	deleted, err := h.adminService.CleanupPending()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.AdminCleanupResponse{Success: true, Deleted: deleted})
}
