package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lingua-daily/internal/chain"
	"lingua-daily/internal/dto"
	"lingua-daily/internal/repository"
	"lingua-daily/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// httpError maps the service error taxonomy onto status codes. RPC trouble
// is retryable (503), never reported as unpaid.
func httpError(err error) error {
	switch {
	case errors.Is(err, chain.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"payment verification is not configured for this chain. Please contact support.")
	case errors.Is(err, chain.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"unable to verify payment right now. Please try again later.")
	case errors.Is(err, chain.ErrTxNotFound):
		return echo.NewHTTPError(http.StatusNotFound,
			"transaction not found. Please check the transaction id.")
	case errors.Is(err, chain.ErrTxFailed):
		return echo.NewHTTPError(http.StatusBadRequest,
			"transaction failed or is not successful.")
	case errors.Is(err, repository.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return err
}

func (h *PaymentHandler) StartOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.StartOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.paymentService.StartOrder(ctx, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) BuildTx(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BuildTxRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.paymentService.BuildUSDCTransfer(ctx, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) SolanaStatus(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference required")
	}

	result, err := h.paymentService.CheckSolanaStatus(ctx, reference)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) EVMStatus(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference required")
	}
	chainName := c.QueryParam("chain")
	if chainName != "base" && chainName != "arbitrum" {
		return echo.NewHTTPError(http.StatusBadRequest, "valid chain required (base or arbitrum)")
	}

	result, err := h.paymentService.CheckEVMStatus(ctx, reference, chainName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// VerifyChain handles the manual verification flow where the user pastes a
// transaction id after paying.
func (h *PaymentHandler) VerifyChain(chainName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req dto.VerifyRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		txID := req.TransactionID()
		if txID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "transaction id required")
		}

		result, err := h.paymentService.VerifyManual(ctx, chainName, txID, req.Reference)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}
