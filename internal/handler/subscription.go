package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lingua-daily/internal/config"
	"lingua-daily/internal/dto"
	"lingua-daily/internal/model"
	"lingua-daily/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	sentenceService     service.SentenceService
	languages           config.Languages
}

func NewSubscriptionHandler(
	subscriptionService service.SubscriptionService,
	sentenceService service.SentenceService,
	languages config.Languages,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		sentenceService:     sentenceService,
		languages:           languages,
	}
}

func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	var req dto.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.subscriptionService.Subscribe(model.NormalizeEmail(req.Email), req.Language); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	var req dto.UnsubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.subscriptionService.Unsubscribe(model.NormalizeEmail(req.Email)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *SubscriptionHandler) DailySentence(c echo.Context) error {
	ctx := c.Request().Context()

	source := c.QueryParam("source")
	if source == "" {
		source = h.languages.Source
	}
	target := c.QueryParam("target")
	if target == "" {
		target = h.languages.Target
	}

	sentence := h.sentenceService.Daily(ctx, source, target)
	return c.JSON(http.StatusOK, dto.SentenceResponse{
		Sentence: *sentence,
		Text:     sentence.Text(),
	})
}

func (h *SubscriptionHandler) SendDaily(c echo.Context) error {
	ctx := c.Request().Context()

	sent, err := h.subscriptionService.SendDaily(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.SendDailyResponse{Sent: sent})
}
