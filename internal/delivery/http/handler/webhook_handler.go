package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"echosign-bridge/internal/domain/entity"
	"echosign-bridge/internal/usecase"
)

type WebhookHandler struct {
	usecase usecase.WebhookUsecase
	logger  *zap.Logger
}

func NewWebhookHandler(usecase usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// RegisterWebhook godoc
// @Summary Register a webhook
// @Description Register a webhook with Echosign. The target URL must be live
// @Description and answer the vendor's verification challenge.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body usecase.RegisterWebhookRequest true "Webhook registration"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/webhooks [post]
func (h *WebhookHandler) RegisterWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req usecase.RegisterWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	webhookID, err := h.usecase.Register(ctx, &req)
	if err != nil {
		h.logger.Error("Failed to register webhook", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(fiber.Map{"webhook_id": webhookID}, "Webhook registered successfully"),
	)
}

// UnregisterWebhook godoc
// @Summary Delete a webhook registration
// @Description Delete a webhook registration by id
// @Tags webhooks
// @Accept json
// @Produce json
// @Param id path string true "Webhook ID"
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/webhooks/{id} [delete]
func (h *WebhookHandler) UnregisterWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := h.usecase.Unregister(ctx, c.Params("id")); err != nil {
		h.logger.Error("Failed to unregister webhook", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.JSON(entity.NewSuccessResponse(nil, "Webhook deleted successfully"))
}
