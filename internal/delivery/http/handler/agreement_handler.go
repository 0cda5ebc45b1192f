package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"echosign-bridge/internal/domain/entity"
	"echosign-bridge/internal/usecase"
)

type AgreementHandler struct {
	usecase usecase.AgreementUsecase
	logger  *zap.Logger
}

func NewAgreementHandler(usecase usecase.AgreementUsecase, logger *zap.Logger) *AgreementHandler {
	return &AgreementHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// ListAgreements godoc
// @Summary List agreements
// @Description List agreements visible to the configured Echosign user
// @Tags agreements
// @Accept json
// @Produce json
// @Param query query string false "Free-text search passed to Echosign"
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/agreements [get]
func (h *AgreementHandler) ListAgreements(c *fiber.Ctx) error {
	ctx := c.UserContext()

	agreements, err := h.usecase.ListAgreements(ctx, c.Query("query"))
	if err != nil {
		h.logger.Error("Failed to list agreements", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.JSON(entity.NewSuccessResponse(agreements, "Agreements retrieved successfully"))
}

// GetAgreementStatus godoc
// @Summary Get cached agreement status
// @Description Get the last mirrored status of an agreement without calling Echosign
// @Tags agreements
// @Accept json
// @Produce json
// @Param id path string true "Agreement ID"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/agreements/{id}/status [get]
func (h *AgreementHandler) GetAgreementStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	status, err := h.usecase.GetCachedStatus(ctx, c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse("NOT_FOUND", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(fiber.Map{
		"agreement_id": c.Params("id"),
		"status":       status,
	}, "Agreement status retrieved successfully"))
}

// CancelAgreement godoc
// @Summary Cancel an agreement
// @Description Cancel an in-flight agreement on Echosign
// @Tags agreements
// @Accept json
// @Produce json
// @Param id path string true "Agreement ID"
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/agreements/{id}/cancel [post]
func (h *AgreementHandler) CancelAgreement(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := h.usecase.CancelAgreement(ctx, c.Params("id")); err != nil {
		h.logger.Error("Failed to cancel agreement", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.JSON(entity.NewSuccessResponse(nil, "Agreement cancelled successfully"))
}

type reminderRequest struct {
	Comment string `json:"comment"`
}

// SendReminder godoc
// @Summary Send a signing reminder
// @Description Remind the participants the agreement is currently waiting on
// @Tags agreements
// @Accept json
// @Produce json
// @Param id path string true "Agreement ID"
// @Param request body reminderRequest false "Optional reminder comment"
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/agreements/{id}/reminders [post]
func (h *AgreementHandler) SendReminder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req reminderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
			)
		}
	}

	if err := h.usecase.SendReminder(ctx, c.Params("id"), req.Comment); err != nil {
		h.logger.Error("Failed to send reminder", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.JSON(entity.NewSuccessResponse(nil, "Reminder sent successfully"))
}
