package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"echosign-bridge/internal/domain/entity"
	"echosign-bridge/internal/usecase"
)

type LibraryHandler struct {
	usecase usecase.LibraryUsecase
	logger  *zap.Logger
}

func NewLibraryHandler(usecase usecase.LibraryUsecase, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// ListLibraryDocuments godoc
// @Summary List library documents
// @Description List the reusable library templates visible to the configured user
// @Tags library
// @Accept json
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/library-documents [get]
func (h *LibraryHandler) ListLibraryDocuments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	documents, err := h.usecase.ListLibraryDocuments(ctx)
	if err != nil {
		h.logger.Error("Failed to list library documents", zap.Error(err))
		status, code := statusFromError(err)
		return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
	}

	return c.JSON(entity.NewSuccessResponse(documents, "Library documents retrieved successfully"))
}
