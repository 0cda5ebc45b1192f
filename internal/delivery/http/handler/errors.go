package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"echosign-bridge/internal/infrastructure/httpclient"
)

// statusFromError maps the Echosign error taxonomy to the HTTP status the
// bridge returns. Vendor-side failures pass their nature through instead of
// collapsing everything to 500.
func statusFromError(err error) (int, string) {
	var authErr *httpclient.AuthError
	if errors.As(err, &authErr) {
		return fiber.StatusUnauthorized, "UPSTREAM_AUTH_ERROR"
	}

	var permErr *httpclient.PermissionError
	if errors.As(err, &permErr) {
		return fiber.StatusForbidden, "UPSTREAM_PERMISSION_DENIED"
	}

	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		return fiber.StatusBadGateway, "UPSTREAM_API_ERROR"
	}

	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}
