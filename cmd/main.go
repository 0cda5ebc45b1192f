package main

import (
	"go.uber.org/fx"

	"echosign-bridge/internal/config"
	deliveryhttp "echosign-bridge/internal/delivery/http"
	"echosign-bridge/internal/esign"
	"echosign-bridge/internal/infrastructure/database"
	"echosign-bridge/internal/infrastructure/logger"
	"echosign-bridge/internal/infrastructure/redis"
	"echosign-bridge/internal/infrastructure/repository"
	"echosign-bridge/internal/server"
	"echosign-bridge/internal/usecase"
)

func main() {
	fx.New(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		repository.Module,

		// Echosign session
		esign.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	).Run()
}
