package app

import (
	"github.com/Freeeeeet/lms_backoffice/internal/config"
	"github.com/Freeeeeet/lms_backoffice/internal/controller"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewHTTPServer собирает fiber-приложение со всеми маршрутами
func NewHTTPServer(cfg *config.Config, svc *service.Services, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lms-backoffice",
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          controller.ErrorHandler(logger),
	})

	// RequestContext идёт первым, чтобы паника тоже попала в лог запроса
	app.Use(controller.RequestContext(logger.Named("http"), cfg.RequestTimeout))
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	controller.Register(app, svc)

	return app
}
