package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/almacen-api/internal/application/auth"
	"github.com/tu-usuario/almacen-api/internal/application/catalog"
	"github.com/tu-usuario/almacen-api/internal/application/orders"
	"github.com/tu-usuario/almacen-api/internal/application/requests"
	"github.com/tu-usuario/almacen-api/internal/application/usecase"
	"github.com/tu-usuario/almacen-api/internal/infrastructure/mail"
	"github.com/tu-usuario/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/almacen-api/internal/interfaces/http"
	"github.com/tu-usuario/almacen-api/pkg/config"
	"github.com/tu-usuario/almacen-api/pkg/linktoken"
	"github.com/tu-usuario/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Firmador de los links de confirmación de órdenes (secreto propio, rotable aparte)
	orderSigner, err := linktoken.New(cfg.JWT.OrderSecret, cfg.JWT.Issuer, time.Duration(cfg.JWT.OrderTTLHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración del token de órdenes")
	}
	tokens := orders.NewConfirmTokenService(orderSigner)
	mailer := mail.NewSender(cfg.SMTP, log)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	categoryUC := catalog.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, supplierRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	requestUC := requests.NewRequestUseCase(txRunner, requestRepo, productRepo, userRepo, mailer, cfg.SMTP.AlertTo, log)
	orderUC := orders.NewOrderUseCase(
		txRunner, orderRepo, supplierRepo, productRepo,
		tokens, mailer, cfg.Frontend.BaseURL, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CategoryUC: categoryUC,
		ProductUC:  productUC,
		SupplierUC: supplierUC,
		OrderUC:    orderUC,
		RequestUC:  requestUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
