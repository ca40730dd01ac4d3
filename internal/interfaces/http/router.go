package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-api/internal/application/auth"
	"github.com/tu-usuario/almacen-api/internal/application/catalog"
	"github.com/tu-usuario/almacen-api/internal/application/orders"
	"github.com/tu-usuario/almacen-api/internal/application/requests"
	"github.com/tu-usuario/almacen-api/internal/application/usecase"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CategoryUC *catalog.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	SupplierUC *usecase.SupplierUseCase
	OrderUC    *orders.OrderUseCase
	RequestUC  *requests.RequestUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Links de confirmación de órdenes (público: los visita el proveedor desde el correo)
	orderHandler := NewOrderHandler(deps.OrderUC)
	api.Get("/orders/:id/confirm", orderHandler.Confirm)
	api.Get("/orders/:id/reject", orderHandler.Reject)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Usuarios (protegido, solo admin)
	protected.Get("/users", RequireRole(entity.RoleAdmin), authHandler.ListUsers)

	// Categories (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Suppliers (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Orders (protegido; confirm/reject quedan arriba como públicos)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/notifications", orderHandler.Notifications)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Delete("/:id", orderHandler.Delete)

	// Requests (protegido)
	requestsGroup := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC)
	requestsGroup.Post("/", requestHandler.Create)
	requestsGroup.Get("/", requestHandler.List)
	requestsGroup.Get("/stats", requestHandler.Stats)
	requestsGroup.Get("/:id", requestHandler.GetByID)
	requestsGroup.Put("/:id/status", requestHandler.UpdateStatus)
	requestsGroup.Put("/:id", requestHandler.Update)
	requestsGroup.Delete("/:id", requestHandler.Delete)
}
