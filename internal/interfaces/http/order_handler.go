package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/application/orders"
	"github.com/tu-usuario/almacen-api/internal/domain"
)

// OrderHandler maneja las peticiones HTTP para órdenes de compra.
// Confirm y Reject son públicos: los visita el proveedor desde el correo,
// autenticado solo por el token firmado del link.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra y notificar al proveedor
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Proveedor e items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SupplierID == "" || len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "supplier_id e items son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), GetRole(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden con sus items
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Notifications godoc
// @Summary      Órdenes creadas en las últimas 24 horas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders/notifications [get]
func (h *OrderHandler) Notifications(c *fiber.Ctx) error {
	out, err := h.uc.RecentNotifications(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar estado y/o proveedor de una orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), GetRole(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar orden (con sus items)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Delete(c.Context(), GetRole(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "orden eliminada"})
}

// Confirm godoc
// @Summary      Confirmar orden vía link de correo (público)
// @Tags         orders
// @Produce      html
// @Param        id     path   string  true  "ID de la orden"
// @Param        token  query  string  true  "Token firmado del link"
// @Success      200  {string}  string  "Página de resultado"
// @Router       /api/orders/{id}/confirm [get]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	return h.resolveLink(c, "confirmada", h.uc.Confirm)
}

// Reject godoc
// @Summary      Rechazar orden vía link de correo (público)
// @Tags         orders
// @Produce      html
// @Param        id     path   string  true  "ID de la orden"
// @Param        token  query  string  true  "Token firmado del link"
// @Success      200  {string}  string  "Página de resultado"
// @Router       /api/orders/{id}/reject [get]
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	return h.resolveLink(c, "rechazada", h.uc.Reject)
}

// resolveLink ejecuta la resolución y responde con una página simple que el
// proveedor puede leer en el navegador.
func (h *OrderHandler) resolveLink(c *fiber.Ctx, action string, fn func(ctx context.Context, orderID, token string) error) error {
	orderID := c.Params("id")
	token := c.Query("token")

	if err := fn(c.Context(), orderID, token); err != nil {
		status, message := linkErrorPage(err)
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(status).SendString(resultPage("No se pudo procesar la orden", message))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(resultPage(
		fmt.Sprintf("Orden %s", action),
		fmt.Sprintf("La orden %s fue %s correctamente. Ya puede cerrar esta ventana.", orderID, action),
	))
}

// linkErrorPage traduce el error de resolución a un mensaje legible para el proveedor.
func linkErrorPage(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTokenUsed):
		return fiber.StatusConflict, "Este link ya fue utilizado. La orden fue confirmada o rechazada anteriormente."
	case errors.Is(err, domain.ErrTokenExpired):
		return fiber.StatusBadRequest, "El link expiró. Solicite al almacén que reenvíe la orden."
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMismatch), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusUnauthorized, "El link no es válido para esta orden."
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "La orden ya no existe."
	default:
		return fiber.StatusInternalServerError, "Ocurrió un error al procesar la orden. Intente nuevamente más tarde."
	}
}

func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family: Arial, sans-serif; max-width: 560px; margin: 60px auto; text-align: center;">
  <h2>%s</h2>
  <p>%s</p>
</body>
</html>`, title, title, message)
}
