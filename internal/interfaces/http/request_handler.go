package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/application/requests"
)

// RequestHandler maneja las peticiones HTTP para solicitudes internas de stock (protegido).
type RequestHandler struct {
	uc *requests.RequestUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *requests.RequestUseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de retiro de stock
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestInput  true  "Datos de la solicitud"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" || in.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y quantity > 0 son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.RequestListResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Totales de solicitudes por estado
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RequestStatsResponse
// @Router       /api/requests/stats [get]
func (h *RequestHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Transicionar estado de una solicitud
// @Description  El primer paso a PICKEDUP descuenta el stock del producto en la misma transacción.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.UpdateRequestStatusInput  true  "Estado destino"
// @Success      200   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/status [put]
func (h *RequestHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateRequestStatusInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status es requerido"})
	}
	out, err := h.uc.UpdateStatus(c.Context(), GetRole(c), id, in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar quantity/reason de una solicitud PENDING
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.UpdateRequestInput  true  "Datos a actualizar"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateRequestInput
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
// @Summary      Eliminar solicitud no procesada
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Delete(c.Context(), GetRole(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "solicitud eliminada"})
}
