package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
	"github.com/tu-usuario/almacen-api/pkg/logger"
)

// notifyTimeout tope para el envío del correo de notificación; un SMTP caído
// no debe colgar la creación de la orden.
const notifyTimeout = 15 * time.Second

// OrderUseCase máquina de estados de órdenes de compra a proveedores.
//
// Al crear una orden se acuña un token ligado a ella y se notifica al
// proveedor con links de confirmación/rechazo. Exactamente uno de los dos
// links puede ganar: la actualización condicional sobre token_used decide al
// ganador y el perdedor observa ErrTokenUsed.
type OrderUseCase struct {
	txRunner     TxRunner
	orderRepo    repository.OrderRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	tokens       *ConfirmTokenService
	mailer       Mailer
	baseURL      string
	log          *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	tokens *ConfirmTokenService,
	mailer Mailer,
	baseURL string,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		tokens:       tokens,
		mailer:       mailer,
		baseURL:      baseURL,
		log:          log,
	}
}

// Create valida proveedor e items, persiste la orden con sus líneas en una
// transacción y dispara la notificación al proveedor. El fallo del correo se
// registra pero nunca revierte la orden ya creada.
func (uc *OrderUseCase) Create(ctx context.Context, actorRole string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}

	// Todos los productos referenciados deben existir
	productIDs := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	for _, id := range productIDs {
		if productByID[id] == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Status:     entity.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := uc.txRunner.RunOrders(ctx, func(orderRepo repository.OrderRepository) error {
		return orderRepo.Create(ctx, order)
	}); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("supplier", supplier.Name).
		Int("items", len(order.Items)).
		Msg("orden de compra creada")

	uc.notifySupplier(ctx, order, supplier, productByID)

	return toOrderResponse(order), nil
}

// notifySupplier acuña el token ligado a la orden y envía el correo con los
// links de confirmación/rechazo. Cualquier fallo queda solo en el log.
func (uc *OrderUseCase) notifySupplier(ctx context.Context, order *entity.Order, supplier *entity.Supplier, productByID map[string]*entity.Product) {
	if supplier.Email == "" {
		return
	}
	token, err := uc.tokens.Mint(order.ID)
	if err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Msg("no se pudo acuñar el token de confirmación")
		return
	}

	lines := make([]notificationLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductID
		if p := productByID[item.ProductID]; p != nil {
			name = p.Name
		}
		lines = append(lines, notificationLine{ProductName: name, Quantity: item.Quantity})
	}

	subject, html, text := buildNotification(notificationInput{
		OrderID:      order.ID,
		SupplierName: supplier.Name,
		Lines:        lines,
		ConfirmURL:   fmt.Sprintf("%s/api/orders/%s/confirm?token=%s", uc.baseURL, order.ID, token),
		RejectURL:    fmt.Sprintf("%s/api/orders/%s/reject?token=%s", uc.baseURL, order.ID, token),
	})

	sendCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := uc.mailer.Send(sendCtx, supplier.Email, subject, html, text); err != nil {
		uc.log.Warn().Err(err).
			Str("order_id", order.ID).
			Str("to", supplier.Email).
			Msg("no se pudo notificar al proveedor; la orden queda creada")
		return
	}
	uc.log.Info().Str("order_id", order.ID).Str("to", supplier.Email).Msg("notificación enviada al proveedor")
}

// Confirm resuelve el link de confirmación: la orden pasa a APPROVED.
func (uc *OrderUseCase) Confirm(ctx context.Context, orderID, token string) error {
	return uc.resolve(ctx, orderID, token, entity.OrderStatusApproved)
}

// Reject resuelve el link de rechazo: la orden pasa a REJECTED.
func (uc *OrderUseCase) Reject(ctx context.Context, orderID, token string) error {
	return uc.resolve(ctx, orderID, token, entity.OrderStatusRejected)
}

// resolve verifica el token y ejecuta el check-and-set sobre token_used.
// De dos llamadas concurrentes (confirmar y rechazar el mismo link) solo una
// gana la actualización condicional; la otra recibe ErrTokenUsed.
func (uc *OrderUseCase) resolve(ctx context.Context, orderID, token string, target entity.OrderStatus) error {
	if token == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.tokens.Verify(token, orderID); err != nil {
		return err
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.TokenUsed {
		return domain.ErrTokenUsed
	}

	won, err := uc.orderRepo.MarkTokenUsed(ctx, orderID, target)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrTokenUsed
	}

	uc.log.Info().
		Str("order_id", orderID).
		Str("status", string(target)).
		Msg("orden resuelta vía link de correo")
	return nil
}

// Update cambio administrativo de estado y/o proveedor.
func (uc *OrderUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if in.Status == nil && in.SupplierID == nil {
		return nil, domain.ErrInvalidInput
	}

	if in.Status != nil {
		status := entity.OrderStatus(*in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		order.Status = status
	}
	if in.SupplierID != nil {
		supplier, err := uc.supplierRepo.GetByID(ctx, *in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrNotFound
		}
		order.SupplierID = *in.SupplierID
	}

	order.UpdatedAt = time.Now()
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Delete borra la orden y sus items en cascada dentro de una transacción.
// Órdenes preparadas o retiradas son históricas y no se borran.
func (uc *OrderUseCase) Delete(ctx context.Context, actorRole, id string) error {
	if !entity.CanManageStock(actorRole) {
		return domain.ErrForbidden
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.Status == entity.OrderStatusPrepared || order.Status == entity.OrderStatusPickedUp {
		return domain.ErrAlreadyProcessed
	}

	return uc.txRunner.RunOrders(ctx, func(orderRepo repository.OrderRepository) error {
		if err := orderRepo.DeleteItems(ctx, id); err != nil {
			return err
		}
		return orderRepo.Delete(ctx, id)
	})
}

// GetByID devuelve una orden con sus items.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(order), nil
}

// List lista órdenes con paginación.
func (uc *OrderUseCase) List(ctx context.Context, limit, offset int) (*dto.OrderListResponse, error) {
	list, err := uc.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// RecentNotifications devuelve las órdenes creadas en las últimas 24 horas
// (campana de notificaciones del panel).
func (uc *OrderUseCase) RecentNotifications(ctx context.Context) (*dto.OrderListResponse, error) {
	since := time.Now().Add(-24 * time.Hour)
	list, err := uc.orderRepo.ListCreatedSince(ctx, since, 10)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items}, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     string(o.Status),
		TokenUsed:  o.TokenUsed,
		Items:      make([]dto.OrderItemResponse, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return out
}
