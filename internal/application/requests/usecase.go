package requests

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
	"github.com/tu-usuario/almacen-api/pkg/logger"
)

// RequestUseCase máquina de estados de solicitudes internas de stock.
//
// Reglas del ciclo de vida:
//   - crear: cantidad positiva, producto y usuario existentes; stock
//     insuficiente solo genera un warning, no bloquea.
//   - APPROVED: rechaza con ErrInsufficientStock si el stock ya no alcanza.
//   - primer PICKEDUP: descuenta stock (clamp en 0) en la misma transacción
//     que el cambio de estado; repetir PICKEDUP no vuelve a descontar.
//   - editar: solo mientras PENDING; borrar: solo PENDING o APPROVED.
type RequestUseCase struct {
	txRunner    TxRunner
	requestRepo repository.RequestRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	mailer      Mailer // opcional; nil desactiva las alertas de stock bajo
	alertTo     string
	log         *logger.Logger
}

// NewRequestUseCase construye el caso de uso. mailer y alertTo son opcionales;
// con mailer nil o alertTo vacío no se envían alertas de stock bajo.
func NewRequestUseCase(
	txRunner TxRunner,
	requestRepo repository.RequestRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
	alertTo string,
	log *logger.Logger,
) *RequestUseCase {
	return &RequestUseCase{
		txRunner:    txRunner,
		requestRepo: requestRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		alertTo:     alertTo,
		log:         log,
	}
}

// Create registra una solicitud en PENDING a nombre de userID.
func (uc *RequestUseCase) Create(ctx context.Context, userID string, in dto.CreateRequestInput) (*dto.RequestResponse, error) {
	if in.Quantity <= 0 || in.ProductID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	// Stock insuficiente al crear no bloquea: la verificación dura ocurre al aprobar.
	if product.Quantity < in.Quantity {
		uc.log.Warn().
			Str("product_id", product.ID).
			Str("product", product.Name).
			Int("solicitado", in.Quantity).
			Int("disponible", product.Quantity).
			Msg("solicitud creada con stock insuficiente")
	}

	now := time.Now()
	request := &entity.Request{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		UserID:    userID,
		Quantity:  in.Quantity,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    entity.RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	return toRequestResponse(request), nil
}

// UpdateStatus aplica una transición de estado. Cualquier estado destino del
// enum es aceptado si el rol lo permite; APPROVED y PICKEDUP llevan además
// las guardias de stock descritas arriba.
func (uc *RequestUseCase) UpdateStatus(ctx context.Context, actorRole, id, status string) (*dto.RequestResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	target := entity.RequestStatus(status)
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}

	// Aprobar exige que el stock alcance en este momento
	if target == entity.RequestStatusApproved {
		product, err := uc.productRepo.GetByID(ctx, request.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.Quantity < request.Quantity {
			return nil, domain.ErrInsufficientStock
		}
	}

	// Primer retiro: descuento de stock y cambio de estado en una sola
	// transacción. La transición es un UPDATE condicional dentro de la tx, así
	// dos retiros concurrentes de la misma solicitud leyendo ambos el estado
	// previo se serializan sobre la fila y solo el que gana descuenta. La fila
	// del producto se bloquea (SELECT FOR UPDATE) para que retiros concurrentes
	// sobre el mismo producto no pierdan una actualización.
	if target == entity.RequestStatusPickedUp && request.Status != entity.RequestStatusPickedUp {
		var after *entity.Product
		err := uc.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			requestRepo repository.RequestRepository,
		) error {
			won, err := requestRepo.MarkPickedUp(ctx, request.ID)
			if err != nil {
				return err
			}
			if !won {
				// Otro retiro ganó la transición: no volver a descontar
				return nil
			}
			product, err := productRepo.GetForUpdate(ctx, request.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			newQuantity := product.Quantity - request.Quantity
			if newQuantity < 0 {
				newQuantity = 0 // descuento con piso en cero, nunca negativo
			}
			if err := productRepo.UpdateQuantity(ctx, product.ID, newQuantity); err != nil {
				return err
			}
			uc.log.Info().
				Str("request_id", request.ID).
				Str("product_id", product.ID).
				Int("antes", product.Quantity).
				Int("despues", newQuantity).
				Msg("stock descontado por retiro")
			product.Quantity = newQuantity
			after = product
			return nil
		})
		if err != nil {
			return nil, err
		}
		if after != nil && after.LowStock() {
			uc.alertLowStock(ctx, after)
		}
	} else {
		if err := uc.requestRepo.UpdateStatus(ctx, id, target); err != nil {
			return nil, err
		}
	}

	request.Status = target
	request.UpdatedAt = time.Now()
	return toRequestResponse(request), nil
}

const alertTimeout = 15 * time.Second

// alertLowStock avisa por correo que el producto quedó en o bajo su umbral
// tras el retiro. Cualquier fallo queda solo en el log.
func (uc *RequestUseCase) alertLowStock(ctx context.Context, product *entity.Product) {
	if uc.mailer == nil || uc.alertTo == "" {
		return
	}
	subject, html, text := buildLowStockAlert(product.Name, product.Quantity, product.AlertLevel)

	sendCtx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()
	if err := uc.mailer.Send(sendCtx, uc.alertTo, subject, html, text); err != nil {
		uc.log.Warn().Err(err).
			Str("product_id", product.ID).
			Str("to", uc.alertTo).
			Msg("no se pudo enviar la alerta de stock bajo")
		return
	}
	uc.log.Info().Str("product_id", product.ID).Int("stock", product.Quantity).Msg("alerta de stock bajo enviada")
}

// Update edita quantity y/o reason. Solo válido mientras la solicitud está PENDING.
func (uc *RequestUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateRequestInput) (*dto.RequestResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	if !request.Editable() {
		return nil, domain.ErrNotEditable
	}
	if in.Quantity == nil && in.Reason == nil {
		return nil, domain.ErrInvalidInput
	}

	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		request.Quantity = *in.Quantity
	}
	if in.Reason != nil {
		request.Reason = strings.TrimSpace(*in.Reason)
	}
	request.UpdatedAt = time.Now()

	if err := uc.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return toRequestResponse(request), nil
}

// Delete elimina una solicitud aún no procesada. PREPARED y PICKEDUP son
// registros históricos y no se borran.
func (uc *RequestUseCase) Delete(ctx context.Context, actorRole, id string) error {
	if actorRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return domain.ErrNotFound
	}
	if !request.Deletable() {
		return domain.ErrAlreadyProcessed
	}
	return uc.requestRepo.Delete(ctx, id)
}

// GetByID devuelve una solicitud por ID.
func (uc *RequestUseCase) GetByID(ctx context.Context, id string) (*dto.RequestResponse, error) {
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	return toRequestResponse(request), nil
}

// List lista solicitudes con paginación.
func (uc *RequestUseCase) List(ctx context.Context, limit, offset int) (*dto.RequestListResponse, error) {
	list, err := uc.requestRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRequestResponse(r))
	}
	return &dto.RequestListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Stats devuelve totales de solicitudes agrupados por estado.
func (uc *RequestUseCase) Stats(ctx context.Context) (*dto.RequestStatsResponse, error) {
	counts, err := uc.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.RequestStatsResponse{ByStatus: make(map[string]int64, len(counts))}
	for status, n := range counts {
		out.ByStatus[string(status)] = n
		out.Total += n
	}
	return out, nil
}

func toRequestResponse(r *entity.Request) *dto.RequestResponse {
	return &dto.RequestResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Quantity:  r.Quantity,
		Reason:    r.Reason,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
