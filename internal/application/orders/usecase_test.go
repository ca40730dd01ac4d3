package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/application/orders"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
	"github.com/tu-usuario/almacen-api/pkg/linktoken"
	"github.com/tu-usuario/almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders map[string]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*entity.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *entity.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

// MarkTokenUsed reproduce la semántica del UPDATE condicional: solo el primer
// caller sobre una orden con token_used=false gana.
func (r *fakeOrderRepo) MarkTokenUsed(_ context.Context, id string, status entity.OrderStatus) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.TokenUsed {
		return false, nil
	}
	o.TokenUsed = true
	o.Status = status
	o.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeOrderRepo) List(_ context.Context, _, _ int) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListCreatedSince(_ context.Context, since time.Time, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if o.CreatedAt.After(since) && len(out) < limit {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) DeleteItems(_ context.Context, orderID string) error {
	if o, ok := r.orders[orderID]; ok {
		o.Items = nil
	}
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id string) error {
	delete(r.orders, id)
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[string]*entity.Supplier
}

func newFakeSupplierRepo(suppliers ...*entity.Supplier) *fakeSupplierRepo {
	r := &fakeSupplierRepo{suppliers: make(map[string]*entity.Supplier)}
	for _, s := range suppliers {
		cp := *s
		r.suppliers[s.ID] = &cp
	}
	return r
}

func (r *fakeSupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *fakeSupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *fakeSupplierRepo) List(_ context.Context, _, _ int) ([]*entity.Supplier, error) {
	out := make([]*entity.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSupplierRepo) CountOrders(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id string) error {
	delete(r.suppliers, id)
	return nil
}

type fakeOrderProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeOrderProductRepo) Create(_ context.Context, _ *entity.Product) error { return nil }
func (r *fakeOrderProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeOrderProductRepo) GetBySKU(_ context.Context, _ string) (*entity.Product, error) {
	return nil, nil
}
func (r *fakeOrderProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
func (r *fakeOrderProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }
func (r *fakeOrderProductRepo) UpdateQuantity(_ context.Context, _ string, _ int) error {
	return nil
}
func (r *fakeOrderProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}
func (r *fakeOrderProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *fakeOrderProductRepo) Delete(_ context.Context, _ string) error { return nil }

type fakeOrderTxRunner struct {
	orderRepo *fakeOrderRepo
}

func (tx *fakeOrderTxRunner) RunOrders(ctx context.Context, fn func(repository.OrderRepository) error) error {
	return fn(tx.orderRepo)
}

// fakeMailer captura los envíos; con fail=true simula un SMTP caído.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	html    string
	text    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: htmlBody, text: textBody})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSupplierID = "33333333-3333-3333-3333-333333333333"
	testProductID  = "44444444-4444-4444-4444-444444444444"
	testBaseURL    = "http://localhost:4000"
	testTokenKey   = "order-link-secret-for-tests"
)

type orderFixture struct {
	uc     *orders.OrderUseCase
	orders *fakeOrderRepo
	mailer *fakeMailer
	tokens *orders.ConfirmTokenService
	signer *linktoken.Signer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	supplierRepo := newFakeSupplierRepo(&entity.Supplier{
		ID:    testSupplierID,
		Name:  "Ferretería El Tornillo",
		Email: "ventas@eltornillo.cl",
	})
	productRepo := &fakeOrderProductRepo{products: map[string]*entity.Product{
		testProductID: {ID: testProductID, SKU: "GUANTES-01", Name: "Guantes de seguridad"},
	}}
	signer, err := linktoken.New(testTokenKey, "almacen-api-test", 24*time.Hour)
	require.NoError(t, err)
	tokens := orders.NewConfirmTokenService(signer)
	mailer := &fakeMailer{}
	uc := orders.NewOrderUseCase(
		&fakeOrderTxRunner{orderRepo: orderRepo},
		orderRepo, supplierRepo, productRepo,
		tokens, mailer, testBaseURL, logger.Nop(),
	)
	return &orderFixture{uc: uc, orders: orderRepo, mailer: mailer, tokens: tokens, signer: signer}
}

func (f *orderFixture) createOrder(t *testing.T) *dto.OrderResponse {
	t.Helper()
	resp, err := f.uc.Create(context.Background(), entity.RoleBodeguero, dto.CreateOrderRequest{
		SupplierID: testSupplierID,
		Items:      []dto.OrderItemInput{{ProductID: testProductID, Quantity: 12}},
	})
	require.NoError(t, err)
	return resp
}

func (f *orderFixture) mintToken(t *testing.T, orderID string) string {
	t.Helper()
	tok, err := f.tokens.Mint(orderID)
	require.NoError(t, err)
	return tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y notificación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_NotificaAlProveedor(t *testing.T) {
	f := newOrderFixture(t)

	resp := f.createOrder(t)
	assert.Equal(t, string(entity.OrderStatusPending), resp.Status)
	assert.False(t, resp.TokenUsed)
	assert.Len(t, resp.Items, 1)

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, "ventas@eltornillo.cl", mail.to)
	assert.Contains(t, mail.html, "Guantes de seguridad")
	assert.Contains(t, mail.html, "/api/orders/"+resp.ID+"/confirm?token=")
	assert.Contains(t, mail.html, "/api/orders/"+resp.ID+"/reject?token=")
	assert.Contains(t, mail.text, resp.ID)
}

func TestCreate_FalloDeCorreoNoRevierteLaOrden(t *testing.T) {
	f := newOrderFixture(t)
	f.mailer.fail = true

	resp := f.createOrder(t)

	// La orden queda persistida en PENDING aunque el correo haya fallado
	stored, err := f.orders.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Create(context.Background(), entity.RoleBodeguero, dto.CreateOrderRequest{
		SupplierID: testSupplierID,
		Items:      []dto.OrderItemInput{{ProductID: "55555555-5555-5555-5555-555555555555", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_RolSinPermisos(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Create(context.Background(), entity.RoleEmpleado, dto.CreateOrderRequest{
		SupplierID: testSupplierID,
		Items:      []dto.OrderItemInput{{ProductID: testProductID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución vía link: confirmación, rechazo y un solo uso
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirm_ApruebaYConsumeElToken(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp := f.createOrder(t)
	token := f.mintToken(t, resp.ID)

	require.NoError(t, f.uc.Confirm(ctx, resp.ID, token))

	stored, err := f.orders.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, stored.Status)
	assert.True(t, stored.TokenUsed)
}

func TestReject_RechazaYConsumeElToken(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp := f.createOrder(t)
	token := f.mintToken(t, resp.ID)

	require.NoError(t, f.uc.Reject(ctx, resp.ID, token))

	stored, err := f.orders.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRejected, stored.Status)
}

func TestResolve_SoloUnLinkGana(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp := f.createOrder(t)
	token := f.mintToken(t, resp.ID)

	require.NoError(t, f.uc.Confirm(ctx, resp.ID, token))

	// El mismo token por el link contrario: pierde y el estado no cambia
	err := f.uc.Reject(ctx, resp.ID, token)
	assert.ErrorIs(t, err, domain.ErrTokenUsed)

	stored, err := f.orders.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, stored.Status)
}

func TestResolve_TokenDeOtraOrden(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	a := f.createOrder(t)
	b := f.createOrder(t)
	tokenA := f.mintToken(t, a.ID)

	// Firma válida pero ligada a otra orden: mismatch y la orden queda intacta
	err := f.uc.Confirm(ctx, b.ID, tokenA)
	assert.ErrorIs(t, err, domain.ErrTokenMismatch)

	stored, err := f.orders.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	assert.False(t, stored.TokenUsed)
}

func TestResolve_TokenExpirado(t *testing.T) {
	f := newOrderFixture(t)

	resp := f.createOrder(t)

	expiredSigner, err := linktoken.New(testTokenKey, "almacen-api-test", -time.Minute)
	require.NoError(t, err)
	token, err := expiredSigner.Sign(resp.ID)
	require.NoError(t, err)

	err = f.uc.Confirm(context.Background(), resp.ID, token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestResolve_TokenConOtroSecreto(t *testing.T) {
	f := newOrderFixture(t)

	resp := f.createOrder(t)

	otherSigner, err := linktoken.New("otro-secreto", "almacen-api-test", time.Hour)
	require.NoError(t, err)
	token, err := otherSigner.Sign(resp.ID)
	require.NoError(t, err)

	err = f.uc.Confirm(context.Background(), resp.ID, token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestResolve_TokenVacio(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t)

	err := f.uc.Confirm(context.Background(), resp.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualización y borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_EstadoInvalido(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t)

	bad := "ENTREGADO"
	_, err := f.uc.Update(context.Background(), entity.RoleAdmin, resp.ID, dto.UpdateOrderRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDelete_EnCascada(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp := f.createOrder(t)
	require.NoError(t, f.uc.Delete(ctx, entity.RoleAdmin, resp.ID))

	stored, err := f.orders.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDelete_BloqueadoParaOrdenesProcesadas(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp := f.createOrder(t)
	prepared := string(entity.OrderStatusPrepared)
	_, err := f.uc.Update(ctx, entity.RoleAdmin, resp.ID, dto.UpdateOrderRequest{Status: &prepared})
	require.NoError(t, err)

	err = f.uc.Delete(ctx, entity.RoleAdmin, resp.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}
