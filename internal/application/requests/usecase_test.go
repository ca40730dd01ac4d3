package requests_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/application/requests"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
	"github.com/tu-usuario/almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity = quantity
	return nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

type fakeRequestRepo struct {
	requests map[string]*entity.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.Request)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *entity.Request) error {
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *entity.Request) error {
	if _, ok := r.requests[req.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, id string, status entity.RequestStatus) error {
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRequestRepo) MarkPickedUp(_ context.Context, id string) (bool, error) {
	req, ok := r.requests[id]
	if !ok {
		return false, nil
	}
	if req.Status == entity.RequestStatusPickedUp {
		return false, nil
	}
	req.Status = entity.RequestStatusPickedUp
	req.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeRequestRepo) List(_ context.Context, _, _ int) ([]*entity.Request, error) {
	out := make([]*entity.Request, 0, len(r.requests))
	for _, req := range r.requests {
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRequestRepo) CountByStatus(_ context.Context) (map[entity.RequestStatus]int64, error) {
	out := make(map[entity.RequestStatus]int64)
	for _, req := range r.requests {
		out[req.Status]++
	}
	return out, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id string) error {
	delete(r.requests, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner ejecuta el callback directamente sobre los mismos repos en
// memoria y cuenta cuántas transacciones se abrieron. El mutex serializa las
// transacciones, igual que los locks de fila en la BD real.
type fakeTxRunner struct {
	productRepo *fakeProductRepo
	requestRepo *fakeRequestRepo
	mu          sync.Mutex
	runs        int
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.runs++
	return fn(tx.productRepo, tx.requestRepo)
}

// barreraRequestRepo retiene cada lectura GetByID hasta que todos los lectores
// esperados llegaron, forzando que ambos retiros concurrentes vean el estado
// previo a la transición antes de que corra cualquier transacción.
type barreraRequestRepo struct {
	*fakeRequestRepo
	lectores *sync.WaitGroup
}

func (r *barreraRequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	req, err := r.fakeRequestRepo.GetByID(ctx, id)
	r.lectores.Done()
	r.lectores.Wait()
	return req, err
}

// fakeAlertMailer captura las alertas de stock bajo enviadas.
type fakeAlertMailer struct {
	sent []sentAlert
}

type sentAlert struct {
	to      string
	subject string
	html    string
	text    string
}

func (m *fakeAlertMailer) Send(_ context.Context, to, subject, html, text string) error {
	m.sent = append(m.sent, sentAlert{to: to, subject: subject, html: html, text: text})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testUserID    = "22222222-2222-2222-2222-222222222222"
)

type requestFixture struct {
	uc       *requests.RequestUseCase
	products *fakeProductRepo
	reqs     *fakeRequestRepo
	tx       *fakeTxRunner
	mailer   *fakeAlertMailer
}

func newRequestFixture(t *testing.T, stock int) *requestFixture {
	t.Helper()
	products := newFakeProductRepo(&entity.Product{
		ID:         testProductID,
		SKU:        "TALADRO-01",
		Name:       "Taladro percutor",
		Quantity:   stock,
		AlertLevel: 1,
	})
	reqs := newFakeRequestRepo()
	users := newFakeUserRepo(&entity.User{
		ID:     testUserID,
		Email:  "empleado@almacen.cl",
		Role:   entity.RoleEmpleado,
		Status: "active",
	})
	tx := &fakeTxRunner{productRepo: products, requestRepo: reqs}
	mailer := &fakeAlertMailer{}
	uc := requests.NewRequestUseCase(tx, reqs, products, users, mailer, "bodega@almacen.cl", logger.Nop())
	return &requestFixture{uc: uc, products: products, reqs: reqs, tx: tx, mailer: mailer}
}

func (f *requestFixture) create(t *testing.T, quantity int) *dto.RequestResponse {
	t.Helper()
	resp, err := f.uc.Create(context.Background(), testUserID, dto.CreateRequestInput{
		ProductID: testProductID,
		Quantity:  quantity,
		Reason:    "mantenimiento",
	})
	require.NoError(t, err)
	return resp
}

func (f *requestFixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), testProductID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida completo: crear → aprobar → retirar
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloCompleto_RetiroDescuentaStock(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 3)
	assert.Equal(t, string(entity.RequestStatusPending), created.Status)

	approved, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequestStatusApproved), approved.Status)
	assert.Equal(t, 5, f.stock(t), "aprobar no debe tocar el stock")

	picked, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequestStatusPickedUp), picked.Status)
	assert.Equal(t, 2, f.stock(t), "el retiro descuenta exactamente la cantidad solicitada")
	assert.Equal(t, 1, f.tx.runs, "el descuento debe ocurrir dentro de una transacción")
}

func TestRetiroRepetido_NoVuelveADescontar(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 3)
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t))

	// Repetir el mismo estado destino: idempotente respecto del stock
	_, err = f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t), "repetir PICKEDUP no descuenta de nuevo")
	assert.Equal(t, 1, f.tx.runs)
}

func TestRetirosConcurrentes_DescuentanUnaSolaVez(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID:         testProductID,
		SKU:        "TALADRO-01",
		Name:       "Taladro percutor",
		Quantity:   10,
		AlertLevel: 1,
	})
	reqs := newFakeRequestRepo()
	users := newFakeUserRepo(&entity.User{
		ID:     testUserID,
		Email:  "empleado@almacen.cl",
		Role:   entity.RoleEmpleado,
		Status: "active",
	})
	tx := &fakeTxRunner{productRepo: products, requestRepo: reqs}

	// Ambos retiros leen la solicitud aún sin retirar antes de que corra
	// ninguna de las dos transacciones
	var lectores sync.WaitGroup
	lectores.Add(2)
	gated := &barreraRequestRepo{fakeRequestRepo: reqs, lectores: &lectores}

	uc := requests.NewRequestUseCase(tx, gated, products, users, &fakeAlertMailer{}, "bodega@almacen.cl", logger.Nop())

	created, err := uc.Create(context.Background(), testUserID, dto.CreateRequestInput{
		ProductID: testProductID,
		Quantity:  3,
		Reason:    "mantenimiento",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.UpdateStatus(context.Background(), entity.RoleBodeguero, created.ID, "PICKEDUP")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := products.GetByID(context.Background(), testProductID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Quantity, "el retiro se aplica una sola vez por solicitud")
	assert.Equal(t, 2, tx.runs, "ambos llegan a la transacción, solo uno descuenta")
}

func TestRetiro_DescuentoConPisoEnCero(t *testing.T) {
	f := newRequestFixture(t, 2)
	ctx := context.Background()

	created := f.create(t, 10) // se crea con warning, no bloquea
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t), "el stock nunca queda negativo")
}

func TestRetiro_AlertaDeStockBajo(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	// 5 - 4 = 1, queda en el umbral de alerta del producto
	created := f.create(t, 4)
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	alert := f.mailer.sent[0]
	assert.Equal(t, "bodega@almacen.cl", alert.to)
	assert.Contains(t, alert.subject, "Taladro percutor")
	assert.Contains(t, alert.html, "Stock actual:</strong> 1")
}

func TestRetiro_SinAlertaSobreElUmbral(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 3) // 5 - 3 = 2, por encima del umbral
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)

	assert.Empty(t, f.mailer.sent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardias de aprobación
// ──────────────────────────────────────────────────────────────────────────────

func TestAprobar_StockInsuficiente_MantieneEstado(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	// Escenario: el stock ya fue consumido por una primera solicitud
	first := f.create(t, 3)
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, first.ID, "APPROVED")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, entity.RoleBodeguero, first.ID, "PICKEDUP")
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t))

	second := f.create(t, 10)
	_, err = f.uc.UpdateStatus(ctx, entity.RoleBodeguero, second.ID, "APPROVED")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La solicitud sigue PENDING tras el rechazo de la transición
	got, err := f.reqs.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusPending, got.Status)
	assert.Equal(t, 2, f.stock(t), "un intento fallido de aprobación no toca el stock")
}

func TestUpdateStatus_EstadoInvalido(t *testing.T) {
	f := newRequestFixture(t, 5)
	created := f.create(t, 1)

	_, err := f.uc.UpdateStatus(context.Background(), entity.RoleBodeguero, created.ID, "ENTREGADO")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateStatus_RolSinPermisos(t *testing.T) {
	f := newRequestFixture(t, 5)
	created := f.create(t, 1)

	_, err := f.uc.UpdateStatus(context.Background(), entity.RoleEmpleado, created.ID, "APPROVED")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición y borrado según estado
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_SoloPendiente(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 2)
	newQty := 4
	updated, err := f.uc.Update(ctx, entity.RoleBodeguero, created.ID, dto.UpdateRequestInput{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "APPROVED")
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, entity.RoleBodeguero, created.ID, dto.UpdateRequestInput{Quantity: &newQty})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestDelete_BloqueadoTrasRetiro(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 2)
	_, err := f.uc.UpdateStatus(ctx, entity.RoleBodeguero, created.ID, "PICKEDUP")
	require.NoError(t, err)

	err = f.uc.Delete(ctx, entity.RoleAdmin, created.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestDelete_PendientePermitido_SoloAdmin(t *testing.T) {
	f := newRequestFixture(t, 5)
	ctx := context.Background()

	created := f.create(t, 2)

	err := f.uc.Delete(ctx, entity.RoleBodeguero, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.uc.Delete(ctx, entity.RoleAdmin, created.ID)
	require.NoError(t, err)

	_, err = f.uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_StockInsuficienteNoBloquea(t *testing.T) {
	f := newRequestFixture(t, 1)

	resp := f.create(t, 50)
	assert.Equal(t, string(entity.RequestStatusPending), resp.Status)
	assert.Equal(t, 1, f.stock(t))
}

func TestCreate_EntradaInvalida(t *testing.T) {
	f := newRequestFixture(t, 5)

	_, err := f.uc.Create(context.Background(), testUserID, dto.CreateRequestInput{
		ProductID: testProductID,
		Quantity:  0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newRequestFixture(t, 5)

	_, err := f.uc.Create(context.Background(), testUserID, dto.CreateRequestInput{
		ProductID: "99999999-9999-9999-9999-999999999999",
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats_AgrupaPorEstado(t *testing.T) {
	f := newRequestFixture(t, 100)
	ctx := context.Background()

	a := f.create(t, 1)
	b := f.create(t, 2)
	f.create(t, 3)

	_, err := f.uc.UpdateStatus(ctx, entity.RoleAdmin, a.ID, "APPROVED")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, entity.RoleAdmin, b.ID, "REJECTED")
	require.NoError(t, err)

	stats, err := f.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["PENDING"])
	assert.Equal(t, int64(1), stats.ByStatus["APPROVED"])
	assert.Equal(t, int64(1), stats.ByStatus["REJECTED"])
}
