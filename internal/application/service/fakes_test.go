package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/domain/entity"
	"github.com/sangkips/tablebill-api/internal/domain/enum"
	"github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/pkg/logger"
	"github.com/sangkips/tablebill-api/pkg/notify"
	"github.com/sangkips/tablebill-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type txMarker struct{}

// memStore is an in-memory database. A transaction holds mu for its whole
// duration and restores a snapshot when the callback fails, so tests see
// the same all-or-nothing behaviour as postgres.
type memStore struct {
	mu sync.Mutex

	orders   map[uuid.UUID]entity.Order
	items    map[uuid.UUID]entity.OrderItem
	invoices map[uuid.UUID]entity.Invoice
	shifts   map[uuid.UUID]entity.Shift
	payments map[uuid.UUID]entity.Payment
	voids    map[uuid.UUID]entity.VoidRequest
	dishes   map[uuid.UUID]entity.Dish
	staff    map[string]entity.Staff
	settings map[string]string
	audits   []entity.AuditLog

	// settingsErr fails every settings read
	settingsErr error
	// settingsReads records, per read, whether it ran inside a transaction
	settingsReads []bool

	clock time.Time
	// conflicts makes the next n commits fail with ErrConflict
	conflicts int
	txCount   int
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[uuid.UUID]entity.Order{},
		items:    map[uuid.UUID]entity.OrderItem{},
		invoices: map[uuid.UUID]entity.Invoice{},
		shifts:   map[uuid.UUID]entity.Shift{},
		payments: map[uuid.UUID]entity.Payment{},
		voids:    map[uuid.UUID]entity.VoidRequest{},
		dishes:   map[uuid.UUID]entity.Dish{},
		staff:    map[string]entity.Staff{},
		settings: map[string]string{},
		clock:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

// guard locks the store for calls made outside a transaction
func (m *memStore) guard(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// tick hands out strictly increasing creation times
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type snapshot struct {
	orders   map[uuid.UUID]entity.Order
	items    map[uuid.UUID]entity.OrderItem
	invoices map[uuid.UUID]entity.Invoice
	shifts   map[uuid.UUID]entity.Shift
	payments map[uuid.UUID]entity.Payment
	voids    map[uuid.UUID]entity.VoidRequest
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memStore) snapshot() snapshot {
	return snapshot{
		orders:   cloneMap(m.orders),
		items:    cloneMap(m.items),
		invoices: cloneMap(m.invoices),
		shifts:   cloneMap(m.shifts),
		payments: cloneMap(m.payments),
		voids:    cloneMap(m.voids),
	}
}

func (m *memStore) restore(s snapshot) {
	m.orders, m.items, m.invoices = s.orders, s.items, s.invoices
	m.shifts, m.payments, m.voids = s.shifts, s.payments, s.voids
}

// WithinTransaction implements repository.Transactor
func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	snap := m.snapshot()
	err := fn(context.WithValue(ctx, txMarker{}, true))
	if err == nil && m.conflicts > 0 {
		m.conflicts--
		err = repository.ErrConflict
	}
	if err != nil {
		m.restore(snap)
	}
	return err
}

func (m *memStore) stores() Stores {
	return Stores{
		Tx:       m,
		Orders:   fakeOrders{m},
		Items:    fakeItems{m},
		Invoices: fakeInvoices{m},
		Shifts:   fakeShifts{m},
		Payments: fakePayments{m},
		Voids:    fakeVoids{m},
		Dishes:   fakeDishes{m},
		Staff:    fakeStaff{m},
		Settings: fakeSettings{m},
		Audit:    fakeAudit{m},
	}
}

type fakeOrders struct{ m *memStore }

func (f fakeOrders) Create(ctx context.Context, o *entity.Order) error {
	defer f.m.guard(ctx)()
	if o.Status == enum.OrderStatusOpen {
		for _, other := range f.m.orders {
			if other.Status == enum.OrderStatusOpen && other.TableRef == o.TableRef {
				return repository.ErrDuplicate
			}
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = f.m.tick()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	f.m.orders[o.ID] = stored
	return nil
}

func (f fakeOrders) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	defer f.m.guard(ctx)()
	o, ok := f.m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (f fakeOrders) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return f.GetByID(ctx, id)
}

func (f fakeOrders) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	defer f.m.guard(ctx)()
	var out []entity.Order
	for _, id := range ids {
		if o, ok := f.m.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f fakeOrders) GetOpenByTable(ctx context.Context, tableRef string) (*entity.Order, error) {
	defer f.m.guard(ctx)()
	for _, o := range f.m.orders {
		if o.TableRef == tableRef && o.Status == enum.OrderStatusOpen {
			return &o, nil
		}
	}
	return nil, nil
}

func (f fakeOrders) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	o, err := f.GetByID(ctx, id)
	if o == nil || err != nil {
		return o, err
	}
	o.Items, err = fakeItems(f).ListByOrder(ctx, id)
	return o, err
}

func (f fakeOrders) ListOpen(ctx context.Context) ([]entity.Order, error) {
	unlock := f.m.guard(ctx)
	var ids []uuid.UUID
	for id, o := range f.m.orders {
		if o.Status == enum.OrderStatusOpen {
			ids = append(ids, id)
		}
	}
	unlock()

	var out []entity.Order
	for _, id := range ids {
		o, err := f.GetWithItems(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableRef < out[j].TableRef })
	return out, nil
}

func (f fakeOrders) Update(ctx context.Context, o *entity.Order) error {
	defer f.m.guard(ctx)()
	stored := *o
	stored.Items = nil
	f.m.orders[o.ID] = stored
	return nil
}

func (f fakeOrders) Delete(ctx context.Context, id uuid.UUID) error {
	defer f.m.guard(ctx)()
	delete(f.m.orders, id)
	return nil
}

type fakeItems struct{ m *memStore }

func (f fakeItems) Create(ctx context.Context, it *entity.OrderItem) error {
	defer f.m.guard(ctx)()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.CreatedAt = f.m.tick()
	it.UpdatedAt = it.CreatedAt
	f.m.items[it.ID] = *it
	return nil
}

func (f fakeItems) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	defer f.m.guard(ctx)()
	it, ok := f.m.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (f fakeItems) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	return f.GetByID(ctx, id)
}

func (f fakeItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	defer f.m.guard(ctx)()
	var out []entity.OrderItem
	for _, it := range f.m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeItems) Update(ctx context.Context, it *entity.OrderItem) error {
	defer f.m.guard(ctx)()
	f.m.items[it.ID] = *it
	return nil
}

func (f fakeItems) MoveItems(ctx context.Context, ids []uuid.UUID, to uuid.UUID) (int64, error) {
	defer f.m.guard(ctx)()
	var n int64
	for _, id := range ids {
		if it, ok := f.m.items[id]; ok {
			it.OrderID = to
			f.m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (f fakeItems) MoveAll(ctx context.Context, from, to uuid.UUID) (int64, error) {
	defer f.m.guard(ctx)()
	var n int64
	for id, it := range f.m.items {
		if it.OrderID == from {
			it.OrderID = to
			f.m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (f fakeItems) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	items, err := f.ListByOrder(ctx, orderID)
	return int64(len(items)), err
}

type fakeInvoices struct{ m *memStore }

func (f fakeInvoices) Create(ctx context.Context, inv *entity.Invoice) error {
	defer f.m.guard(ctx)()
	for _, other := range f.m.invoices {
		if other.OrderID == inv.OrderID || other.InvoiceNo == inv.InvoiceNo {
			return repository.ErrDuplicate
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = f.m.tick()
	inv.UpdatedAt = inv.CreatedAt
	stored := *inv
	stored.Order = nil
	f.m.invoices[inv.ID] = stored
	return nil
}

func (f fakeInvoices) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	defer f.m.guard(ctx)()
	inv, ok := f.m.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (f fakeInvoices) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return f.GetByID(ctx, id)
}

func (f fakeInvoices) GetByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]entity.Invoice, error) {
	defer f.m.guard(ctx)()
	var out []entity.Invoice
	for _, id := range ids {
		if inv, ok := f.m.invoices[id]; ok {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f fakeInvoices) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	defer f.m.guard(ctx)()
	for _, inv := range f.m.invoices {
		if inv.OrderID == orderID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (f fakeInvoices) GetByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	return f.GetByOrderID(ctx, orderID)
}

func (f fakeInvoices) GetWithOrder(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := f.GetByID(ctx, id)
	if inv == nil || err != nil {
		return inv, err
	}
	inv.Order, err = fakeOrders(f).GetWithItems(ctx, inv.OrderID)
	return inv, err
}

func (f fakeInvoices) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	defer f.m.guard(ctx)()
	var out []entity.Invoice
	for _, inv := range f.m.invoices {
		if params.Status != nil && inv.Status != *params.Status {
			continue
		}
		if params.TableRef != "" && f.m.orders[inv.OrderID].TableRef != params.TableRef {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (f fakeInvoices) Update(ctx context.Context, inv *entity.Invoice) error {
	defer f.m.guard(ctx)()
	stored := *inv
	stored.Order = nil
	f.m.invoices[inv.ID] = stored
	return nil
}

func (f fakeInvoices) Delete(ctx context.Context, id uuid.UUID) error {
	defer f.m.guard(ctx)()
	delete(f.m.invoices, id)
	return nil
}

type fakeShifts struct{ m *memStore }

func (f fakeShifts) Create(ctx context.Context, s *entity.Shift) error {
	defer f.m.guard(ctx)()
	for _, other := range f.m.shifts {
		if other.Status == enum.ShiftStatusOpen && (other.CashierID == s.CashierID || other.TerminalID == s.TerminalID) {
			return repository.ErrDuplicate
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = f.m.tick()
	f.m.shifts[s.ID] = *s
	return nil
}

func (f fakeShifts) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	defer f.m.guard(ctx)()
	s, ok := f.m.shifts[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f fakeShifts) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	return f.GetByID(ctx, id)
}

func (f fakeShifts) GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	defer f.m.guard(ctx)()
	for _, s := range f.m.shifts {
		if s.CashierID == cashierID && s.IsOpen() {
			return &s, nil
		}
	}
	return nil, nil
}

func (f fakeShifts) GetOpenByTerminal(ctx context.Context, terminalID string) (*entity.Shift, error) {
	defer f.m.guard(ctx)()
	for _, s := range f.m.shifts {
		if s.TerminalID == terminalID && s.IsOpen() {
			return &s, nil
		}
	}
	return nil, nil
}

func (f fakeShifts) Update(ctx context.Context, s *entity.Shift) error {
	defer f.m.guard(ctx)()
	f.m.shifts[s.ID] = *s
	return nil
}

type fakePayments struct{ m *memStore }

func (f fakePayments) Create(ctx context.Context, p *entity.Payment) error {
	defer f.m.guard(ctx)()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = f.m.tick()
	f.m.payments[p.ID] = *p
	return nil
}

func (f fakePayments) GetByInvoice(ctx context.Context, invoiceID uuid.UUID) (*entity.Payment, error) {
	defer f.m.guard(ctx)()
	for _, p := range f.m.payments {
		if p.InvoiceID == invoiceID {
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakePayments) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]entity.Payment, error) {
	defer f.m.guard(ctx)()
	var out []entity.Payment
	for _, p := range f.m.payments {
		if p.ShiftID == shiftID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeVoids struct{ m *memStore }

func (f fakeVoids) Create(ctx context.Context, r *entity.VoidRequest) error {
	defer f.m.guard(ctx)()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = f.m.tick()
	stored := *r
	stored.OrderItem = nil
	f.m.voids[r.ID] = stored
	return nil
}

func (f fakeVoids) GetByID(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error) {
	defer f.m.guard(ctx)()
	r, ok := f.m.voids[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f fakeVoids) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VoidRequest, error) {
	return f.GetByID(ctx, id)
}

func (f fakeVoids) GetPendingByItem(ctx context.Context, itemID uuid.UUID) (*entity.VoidRequest, error) {
	defer f.m.guard(ctx)()
	for _, r := range f.m.voids {
		if r.OrderItemID == itemID && r.Status == enum.VoidStatusPending {
			return &r, nil
		}
	}
	return nil, nil
}

func (f fakeVoids) ListPending(ctx context.Context) ([]entity.VoidRequest, error) {
	defer f.m.guard(ctx)()
	var out []entity.VoidRequest
	for _, r := range f.m.voids {
		if r.Status == enum.VoidStatusPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeVoids) Update(ctx context.Context, r *entity.VoidRequest) error {
	defer f.m.guard(ctx)()
	stored := *r
	stored.OrderItem = nil
	f.m.voids[r.ID] = stored
	return nil
}

type fakeDishes struct{ m *memStore }

func (f fakeDishes) GetByID(ctx context.Context, id uuid.UUID) (*entity.Dish, error) {
	defer f.m.guard(ctx)()
	d, ok := f.m.dishes[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

type fakeStaff struct{ m *memStore }

func (f fakeStaff) GetByUsername(ctx context.Context, username string) (*entity.Staff, error) {
	defer f.m.guard(ctx)()
	s, ok := f.m.staff[username]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type fakeSettings struct{ m *memStore }

func (f fakeSettings) GetValue(ctx context.Context, key string) (string, bool, error) {
	defer f.m.guard(ctx)()
	f.m.settingsReads = append(f.m.settingsReads, ctx.Value(txMarker{}) != nil)
	if f.m.settingsErr != nil {
		return "", false, f.m.settingsErr
	}
	v, ok := f.m.settings[key]
	return v, ok, nil
}

type fakeAudit struct{ m *memStore }

func (f fakeAudit) Create(ctx context.Context, e *entity.AuditLog) error {
	defer f.m.guard(ctx)()
	f.m.audits = append(f.m.audits, *e)
	return nil
}

// recordingPublisher captures published notifications
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

type published struct {
	recipient string
	event     notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, recipient string, ev notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{recipient, ev})
}

func (p *recordingPublisher) ofType(t string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.event.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires every billing service over one memStore
type testEnv struct {
	t        *testing.T
	store    *memStore
	pub      *recordingPublisher
	billing  *Billing
	orders   *OrderService
	invoices *InvoiceService
	voids    *VoidService
	shifts   *ShiftService
	waiter   Caller
	cashier  Caller
	manager  Caller
}

func newTestEnv(t *testing.T, opts ...func(*config.BillingConfig)) *testEnv {
	t.Helper()
	cfg := config.BillingConfig{
		VATRate:    decimal.NewFromInt(10),
		MaxRetries: 3,
	}
	for _, o := range opts {
		o(&cfg)
	}

	store := newMemStore()
	pub := &recordingPublisher{}
	b := NewBilling(store.stores(), cfg, pub, logger.Discard())

	return &testEnv{
		t:        t,
		store:    store,
		pub:      pub,
		billing:  b,
		orders:   NewOrderService(b),
		invoices: NewInvoiceService(b),
		voids:    NewVoidService(b),
		shifts:   NewShiftService(b),
		waiter:   NewCaller(uuid.New(), "floor-1", []string{"waiter"}, []string{ActionManageOrders, ActionRequestVoid}),
		cashier:  NewCaller(uuid.New(), "till-1", []string{"cashier"}, []string{ActionManageInvoices, ActionCollectPayments, ActionManageShifts, ActionRequestVoid}),
		manager:  NewCaller(uuid.New(), "office", []string{RoleManager}, Actions),
	}
}

func withVAT(rate int64) func(*config.BillingConfig) {
	return func(c *config.BillingConfig) { c.VATRate = decimal.NewFromInt(rate) }
}

func (e *testEnv) dish(name string, price int64) uuid.UUID {
	id := uuid.New()
	e.store.dishes[id] = entity.Dish{ID: id, Name: name, Price: price, Available: true}
	return id
}

// seedManager stores a staff member holding approve-void with the given PIN
func (e *testEnv) seedManager(username, pin string, perms ...string) entity.Staff {
	e.t.Helper()
	hash, err := utils.HashSecret(pin)
	require.NoError(e.t, err)

	var permissions []entity.Permission
	for i, p := range perms {
		permissions = append(permissions, entity.Permission{ID: uint(i + 1), Name: p})
	}
	s := entity.Staff{
		ID:       uuid.New(),
		Name:     username,
		Username: username,
		PinHash:  hash,
		Active:   true,
		Roles:    []entity.Role{{ID: 1, Name: RoleManager, Permissions: permissions}},
	}
	e.store.staff[username] = s
	return s
}

// tab opens an order on table and adds one item per price
func (e *testEnv) tab(table string, prices ...int64) (*entity.Order, []*entity.OrderItem) {
	e.t.Helper()
	ctx := context.Background()
	order, _, err := e.orders.OpenOrder(ctx, e.waiter, &OpenOrderInput{TableRef: table})
	require.NoError(e.t, err)

	var items []*entity.OrderItem
	for i, p := range prices {
		it, err := e.orders.AddItem(ctx, order.ID, &AddItemInput{DishID: e.dish("dish", p), Quantity: 1})
		require.NoError(e.t, err, "item %d", i)
		items = append(items, it)
	}
	return order, items
}

// invoice opens a tab with the given prices and checks it out
func (e *testEnv) invoice(table string, prices ...int64) (*entity.Invoice, []*entity.OrderItem) {
	e.t.Helper()
	order, items := e.tab(table, prices...)
	inv, created, err := e.orders.Checkout(context.Background(), e.cashier, order.ID)
	require.NoError(e.t, err)
	require.True(e.t, created)
	return inv, items
}

func (e *testEnv) openShift(c Caller, float int64) *entity.Shift {
	e.t.Helper()
	s, err := e.shifts.OpenShift(context.Background(), c, &OpenShiftInput{OpeningFloat: float})
	require.NoError(e.t, err)
	return s
}

func (e *testEnv) storedInvoice(id uuid.UUID) (entity.Invoice, bool) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	inv, ok := e.store.invoices[id]
	return inv, ok
}

func (e *testEnv) storedItem(id uuid.UUID) entity.OrderItem {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.items[id]
}

// counts returns row counts of the tables merge and split touch
func (e *testEnv) counts() (orders, items, invoices int) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return len(e.store.orders), len(e.store.items), len(e.store.invoices)
}

// billableValue recomputes the item value behind an invoice from storage
func (e *testEnv) billableValue(inv entity.Invoice) int64 {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	var sum int64
	for _, it := range e.store.items {
		if it.OrderID == inv.OrderID && it.Billable() {
			sum += it.LineTotal()
		}
	}
	return sum
}
