package orders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"kittisap.shop/app/internal/modules/catalog"
	"kittisap.shop/app/internal/modules/coupons"
	"kittisap.shop/app/internal/modules/customers"
	"kittisap.shop/app/internal/storage"
)

// memStore is the in-memory Store used by the service tests.
type memStore struct {
	mu     sync.Mutex
	orders map[string]*Order // by id
	items  map[string][]OrderItem
	slips  map[string]*PaymentSlip
	events []OrderEvent

	// rejectNext > 0 makes CreateOrder answer ErrOrderNumberTaken that many
	// times before accepting, regardless of the number offered.
	rejectNext int
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[string]*Order{},
		items:  map[string][]OrderItem{},
		slips:  map[string]*PaymentSlip{},
	}
}

func (m *memStore) CreateOrder(ctx context.Context, o *Order, items []OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.rejectNext > 0 {
		m.rejectNext--
		return ErrOrderNumberTaken
	}
	for _, ex := range m.orders {
		if ex.OrderNumber == o.OrderNumber {
			return ErrOrderNumberTaken
		}
	}
	cp := *o
	m.orders[o.ID] = &cp
	m.items[o.ID] = append([]OrderItem(nil), items...)
	return nil
}

func (m *memStore) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetByNumber(ctx context.Context, number string) (Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return *o, true, nil
		}
	}
	return Order{}, false, nil
}

func (m *memStore) ItemsByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OrderItem(nil), m.items[orderID]...), nil
}

func (m *memStore) AttachSlip(ctx context.Context, slip *PaymentSlip, fromStatus string, ev *OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[slip.OrderID]
	if !ok || o.Status != fromStatus {
		return ErrNotActionable
	}
	cp := *slip
	m.slips[slip.ID] = &cp
	o.Status = StatusPendingReview
	o.PaymentStatus = PayPendingVerify
	m.events = append(m.events, *ev)
	return nil
}

func (m *memStore) SlipByID(ctx context.Context, slipID, orderID string) (PaymentSlip, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slips[slipID]
	if !ok || s.OrderID != orderID {
		return PaymentSlip{}, false, nil
	}
	return *s, true, nil
}

func (m *memStore) LatestPendingSlip(ctx context.Context, orderID string) (PaymentSlip, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *PaymentSlip
	for _, s := range m.slips {
		if s.OrderID != orderID || s.Status != SlipPendingReview {
			continue
		}
		if latest == nil || s.UploadedAt.After(latest.UploadedAt) {
			latest = s
		}
	}
	if latest == nil {
		return PaymentSlip{}, false, nil
	}
	return *latest, true, nil
}

func (m *memStore) FinalizeReview(ctx context.Context, in ReviewUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slips[in.SlipID]
	if !ok || s.OrderID != in.OrderID || s.Status != SlipPendingReview {
		return false, nil
	}
	o, ok := m.orders[in.OrderID]
	if !ok || o.Status != in.OrderFromStatus {
		return false, nil
	}
	s.Status = in.SlipStatus
	s.ReviewerID = &in.ReviewerID
	s.Note = in.Note
	s.ReviewedAt = &in.ReviewedAt
	o.Status = in.OrderToStatus
	o.PaymentStatus = in.OrderPaymentStatus
	if in.PaidAt != nil {
		o.PaidAt = in.PaidAt
	}
	return true, nil
}

func (m *memStore) TransitionOrder(ctx context.Context, orderID, fromStatus, toStatus, paymentStatus string, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != fromStatus {
		return false, nil
	}
	o.Status = toStatus
	o.PaymentStatus = paymentStatus
	if paidAt != nil {
		o.PaidAt = paidAt
	}
	return true, nil
}

func (m *memStore) AppendEvent(ctx context.Context, ev *OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) firstOrder() Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		return *o
	}
	return Order{}
}

// --- collaborator fakes ---

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) ByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	out := map[string]catalog.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stockCall struct {
	op        string // reserve|release
	productID string
	qty       int
}

type fakeStock struct {
	mu    sync.Mutex
	calls []stockCall
	// failReserve[productID] makes Reserve fail for that product.
	failReserve map[string]error
}

func (f *fakeStock) Reserve(ctx context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failReserve[productID]; err != nil {
		return err
	}
	f.calls = append(f.calls, stockCall{op: "reserve", productID: productID, qty: qty})
	return nil
}

func (f *fakeStock) Release(ctx context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stockCall{op: "release", productID: productID, qty: qty})
	return nil
}

func (f *fakeStock) ops(op string) []stockCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []stockCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeCoupons struct {
	result coupons.Result
	err    error
	calls  int
}

func (f *fakeCoupons) Validate(ctx context.Context, code string, subtotalSatang int) (coupons.Result, error) {
	f.calls++
	if f.err != nil {
		return coupons.Result{}, f.err
	}
	return f.result, nil
}

type fakeProfiles struct {
	upserted []customers.Profile
}

func (f *fakeProfiles) Upsert(ctx context.Context, p customers.Profile) error {
	f.upserted = append(f.upserted, p)
	return nil
}

type fakeFiles struct {
	mu   sync.Mutex
	puts []storage.PutInput
	err  error
}

func (f *fakeFiles) Put(ctx context.Context, r io.Reader, in storage.PutInput) (storage.PutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.PutResult{}, f.err
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	f.puts = append(f.puts, in)
	key := fmt.Sprintf("%s/file-%d", in.Prefix, len(f.puts))
	return storage.PutResult{Key: key, URL: "/uploads/" + key}, nil
}
