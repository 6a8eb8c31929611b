package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kittisap.shop/app/internal/config"
	"kittisap.shop/app/internal/modules/catalog"
	"kittisap.shop/app/internal/modules/coupons"
	"kittisap.shop/app/internal/modules/customers"
	"kittisap.shop/app/internal/modules/inventory"
	"kittisap.shop/app/internal/modules/promptpay"
	"kittisap.shop/app/internal/shared/apperr"
)

const (
	maxDistinctItems = 100
	maxQtyPerLine    = 999
)

// Catalog is the read-only product lookup the orchestrator validates against.
type Catalog interface {
	ByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// StockGateway reserves and releases per-product stock atomically.
type StockGateway interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

// CouponValidator resolves and prices a coupon code against a subtotal.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotalSatang int) (coupons.Result, error)
}

// ProfileUpserter ensures a customer profile row exists before order creation.
type ProfileUpserter interface {
	Upsert(ctx context.Context, p customers.Profile) error
}

type Service struct {
	store    Store
	catalog  Catalog
	stock    StockGateway
	coupons  CouponValidator
	profiles ProfileUpserter
	files    FileStore
	cfg      config.PromptPayConfig
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, cat Catalog, stock StockGateway, cv CouponValidator, profiles ProfileUpserter, files FileStore, cfg config.PromptPayConfig, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  cat,
		stock:    stock,
		coupons:  cv,
		profiles: profiles,
		files:    files,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type CreateItem struct {
	ProductID string
	Qty       int
}

type CustomerInfo struct {
	Name  string
	Phone string
	Email string
}

type CreateInput struct {
	CustomerID string
	Customer   CustomerInfo
	Items      []CreateItem
	CouponCode string
}

type CreateResult struct {
	OrderNumber      string
	PaymentURI       string
	PayableAmount    string
	SubtotalSatang   int
	DiscountSatang   int
	ShippingSatang   int
	GrandTotalSatang int
}

// Create turns a cart into a durable order: validate lines against the
// catalog, reserve stock per line, price the coupon, persist order+items and
// snapshot the payment reference. Any failure after a reservation releases
// everything already reserved, in reverse order.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	lines, err := normalizeLines(in.Items)
	if err != nil {
		return CreateResult{}, err
	}

	// Missing merchant config is checked before any stock is touched.
	if s.cfg.MerchantID == "" {
		return CreateResult{}, apperr.ConfigErr(CodePaymentConfigMissing,
			errors.New("PROMPTPAY_ID is not configured"))
	}

	if err := s.profiles.Upsert(ctx, customers.Profile{
		ID:       in.CustomerID,
		FullName: strings.TrimSpace(in.Customer.Name),
		Phone:    strings.TrimSpace(in.Customer.Phone),
		Email:    strings.ToLower(strings.TrimSpace(in.Customer.Email)),
	}); err != nil {
		return CreateResult{}, apperr.Wrap(fmt.Errorf("upsert customer profile: %w", err))
	}

	ids := make([]string, 0, len(lines))
	for _, ln := range lines {
		ids = append(ids, ln.ProductID)
	}
	products, err := s.catalog.ByIDs(ctx, ids)
	if err != nil {
		return CreateResult{}, apperr.Wrap(err)
	}

	subtotal := 0
	now := s.now()
	items := make([]OrderItem, 0, len(lines))
	for _, ln := range lines {
		p, ok := products[ln.ProductID]
		if !ok {
			return CreateResult{}, apperr.NotFoundErr(CodeProductNotFound, "A product in your cart no longer exists.")
		}
		if p.Status != catalog.StatusActive {
			return CreateResult{}, apperr.ConflictErr(CodeProductInactive, "A product in your cart is no longer available.")
		}
		// Pre-check against the snapshot; the reserve step below is the
		// authoritative guard under concurrency.
		if ln.Qty > p.Stock {
			return CreateResult{}, apperr.ConflictErr(CodeInsufficientStock, "Not enough stock for "+p.Title+".")
		}

		line := p.PriceSatang * ln.Qty
		subtotal += line
		items = append(items, OrderItem{
			ID:              uuid.NewString(),
			ProductID:       p.ID,
			SKU:             p.SKU,
			Title:           p.Title,
			UnitPriceSatang: p.PriceSatang,
			Qty:             ln.Qty,
			LineTotalSatang: line,
			CreatedAt:       now,
		})
	}

	discount := 0
	var couponCode *string
	if code := strings.TrimSpace(in.CouponCode); code != "" {
		res, err := s.coupons.Validate(ctx, code, subtotal)
		if errors.Is(err, coupons.ErrConfigInvalid) {
			return CreateResult{}, apperr.ConfigErr(CodeCouponConfigInvalid, err)
		}
		if err != nil {
			return CreateResult{}, apperr.Wrap(err)
		}
		if !res.Valid {
			return CreateResult{}, apperr.ConflictErr(CodeCouponInvalid, res.Message)
		}
		discount = res.DiscountSatang
		couponCode = &res.Code
	}

	grand := subtotal - discount + s.cfg.ShippingSatang
	if grand < 0 {
		grand = 0
	}

	number, err := generateOrderNumber(ctx, s.store.OrderNumberExists)
	if err != nil {
		return CreateResult{}, apperr.Wrap(err)
	}

	payable := promptpay.PayableAmount(grand)
	o := Order{
		ID:          uuid.NewString(),
		OrderNumber: number,
		CustomerID:  in.CustomerID,

		CustomerName:  strings.TrimSpace(in.Customer.Name),
		CustomerPhone: strings.TrimSpace(in.Customer.Phone),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.Customer.Email)),

		SubtotalSatang:   subtotal,
		DiscountSatang:   discount,
		ShippingSatang:   s.cfg.ShippingSatang,
		GrandTotalSatang: grand,

		Status:        StatusPendingPayment,
		PaymentStatus: PayUnpaid,
		PaymentMethod: "promptpay",

		PaymentMerchantID: s.cfg.MerchantID,
		PaymentURI:        promptpay.BuildReference(s.cfg.MerchantID, s.cfg.BaseURL, grand),

		CouponCode: couponCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i := range items {
		items[i].OrderID = o.ID
	}

	steps := make([]step, 0, len(items)+1)
	for _, it := range items {
		it := it
		steps = append(steps, step{
			name: "reserve:" + it.ProductID,
			run: func(ctx context.Context) error {
				return s.stock.Reserve(ctx, it.ProductID, it.Qty)
			},
			compensate: func(ctx context.Context) error {
				return s.stock.Release(ctx, it.ProductID, it.Qty)
			},
		})
	}
	steps = append(steps, step{
		name: "persist-order",
		run: func(ctx context.Context) error {
			err := s.store.CreateOrder(ctx, &o, items)
			if errors.Is(err, ErrOrderNumberTaken) {
				o.OrderNumber = fallbackOrderNumber(s.now())
				err = s.store.CreateOrder(ctx, &o, items)
			}
			return err
		},
	})

	if err := runSaga(ctx, s.log, steps); err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			return CreateResult{}, apperr.ConflictErr(CodeInsufficientStock, "Not enough stock for one of your items.")
		}
		return CreateResult{}, apperr.Wrap(err)
	}

	s.appendEvent(ctx, &OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		ActorID:    in.CustomerID,
		Action:     "create",
		FromStatus: "",
		ToStatus:   StatusPendingPayment,
		CreatedAt:  now,
	})

	return CreateResult{
		OrderNumber:      o.OrderNumber,
		PaymentURI:       o.PaymentURI,
		PayableAmount:    payable,
		SubtotalSatang:   subtotal,
		DiscountSatang:   discount,
		ShippingSatang:   s.cfg.ShippingSatang,
		GrandTotalSatang: grand,
	}, nil
}

type CancelResult struct {
	OrderNumber string
	Status      string
}

// Cancel is owner-scoped and idempotent: cancelling an already-cancelled
// order is a no-op success. The status flip is the claim; stock is released
// exactly once, by whoever wins the flip.
func (s *Service) Cancel(ctx context.Context, orderNumber, ownerID string) (CancelResult, error) {
	o, ok, err := s.store.GetByNumber(ctx, orderNumber)
	if err != nil {
		return CancelResult{}, apperr.Wrap(err)
	}
	if !ok || o.CustomerID != ownerID {
		return CancelResult{}, apperr.NotFoundErr(CodeOrderNotFound, "Order not found.")
	}

	if o.Status == StatusCancelled {
		return CancelResult{OrderNumber: o.OrderNumber, Status: o.Status}, nil
	}
	if o.Status != StatusPendingPayment {
		return CancelResult{}, apperr.ConflictErr(CodeOrderNotCancellable, "This order can no longer be cancelled.")
	}

	applied, err := s.store.TransitionOrder(ctx, o.ID, StatusPendingPayment, StatusCancelled, PayExpired, nil)
	if err != nil {
		return CancelResult{}, apperr.Wrap(err)
	}
	if !applied {
		// Lost the race. If the other writer cancelled, this is still a
		// no-op success; anything else is a conflict.
		cur, ok, err := s.store.GetByNumber(ctx, orderNumber)
		if err != nil {
			return CancelResult{}, apperr.Wrap(err)
		}
		if ok && cur.Status == StatusCancelled {
			return CancelResult{OrderNumber: cur.OrderNumber, Status: cur.Status}, nil
		}
		return CancelResult{}, apperr.ConflictErr(CodeOrderNotCancellable, "This order can no longer be cancelled.")
	}

	items, err := s.store.ItemsByOrder(ctx, o.ID)
	if err != nil {
		s.log.Error("cancel: loading items for release failed",
			slog.String("order_number", o.OrderNumber), slog.Any("err", err))
	}
	for _, it := range items {
		if err := s.stock.Release(ctx, it.ProductID, it.Qty); err != nil {
			s.log.Error("cancel: stock release failed",
				slog.String("order_number", o.OrderNumber),
				slog.String("product_id", it.ProductID), slog.Any("err", err))
		}
	}

	s.appendEvent(ctx, &OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		ActorID:    ownerID,
		Action:     "cancel",
		FromStatus: StatusPendingPayment,
		ToStatus:   StatusCancelled,
		CreatedAt:  s.now(),
	})

	return CancelResult{OrderNumber: o.OrderNumber, Status: StatusCancelled}, nil
}

// GetForCustomer loads an order with its items, scoped to the owner.
func (s *Service) GetForCustomer(ctx context.Context, orderNumber, ownerID string) (Order, []OrderItem, error) {
	o, ok, err := s.store.GetByNumber(ctx, orderNumber)
	if err != nil {
		return Order{}, nil, apperr.Wrap(err)
	}
	if !ok || o.CustomerID != ownerID {
		return Order{}, nil, apperr.NotFoundErr(CodeOrderNotFound, "Order not found.")
	}
	items, err := s.store.ItemsByOrder(ctx, o.ID)
	if err != nil {
		return Order{}, nil, apperr.Wrap(err)
	}
	return o, items, nil
}

func (s *Service) appendEvent(ctx context.Context, ev *OrderEvent) {
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		s.log.Error("append order event failed",
			slog.String("order_id", ev.OrderID), slog.String("action", ev.Action), slog.Any("err", err))
	}
}

func normalizeLines(items []CreateItem) ([]CreateItem, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidErr("EMPTY_CART", "Your cart is empty.", nil)
	}

	// merge duplicates, keep first-seen order
	idx := make(map[string]int, len(items))
	out := make([]CreateItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, apperr.InvalidErr("BAD_ITEM", "Invalid cart item.", nil)
		}
		if it.Qty < 1 || it.Qty > maxQtyPerLine {
			return nil, apperr.InvalidErr("BAD_QTY", "Item quantity must be between 1 and 999.", nil)
		}
		if i, ok := idx[it.ProductID]; ok {
			out[i].Qty += it.Qty
			if out[i].Qty > maxQtyPerLine {
				return nil, apperr.InvalidErr("BAD_QTY", "Item quantity must be between 1 and 999.", nil)
			}
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	if len(out) > maxDistinctItems {
		return nil, apperr.InvalidErr("TOO_MANY_ITEMS", "Too many distinct items in one order.", nil)
	}
	return out, nil
}
