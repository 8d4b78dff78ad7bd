package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/namidia/namidia/internal/cart"
	"github.com/namidia/namidia/internal/metrics"
	"github.com/namidia/namidia/internal/model"
)

// CartStore keeps one serialized cart per session
type CartStore interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
}

// ProductCatalog reads products and their live stock
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetStock(ctx context.Context, ids []string) (map[string]int, error)
}

// OrderPublisher hands a placed order to the fulfillment side
type OrderPublisher interface {
	PublishOrder(ctx context.Context, order *model.Order) error
}

// sessionStorage binds a CartStore to one session for the engine
type sessionStorage struct {
	store     CartStore
	sessionID string
}

func (s sessionStorage) Load(ctx context.Context) ([]byte, error) {
	return s.store.Load(ctx, s.sessionID)
}

func (s sessionStorage) Save(ctx context.Context, data []byte) error {
	return s.store.Save(ctx, s.sessionID, data)
}

// CheckoutInput is the customer data collected at checkout
type CheckoutInput struct {
	CustomerName  string
	CustomerPhone string
	Address       string
	PaymentMethod string
	Notes         string
}

// CheckoutResult is either a placed order or the problems that blocked it
type CheckoutResult struct {
	Order    *model.Order
	Problems []string
}

// CartService runs cart engine operations for browsing sessions
type CartService struct {
	carts       CartStore
	products    ProductCatalog
	orders      OrderPublisher
	deliveryFee decimal.Decimal
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(carts CartStore, products ProductCatalog, orders OrderPublisher, deliveryFee decimal.Decimal, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:       carts,
		products:    products,
		orders:      orders,
		deliveryFee: deliveryFee,
		logger:      logger.Named("cart"),
	}
}

// open hydrates the session's engine. Mutations made through it are counted
// by op.
func (s *CartService) open(ctx context.Context, sessionID, op string) (*cart.Engine, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, model.ErrInvalidSession
	}

	engine := cart.NewEngine(
		sessionStorage{store: s.carts, sessionID: sessionID},
		cart.WithDeliveryFee(s.deliveryFee),
		cart.WithLogger(s.logger.With(zap.String("session_id", sessionID))),
	)
	if err := engine.Hydrate(ctx); err != nil {
		return nil, err
	}

	engine.Subscribe(func(state cart.State) {
		metrics.RecordCartOperation(op)
		metrics.ObserveCartLines(state.ItemCount)
	})
	return engine, nil
}

// GetCart returns the session's cart
func (s *CartService) GetCart(ctx context.Context, sessionID string) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "get")
	if err != nil {
		return cart.State{}, err
	}
	return engine.State(), nil
}

// AddItem adds quantity units of a catalog product
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "add")
	if err != nil {
		return cart.State{}, err
	}

	product, err := s.products.GetProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return cart.State{}, err
	}
	return engine.AddItem(ctx, toCartProduct(product), quantity)
}

// UpdateQuantity sets a line's quantity; zero or less removes it
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "update")
	if err != nil {
		return cart.State{}, err
	}
	return engine.UpdateQuantity(ctx, productID, quantity)
}

// RemoveItem deletes a line
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "remove")
	if err != nil {
		return cart.State{}, err
	}
	return engine.RemoveItem(ctx, productID)
}

// ClearCart empties the cart
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "clear")
	if err != nil {
		return cart.State{}, err
	}
	return engine.Clear(ctx)
}

// SetScheduledTime sets the delivery time preference. Nil or blank clears it.
func (s *CartService) SetScheduledTime(ctx context.Context, sessionID string, scheduled *string) (cart.State, error) {
	engine, err := s.open(ctx, sessionID, "schedule")
	if err != nil {
		return cart.State{}, err
	}
	return engine.SetScheduledTime(ctx, optional(scheduled))
}

// ValidateCart checks the cart against live stock
func (s *CartService) ValidateCart(ctx context.Context, sessionID string) (cart.State, []string, error) {
	engine, err := s.open(ctx, sessionID, "validate")
	if err != nil {
		return cart.State{}, nil, err
	}

	state := engine.State()
	problems, err := s.validate(ctx, engine, state)
	if err != nil {
		return cart.State{}, nil, err
	}
	return state, problems, nil
}

func (s *CartService) validate(ctx context.Context, engine *cart.Engine, state cart.State) ([]string, error) {
	ids := make([]string, 0, len(state.Items))
	for _, item := range state.Items {
		ids = append(ids, item.ProductID)
	}
	stock, err := s.products.GetStock(ctx, ids)
	if err != nil {
		return nil, err
	}
	return engine.Validate(stock), nil
}

// Checkout places the cart as an order. Stock problems are returned instead
// of an order and leave the cart untouched.
func (s *CartService) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (*CheckoutResult, error) {
	in = normalizeCheckout(in)
	if in.CustomerName == "" || in.CustomerPhone == "" || in.Address == "" {
		metrics.RecordCheckout("invalid")
		return nil, model.ErrInvalidCheckout
	}

	engine, err := s.open(ctx, sessionID, "checkout")
	if err != nil {
		metrics.RecordCheckout("error")
		return nil, err
	}

	state := engine.State()
	if len(state.Items) == 0 {
		metrics.RecordCheckout("empty")
		return nil, model.ErrEmptyCart
	}

	problems, err := s.validate(ctx, engine, state)
	if err != nil {
		metrics.RecordCheckout("error")
		return nil, err
	}
	if len(problems) > 0 {
		metrics.RecordCheckout("rejected")
		return &CheckoutResult{Problems: problems}, nil
	}

	order := newOrder(sessionID, in, state)
	if err := s.orders.PublishOrder(ctx, order); err != nil {
		metrics.RecordCheckout("error")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	metrics.RecordCheckout("placed")

	log := s.logger.With(zap.String("session_id", sessionID), zap.String("order_id", order.ID.String()))
	log.Info("order placed", zap.String("total", order.Total.StringFixed(2)), zap.Int("lines", len(order.Items)))

	// The order is already out; a failed clear only leaves a stale cart behind
	if _, err := engine.Clear(ctx); err != nil {
		log.Error("failed to clear cart after checkout", zap.Error(err))
	}
	return &CheckoutResult{Order: order}, nil
}

func normalizeCheckout(in CheckoutInput) CheckoutInput {
	return CheckoutInput{
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Address:       strings.TrimSpace(in.Address),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Notes:         strings.TrimSpace(in.Notes),
	}
}

func newOrder(sessionID string, in CheckoutInput, state cart.State) *model.Order {
	items := make([]model.OrderItem, 0, len(state.Items))
	for _, item := range state.Items {
		items = append(items, model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.LineTotal(),
		})
	}

	scheduled := state.ScheduledTime
	if scheduled == nil {
		asap := cart.ASAP
		scheduled = &asap
	}

	return &model.Order{
		ID:            uuid.New(),
		SessionID:     sessionID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		Items:         items,
		Subtotal:      state.Subtotal,
		DeliveryFee:   state.DeliveryFee,
		Total:         state.Total,
		ScheduledTime: scheduled,
		CreatedAt:     time.Now().UTC(),
	}
}

func toCartProduct(p *model.Product) cart.Product {
	return cart.Product{
		ID:              p.ID,
		Name:            p.Name,
		ImageURL:        p.ImageURL,
		Unit:            p.Unit,
		Stock:           p.Stock,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		DiscountPercent: p.DiscountPercent,
	}
}
