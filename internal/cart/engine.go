package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the cart state container. Mutations are serialized, written
// through to Storage in order and broadcast to subscribers once the lock is
// released.
type Engine struct {
	mu          sync.Mutex
	storage     Storage
	deliveryFee decimal.Decimal
	logger      *zap.Logger

	items     []Item
	scheduled *string
	loading   bool

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures an Engine
type Option func(*Engine)

// WithDeliveryFee sets the fixed delivery fee added to the subtotal
func WithDeliveryFee(fee decimal.Decimal) Option {
	return func(e *Engine) {
		e.deliveryFee = fee
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an empty engine in the loading state. Call Hydrate to
// read back the persisted cart.
func NewEngine(storage Storage, opts ...Option) *Engine {
	e := &Engine{
		storage:     storage,
		deliveryFee: decimal.Zero,
		logger:      zap.NewNop(),
		loading:     true,
		listeners:   make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hydrate restores the persisted cart. A missing or unparseable snapshot
// leaves the cart empty; a storage read failure also leaves it empty and is
// returned.
func (e *Engine) Hydrate(ctx context.Context) error {
	e.mu.Lock()
	data, err := e.storage.Load(ctx)
	e.items, e.scheduled = nil, nil
	switch {
	case err != nil:
		err = fmt.Errorf("failed to read persisted cart: %w", err)
	case len(data) > 0:
		var snap snapshot
		if uerr := json.Unmarshal(data, &snap); uerr != nil {
			e.logger.Warn("discarding unparseable cart snapshot", zap.Error(uerr))
		} else {
			e.items = sanitize(snap.Items)
			e.scheduled = snap.ScheduledTime
		}
	}
	e.loading = false
	state := e.stateLocked()
	e.mu.Unlock()

	e.notify(state)
	return err
}

// State returns the current cart state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// AddItem adds quantity units of product. An existing line grows up to the
// product's stock; excess is dropped silently. A product without stock is
// ignored.
func (e *Engine) AddItem(ctx context.Context, p Product, quantity int) (State, error) {
	if quantity < 1 {
		quantity = 1
	}
	return e.mutate(ctx, func() bool {
		if idx := e.indexOf(p.ID); idx >= 0 {
			// The line keeps the ceiling it was added with; live stock
			// drift is reported by Validate.
			line := &e.items[idx]
			next := line.Stock
			if quantity <= line.Stock-line.Quantity {
				next = line.Quantity + quantity
			}
			next = clamp(next, line.Stock)
			if next == line.Quantity {
				return false
			}
			line.Quantity = next
			return true
		}
		if p.Stock < 1 {
			return false
		}
		e.items = append(e.items, Item{
			ProductID:       p.ID,
			Name:            p.Name,
			ImageURL:        p.ImageURL,
			Unit:            p.Unit,
			Stock:           p.Stock,
			Price:           p.Price,
			OriginalPrice:   p.OriginalPrice,
			DiscountPercent: p.DiscountPercent,
			Quantity:        clamp(quantity, p.Stock),
		})
		return true
	})
}

// UpdateQuantity sets a line's quantity, clamped to stock. Zero or less
// removes the line. Unknown products are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) (State, error) {
	return e.mutate(ctx, func() bool {
		idx := e.indexOf(productID)
		if idx < 0 {
			return false
		}
		if quantity <= 0 {
			e.removeAt(idx)
			return true
		}
		e.items[idx].Quantity = clamp(quantity, e.items[idx].Stock)
		return true
	})
}

// RemoveItem deletes a line
func (e *Engine) RemoveItem(ctx context.Context, productID string) (State, error) {
	return e.mutate(ctx, func() bool {
		idx := e.indexOf(productID)
		if idx < 0 {
			return false
		}
		e.removeAt(idx)
		return true
	})
}

// Clear empties the cart and resets the scheduled time
func (e *Engine) Clear(ctx context.Context) (State, error) {
	return e.mutate(ctx, func() bool {
		e.items = nil
		e.scheduled = nil
		return true
	})
}

// SetScheduledTime sets or clears (nil) the delivery time preference
func (e *Engine) SetScheduledTime(ctx context.Context, t *string) (State, error) {
	return e.mutate(ctx, func() bool {
		if t == nil {
			e.scheduled = nil
		} else {
			v := *t
			e.scheduled = &v
		}
		return true
	})
}

// Validate compares the cart with live stock and reports what blocks a
// checkout. Products missing from liveStock are no longer available.
func (e *Engine) Validate(liveStock map[string]int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var problems []string
	for _, item := range e.items {
		stock, ok := liveStock[item.ProductID]
		switch {
		case !ok || stock <= 0:
			problems = append(problems, fmt.Sprintf("%s is no longer available", item.Name))
		case item.Quantity > stock:
			problems = append(problems, fmt.Sprintf("%s: only %d left in stock, your cart has %d", item.Name, stock, item.Quantity))
		}
	}
	return problems
}

// Subscribe registers a listener and returns its unsubscribe function
func (e *Engine) Subscribe(l Listener) func() {
	e.listenerMu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	e.listenerMu.Unlock()

	return func() {
		e.listenerMu.Lock()
		delete(e.listeners, id)
		e.listenerMu.Unlock()
	}
}

// mutate applies change under the lock, persists when it reports a change
// and notifies listeners.
func (e *Engine) mutate(ctx context.Context, change func() bool) (State, error) {
	e.mu.Lock()
	e.loading = false
	if !change() {
		state := e.stateLocked()
		e.mu.Unlock()
		return state, nil
	}
	err := e.persistLocked(ctx)
	state := e.stateLocked()
	e.mu.Unlock()

	e.notify(state)
	return state, err
}

func (e *Engine) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(snapshot{Items: e.items, ScheduledTime: e.scheduled})
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := e.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func (e *Engine) notify(state State) {
	e.listenerMu.Lock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.listenerMu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (e *Engine) stateLocked() State {
	items := make([]Item, len(e.items))
	copy(items, e.items)

	subtotal := decimal.Zero
	units := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		units += item.Quantity
	}

	var scheduled *string
	if e.scheduled != nil {
		v := *e.scheduled
		scheduled = &v
	}

	return State{
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   e.deliveryFee,
		Total:         subtotal.Add(e.deliveryFee),
		ItemCount:     len(items),
		TotalQuantity: units,
		ScheduledTime: scheduled,
		IsLoading:     e.loading,
	}
}

func (e *Engine) indexOf(productID string) int {
	for i := range e.items {
		if e.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAt(idx int) {
	e.items = append(e.items[:idx], e.items[idx+1:]...)
}

// clamp bounds quantity to [1, stock]. Callers guarantee stock >= 1.
func clamp(quantity, stock int) int {
	if quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}

// sanitize drops lines a stale or tampered snapshot may carry: duplicates,
// non-positive quantities, quantities above the recorded stock.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Stock < 1 || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		item.Quantity = clamp(item.Quantity, item.Stock)
		out = append(out, item)
	}
	return out
}
