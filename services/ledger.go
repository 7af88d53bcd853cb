package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kendall-kelly/luxetrack-api/models"
	"go.uber.org/zap"
)

// Ledger owns the in-memory order sequence and mirrors it to a Store after every mutation.
// Newest orders come first. One Ledger is constructed per process and shared by the handlers.
type Ledger struct {
	mu      sync.RWMutex
	orders  []models.Order
	store   Store
	ids     IDGenerator
	now     func() time.Time
	logger  *zap.Logger
	metrics *Metrics
}

// LedgerOption customizes a Ledger
type LedgerOption func(*Ledger)

// WithIDGenerator replaces the default "#DH" id generator
func WithIDGenerator(ids IDGenerator) LedgerOption {
	return func(l *Ledger) { l.ids = ids }
}

// WithClock replaces time.Now for default order dates
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates an empty ledger. Call Load before serving.
func NewLedger(store Store, logger *zap.Logger, metrics *Metrics, opts ...LedgerOption) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:   store,
		ids:     OrderIDGenerator{},
		now:     time.Now,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the stored snapshot. An absent key seeds the sample orders and writes them back.
// A snapshot that does not decode into valid orders yields ErrMalformedPersistedState and is left untouched.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.store.Get(ctx, OrdersKey)
	if errors.Is(err, ErrKeyNotFound) {
		l.orders = SeedOrders()
		l.logger.Info("no stored orders found, seeding sample data", zap.Int("orders", len(l.orders)))
		return l.flush(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	orders, err := decodeOrders(data)
	if err != nil {
		return err
	}

	l.orders = orders
	l.logger.Info("orders loaded", zap.Int("orders", len(orders)))
	return nil
}

func decodeOrders(data []byte) ([]models.Order, error) {
	var orders []models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPersistedState, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	seen := make(map[string]struct{}, len(orders))
	for _, order := range orders {
		if err := order.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPersistedState, err)
		}
		if _, dup := seen[order.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate order id %q", ErrMalformedPersistedState, order.ID)
		}
		seen[order.ID] = struct{}{}
	}
	return orders, nil
}

// List returns a copy of all orders, newest first
func (l *Ledger) List() []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.orders)
}

// Get returns one order by id
func (l *Ledger) Get(id string) (models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return models.Order{}, ErrOrderNotFound
	}
	return l.orders[idx], nil
}

// Create assigns a fresh id, derives the financial fields and puts the order at the front
func (l *Ledger) Create(ctx context.Context, input models.OrderInput) (order models.Order, err error) {
	defer func() { l.metrics.mutation("create", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.ids.NewID(func(candidate string) bool { return l.indexOf(candidate) >= 0 })
	order = models.BuildOrder(id, input, l.now())

	previous := l.orders
	l.orders = append([]models.Order{order}, previous...)

	if err := l.flush(ctx); err != nil {
		l.orders = previous
		return models.Order{}, err
	}

	l.logger.Info("order created", zap.String("order_id", order.ID), zap.Float64("total_amount", order.TotalAmount))
	return order, nil
}

// Update replaces every field of the order except its id and re-derives the financial fields.
// The order keeps its position in the sequence.
func (l *Ledger) Update(ctx context.Context, id string, input models.OrderInput) (order models.Order, err error) {
	defer func() { l.metrics.mutation("update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return models.Order{}, ErrOrderNotFound
	}

	order = models.BuildOrder(id, input, l.now())

	previous := l.orders
	updated := slices.Clone(previous)
	updated[idx] = order
	l.orders = updated

	if err := l.flush(ctx); err != nil {
		l.orders = previous
		return models.Order{}, err
	}

	l.logger.Info("order updated", zap.String("order_id", order.ID))
	return order, nil
}

// Delete removes the order with id
func (l *Ledger) Delete(ctx context.Context, id string) (err error) {
	defer func() { l.metrics.mutation("delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return ErrOrderNotFound
	}

	previous := l.orders
	l.orders = slices.Delete(slices.Clone(previous), idx, idx+1)

	if err := l.flush(ctx); err != nil {
		l.orders = previous
		return err
	}

	l.logger.Info("order deleted", zap.String("order_id", id))
	return nil
}

// Stats aggregates the current snapshot
func (l *Ledger) Stats() models.DashboardStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats(l.orders)
}

// Filter returns the orders matching f in ledger order
func (l *Ledger) Filter(f OrderFilter) []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Filter(l.orders, f)
}

// Ping checks the backing store
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.orders, func(o models.Order) bool { return o.ID == id })
}

// flush writes the whole snapshot. Callers hold the write lock.
func (l *Ledger) flush(ctx context.Context) error {
	orders := l.orders
	if orders == nil {
		orders = []models.Order{}
	}

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := l.store.Set(ctx, OrdersKey, data); err != nil {
		l.logger.Error("failed to flush orders", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
