package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/rivermark/aqualink/internal/domain"
)

// CustomerInfo carries the contact and delivery defaults a shopper supplies
// at checkout.
type CustomerInfo struct {
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	DeliveryDate time.Time `json:"deliveryDate"`
}

// CheckoutRequest is the purchase payload handed to the order-creation
// collaborator. Field names are part of the collaborator contract.
type CheckoutRequest struct {
	Customer CustomerInfo `json:"customer"`
	Items    []Item       `json:"items"`
}

// CheckoutResult is the collaborator's created-order acknowledgement.
type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// OrderPlacer is the external order-creation collaborator.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// Store owns one session's cart state. It serializes every operation,
// persists the full state after each mutation, and clears the cart only
// after the order collaborator acknowledges a successful checkout.
//
// A Store is explicitly constructed with the session it belongs to; there
// is no ambient global cart.
type Store struct {
	mu        sync.Mutex
	sessionID string
	state     State
	storage   Storage
	placer    OrderPlacer
	logger    *slog.Logger
}

// NewStore creates a cart store for a session, replaying any previously
// persisted state. Missing or corrupt persisted state degrades to an empty
// cart; it never fails construction.
func NewStore(ctx context.Context, sessionID string, storage Storage, placer OrderPlacer, logger *slog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		storage:   storage,
		placer:    placer,
		logger:    logger,
	}

	data, err := storage.Load(ctx, s.key())
	if err != nil {
		logger.Warn("failed to load persisted cart, starting empty",
			"session_id", sessionID, "error", err)
		return s
	}
	if len(data) == 0 {
		return s
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("corrupt persisted cart, starting empty",
			"session_id", sessionID, "error", err)
		return s
	}

	s.state = state
	return s
}

// Add inserts a product or increments its quantity if already present.
// A quantity below 1 defaults to 1.
func (s *Store) Add(ctx context.Context, item Item, quantity int32) (State, error) {
	item.Quantity = quantity
	return s.dispatch(ctx, Command{Action: ActionAdd, Item: item})
}

// Remove deletes the matching item. Removing an absent product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) (State, error) {
	return s.dispatch(ctx, Command{Action: ActionRemove, ProductID: productID})
}

// SetQuantity overwrites an item's quantity. Zero or negative quantities
// remove the item.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int32) (State, error) {
	return s.dispatch(ctx, Command{Action: ActionSetQuantity, ProductID: productID, Quantity: quantity})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (State, error) {
	return s.dispatch(ctx, Command{Action: ActionClear})
}

// State returns a copy of the current cart state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Totals recomputes the derived item count and total price.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Totals()
}

// Checkout packages the cart into a purchase request and submits it to the
// order collaborator. The cart is cleared only on an explicit success
// acknowledgement; on any failure the items are left untouched.
func (s *Store) Checkout(ctx context.Context, info CustomerInfo) (*CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Empty() {
		return nil, domain.ErrEmptyCart
	}

	req := CheckoutRequest{
		Customer: info,
		Items:    s.state.Clone().Items,
	}

	result, err := s.placer.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	next := Apply(s.state, Command{Action: ActionClear})
	if err := s.persist(ctx, next); err != nil {
		// The order exists; an unclearable cart is an annoyance, not a
		// reason to report the checkout as failed.
		s.logger.Error("failed to persist cleared cart after checkout",
			"session_id", s.sessionID, "order_number", result.OrderNumber, "error", err)
	}
	s.state = next

	return result, nil
}

// dispatch applies a command and persists the resulting state. If
// persistence fails, the in-memory state is left unchanged so that memory
// and storage never diverge.
func (s *Store) dispatch(ctx context.Context, cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Apply(s.state, cmd)
	if err := s.persist(ctx, next); err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	return next.Clone(), nil
}

func (s *Store) persist(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return domain.Internal(err, "cart.persist", "failed to serialize cart state")
	}
	if err := s.storage.Save(ctx, s.key(), data); err != nil {
		return domain.Unavailable(err, "cart.persist", "cart storage unreachable")
	}
	return nil
}

func (s *Store) key() string {
	return "cart:" + s.sessionID
}
