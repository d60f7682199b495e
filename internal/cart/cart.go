package cart

// The cart is modelled as a pure state-transition function: every mutation
// is a Command applied to the current State, producing a new State. The
// Store wraps this with persistence; nothing in this file touches storage.

// Item represents one product line in a shopper's cart.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"` // minor currency units
	Category  string `json:"category,omitempty"`
	Quantity  int32  `json:"quantity"`
}

// State is the ordered collection of cart items. At most one Item exists
// per product ID; quantities are always >= 1.
type State struct {
	Items []Item `json:"items"`
}

// Totals holds the derived cart aggregates. They are recomputed on every
// read and never stored.
type Totals struct {
	ItemCount  int32 `json:"itemCount"`
	TotalPrice int64 `json:"totalPrice"`
}

// Action identifies a cart state transition.
type Action string

const (
	ActionAdd         Action = "add"
	ActionRemove      Action = "remove"
	ActionSetQuantity Action = "set_quantity"
	ActionClear       Action = "clear"
)

// Command describes one cart mutation.
type Command struct {
	Action    Action
	Item      Item   // ActionAdd: product to add (Quantity is the increment)
	ProductID string // ActionRemove / ActionSetQuantity
	Quantity  int32  // ActionSetQuantity
}

// Apply computes the next cart state for a command. It never mutates the
// input state and never fails: unknown product removals are no-ops and
// non-positive quantities behave as removals.
func Apply(state State, cmd Command) State {
	switch cmd.Action {
	case ActionAdd:
		qty := cmd.Item.Quantity
		if qty < 1 {
			qty = 1
		}
		next := cloneItems(state.Items)
		for i := range next {
			if next[i].ProductID == cmd.Item.ProductID {
				next[i].Quantity += qty
				return State{Items: next}
			}
		}
		item := cmd.Item
		item.Quantity = qty
		return State{Items: append(next, item)}

	case ActionRemove:
		return State{Items: removeItem(state.Items, cmd.ProductID)}

	case ActionSetQuantity:
		if cmd.Quantity <= 0 {
			return State{Items: removeItem(state.Items, cmd.ProductID)}
		}
		next := cloneItems(state.Items)
		for i := range next {
			if next[i].ProductID == cmd.ProductID {
				next[i].Quantity = cmd.Quantity
			}
		}
		return State{Items: next}

	case ActionClear:
		return State{}
	}

	return State{Items: cloneItems(state.Items)}
}

// Totals derives the total item count and total price from the state.
func (s State) Totals() Totals {
	var t Totals
	for _, item := range s.Items {
		t.ItemCount += item.Quantity
		t.TotalPrice += item.UnitPrice * int64(item.Quantity)
	}
	return t
}

// Empty reports whether the cart holds no items.
func (s State) Empty() bool {
	return len(s.Items) == 0
}

// Clone returns a deep copy so callers cannot alias the store's state.
func (s State) Clone() State {
	return State{Items: cloneItems(s.Items)}
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func removeItem(items []Item, productID string) []Item {
	var out []Item
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
