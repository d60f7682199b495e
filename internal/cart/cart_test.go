package cart

import (
	"reflect"
	"testing"
)

func TestApply_Add(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		cmd      Command
		expected []Item
	}{
		{
			name:  "add to empty cart",
			state: State{},
			cmd: Command{Action: ActionAdd, Item: Item{
				ProductID: "aqua-5g", Name: "5 Gallon Jug", UnitPrice: 500, Quantity: 2,
			}},
			expected: []Item{
				{ProductID: "aqua-5g", Name: "5 Gallon Jug", UnitPrice: 500, Quantity: 2},
			},
		},
		{
			name: "add existing product merges quantities",
			state: State{Items: []Item{
				{ProductID: "aqua-5g", Name: "5 Gallon Jug", UnitPrice: 500, Quantity: 2},
			}},
			cmd: Command{Action: ActionAdd, Item: Item{
				ProductID: "aqua-5g", Name: "5 Gallon Jug", UnitPrice: 500, Quantity: 3,
			}},
			expected: []Item{
				{ProductID: "aqua-5g", Name: "5 Gallon Jug", UnitPrice: 500, Quantity: 5},
			},
		},
		{
			name: "quantity below one defaults to one",
			state: State{Items: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 1},
			}},
			cmd: Command{Action: ActionAdd, Item: Item{
				ProductID: "filter-std", Name: "Standard Filter", UnitPrice: 1200, Quantity: 0,
			}},
			expected: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 1},
				{ProductID: "filter-std", Name: "Standard Filter", UnitPrice: 1200, Quantity: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.state, tt.cmd)
			if !reflect.DeepEqual(got.Items, tt.expected) {
				t.Errorf("Apply() items = %+v, want %+v", got.Items, tt.expected)
			}
		})
	}
}

func TestApply_SetQuantity(t *testing.T) {
	base := State{Items: []Item{
		{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
		{ProductID: "filter-std", UnitPrice: 1200, Quantity: 1},
	}}

	tests := []struct {
		name     string
		cmd      Command
		expected []Item
	}{
		{
			name: "overwrite quantity",
			cmd:  Command{Action: ActionSetQuantity, ProductID: "aqua-5g", Quantity: 7},
			expected: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 7},
				{ProductID: "filter-std", UnitPrice: 1200, Quantity: 1},
			},
		},
		{
			name: "zero quantity removes the item",
			cmd:  Command{Action: ActionSetQuantity, ProductID: "aqua-5g", Quantity: 0},
			expected: []Item{
				{ProductID: "filter-std", UnitPrice: 1200, Quantity: 1},
			},
		},
		{
			name: "negative quantity removes the item",
			cmd:  Command{Action: ActionSetQuantity, ProductID: "filter-std", Quantity: -3},
			expected: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
			},
		},
		{
			name: "unknown product is a no-op",
			cmd:  Command{Action: ActionSetQuantity, ProductID: "missing", Quantity: 4},
			expected: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
				{ProductID: "filter-std", UnitPrice: 1200, Quantity: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(base, tt.cmd)
			if !reflect.DeepEqual(got.Items, tt.expected) {
				t.Errorf("Apply() items = %+v, want %+v", got.Items, tt.expected)
			}
		})
	}
}

func TestApply_RemoveAndClear(t *testing.T) {
	base := State{Items: []Item{
		{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
		{ProductID: "filter-std", UnitPrice: 1200, Quantity: 1},
	}}

	got := Apply(base, Command{Action: ActionRemove, ProductID: "aqua-5g"})
	if len(got.Items) != 1 || got.Items[0].ProductID != "filter-std" {
		t.Errorf("remove left items = %+v", got.Items)
	}

	// Removing an absent product changes nothing
	got = Apply(base, Command{Action: ActionRemove, ProductID: "missing"})
	if !reflect.DeepEqual(got.Items, base.Items) {
		t.Errorf("removing absent product mutated items = %+v", got.Items)
	}

	got = Apply(base, Command{Action: ActionClear})
	if !got.Empty() {
		t.Errorf("clear left items = %+v", got.Items)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	base := State{Items: []Item{
		{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
	}}

	Apply(base, Command{Action: ActionAdd, Item: Item{ProductID: "aqua-5g", Quantity: 3}})
	Apply(base, Command{Action: ActionSetQuantity, ProductID: "aqua-5g", Quantity: 9})

	if base.Items[0].Quantity != 2 {
		t.Errorf("input state mutated: quantity = %d, want 2", base.Items[0].Quantity)
	}
}

func TestState_Totals(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected Totals
	}{
		{
			name:     "empty cart",
			state:    State{},
			expected: Totals{},
		},
		{
			name: "sums quantities and prices",
			state: State{Items: []Item{
				{ProductID: "aqua-5g", UnitPrice: 500, Quantity: 2},
				{ProductID: "filter-std", UnitPrice: 300, Quantity: 1},
			}},
			expected: Totals{ItemCount: 3, TotalPrice: 1300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Totals(); got != tt.expected {
				t.Errorf("Totals() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
