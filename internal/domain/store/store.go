// Package store defines the store aggregate and its inventory stock.
// This package is PURE and must NOT import any infrastructure packages.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chickenmaster/server/internal/domain/rules"
	"github.com/chickenmaster/server/internal/domain/value"
)

// ErrInvalidInput is wrapped by every rejected inventory mutation. Invalid
// inputs fail; nothing is silently clamped.
var ErrInvalidInput = errors.New("invalid input")

// Store is a restaurant owned by a player. The owner association is part of
// the schema from construction.
type Store struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	MonthlyRent value.Money `json:"monthly_rent"`
	OwnerID     uuid.UUID   `json:"owner_id"`

	Inventories []Inventory `json:"inventories"`
}

// New validates and creates a store.
func New(name string, monthlyRent value.Money, ownerID uuid.UUID) (Store, error) {
	if strings.TrimSpace(name) == "" {
		return Store{}, fmt.Errorf("%w: store name must not be empty", value.ErrValidation)
	}
	if monthlyRent.IsNegative() {
		return Store{}, fmt.Errorf("%w: monthly rent must not be negative", value.ErrValidation)
	}
	return Store{
		ID:          uuid.New(),
		Name:        name,
		MonthlyRent: monthlyRent,
		OwnerID:     ownerID,
	}, nil
}

// DailyRent is the store's share of a daily settlement: monthly rent divided
// by 30, floored.
func (s Store) DailyRent() value.Money {
	return s.MonthlyRent.DivFloor(rules.DaysPerMonth)
}

// Inventory is one ingredient stock line. Mutations go through Add and
// Remove, which return new values.
type Inventory struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Quantity      int         `json:"quantity"`
	Quality       int         `json:"quality"` // 0-100
	PurchasePrice value.Money `json:"purchase_price"`
}

// NewInventory validates and creates a stock line.
func NewInventory(name string, quantity, quality int, purchasePrice value.Money) (Inventory, error) {
	if strings.TrimSpace(name) == "" {
		return Inventory{}, fmt.Errorf("%w: inventory name must not be empty", value.ErrValidation)
	}
	if quantity < 0 {
		return Inventory{}, fmt.Errorf("%w: quantity must not be negative, got %d", value.ErrValidation, quantity)
	}
	if quality < 0 || quality > 100 {
		return Inventory{}, fmt.Errorf("%w: quality must be within 0..100, got %d", value.ErrValidation, quality)
	}
	if purchasePrice.IsNegative() {
		return Inventory{}, fmt.Errorf("%w: purchase price must not be negative", value.ErrValidation)
	}
	return Inventory{
		ID:            uuid.New(),
		Name:          name,
		Quantity:      quantity,
		Quality:       quality,
		PurchasePrice: purchasePrice,
	}, nil
}

// Add merges a purchased batch into the stock. Quality and price become the
// quantity-weighted averages (integer floor) across the old and new batches.
func (inv Inventory) Add(quantity, quality int, purchasePrice value.Money) (Inventory, error) {
	if quantity <= 0 {
		return inv, fmt.Errorf("%w: added quantity must be positive, got %d", ErrInvalidInput, quantity)
	}
	if quality < 0 || quality > 100 {
		return inv, fmt.Errorf("%w: quality must be within 0..100, got %d", ErrInvalidInput, quality)
	}
	if purchasePrice.IsNegative() {
		return inv, fmt.Errorf("%w: purchase price must not be negative", ErrInvalidInput)
	}

	newQuantity := inv.Quantity + quantity
	totalQuality := inv.Quality*inv.Quantity + quality*quantity
	totalPrice := int64(inv.PurchasePrice)*int64(inv.Quantity) + int64(purchasePrice)*int64(quantity)

	inv.Quantity = newQuantity
	inv.Quality = totalQuality / newQuantity
	inv.PurchasePrice = value.Money(totalPrice / int64(newQuantity))
	return inv, nil
}

// Remove takes stock out, rejecting removal beyond the current quantity.
func (inv Inventory) Remove(quantity int) (Inventory, error) {
	if quantity <= 0 {
		return inv, fmt.Errorf("%w: removed quantity must be positive, got %d", ErrInvalidInput, quantity)
	}
	if quantity > inv.Quantity {
		return inv, fmt.Errorf("%w: cannot remove %d, only %d in stock", ErrInvalidInput, quantity, inv.Quantity)
	}
	inv.Quantity -= quantity
	return inv, nil
}
