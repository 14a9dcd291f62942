// Package domain defines the normalized client-side types for the
// meal-ordering service. All monetary fields are integer minor units;
// boundary decoding converts the wire's yuan decimals before anything
// here sees them.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/money"
)

// Errors returned by domain validation.
var (
	ErrEmptyDescription = errors.New("description is required")
	ErrBasePrice        = errors.New("base price must be > 0")
	ErrMaxOrders        = errors.New("max orders must be > 0")
	ErrBadSlot          = errors.New("invalid slot")
	ErrBadDate          = errors.New("invalid date, use YYYY-MM-DD")
	ErrAddonName        = errors.New("addon name is required")
	ErrAddonPriceRange  = errors.New("addon price out of range")
	ErrMaxQuantity      = errors.New("max quantity must be positive")
	ErrQuantityCap      = errors.New("max quantity exceeds configured cap")
)

const DateLayout = "2006-01-02"

// Addon is an optional priced modifier. Price is signed: a negative price
// models a discount (e.g. omitting an ingredient).
type Addon struct {
	ID           int64
	Name         string
	Price        money.Minor
	IsDefault    bool
	DisplayOrder int
	Status       string
}

// addonPriceLimit bounds admin-entered addon prices (±999.99 yuan).
const addonPriceLimit = money.Minor(99999)

// Validate checks an addon definition prior to an admin create request.
func (a Addon) Validate() error {
	if a.Name == "" {
		return ErrAddonName
	}
	if a.Price < -addonPriceLimit || a.Price > addonPriceLimit {
		return ErrAddonPriceRange
	}
	return nil
}

// AddonConfig maps addon id to the per-order maximum quantity offered on
// a meal.
type AddonConfig map[int64]int

// Validate checks every configured quantity against the per-meal cap.
func (c AddonConfig) Validate(limit int) error {
	for id, max := range c {
		if max <= 0 {
			return fmt.Errorf("addon %d: %w", id, ErrMaxQuantity)
		}
		if limit > 0 && max > limit {
			return fmt.Errorf("addon %d: %w (%d > %d)", id, ErrQuantityCap, max, limit)
		}
	}
	return nil
}

// AddonIDs returns the configured addon ids in ascending order.
func (c AddonConfig) AddonIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// Meal is one sitting on the calendar. At most one meal exists per
// (date, slot); a duplicate from upstream is a data error.
type Meal struct {
	ID          int64
	Date        string // YYYY-MM-DD
	Slot        string
	Description string
	BasePrice   money.Minor
	MaxOrders   int
	AddonConfig AddonConfig
	Status      string
}

// Day parses the meal's calendar date.
func (m Meal) Day() (time.Time, error) {
	t, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, m.Date)
	}
	return t, nil
}

// MealForm is the admin-entered portion of a meal, validated before
// publish and edit requests.
type MealForm struct {
	Description string
	BasePrice   money.Minor
	MaxOrders   int
	AddonConfig AddonConfig
}

// Validate enforces the publish-grade field requirements.
func (f MealForm) Validate(quantityCap int) error {
	if f.Description == "" {
		return ErrEmptyDescription
	}
	if f.BasePrice <= 0 {
		return ErrBasePrice
	}
	if f.MaxOrders <= 0 {
		return ErrMaxOrders
	}
	return f.AddonConfig.Validate(quantityCap)
}

// ValidateSlotDate checks the (date, slot) key of a new meal.
func ValidateSlotDate(date, slot string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	if !enum.ValidSlot(slot) {
		return fmt.Errorf("%w: %q", ErrBadSlot, slot)
	}
	return nil
}

// Selections maps addon id to the quantity a user picked.
type Selections map[int64]int

// Clone returns an independent copy, never nil.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for id, q := range s {
		out[id] = q
	}
	return out
}

// Order is a user's order for one meal. At most one non-canceled order
// exists per (user, meal).
type Order struct {
	ID         int64
	MealID     int64
	UserID     int64
	Selections Selections
	Status     string
	Total      money.Minor
	CreatedAt  time.Time
}

// User is the account as seen by the client, wallet balance included.
// The balance is read-only here; only upstream transactions move it.
type User struct {
	ID       int64
	OpenID   string
	Nickname string
	IsAdmin  bool
	Status   string
	Balance  money.Minor
}

// Transaction is one wallet ledger entry.
type Transaction struct {
	ID           int64
	Type         string
	Amount       money.Minor
	BalanceAfter money.Minor
	Description  string
	CreatedAt    time.Time
}

// MealOrderStats summarizes orders on a meal for the admin view.
type MealOrderStats struct {
	TotalOrders  int
	ActiveOrders int
	TotalAmount  money.Minor
}
