package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/money"
)

// The wire duplicates monetary fields as *_cents integers and *_yuan
// decimals. Decoding prefers the exact cents field and falls back to
// converting yuan; a field with neither present is malformed.

type mealWire struct {
	MealID         int64            `json:"meal_id"`
	Date           string           `json:"date"`
	Slot           string           `json:"slot"`
	Description    string           `json:"description"`
	BasePriceCents *int64           `json:"base_price_cents"`
	BasePriceYuan  *decimal.Decimal `json:"base_price_yuan"`
	MaxOrders      int              `json:"max_orders"`
	AddonConfig    map[string]int   `json:"addon_config"`
	Status         string           `json:"status"`
}

type addonWire struct {
	AddonID      int64            `json:"addon_id"`
	Name         string           `json:"name"`
	PriceCents   *int64           `json:"price_cents"`
	PriceYuan    *decimal.Decimal `json:"price_yuan"`
	IsDefault    bool             `json:"is_default"`
	DisplayOrder int              `json:"display_order"`
	Status       string           `json:"status"`
}

type orderWire struct {
	OrderID         int64            `json:"order_id"`
	MealID          int64            `json:"meal_id"`
	UserID          int64            `json:"user_id"`
	AddonSelections map[string]int   `json:"addon_selections"`
	Status          string           `json:"status"`
	OrderStatus     string           `json:"order_status"`
	AmountCents     *int64           `json:"amount_cents"`
	AmountYuan      *decimal.Decimal `json:"amount_yuan"`
	CreatedAt       string           `json:"created_at"`
}

type userWire struct {
	UserID       int64            `json:"user_id"`
	OpenID       string           `json:"open_id"`
	Nickname     string           `json:"nickname"`
	IsAdmin      bool             `json:"is_admin"`
	Status       string           `json:"status"`
	BalanceCents *int64           `json:"balance_cents"`
	BalanceYuan  *decimal.Decimal `json:"balance_yuan"`
}

type transactionWire struct {
	TransactionID     int64            `json:"transaction_id"`
	Type              string           `json:"type"`
	AmountCents       *int64           `json:"amount_cents"`
	AmountYuan        *decimal.Decimal `json:"amount_yuan"`
	BalanceAfterCents *int64           `json:"balance_after_cents"`
	BalanceAfterYuan  *decimal.Decimal `json:"balance_after_yuan"`
	Description       string           `json:"description"`
	CreatedAt         string           `json:"created_at"`
}

type statsWire struct {
	TotalOrders      int              `json:"total_orders"`
	ActiveOrders     int              `json:"active_orders"`
	TotalAmountCents *int64           `json:"total_amount_cents"`
	TotalAmountYuan  *decimal.Decimal `json:"total_amount_yuan"`
}

func minorField(cents *int64, yuan *decimal.Decimal, field string) (money.Minor, error) {
	if cents != nil {
		return money.Minor(*cents), nil
	}
	if yuan != nil {
		return money.FromYuan(*yuan), nil
	}
	return 0, fault.Wrap(fault.Upstream, "missing monetary field "+field, ErrMalformed)
}

// optionalMinor is for fields the wire omits on older records.
func optionalMinor(cents *int64, yuan *decimal.Decimal) money.Minor {
	if cents != nil {
		return money.Minor(*cents)
	}
	if yuan != nil {
		return money.FromYuan(*yuan)
	}
	return 0
}

func parseAddonConfig(raw map[string]int) (domain.AddonConfig, error) {
	cfg := make(domain.AddonConfig, len(raw))
	for key, max := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fault.Wrap(fault.Upstream,
				fmt.Sprintf("addon_config key %q", key), ErrMalformed)
		}
		cfg[id] = max
	}
	return cfg, nil
}

func (w mealWire) toDomain() (domain.Meal, error) {
	if !enum.ValidMealStatus(w.Status) {
		return domain.Meal{}, fault.Wrap(fault.Upstream,
			fmt.Sprintf("meal %d status %q", w.MealID, w.Status), ErrMalformed)
	}
	if !enum.ValidSlot(w.Slot) {
		return domain.Meal{}, fault.Wrap(fault.Upstream,
			fmt.Sprintf("meal %d slot %q", w.MealID, w.Slot), ErrMalformed)
	}
	if _, err := time.Parse(domain.DateLayout, w.Date); err != nil {
		return domain.Meal{}, fault.Wrap(fault.Upstream,
			fmt.Sprintf("meal %d date %q", w.MealID, w.Date), ErrMalformed)
	}
	base, err := minorField(w.BasePriceCents, w.BasePriceYuan, "base_price")
	if err != nil {
		return domain.Meal{}, err
	}
	cfg, err := parseAddonConfig(w.AddonConfig)
	if err != nil {
		return domain.Meal{}, err
	}
	return domain.Meal{
		ID:          w.MealID,
		Date:        w.Date,
		Slot:        w.Slot,
		Description: w.Description,
		BasePrice:   base,
		MaxOrders:   w.MaxOrders,
		AddonConfig: cfg,
		Status:      w.Status,
	}, nil
}

func (w addonWire) toDomain() (domain.Addon, error) {
	price, err := minorField(w.PriceCents, w.PriceYuan, "price")
	if err != nil {
		return domain.Addon{}, err
	}
	if w.Name == "" {
		return domain.Addon{}, fault.Wrap(fault.Upstream,
			fmt.Sprintf("addon %d has no name", w.AddonID), ErrMalformed)
	}
	return domain.Addon{
		ID:           w.AddonID,
		Name:         w.Name,
		Price:        price,
		IsDefault:    w.IsDefault,
		DisplayOrder: w.DisplayOrder,
		Status:       w.Status,
	}, nil
}

// status returns the order status under whichever key the endpoint used.
func (w orderWire) status() string {
	if w.Status != "" {
		return w.Status
	}
	return w.OrderStatus
}

func (w orderWire) toDomain() (domain.Order, error) {
	st := w.status()
	if !enum.ValidOrderStatus(st) {
		return domain.Order{}, fault.Wrap(fault.Upstream,
			fmt.Sprintf("order %d status %q", w.OrderID, st), ErrMalformed)
	}
	total, err := minorField(w.AmountCents, w.AmountYuan, "amount")
	if err != nil {
		return domain.Order{}, err
	}
	sel := make(domain.Selections, len(w.AddonSelections))
	for key, qty := range w.AddonSelections {
		id, perr := strconv.ParseInt(key, 10, 64)
		if perr != nil {
			return domain.Order{}, fault.Wrap(fault.Upstream,
				fmt.Sprintf("order %d selection key %q", w.OrderID, key), ErrMalformed)
		}
		sel[id] = qty
	}
	return domain.Order{
		ID:         w.OrderID,
		MealID:     w.MealID,
		UserID:     w.UserID,
		Selections: sel,
		Status:     st,
		Total:      total,
		CreatedAt:  parseTimestamp(w.CreatedAt),
	}, nil
}

func (w userWire) toDomain() (domain.User, error) {
	balance, err := minorField(w.BalanceCents, w.BalanceYuan, "balance")
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:       w.UserID,
		OpenID:   w.OpenID,
		Nickname: w.Nickname,
		IsAdmin:  w.IsAdmin,
		Status:   w.Status,
		Balance:  balance,
	}, nil
}

func (w transactionWire) toDomain() (domain.Transaction, error) {
	amount, err := minorField(w.AmountCents, w.AmountYuan, "amount")
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:           w.TransactionID,
		Type:         w.Type,
		Amount:       amount,
		BalanceAfter: optionalMinor(w.BalanceAfterCents, w.BalanceAfterYuan),
		Description:  w.Description,
		CreatedAt:    parseTimestamp(w.CreatedAt),
	}, nil
}

func (w statsWire) toDomain() domain.MealOrderStats {
	return domain.MealOrderStats{
		TotalOrders:  w.TotalOrders,
		ActiveOrders: w.ActiveOrders,
		TotalAmount:  optionalMinor(w.TotalAmountCents, w.TotalAmountYuan),
	}
}

// parseTimestamp tolerates the service's RFC3339 variants; a zero time is
// fine for display-only fields.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// wireSelections converts selections to the wire's string-keyed object.
func wireSelections(sel domain.Selections) map[string]int {
	out := make(map[string]int, len(sel))
	for id, qty := range sel {
		out[strconv.FormatInt(id, 10)] = qty
	}
	return out
}

// wireAddonConfig converts an addon config to the wire's string-keyed
// object.
func wireAddonConfig(cfg domain.AddonConfig) map[string]int {
	out := make(map[string]int, len(cfg))
	for id, max := range cfg {
		out[strconv.FormatInt(id, 10)] = max
	}
	return out
}
