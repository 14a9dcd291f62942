// Package pricing computes order totals and affordability. Everything is
// a pure function over snapshots; no storage, network, or UI.
package pricing

import (
	"errors"
	"strconv"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/money"
)

// Errors returned by Quote, classified as fault.InvalidSelection.
var (
	ErrUnknownAddon  = errors.New("addon not offered for this meal")
	ErrQuantityRange = errors.New("quantity outside configured bounds")
)

// PriceQuote is the derived result of one computation. It is recomputed on
// every edit and never cached beyond the current form session.
type PriceQuote struct {
	Base       money.Minor
	AddonTotal money.Minor
	Grand      money.Minor
	Affordable bool
}

// Quote prices a selection against a meal's configuration and the wallet
// balance. Out-of-contract selections are rejected, not clamped: a
// submitted command must already be valid. The grand total is reported
// as-is even when negative-priced add-ons push it to zero or below.
func Quote(base money.Minor, addons []domain.Addon, cfg domain.AddonConfig, sel domain.Selections, balance money.Minor) (PriceQuote, error) {
	byID := make(map[int64]domain.Addon, len(addons))
	for _, a := range addons {
		byID[a.ID] = a
	}

	var addonTotal money.Minor
	for id, qty := range sel {
		max, ok := cfg[id]
		if !ok {
			return PriceQuote{}, fault.Wrap(fault.InvalidSelection,
				"addon "+itoa(id), ErrUnknownAddon)
		}
		if qty < 0 || qty > max {
			return PriceQuote{}, fault.Wrap(fault.InvalidSelection,
				"addon "+itoa(id), ErrQuantityRange)
		}
		addon, ok := byID[id]
		if !ok {
			return PriceQuote{}, fault.Wrap(fault.InvalidSelection,
				"addon "+itoa(id), ErrUnknownAddon)
		}
		addonTotal += addon.Price.MulQty(qty)
	}

	grand := base + addonTotal
	return PriceQuote{
		Base:       base,
		AddonTotal: addonTotal,
		Grand:      grand,
		Affordable: balance >= grand,
	}, nil
}

// AdjustQuantity applies one +/- gesture to sel and returns the resulting
// quantity. Unlike Quote it clamps silently to [0, max]: it models a
// repeated user tap, so out-of-range requests are corrected, never
// rejected. An addon absent from cfg is left untouched.
func AdjustQuantity(sel domain.Selections, cfg domain.AddonConfig, addonID int64, delta int) int {
	max, ok := cfg[addonID]
	if !ok {
		return sel[addonID]
	}
	q := sel[addonID] + delta
	if q < 0 {
		q = 0
	}
	if q > max {
		q = max
	}
	sel[addonID] = q
	return q
}

// Range returns the displayed price span of a meal: the grand total with
// every positive addon at its maximum versus every negative addon at its
// maximum. The displayed minimum is floored at zero; this is a display
// rule only and does not constrain Quote.
func Range(base money.Minor, addons []domain.Addon, cfg domain.AddonConfig) (min, max money.Minor) {
	min, max = base, base
	for _, a := range addons {
		maxQty, ok := cfg[a.ID]
		if !ok || maxQty <= 0 {
			continue
		}
		extent := a.Price.MulQty(maxQty)
		if extent > 0 {
			max += extent
		} else {
			min += extent
		}
	}
	if min < 0 {
		min = 0
	}
	return min, max
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
