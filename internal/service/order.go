// Package service composes the pricing and lifecycle cores with the API
// client. Every mutating flow validates locally first and issues exactly
// one request; the upstream response is re-absorbed into the caller's
// snapshot.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/lifecycle"
	"github.com/ganghaofan/mealorder/internal/money"
	"github.com/ganghaofan/mealorder/internal/pricing"
)

// Form modes mirror what a front end renders for a meal.
const (
	ModeOrder  = "order"
	ModeView   = "view"
	ModeModify = "modify"
)

// OrderAPI is the slice of the API client the order flow needs.
type OrderAPI interface {
	GetMeal(ctx context.Context, mealID int64) (domain.Meal, error)
	ListAddons(ctx context.Context, ids []int64) ([]domain.Addon, error)
	Me(ctx context.Context) (domain.User, error)
	MyOrderForMeal(ctx context.Context, mealID int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, mealID int64, sel domain.Selections) (domain.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, sel domain.Selections) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64) error
}

// OrderService drives the user-facing ordering flow for one meal.
type OrderService struct {
	api    OrderAPI
	policy lifecycle.Policy
	log    *zap.Logger
}

// NewOrderService creates an OrderService. logger may be nil.
func NewOrderService(api OrderAPI, policy lifecycle.Policy, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{api: api, policy: policy, log: logger}
}

// OrderContext is the loaded snapshot behind one ordering form. It is a
// plain value: reloading replaces it wholesale.
type OrderContext struct {
	Meal       domain.Meal
	Addons     []domain.Addon
	Balance    money.Minor
	Existing   *domain.Order
	Selections domain.Selections
	Mode       string
}

// Load fetches everything the ordering form needs: the meal, its addon
// definitions, the wallet balance, and any live order.
func (s *OrderService) Load(ctx context.Context, mealID int64) (*OrderContext, error) {
	meal, err := s.api.GetMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}
	addons, err := s.api.ListAddons(ctx, meal.AddonConfig.AddonIDs())
	if err != nil {
		return nil, err
	}
	me, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.api.MyOrderForMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}

	oc := &OrderContext{
		Meal:     meal,
		Addons:   addons,
		Balance:  me.Balance,
		Existing: existing,
	}
	oc.resetSelections()
	oc.Mode = ModeOrder
	if st := oc.existingStatus(); st == enum.OrderStatusPlaced || st == enum.OrderStatusConfirmed {
		oc.Mode = ModeView
	}

	s.log.Debug("order context loaded",
		zap.Int64("meal_id", mealID),
		zap.String("meal_status", meal.Status),
		zap.String("mode", oc.Mode))
	return oc, nil
}

// resetSelections prefills the working selections from the live order, or
// zeroes every offered addon.
func (oc *OrderContext) resetSelections() {
	if oc.Existing != nil && oc.Existing.Status != enum.OrderStatusCanceled && oc.Existing.Selections != nil {
		oc.Selections = oc.Existing.Selections.Clone()
		return
	}
	oc.Selections = make(domain.Selections, len(oc.Meal.AddonConfig))
	for id := range oc.Meal.AddonConfig {
		oc.Selections[id] = 0
	}
}

// existingStatus maps the live order to a lifecycle order status. A
// canceled order does not block a new one.
func (oc *OrderContext) existingStatus() string {
	if oc.Existing == nil || oc.Existing.Status == enum.OrderStatusCanceled {
		return lifecycle.NoOrder
	}
	return oc.Existing.Status
}

// BeginModify switches the form into modify mode, starting from the live
// order's selections.
func (oc *OrderContext) BeginModify() {
	oc.Mode = ModeModify
	oc.resetSelections()
}

// CancelModify abandons edits and returns to view mode.
func (oc *OrderContext) CancelModify() {
	oc.Mode = ModeView
	oc.resetSelections()
}

// Actions lists the user actions currently legal on this snapshot.
func (s *OrderService) Actions(oc *OrderContext) []lifecycle.Action {
	return lifecycle.UserActions(oc.Meal.Status, oc.existingStatus(), s.policy)
}

// Quote prices the current selections against the wallet balance.
func (s *OrderService) Quote(oc *OrderContext) (pricing.PriceQuote, error) {
	return pricing.Quote(oc.Meal.BasePrice, oc.Addons, oc.Meal.AddonConfig, oc.Selections, oc.Balance)
}

// Adjust applies one +/- gesture to an addon quantity, clamped to the
// configured bounds.
func (s *OrderService) Adjust(oc *OrderContext, addonID int64, delta int) int {
	return pricing.AdjustQuantity(oc.Selections, oc.Meal.AddonConfig, addonID, delta)
}

// Place submits a new order. Validation order: lifecycle, then price, then
// the single network call.
func (s *OrderService) Place(ctx context.Context, oc *OrderContext) (domain.Order, error) {
	if err := lifecycle.ValidateUserAction(lifecycle.ActionPlace, oc.Meal.Status, oc.existingStatus(), s.policy); err != nil {
		return domain.Order{}, err
	}
	if err := s.checkQuote(oc); err != nil {
		return domain.Order{}, err
	}

	order, err := s.api.CreateOrder(ctx, oc.Meal.ID, oc.Selections)
	if err != nil {
		return domain.Order{}, err
	}
	s.absorb(oc, order)
	return order, nil
}

// Modify replaces the live order's selections.
func (s *OrderService) Modify(ctx context.Context, oc *OrderContext) (domain.Order, error) {
	if err := lifecycle.ValidateUserAction(lifecycle.ActionModify, oc.Meal.Status, oc.existingStatus(), s.policy); err != nil {
		return domain.Order{}, err
	}
	if err := s.checkQuote(oc); err != nil {
		return domain.Order{}, err
	}

	order, err := s.api.UpdateOrder(ctx, oc.Existing.ID, oc.Selections)
	if err != nil {
		return domain.Order{}, err
	}
	s.absorb(oc, order)
	return order, nil
}

// Cancel cancels the live order. The refund is performed upstream; the
// implied obligation is returned so callers can word their confirmation.
func (s *OrderService) Cancel(ctx context.Context, oc *OrderContext) (lifecycle.Obligation, error) {
	if err := lifecycle.ValidateUserAction(lifecycle.ActionCancel, oc.Meal.Status, oc.existingStatus(), s.policy); err != nil {
		return "", err
	}
	if err := s.api.CancelOrder(ctx, oc.Existing.ID); err != nil {
		return "", err
	}

	oc.Existing = nil
	oc.Mode = ModeOrder
	oc.resetSelections()

	ob, _ := lifecycle.ObligationOf(lifecycle.ActionCancel)
	return ob, nil
}

// checkQuote enforces the submission-time pricing gates.
func (s *OrderService) checkQuote(oc *OrderContext) error {
	q, err := s.Quote(oc)
	if err != nil {
		return err
	}
	if !q.Affordable {
		return fault.Newf(fault.Unaffordable,
			"total %s exceeds balance %s", q.Grand, oc.Balance)
	}
	if q.Grand <= 0 && !s.policy.AllowNonPositiveTotal {
		return fault.Newf(fault.InvalidSelection,
			"non-positive total %s not permitted", q.Grand)
	}
	return nil
}

// absorb folds the upstream response back into the snapshot.
func (s *OrderService) absorb(oc *OrderContext, order domain.Order) {
	o := order
	oc.Existing = &o
	oc.Mode = ModeView
	oc.resetSelections()
}
