// Package lifecycle models the meal and order state machines. It only
// gatekeeps: every validated action is executed by the remote service,
// which stays authoritative over state and money movement.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
)

// Action is a user- or admin-initiated operation to validate before it is
// sent upstream.
type Action string

const (
	// User actions on an order.
	ActionPlace  Action = "place"
	ActionModify Action = "modify"
	ActionCancel Action = "cancel"

	// Admin actions on a meal.
	ActionPublish     Action = "publish"
	ActionEditMeal    Action = "edit"
	ActionLock        Action = "lock"
	ActionUnlock      Action = "unlock"
	ActionComplete    Action = "complete"
	ActionAdminCancel Action = "admin_cancel"

	// Admin actions on orders.
	ActionConfirmOrder  Action = "confirm_order"
	ActionCompleteOrder Action = "complete_order"
)

// NoOrder is the order status passed when the user has no live order for
// the meal (absent, or canceled only).
const NoOrder = ""

var (
	ErrIllegalTransition = errors.New("action not permitted in current state")
	ErrUnknownAction     = errors.New("unknown action")
)

// Policy holds the product decisions the observed behavior leaves open.
type Policy struct {
	// ModifyConfirmed permits users to modify an order after an admin has
	// confirmed it.
	ModifyConfirmed bool
	// AllowNonPositiveTotal permits submitting an order whose grand total
	// is zero or negative (reachable via negative-priced add-ons).
	AllowNonPositiveTotal bool
}

// DefaultPolicy: confirmed orders are view-only; non-positive totals
// submit and the service settles them.
func DefaultPolicy() Policy {
	return Policy{ModifyConfirmed: false, AllowNonPositiveTotal: true}
}

var mealTransitions = map[string][]string{
	enum.MealStatusUnpublished: {enum.MealStatusPublished},
	enum.MealStatusPublished:   {enum.MealStatusLocked, enum.MealStatusCanceled},
	enum.MealStatusLocked:      {enum.MealStatusPublished, enum.MealStatusCompleted, enum.MealStatusCanceled},
	enum.MealStatusCompleted:   {},
	enum.MealStatusCanceled:    {},
}

var orderTransitions = map[string][]string{
	enum.OrderStatusPlaced:    {enum.OrderStatusConfirmed, enum.OrderStatusCanceled},
	enum.OrderStatusConfirmed: {enum.OrderStatusCompleted, enum.OrderStatusCanceled},
	enum.OrderStatusCompleted: {},
	enum.OrderStatusCanceled:  {},
}

// CanTransitionMeal reports whether a meal may move from one status to
// another.
func CanTransitionMeal(from, to string) bool {
	return contains(mealTransitions[from], to)
}

// CanTransitionOrder reports whether an order may move from one status to
// another.
func CanTransitionOrder(from, to string) bool {
	return contains(orderTransitions[from], to)
}

// MealTerminal reports whether no further meal transitions exist.
func MealTerminal(status string) bool {
	return len(mealTransitions[status]) == 0 && enum.ValidMealStatus(status)
}

// OrderTerminal reports whether no further order transitions exist.
func OrderTerminal(status string) bool {
	return len(orderTransitions[status]) == 0 && enum.ValidOrderStatus(status)
}

// ValidateUserAction gatekeeps place/modify/cancel against the meal and
// order snapshots. orderStatus is NoOrder when the user has no live order.
func ValidateUserAction(a Action, mealStatus, orderStatus string, p Policy) error {
	switch a {
	case ActionPlace:
		if mealStatus == enum.MealStatusPublished && orderStatus == NoOrder {
			return nil
		}
	case ActionModify:
		if mealStatus != enum.MealStatusPublished {
			break
		}
		if orderStatus == enum.OrderStatusPlaced {
			return nil
		}
		if orderStatus == enum.OrderStatusConfirmed && p.ModifyConfirmed {
			return nil
		}
	case ActionCancel:
		mealOpen := mealStatus == enum.MealStatusPublished || mealStatus == enum.MealStatusLocked
		orderLive := orderStatus == enum.OrderStatusPlaced || orderStatus == enum.OrderStatusConfirmed
		if mealOpen && orderLive {
			return nil
		}
	default:
		return fault.Wrap(fault.IllegalTransition, string(a), ErrUnknownAction)
	}
	return illegal(a, mealStatus, orderStatus)
}

// ValidateAdminMealAction gatekeeps meal lifecycle operations.
func ValidateAdminMealAction(a Action, mealStatus string) error {
	ok := false
	switch a {
	case ActionPublish:
		ok = mealStatus == enum.MealStatusUnpublished
	case ActionEditMeal:
		// Fields may change while users can still see and act on the meal.
		ok = mealStatus == enum.MealStatusPublished
	case ActionLock:
		ok = CanTransitionMeal(mealStatus, enum.MealStatusLocked)
	case ActionUnlock:
		ok = mealStatus == enum.MealStatusLocked
	case ActionComplete:
		ok = CanTransitionMeal(mealStatus, enum.MealStatusCompleted)
	case ActionAdminCancel:
		ok = CanTransitionMeal(mealStatus, enum.MealStatusCanceled)
	default:
		return fault.Wrap(fault.IllegalTransition, string(a), ErrUnknownAction)
	}
	if !ok {
		return illegal(a, mealStatus, NoOrder)
	}
	return nil
}

// ValidateAdminOrderAction gatekeeps confirm/complete on a single order.
func ValidateAdminOrderAction(a Action, orderStatus string) error {
	ok := false
	switch a {
	case ActionConfirmOrder:
		ok = CanTransitionOrder(orderStatus, enum.OrderStatusConfirmed)
	case ActionCompleteOrder:
		ok = CanTransitionOrder(orderStatus, enum.OrderStatusCompleted)
	default:
		return fault.Wrap(fault.IllegalTransition, string(a), ErrUnknownAction)
	}
	if !ok {
		return illegal(a, "", orderStatus)
	}
	return nil
}

// UserActions lists the actions currently enabled for a user, driving
// button state in any front end.
func UserActions(mealStatus, orderStatus string, p Policy) []Action {
	var out []Action
	for _, a := range []Action{ActionPlace, ActionModify, ActionCancel} {
		if ValidateUserAction(a, mealStatus, orderStatus, p) == nil {
			out = append(out, a)
		}
	}
	return out
}

// AdminMealActions lists the meal operations enabled for the current
// status.
func AdminMealActions(mealStatus string) []Action {
	var out []Action
	all := []Action{ActionPublish, ActionEditMeal, ActionLock, ActionUnlock,
		ActionComplete, ActionAdminCancel}
	for _, a := range all {
		if ValidateAdminMealAction(a, mealStatus) == nil {
			out = append(out, a)
		}
	}
	return out
}

// Obligation is a side effect the remote service performs when an action
// succeeds. Reported so callers can word confirmation prompts; never
// executed here.
type Obligation string

const (
	// ObligationRefundOrder: canceling a live order refunds its total to
	// the wallet.
	ObligationRefundOrder Obligation = "refund_order"
	// ObligationRefundAllOrders: canceling a meal refunds every
	// non-canceled order on it.
	ObligationRefundAllOrders Obligation = "refund_all_orders"
	// ObligationDebitBalance: placing or modifying settles the difference
	// against the wallet.
	ObligationDebitBalance Obligation = "debit_balance"
)

// ObligationOf reports the upstream side effect implied by an action.
func ObligationOf(a Action) (Obligation, bool) {
	switch a {
	case ActionCancel:
		return ObligationRefundOrder, true
	case ActionAdminCancel:
		return ObligationRefundAllOrders, true
	case ActionPlace, ActionModify:
		return ObligationDebitBalance, true
	}
	return "", false
}

func illegal(a Action, mealStatus, orderStatus string) error {
	msg := fmt.Sprintf("%s (meal %s)", a, orDash(mealStatus))
	if orderStatus != NoOrder {
		msg = fmt.Sprintf("%s (meal %s, order %s)", a, orDash(mealStatus), orderStatus)
	}
	return fault.Wrap(fault.IllegalTransition, msg, ErrIllegalTransition)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
