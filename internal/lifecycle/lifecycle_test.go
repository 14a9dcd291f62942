package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/lifecycle"
)

func TestValidateUserAction(t *testing.T) {
	p := lifecycle.DefaultPolicy()

	tests := []struct {
		name   string
		action lifecycle.Action
		meal   string
		order  string
		ok     bool
	}{
		{"place on published meal", lifecycle.ActionPlace, enum.MealStatusPublished, lifecycle.NoOrder, true},
		{"place on locked meal", lifecycle.ActionPlace, enum.MealStatusLocked, lifecycle.NoOrder, false},
		{"place on unpublished meal", lifecycle.ActionPlace, enum.MealStatusUnpublished, lifecycle.NoOrder, false},
		{"place with existing order", lifecycle.ActionPlace, enum.MealStatusPublished, enum.OrderStatusPlaced, false},

		{"modify placed order", lifecycle.ActionModify, enum.MealStatusPublished, enum.OrderStatusPlaced, true},
		{"modify confirmed order", lifecycle.ActionModify, enum.MealStatusPublished, enum.OrderStatusConfirmed, false},
		{"modify on locked meal", lifecycle.ActionModify, enum.MealStatusLocked, enum.OrderStatusPlaced, false},
		{"modify without order", lifecycle.ActionModify, enum.MealStatusPublished, lifecycle.NoOrder, false},

		{"cancel placed on published", lifecycle.ActionCancel, enum.MealStatusPublished, enum.OrderStatusPlaced, true},
		{"cancel confirmed on locked", lifecycle.ActionCancel, enum.MealStatusLocked, enum.OrderStatusConfirmed, true},
		{"cancel completed order", lifecycle.ActionCancel, enum.MealStatusPublished, enum.OrderStatusCompleted, false},
		{"cancel completed order on locked meal", lifecycle.ActionCancel, enum.MealStatusLocked, enum.OrderStatusCompleted, false},
		{"cancel on completed meal", lifecycle.ActionCancel, enum.MealStatusCompleted, enum.OrderStatusPlaced, false},
		{"cancel canceled order", lifecycle.ActionCancel, enum.MealStatusPublished, enum.OrderStatusCanceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lifecycle.ValidateUserAction(tt.action, tt.meal, tt.order, p)
			if tt.ok && err != nil {
				t.Fatalf("want ok, got %v", err)
			}
			if !tt.ok {
				if !errors.Is(err, lifecycle.ErrIllegalTransition) {
					t.Fatalf("want ErrIllegalTransition, got %v", err)
				}
				if fault.KindOf(err) != fault.IllegalTransition {
					t.Errorf("kind = %q, want IllegalTransition", fault.KindOf(err))
				}
			}
		})
	}
}

func TestModifyConfirmedPolicy(t *testing.T) {
	p := lifecycle.Policy{ModifyConfirmed: true}
	err := lifecycle.ValidateUserAction(lifecycle.ActionModify,
		enum.MealStatusPublished, enum.OrderStatusConfirmed, p)
	if err != nil {
		t.Fatalf("policy should permit modify on confirmed: %v", err)
	}

	// Even then, the meal must still be open.
	err = lifecycle.ValidateUserAction(lifecycle.ActionModify,
		enum.MealStatusLocked, enum.OrderStatusConfirmed, p)
	if err == nil {
		t.Fatal("locked meal must block modify regardless of policy")
	}
}

func TestValidateAdminMealAction(t *testing.T) {
	tests := []struct {
		action lifecycle.Action
		meal   string
		ok     bool
	}{
		{lifecycle.ActionPublish, enum.MealStatusUnpublished, true},
		{lifecycle.ActionPublish, enum.MealStatusPublished, false},
		{lifecycle.ActionEditMeal, enum.MealStatusPublished, true},
		{lifecycle.ActionEditMeal, enum.MealStatusLocked, false},
		{lifecycle.ActionLock, enum.MealStatusPublished, true},
		{lifecycle.ActionLock, enum.MealStatusLocked, false},
		{lifecycle.ActionUnlock, enum.MealStatusLocked, true},
		{lifecycle.ActionUnlock, enum.MealStatusPublished, false},
		{lifecycle.ActionComplete, enum.MealStatusLocked, true},
		{lifecycle.ActionComplete, enum.MealStatusPublished, false},
		{lifecycle.ActionAdminCancel, enum.MealStatusPublished, true},
		{lifecycle.ActionAdminCancel, enum.MealStatusLocked, true},
		{lifecycle.ActionAdminCancel, enum.MealStatusCompleted, false},
		{lifecycle.ActionAdminCancel, enum.MealStatusCanceled, false},
	}

	for _, tt := range tests {
		err := lifecycle.ValidateAdminMealAction(tt.action, tt.meal)
		if (err == nil) != tt.ok {
			t.Errorf("%s on %s: err = %v, want ok=%v", tt.action, tt.meal, err, tt.ok)
		}
	}
}

func TestValidateAdminOrderAction(t *testing.T) {
	if err := lifecycle.ValidateAdminOrderAction(lifecycle.ActionConfirmOrder, enum.OrderStatusPlaced); err != nil {
		t.Errorf("confirm placed: %v", err)
	}
	if err := lifecycle.ValidateAdminOrderAction(lifecycle.ActionConfirmOrder, enum.OrderStatusConfirmed); err == nil {
		t.Error("confirm confirmed should fail")
	}
	if err := lifecycle.ValidateAdminOrderAction(lifecycle.ActionCompleteOrder, enum.OrderStatusConfirmed); err != nil {
		t.Errorf("complete confirmed: %v", err)
	}
	if err := lifecycle.ValidateAdminOrderAction(lifecycle.ActionCompleteOrder, enum.OrderStatusPlaced); err == nil {
		t.Error("complete placed should fail")
	}
}

func TestTransitionTables(t *testing.T) {
	// completed and canceled are terminal for both machines.
	for _, s := range []string{enum.MealStatusCompleted, enum.MealStatusCanceled} {
		if !lifecycle.MealTerminal(s) {
			t.Errorf("meal %s should be terminal", s)
		}
	}
	for _, s := range []string{enum.OrderStatusCompleted, enum.OrderStatusCanceled} {
		if !lifecycle.OrderTerminal(s) {
			t.Errorf("order %s should be terminal", s)
		}
	}
	if lifecycle.MealTerminal(enum.MealStatusLocked) {
		t.Error("locked is not terminal")
	}
	if lifecycle.CanTransitionMeal(enum.MealStatusCompleted, enum.MealStatusCanceled) {
		t.Error("completed meal must not be cancelable")
	}
	if !lifecycle.CanTransitionMeal(enum.MealStatusLocked, enum.MealStatusPublished) {
		t.Error("unlock transition missing")
	}
	if lifecycle.CanTransitionOrder(enum.OrderStatusPlaced, enum.OrderStatusCompleted) {
		t.Error("placed must pass through confirmed before completed")
	}
}

func TestActionEnumeration(t *testing.T) {
	got := lifecycle.UserActions(enum.MealStatusPublished, lifecycle.NoOrder, lifecycle.DefaultPolicy())
	if len(got) != 1 || got[0] != lifecycle.ActionPlace {
		t.Errorf("UserActions(published, none) = %v, want [place]", got)
	}

	got = lifecycle.UserActions(enum.MealStatusPublished, enum.OrderStatusPlaced, lifecycle.DefaultPolicy())
	want := map[lifecycle.Action]bool{lifecycle.ActionModify: true, lifecycle.ActionCancel: true}
	if len(got) != 2 || !want[got[0]] || !want[got[1]] {
		t.Errorf("UserActions(published, placed) = %v, want [modify cancel]", got)
	}

	// View-only states expose nothing.
	for _, meal := range []string{enum.MealStatusCompleted, enum.MealStatusCanceled} {
		if acts := lifecycle.UserActions(meal, enum.OrderStatusPlaced, lifecycle.DefaultPolicy()); len(acts) != 0 {
			t.Errorf("UserActions(%s, placed) = %v, want none", meal, acts)
		}
	}

	admin := lifecycle.AdminMealActions(enum.MealStatusLocked)
	wantAdmin := map[lifecycle.Action]bool{
		lifecycle.ActionUnlock: true, lifecycle.ActionComplete: true, lifecycle.ActionAdminCancel: true,
	}
	if len(admin) != 3 {
		t.Fatalf("AdminMealActions(locked) = %v", admin)
	}
	for _, a := range admin {
		if !wantAdmin[a] {
			t.Errorf("unexpected admin action %s", a)
		}
	}
}

func TestObligations(t *testing.T) {
	ob, ok := lifecycle.ObligationOf(lifecycle.ActionCancel)
	if !ok || ob != lifecycle.ObligationRefundOrder {
		t.Errorf("cancel obligation = %v %v", ob, ok)
	}
	ob, ok = lifecycle.ObligationOf(lifecycle.ActionAdminCancel)
	if !ok || ob != lifecycle.ObligationRefundAllOrders {
		t.Errorf("admin cancel obligation = %v %v", ob, ok)
	}
	if _, ok := lifecycle.ObligationOf(lifecycle.ActionLock); ok {
		t.Error("lock has no wallet obligation")
	}
}
