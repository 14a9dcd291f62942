package enum

// ── State machines (authoritative transitions live upstream) ──

const (
	MealStatusUnpublished = "unpublished"
	MealStatusPublished   = "published"
	MealStatusLocked      = "locked"
	MealStatusCompleted   = "completed"
	MealStatusCanceled    = "canceled"
)

const (
	OrderStatusPlaced    = "placed"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

const (
	AddonStatusActive  = "active"
	AddonStatusDeleted = "deleted"
)

// ── Keys ──

const (
	SlotLunch  = "lunch"
	SlotDinner = "dinner"
)

// ── Wallet transaction types ──

const (
	TxRecharge       = "recharge"
	TxOrderPayment   = "order_payment"
	TxOrderRefund    = "order_refund"
	TxAdminDeduction = "admin_deduction"
	TxAdminRecharge  = "admin_recharge"
)

// ── Calendar cell display states ──

const (
	CellAvailable   = "available"
	CellOrdered     = "ordered"
	CellLocked      = "locked"
	CellUnpublished = "unpublished"
)

// ValidMealStatus reports whether s is a known meal lifecycle state.
func ValidMealStatus(s string) bool {
	switch s {
	case MealStatusUnpublished, MealStatusPublished, MealStatusLocked,
		MealStatusCompleted, MealStatusCanceled:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is a known order lifecycle state.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed,
		OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// ValidSlot reports whether s is a known meal slot.
func ValidSlot(s string) bool {
	return s == SlotLunch || s == SlotDinner
}
