package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/lifecycle"
	"github.com/ganghaofan/mealorder/internal/money"
	"github.com/ganghaofan/mealorder/internal/session"
)

// Errors returned by the admin service.
var (
	ErrAdminRequired = errors.New("admin mode required")
	ErrAddonInUse    = errors.New("addon is configured on a meal")
	ErrAmount        = errors.New("amount must be positive")
	ErrReason        = errors.New("reason is required")
	ErrNoSelection   = errors.New("nothing selected")
)

// AdminAPI is the slice of the API client the admin flows need.
type AdminAPI interface {
	CreateMeal(ctx context.Context, date, slot string, form domain.MealForm) (domain.Meal, error)
	UpdateMeal(ctx context.Context, mealID int64, form domain.MealForm) (domain.Meal, error)
	LockMeal(ctx context.Context, mealID int64) error
	UnlockMeal(ctx context.Context, mealID int64) error
	CompleteMeal(ctx context.Context, mealID int64) error
	CancelMeal(ctx context.Context, mealID int64, reason string) error
	MealStatistics(ctx context.Context, mealID int64) (domain.MealOrderStats, error)
	ListMealOrders(ctx context.Context, mealID int64) ([]domain.Order, error)
	ListAdminAddons(ctx context.Context, status string) ([]domain.Addon, error)
	CreateAddon(ctx context.Context, a domain.Addon) (domain.Addon, error)
	DeleteAddon(ctx context.Context, addonID int64) error
	ListUsers(ctx context.Context, status string) ([]domain.User, error)
	RechargeUser(ctx context.Context, userID int64, amount money.Minor, reason string) error
	DeductUser(ctx context.Context, userID int64, amount money.Minor, reason string) error
	BatchConfirmOrders(ctx context.Context, orderIDs []int64) error
	BatchCompleteOrders(ctx context.Context, orderIDs []int64) error
	SuspendUsers(ctx context.Context, userIDs []int64) error
	ActivateUsers(ctx context.Context, userIDs []int64) error
}

// AdminService gates every management flow on the session's admin mode
// and validates locally before the single upstream call.
type AdminService struct {
	api         AdminAPI
	sess        *session.Session
	quantityCap int
	log         *zap.Logger
}

// NewAdminService creates an AdminService. logger may be nil.
func NewAdminService(api AdminAPI, sess *session.Session, quantityCap int, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{api: api, sess: sess, quantityCap: quantityCap, log: logger}
}

// guard rejects the call unless the session has admin mode switched on.
// The server enforces this too; failing here keeps the error local.
func (s *AdminService) guard() error {
	if !s.sess.AdminModeEnabled() {
		return fault.Wrap(fault.IllegalTransition, "admin", ErrAdminRequired)
	}
	return nil
}

// PublishMeal creates and publishes a meal for one (date, slot).
func (s *AdminService) PublishMeal(ctx context.Context, date, slot string, form domain.MealForm) (domain.Meal, error) {
	if err := s.guard(); err != nil {
		return domain.Meal{}, err
	}
	if err := domain.ValidateSlotDate(date, slot); err != nil {
		return domain.Meal{}, fault.Wrap(fault.InvalidSelection, "validate", err)
	}
	if err := form.Validate(s.quantityCap); err != nil {
		return domain.Meal{}, fault.Wrap(fault.InvalidSelection, "validate", err)
	}
	meal, err := s.api.CreateMeal(ctx, date, slot, form)
	if err != nil {
		return domain.Meal{}, err
	}
	s.log.Info("meal published",
		zap.Int64("meal_id", meal.ID),
		zap.String("date", date),
		zap.String("slot", slot))
	return meal, nil
}

// EditMeal replaces a published meal's form fields. Orders already placed
// keep their locked-in totals upstream.
func (s *AdminService) EditMeal(ctx context.Context, meal domain.Meal, form domain.MealForm) (domain.Meal, error) {
	if err := s.guard(); err != nil {
		return domain.Meal{}, err
	}
	if err := lifecycle.ValidateAdminMealAction(lifecycle.ActionEditMeal, meal.Status); err != nil {
		return domain.Meal{}, err
	}
	if err := form.Validate(s.quantityCap); err != nil {
		return domain.Meal{}, fault.Wrap(fault.InvalidSelection, "validate", err)
	}
	return s.api.UpdateMeal(ctx, meal.ID, form)
}

// MealAction performs one lifecycle action on a meal and returns the
// side effect the server carries out with it, if any.
func (s *AdminService) MealAction(ctx context.Context, meal domain.Meal, action lifecycle.Action, reason string) (lifecycle.Obligation, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	if err := lifecycle.ValidateAdminMealAction(action, meal.Status); err != nil {
		return "", err
	}

	var err error
	switch action {
	case lifecycle.ActionLock:
		err = s.api.LockMeal(ctx, meal.ID)
	case lifecycle.ActionUnlock:
		err = s.api.UnlockMeal(ctx, meal.ID)
	case lifecycle.ActionComplete:
		err = s.api.CompleteMeal(ctx, meal.ID)
	case lifecycle.ActionAdminCancel:
		err = s.api.CancelMeal(ctx, meal.ID, reason)
	default:
		return "", fault.Wrap(fault.IllegalTransition, string(action), lifecycle.ErrUnknownAction)
	}
	if err != nil {
		return "", err
	}

	s.log.Info("meal action applied",
		zap.Int64("meal_id", meal.ID),
		zap.String("action", string(action)))
	ob, _ := lifecycle.ObligationOf(action)
	return ob, nil
}

// Statistics fetches the order roll-up for one meal.
func (s *AdminService) Statistics(ctx context.Context, mealID int64) (domain.MealOrderStats, error) {
	if err := s.guard(); err != nil {
		return domain.MealOrderStats{}, err
	}
	return s.api.MealStatistics(ctx, mealID)
}

// MealOrders lists every order on a meal for the admin detail view.
func (s *AdminService) MealOrders(ctx context.Context, mealID int64) ([]domain.Order, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ListMealOrders(ctx, mealID)
}

// Addons lists addon definitions, optionally filtered by status.
func (s *AdminService) Addons(ctx context.Context, status string) ([]domain.Addon, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ListAdminAddons(ctx, status)
}

// CreateAddon validates and creates an addon definition.
func (s *AdminService) CreateAddon(ctx context.Context, a domain.Addon) (domain.Addon, error) {
	if err := s.guard(); err != nil {
		return domain.Addon{}, err
	}
	if err := a.Validate(); err != nil {
		return domain.Addon{}, fault.Wrap(fault.InvalidSelection, "validate", err)
	}
	return s.api.CreateAddon(ctx, a)
}

// DeleteAddon removes an addon definition. meals is the caller's loaded
// view of the calendar; an addon still configured on any of them is
// rejected before the request goes out.
func (s *AdminService) DeleteAddon(ctx context.Context, addonID int64, meals []domain.Meal) error {
	if err := s.guard(); err != nil {
		return err
	}
	for _, m := range meals {
		if _, used := m.AddonConfig[addonID]; used {
			return fault.Wrap(fault.InvalidSelection, "delete addon", ErrAddonInUse)
		}
	}
	return s.api.DeleteAddon(ctx, addonID)
}

// Users lists accounts, optionally filtered by status.
func (s *AdminService) Users(ctx context.Context, status string) ([]domain.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ListUsers(ctx, status)
}

// AdjustBalance recharges (deduct=false) or deducts (deduct=true) a
// user's wallet. The amount is always positive; direction comes from the
// flag.
func (s *AdminService) AdjustBalance(ctx context.Context, userID int64, amount money.Minor, reason string, deduct bool) error {
	if err := s.guard(); err != nil {
		return err
	}
	if amount <= 0 {
		return fault.Wrap(fault.InvalidSelection, "adjust balance", ErrAmount)
	}
	if reason == "" {
		return fault.Wrap(fault.InvalidSelection, "adjust balance", ErrReason)
	}
	if deduct {
		return s.api.DeductUser(ctx, userID, amount, reason)
	}
	return s.api.RechargeUser(ctx, userID, amount, reason)
}

// ConfirmOrders batch-confirms placed orders. Orders in any other state
// are rejected up front so the batch either all applies or never leaves.
func (s *AdminService) ConfirmOrders(ctx context.Context, orders []domain.Order) error {
	return s.batchOrderAction(ctx, orders, lifecycle.ActionConfirmOrder, s.api.BatchConfirmOrders)
}

// CompleteOrders batch-completes confirmed orders.
func (s *AdminService) CompleteOrders(ctx context.Context, orders []domain.Order) error {
	return s.batchOrderAction(ctx, orders, lifecycle.ActionCompleteOrder, s.api.BatchCompleteOrders)
}

func (s *AdminService) batchOrderAction(ctx context.Context, orders []domain.Order, action lifecycle.Action, call func(context.Context, []int64) error) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(orders) == 0 {
		return fault.Wrap(fault.InvalidSelection, "batch", ErrNoSelection)
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		if err := lifecycle.ValidateAdminOrderAction(action, o.Status); err != nil {
			return err
		}
		ids = append(ids, o.ID)
	}
	return call(ctx, ids)
}

// SetUsersActive suspends (active=false) or reactivates (active=true) a
// batch of accounts.
func (s *AdminService) SetUsersActive(ctx context.Context, userIDs []int64, active bool) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return fault.Wrap(fault.InvalidSelection, "batch", ErrNoSelection)
	}
	if active {
		return s.api.ActivateUsers(ctx, userIDs)
	}
	return s.api.SuspendUsers(ctx, userIDs)
}
