package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/money"
)

// Admin endpoints. The service enforces the admin privilege on every one
// of these; the client-side admin-mode toggle only decides whether a UI
// offers them.

type createMealRequest struct {
	Date           string         `json:"date"`
	Slot           string         `json:"slot"`
	Description    string         `json:"description"`
	BasePriceCents int64          `json:"base_price_cents"`
	AddonConfig    map[string]int `json:"addon_config"`
	MaxOrders      int            `json:"max_orders"`
}

type updateMealRequest struct {
	Description    string         `json:"description"`
	BasePriceCents int64          `json:"base_price_cents"`
	AddonConfig    map[string]int `json:"addon_config"`
	MaxOrders      int            `json:"max_orders"`
}

// CreateMeal publishes a meal for a (date, slot).
func (c *Client) CreateMeal(ctx context.Context, date, slot string, form domain.MealForm) (domain.Meal, error) {
	body := createMealRequest{
		Date:           date,
		Slot:           slot,
		Description:    form.Description,
		BasePriceCents: int64(form.BasePrice),
		AddonConfig:    wireAddonConfig(form.AddonConfig),
		MaxOrders:      form.MaxOrders,
	}
	var w mealWire
	if err := c.do(ctx, http.MethodPost, "/admin/meals", nil, body, &w); err != nil {
		return domain.Meal{}, err
	}
	return w.toDomain()
}

// UpdateMeal replaces the editable fields of a meal.
func (c *Client) UpdateMeal(ctx context.Context, mealID int64, form domain.MealForm) (domain.Meal, error) {
	body := updateMealRequest{
		Description:    form.Description,
		BasePriceCents: int64(form.BasePrice),
		AddonConfig:    wireAddonConfig(form.AddonConfig),
		MaxOrders:      form.MaxOrders,
	}
	var w mealWire
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/meals/%d", mealID), nil, body, &w); err != nil {
		return domain.Meal{}, err
	}
	return w.toDomain()
}

// LockMeal stops ordering on a published meal.
func (c *Client) LockMeal(ctx context.Context, mealID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/meals/%d/lock", mealID), nil, nil, nil)
}

// UnlockMeal reopens a locked meal.
func (c *Client) UnlockMeal(ctx context.Context, mealID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/meals/%d/unlock", mealID), nil, nil, nil)
}

// CompleteMeal finishes a locked meal.
func (c *Client) CompleteMeal(ctx context.Context, mealID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/meals/%d/complete", mealID), nil, nil, nil)
}

type cancelMealRequest struct {
	CancelReason string `json:"cancel_reason"`
}

// CancelMeal cancels a meal; the service refunds every non-canceled
// order on it.
func (c *Client) CancelMeal(ctx context.Context, mealID int64, reason string) error {
	body := cancelMealRequest{CancelReason: reason}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/meals/%d", mealID), nil, body, nil)
}

// MealStatistics returns order totals for one meal.
func (c *Client) MealStatistics(ctx context.Context, mealID int64) (domain.MealOrderStats, error) {
	var data struct {
		OrderStatistics statsWire `json:"order_statistics"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/meals/%d/statistics", mealID), nil, nil, &data); err != nil {
		return domain.MealOrderStats{}, err
	}
	return data.OrderStatistics.toDomain(), nil
}

// ListAdminAddons returns the addon catalog, optionally filtered by
// status ("active").
func (c *Client) ListAdminAddons(ctx context.Context, status string) ([]domain.Addon, error) {
	var q url.Values
	if status != "" {
		q = url.Values{}
		q.Set("status", status)
	}
	var data addonList
	if err := c.do(ctx, http.MethodGet, "/admin/addons", q, nil, &data); err != nil {
		return nil, err
	}
	return data.toDomain()
}

type createAddonRequest struct {
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	IsDefault    bool   `json:"is_default"`
	DisplayOrder int    `json:"display_order"`
}

// CreateAddon defines a new addon. Addons are never edited in place;
// replace by creating a new one and deleting the old.
func (c *Client) CreateAddon(ctx context.Context, a domain.Addon) (domain.Addon, error) {
	body := createAddonRequest{
		Name:         a.Name,
		PriceCents:   int64(a.Price),
		IsDefault:    a.IsDefault,
		DisplayOrder: a.DisplayOrder,
	}
	var w addonWire
	if err := c.do(ctx, http.MethodPost, "/admin/addons", nil, body, &w); err != nil {
		return domain.Addon{}, err
	}
	return w.toDomain()
}

// DeleteAddon removes an addon. The service rejects the delete when any
// meal or live order still references it.
func (c *Client) DeleteAddon(ctx context.Context, addonID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/addons/%d", addonID), nil, nil, nil)
}

// ListUsers returns accounts, optionally filtered by status.
func (c *Client) ListUsers(ctx context.Context, status string) ([]domain.User, error) {
	var q url.Values
	if status != "" {
		q = url.Values{}
		q.Set("status", status)
	}
	var data struct {
		Users []userWire `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users", q, nil, &data); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(data.Users))
	for _, w := range data.Users {
		u, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

type balanceChangeRequest struct {
	AmountYuan json.Number `json:"amount_yuan"`
	Reason     string      `json:"reason"`
}

// RechargeUser credits a user's wallet with an audit reason.
func (c *Client) RechargeUser(ctx context.Context, userID int64, amount money.Minor, reason string) error {
	body := balanceChangeRequest{AmountYuan: json.Number(amount.Yuan().String()), Reason: reason}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/recharge", userID), nil, body, nil)
}

// DeductUser debits a user's wallet with an audit reason.
func (c *Client) DeductUser(ctx context.Context, userID int64, amount money.Minor, reason string) error {
	body := balanceChangeRequest{AmountYuan: json.Number(amount.Yuan().String()), Reason: reason}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/deduct", userID), nil, body, nil)
}

type batchOrdersRequest struct {
	OrderIDs []int64 `json:"order_ids"`
}

// BatchConfirmOrders confirms placed orders.
func (c *Client) BatchConfirmOrders(ctx context.Context, orderIDs []int64) error {
	return c.do(ctx, http.MethodPut, "/admin/orders/batch-confirm", nil, batchOrdersRequest{OrderIDs: orderIDs}, nil)
}

// BatchCompleteOrders marks confirmed orders completed.
func (c *Client) BatchCompleteOrders(ctx context.Context, orderIDs []int64) error {
	return c.do(ctx, http.MethodPut, "/admin/orders/batch-complete", nil, batchOrdersRequest{OrderIDs: orderIDs}, nil)
}

// ListMealOrders returns every order on one meal for the admin detail
// view.
func (c *Client) ListMealOrders(ctx context.Context, mealID int64) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("meal_id", fmt.Sprintf("%d", mealID))
	var data struct {
		Orders []orderWire `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/orders", q, nil, &data); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(data.Orders))
	for _, w := range data.Orders {
		o, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

type batchUsersRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

// SuspendUsers suspends accounts.
func (c *Client) SuspendUsers(ctx context.Context, userIDs []int64) error {
	return c.do(ctx, http.MethodPut, "/admin/users/batch-suspend", nil, batchUsersRequest{UserIDs: userIDs}, nil)
}

// ActivateUsers reactivates suspended accounts.
func (c *Client) ActivateUsers(ctx context.Context, userIDs []int64) error {
	return c.do(ctx, http.MethodPut, "/admin/users/batch-activate", nil, batchUsersRequest{UserIDs: userIDs}, nil)
}
