package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ganghaofan/mealorder/internal/domain"
)

type createOrderRequest struct {
	MealID          int64          `json:"meal_id"`
	AddonSelections map[string]int `json:"addon_selections"`
}

type updateOrderRequest struct {
	AddonSelections map[string]int `json:"addon_selections"`
}

// CreateOrder places an order for a meal. The service debits the wallet
// and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, mealID int64, sel domain.Selections) (domain.Order, error) {
	body := createOrderRequest{MealID: mealID, AddonSelections: wireSelections(sel)}
	var w orderWire
	if err := c.do(ctx, http.MethodPost, "/orders", nil, body, &w); err != nil {
		return domain.Order{}, err
	}
	return w.toDomain()
}

// UpdateOrder replaces the addon selections of an existing order. The
// service settles the price difference against the wallet.
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, sel domain.Selections) (domain.Order, error) {
	body := updateOrderRequest{AddonSelections: wireSelections(sel)}
	var w orderWire
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), nil, body, &w); err != nil {
		return domain.Order{}, err
	}
	return w.toDomain()
}

// CancelOrder cancels an order; the service refunds its total to the
// wallet.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, nil, nil)
}

// MyOrderForMeal returns the caller's live order for a meal, or nil when
// none exists.
func (c *Client) MyOrderForMeal(ctx context.Context, mealID int64) (*domain.Order, error) {
	var w orderWire
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/my-order/%d", mealID), nil, nil, &w)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	// The service answers success with a null order_status when the user
	// never ordered.
	if w.status() == "" {
		return nil, nil
	}
	order, err := w.toDomain()
	if err != nil {
		return nil, err
	}
	if order.MealID == 0 {
		order.MealID = mealID
	}
	return &order, nil
}

// ListMyOrders returns the caller's orders, optionally filtered by
// status.
func (c *Client) ListMyOrders(ctx context.Context, status string) ([]domain.Order, error) {
	var q url.Values
	if status != "" {
		q = url.Values{}
		q.Set("status", status)
	}

	var data struct {
		Orders []orderWire `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/my", q, nil, &data); err != nil {
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
