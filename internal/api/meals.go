package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ganghaofan/mealorder/internal/domain"
)

// ListMeals returns the meals within [start, end], both ends inclusive.
func (c *Client) ListMeals(ctx context.Context, start, end time.Time) ([]domain.Meal, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(domain.DateLayout))
	q.Set("end_date", end.Format(domain.DateLayout))

	var data struct {
		Meals []mealWire `json:"meals"`
	}
	if err := c.do(ctx, http.MethodGet, "/meals", q, nil, &data); err != nil {
		return nil, err
	}

	meals := make([]domain.Meal, 0, len(data.Meals))
	for _, w := range data.Meals {
		m, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// GetMeal returns one meal by id.
func (c *Client) GetMeal(ctx context.Context, mealID int64) (domain.Meal, error) {
	var w mealWire
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/meals/%d", mealID), nil, nil, &w); err != nil {
		return domain.Meal{}, err
	}
	return w.toDomain()
}
