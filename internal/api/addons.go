package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ganghaofan/mealorder/internal/domain"
)

type addonList struct {
	Addons []addonWire `json:"addons"`
}

func (l addonList) toDomain() ([]domain.Addon, error) {
	addons := make([]domain.Addon, 0, len(l.Addons))
	for _, w := range l.Addons {
		a, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, nil
}

// ListAddons returns addon definitions by id, preserving service order.
// An empty ids slice returns nothing without a network call.
func (c *Client) ListAddons(ctx context.Context, ids []int64) ([]domain.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	q := url.Values{}
	q.Set("addon_ids", strings.Join(parts, ","))

	var data addonList
	if err := c.do(ctx, http.MethodGet, "/addons", q, nil, &data); err != nil {
		return nil, err
	}
	return data.toDomain()
}
