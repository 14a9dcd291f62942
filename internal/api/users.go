package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/money"
)

// Me returns the caller's profile, wallet balance included.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var w userWire
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &w); err != nil {
		return domain.User{}, err
	}
	return w.toDomain()
}

type rechargeRequest struct {
	// Yuan crosses the wire as a bare JSON number.
	AmountYuan json.Number `json:"amount_yuan"`
}

// Recharge tops up the caller's wallet and returns the updated profile.
func (c *Client) Recharge(ctx context.Context, amount money.Minor) (domain.User, error) {
	body := rechargeRequest{AmountYuan: json.Number(amount.Yuan().String())}
	var w userWire
	if err := c.do(ctx, http.MethodPost, "/users/me/recharge", nil, body, &w); err != nil {
		return domain.User{}, err
	}
	return w.toDomain()
}

// ListTransactions returns the caller's wallet ledger, newest first,
// optionally filtered by transaction type.
func (c *Client) ListTransactions(ctx context.Context, txType string) ([]domain.Transaction, error) {
	var q url.Values
	if txType != "" {
		q = url.Values{}
		q.Set("type", txType)
	}

	var data struct {
		Transactions []transactionWire `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me/transactions", q, nil, &data); err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(data.Transactions))
	for _, w := range data.Transactions {
		tx, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
