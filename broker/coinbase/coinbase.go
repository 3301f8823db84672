// Package coinbase is the Coinbase Advanced Trade connector for spot crypto
// products. Spot holdings have no leverage, so the connector reports zero
// margin used and its full balance as available; the cross-venue aggregate
// stays correct without special-casing upstream.
package coinbase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/pkg/id"
	"github.com/cmorgan-fx/helm/signal"
)

const DefaultBaseURL = "https://api.coinbase.com"

// quoteCurrency is the currency accounts are valued in.
const quoteCurrency = "USD"

type Connector struct {
	client    *client
	connected bool
}

func New(apiKey, apiSecret string) *Connector {
	return &Connector{client: newClient(DefaultBaseURL, apiKey, apiSecret)}
}

// NewWithBaseURL is for tests pointed at a local server.
func NewWithBaseURL(apiKey, apiSecret, baseURL string) *Connector {
	return &Connector{client: newClient(baseURL, apiKey, apiSecret)}
}

func (c *Connector) Name() string { return "COINBASE" }

func (c *Connector) Connect(ctx context.Context) error {
	if _, err := c.accounts(ctx); err != nil {
		return fmt.Errorf("coinbase connect: %w", err)
	}
	c.connected = true
	return nil
}

func (c *Connector) State() broker.State {
	if !c.connected {
		return broker.Disconnected
	}
	if c.client.breaker.State() == gobreaker.StateOpen {
		return broker.Degraded
	}
	return broker.Connected
}

func (c *Connector) Heartbeat(ctx context.Context) (bool, string) {
	if _, err := c.accounts(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

type account struct {
	Currency         string `json:"currency"`
	AvailableBalance struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"available_balance"`
}

func (c *Connector) accounts(ctx context.Context) ([]account, error) {
	var resp struct {
		Accounts []account `json:"accounts"`
	}
	if err := c.client.get(ctx, "/api/v3/brokerage/accounts", &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (c *Connector) Balance(ctx context.Context, currency string) (float64, error) {
	if currency == "" {
		currency = quoteCurrency
	}
	accts, err := c.accounts(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range accts {
		if a.Currency == currency {
			return strconv.ParseFloat(a.AvailableBalance.Value, 64)
		}
	}
	return 0, nil
}

// NAV values the quote-currency account plus every spot holding at its
// current best bid.
func (c *Connector) NAV(ctx context.Context) (float64, error) {
	accts, err := c.accounts(ctx)
	if err != nil {
		return 0, err
	}

	var nav float64
	for _, a := range accts {
		units, err := strconv.ParseFloat(a.AvailableBalance.Value, 64)
		if err != nil || units == 0 {
			continue
		}
		if a.Currency == quoteCurrency {
			nav += units
			continue
		}
		price, err := c.CurrentPrice(ctx, a.Currency+"-"+quoteCurrency)
		if err != nil {
			// A holding with no product book contributes nothing rather
			// than failing the whole valuation.
			continue
		}
		nav += units * price
	}
	return nav, nil
}

// MarginUsed is always zero: spot positions are fully funded.
func (c *Connector) MarginUsed(context.Context) (float64, error) { return 0, nil }

func (c *Connector) MarginAvailable(ctx context.Context) (float64, error) {
	return c.Balance(ctx, quoteCurrency)
}

// OpenPositions reports each non-quote holding as a long position in its
// USD product. Position IDs are the base currency; CloseTrade sells it.
func (c *Connector) OpenPositions(ctx context.Context) ([]broker.Position, error) {
	accts, err := c.accounts(ctx)
	if err != nil {
		return nil, err
	}

	var out []broker.Position
	for _, a := range accts {
		if a.Currency == quoteCurrency {
			continue
		}
		units, err := strconv.ParseFloat(a.AvailableBalance.Value, 64)
		if err != nil || units <= 0 {
			continue
		}
		out = append(out, broker.Position{
			ID:     a.Currency,
			Symbol: a.Currency + "-" + quoteCurrency,
			Side:   signal.Buy,
			Units:  units,
			Venue:  c.Name(),
		})
	}
	return out, nil
}

type orderConfiguration struct {
	MarketMarketIOC marketIOC `json:"market_market_ioc"`
}

type marketIOC struct {
	QuoteSize string `json:"quote_size,omitempty"`
	BaseSize  string `json:"base_size,omitempty"`
}

type orderRequest struct {
	ClientOrderID string             `json:"client_order_id"`
	ProductID     string             `json:"product_id"`
	Side          string             `json:"side"`
	OrderConfig   orderConfiguration `json:"order_configuration"`
}

type orderResponse struct {
	Success         bool   `json:"success"`
	SuccessResponse *struct {
		OrderID string `json:"order_id"`
	} `json:"success_response"`
	ErrorResponse *struct {
		Error        string `json:"error"`
		ErrorDetails string `json:"error_details"`
	} `json:"error_response"`
}

// PlaceOrder submits a market IOC order. Buys are sized in quote currency,
// sells in base units. The venue enforces client_order_id uniqueness, so a
// replayed token cannot fill twice.
func (c *Connector) PlaceOrder(ctx context.Context, spec broker.OrderSpec) (broker.OrderResult, error) {
	req := orderRequest{
		ClientOrderID: spec.ClientOrderID,
		ProductID:     spec.Symbol,
		Side:          string(spec.Side),
	}
	if spec.Side == signal.Sell {
		req.OrderConfig.MarketMarketIOC.BaseSize = formatSize(spec.Units)
	} else {
		req.OrderConfig.MarketMarketIOC.QuoteSize = formatSize(spec.QuoteSize)
	}

	var resp orderResponse
	if err := c.client.post(ctx, "/api/v3/brokerage/orders", req, &resp); err != nil {
		return broker.OrderResult{}, err
	}

	if !resp.Success {
		reason := "ORDER_REJECTED"
		if resp.ErrorResponse != nil {
			reason = resp.ErrorResponse.Error
			if resp.ErrorResponse.ErrorDetails != "" {
				reason += ": " + resp.ErrorResponse.ErrorDetails
			}
		}
		return broker.OrderResult{OK: false, Reason: reason}, nil
	}

	res := broker.OrderResult{OK: true}
	if resp.SuccessResponse != nil {
		res.TradeID = resp.SuccessResponse.OrderID
	}
	return res, nil
}

// CloseTrade liquidates a holding: tradeID is the base currency reported by
// OpenPositions, and the whole available balance is sold at market.
func (c *Connector) CloseTrade(ctx context.Context, tradeID string) error {
	units, err := c.Balance(ctx, tradeID)
	if err != nil {
		return err
	}
	if units <= 0 {
		return fmt.Errorf("close trade: no %s balance to sell", tradeID)
	}

	res, err := c.PlaceOrder(ctx, broker.OrderSpec{
		Symbol:        tradeID + "-" + quoteCurrency,
		Side:          signal.Sell,
		Units:         units,
		ClientOrderID: id.OrderID(),
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("close trade %s: %s", tradeID, res.Reason)
	}
	return nil
}

func (c *Connector) CurrentPrice(ctx context.Context, instrument string) (float64, error) {
	var resp struct {
		Pricebooks []struct {
			ProductID string `json:"product_id"`
			Bids      []struct {
				Price string `json:"price"`
			} `json:"bids"`
			Asks []struct {
				Price string `json:"price"`
			} `json:"asks"`
		} `json:"pricebooks"`
	}
	path := "/api/v3/brokerage/best_bid_ask?product_ids=" + instrument
	if err := c.client.get(ctx, path, &resp); err != nil {
		return 0, err
	}
	if len(resp.Pricebooks) == 0 || len(resp.Pricebooks[0].Bids) == 0 || len(resp.Pricebooks[0].Asks) == 0 {
		return 0, fmt.Errorf("no pricebook for %q", instrument)
	}
	pb := resp.Pricebooks[0]
	bid, err := strconv.ParseFloat(pb.Bids[0].Price, 64)
	if err != nil {
		return 0, err
	}
	ask, err := strconv.ParseFloat(pb.Asks[0].Price, 64)
	if err != nil {
		return 0, err
	}
	return (bid + ask) / 2, nil
}

// formatSize trims the trailing zeros the venue rejects.
func formatSize(v float64) string {
	s := strconv.FormatFloat(v, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

var _ broker.Connector = (*Connector)(nil)
