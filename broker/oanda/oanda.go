// Package oanda is the OANDA v20 REST connector for FX instruments.
package oanda

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/signal"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Connector talks to one OANDA account. All calls run through a circuit
// breaker; while the breaker is open the connector reports Degraded and
// requests fail fast without hitting the wire.
type Connector struct {
	client    *client
	accountID string
	connected bool
}

// New builds a connector against the practice or live environment.
func New(token, accountID string, practice bool) *Connector {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}
	return &Connector{
		client:    newClient(baseURL, token),
		accountID: accountID,
	}
}

// NewWithBaseURL is for tests pointed at a local server.
func NewWithBaseURL(token, accountID, baseURL string) *Connector {
	return &Connector{
		client:    newClient(baseURL, token),
		accountID: accountID,
	}
}

func (c *Connector) Name() string { return "OANDA" }

// Connect verifies credentials by fetching the account summary once.
func (c *Connector) Connect(ctx context.Context) error {
	if _, err := c.summary(ctx); err != nil {
		return fmt.Errorf("oanda connect: %w", err)
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
	if _, err := c.summary(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// accountSummary is the subset of the v20 summary payload we read. OANDA
// sends decimals as strings.
type accountSummary struct {
	Balance         string `json:"balance"`
	NAV             string `json:"NAV"`
	MarginUsed      string `json:"marginUsed"`
	MarginAvailable string `json:"marginAvailable"`
	Currency        string `json:"currency"`
}

func (c *Connector) summary(ctx context.Context) (*accountSummary, error) {
	var resp struct {
		Account accountSummary `json:"account"`
	}
	path := fmt.Sprintf("/v3/accounts/%s/summary", c.accountID)
	if err := c.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

func (c *Connector) Balance(ctx context.Context, _ string) (float64, error) {
	s, err := c.summary(ctx)
	if err != nil {
		return 0, err
	}
	return parseDecimal(s.Balance)
}

func (c *Connector) NAV(ctx context.Context) (float64, error) {
	s, err := c.summary(ctx)
	if err != nil {
		return 0, err
	}
	return parseDecimal(s.NAV)
}

func (c *Connector) MarginUsed(ctx context.Context) (float64, error) {
	s, err := c.summary(ctx)
	if err != nil {
		return 0, err
	}
	return parseDecimal(s.MarginUsed)
}

func (c *Connector) MarginAvailable(ctx context.Context) (float64, error) {
	s, err := c.summary(ctx)
	if err != nil {
		return 0, err
	}
	return parseDecimal(s.MarginAvailable)
}

func (c *Connector) OpenPositions(ctx context.Context) ([]broker.Position, error) {
	var resp struct {
		Trades []struct {
			ID           string `json:"id"`
			Instrument   string `json:"instrument"`
			CurrentUnits string `json:"currentUnits"`
			UnrealizedPL string `json:"unrealizedPL"`
		} `json:"trades"`
	}
	path := fmt.Sprintf("/v3/accounts/%s/openTrades", c.accountID)
	if err := c.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	out := make([]broker.Position, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		units, err := parseDecimal(t.CurrentUnits)
		if err != nil {
			return nil, fmt.Errorf("trade %s units: %w", t.ID, err)
		}
		pl, _ := parseDecimal(t.UnrealizedPL)
		side := signal.Buy
		if units < 0 {
			side = signal.Sell
		}
		out = append(out, broker.Position{
			ID:           t.ID,
			Symbol:       t.Instrument,
			Side:         side,
			Units:        units,
			UnrealizedPL: pl,
			Venue:        c.Name(),
		})
	}
	return out, nil
}

// marketOrder is the v20 order body. Units and prices travel as strings.
type marketOrder struct {
	Type             string            `json:"type"`
	Instrument       string            `json:"instrument"`
	Units            string            `json:"units"`
	TimeInForce      string            `json:"timeInForce"`
	PositionFill     string            `json:"positionFill"`
	StopLossOnFill   *priceDetail      `json:"stopLossOnFill,omitempty"`
	TakeProfitOnFill *priceDetail      `json:"takeProfitOnFill,omitempty"`
	ClientExtensions *clientExtensions `json:"clientExtensions,omitempty"`
}

type priceDetail struct {
	Price string `json:"price"`
}

type clientExtensions struct {
	ID string `json:"id"`
}

// PlaceOrder submits a FOK market order with the stop and target attached on
// fill. ClientOrderID rides in clientExtensions.id, so a replayed token is
// rejected venue-side as a duplicate order id.
func (c *Connector) PlaceOrder(ctx context.Context, spec broker.OrderSpec) (broker.OrderResult, error) {
	units := spec.Units
	if spec.Side == signal.Sell && units > 0 {
		units = -units
	}

	order := marketOrder{
		Type:         "MARKET",
		Instrument:   spec.Symbol,
		Units:        strconv.FormatInt(int64(math.Round(units)), 10),
		TimeInForce:  "FOK",
		PositionFill: "DEFAULT",
	}
	if spec.SL > 0 {
		order.StopLossOnFill = &priceDetail{Price: formatPrice(spec.Symbol, spec.SL)}
	}
	if spec.TP > 0 {
		order.TakeProfitOnFill = &priceDetail{Price: formatPrice(spec.Symbol, spec.TP)}
	}
	if spec.ClientOrderID != "" {
		order.ClientExtensions = &clientExtensions{ID: spec.ClientOrderID}
	}

	var resp struct {
		OrderFillTransaction *struct {
			Price       string `json:"price"`
			TradeOpened *struct {
				TradeID string `json:"tradeID"`
			} `json:"tradeOpened"`
		} `json:"orderFillTransaction"`
		OrderCancelTransaction *struct {
			Reason string `json:"reason"`
		} `json:"orderCancelTransaction"`
		OrderRejectTransaction *struct {
			RejectReason string `json:"rejectReason"`
		} `json:"orderRejectTransaction"`
	}

	path := fmt.Sprintf("/v3/accounts/%s/orders", c.accountID)
	body := map[string]marketOrder{"order": order}
	if err := c.client.post(ctx, path, body, &resp); err != nil {
		return broker.OrderResult{}, err
	}

	switch {
	case resp.OrderFillTransaction != nil:
		res := broker.OrderResult{OK: true}
		res.Price, _ = parseDecimal(resp.OrderFillTransaction.Price)
		if resp.OrderFillTransaction.TradeOpened != nil {
			res.TradeID = resp.OrderFillTransaction.TradeOpened.TradeID
		}
		return res, nil
	case resp.OrderCancelTransaction != nil:
		return broker.OrderResult{OK: false, Reason: resp.OrderCancelTransaction.Reason}, nil
	case resp.OrderRejectTransaction != nil:
		return broker.OrderResult{OK: false, Reason: resp.OrderRejectTransaction.RejectReason}, nil
	}
	return broker.OrderResult{OK: false, Reason: "NO_FILL_TRANSACTION"}, nil
}

// ModifyTrade replaces the stop and target on an open trade. Zero leaves a
// level untouched. Used by lifecycle tooling, not the decision loop.
func (c *Connector) ModifyTrade(ctx context.Context, tradeID string, instrument string, sl, tp float64) error {
	body := map[string]*priceDetail{}
	if sl > 0 {
		body["stopLoss"] = &priceDetail{Price: formatPrice(instrument, sl)}
	}
	if tp > 0 {
		body["takeProfit"] = &priceDetail{Price: formatPrice(instrument, tp)}
	}
	if len(body) == 0 {
		return nil
	}
	path := fmt.Sprintf("/v3/accounts/%s/trades/%s/orders", c.accountID, tradeID)
	return c.client.put(ctx, path, body, nil)
}

func (c *Connector) CloseTrade(ctx context.Context, tradeID string) error {
	path := fmt.Sprintf("/v3/accounts/%s/trades/%s/close", c.accountID, tradeID)
	body := map[string]string{"units": "ALL"}
	return c.client.put(ctx, path, body, nil)
}

func (c *Connector) CurrentPrice(ctx context.Context, instrument string) (float64, error) {
	var resp struct {
		Prices []struct {
			Bids []struct {
				Price string `json:"price"`
			} `json:"bids"`
			Asks []struct {
				Price string `json:"price"`
			} `json:"asks"`
		} `json:"prices"`
	}
	path := fmt.Sprintf("/v3/accounts/%s/pricing?instruments=%s", c.accountID, instrument)
	if err := c.client.get(ctx, path, &resp); err != nil {
		return 0, err
	}
	if len(resp.Prices) == 0 || len(resp.Prices[0].Bids) == 0 || len(resp.Prices[0].Asks) == 0 {
		return 0, fmt.Errorf("no pricing for %q", instrument)
	}
	bid, err := parseDecimal(resp.Prices[0].Bids[0].Price)
	if err != nil {
		return 0, err
	}
	ask, err := parseDecimal(resp.Prices[0].Asks[0].Price)
	if err != nil {
		return 0, err
	}
	return (bid + ask) / 2, nil
}

// formatPrice renders a price at the venue's tick precision: 3 decimals for
// JPY-quoted pairs, 5 for everything else.
func formatPrice(instrument string, price float64) string {
	precision := 5
	if strings.Contains(instrument, "JPY") {
		precision = 3
	}
	return strconv.FormatFloat(price, 'f', precision, 64)
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

var _ broker.Connector = (*Connector)(nil)
