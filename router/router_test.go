package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/broker/coinbase"
	"github.com/cmorgan-fx/helm/broker/paper"
	"github.com/cmorgan-fx/helm/signal"
)

// downVenue fails every account query. Used to prove per-venue error
// isolation in aggregation.
type downVenue struct {
	name string
}

func (d downVenue) Name() string                            { return d.name }
func (d downVenue) Connect(context.Context) error           { return errors.New("down") }
func (d downVenue) State() broker.State                     { return broker.Degraded }
func (d downVenue) Heartbeat(context.Context) (bool, string) { return false, "down" }
func (d downVenue) Balance(context.Context, string) (float64, error) {
	return 0, errors.New("down")
}
func (d downVenue) NAV(context.Context) (float64, error)             { return 0, errors.New("down") }
func (d downVenue) MarginUsed(context.Context) (float64, error)      { return 0, errors.New("down") }
func (d downVenue) MarginAvailable(context.Context) (float64, error) { return 0, errors.New("down") }
func (d downVenue) OpenPositions(context.Context) ([]broker.Position, error) {
	return nil, errors.New("down")
}
func (d downVenue) PlaceOrder(context.Context, broker.OrderSpec) (broker.OrderResult, error) {
	return broker.OrderResult{}, errors.New("down")
}
func (d downVenue) CloseTrade(context.Context, string) error { return errors.New("down") }
func (d downVenue) CurrentPrice(context.Context, string) (float64, error) {
	return 0, errors.New("down")
}

func TestResolveVenue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		venue  string
	}{
		{"EUR_USD", VenueOANDA},
		{"USD_JPY", VenueOANDA},
		{"BTC-USD", VenueCoinbase},
		{"ETH-USD", VenueCoinbase},
		{"AAPL", VenueIBKR},
		{"SPY", VenueIBKR},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.venue, ResolveVenue(tt.symbol))
		})
	}
}

func TestRoute_UnconfiguredVenueIsHardFailure(t *testing.T) {
	t.Parallel()

	r := New(paper.New(VenueOANDA, 10000))

	_, err := r.Route("EUR_USD")
	assert.NoError(t, err)

	_, err = r.Route("BTC-USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COINBASE not configured")
}

func TestGetPortfolioState_SumsAcrossVenues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fx := paper.New(VenueOANDA, 10000)
	require.NoError(t, fx.Connect(ctx))
	fx.SetPrice("EUR_USD", 1.10)
	_, err := fx.PlaceOrder(ctx, broker.OrderSpec{Symbol: "EUR_USD", Side: signal.Buy, Units: 1000})
	require.NoError(t, err)

	crypto := paper.New(VenueCoinbase, 5000)
	require.NoError(t, crypto.Connect(ctx))
	crypto.SetPrice("BTC-USD", 50000)
	_, err = crypto.PlaceOrder(ctx, broker.OrderSpec{Symbol: "BTC-USD", Side: signal.Buy, QuoteSize: 1000})
	require.NoError(t, err)

	r := New(fx, crypto)
	state := r.GetPortfolioState(ctx)

	assert.InDelta(t, 15000, state.TotalBalance, 1e-9)
	assert.InDelta(t, 15000, state.TotalNAV, 1e-9)
	assert.Len(t, state.Positions, 2)
	assert.ElementsMatch(t, []string{"EUR_USD", "BTC-USD"}, state.Symbols)
	assert.Greater(t, state.MarginUsed, 0.0)
	assert.InDelta(t, state.MarginUsed/state.TotalNAV, state.MarginUsedPct, 1e-9)
}

func TestGetPortfolioState_DownVenueContributesZero(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fx := paper.New(VenueOANDA, 10000)
	require.NoError(t, fx.Connect(ctx))

	r := New(fx, downVenue{name: VenueCoinbase})
	state := r.GetPortfolioState(ctx)

	assert.InDelta(t, 10000, state.TotalBalance, 1e-9, "down venue is zero, not fatal")
	assert.InDelta(t, 10000, state.TotalNAV, 1e-9)
	assert.Empty(t, state.Positions)
}

func TestGetPortfolioState_ZeroNAVHasZeroMarginPct(t *testing.T) {
	t.Parallel()

	r := New(downVenue{name: VenueOANDA})
	state := r.GetPortfolioState(context.Background())
	assert.Zero(t, state.MarginUsedPct)
}

func TestExecuteOrder_FXSizesInBaseUnits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := paper.New(VenueOANDA, 100000)
	require.NoError(t, fx.Connect(ctx))
	fx.SetPrice("EUR_USD", 1.10)

	r := New(fx)
	res, err := r.ExecuteOrder(ctx, signal.OrderPacket{
		Symbol: "EUR_USD", Direction: signal.Buy, NotionalValue: 16000,
	}, "HELM-1")
	require.NoError(t, err)
	require.True(t, res.OK)

	open, _ := fx.OpenPositions(ctx)
	require.Len(t, open, 1)
	assert.InDelta(t, 14545, open[0].Units, 1e-9, "16000 quote / 1.10 rounded")
}

func TestExecuteOrder_SpotSizesInQuote(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	crypto := paper.New(VenueCoinbase, 100000)
	require.NoError(t, crypto.Connect(ctx))
	crypto.SetPrice("BTC-USD", 50000)

	r := New(crypto)
	res, err := r.ExecuteOrder(ctx, signal.OrderPacket{
		Symbol: "BTC-USD", Direction: signal.Buy, NotionalValue: 1000,
	}, "HELM-2")
	require.NoError(t, err)
	require.True(t, res.OK)

	open, _ := crypto.OpenPositions(ctx)
	require.Len(t, open, 1)
	assert.InDelta(t, 0.02, open[0].Units, 1e-9)
}

func TestExecuteOrder_SpotSellSizesInBaseUnits(t *testing.T) {
	t.Parallel()

	// Through the real Coinbase connector: a sell must reach the wire with
	// base_size derived from the notional, never a zero size.
	var captured struct {
		Side        string `json:"side"`
		OrderConfig struct {
			MarketMarketIOC struct {
				QuoteSize string `json:"quote_size"`
				BaseSize  string `json:"base_size"`
			} `json:"market_market_ioc"`
		} `json:"order_configuration"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/brokerage/best_bid_ask":
			_, _ = w.Write([]byte(`{"pricebooks":[{"product_id":"BTC-USD","bids":[{"price":"49999"}],"asks":[{"price":"50001"}]}]}`))
		case "/api/v3/brokerage/orders":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"success":true,"success_response":{"order_id":"abc-321"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	r := New(coinbase.NewWithBaseURL("key", "secret", server.URL))
	res, err := r.ExecuteOrder(context.Background(), signal.OrderPacket{
		Symbol: "BTC-USD", Direction: signal.Sell, NotionalValue: 16000,
	}, "HELM-5")
	require.NoError(t, err)
	require.True(t, res.OK)

	assert.Equal(t, "SELL", captured.Side)
	assert.Equal(t, "0.32", captured.OrderConfig.MarketMarketIOC.BaseSize, "16000 quote / 50000 mid")
	assert.Empty(t, captured.OrderConfig.MarketMarketIOC.QuoteSize)
}

func TestExecuteOrder_EquitySizesInWholeShares(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eq := paper.New(VenueIBKR, 100000)
	require.NoError(t, eq.Connect(ctx))
	eq.SetPrice("AAPL", 230.50)

	r := New(eq)
	res, err := r.ExecuteOrder(ctx, signal.OrderPacket{
		Symbol: "AAPL", Direction: signal.Buy, NotionalValue: 16000,
	}, "HELM-3")
	require.NoError(t, err)
	require.True(t, res.OK)

	open, _ := eq.OpenPositions(ctx)
	require.Len(t, open, 1)
	assert.InDelta(t, 69, open[0].Units, 1e-9, "floor(16000/230.50)")
}

func TestExecuteOrder_RoutingFailureIsHard(t *testing.T) {
	t.Parallel()

	r := New(paper.New(VenueIBKR, 1000))
	_, err := r.ExecuteOrder(context.Background(), signal.OrderPacket{
		Symbol: "EUR_USD", Direction: signal.Buy, NotionalValue: 1000,
	}, "HELM-4")
	assert.Error(t, err)
}

func TestFlattenAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fx := paper.New(VenueOANDA, 100000)
	require.NoError(t, fx.Connect(ctx))
	fx.SetPrice("EUR_USD", 1.10)
	fx.SetPrice("GBP_USD", 1.27)
	for _, sym := range []string{"EUR_USD", "GBP_USD"} {
		_, err := fx.PlaceOrder(ctx, broker.OrderSpec{Symbol: sym, Side: signal.Buy, Units: 1000})
		require.NoError(t, err)
	}

	r := New(fx, downVenue{name: VenueCoinbase})
	closed := r.FlattenAll(ctx)

	assert.Equal(t, 2, closed[VenueOANDA])
	assert.Equal(t, 0, closed[VenueCoinbase])

	open, _ := fx.OpenPositions(ctx)
	assert.Empty(t, open)
}
