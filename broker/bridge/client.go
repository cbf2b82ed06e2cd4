// Package bridge implements broker.Broker against the local terminal
// sidecar: a small HTTP service fronting the MetaTrader 5 terminal, which
// only exposes a native API on its own platform. The sidecar normalizes
// account, candle, tick, position and order traffic into plain JSON.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fxsentinel/broker"
	"fxsentinel/market"
)

// Client talks to the terminal sidecar.
type Client struct {
	base string
	hc   *http.Client
}

// New builds a client for the sidecar at base (default
// http://127.0.0.1:8787 when empty).
func New(base string) *Client {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "http://127.0.0.1:8787"
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

type accountDTO struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency"`
}

func (c *Client) Account(ctx context.Context) (market.Account, error) {
	var dto accountDTO
	if err := c.get(ctx, "/account", nil, &dto); err != nil {
		return market.Account{}, fmt.Errorf("account: %w", err)
	}
	if dto.Currency == "" {
		return market.Account{}, fmt.Errorf("account: terminal returned empty currency")
	}
	return market.Account{Balance: dto.Balance, Equity: dto.Equity, Currency: dto.Currency}, nil
}

type candleDTO struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume float64 `json:"tick_volume"`
}

func (c *Client) Candles(ctx context.Context, symbol string, count int) ([]market.Candle, error) {
	var dtos []candleDTO
	q := url.Values{"symbol": {symbol}, "count": {strconv.Itoa(count)}}
	if err := c.get(ctx, "/candles", q, &dtos); err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}

	out := make([]market.Candle, len(dtos))
	for i, d := range dtos {
		out[i] = market.Candle{
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.TickVolume,
			Time:   time.Unix(d.Time, 0).UTC(),
		}
	}
	return out, nil
}

type tickDTO struct {
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
	Time int64   `json:"time"`
}

func (c *Client) Tick(ctx context.Context, symbol string) (market.Tick, error) {
	var dto tickDTO
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/tick", q, &dto); err != nil {
		return market.Tick{}, fmt.Errorf("tick %s: %w", symbol, err)
	}
	if dto.Bid <= 0 || dto.Ask <= 0 {
		return market.Tick{}, fmt.Errorf("tick %s: terminal returned empty quote", symbol)
	}
	return market.Tick{
		Symbol: symbol,
		Bid:    dto.Bid,
		Ask:    dto.Ask,
		Time:   time.Unix(dto.Time, 0).UTC(),
	}, nil
}

type positionDTO struct {
	Ticket     int64   `json:"ticket"`
	Symbol     string  `json:"symbol"`
	Type       int     `json:"type"` // 0 buy, 1 sell (terminal convention)
	Volume     float64 `json:"volume"`
	PriceOpen  float64 `json:"price_open"`
	StopLoss   float64 `json:"sl"`
	TakeProfit float64 `json:"tp"`
	Magic      int64   `json:"magic"`
}

func (c *Client) Positions(ctx context.Context, symbol string, magic int64) ([]market.Position, error) {
	var dtos []positionDTO
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/positions", q, &dtos); err != nil {
		return nil, fmt.Errorf("positions %s: %w", symbol, err)
	}

	out := make([]market.Position, 0, len(dtos))
	for _, d := range dtos {
		if magic != 0 && d.Magic != magic {
			continue
		}
		side := market.Buy
		if d.Type == 1 {
			side = market.Sell
		}
		out = append(out, market.Position{
			Ticket:     d.Ticket,
			Symbol:     d.Symbol,
			Side:       side,
			Volume:     d.Volume,
			PriceOpen:  d.PriceOpen,
			StopLoss:   d.StopLoss,
			TakeProfit: d.TakeProfit,
			Magic:      d.Magic,
		})
	}
	return out, nil
}

func (c *Client) OrderSend(ctx context.Context, req broker.TradeRequest) (broker.TradeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return broker.TradeResult{}, fmt.Errorf("order %s: marshal: %w", req.Symbol, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/order", bytes.NewReader(body))
	if err != nil {
		return broker.TradeResult{}, fmt.Errorf("order %s: %w", req.Symbol, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return broker.TradeResult{}, fmt.Errorf("order %s: %w", req.Symbol, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return broker.TradeResult{}, fmt.Errorf("order %s: status %d: %s", req.Symbol, res.StatusCode, string(b))
	}

	var out broker.TradeResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return broker.TradeResult{}, fmt.Errorf("order %s: decode: %w", req.Symbol, err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("status %d: %s", res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}
