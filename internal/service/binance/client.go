package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	drepo "RSIScan/internal/domain/repository"
	httpclient "RSIScan/pkg/http"
	applogger "RSIScan/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.binance.com"
	DefaultQuoteAsset = "USDT"
	DefaultRateLimit  = 20
	DefaultRateBurst  = 40

	closeIndex = 4
)

// DefaultExclude lists stablecoin and delisted pairs dropped from the ranking.
var DefaultExclude = []string{"DARUSDT", "USDCUSDT", "FDUSDUSDT"}

// Client reads klines and 24h tickers from the Binance spot REST API.
type Client struct {
	baseURL    string
	quoteAsset string
	exclude    map[string]struct{}
	http       *httpclient.Client
	limiter    *rate.Limiter
	logger     *applogger.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit sets the outbound request rate.
func WithRateLimit(requestsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *httpclient.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithQuoteAsset sets the suffix symbols must carry to be ranked.
func WithQuoteAsset(asset string) ClientOption {
	return func(c *Client) {
		c.quoteAsset = asset
	}
}

// WithExclude replaces the ranking deny-list.
func WithExclude(symbols ...string) ClientOption {
	return func(c *Client) {
		c.exclude = toSet(symbols)
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Binance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		quoteAsset: DefaultQuoteAsset,
		exclude:    toSet(DefaultExclude),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateBurst),
		logger:     applogger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewClient(httpclient.WithTimeout(30 * time.Second))
	}

	return c
}

// apiError is the body Binance sends with 4xx/5xx responses.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Closes returns the close price of every kline, oldest first. Any kline
// without a parsable close fails the whole call.
func (c *Client) Closes(ctx context.Context, symbol, interval string, limit int) ([]float64, error) {
	var rows [][]json.RawMessage
	err := c.get(ctx, "/api/v3/klines", map[string][]string{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}, &rows)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) <= closeIndex {
			return nil, fmt.Errorf("kline %d: missing close", i)
		}
		var raw string
		if err := json.Unmarshal(row[closeIndex], &raw); err != nil {
			return nil, fmt.Errorf("kline %d: close is not a string: %w", i, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("kline %d: parse close %q: %w", i, raw, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("kline %d: close %q is not finite", i, raw)
		}
		closes = append(closes, v)
	}
	return closes, nil
}

type ticker24h struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

type rankedSymbol struct {
	symbol string
	volume float64
}

// TopSymbols returns up to k quote-asset symbols ordered by 24h quote volume,
// highest first. Unparsable volumes rank as zero.
func (c *Client) TopSymbols(ctx context.Context, k int) ([]string, error) {
	var tickers []ticker24h
	if err := c.get(ctx, "/api/v3/ticker/24hr", nil, &tickers); err != nil {
		return nil, err
	}

	ranked := make([]rankedSymbol, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, c.quoteAsset) {
			continue
		}
		if _, denied := c.exclude[t.Symbol]; denied {
			continue
		}
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil || math.IsNaN(vol) || math.IsInf(vol, 0) {
			vol = 0
		}
		ranked = append(ranked, rankedSymbol{symbol: t.Symbol, volume: vol})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].volume > ranked[j].volume
	})

	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.symbol
	}
	return out, nil
}

type pacedKey struct{}

// Wait takes an outbound slot for the next request made with the returned
// context. A caller that bounds the request with a deadline sets it after
// Wait returns.
func (c *Client) Wait(ctx context.Context) (context.Context, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ctx, fmt.Errorf("rate limit wait: %w", err)
	}
	slot := &atomic.Bool{}
	slot.Store(true)
	return context.WithValue(ctx, pacedKey{}, slot), nil
}

// takeSlot consumes a slot reserved by Wait, if ctx carries an unused one.
func takeSlot(ctx context.Context) bool {
	slot, ok := ctx.Value(pacedKey{}).(*atomic.Bool)
	return ok && slot.CompareAndSwap(true, false)
}

func (c *Client) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if !takeSlot(ctx) {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		URL:         c.baseURL + path,
		QueryParams: query,
	}, dest)
	if err == nil {
		c.logger.Debug("binance request",
			applogger.String("path", path),
			applogger.Duration("elapsed", time.Since(start)),
		)
		return nil
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) {
		var ae apiError
		if json.Unmarshal(se.Body, &ae) == nil && ae.Msg != "" {
			return fmt.Errorf("binance %s: status %d: code %d: %s", path, se.StatusCode, ae.Code, ae.Msg)
		}
		return fmt.Errorf("binance %s: status %d", path, se.StatusCode)
	}
	return fmt.Errorf("binance %s: %w", path, err)
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

var (
	_ drepo.KlineSource  = (*Client)(nil)
	_ drepo.SymbolRanker = (*Client)(nil)
	_ drepo.Pacer        = (*Client)(nil)
)
