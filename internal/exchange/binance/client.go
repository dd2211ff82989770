// Package binance implements the exchange gateway against the Binance spot
// REST and WebSocket APIs.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

var (
	// defaultBaseURL can be overridden for testing or testnet use.
	defaultBaseURL = "https://api.binance.com"
)

// GetBaseURL returns the current base URL used by new clients.
func GetBaseURL() string {
	return defaultBaseURL
}

// SetBaseURL sets the base URL for new clients. This is intended for tests
// (mock servers) and for pointing the engine at the spot testnet.
func SetBaseURL(url string) {
	defaultBaseURL = url
}

// Client is an authenticated Binance spot API client implementing
// exchange.Gateway.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	// stream, when set, serves last prices without a REST round trip
	stream *TickerStream
}

// NewClient creates a new Binance API client.
func NewClient(apiKey, secretKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithTickerStream attaches a live price stream the client prefers over REST
// ticker polls.
func (c *Client) WithTickerStream(stream *TickerStream) *Client {
	c.stream = stream
	return c
}

// sign computes the HMAC-SHA256 request signature over the encoded query.
func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// doRequest performs one API call. Signed endpoints get a timestamp and a
// signature appended to the query string and the API key header set.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("signature", c.sign(params.Encode()))
	}

	reqURL := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return err
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response of %s %s (status %d): %w", method, endpoint, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
			return &apiErr
		}
		return fmt.Errorf("%s %s returned status %d: %s", method, endpoint, resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w (body: %s)", method, endpoint, err, body)
	}
	return nil
}

// FetchTicker implements exchange.Gateway. A live stream price is preferred;
// REST is the fallback.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (*exchange.Ticker, error) {
	if c.stream != nil {
		if last, ok := c.stream.Last(symbol); ok {
			return &exchange.Ticker{Symbol: symbol, Last: last}, nil
		}
	}

	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	var resp tickerResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", params, false, &resp); err != nil {
		return nil, err
	}

	last, err := cast.ToFloat64E(resp.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid ticker price %q: %w", resp.Price, err)
	}
	return &exchange.Ticker{Symbol: symbol, Last: last}, nil
}

// FetchOHLCV implements exchange.Gateway.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since time.Time, limit int) ([]exchange.Candle, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("interval", timeframe)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if !since.IsZero() {
		params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}

	var raw [][]any
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/klines", params, false, &raw); err != nil {
		return nil, err
	}

	candles := make([]exchange.Candle, 0, len(raw))
	for _, entry := range raw {
		candle, err := parseKline(entry)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// FetchBalance implements exchange.Gateway.
func (c *Client) FetchBalance(ctx context.Context) (map[string]exchange.Balance, error) {
	var resp accountResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", nil, true, &resp); err != nil {
		return nil, err
	}

	balances := make(map[string]exchange.Balance, len(resp.Balances))
	for _, b := range resp.Balances {
		free, err := cast.ToFloat64E(b.Free)
		if err != nil {
			return nil, fmt.Errorf("invalid free balance for %s: %w", b.Asset, err)
		}
		locked, err := cast.ToFloat64E(b.Locked)
		if err != nil {
			return nil, fmt.Errorf("invalid locked balance for %s: %w", b.Asset, err)
		}
		balances[b.Asset] = exchange.Balance{
			Free:  free,
			Used:  locked,
			Total: free + locked,
		}
	}
	return balances, nil
}

// FetchOpenOrders implements exchange.Gateway.
func (c *Client) FetchOpenOrders(ctx context.Context, symbol string) ([]exchange.Order, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))

	var raw []orderResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/openOrders", params, true, &raw); err != nil {
		return nil, err
	}

	orders := make([]exchange.Order, 0, len(raw))
	for i := range raw {
		order, err := raw[i].toOrder(symbol)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// FetchOrder implements exchange.Gateway.
func (c *Client) FetchOrder(ctx context.Context, orderID, symbol string) (*exchange.Order, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("orderId", orderID)

	var resp orderResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/order", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.toOrder(symbol)
}

// CreateMarketOrder implements exchange.Gateway.
func (c *Client) CreateMarketOrder(ctx context.Context, symbol string, side bot.Side, amount float64) (*exchange.Order, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("side", orderSide(side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(amount, 'f', -1, 64))

	var resp orderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.toOrder(symbol)
}

// CreateLimitOrder implements exchange.Gateway.
func (c *Client) CreateLimitOrder(ctx context.Context, symbol string, side bot.Side, amount, price float64) (*exchange.Order, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("side", orderSide(side))
	params.Set("type", "LIMIT")
	params.Set("timeInForce", "GTC")
	params.Set("quantity", strconv.FormatFloat(amount, 'f', -1, 64))
	params.Set("price", strconv.FormatFloat(price, 'f', -1, 64))

	var resp orderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.toOrder(symbol)
}
