package payok

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
)

// responseAPI keeps numbers as json.Number so amounts never pass through float64
var responseAPI = sonic.Config{UseNumber: true}.Froze()

// Client is a Payok API client
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a new Payok API client
func NewClient(config *ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return NewClientWithHTTPClient(config, &http.Client{
		Timeout: config.Timeout,
	})
}

// NewClientWithHTTPClient creates a new Payok API client with a custom HTTP client
func NewClientWithHTTPClient(config *ClientConfig, httpClient *http.Client) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.PayURL == "" {
		config.PayURL = DefaultPayURL
	}
	if config.PageInterval == 0 {
		config.PageInterval = time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.With("component", "payok"),
	}

	if config.BreakerFailures > 0 {
		threshold := config.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "payok",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// doRequest posts the form-encoded params to the API method and returns the
// decoded response object. API level errors come back as *APIError, all
// other failures as *TransportError.
func (c *Client) doRequest(ctx context.Context, method string, params url.Values) (RawRecord, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("API_ID", c.config.APIID)
	params.Set("API_KEY", c.config.APIKey)

	start := time.Now()
	var (
		body   []byte
		status int
		err    error
	)
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			var execErr error
			body, status, execErr = c.roundTrip(ctx, method, params)
			return nil, execErr
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Code: CodeCircuitOpen, Message: "circuit breaker is open", Err: err}
		}
	} else {
		body, status, err = c.roundTrip(ctx, method, params)
	}
	if err != nil {
		c.logger.Debug("api call failed", "method", method, "error", err, "duration", time.Since(start))
		return nil, err
	}

	raw, err := decodeResponse(body, status)
	if err != nil {
		c.logger.Debug("api call returned an error", "method", method, "error", err, "duration", time.Since(start))
		return nil, err
	}

	c.logger.Debug("api call", "method", method, "status", status, "duration", time.Since(start))
	return raw, nil
}

// roundTrip performs the HTTP exchange only; its errors, 5xx responses
// included, are the ones that count against the circuit breaker.
func (c *Client) roundTrip(ctx context.Context, method string, params url.Values) ([]byte, int, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, 0, &TransportError{Code: CodeRequestFailed, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Code: CodeRequestFailed, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Code: CodeRequestFailed, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	// API errors arrive with HTTP 200, so a 5xx always comes from the server
	// or a proxy in front of it
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, resp.StatusCode, &TransportError{
			Code:       CodeRequestFailed,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server error: %s", http.StatusText(resp.StatusCode)),
		}
	}
	return body, resp.StatusCode, nil
}

// decodeResponse turns a response body into a RawRecord, surfacing the API's
// {"status":"error"} envelope as *APIError.
func decodeResponse(body []byte, status int) (RawRecord, error) {
	var decoded any
	if err := responseAPI.Unmarshal(body, &decoded); err != nil {
		return nil, &TransportError{Code: CodeDecodeFailed, StatusCode: status, Message: "response decode failed", Err: err}
	}

	var raw RawRecord
	switch v := decoded.(type) {
	case nil:
	case map[string]interface{}:
		raw = RawRecord(v)
	default:
		return nil, &TransportError{Code: CodeDecodeFailed, StatusCode: status, Message: fmt.Sprintf("response decode failed: unexpected %T", decoded)}
	}
	if len(raw) == 0 {
		return nil, &TransportError{Code: CodeEmptyResponse, StatusCode: status, Message: "empty response"}
	}

	if raw.text("status") == "error" {
		return nil, newAPIError(raw)
	}
	return raw, nil
}

func newAPIError(raw RawRecord) *APIError {
	apiErr := &APIError{RawCode: raw.text("error_code")}
	if code, ok := enumInt(raw["error_code"]); ok {
		apiErr.Code = int(code)
	} else {
		apiErr.Code = -1
	}

	switch {
	case raw.text("text") != "":
		apiErr.Message = raw.text("text")
	case raw.text("error_text") != "":
		apiErr.Message = raw.text("error_text")
	default:
		apiErr.Message = "No error info provided"
	}
	return apiErr
}

// Balance retrieves the account balance
func (c *Client) Balance(ctx context.Context) (*Balance, error) {
	raw, err := c.doRequest(ctx, "balance", nil)
	if err != nil {
		return nil, err
	}
	return DecodeBalance(raw)
}

// Transaction retrieves one page of up to PageSize transactions of a shop.
// An empty page is returned, without error, when there is nothing at the offset.
func (c *Client) Transaction(ctx context.Context, shop int64, query *TransactionQuery) ([]Transaction, error) {
	params := url.Values{}
	params.Set("shop", strconv.FormatInt(shop, 10))
	if query != nil {
		if query.PaymentID != "" {
			params.Set("payment", query.PaymentID)
		}
		if query.Offset > 0 {
			params.Set("offset", strconv.Itoa(query.Offset))
		}
	}

	raw, err := c.doRequest(ctx, "transaction", params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeNoTransactions {
			return []Transaction{}, nil
		}
		return nil, err
	}
	return DecodeTransactions(raw)
}

// Payout retrieves one page of up to PageSize payouts.
// An empty page is returned, without error, when there is nothing at the offset.
func (c *Client) Payout(ctx context.Context, query *PayoutQuery) ([]Payout, error) {
	params := url.Values{}
	if query != nil {
		if query.PayoutID != 0 {
			params.Set("payout_id", strconv.FormatInt(query.PayoutID, 10))
		}
		if query.Offset > 0 {
			params.Set("offset", strconv.Itoa(query.Offset))
		}
	}

	raw, err := c.doRequest(ctx, "payout", params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeNoPayouts {
			return []Payout{}, nil
		}
		return nil, err
	}
	return DecodePayouts(raw)
}
