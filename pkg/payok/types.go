package payok

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the format of every timestamp sent by the API
const TimeLayout = "2006-01-02 15:04:05"

// PageSize is the maximum number of records the API returns per listing call
const PageSize = 100

// Default endpoints
const (
	DefaultBaseURL = "https://payok.io/api"
	DefaultPayURL  = "https://payok.io/pay"
)

// Balance is the result of a balance query
type Balance struct {
	Balance    decimal.Decimal `json:"balance"`
	RefBalance decimal.Decimal `json:"ref_balance"`
}

// Transaction is a single payment received by a shop
type Transaction struct {
	Num               int               `json:"num"`
	ID                int64             `json:"transaction"`
	Email             string            `json:"email"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          PaymentCurrency   `json:"currency"`
	CurrencyAmount    decimal.Decimal   `json:"currency_amount"`
	CommissionPercent decimal.Decimal   `json:"comission_percent"`
	CommissionFixed   decimal.Decimal   `json:"comission_fixed"`
	AmountProfit      decimal.Decimal   `json:"amount_profit"`
	Method            PaymentMethod     `json:"method"`
	PaymentID         string            `json:"payment_id"`
	Description       string            `json:"description"`
	Date              time.Time         `json:"date"`
	PayDate           time.Time         `json:"pay_date"`
	Status            TransactionStatus `json:"transaction_status"`
	CustomFields      any               `json:"custom_fields,omitempty"`
	WebhookStatus     int64             `json:"webhook_status"`
	WebhookAmount     int64             `json:"webhook_amount"`
}

// Payout is a withdrawal from the account balance
type Payout struct {
	Num               int             `json:"num"`
	ID                int64           `json:"payout_id"`
	Method            PaymentMethod   `json:"method"`
	Amount            decimal.Decimal `json:"amount"`
	CommissionPercent decimal.Decimal `json:"comission_percent"`
	CommissionFixed   decimal.Decimal `json:"comission_fixed"`
	AmountProfit      decimal.Decimal `json:"amount_profit"`
	DateCreate        time.Time       `json:"date_create"`
	DatePay           time.Time       `json:"date_pay"`
	Status            PayoutStatus    `json:"status"`
	StatusCode        int             `json:"payout_status_code"`
	StatusText        string          `json:"payout_status_text"`
	RemainBalance     decimal.Decimal `json:"remain_balance"`
}

// TransactionQuery narrows a single transaction page request
type TransactionQuery struct {
	// PaymentID returns only the transaction with this order ID
	PaymentID string
	Offset    int
}

// PayoutQuery narrows a single payout page request
type PayoutQuery struct {
	// PayoutID returns only the payout with this ID
	PayoutID int64
	Offset   int
}

// TransactionListOptions bounds a paginated transaction listing.
// Zero values are honoured as given: MaxPages 0 performs no request and
// MaxResults 0 stops after the first page.
type TransactionListOptions struct {
	MaxResults int
	MaxPages   int
	// Status keeps only transactions in this status when set
	Status *TransactionStatus
}

// DefaultTransactionListOptions returns the options used when none are given
func DefaultTransactionListOptions() *TransactionListOptions {
	return &TransactionListOptions{
		MaxResults: 100,
		MaxPages:   10,
	}
}

// PayoutListOptions bounds a paginated payout listing
type PayoutListOptions struct {
	MaxResults int
	MaxPages   int
	Status     *PayoutStatus
}

// DefaultPayoutListOptions returns the options used when none are given
func DefaultPayoutListOptions() *PayoutListOptions {
	return &PayoutListOptions{
		MaxResults: 100,
		MaxPages:   10,
	}
}

// CreatePayoutRequest holds the parameters of a new payout
type CreatePayoutRequest struct {
	Amount         decimal.Decimal
	Method         PaymentMethod
	Receiver       string
	CommissionType CommissionType
	// WebhookURL is called by the API when the payout status changes
	WebhookURL string
}

// PaymentLinkRequest holds the parameters of a payment link (invoice)
type PaymentLinkRequest struct {
	Amount decimal.Decimal
	// PaymentID is the order ID, unique per shop, up to 36 characters.
	// A random UUID is used when empty.
	PaymentID   string
	Shop        int64
	Description string
	Currency    PaymentCurrency

	Email      string
	SuccessURL string
	Method     PaymentMethod
	Lang       string
	Custom     string
}

// ClientConfig holds the configuration for the Payok client
type ClientConfig struct {
	BaseURL   string
	PayURL    string
	APIID     string
	APIKey    string
	SecretKey string // only needed for payment links
	Timeout   time.Duration

	// PageInterval is the pause between consecutive page requests
	PageInterval time.Duration

	// BreakerFailures enables a circuit breaker that opens after this many
	// consecutive transport failures. Zero disables it.
	BreakerFailures uint32

	Logger *slog.Logger
}

// DefaultConfig returns a default client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      DefaultBaseURL,
		PayURL:       DefaultPayURL,
		Timeout:      30 * time.Second,
		PageInterval: time.Second,
	}
}
