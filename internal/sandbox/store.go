package sandbox

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexbotov/payok/pkg/payok"
)

// Store errors
var (
	ErrUnknownShop         = errors.New("shop not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

var (
	transactionCommission = decimal.RequireFromString("3.5")
	payoutCommission      = decimal.RequireFromString("2.5")
	hundred               = decimal.NewFromInt(100)
)

var seedMethods = []payok.PaymentMethod{
	payok.MethodCard,
	payok.MethodQiwi,
	payok.MethodYoomoney,
	payok.MethodTether,
	payok.MethodBitcoin,
}

var seedCurrencies = []payok.PaymentCurrency{
	payok.CurrencyRUB,
	payok.CurrencyUSD,
	payok.CurrencyEUR,
}

type transaction struct {
	ID          int64
	Email       string
	Amount      decimal.Decimal
	Currency    payok.PaymentCurrency
	Method      payok.PaymentMethod
	PaymentID   string
	Description string
	Date        time.Time
	PayDate     time.Time
	Status      payok.TransactionStatus
}

type payout struct {
	ID             int64
	Method         payok.PaymentMethod
	Receiver       string
	Amount         decimal.Decimal
	Commission     decimal.Decimal
	CommissionType payok.CommissionType
	Profit         decimal.Decimal
	Created        time.Time
	Paid           time.Time
	Status         payok.PayoutStatus
	Text           string
	RemainBalance  decimal.Decimal
}

// Store is the in-memory account behind the sandbox: one shop, its
// transactions and the account's payouts. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	shop         int64
	balance      decimal.Decimal
	refBalance   decimal.Decimal
	transactions []*transaction
	payouts      []*payout
	now          func() time.Time
}

// NewStore creates an empty store for the given shop and opening balance
func NewStore(shop int64, balance decimal.Decimal) *Store {
	return &Store{
		shop:       shop,
		balance:    balance,
		refBalance: decimal.Zero,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Shop returns the shop id the store serves
func (s *Store) Shop() int64 {
	return s.shop
}

// Seed appends generated transactions and payouts. Records are spaced a
// minute apart starting at start, and statuses cycle waiting, success, fail.
func (s *Store) Seed(transactions, payouts int, start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start = start.UTC().Truncate(time.Second)
	for i := 0; i < transactions; i++ {
		id := int64(len(s.transactions) + 1)
		date := start.Add(time.Duration(i) * time.Minute)
		s.transactions = append(s.transactions, &transaction{
			ID:          id,
			Email:       "payer" + strconv.FormatInt(id, 10) + "@example.com",
			Amount:      decimal.NewFromInt(100 + int64(i%50)*10),
			Currency:    seedCurrencies[i%len(seedCurrencies)],
			Method:      seedMethods[i%len(seedMethods)],
			PaymentID:   uuid.NewString(),
			Description: "Order " + strconv.FormatInt(id, 10),
			Date:        date,
			PayDate:     date.Add(30 * time.Second),
			Status:      payok.TransactionStatus(i % 3),
		})
	}

	for i := 0; i < payouts; i++ {
		amount := decimal.NewFromInt(500 + int64(i%20)*25)
		commission := amount.Mul(payoutCommission).Div(hundred).Round(2)
		created := start.Add(time.Duration(i) * time.Minute)
		s.payouts = append(s.payouts, &payout{
			ID:             int64(len(s.payouts) + 1),
			Method:         seedMethods[i%len(seedMethods)],
			Receiver:       "4100" + strconv.Itoa(100000+i),
			Amount:         amount,
			Commission:     commission,
			CommissionType: payok.CommissionFromPayment,
			Profit:         amount.Sub(commission),
			Created:        created,
			Paid:           created.Add(15 * time.Minute),
			Status:         payok.PayoutStatus(i % 3),
			Text:           "Seeded payout",
			RemainBalance:  s.balance,
		})
	}
}

// Balance returns the account and referral balances
func (s *Store) Balance() (decimal.Decimal, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance, s.refBalance
}

// Transactions returns up to limit transactions of shop starting at
// offset. A non-empty paymentID selects that payment only.
func (s *Store) Transactions(shop int64, paymentID string, offset, limit int) ([]transaction, error) {
	if shop != s.shop {
		return nil, ErrUnknownShop
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]transaction, 0)
	for _, tx := range s.transactions {
		if paymentID != "" && tx.PaymentID != paymentID {
			continue
		}
		matched = append(matched, *tx)
	}
	return window(matched, offset, limit), nil
}

// Payouts returns up to limit payouts starting at offset. A non-zero
// payoutID selects that payout only.
func (s *Store) Payouts(payoutID int64, offset, limit int) []payout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]payout, 0)
	for _, p := range s.payouts {
		if payoutID != 0 && p.ID != payoutID {
			continue
		}
		matched = append(matched, *p)
	}
	return window(matched, offset, limit)
}

// CreatePayout debits the account and records a waiting payout. With
// CommissionFromBalance the commission is charged on top of the amount,
// otherwise it is taken out of the amount paid to the receiver.
func (s *Store) CreatePayout(method payok.PaymentMethod, receiver string, amount decimal.Decimal, commissionType payok.CommissionType) (payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commission := amount.Mul(payoutCommission).Div(hundred).Round(2)
	debit, profit := amount, amount.Sub(commission)
	if commissionType == payok.CommissionFromBalance {
		debit, profit = amount.Add(commission), amount
	}
	if debit.GreaterThan(s.balance) {
		return payout{}, ErrInsufficientBalance
	}
	s.balance = s.balance.Sub(debit)

	// date_pay mirrors the creation time until the payout is processed
	now := s.now()
	p := &payout{
		ID:             int64(len(s.payouts) + 1),
		Method:         method,
		Receiver:       receiver,
		Amount:         amount,
		Commission:     commission,
		CommissionType: commissionType,
		Profit:         profit,
		Created:        now,
		Paid:           now,
		Status:         payok.PayoutWaiting,
		Text:           "Payout created",
		RemainBalance:  s.balance,
	}
	s.payouts = append(s.payouts, p)
	return *p, nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	return items[offset:min(offset+limit, len(items))]
}

// wire renders the transaction the way the API sends it: numbers as
// strings, timestamps in payok.TimeLayout
func (t transaction) wire() map[string]any {
	commission := t.Amount.Mul(transactionCommission).Div(hundred).Round(2)
	return map[string]any{
		"transaction":        strconv.FormatInt(t.ID, 10),
		"email":              t.Email,
		"amount":             t.Amount.StringFixed(2),
		"currency":           t.Currency.String(),
		"currency_amount":    t.Amount.StringFixed(2),
		"comission_percent":  transactionCommission.String(),
		"comission_fixed":    "0",
		"amount_profit":      t.Amount.Sub(commission).StringFixed(2),
		"method":             t.Method.String(),
		"payment_id":         t.PaymentID,
		"description":        t.Description,
		"date":               t.Date.Format(payok.TimeLayout),
		"pay_date":           t.PayDate.Format(payok.TimeLayout),
		"transaction_status": strconv.Itoa(int(t.Status)),
		"custom_fields":      nil,
		"webhook_status":     "1",
		"webhook_amount":     "1",
	}
}

// wire renders the payout. Legacy payouts carry only the numeric
// payout_status_code, current ones the status name.
func (p payout) wire(legacy bool) map[string]any {
	m := map[string]any{
		"payout_id":          strconv.FormatInt(p.ID, 10),
		"method":             p.Method.String(),
		"amount":             p.Amount.StringFixed(2),
		"comission_percent":  payoutCommission.String(),
		"comission_fixed":    "0",
		"amount_profit":      p.Profit.StringFixed(2),
		"date_create":        p.Created.Format(payok.TimeLayout),
		"date_pay":           p.Paid.Format(payok.TimeLayout),
		"payout_status_text": p.Text,
		"remain_balance":     p.RemainBalance.StringFixed(2),
	}
	if legacy {
		m["payout_status_code"] = p.Status.Code()
	} else {
		m["status"] = p.Status.String()
	}
	return m
}
