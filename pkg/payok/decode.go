package payok

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errMissing   = errors.New("value is missing")
	errNotObject = errors.New("item is not an object")
)

// RawRecord is a response object as decoded from the wire. Numbers are
// expected as json.Number, but float64 values are accepted as well.
type RawRecord map[string]any

// present returns the value under key unless it is absent, null or blank
func (r RawRecord) present(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// text returns the value under key as a string, whatever its wire type
func (r RawRecord) text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// fieldReader coerces fields of one record and keeps the first failure.
// Once an error is recorded every later read returns a zero value.
type fieldReader struct {
	raw RawRecord
	err error
}

func (f *fieldReader) decimal(key string, required bool) decimal.Decimal {
	if f.err != nil {
		return decimal.Zero
	}
	v, ok := f.raw.present(key)
	if !ok {
		if required {
			f.err = &MalformedFieldError{Field: key, Err: errMissing}
		}
		return decimal.Zero
	}
	d, err := toDecimal(v)
	if err != nil {
		f.err = &MalformedFieldError{Field: key, Value: v, Err: err}
	}
	return d
}

func (f *fieldReader) int64(key string) int64 {
	if f.err != nil {
		return 0
	}
	v, ok := f.raw.present(key)
	if !ok {
		return 0
	}
	i, err := toInt64(v)
	if err != nil {
		f.err = &MalformedFieldError{Field: key, Value: v, Err: err}
	}
	return i
}

func (f *fieldReader) time(key string) time.Time {
	if f.err != nil {
		return time.Time{}
	}
	v, ok := f.raw.present(key)
	if !ok {
		f.err = &MalformedFieldError{Field: key, Err: errMissing}
		return time.Time{}
	}
	s, ok := v.(string)
	if !ok {
		f.err = &MalformedFieldError{Field: key, Value: v, Err: fmt.Errorf("unexpected type %T", v)}
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		f.err = &MalformedFieldError{Field: key, Value: v, Err: err}
	}
	return t
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	}
	return decimal.Zero, fmt.Errorf("unexpected type %T", v)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	case json.Number:
		return n.Int64()
	case float64:
		if i, ok := enumInt(n); ok {
			return i, nil
		}
		return 0, fmt.Errorf("%v is not an integer", n)
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

// DecodeBalance normalizes a balance response. Both amounts are required.
func DecodeBalance(raw RawRecord) (*Balance, error) {
	f := &fieldReader{raw: raw}
	b := &Balance{
		Balance:    f.decimal("balance", true),
		RefBalance: f.decimal("ref_balance", true),
	}
	if f.err != nil {
		return nil, f.err
	}
	return b, nil
}

// DecodeTransaction normalizes one transaction object. num is its position
// in the enclosing listing, which only the container knows.
func DecodeTransaction(raw RawRecord, num int) (*Transaction, error) {
	f := &fieldReader{raw: raw}
	tx := &Transaction{
		Num:               num,
		ID:                f.int64("transaction"),
		Email:             raw.text("email"),
		Amount:            f.decimal("amount", false),
		Currency:          ParsePaymentCurrency(raw.text("currency")),
		CurrencyAmount:    f.decimal("currency_amount", false),
		CommissionPercent: f.decimal("comission_percent", false),
		CommissionFixed:   f.decimal("comission_fixed", false),
		AmountProfit:      f.decimal("amount_profit", false),
		Method:            ParsePaymentMethod(raw.text("method")),
		PaymentID:         raw.text("payment_id"),
		Description:       raw.text("description"),
		Date:              f.time("date"),
		PayDate:           f.time("pay_date"),
		Status:            ParseTransactionStatus(raw["transaction_status"]),
		CustomFields:      raw["custom_fields"],
		WebhookStatus:     f.int64("webhook_status"),
		WebhookAmount:     f.int64("webhook_amount"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return tx, nil
}

// DecodePayout normalizes one payout object
func DecodePayout(raw RawRecord, num int) (*Payout, error) {
	f := &fieldReader{raw: raw}
	p := &Payout{
		Num:               num,
		ID:                f.int64("payout_id"),
		Method:            ParsePaymentMethod(raw.text("method")),
		Amount:            f.decimal("amount", false),
		CommissionPercent: f.decimal("comission_percent", false),
		CommissionFixed:   f.decimal("comission_fixed", false),
		AmountProfit:      f.decimal("amount_profit", false),
		DateCreate:        f.time("date_create"),
		DatePay:           f.time("date_pay"),
		StatusText:        raw.text("payout_status_text"),
		RemainBalance:     f.decimal("remain_balance", false),
	}
	if f.err != nil {
		return nil, f.err
	}
	p.Status = resolvePayoutStatus(raw)
	p.StatusCode = p.Status.Code()
	return p, nil
}

// resolvePayoutStatus reconciles the two status fields the API has used over
// time. The named status wins when both are present.
func resolvePayoutStatus(raw RawRecord) PayoutStatus {
	if v, ok := raw.present("status"); ok {
		return ParsePayoutStatus(v)
	}
	if v, ok := raw.present("payout_status_code"); ok {
		return ParsePayoutStatus(v)
	}
	return PayoutUnknown
}

type indexedRecord struct {
	num    int
	record RawRecord
}

// collectionItems extracts the list items of a listing response: every key
// that is a non-negative integer literal. Other keys are response metadata.
// Items come back in ascending key order regardless of how they were sent.
func collectionItems(raw RawRecord) ([]indexedRecord, error) {
	items := make([]indexedRecord, 0, len(raw))
	for key, value := range raw {
		num, ok := itemIndex(key)
		if !ok {
			continue
		}
		rec, ok := asRecord(value)
		if !ok {
			return nil, &MalformedFieldError{Field: key, Value: value, Err: errNotObject}
		}
		items = append(items, indexedRecord{num: num, record: rec})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].num < items[j].num
	})
	return items, nil
}

// itemIndex accepts canonical integer literals only. "01" is metadata, not
// item 1, so two keys can never share a sequence number.
func itemIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	return n, err == nil
}

func asRecord(v any) (RawRecord, bool) {
	switch m := v.(type) {
	case RawRecord:
		return m, true
	case map[string]any:
		return RawRecord(m), true
	}
	return nil, false
}

// DecodeTransactions normalizes a transaction listing. The sequence number
// of each item is its key; items are ordered by ascending key. Keys with a
// leading zero other than "0" itself are not items, which keeps sequence
// numbers unique. Any malformed item fails the whole listing.
func DecodeTransactions(raw RawRecord) ([]Transaction, error) {
	items, err := collectionItems(raw)
	if err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(items))
	for _, item := range items {
		tx, err := DecodeTransaction(item.record, item.num)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

// DecodePayouts normalizes a payout listing, see DecodeTransactions
func DecodePayouts(raw RawRecord) ([]Payout, error) {
	items, err := collectionItems(raw)
	if err != nil {
		return nil, err
	}
	payouts := make([]Payout, 0, len(items))
	for _, item := range items {
		p, err := DecodePayout(item.record, item.num)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, nil
}
