package payok

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransaction_CoercesFields(t *testing.T) {
	raw := RawRecord(rawTransaction(5001, "1"))

	tx, err := DecodeTransaction(raw, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, tx.Num)
	assert.Equal(t, int64(5001), tx.ID)
	assert.Equal(t, "payer@example.com", tx.Email)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("100.50")), "amount %s", tx.Amount)
	assert.True(t, tx.CommissionPercent.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, tx.CommissionFixed.IsZero())
	assert.Equal(t, CurrencyRUB, tx.Currency)
	assert.Equal(t, MethodCard, tx.Method)
	assert.Equal(t, "order-5001", tx.PaymentID)
	assert.Equal(t, TransactionSuccess, tx.Status)
	assert.Equal(t, int64(1), tx.WebhookStatus)
	assert.True(t, tx.Date.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)), "date %v", tx.Date)
	assert.True(t, tx.PayDate.Equal(time.Date(2024, 3, 1, 12, 31, 5, 0, time.UTC)), "pay date %v", tx.PayDate)
}

func TestDecodeTransaction_NumericWireTypes(t *testing.T) {
	raw := RawRecord(rawTransaction(1, "0"))
	raw["transaction"] = json.Number("77")
	raw["amount"] = json.Number("19.99")
	raw["amount_profit"] = 18.5
	raw["webhook_amount"] = float64(3)

	tx, err := DecodeTransaction(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(77), tx.ID)
	assert.Equal(t, "19.99", tx.Amount.String())
	assert.Equal(t, "18.5", tx.AmountProfit.String())
	assert.Equal(t, int64(3), tx.WebhookAmount)
}

func TestDecodeTransaction_MissingNumbersDefaultToZero(t *testing.T) {
	raw := RawRecord(rawTransaction(1, "0"))
	delete(raw, "currency_amount")
	raw["comission_fixed"] = nil
	raw["webhook_amount"] = ""

	tx, err := DecodeTransaction(raw, 0)
	require.NoError(t, err)

	assert.True(t, tx.CurrencyAmount.IsZero())
	assert.True(t, tx.CommissionFixed.IsZero())
	assert.Zero(t, tx.WebhookAmount)
}

func TestDecodeTransaction_UnknownEnums(t *testing.T) {
	raw := RawRecord(rawTransaction(1, "refunded"))
	raw["method"] = "paypal"
	raw["currency"] = "GBP"

	tx, err := DecodeTransaction(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, MethodUnknown, tx.Method)
	assert.Equal(t, CurrencyUnknown, tx.Currency)
	assert.Equal(t, TransactionUnknown, tx.Status)
}

func TestDecodeTransaction_EnumsIgnoreCase(t *testing.T) {
	raw := RawRecord(rawTransaction(1, "SUCCESS"))
	raw["method"] = "Perfect_Money"
	raw["currency"] = "usd"

	tx, err := DecodeTransaction(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, MethodPerfectMoney, tx.Method)
	assert.Equal(t, CurrencyUSD, tx.Currency)
	assert.Equal(t, TransactionSuccess, tx.Status)
}

func TestDecodeTransaction_MalformedFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"amount not a number", "amount", "12,50"},
		{"id not an integer", "transaction", "12.5"},
		{"id float", "transaction", 12.5},
		{"id beyond int64", "transaction", 1e19},
		{"webhook amount below int64", "webhook_amount", -1e19},
		{"webhook status bool", "webhook_status", true},
		{"date wrong layout", "date", "2024-03-01T12:30:00Z"},
		{"date missing", "date", nil},
		{"pay date blank", "pay_date", " "},
		{"pay date number", "pay_date", json.Number("1709296265")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawRecord(rawTransaction(1, "1"))
			raw[tt.field] = tt.value

			tx, err := DecodeTransaction(raw, 0)

			assert.Nil(t, tx)
			var fieldErr *MalformedFieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestDecodePayout_StatusReconciliation(t *testing.T) {
	tests := []struct {
		name       string
		status     any
		code       any
		wantStatus PayoutStatus
		wantCode   int
	}{
		{name: "named only", status: "fail", wantStatus: PayoutFail, wantCode: 2},
		{name: "code only", code: "1", wantStatus: PayoutSuccess, wantCode: 1},
		{name: "numeric code only", code: json.Number("0"), wantStatus: PayoutWaiting, wantCode: 0},
		{name: "both, named wins", status: "success", code: "2", wantStatus: PayoutSuccess, wantCode: 1},
		{name: "neither", wantStatus: PayoutUnknown, wantCode: 99},
		{name: "bad name", status: "pending", code: "1", wantStatus: PayoutUnknown, wantCode: 99},
		{name: "bad code", code: "5", wantStatus: PayoutUnknown, wantCode: 99},
		{name: "blank name falls through to code", status: "", code: "2", wantStatus: PayoutFail, wantCode: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawRecord(rawPayout(1))
			delete(raw, "status")
			if tt.status != nil {
				raw["status"] = tt.status
			}
			if tt.code != nil {
				raw["payout_status_code"] = tt.code
			}

			p, err := DecodePayout(raw, 0)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantCode, p.StatusCode)
			assert.Equal(t, p.Status, ParsePayoutStatus(p.StatusCode), "status and code must agree")
		})
	}
}

func TestDecodePayout_Fields(t *testing.T) {
	p, err := DecodePayout(RawRecord(rawPayout(8)), 4)
	require.NoError(t, err)

	assert.Equal(t, 4, p.Num)
	assert.Equal(t, int64(8), p.ID)
	assert.Equal(t, MethodQiwi, p.Method)
	assert.Equal(t, "480", p.AmountProfit.String())
	assert.Equal(t, "Paid", p.StatusText)
	assert.True(t, p.DatePay.Equal(time.Date(2024, 3, 2, 9, 15, 0, 0, time.UTC)))
}

func TestDecodeTransactions_Collection(t *testing.T) {
	raw := RawRecord{
		"status": "success",
		"count":  json.Number("3"),
		"2":      map[string]any(rawTransaction(30, "1")),
		"0":      map[string]any(rawTransaction(10, "1")),
		"10":     map[string]any(rawTransaction(100, "0")),
		"-1":     "ignored",
		"1a":     "ignored",
	}

	txs, err := DecodeTransactions(raw)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, []int{0, 2, 10}, []int{txs[0].Num, txs[1].Num, txs[2].Num})
	assert.Equal(t, []int64{10, 30, 100}, []int64{txs[0].ID, txs[1].ID, txs[2].ID})
}

func TestDecodeTransactions_LeadingZeroKeysAreNotItems(t *testing.T) {
	raw := RawRecord{
		"0":  map[string]any(rawTransaction(10, "1")),
		"1":  map[string]any(rawTransaction(20, "1")),
		"01": map[string]any(rawTransaction(99, "1")),
		"00": "ignored",
	}

	txs, err := DecodeTransactions(raw)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, []int{0, 1}, []int{txs[0].Num, txs[1].Num})
	assert.Equal(t, []int64{10, 20}, []int64{txs[0].ID, txs[1].ID})
}

func TestDecodeTransactions_Empty(t *testing.T) {
	txs, err := DecodeTransactions(RawRecord{"status": "success"})
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestDecodeTransactions_NonObjectItem(t *testing.T) {
	_, err := DecodeTransactions(RawRecord{"0": "not an object"})

	var fieldErr *MalformedFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "0", fieldErr.Field)
}

func TestDecodePayouts_MalformedItemFailsPage(t *testing.T) {
	bad := rawPayout(2)
	bad["amount"] = "lots"

	payouts, err := DecodePayouts(RawRecord{
		"0": map[string]any(rawPayout(1)),
		"1": map[string]any(bad),
	})

	assert.Nil(t, payouts)
	var fieldErr *MalformedFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "amount", fieldErr.Field)
}

func TestDecodeBalance(t *testing.T) {
	b, err := DecodeBalance(RawRecord{"balance": json.Number("10.5"), "ref_balance": "0"})
	require.NoError(t, err)
	assert.Equal(t, "10.5", b.Balance.String())
	assert.True(t, b.RefBalance.IsZero())

	_, err = DecodeBalance(RawRecord{"balance": "abc", "ref_balance": "0"})
	var fieldErr *MalformedFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "balance", fieldErr.Field)
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, MethodTether, ParsePaymentMethod(" TETHER "))
	assert.Equal(t, "Tether USDT", MethodTether.Description())
	assert.Equal(t, "Unknown", PaymentMethod("x").Description())
	assert.Equal(t, CurrencyRUB2, ParsePaymentCurrency("rub2"))
	assert.Equal(t, CurrencyUnknown, ParsePaymentCurrency(""))

	assert.Equal(t, TransactionFail, ParseTransactionStatus(json.Number("2")))
	assert.Equal(t, TransactionWaiting, ParseTransactionStatus(0))
	assert.Equal(t, TransactionUnknown, ParseTransactionStatus(nil))
	assert.Equal(t, TransactionUnknown, ParseTransactionStatus(1.5))
	assert.Equal(t, TransactionUnknown, ParseTransactionStatus(1e19))

	assert.Equal(t, PayoutSuccess, ParsePayoutStatus("Success"))
	assert.Equal(t, 99, PayoutStatus(42).Code())
	assert.Equal(t, "unknown", PayoutStatus(42).String())

	text, err := TransactionSuccess.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "success", string(text))
}
