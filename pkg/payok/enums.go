package payok

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PaymentMethod is a payment rail supported by the API
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodCardUAH      PaymentMethod = "card_uah"
	MethodCardForeign  PaymentMethod = "card_foreign"
	MethodQiwi         PaymentMethod = "qiwi"
	MethodYoomoney     PaymentMethod = "yoomoney"
	MethodPayeer       PaymentMethod = "payeer"
	MethodAdvcash      PaymentMethod = "advcash"
	MethodPerfectMoney PaymentMethod = "perfect_money"
	MethodWebmoney     PaymentMethod = "webmoney"
	MethodBitcoin      PaymentMethod = "bitcoin"
	MethodLitecoin     PaymentMethod = "litecoin"
	MethodTether       PaymentMethod = "tether"
	MethodTron         PaymentMethod = "tron"
	MethodDogecoin     PaymentMethod = "dogecoin"
	MethodEthereum     PaymentMethod = "ethereum"
	MethodRipple       PaymentMethod = "ripple"
	MethodUnknown      PaymentMethod = "unknown"
)

var methodDescriptions = map[PaymentMethod]string{
	MethodCard:         "Bank card",
	MethodCardUAH:      "Bank card (Ukraine)",
	MethodCardForeign:  "Bank card (Foreign)",
	MethodQiwi:         "Qiwi",
	MethodYoomoney:     "Yoomoney",
	MethodPayeer:       "Payeer",
	MethodAdvcash:      "Advcash",
	MethodPerfectMoney: "Perfect Money",
	MethodWebmoney:     "Webmoney",
	MethodBitcoin:      "Bitcoin",
	MethodLitecoin:     "Litecoin",
	MethodTether:       "Tether USDT",
	MethodTron:         "Tron",
	MethodDogecoin:     "Dogecoin",
	MethodEthereum:     "Ethereum",
	MethodRipple:       "Ripple",
	MethodUnknown:      "Unknown",
}

// ParsePaymentMethod matches s case-insensitively against the known methods.
// Anything else yields MethodUnknown.
func ParsePaymentMethod(s string) PaymentMethod {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := methodDescriptions[m]; ok {
		return m
	}
	return MethodUnknown
}

// Description returns the human readable name of the method
func (m PaymentMethod) Description() string {
	if d, ok := methodDescriptions[m]; ok {
		return d
	}
	return methodDescriptions[MethodUnknown]
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentCurrency is an invoice currency
type PaymentCurrency string

const (
	CurrencyRUB     PaymentCurrency = "RUB"
	CurrencyUSD     PaymentCurrency = "USD"
	CurrencyEUR     PaymentCurrency = "EUR"
	CurrencyUAH     PaymentCurrency = "UAH"
	CurrencyRUB2    PaymentCurrency = "RUB2" // rubles through the alternative gateway
	CurrencyUnknown PaymentCurrency = "Unknown"
)

var knownCurrencies = []PaymentCurrency{CurrencyRUB, CurrencyUSD, CurrencyEUR, CurrencyUAH, CurrencyRUB2}

// ParsePaymentCurrency matches s case-insensitively, falling back to CurrencyUnknown
func ParsePaymentCurrency(s string) PaymentCurrency {
	s = strings.TrimSpace(s)
	for _, c := range knownCurrencies {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CurrencyUnknown
}

func (c PaymentCurrency) String() string {
	return string(c)
}

// CommissionType selects who pays the payout commission
type CommissionType string

const (
	CommissionFromBalance CommissionType = "balance"
	CommissionFromPayment CommissionType = "payment"
)

// Valid reports whether c is one of the supported commission types
func (c CommissionType) Valid() bool {
	return c == CommissionFromBalance || c == CommissionFromPayment
}

// Status codes shared by transactions and payouts
const (
	codeWaiting = 0
	codeSuccess = 1
	codeFail    = 2
	codeUnknown = 99
)

var statusNames = map[int]string{
	codeWaiting: "waiting",
	codeSuccess: "success",
	codeFail:    "fail",
	codeUnknown: "unknown",
}

// statusCode resolves a raw status given either as a name or as a numeric code
func statusCode(v any) int {
	if code, ok := enumInt(v); ok {
		if _, known := statusNames[int(code)]; known {
			return int(code)
		}
		return codeUnknown
	}
	s, ok := v.(string)
	if !ok {
		return codeUnknown
	}
	s = strings.TrimSpace(s)
	for code, name := range statusNames {
		if strings.EqualFold(s, name) {
			return code
		}
	}
	return codeUnknown
}

// enumInt reports the integer carried by v, if any. Strings count only when
// they are plain integer literals.
func enumInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// TransactionStatus is the payment state of a transaction
type TransactionStatus int

const (
	TransactionWaiting TransactionStatus = codeWaiting
	TransactionSuccess TransactionStatus = codeSuccess
	TransactionFail    TransactionStatus = codeFail
	TransactionUnknown TransactionStatus = codeUnknown
)

// ParseTransactionStatus accepts a status name or numeric code and never
// fails: unrecognised values yield TransactionUnknown.
func ParseTransactionStatus(v any) TransactionStatus {
	return TransactionStatus(statusCode(v))
}

func (s TransactionStatus) String() string {
	if name, ok := statusNames[int(s)]; ok {
		return name
	}
	return statusNames[codeUnknown]
}

func (s TransactionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PayoutStatus is the state of a payout
type PayoutStatus int

const (
	PayoutWaiting PayoutStatus = codeWaiting
	PayoutSuccess PayoutStatus = codeSuccess
	PayoutFail    PayoutStatus = codeFail
	PayoutUnknown PayoutStatus = codeUnknown
)

// ParsePayoutStatus accepts a status name or numeric code and never fails
func ParsePayoutStatus(v any) PayoutStatus {
	return PayoutStatus(statusCode(v))
}

// Code returns the numeric status code used by the API
func (s PayoutStatus) Code() int {
	return int(ParsePayoutStatus(int(s)))
}

func (s PayoutStatus) String() string {
	if name, ok := statusNames[int(s)]; ok {
		return name
	}
	return statusNames[codeUnknown]
}

func (s PayoutStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
