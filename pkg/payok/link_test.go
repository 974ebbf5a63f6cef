package payok

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLinkRequest() *PaymentLinkRequest {
	return &PaymentLinkRequest{
		Amount:      decimal.RequireFromString("250.5"),
		PaymentID:   "order-42",
		Shop:        testShop,
		Description: "Test payment link",
		Currency:    CurrencyRUB,
	}
}

func TestPaymentLink_Signed(t *testing.T) {
	client := newTestClient("http://unused")

	link, err := client.PaymentLink(testLinkRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, DefaultPayURL+"?"), link)
	assert.Contains(t, link, "desc=Test%20payment%20link")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "250.5", q.Get("amount"))
	assert.Equal(t, "order-42", q.Get("payment"))
	assert.Equal(t, "777", q.Get("shop"))
	assert.Equal(t, "RUB", q.Get("currency"))
	assert.Equal(t, "Test payment link", q.Get("desc"))

	sum := md5.Sum([]byte("250.5|order-42|777|RUB|Test payment link|" + testSecretKey))
	assert.Equal(t, hex.EncodeToString(sum[:]), q.Get("sign"))

	for _, key := range []string{"email", "success_url", "method", "lang", "customparam"} {
		assert.False(t, q.Has(key), "optional %s should be omitted", key)
	}
}

func TestPaymentLink_OptionalParams(t *testing.T) {
	req := testLinkRequest()
	req.Email = "payer+1@example.com"
	req.SuccessURL = "https://shop.example.com/thanks?order=42"
	req.Method = MethodCard
	req.Lang = "en"
	req.Custom = "ref=abc"

	link, err := newTestClient("http://unused").PaymentLink(req)
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "payer+1@example.com", q.Get("email"))
	assert.Equal(t, "https://shop.example.com/thanks?order=42", q.Get("success_url"))
	assert.Equal(t, "card", q.Get("method"))
	assert.Equal(t, "en", q.Get("lang"))
	assert.Equal(t, "ref=abc", q.Get("customparam"))
}

func TestPaymentLink_GeneratesPaymentID(t *testing.T) {
	req := testLinkRequest()
	req.PaymentID = ""

	link, err := newTestClient("http://unused").PaymentLink(req)
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	id := parsed.Query().Get("payment")

	assert.Len(t, id, 36)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestPaymentLink_NoSecretKey(t *testing.T) {
	client := NewClient(&ClientConfig{APIID: testAPIID, APIKey: testAPIKey})

	link, err := client.PaymentLink(testLinkRequest())

	assert.Empty(t, link)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CodeNoSecretKey, cfgErr.Code)
}

func TestPaymentLink_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *PaymentLinkRequest)
	}{
		{"zero amount", func(r *PaymentLinkRequest) { r.Amount = decimal.Zero }},
		{"long payment id", func(r *PaymentLinkRequest) { r.PaymentID = strings.Repeat("x", 37) }},
		{"missing shop", func(r *PaymentLinkRequest) { r.Shop = 0 }},
		{"missing description", func(r *PaymentLinkRequest) { r.Description = "" }},
		{"unknown currency", func(r *PaymentLinkRequest) { r.Currency = "GBP" }},
	}

	client := newTestClient("http://unused")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testLinkRequest()
			tt.mutate(req)

			_, err := client.PaymentLink(req)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
		})
	}

	_, err := client.PaymentLink(nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
