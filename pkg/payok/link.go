package payok

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const maxPaymentIDLength = 36

// PaymentLink builds a signed invoice URL the payer can be redirected to.
// No request is made. It requires ClientConfig.SecretKey.
func (c *Client) PaymentLink(req *PaymentLinkRequest) (string, error) {
	if c.config.SecretKey == "" {
		return "", &ConfigurationError{Code: CodeNoSecretKey, Message: "no secret key configured for payment links"}
	}
	if err := validatePaymentLink(req); err != nil {
		return "", err
	}

	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = uuid.NewString()
	}
	amount := req.Amount.String()
	shop := strconv.FormatInt(req.Shop, 10)
	currency := ParsePaymentCurrency(string(req.Currency)).String()

	sign := c.computeSign(amount, paymentID, shop, currency, req.Description)

	var b strings.Builder
	b.WriteString(c.config.PayURL)
	b.WriteString("?amount=" + amount)
	b.WriteString("&payment=" + url.QueryEscape(paymentID))
	b.WriteString("&shop=" + shop)
	b.WriteString("&desc=" + escapeDescription(req.Description))
	b.WriteString("&currency=" + currency)
	b.WriteString("&sign=" + sign)
	if req.Email != "" {
		b.WriteString("&email=" + url.QueryEscape(req.Email))
	}
	if req.SuccessURL != "" {
		b.WriteString("&success_url=" + url.QueryEscape(req.SuccessURL))
	}
	if req.Method != "" {
		b.WriteString("&method=" + url.QueryEscape(req.Method.String()))
	}
	if req.Lang != "" {
		b.WriteString("&lang=" + url.QueryEscape(req.Lang))
	}
	if req.Custom != "" {
		b.WriteString("&customparam=" + url.QueryEscape(req.Custom))
	}

	return b.String(), nil
}

// computeSign computes the MD5 signature of a payment link
func (c *Client) computeSign(amount, payment, shop, currency, desc string) string {
	data := strings.Join([]string{amount, payment, shop, currency, desc, c.config.SecretKey}, "|")
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// escapeDescription percent-encodes spaces as %20, which the payment page expects
func escapeDescription(desc string) string {
	return strings.ReplaceAll(url.QueryEscape(desc), "+", "%20")
}

func validatePaymentLink(req *PaymentLinkRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: payment link request is nil", ErrInvalidRequest)
	case !req.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRequest, req.Amount)
	case len(req.PaymentID) > maxPaymentIDLength:
		return fmt.Errorf("%w: payment id longer than %d characters", ErrInvalidRequest, maxPaymentIDLength)
	case req.Shop <= 0:
		return fmt.Errorf("%w: shop id is required", ErrInvalidRequest)
	case req.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	case ParsePaymentCurrency(string(req.Currency)) == CurrencyUnknown:
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidRequest, req.Currency)
	}
	return nil
}
