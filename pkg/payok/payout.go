package payok

import (
	"context"
	"fmt"
	"net/url"
)

// CreatePayout requests a withdrawal to the receiver's credentials
// (card number, wallet, phone) using the given method.
func (c *Client) CreatePayout(ctx context.Context, req *CreatePayoutRequest) (*Payout, error) {
	if err := validatePayout(req); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("amount", req.Amount.String())
	params.Set("method", req.Method.String())
	params.Set("reciever", req.Receiver) // sic, the API's spelling
	params.Set("comission_type", string(req.CommissionType))
	if req.WebhookURL != "" {
		params.Set("webhook_url", req.WebhookURL)
	}

	raw, err := c.doRequest(ctx, "payout_create", params)
	if err != nil {
		return nil, err
	}
	return DecodePayout(raw, 0)
}

func validatePayout(req *CreatePayoutRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: payout request is nil", ErrInvalidRequest)
	case !req.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRequest, req.Amount)
	case ParsePaymentMethod(string(req.Method)) == MethodUnknown:
		return fmt.Errorf("%w: unsupported payout method %q", ErrInvalidRequest, req.Method)
	case req.Receiver == "":
		return fmt.Errorf("%w: receiver is required", ErrInvalidRequest)
	case !req.CommissionType.Valid():
		return fmt.Errorf("%w: unsupported commission type %q", ErrInvalidRequest, req.CommissionType)
	}
	return nil
}
