// Package payok provides a client for the Payok.io payment API.
//
// The client turns Go calls into form-encoded API requests and normalizes
// the loosely typed JSON answers into typed records: amounts become
// decimal.Decimal, timestamps time.Time, and enumerations fall back to an
// Unknown member instead of failing.
//
// # Authentication
//
// Every API request carries the API_ID and API_KEY form fields. Payment
// links are signed locally with the shop secret key (MD5), so only
// PaymentLink needs SecretKey.
//
// # Basic Usage
//
//	client := payok.NewClient(&payok.ClientConfig{
//	    APIID:     "1234",
//	    APIKey:    "your-api-key",
//	    SecretKey: "your-shop-secret",
//	})
//
//	balance, err := client.Balance(ctx)
//
//	// Up to 250 paid transactions, reading at most 5 pages
//	paid := payok.TransactionSuccess
//	txs, err := client.Transactions(ctx, shopID, &payok.TransactionListOptions{
//	    MaxResults: 250,
//	    MaxPages:   5,
//	    Status:     &paid,
//	})
//
// # Pagination
//
// Listing calls return at most PageSize records. Transaction and Payout
// fetch a single page at an offset; Transactions and Payouts walk pages
// sequentially, PageInterval apart, until enough records were collected.
// The API's "no transactions" and "no payouts" errors are reported as an
// empty page, never as an error.
//
// # Error Handling
//
// API errors are returned as *APIError with a numeric Code. Network and
// decoding failures are *TransportError, unparseable response fields
// *MalformedFieldError, and a missing secret key *ConfigurationError:
//
//	_, err := client.CreatePayout(ctx, req)
//	var apiErr *payok.APIError
//	if errors.As(err, &apiErr) {
//	    log.Printf("payok error %d: %s", apiErr.Code, apiErr.Message)
//	}
package payok
