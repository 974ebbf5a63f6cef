package sandbox

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/alexbotov/payok/pkg/payok"
)

// Error codes the sandbox answers with. The listing sentinels match the
// live API; the rest are local to the sandbox.
const (
	codeInternal        = 1
	codeNoCredentials   = 2
	codeBadCredentials  = 3
	codeBadRequest      = 4
	codeUnknownShop     = 5
	codeNoPayouts       = payok.CodeNoPayouts
	codeInsufficientBal = 8
	codeNoTransactions  = payok.CodeNoTransactions
)

// Response helpers

func respondJSON(w http.ResponseWriter, status int, body map[string]any) {
	data, err := sonic.Marshal(body)
	if err != nil {
		http.Error(w, `{"status":"error","error_code":1,"text":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func respondSuccess(w http.ResponseWriter, body map[string]any) {
	if _, ok := body["status"]; !ok {
		body["status"] = "success"
	}
	respondJSON(w, http.StatusOK, body)
}

func respondError(w http.ResponseWriter, status, code int, text string) {
	respondJSON(w, status, map[string]any{
		"status":     "error",
		"error_code": strconv.Itoa(code),
		"text":       text,
	})
}

// respondCollection sends items keyed by their position in the page
func respondCollection(w http.ResponseWriter, items []map[string]any) {
	body := make(map[string]any, len(items)+1)
	for i, item := range items {
		body[strconv.Itoa(i)] = item
	}
	respondSuccess(w, body)
}

// formInt reads an optional non-negative integer form field
func formInt(r *http.Request, key string) (int64, error) {
	v := r.PostForm.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, codeBadRequest, "Unknown API method")
}

// MethodNotAllowedHandler handles 405 errors
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, codeBadRequest, "API methods accept POST only")
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

// Balance handles POST /api/balance
func (s *Server) Balance(w http.ResponseWriter, r *http.Request) {
	balance, ref := s.store.Balance()
	respondSuccess(w, map[string]any{
		"balance":     balance.StringFixed(2),
		"ref_balance": ref.StringFixed(2),
	})
}

// Transaction handles POST /api/transaction
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request) {
	shop, err := formInt(r, "shop")
	if err != nil || shop == 0 {
		respondError(w, http.StatusOK, codeBadRequest, "shop is required")
		return
	}
	offset, err := formInt(r, "offset")
	if err != nil {
		respondError(w, http.StatusOK, codeBadRequest, err.Error())
		return
	}

	txs, err := s.store.Transactions(shop, r.PostForm.Get("payment"), int(offset), payok.PageSize)
	if errors.Is(err, ErrUnknownShop) {
		respondError(w, http.StatusOK, codeUnknownShop, "Shop not found")
		return
	}
	if len(txs) == 0 {
		respondError(w, http.StatusOK, codeNoTransactions, "No transactions")
		return
	}

	items := make([]map[string]any, 0, len(txs))
	for _, tx := range txs {
		items = append(items, tx.wire())
	}
	respondCollection(w, items)
}

// Payout handles POST /api/payout
func (s *Server) Payout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := formInt(r, "payout_id")
	if err != nil {
		respondError(w, http.StatusOK, codeBadRequest, err.Error())
		return
	}
	offset, err := formInt(r, "offset")
	if err != nil {
		respondError(w, http.StatusOK, codeBadRequest, err.Error())
		return
	}

	payouts := s.store.Payouts(payoutID, int(offset), payok.PageSize)
	if len(payouts) == 0 {
		respondError(w, http.StatusOK, codeNoPayouts, "No payouts")
		return
	}

	items := make([]map[string]any, 0, len(payouts))
	for _, p := range payouts {
		items = append(items, p.wire(s.opts.LegacyPayouts))
	}
	respondCollection(w, items)
}

// CreatePayout handles POST /api/payout_create. The created payout is
// returned at the top level of the response.
func (s *Server) CreatePayout(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.PostForm.Get("amount"))
	if err != nil || !amount.IsPositive() {
		respondError(w, http.StatusOK, codeBadRequest, "amount must be a positive number")
		return
	}
	method := payok.ParsePaymentMethod(r.PostForm.Get("method"))
	if method == payok.MethodUnknown {
		respondError(w, http.StatusOK, codeBadRequest, "Unsupported payout method")
		return
	}
	receiver := r.PostForm.Get("reciever")
	if receiver == "" {
		respondError(w, http.StatusOK, codeBadRequest, "reciever is required")
		return
	}
	commissionType := payok.CommissionType(r.PostForm.Get("comission_type"))
	if !commissionType.Valid() {
		respondError(w, http.StatusOK, codeBadRequest, "comission_type must be balance or payment")
		return
	}

	p, err := s.store.CreatePayout(method, receiver, amount, commissionType)
	if errors.Is(err, ErrInsufficientBalance) {
		respondError(w, http.StatusOK, codeInsufficientBal, "Insufficient balance")
		return
	}
	if err != nil {
		respondError(w, http.StatusOK, codeInternal, "Payout failed")
		return
	}

	s.logger.Info("payout created", "payout_id", p.ID, "amount", p.Amount.String(), "method", p.Method)
	respondSuccess(w, p.wire(false))
}
