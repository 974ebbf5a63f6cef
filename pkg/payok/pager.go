package payok

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// paginate requests pages at increasing offsets until maxResults records
// passing keep are collected, a page comes back empty, or maxPages pages
// were requested. Every page after the first waits interval after the
// previous one returned, however long that fetch took. Any error
// aborts the whole listing and discards what was collected so far.
func paginate[T any](
	ctx context.Context,
	logger *slog.Logger,
	fetch func(ctx context.Context, offset int) ([]T, error),
	keep func(T) bool,
	maxResults, maxPages int,
	interval time.Duration,
) ([]T, error) {
	results := make([]T, 0)

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	var limiter *rate.Limiter
	offset := 0
	for page := 0; page < maxPages; page++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("waiting for page %d: %w", page, err)
			}
		}

		items, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}
		limiter = drainedLimiter(limit)
		logger.Debug("fetched page", "page", page, "offset", offset, "items", len(items))
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if len(results) >= maxResults {
				break
			}
			if keep != nil && !keep(item) {
				continue
			}
			results = append(results, item)
		}
		if len(results) >= maxResults {
			break
		}

		offset += PageSize
	}

	return results, nil
}

// drainedLimiter returns a limiter whose single token is already spent, so
// the next Wait lasts a full interval counted from now
func drainedLimiter(limit rate.Limit) *rate.Limiter {
	l := rate.NewLimiter(limit, 1)
	l.Allow()
	return l
}

// Transactions lists the transactions of a shop across as many pages as
// opts allow, keeping only those in opts.Status when it is set. The result
// holds at most opts.MaxResults records and may be shorter when the shop
// runs out of transactions first. Pages are requested one at a time,
// ClientConfig.PageInterval apart.
func (c *Client) Transactions(ctx context.Context, shop int64, opts *TransactionListOptions) ([]Transaction, error) {
	if opts == nil {
		opts = DefaultTransactionListOptions()
	}

	var keep func(Transaction) bool
	if opts.Status != nil {
		status := *opts.Status
		keep = func(tx Transaction) bool {
			return tx.Status == status
		}
	}

	fetch := func(ctx context.Context, offset int) ([]Transaction, error) {
		return c.Transaction(ctx, shop, &TransactionQuery{Offset: offset})
	}

	return paginate(ctx, c.logger.With("method", "transaction", "shop", shop), fetch, keep,
		opts.MaxResults, opts.MaxPages, c.config.PageInterval)
}

// Payouts lists payouts across pages, see Transactions
func (c *Client) Payouts(ctx context.Context, opts *PayoutListOptions) ([]Payout, error) {
	if opts == nil {
		opts = DefaultPayoutListOptions()
	}

	var keep func(Payout) bool
	if opts.Status != nil {
		status := *opts.Status
		keep = func(p Payout) bool {
			return p.Status == status
		}
	}

	fetch := func(ctx context.Context, offset int) ([]Payout, error) {
		return c.Payout(ctx, &PayoutQuery{Offset: offset})
	}

	return paginate(ctx, c.logger.With("method", "payout"), fetch, keep,
		opts.MaxResults, opts.MaxPages, c.config.PageInterval)
}
