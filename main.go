package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/alexbotov/payok/internal/config"
	"github.com/alexbotov/payok/internal/logger"
	"github.com/alexbotov/payok/internal/sandbox"
	"github.com/alexbotov/payok/pkg/payok"
)

const usage = `usage: payok <command> [flags]

commands:
  balance        show account balance
  transactions   list shop transactions across pages
  payouts        list payouts across pages
  create-payout  request a payout
  link           print a signed payment link
  sandbox        serve an in-memory Payok API

configuration is read from PAYOK_* environment variables and .env`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnv()
	cfg := config.Load()
	log := logger.Init(os.Stderr, cfg.Log.Level)

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return flag.ErrHelp
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "balance":
		return runBalance(ctx, cfg, log, out)
	case "transactions":
		return runTransactions(ctx, cfg, log, args, out)
	case "payouts":
		return runPayouts(ctx, cfg, log, args, out)
	case "create-payout":
		return runCreatePayout(ctx, cfg, log, args, out)
	case "link":
		return runLink(cfg, log, args, out)
	case "sandbox":
		return runSandbox(ctx, cfg, log, args)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newClient(cfg *config.Config, log *slog.Logger) *payok.Client {
	return payok.NewClient(cfg.ClientConfig(log))
}

func printJSON(out io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func runBalance(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	balance, err := newClient(cfg, log).Balance(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, balance)
}

func runTransactions(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("transactions", flag.ContinueOnError)
	fs.SetOutput(out)
	shop := fs.Int64("shop", 0, "shop id (required)")
	payment := fs.String("payment", "", "fetch the single transaction with this payment id")
	maxResults := fs.Int("max", 100, "maximum number of transactions")
	maxPages := fs.Int("pages", 10, "maximum number of pages to request")
	status := fs.String("status", "", "keep only waiting, success or fail")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *shop <= 0 {
		return errors.New("transactions: -shop is required")
	}

	client := newClient(cfg, log)
	if *payment != "" {
		txs, err := client.Transaction(ctx, *shop, &payok.TransactionQuery{PaymentID: *payment})
		if err != nil {
			return err
		}
		return printJSON(out, txs)
	}

	opts := &payok.TransactionListOptions{MaxResults: *maxResults, MaxPages: *maxPages}
	if *status != "" {
		s := payok.ParseTransactionStatus(*status)
		if s == payok.TransactionUnknown {
			return fmt.Errorf("transactions: unknown status %q", *status)
		}
		opts.Status = &s
	}

	txs, err := client.Transactions(ctx, *shop, opts)
	if err != nil {
		return err
	}
	return printJSON(out, txs)
}

func runPayouts(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("payouts", flag.ContinueOnError)
	fs.SetOutput(out)
	payoutID := fs.Int64("id", 0, "fetch the single payout with this id")
	maxResults := fs.Int("max", 100, "maximum number of payouts")
	maxPages := fs.Int("pages", 10, "maximum number of pages to request")
	status := fs.String("status", "", "keep only waiting, success or fail")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := newClient(cfg, log)
	if *payoutID != 0 {
		payouts, err := client.Payout(ctx, &payok.PayoutQuery{PayoutID: *payoutID})
		if err != nil {
			return err
		}
		return printJSON(out, payouts)
	}

	opts := &payok.PayoutListOptions{MaxResults: *maxResults, MaxPages: *maxPages}
	if *status != "" {
		s := payok.ParsePayoutStatus(*status)
		if s == payok.PayoutUnknown {
			return fmt.Errorf("payouts: unknown status %q", *status)
		}
		opts.Status = &s
	}

	payouts, err := client.Payouts(ctx, opts)
	if err != nil {
		return err
	}
	return printJSON(out, payouts)
}

func runCreatePayout(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-payout", flag.ContinueOnError)
	fs.SetOutput(out)
	amount := fs.String("amount", "", "amount to pay out (required)")
	method := fs.String("method", "", "payout method, e.g. card or qiwi (required)")
	receiver := fs.String("receiver", "", "receiver credentials (required)")
	commission := fs.String("commission", string(payok.CommissionFromPayment), "charge commission to balance or payment")
	webhook := fs.String("webhook", "", "webhook URL for status changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("create-payout: invalid amount %q: %w", *amount, err)
	}

	payout, err := newClient(cfg, log).CreatePayout(ctx, &payok.CreatePayoutRequest{
		Amount:         amt,
		Method:         payok.ParsePaymentMethod(*method),
		Receiver:       *receiver,
		CommissionType: payok.CommissionType(*commission),
		WebhookURL:     *webhook,
	})
	if err != nil {
		return err
	}
	return printJSON(out, payout)
}

func runLink(cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	fs.SetOutput(out)
	amount := fs.String("amount", "", "amount to pay (required)")
	payment := fs.String("payment", "", "order id, generated when empty")
	shop := fs.Int64("shop", 0, "shop id (required)")
	desc := fs.String("desc", "", "order description (required)")
	currency := fs.String("currency", string(payok.CurrencyRUB), "payment currency")
	email := fs.String("email", "", "payer email")
	successURL := fs.String("success-url", "", "redirect after payment")
	method := fs.String("method", "", "preselected payment method")
	lang := fs.String("lang", "", "payment page language, RU or EN")
	custom := fs.String("custom", "", "custom parameter echoed in notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("link: invalid amount %q: %w", *amount, err)
	}

	req := &payok.PaymentLinkRequest{
		Amount:      amt,
		PaymentID:   *payment,
		Shop:        *shop,
		Description: *desc,
		Currency:    payok.ParsePaymentCurrency(*currency),
		Email:       *email,
		SuccessURL:  *successURL,
		Lang:        *lang,
		Custom:      *custom,
	}
	if *method != "" {
		req.Method = payok.ParsePaymentMethod(*method)
	}

	link, err := newClient(cfg, log).PaymentLink(req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, link)
	return err
}

func runSandbox(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	shop := fs.Int64("shop", 1, "shop id served by the sandbox")
	balance := fs.String("balance", "10000", "opening account balance")
	transactions := fs.Int("transactions", 250, "number of seeded transactions")
	payouts := fs.Int("payouts", 120, "number of seeded payouts")
	legacy := fs.Bool("legacy-payouts", false, "send payout status codes only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opening, err := decimal.NewFromString(*balance)
	if err != nil {
		return fmt.Errorf("sandbox: invalid balance %q: %w", *balance, err)
	}
	if cfg.API.ID == "" || cfg.API.Key == "" {
		return errors.New("sandbox: PAYOK_API_ID and PAYOK_API_KEY must be set")
	}

	store := sandbox.NewStore(*shop, opening)
	store.Seed(*transactions, *payouts, time.Now().Add(-time.Duration(*transactions)*time.Minute))

	srv := sandbox.New(store, sandbox.Options{
		APIID:         cfg.API.ID,
		APIKey:        cfg.API.Key,
		LegacyPayouts: *legacy,
		Logger:        log,
	})
	return srv.ListenAndServe(ctx, ":"+cfg.Sandbox.Port)
}
