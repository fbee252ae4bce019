package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artpay-checkout/internal/app"
	"artpay-checkout/internal/config"
	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/observability"
	"artpay-checkout/internal/service/checkout"
)

type options struct {
	userID         int64
	orderRef       string
	paymentIntent  string
	redirectStatus string
	mode           string
	paymentMethod  string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run the checkout reconciliation once against the commerce backend",
		Long: `reconcile locates the active order for a customer and then applies a payment
redirect to it or creates the payment intent for it, exactly as the storefront
does on page load. Session state is kept in memory for the single run.`,
		RunE:          func(cmd *cobra.Command, _ []string) error { return run(cmd, opts) },
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.Int64Var(&opts.userID, "user", 0, "Commerce customer id")
	f.StringVar(&opts.orderRef, "order", "", "Explicit order id")
	f.StringVar(&opts.paymentIntent, "payment-intent", "", "Payment intent id returned by the hosted payment page")
	f.StringVar(&opts.redirectStatus, "redirect-status", "", "Redirect status returned by the hosted payment page")
	f.StringVar(&opts.mode, "mode", "standard", "Purchase mode: standard, loan or redeem")
	f.StringVar(&opts.paymentMethod, "payment-method", "", "Payment method override")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	mode, err := domain.ParsePurchaseMode(opts.mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.SessionStore = app.StoreMemory
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := app.Build(ctx, cfg, logger.Named("reconcile"))
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.Sessions.Create(ctx, opts.userID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	res, err := a.Checkout.Run(ctx, st.ID, checkout.Params{
		OrderRef:       opts.orderRef,
		PaymentIntent:  opts.paymentIntent,
		RedirectStatus: domain.RedirectStatus(opts.redirectStatus),
		Mode:           mode,
		PaymentMethod:  opts.paymentMethod,
	})
	if err != nil {
		logger.Debug("reconcile failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
