package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/marketvest/internal/app"
	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/config"
	mvHttp "github.com/MrJamesThe3rd/marketvest/internal/http"
	checkoutHandler "github.com/MrJamesThe3rd/marketvest/internal/http/checkout"
	depositHandler "github.com/MrJamesThe3rd/marketvest/internal/http/deposit"
	exportHandler "github.com/MrJamesThe3rd/marketvest/internal/http/export"
	investmentHandler "github.com/MrJamesThe3rd/marketvest/internal/http/investment"
	matchingHandler "github.com/MrJamesThe3rd/marketvest/internal/http/matching"
	orderHandler "github.com/MrJamesThe3rd/marketvest/internal/http/order"
	paymentHandler "github.com/MrJamesThe3rd/marketvest/internal/http/payment"
	settlementHandler "github.com/MrJamesThe3rd/marketvest/internal/http/settlement"
	walletHandler "github.com/MrJamesThe3rd/marketvest/internal/http/wallet"
	"github.com/MrJamesThe3rd/marketvest/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := app.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := app.New(cfg, db)

	router := mvHttp.New(mvHttp.Handlers{
		Checkout:    checkoutHandler.NewHandler(svc.Checkout),
		Payments:    paymentHandler.NewHandler(svc.Payments, cfg.App.FrontendURL+"/payment/result"),
		Orders:      orderHandler.NewHandler(svc.Orders),
		Wallet:      walletHandler.NewHandler(svc.Ledger, svc.Deposits),
		Export:      exportHandler.NewHandler(svc.Export),
		Investments: investmentHandler.NewHandler(svc.Investments),
		Settlements: settlementHandler.NewHandler(svc.Settlements),
		Deposits:    depositHandler.NewHandler(svc.Deposits),
		Mappings:    matchingHandler.NewHandler(svc.Matching),
	}, mvHttp.Options{
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		CallbackToken:  cfg.Gateway.CallbackToken,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepsDone := make(chan struct{})

	if cfg.Sweep.Enabled {
		go func() {
			defer close(sweepsDone)
			scheduler.New(cfg.Sweep.Interval, svc.Sweeps()...).Start(ctx)
		}()
	} else {
		close(sweepsDone)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	<-sweepsDone
}
