// Package app assembles the services shared by the API server, the operator
// CLI and the admin console.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/marketvest/internal/cart"
	cartStore "github.com/MrJamesThe3rd/marketvest/internal/cart/store"
	"github.com/MrJamesThe3rd/marketvest/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/marketvest/internal/catalog/store"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/config"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	depositStore "github.com/MrJamesThe3rd/marketvest/internal/deposit/store"
	"github.com/MrJamesThe3rd/marketvest/internal/export"
	"github.com/MrJamesThe3rd/marketvest/internal/gateway"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	investmentStore "github.com/MrJamesThe3rd/marketvest/internal/investment/store"
	"github.com/MrJamesThe3rd/marketvest/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/marketvest/internal/matching/store"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	orderStore "github.com/MrJamesThe3rd/marketvest/internal/order/store"
	"github.com/MrJamesThe3rd/marketvest/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/marketvest/internal/payment/store"
	"github.com/MrJamesThe3rd/marketvest/internal/scheduler"
	"github.com/MrJamesThe3rd/marketvest/internal/settlement"
	settlementStore "github.com/MrJamesThe3rd/marketvest/internal/settlement/store"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
	"github.com/MrJamesThe3rd/marketvest/internal/statement/cgd"
	"github.com/MrJamesThe3rd/marketvest/internal/stock"
	stockStore "github.com/MrJamesThe3rd/marketvest/internal/stock/store"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
	walletStore "github.com/MrJamesThe3rd/marketvest/internal/wallet/store"
)

type Services struct {
	Ledger      *wallet.Ledger
	Stock       *stock.Service
	Investments *investment.Service
	Orders      *order.Service
	Checkout    *checkout.Orchestrator
	Payments    *payment.Service
	Settlements *settlement.Service
	Statements  *statement.Service
	Matching    *matching.Service
	Deposits    *deposit.Service
	Export      *export.Service
}

func New(cfg *config.Config, db *sql.DB) *Services {
	tx := database.NewTransactor(db)

	s := &Services{
		Ledger:      wallet.NewLedger(walletStore.New(db)),
		Stock:       stock.NewService(stockStore.New()),
		Investments: investment.NewService(investmentStore.New(db)),
		Statements:  statement.NewService(map[statement.Bank]statement.Parser{statement.BankCGD: cgd.NewParser()}),
		Matching:    matching.NewService(matchingStore.New(db)),
	}

	s.Orders = order.NewService(orderStore.New(db), tx, s.Ledger, s.Stock, s.Investments)

	s.Checkout = checkout.NewOrchestrator(checkout.Deps{
		DB:          db,
		Tx:          tx,
		Catalog:     catalog.NewService(catalogStore.New()),
		Ledger:      s.Ledger,
		Stock:       s.Stock,
		Investments: s.Investments,
		Orders:      s.Orders,
		Cart:        cart.NewService(cartStore.New()),
	})

	s.Payments = payment.NewService(
		paymentStore.New(db),
		tx,
		gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.Timeout),
		s.Checkout,
		s.Ledger,
		payment.Options{CallbackURL: cfg.App.PublicURL, TTL: cfg.Payment.PendingTTL},
	)

	s.Settlements = settlement.NewService(settlementStore.New(db), tx, s.Ledger)
	s.Deposits = deposit.NewService(depositStore.New(db), tx, s.Statements, s.Matching, s.Ledger)
	s.Export = export.NewService(s.Ledger)

	return s
}

// Sweeps returns the periodic jobs run by the scheduler and by shopctl.
func (s *Services) Sweeps() []scheduler.Job {
	return []scheduler.Job{
		{Name: "maturity", Run: func(ctx context.Context) error {
			_, err := s.Investments.SweepMatured(ctx)
			return err
		}},
		{Name: "settlement", Run: func(ctx context.Context) error {
			_, err := s.Settlements.Run(ctx)
			return err
		}},
		{Name: "payments", Run: func(ctx context.Context) error {
			_, err := s.Payments.ExpireStale(ctx)
			return err
		}},
	}
}

// Open connects to the configured database, migrating it when enabled.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	return db, nil
}
