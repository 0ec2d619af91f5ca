package app_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marketvest/internal/app"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/config"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type env struct {
	db  *sql.DB
	svc *app.Services
}

func setup(t *testing.T) *env {
	t.Helper()

	dsn := os.Getenv("MARKETVEST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MARKETVEST_TEST_DATABASE_URL not set")
	}

	db, err := database.New(t.Context(), dsn, database.DefaultPool)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Gateway.BaseURL = "http://127.0.0.1:0"
	cfg.Gateway.Timeout = time.Second
	cfg.Payment.PendingTTL = time.Minute

	return &env{db: db, svc: app.New(cfg, db)}
}

func (e *env) user(t *testing.T, funds int64) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	require.NoError(t, e.db.QueryRowContext(t.Context(),
		`INSERT INTO users (email) VALUES ($1) RETURNING id`, uuid.NewString()+"@example.com",
	).Scan(&id))

	if funds > 0 {
		err := database.WithTx(t.Context(), database.NewTransactor(e.db), func(tx database.Tx) error {
			_, err := e.svc.Ledger.Credit(t.Context(), tx, wallet.Entry{
				UserID: id, Amount: funds, Type: wallet.TypeDeposit, Description: "seed",
			})
			return err
		})
		require.NoError(t, err)
	}

	return id
}

type product struct {
	id, companyID, planID uuid.UUID
}

func (e *env) product(t *testing.T, price int64, stock int) product {
	t.Helper()

	var p product
	ctx := t.Context()

	require.NoError(t, e.db.QueryRowContext(ctx,
		`INSERT INTO companies (name) VALUES ('Acme') RETURNING id`).Scan(&p.companyID))
	require.NoError(t, e.db.QueryRowContext(ctx,
		`INSERT INTO products (company_id, name, price, stock_quantity, in_stock) VALUES ($1, 'Lamp', $2, $3, $3 > 0) RETURNING id`,
		p.companyID, price, stock).Scan(&p.id))
	require.NoError(t, e.db.QueryRowContext(ctx,
		`INSERT INTO resale_plans (product_id, label, months, profit_percentage) VALUES ($1, '6 months', 6, 15.00) RETURNING id`,
		p.id).Scan(&p.planID))

	return p
}

func (e *env) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var n int
	require.NoError(t, e.db.QueryRowContext(t.Context(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&n))

	return n
}

func (e *env) assertConsistent(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()

	v, err := e.svc.Ledger.Verify(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, v.Consistent, "balance %d != ledger %d", v.Balance, v.LedgerSum)

	return v.Balance
}

func walletRequest(userID uuid.UUID, p product, qty int) *checkout.Request {
	return &checkout.Request{
		UserID: userID,
		Items: []checkout.Item{{
			ProductID: p.id, CompanyID: p.companyID, Quantity: qty, PurchaseType: order.PurchaseWallet,
		}},
		Shipping: &order.Shipping{Name: "Ana", Phone: "910000000", Address: "Rua 1", City: "Lisboa", PostalCode: "1000-001"},
	}
}

func resaleRequest(userID uuid.UUID, p product) *checkout.Request {
	return &checkout.Request{
		UserID: userID,
		Items: []checkout.Item{{
			ProductID: p.id, CompanyID: p.companyID, Quantity: 1, PurchaseType: order.PurchaseResale, ResalePlanID: &p.planID,
		}},
	}
}

func mixedRequest(userID uuid.UUID, goods, resale product) *checkout.Request {
	req := walletRequest(userID, goods, 1)
	req.Items = append(req.Items, resaleRequest(userID, resale).Items...)

	return req
}

func (e *env) orderCount(t *testing.T, userID uuid.UUID) int {
	t.Helper()

	var n int
	require.NoError(t, e.db.QueryRowContext(t.Context(),
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&n))

	return n
}

func TestCheckout_NoOversell(t *testing.T) {
	e := setup(t)
	p := e.product(t, 1000, 5)

	const buyers = 12

	users := make([]uuid.UUID, buyers)
	for i := range users {
		users[i] = e.user(t, 5000)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		refused int
	)

	for _, u := range users {
		wg.Go(func() {
			_, err := e.svc.Checkout.Checkout(context.Background(), walletRequest(u, p, 1))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				placed++
			case errors.Is(err, checkout.ErrOutOfStock), errors.Is(err, checkout.ErrExceedsStock):
				refused++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		})
	}

	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, refused)
	assert.Equal(t, 0, e.stock(t, p.id))

	var total int64
	for _, u := range users {
		total += e.assertConsistent(t, u)
	}

	assert.Equal(t, int64(buyers*5000-5*1000), total)
}

func TestCheckout_InsufficientBalanceLeavesNothing(t *testing.T) {
	e := setup(t)
	p := e.product(t, 1000, 3)
	u := e.user(t, 999)

	_, err := e.svc.Checkout.Checkout(context.Background(), walletRequest(u, p, 1))
	require.ErrorIs(t, err, checkout.ErrOrderFailed)

	assert.Equal(t, 3, e.stock(t, p.id))
	assert.Equal(t, int64(999), e.assertConsistent(t, u))

	var orders int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id = $1`, u).Scan(&orders))
	assert.Zero(t, orders)
}

func TestOrder_CancelRefunds(t *testing.T) {
	e := setup(t)
	p := e.product(t, 2500, 4)
	u := e.user(t, 10000)

	res, err := e.svc.Checkout.Checkout(context.Background(), walletRequest(u, p, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, e.stock(t, p.id))
	assert.Equal(t, int64(5000), e.assertConsistent(t, u))

	cancelled, err := e.svc.Orders.Cancel(context.Background(), u, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	assert.Equal(t, 4, e.stock(t, p.id))
	assert.Equal(t, int64(10000), e.assertConsistent(t, u))

	_, err = e.svc.Orders.Cancel(context.Background(), u, res.Order.ID)
	assert.ErrorIs(t, err, order.ErrNotCancellable)
	assert.Equal(t, int64(10000), e.assertConsistent(t, u))
}

func TestResale_SettlesOnce(t *testing.T) {
	e := setup(t)
	p := e.product(t, 100000, 0)
	u := e.user(t, 100000)

	res, err := e.svc.Checkout.Checkout(context.Background(), resaleRequest(u, p))
	require.NoError(t, err)
	require.Len(t, res.Investments, 1)

	inv := res.Investments[0]
	assert.Equal(t, int64(15000), inv.ProfitAmount)
	assert.Equal(t, int64(115000), inv.ExpectedReturn)
	assert.Equal(t, investment.StatusActive, inv.Status)
	assert.Equal(t, inv.Plan.MaturityDate(inv.InvestmentDate), inv.MaturityDate)
	assert.Equal(t, int64(0), e.assertConsistent(t, u))

	later := func() time.Time { return time.Now().AddDate(1, 0, 0) }
	settlements := e.svc.Settlements.WithClock(later)

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			_, err := settlements.Run(context.Background())
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	_, err = settlements.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(115000), e.assertConsistent(t, u))

	var returned bool
	require.NoError(t, e.db.QueryRow(`SELECT resale_returned FROM orders WHERE id = $1`, res.Order.ID).Scan(&returned))
	assert.True(t, returned)

	got, err := e.svc.Investments.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusActive, got.Status, "settlement does not touch the investment lifecycle")
}

func TestCheckout_ReserveFailureLeavesNothing(t *testing.T) {
	e := setup(t)
	plenty := e.product(t, 1000, 5)
	scarce := e.product(t, 2000, 1)
	u := e.user(t, 50000)

	// Each line passes the stock check on its own; the second reservation of
	// the scarce product fails after the debit and the first reservations.
	req := walletRequest(u, plenty, 2)
	req.Items = append(req.Items, walletRequest(u, scarce, 1).Items...)
	req.Items = append(req.Items, walletRequest(u, scarce, 1).Items...)

	_, err := e.svc.Checkout.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, checkout.ErrOutOfStock) || errors.Is(err, checkout.ErrExceedsStock), "got %v", err)

	assert.Equal(t, 5, e.stock(t, plenty.id))
	assert.Equal(t, 1, e.stock(t, scarce.id))
	assert.Equal(t, int64(50000), e.assertConsistent(t, u))
	assert.Zero(t, e.orderCount(t, u))

	var movements int
	require.NoError(t, e.db.QueryRow(`
		SELECT COUNT(*) FROM wallet_transactions wt JOIN wallets w ON w.id = wt.wallet_id
		WHERE w.user_id = $1 AND wt.type = 'payment'`, u).Scan(&movements))
	assert.Zero(t, movements)
}

func TestResale_SnapshotSurvivesPlanChanges(t *testing.T) {
	e := setup(t)
	p := e.product(t, 100000, 0)
	u := e.user(t, 100000)

	res, err := e.svc.Checkout.Checkout(context.Background(), resaleRequest(u, p))
	require.NoError(t, err)
	require.Len(t, res.Investments, 1)

	invID := res.Investments[0].ID

	type snapshot struct {
		orderReturn    int64
		orderDate      time.Time
		itemMonths     int
		itemPercentage decimal.Decimal
		itemLabel      string
		itemReturn     int64
		invReturn      int64
		invMonths      int
		invPercentage  decimal.Decimal
		invMaturity    time.Time
	}

	read := func() snapshot {
		var s snapshot
		require.NoError(t, e.db.QueryRow(`
			SELECT o.resale_expected_return, o.resale_return_date,
			       oi.resale_plan_months, oi.resale_plan_profit_percentage, oi.resale_plan_label, oi.resale_expected_return,
			       i.expected_return, i.plan_months, i.plan_profit_percentage, i.maturity_date
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			JOIN investments i ON i.order_item_id = oi.id
			WHERE i.id = $1`, invID,
		).Scan(&s.orderReturn, &s.orderDate,
			&s.itemMonths, &s.itemPercentage, &s.itemLabel, &s.itemReturn,
			&s.invReturn, &s.invMonths, &s.invPercentage, &s.invMaturity))

		return s
	}

	before := read()
	assert.Equal(t, int64(115000), before.orderReturn)
	assert.Equal(t, 6, before.itemMonths)

	_, err = e.db.Exec(`UPDATE resale_plans SET months = 24, profit_percentage = 50.00, label = 'changed' WHERE id = $1`, p.planID)
	require.NoError(t, err)
	_, err = e.db.Exec(`UPDATE products SET price = 1 WHERE id = $1`, p.id)
	require.NoError(t, err)

	after := read()
	assert.Equal(t, before.orderReturn, after.orderReturn)
	assert.True(t, before.orderDate.Equal(after.orderDate))
	assert.Equal(t, before.itemMonths, after.itemMonths)
	assert.True(t, before.itemPercentage.Equal(after.itemPercentage))
	assert.Equal(t, before.itemLabel, after.itemLabel)
	assert.Equal(t, before.itemReturn, after.itemReturn)
	assert.Equal(t, before.invReturn, after.invReturn)
	assert.Equal(t, before.invMonths, after.invMonths)
	assert.True(t, before.invPercentage.Equal(after.invPercentage))
	assert.True(t, before.invMaturity.Equal(after.invMaturity))

	got, err := e.svc.Investments.Get(context.Background(), invID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Plan.Months())
	assert.Equal(t, int64(115000), got.ExpectedReturn)
}

func TestOrder_CancelAfterSettlementRefused(t *testing.T) {
	e := setup(t)
	goods := e.product(t, 1000, 3)
	plan := e.product(t, 4000, 0)
	u := e.user(t, 5000)

	res, err := e.svc.Checkout.Checkout(context.Background(), mixedRequest(u, goods, plan))
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, res.Order.Status)
	assert.Equal(t, int64(0), e.assertConsistent(t, u))

	later := func() time.Time { return time.Now().AddDate(1, 0, 0) }
	_, err = e.svc.Settlements.WithClock(later).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4600), e.assertConsistent(t, u))

	_, err = e.svc.Orders.Cancel(context.Background(), u, res.Order.ID)
	assert.ErrorIs(t, err, order.ErrResaleSettled)

	assert.Equal(t, int64(4600), e.assertConsistent(t, u))
	assert.Equal(t, 2, e.stock(t, goods.id))
}

func TestOrder_CancelAfterMaturityRefused(t *testing.T) {
	e := setup(t)
	goods := e.product(t, 1000, 3)
	plan := e.product(t, 4000, 0)
	u := e.user(t, 5000)

	res, err := e.svc.Checkout.Checkout(context.Background(), mixedRequest(u, goods, plan))
	require.NoError(t, err)
	require.Len(t, res.Investments, 1)

	later := func() time.Time { return time.Now().AddDate(1, 0, 0) }
	_, err = e.svc.Investments.WithClock(later).SweepMatured(context.Background())
	require.NoError(t, err)

	_, err = e.svc.Orders.Cancel(context.Background(), u, res.Order.ID)
	assert.ErrorIs(t, err, investment.ErrMatured)

	assert.Equal(t, int64(0), e.assertConsistent(t, u))
	assert.Equal(t, 2, e.stock(t, goods.id))

	got, err := e.svc.Investments.Get(context.Background(), res.Investments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusMatured, got.Status)

	o, err := e.svc.Orders.Get(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}
