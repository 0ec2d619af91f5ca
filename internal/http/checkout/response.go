package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
)

type checkoutResponse struct {
	Order       resource.Order        `json:"order"`
	Investments []resource.Investment `json:"investments"`
}

func toCheckoutResponse(res *checkout.Result) checkoutResponse {
	return checkoutResponse{
		Order:       resource.NewOrder(res.Order),
		Investments: resource.NewInvestments(res.Investments),
	}
}

type quoteLine struct {
	ProductID      uuid.UUID          `json:"product_id"`
	ProductName    string             `json:"product_name"`
	Quantity       int                `json:"quantity"`
	PurchaseType   order.PurchaseType `json:"purchase_type"`
	UnitPrice      int64              `json:"unit_price"`
	TotalPrice     int64              `json:"total_price"`
	Plan           *resource.Plan     `json:"resale_plan,omitempty"`
	ProfitAmount   *int64             `json:"profit_amount,omitempty"`
	ExpectedReturn *int64             `json:"expected_return,omitempty"`
	MaturityDate   *time.Time         `json:"maturity_date,omitempty"`
}

type quoteResponse struct {
	Type                 order.Type      `json:"type"`
	Lines                []quoteLine     `json:"lines"`
	Subtotal             int64           `json:"subtotal"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	DiscountAmount       int64           `json:"discount_amount"`
	Total                int64           `json:"total"`
	ResaleExpectedReturn int64           `json:"resale_expected_return"`
	ResaleReturnDate     *time.Time      `json:"resale_return_date,omitempty"`
}

func toQuoteResponse(q *checkout.Quote) quoteResponse {
	resp := quoteResponse{
		Type:                 q.Type,
		Lines:                make([]quoteLine, 0, len(q.Lines)),
		Subtotal:             q.Subtotal,
		DiscountPercent:      q.DiscountPercent,
		DiscountAmount:       q.DiscountAmount,
		Total:                q.Total,
		ResaleExpectedReturn: q.ResaleExpectedReturn,
		ResaleReturnDate:     q.ResaleReturnDate,
	}

	for _, l := range q.Lines {
		line := quoteLine{
			ProductID:    l.Item.ProductID,
			ProductName:  l.ProductName,
			Quantity:     l.Item.Quantity,
			PurchaseType: l.Item.PurchaseType,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
		}

		if l.Plan != nil {
			line.Plan = new(resource.NewPlan(*l.Plan))
		}

		if l.Terms != nil {
			line.ProfitAmount = &l.Terms.Profit
			line.ExpectedReturn = &l.Terms.ExpectedReturn
			line.MaturityDate = &l.Terms.MaturityDate
		}

		resp.Lines = append(resp.Lines, line)
	}

	return resp
}
