package investment

import (
	"time"

	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
)

type summaryResponse struct {
	Count          int        `json:"count"`
	TotalInvested  int64      `json:"total_invested"`
	TotalProfit    int64      `json:"total_profit"`
	TotalExpected  int64      `json:"total_expected"`
	OldestMaturity *time.Time `json:"oldest_maturity,omitempty"`
}

type listResponse struct {
	resource.Page[resource.Investment]
	Summary *summaryResponse `json:"summary,omitempty"`
}

func toListResponse(p *investment.Page) listResponse {
	resp := listResponse{
		Page: resource.Page[resource.Investment]{
			Data: resource.NewInvestments(p.Investments),
			Meta: p.Meta,
		},
	}

	if s := p.Summary; s != nil {
		resp.Summary = &summaryResponse{
			Count:          s.Count,
			TotalInvested:  s.TotalInvested,
			TotalProfit:    s.TotalProfit,
			TotalExpected:  s.TotalExpected,
			OldestMaturity: s.OldestMaturity,
		}
	}

	return resp
}

type sweepResponse struct {
	Matured int64 `json:"matured"`
}
