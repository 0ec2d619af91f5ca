package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

// HistoryModel lists investments that have already been paid out.
type HistoryModel struct {
	CommonModel
	invService *investment.Service

	table   table.Model
	page    pagination.Request
	current *investment.Page
	loading bool
	err     error
}

func NewHistoryModel(invSvc *investment.Service) HistoryModel {
	return HistoryModel{
		invService: invSvc,
		table: newTable([]table.Column{
			{Title: "Paid", Width: 12},
			{Title: "Order", Width: 22},
			{Title: "Customer", Width: 28},
			{Title: "Product", Width: 24},
			{Title: "Profit", Width: 10},
			{Title: "Return", Width: 12},
		}),
		page:    pagination.Request{Page: 1, PerPage: pagination.DefaultPerPage},
		loading: true,
	}
}

func (m HistoryModel) Title() string     { return "Payout History" }
func (m HistoryModel) ShortHelp() string { return "Esc: back | n/b: next/prev page | r: refresh" }

func (m HistoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.current = msg.page
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			if m.current != nil && m.page.Page < m.current.Meta.TotalPages {
				m.page.Page++
				return m, m.loadCmd()
			}

			return m, nil
		case "b":
			if m.page.Page > 1 {
				m.page.Page--
				return m, m.loadCmd()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payout history...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("%s payouts | page %d/%d",
		activeStyle(fmt.Sprint(m.current.Meta.Total)),
		m.current.Meta.Page, max(m.current.Meta.TotalPages, 1),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	))
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.current.Investments))
	for _, inv := range m.current.Investments {
		paid := ""
		if inv.PaidOutAt != nil {
			paid = FormatDate(*inv.PaidOutAt)
		}

		rows = append(rows, table.Row{
			paid,
			inv.OrderNumber,
			inv.UserEmail,
			inv.ProductName,
			FormatAmount(inv.ProfitAmount),
			FormatAmount(inv.ExpectedReturn),
		})
	}

	m.table.SetRows(rows)
}

type historyLoadMsg struct {
	page *investment.Page
	err  error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	page := m.page

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.invService.ListPaid(ctx, page)

		return historyLoadMsg{page: p, err: err}
	}
}
