package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

type payoutState int

const (
	payoutStateBrowse payoutState = iota
	payoutStateConfirm
)

// PayoutModel is the queue of matured investments waiting to be paid out
// outside the platform.
type PayoutModel struct {
	CommonModel
	invService *investment.Service
	operatorID uuid.UUID

	state   payoutState
	table   table.Model
	page    pagination.Request
	current *investment.Page
	form    *huh.Form
	confirm bool

	loading bool
	err     error
	status  string
}

func NewPayoutModel(invSvc *investment.Service, operatorID uuid.UUID) PayoutModel {
	return PayoutModel{
		invService: invSvc,
		operatorID: operatorID,
		table: newTable([]table.Column{
			{Title: "Matured", Width: 12},
			{Title: "Order", Width: 22},
			{Title: "Customer", Width: 28},
			{Title: "Product", Width: 24},
			{Title: "Invested", Width: 12},
			{Title: "Return", Width: 12},
		}),
		page:    pagination.Request{Page: 1, PerPage: pagination.DefaultPerPage},
		loading: true,
	}
}

func (m PayoutModel) Title() string { return "Payout Queue" }

func (m PayoutModel) ShortHelp() string {
	if m.state == payoutStateConfirm {
		return "←/→: choose | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | p: pay out | n/b: next/prev page | r: refresh"
}

func (m PayoutModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PayoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case payoutLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.current = msg.page
		m.refreshTable()

		return m, nil

	case payoutDoneMsg:
		m.state = payoutStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Payout failed: %v", msg.err))
		} else {
			m.status = okStyle(fmt.Sprintf("Paid out %s for order %s", FormatAmount(msg.inv.ExpectedReturn), msg.inv.OrderNumber))
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state == payoutStateConfirm {
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m PayoutModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
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
		case "b":
			if m.page.Page > 1 {
				m.page.Page--
				return m, m.loadCmd()
			}
		case "p":
			return m.enterConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PayoutModel) selected() *investment.Investment {
	idx := m.table.Cursor()
	if m.current == nil || idx < 0 || idx >= len(m.current.Investments) {
		return nil
	}

	return m.current.Investments[idx]
}

func (m PayoutModel) enterConfirm() (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil {
		return m, nil
	}

	if m.operatorID == uuid.Nil {
		m.status = errorStyle("ADMIN_OPERATOR_ID is not set; payouts are disabled")
		return m, nil
	}

	m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Pay %s to %s?", FormatAmount(inv.ExpectedReturn), inv.UserEmail)).
				Description(fmt.Sprintf("Order %s, %s", inv.OrderNumber, inv.ProductName)).
				Affirmative("Paid").
				Negative("Cancel").
				Value(&m.confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = payoutStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m PayoutModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = payoutStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("confirm") {
		m.state = payoutStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.payCmd(m.selected().ID)
}

func (m PayoutModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading matured investments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := "Nothing to pay out."
	if s := m.current.Summary; s != nil && s.Count > 0 {
		header = fmt.Sprintf("%s investments owed | %s to pay | oldest maturity %s | page %d/%d",
			activeStyle(fmt.Sprint(s.Count)),
			activeStyle(FormatAmount(s.TotalExpected)),
			FormatDate(*s.OldestMaturity),
			m.current.Meta.Page, max(m.current.Meta.TotalPages, 1),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == payoutStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PayoutModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.current.Investments))
	for _, inv := range m.current.Investments {
		rows = append(rows, table.Row{
			FormatDate(inv.MaturityDate),
			inv.OrderNumber,
			inv.UserEmail,
			inv.ProductName,
			FormatAmount(inv.InvestedAmount),
			FormatAmount(inv.ExpectedReturn),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type payoutLoadMsg struct {
	page *investment.Page
	err  error
}

func (m PayoutModel) loadCmd() tea.Cmd {
	page := m.page

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.invService.ListMatured(ctx, page)

		return payoutLoadMsg{page: p, err: err}
	}
}

type payoutDoneMsg struct {
	inv *investment.Investment
	err error
}

func (m PayoutModel) payCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invService.MarkPaid(ctx, id, m.operatorID)

		return payoutDoneMsg{inv: inv, err: err}
	}
}
