package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/marketvest/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/marketvest/internal/app"
	"github.com/MrJamesThe3rd/marketvest/internal/config"
)

type model struct {
	svc        *app.Services
	operatorID uuid.UUID

	currentView View

	payoutView  view.PayoutModel
	historyView view.HistoryModel
	sweepView   view.SweepModel
	importView  view.ImportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewPayouts View = 1
	ViewHistory View = 2
	ViewSweeps  View = 3
	ViewImport  View = 4
)

func initialModel() model {
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

	operatorID, err := uuid.Parse(cfg.Admin.OperatorID)
	if err != nil {
		slog.Warn("ADMIN_OPERATOR_ID is not a valid user id; payouts are disabled", "error", err)
	}

	return model{
		svc:         app.New(cfg, db),
		operatorID:  operatorID,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPayouts
				m.payoutView = view.NewPayoutModel(m.svc.Investments, m.operatorID)

				return m, m.payoutView.Init()
			case "2":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.svc.Investments)

				return m, m.historyView.Init()
			case "3":
				m.currentView = ViewSweeps
				m.sweepView = view.NewSweepModel(m.svc.Settlements, m.svc.Investments, m.svc.Payments)

				return m, m.sweepView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.svc.Deposits, m.svc.Matching, m.svc.Statements.Banks())

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPayouts:
		var newModel tea.Model
		newModel, cmd = m.payoutView.Update(msg)
		m.payoutView = newModel.(view.PayoutModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewSweeps:
		var newModel tea.Model
		newModel, cmd = m.sweepView.Update(msg)
		m.sweepView = newModel.(view.SweepModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Marketvest Admin\n\n" +
				"1. Payout Queue\n" +
				"2. Payout History\n" +
				"3. Run Sweeps\n" +
				"4. Import Deposits\n\n" +
				"q. Quit",
		)
	case ViewPayouts:
		return m.payoutView.View() + "\n" + helpStyle(m.payoutView.ShortHelp())
	case ViewHistory:
		return m.historyView.View() + "\n" + helpStyle(m.historyView.ShortHelp())
	case ViewSweeps:
		return m.sweepView.View() + "\n" + helpStyle(m.sweepView.ShortHelp())
	case ViewImport:
		return m.importView.View() + "\n" + helpStyle(m.importView.ShortHelp())
	}

	return "Unknown View"
}

func helpStyle(s string) string {
	return lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(s)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
