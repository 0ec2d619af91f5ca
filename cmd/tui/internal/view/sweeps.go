package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/payment"
	"github.com/MrJamesThe3rd/marketvest/internal/settlement"
)

const sweepTimeout = 2 * time.Minute

type sweepKind int

const (
	sweepSettlement sweepKind = iota
	sweepMaturity
	sweepPayments
)

var sweepLabels = []string{
	"Settle due resale returns",
	"Mark matured investments",
	"Expire stale gateway payments",
}

// SweepModel triggers the periodic sweeps by hand.
type SweepModel struct {
	CommonModel
	settlementService *settlement.Service
	invService        *investment.Service
	paymentService    *payment.Service

	cursor  int
	spinner spinner.Model
	running bool
	log     []string
}

func NewSweepModel(setSvc *settlement.Service, invSvc *investment.Service, paySvc *payment.Service) SweepModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SweepModel{
		settlementService: setSvc,
		invService:        invSvc,
		paymentService:    paySvc,
		spinner:           sp,
	}
}

func (m SweepModel) Title() string     { return "Sweeps" }
func (m SweepModel) ShortHelp() string { return "↑/↓: choose | Enter: run | Esc: back" }

func (m SweepModel) Init() tea.Cmd {
	return nil
}

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sweepDoneMsg:
		m.running = false

		line := okStyle(msg.summary)
		if msg.err != nil {
			line = errorStyle(fmt.Sprintf("%s failed: %v", sweepLabels[msg.kind], msg.err))
		}

		m.log = append(m.log, fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), line))

		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.running {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown:
			if m.cursor < len(sweepLabels)-1 {
				m.cursor++
			}
		case tea.KeyEnter:
			m.running = true
			return m, tea.Batch(m.spinner.Tick, m.runCmd(sweepKind(m.cursor)))
		}
	}

	return m, nil
}

func (m SweepModel) View() string {
	var b strings.Builder

	b.WriteString("Run a sweep:\n\n")

	for i, label := range sweepLabels {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, label)
	}

	if m.running {
		fmt.Fprintf(&b, "\n%s running %s...\n", m.spinner.View(), strings.ToLower(sweepLabels[m.cursor]))
	}

	if len(m.log) > 0 {
		b.WriteString("\n" + strings.Join(m.log, "\n") + "\n")
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

type sweepDoneMsg struct {
	kind    sweepKind
	summary string
	err     error
}

func (m SweepModel) runCmd(kind sweepKind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		switch kind {
		case sweepMaturity:
			n, err := m.invService.SweepMatured(ctx)
			return sweepDoneMsg{kind: kind, summary: fmt.Sprintf("%d investment(s) matured", n), err: err}
		case sweepPayments:
			n, err := m.paymentService.ExpireStale(ctx)
			return sweepDoneMsg{kind: kind, summary: fmt.Sprintf("%d pending payment(s) expired", n), err: err}
		}

		res, err := m.settlementService.Run(ctx)
		if err != nil {
			return sweepDoneMsg{kind: kind, err: err}
		}

		summary := fmt.Sprintf("settled %d order(s), credited %s", res.Processed, FormatAmount(res.Credited))
		if len(res.Errors) > 0 {
			summary += fmt.Sprintf(", %d failed", len(res.Errors))
		}

		return sweepDoneMsg{kind: kind, summary: summary}
	}
}
