package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/matching"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateBankSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
	importStateMapping
)

// ImportModel books a bank statement into customer wallets and lets the
// operator map the transfers nobody claimed yet.
type ImportModel struct {
	CommonModel
	depositService  *deposit.Service
	matchingService *matching.Service

	state        importState
	filePicker   filepicker.Model
	selectedBank statement.Bank
	bankOptions  []statement.Bank
	bankCursor   int
	path         string

	result        *deposit.Result
	unmatchedList list.Model
	form          *huh.Form

	status string
	err    error
}

func NewImportModel(depSvc *deposit.Service, matchSvc *matching.Service, banks []statement.Bank) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv", ".CSV"}
	fp.SetHeight(15)

	return ImportModel{
		depositService:  depSvc,
		matchingService: matchSvc,
		filePicker:      fp,
		bankOptions:     banks,
	}
}

func (m ImportModel) Title() string { return "Import Deposits" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateResult:
		return "m: map selected transfer | i: import again | Esc: back"
	case importStateMapping:
		return "Enter: save | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateBankSelect:
			return m.updateBankSelect(msg)
		case importStateResult:
			return m.updateResult(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.result = msg.result
		m.status = summarize(msg.result)
		m.unmatchedList = newUnmatchedList(msg.result.Unmatched)

		return m, nil

	case mappingSavedMsg:
		m.state = importStateResult
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Mapping not saved: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Mapped %q. Press i to import the file again.", msg.mapping.RawPattern)

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		return m.updateFilePick(msg)
	case importStateMapping:
		return m.updateMapping(msg)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateBankSelect
		return m, nil
	case importStateResult:
		m.state = importStateBankSelect
		m.err = nil
		m.status = ""
		m.result = nil

		return m, nil
	case importStateMapping:
		m.state = importStateResult
		m.form = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateBankSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.bankCursor > 0 {
			m.bankCursor--
		}
	case tea.KeyDown:
		if m.bankCursor < len(m.bankOptions)-1 {
			m.bankCursor++
		}
	case tea.KeyEnter:
		if len(m.bankOptions) == 0 {
			return m, nil
		}

		m.selectedBank = m.bankOptions[m.bankCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd()
	}

	return m, cmd
}

func (m ImportModel) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "i":
		if m.path == "" {
			return m, nil
		}

		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", m.path)

		return m, m.importCmd()
	case "m":
		return m.enterMapping()
	}

	if m.result == nil || len(m.result.Unmatched) == 0 {
		return m, nil
	}

	var cmd tea.Cmd
	m.unmatchedList, cmd = m.unmatchedList.Update(msg)

	return m, cmd
}

func (m ImportModel) enterMapping() (tea.Model, tea.Cmd) {
	item, ok := m.unmatchedList.SelectedItem().(unmatchedItem)
	if m.result == nil || !ok {
		return m, nil
	}

	pattern := item.line.Description
	userID := ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("pattern").
				Title("Reference pattern").
				Description("Part of the description that identifies the customer").
				Value(&pattern).
				Validate(func(s string) error {
					if len([]rune(strings.TrimSpace(s))) < matching.MinPatternLength {
						return fmt.Errorf("pattern must be at least %d characters", matching.MinPatternLength)
					}

					return nil
				}),

			huh.NewInput().
				Key("user_id").
				Title("Customer user id").
				Placeholder("00000000-0000-0000-0000-000000000000").
				Value(&userID).
				Validate(func(s string) error {
					_, err := uuid.Parse(strings.TrimSpace(s))
					return err
				}),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = importStateMapping

	return m, m.form.Init()
}

func (m ImportModel) updateMapping(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	userID := uuid.MustParse(strings.TrimSpace(m.form.GetString("user_id")))

	return m, m.learnCmd(m.form.GetString("pattern"), userID)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateBankSelect:
		return m.viewBankSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select statement to import (%s):\n\n%s", m.selectedBank, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	case importStateMapping:
		return lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render("Map transfer to customer\n\n" + m.form.View())
	}

	return ""
}

func (m ImportModel) viewBankSelect() string {
	s := "Select Bank:\n\n"

	for i, bank := range m.bankOptions {
		cursor := " "
		if i == m.bankCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(bank))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to go back)")
	}

	out := okStyle(m.status)

	if len(m.result.Errors) > 0 {
		lines := make([]string, 0, len(m.result.Errors))
		for _, e := range m.result.Errors {
			lines = append(lines, fmt.Sprintf("  row %d: %s", e.Row, e.Error))
		}

		out += "\n" + errorStyle("Rows not booked:\n"+strings.Join(lines, "\n"))
	}

	if len(m.result.Unmatched) > 0 {
		out += "\n\n" + m.unmatchedList.View()
	}

	return style.Render(out)
}

func summarize(r *deposit.Result) string {
	return fmt.Sprintf("%s statement (%s): credited %d deposit(s) totalling %s, %d unmatched, %d already booked, %d debit(s) ignored.",
		r.Profile, r.Charset, len(r.Credited), FormatAmount(r.Total()), len(r.Unmatched), r.Duplicates, r.Debits)
}

// Messages

type importResultMsg struct {
	result *deposit.Result
	err    error
}

type mappingSavedMsg struct {
	mapping *matching.Mapping
	err     error
}

func (m ImportModel) importCmd() tea.Cmd {
	path := m.path
	bank := m.selectedBank

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.depositService.Import(ctx, bank, f)

		return importResultMsg{result: result, err: err}
	}
}

func (m ImportModel) learnCmd(pattern string, userID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mapping, err := m.matchingService.Learn(ctx, pattern, userID)

		return mappingSavedMsg{mapping: mapping, err: err}
	}
}

// Unmatched list

type unmatchedItem struct {
	line statement.Line
}

func (i unmatchedItem) Title() string       { return i.line.Description }
func (i unmatchedItem) Description() string { return "" }
func (i unmatchedItem) FilterValue() string { return i.line.Description }

func newUnmatchedList(lines []statement.Line) list.Model {
	items := make([]list.Item, len(lines))
	for i, l := range lines {
		items[i] = unmatchedItem{line: l}
	}

	l := list.New(items, unmatchedDelegate{}, 90, 16)
	l.Title = "Unmatched transfers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type unmatchedDelegate struct{}

func (d unmatchedDelegate) Height() int                             { return 1 }
func (d unmatchedDelegate) Spacing() int                            { return 0 }
func (d unmatchedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d unmatchedDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(unmatchedItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%srow %-4d %s  %12s  %s",
		cursor, item.line.Row, FormatDate(item.line.Date), FormatAmount(item.line.Amount), item.line.Description)
}
