package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"optitech/internal/app/analysis"
	"optitech/internal/app/common"
	"optitech/internal/app/optimize"
	"optitech/internal/app/restore"
	"optitech/internal/domain/ledger"
)

type menuAction int

const (
	actionNone menuAction = iota
	actionOptimize
	actionRestore
	actionAnalyze
)

type menuItem struct {
	Title       string
	Description string
	Action      menuAction
	Confirm     string
	Exit        bool
}

type menuModel struct {
	items    []menuItem
	cursor   int
	selected menuAction
	exit     bool
}

func newMenuModel() menuModel {
	return menuModel{
		items: []menuItem{
			{Title: "Optimize services", Description: "Apply the optimization profile to service startup types", Action: actionOptimize,
				Confirm: "Change the startup type of the services in the profile?"},
			{Title: "Restore services", Description: "Undo the changes made in this session", Action: actionRestore,
				Confirm: "Restore the original startup types recorded in this session?"},
			{Title: "Analyze system", Description: "Collect system figures and save a report", Action: actionAnalyze},
			{Title: "Exit", Description: "Close interactive mode", Exit: true},
		},
	}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.exit = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			item := m.items[m.cursor]
			if item.Exit {
				m.exit = true
			} else {
				m.selected = item.Action
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("OptiTech Interactive")
	hint := lipgloss.NewStyle().Faint(true).Render("Use ↑/↓ (or j/k), Enter to run, q to quit")

	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	defaultStyle := lipgloss.NewStyle()
	descStyle := lipgloss.NewStyle().Faint(true)

	lines := []string{title, hint, ""}
	for i, item := range m.items {
		cursor := "  "
		style := defaultStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		lines = append(lines, style.Render(cursor+item.Title))
		lines = append(lines, descStyle.Render("   "+item.Description))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m menuModel) item(action menuAction) menuItem {
	for _, it := range m.items {
		if it.Action == action {
			return it
		}
	}
	return menuItem{}
}

// confirmModel asks a yes/no question. Anything but an explicit yes declines.
type confirmModel struct {
	prompt    string
	confirmed bool
	done      bool
}

func newConfirmModel(prompt string) confirmModel { return confirmModel{prompt: prompt} }

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y", "s":
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case "n", "enter", "esc", "q", "ctrl+c":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	warn := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Render(m.prompt)
	hint := lipgloss.NewStyle().Faint(true).Render("[y/N]")
	return lipgloss.NewStyle().Padding(1, 2).Render(warn + " " + hint)
}

// interactiveSession owns the rollback ledger for as long as the menu runs.
type interactiveSession struct {
	app    *common.AppContext
	ledger *ledger.Ledger
	out    io.Writer
}

func newInteractiveSession(app *common.AppContext, out io.Writer) *interactiveSession {
	confirmed := *app
	confirmed.Options.Yes = true
	return &interactiveSession{app: &confirmed, ledger: ledger.New(), out: out}
}

func (s *interactiveSession) run(ctx context.Context, action menuAction) error {
	switch action {
	case actionOptimize:
		res, err := optimize.NewService().Run(ctx, s.app, optimize.Options{Apply: true, Ledger: s.ledger})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Optimization finished: %d services changed, %d unchanged, %d not found, %d errors.\n",
			res.Summary.Changed, res.Summary.Unchanged, res.Summary.NotFound, res.Summary.Errors)
		fmt.Fprintf(s.out, "%d changes can be restored in this session.\n", s.ledger.Len())
	case actionRestore:
		if s.ledger.Len() == 0 {
			fmt.Fprintln(s.out, "No changes recorded in this session; nothing to restore.")
			return nil
		}
		res, err := restore.NewService().Run(ctx, s.app, restore.Options{Ledger: s.ledger})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Restoration finished: %d of %d services restored.\n", res.Summary.Changed, res.Summary.ItemsTotal)
	case actionAnalyze:
		res, err := analysis.NewService().Run(ctx, s.app, analysis.Options{Top: 5, Report: true})
		if err != nil {
			return err
		}
		if m, ok := res.Metrics.(analysis.Metrics); ok && m.ReportPath != "" {
			fmt.Fprintf(s.out, "Report saved to %s\n", m.ReportPath)
		}
	}
	return nil
}

var (
	runMenu    = runTeaModel
	runConfirm = runTeaModel
)

func runTeaModel(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

func runInteractiveMenu(ctx context.Context, app *common.AppContext) error {
	session := newInteractiveSession(app, os.Stdout)
	for {
		result, err := runMenu(newMenuModel())
		if err != nil {
			return err
		}

		m, ok := result.(menuModel)
		if !ok || m.exit {
			return nil
		}
		if m.selected == actionNone {
			continue
		}

		if prompt := m.item(m.selected).Confirm; prompt != "" && !app.Options.DryRun {
			answer, err := runConfirm(newConfirmModel(prompt))
			if err != nil {
				return err
			}
			if c, ok := answer.(confirmModel); !ok || !c.confirmed {
				fmt.Fprintln(session.out, "Cancelled.")
				continue
			}
		}

		fmt.Fprintln(session.out)
		if err := session.run(ctx, m.selected); err != nil {
			return fmt.Errorf("interactive command failed: %w", err)
		}
		fmt.Fprintln(session.out)
	}
}
