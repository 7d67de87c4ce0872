package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	countriesView
	providersView
	scenarioView
	viewCount
)

var tabNames = [viewCount]string{"Overview", "Countries", "Providers", "Scenario"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Scenario key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "simulate"),
	),
	Scenario: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "next scenario"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Scenario, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter, k.Scenario},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	svc      *analysis.Service
	dataset  *analysis.Dataset
	fileName string

	overview *nodes.AnalysisResult
	// result is the latest scenario run; the tables follow it
	result   *nodes.AnalysisResult
	scenario int

	currentView   view
	targetInput   textinput.Model
	countryTable  table.Model
	providerTable table.Model
	help          help.Model
	keys          keyMap
	width         int
	height        int
	message       string
	messageErr    bool
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func newModel(svc *analysis.Service, ds *analysis.Dataset, fileName string) (model, error) {
	overview, err := svc.Analyze(context.Background(), ds, simulation.None.String(), nil, "")
	if err != nil {
		return model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "us, de  or  AWS, Hetzner"
	ti.CharLimit = 200
	ti.Width = 50

	m := model{
		svc:      svc,
		dataset:  ds,
		fileName: fileName,
		overview: overview,
		result:   overview,
		countryTable: newTable([]table.Column{
			{Title: "Code", Width: 6},
			{Title: "Country", Width: 26},
			{Title: "Region", Width: 10},
			{Title: "Nodes", Width: 8},
			{Title: "Share", Width: 8},
		}),
		providerTable: newTable([]table.Column{
			{Title: "Provider", Width: 32},
			{Title: "Nodes", Width: 8},
			{Title: "Share", Width: 8},
		}),
		targetInput: ti,
		help:        help.New(),
		keys:        keys,
	}
	m.refreshTables()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Scenario):
			m.scenario = (m.scenario + 1) % len(simulation.Scenarios)
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == scenarioView {
				m.simulate()
				return m, nil
			}
		}
	}

	switch m.currentView {
	case scenarioView:
		m.targetInput, cmd = m.targetInput.Update(msg)
		cmds = append(cmds, cmd)
	case countriesView:
		m.countryTable, cmd = m.countryTable.Update(msg)
		cmds = append(cmds, cmd)
	case providersView:
		m.providerTable, cmd = m.providerTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) setView(v view) {
	m.currentView = v
	if v == scenarioView {
		m.targetInput.Focus()
	} else {
		m.targetInput.Blur()
	}
}

func (m *model) selectedScenario() simulation.Scenario {
	return simulation.Scenarios[m.scenario]
}

func (m *model) simulate() {
	scenario := m.selectedScenario()
	var targets []string
	for _, t := range strings.Split(m.targetInput.Value(), ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if scenario.UsesTargets() && len(targets) == 0 {
		m.message = fmt.Sprintf("%s needs at least one target", scenario.Label())
		m.messageErr = true
		return
	}

	result, err := m.svc.Analyze(context.Background(), m.dataset, scenario.String(), targets, "")
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	m.result = result
	m.refreshTables()

	if result.NoMatchingTargets {
		m.message = "no node matched the targets"
		m.messageErr = true
		return
	}
	m.message = fmt.Sprintf("%s removed %d of %d nodes (%s)",
		scenario.Label(), result.FailedNodes, result.TotalNodes, result.ConnectivityLoss())
	m.messageErr = false
}

func (m *model) refreshTables() {
	remaining := m.result.TotalNodes - m.result.FailedNodes

	countryRows := make([]table.Row, 0, len(m.result.Countries))
	for _, c := range m.result.Countries {
		countryRows = append(countryRows, table.Row{
			c.DisplayCode(),
			country.CodeToName(c.Code),
			country.Region(c.Code),
			fmt.Sprintf("%d", c.Value),
			share(c.Value, remaining),
		})
	}
	m.countryTable.SetRows(countryRows)

	providerRows := make([]table.Row, 0, len(m.result.Providers))
	for _, p := range m.result.Providers {
		providerRows = append(providerRows, table.Row{
			p.Name,
			fmt.Sprintf("%d", p.Value),
			share(p.Value, remaining),
		})
	}
	m.providerTable.SetRows(providerRows)
}

func share(part, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("nodelyzer · %s · %s", m.dataset.Network, m.fileName)))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case overviewView:
		s.WriteString(m.renderOverview())
	case countriesView:
		s.WriteString(m.renderTable("Countries", m.countryTable))
	case providersView:
		s.WriteString(m.renderTable("Providers", m.providerTable))
	case scenarioView:
		s.WriteString(m.renderScenario())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	rendered := make([]string, 0, len(tabNames))
	for i, tab := range tabNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderOverview() string {
	o := m.overview
	stats := fmt.Sprintf(`Decentralization
━━━━━━━━━━━━━━━━
Nodes:          %d
With location:  %d
TOR nodes:      %d
Countries:      %d
Providers:      %d

Gini:           %.4f
Nakamoto:       %d
Nakamoto/prov:  %d`,
		o.TotalNodes,
		o.PointCount,
		o.TorCount,
		len(o.Countries),
		len(o.Providers),
		o.Gini,
		o.Nakamoto,
		o.NakamotoByProvider,
	)

	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(stats),
		statsBoxStyle.Render(suggestionList(o)),
	))
}

func suggestionList(r *nodes.AnalysisResult) string {
	var s strings.Builder
	s.WriteString("Suggestions\n━━━━━━━━━━━")
	for _, line := range r.Suggestions {
		s.WriteString("\n• " + line)
	}
	for _, w := range r.Warnings {
		s.WriteString("\n! " + w)
	}
	return lipgloss.NewStyle().Width(60).Render(s.String())
}

func (m model) renderTable(title string, t table.Model) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(title))
	if m.result.Scenario != simulation.None.String() {
		s.WriteString(helpStyle.Render(fmt.Sprintf("after %s", simulation.Scenario(m.result.Scenario).Label())))
	}
	s.WriteString("\n\n")
	s.WriteString(t.View())
	return contentStyle.Render(s.String())
}

func (m model) renderScenario() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Failure Scenario"))
	s.WriteString("\n\n")

	scenario := m.selectedScenario()
	s.WriteString(fmt.Sprintf("Scenario: %s  (ctrl+s to change)\n\n", successStyle.Render(scenario.Label())))
	if scenario.UsesTargets() {
		s.WriteString("Targets, comma separated:\n\n")
		s.WriteString(m.targetInput.View())
		s.WriteString("\n\n")
	}

	r := m.result
	if r.Scenario != simulation.None.String() {
		box := fmt.Sprintf(`Result
━━━━━━
Failed:              %d / %d
Connectivity loss:   %s
Stake loss:          %.2f%%
Remaining countries: %d
Gini:                %.4f
Nakamoto:            %d`,
			r.FailedNodes, r.TotalNodes,
			r.ConnectivityLoss(),
			r.StakeLossPct,
			r.RemainingCountries,
			r.Gini,
			r.Nakamoto,
		)
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statsBoxStyle.Render(box),
			statsBoxStyle.Render(suggestionList(r)),
		))
	}
	return contentStyle.Render(s.String())
}
