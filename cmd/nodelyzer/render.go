package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// maxTableRows caps the country and provider tables
const maxTableRows = 10

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func row(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

func renderDetect(network nodes.Network, rule string) string {
	return row("network", network) + "\n" + row("matched rule", rule)
}

func renderParse(network nodes.Network, p nodes.ParseResult) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s dump", network)),
		row("nodes", len(p.Nodes)),
		row("with coordinates", len(p.Points)),
		row("countries", len(p.Counts)),
		row("tor nodes", p.TorCount),
	}
	if len(p.Counts) > 0 {
		lines = append(lines, "", countryTable(p.Counts, len(p.Nodes)))
	}
	return strings.Join(lines, "\n")
}

func renderAnalysis(fileName string, r *nodes.AnalysisResult) string {
	summary := []string{
		titleStyle.Render(fmt.Sprintf("%s · %s", r.Network, fileName)),
		row("scenario", r.Scenario),
		row("nodes", r.TotalNodes),
		row("failed nodes", r.FailedNodes),
		row("connectivity loss", r.ConnectivityLoss()),
		row("stake loss", fmt.Sprintf("%.2f%%", r.StakeLossPct)),
		row("gini", fmt.Sprintf("%.4f", r.Gini)),
		row("nakamoto (country)", r.Nakamoto),
		row("nakamoto (provider)", r.NakamotoByProvider),
		row("remaining countries", r.RemainingCountries),
		row("tor nodes", r.TorCount),
	}

	var b strings.Builder
	b.WriteString(boxStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n")

	if len(r.Countries) > 0 {
		b.WriteString("\n" + countryTable(r.Countries, r.TotalNodes-r.FailedNodes) + "\n")
	}
	if len(r.Providers) > 0 {
		b.WriteString("\n" + providerTable(r.Providers) + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("suggestions") + "\n")
	for _, s := range r.Suggestions {
		b.WriteString("  • " + s + "\n")
	}
	for _, w := range r.Warnings {
		b.WriteString(warnStyle.Render("  ! "+w) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func countryTable(counts []nodes.CountryCount, total int) string {
	lines := []string{titleStyle.Render("countries")}
	for i, c := range counts {
		if i == maxTableRows {
			lines = append(lines, fmt.Sprintf("  … %d more", len(counts)-maxTableRows))
			break
		}
		share := 0.0
		if total > 0 {
			share = float64(c.Value) / float64(total) * 100
		}
		lines = append(lines, fmt.Sprintf("  %-4s %-24s %6d %6.2f%%",
			c.DisplayCode(), truncate(country.CodeToName(c.Code), 24), c.Value, share))
	}
	return strings.Join(lines, "\n")
}

func providerTable(providers []nodes.ProviderCount) string {
	lines := []string{titleStyle.Render("providers")}
	for i, p := range providers {
		if i == maxTableRows {
			lines = append(lines, fmt.Sprintf("  … %d more", len(providers)-maxTableRows))
			break
		}
		lines = append(lines, fmt.Sprintf("  %-29s %6d", truncate(p.Name, 29), p.Value))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
