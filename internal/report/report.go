package report

import (
	"fmt"
	"strings"

	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	colorAccent = lipgloss.Color("62")
	colorMuted  = lipgloss.Color("241")
	colorHigh   = lipgloss.Color("196")
	colorNormal = lipgloss.Color("78")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorAccent).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().Width(12)
	metaStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
)

// Render 把 View 渲染为终端文本报告，结构与网页一致：状态、图表、列表
func Render(v dashboard.View) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Rubber Export Disruption Dashboard"))
	sb.WriteString("\n")

	if !v.FetchedAt.IsZero() {
		sb.WriteString(metaStyle.Render("fetched at " + v.FetchedAt.Format("2006-01-02 15:04:05 MST")))
		sb.WriteString("\n")
	}
	if v.FetchError != "" {
		sb.WriteString(errorStyle.Render("feed unavailable: " + v.FetchError))
		sb.WriteString("\n")
	}
	if v.Empty() {
		sb.WriteString(metaStyle.Render("no data available"))
		sb.WriteString("\n")
		return sb.String()
	}

	writeBars(&sb, "Risk levels", v.Summary.Risk)
	writeBars(&sb, "Regions", v.Summary.Region)
	writeBars(&sb, "Countries", v.Summary.Country)

	sb.WriteString(sectionStyle.Render(fmt.Sprintf("Headlines (%d of %d)", len(v.Items), v.Summary.Total)))
	sb.WriteString("\n")
	for _, it := range v.Items {
		sb.WriteString(riskStyle(it.Risk).Render(fmt.Sprintf("[%s]", it.Risk)))
		sb.WriteString(" ")
		sb.WriteString(it.Title)
		sb.WriteString("\n")
		sb.WriteString(metaStyle.Render(fmt.Sprintf("    %s | %s | %s", it.Country, it.Published, it.Link)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeBars(sb *strings.Builder, title string, bs []dashboard.Bucket) {
	sb.WriteString(sectionStyle.Render(title))
	sb.WriteString("\n")
	top := dashboard.Max(bs)
	for _, b := range bs {
		n := 0
		if top > 0 {
			n = b.Count * barWidth / top
		}
		bar := lipgloss.NewStyle().Foreground(barColor(b.Label)).Render(strings.Repeat("█", n))
		fmt.Fprintf(sb, "%s %s %d (%.1f%%)\n", labelStyle.Render(b.Label), bar, b.Count, b.Percent)
	}
}

func barColor(label string) lipgloss.Color {
	switch label {
	case string(processor.RiskHigh):
		return colorHigh
	case string(processor.RiskNormal):
		return colorNormal
	}
	return colorAccent
}

func riskStyle(r processor.Risk) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(barColor(string(r)))
}
