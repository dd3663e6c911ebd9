// Package dashui provides the Bubble Tea dashboard interface.
package dashui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trackos/internal/model"
	"trackos/internal/stats"
	"trackos/internal/store"
)

const (
	tabToday = iota
	tabInsights
	tabGoals
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	goodStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AD786"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	store    *store.Store
	settings model.Settings

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int
}

// NewModel constructs a dashboard model and loads the initial report.
func NewModel(st *store.Store, settings model.Settings) *Model {
	m := &Model{
		store:    st,
		settings: settings,
		tabs:     []string{"Today", "Insights", "Goals"},
	}
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "1", "2", "3":
			m.activeTab = int(msg.String()[0] - '1')
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.viewports[m.activeTab].View(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Tracking day %s  week %s  boundary %02d:00",
		m.report.TodayKey, m.report.WeekKey, m.settings.DayBoundaryHour)
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(summary, m.width)), m.width)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right or 1-3  Scroll: up/down  Refresh: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.settings, time.Now().UnixMilli())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load dashboard data.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabToday].SetContent(renderToday(m.report, m.settings, width))
	m.viewports[tabInsights].SetContent(renderInsights(m.report, m.settings))
	m.viewports[tabGoals].SetContent(renderGoals(m.report))
}

func renderToday(r stats.Report, settings model.Settings, width int) string {
	calories := fmt.Sprintf("%.0f / %.0f", r.TodayCalories, r.CalorieTarget)
	calCard := metricCard("Calories today", calorieValue(calories, r.TodayCalories, r.CalorieTarget))

	weight := "-"
	if r.HasWeightToday {
		weight = fmt.Sprintf("%.1f %s", r.WeightToday, settings.BodyWeightUnit)
	}
	weightCard := metricCard("Weight", cardValueStyle.Render(weight))

	trend := "-"
	if r.HasTrend {
		trend = fmt.Sprintf("%+.2f %s/wk", r.TrendPerWeek, settings.BodyWeightUnit)
	}
	trendCard := metricCard("Trend", cardValueStyle.Render(trend))

	workouts := fmt.Sprintf("%d", r.WeekWorkoutCount)
	if r.HasWeeklyGoal {
		workouts = fmt.Sprintf("%d / %.0f", r.WeekWorkoutCount, r.WeeklyGoalTarget)
	}
	workoutCard := metricCard("Workouts this week", cardValueStyle.Render(workouts))

	cards := []string{calCard, weightCard, trendCard, workoutCard}
	var top string
	if width < 80 {
		top = strings.Join(cards, "\n")
	} else {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	sections := []string{top}
	if len(settings.CaloriePresets) > 0 {
		parts := make([]string, len(settings.CaloriePresets))
		for i, p := range settings.CaloriePresets {
			parts[i] = fmt.Sprintf("%d", p)
		}
		sections = append(sections, headerStyle.Render(
			"Quick add: trackos calories add "+strings.Join(parts, " | ")))
	}
	if len(r.Spotlights) > 0 {
		lines := []string{cardTitleStyle.Render("Pinned exercises (35 days)")}
		for _, sp := range r.Spotlights {
			if sp.HasData {
				lines = append(lines, fmt.Sprintf("  %-20s e1RM %.1f  %+.1f%%", sp.Name, sp.Latest, sp.ChangePct))
			} else {
				lines = append(lines, fmt.Sprintf("  %-20s no recent sets", sp.Name))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if r.HasWeeklyGoal && r.Streak > 0 {
		sections = append(sections, goodStyle.Render(fmt.Sprintf("Streak: %d weeks", r.Streak)))
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderInsights(r stats.Report, settings model.Settings) string {
	var buf bytes.Buffer
	if err := stats.RenderInsights(&buf, r, settings); err != nil {
		return fmt.Sprintf("Failed to render insights: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderGoals(r stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderGoals(&buf, r.Goals); err != nil {
		return fmt.Sprintf("Failed to render goals: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func calorieValue(text string, total, target float64) string {
	if target > 0 && total > target {
		return warnStyle.Bold(true).Render(text)
	}
	return cardValueStyle.Render(text)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), value)
	return cardStyle.Render(content)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
