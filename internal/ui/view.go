package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sweatpet/internal/pet"
)

// StageEmojis holds the sprite for each evolution stage, stage 1 first
var StageEmojis = [pet.StageCount]string{"🐣", "🐱", "😺", "🐯", "🦁"}

// StageEmoji returns the sprite for a stage, clamped to the known stages
func StageEmoji(stage int) string {
	stage = max(1, min(stage, pet.StageCount))
	return StageEmojis[stage-1]
}

var gameStyles = struct {
	title   lipgloss.Style
	status  lipgloss.Style
	menu    lipgloss.Style
	menuBox lipgloss.Style
	stats   lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF75B5")).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(44),

	stats: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(44),

	menu: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")),

	menuBox: lipgloss.NewStyle().
		Padding(0, 2),

	warn: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF0000")),

	dim: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")),
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return "Keep walking! 👣\n"
	}

	// Show animation if one is active
	if m.Animation.Type != AnimNone {
		return m.renderAnimation()
	}

	switch m.Mode {
	case modeWeekly:
		return m.renderPage("📅 Weekly activity", WeeklyChart(m.State.Activity))
	case modeAchievements:
		return m.renderPage("🏅 Achievements", AchievementList(m.State.Achievements))
	case modeConfirmReset:
		return lipgloss.JoinVertical(lipgloss.Left,
			gameStyles.warn.Render("⚠️  Reset everything?"),
			"",
			gameStyles.status.Render("Your pet, weekly activity and achievements will be erased."),
			"",
			gameStyles.status.Render("Press 'y' to confirm, 'n' to cancel"),
		)
	}

	sections := []string{
		m.renderTitle(),
		"",
		m.renderStats(),
		"",
		m.renderProgress(),
		"",
		m.renderStatus(),
	}

	if msg := m.activeMessage(); msg != "" {
		sections = append(sections, "", gameStyles.status.Render(msg))
	}

	if m.Mode == modeSteps || m.Mode == modeImport {
		sections = append(sections,
			"",
			gameStyles.menuBox.Render(m.Input.View()),
			"",
			gameStyles.status.Render("enter to submit • esc to cancel"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	helpText := "Use arrows to move • enter to select • q to quit"
	if m.Engine.Dirty() {
		helpText = "s to retry saving • " + helpText
	}

	sections = append(sections,
		"",
		m.renderMenu(),
		"",
		gameStyles.status.Render(helpText),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) activeMessage() string {
	if m.Message != "" && m.now().Before(m.MessageExpires) {
		return m.Message
	}
	return ""
}

func (m Model) renderTitle() string {
	emoji := StageEmoji(m.State.Stage())
	title := fmt.Sprintf("%s Sweat Pet • Level %d %s", emoji, m.State.Pet.Level, emoji)
	if m.Engine.Dirty() {
		title += gameStyles.warn.Render(" (unsaved)")
	}
	return gameStyles.title.Render(title)
}

func (m Model) renderStats() string {
	p := m.State.Pet
	lines := make([]string, 0, len(pet.Stats)+3)
	for _, s := range pet.Stats {
		v, _ := p.Get(s)
		lines = append(lines, fmt.Sprintf("%-10s [%s] %3.0f%%", statLabel(s)+":", makeBar(v, 10), v))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("%-10s %d", "Today:", p.StepsToday),
		fmt.Sprintf("%-10s %d", "Total:", p.TotalSteps),
	)
	return gameStyles.stats.Render(strings.Join(lines, "\n"))
}

func (m Model) renderProgress() string {
	prog := m.State.Progress()
	if prog.Maxed {
		return gameStyles.stats.Render("Max level reached! 🏆")
	}
	label := gameStyles.dim.Render(fmt.Sprintf("%d / %d steps to level %d", prog.Into, prog.Needed, prog.NextLevel))
	return lipgloss.JoinVertical(lipgloss.Left, m.Progress.ViewAs(prog.Percent/100), label)
}

func (m Model) renderStatus() string {
	return gameStyles.status.Render(fmt.Sprintf("Status: %s", pet.GetStatusWithLabel(m.State.Pet)))
}

func (m Model) renderMenu() string {
	var items []string
	for i, item := range menuItems {
		cursor := " "
		if m.Choice == i {
			cursor = ">"
		}
		items = append(items, fmt.Sprintf("%s %s", cursor, item.label))
	}
	return gameStyles.menuBox.Render(strings.Join(items, "\n"))
}

func (m Model) renderPage(header, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		gameStyles.title.Render(header),
		"",
		gameStyles.menuBox.Render(body),
		"",
		gameStyles.status.Render("esc to go back • q to quit"),
	)
}

func (m Model) renderAnimation() string {
	frame := GetAnimationFrame(m.Animation)

	animStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD700")).
		Bold(true).
		Padding(1, 2)

	sections := []string{
		m.renderTitle(),
		"",
		animStyle.Render(frame),
	}

	if msg := m.activeMessage(); msg != "" {
		sections = append(sections, "", gameStyles.status.Render(msg))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// WeeklyChart renders one bar per weekday scaled to the busiest day
func WeeklyChart(w pet.WeeklyActivity) string {
	const width = 20
	busiest := w.Max()

	var lines []string
	for i, steps := range w {
		filled := 0
		if busiest > 0 {
			filled = steps * width / busiest
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
		lines = append(lines, fmt.Sprintf("%s %s %d", pet.DayNames[i], bar, steps))
	}
	lines = append(lines, "", fmt.Sprintf("Total: %d", w.Total()))
	return strings.Join(lines, "\n")
}

// AchievementList renders the catalog with unlocked entries marked
func AchievementList(unlocked pet.AchievementSet) string {
	var lines []string
	count := 0
	for _, a := range pet.Catalog() {
		if unlocked.Has(a.ID) {
			count++
			lines = append(lines, fmt.Sprintf("%s %s", a.Icon, a.Name))
		} else {
			lines = append(lines, gameStyles.dim.Render("🔒 "+a.Name))
		}
	}
	lines = append(lines, "", fmt.Sprintf("%d / %d unlocked", count, len(pet.Catalog())))
	return strings.Join(lines, "\n")
}

func statLabel(s pet.Stat) string {
	name := string(s)
	return strings.ToUpper(name[:1]) + name[1:]
}

func makeBar(value float64, cells int) string {
	filled := int(value) * cells / int(pet.MaxStat)
	filled = max(0, min(filled, cells))
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}
