package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles shared by the CLI output

const (
	IconSteps   = "👣"
	IconLevelUp = "🎉"
	IconSave    = "💾"
	IconImport  = "📥"
	IconReset   = "🔄"
	IconLocked  = "🔒"
	IconWarn    = "⚠️"
	IconError   = "❌"
)

var (
	cPrimary = lipgloss.Color("#FF75B5") // pink
	cGood    = lipgloss.Color("42")      // green
	cWarn    = lipgloss.Color("214")     // orange
	cBad     = lipgloss.Color("196")     // red
	cMuted   = lipgloss.Color("244")     // gray
	cGold    = lipgloss.Color("#FFD700") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}
