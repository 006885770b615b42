package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"sweatpet/internal/engine"
	"sweatpet/internal/pet"
)

// StatsModel is a simple Bubble Tea model for displaying stats
type StatsModel struct {
	State engine.State
}

// Init implements tea.Model
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, tea.Quit
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m StatsModel) View() string {
	return StatsCard(m.State) + "\nPress ESC, click, or any key to close..."
}

// StatsCard renders a boxed summary of the pet suitable for plain output
func StatsCard(state engine.State) string {
	p := state.Pet
	emoji := StageEmoji(state.Stage())
	prog := state.Progress()

	next := "max level"
	if !prog.Maxed {
		next = fmt.Sprintf("%d/%d to L%d", prog.Into, prog.Needed, prog.NextLevel)
	}

	var s strings.Builder
	s.WriteString("╔════════════════════════════════════╗\n")
	s.WriteString(fmt.Sprintf("║  %-34s║\n", fmt.Sprintf("%s Sweat Pet %s", emoji, emoji)))
	s.WriteString("╠════════════════════════════════════╣\n")
	s.WriteString(fmt.Sprintf("║  Level:   %-25s║\n", fmt.Sprintf("%d (stage %d)", p.Level, state.Stage())))
	s.WriteString(fmt.Sprintf("║  Next:    %-25s║\n", next))
	s.WriteString(fmt.Sprintf("║  Status:  %-25s║\n", pet.GetStatusWithLabel(p)))
	s.WriteString(fmt.Sprintf("║  Today:   %-25d║\n", p.StepsToday))
	s.WriteString(fmt.Sprintf("║  Total:   %-25d║\n", p.TotalSteps))
	s.WriteString("║                                    ║\n")
	for _, st := range pet.Stats {
		v, _ := p.Get(st)
		s.WriteString(fmt.Sprintf("║  %-10s [%s] %3.0f%%        ║\n", statLabel(st)+":", makeBar(v, 10), v))
	}
	s.WriteString("╚════════════════════════════════════╝\n")
	return s.String()
}

// DisplayStats shows the stats display
func DisplayStats(state engine.State, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(StatsModel{State: state},
		tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithInput(in), tea.WithOutput(out))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run stats display: %w", err)
	}
	return nil
}
