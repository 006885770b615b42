// Package chase is a short full-screen minigame: the pet chases a target
// across the terminal at a pace set by its stats.
package chase

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sweatpet/internal/pet"
)

const (
	tickInterval   = 70 * time.Millisecond
	minVisibleRows = 6
)

// petEmoji picks the chasing sprite from the pet's condition
func petEmoji(p pet.Pet, distX, distY int) string {
	if absInt(distX) <= 2 && absInt(distY) <= 1 {
		return "😻" // about to catch
	}

	switch {
	case p.Health < pet.LowStatThreshold:
		return pet.StatusEmojiSick
	case p.Energy < pet.LowStatThreshold:
		return pet.StatusEmojiTired
	case p.Happiness < pet.LowStatThreshold:
		return pet.StatusEmojiSad
	case p.Agility >= pet.HighStatThreshold:
		return "😼"
	default:
		return pet.StatusEmojiHappy
	}
}

// Pace is how many frames the pet needs per step. Agile pets move every
// frame; tired ones every third.
func Pace(p pet.Pet) int {
	switch {
	case p.Agility >= pet.HighStatThreshold:
		return 1
	case p.Energy < pet.LowStatThreshold:
		return 3
	default:
		return 2
	}
}

// Target defines what the pet can chase
type Target struct {
	Emoji string
	Name  string
	Speed int // Frames to move 1 position
}

// Available targets
var Targets = map[string]Target{
	"butterfly": {Emoji: "🦋", Name: "butterfly", Speed: 3},
	"ball":      {Emoji: "⚽", Name: "ball", Speed: 4},
	"mouse":     {Emoji: "🐁", Name: "mouse", Speed: 2},
}

// TargetNames lists the targets alphabetically
func TargetNames() []string {
	names := make([]string, 0, len(Targets))
	for name := range Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model is the Bubble Tea model for the chase
type Model struct {
	Pet        pet.Pet
	Target     Target
	TermWidth  int
	TermHeight int
	PetPosX    int
	PetPosY    int
	TargetPosX int
	TargetPosY int
	Frame      int
	Caught     bool
}

type animTickMsg time.Time

// NewModel places the pet at the left edge with the target a few cells ahead
func NewModel(p pet.Pet, target Target) Model {
	return Model{
		Pet:        p,
		Target:     target,
		TargetPosX: 5,
	}
}

// Run plays the chase until the target is caught or escapes, or a key is
// pressed. It reports whether the pet caught the target.
func Run(p pet.Pet, targetName string, in io.Reader, out io.Writer) (bool, error) {
	target, ok := Targets[targetName]
	if !ok {
		return false, fmt.Errorf("unknown chase target %q (want one of %s)", targetName, strings.Join(TargetNames(), ", "))
	}

	program := tea.NewProgram(NewModel(p, target), tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("run chase: %w", err)
	}
	return final.(Model).Caught, nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.TermWidth = msg.Width
		m.TermHeight = msg.Height
		m.clampPositions()
		return m, nil

	case animTickMsg:
		m.Frame++

		if m.TermWidth == 0 || m.TermHeight == 0 {
			return m, tick()
		}

		if m.Frame%m.Target.Speed == 0 {
			m.TargetPosX++

			if m.TargetPosX >= m.maxX() {
				return m, tea.Quit
			}

			// Vertical flutter pattern using sine wave
			height := float64(m.visibleRows())
			amplitude := height / 3.0
			centerY := height / 2.0
			frequency := 0.2

			m.TargetPosY = int(centerY + amplitude*math.Sin(float64(m.TargetPosX)*frequency))
			m.clampPositions()
		}

		if m.Frame%Pace(m.Pet) == 0 {
			distX := m.TargetPosX - m.PetPosX
			distY := m.TargetPosY - m.PetPosY

			if distX > 1 {
				m.PetPosX++
			}
			if distY > 0 {
				m.PetPosY++
			} else if distY < 0 {
				m.PetPosY--
			}
			m.clampPositions()
		}

		if absInt(m.TargetPosX-m.PetPosX) <= 1 && m.TargetPosY == m.PetPosY {
			m.Caught = true
			return m, tea.Quit
		}

		return m, tick()
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if m.TermWidth == 0 || m.TermHeight == 0 {
		return "Initializing..."
	}
	if m.Caught {
		return fmt.Sprintf("😻 Caught the %s!\n", m.Target.Name)
	}

	rows := m.visibleRows()
	sprite := petEmoji(m.Pet, m.TargetPosX-m.PetPosX, m.TargetPosY-m.PetPosY)

	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", m.TermWidth))
	}

	place := func(x, y int, s string) {
		if y < 0 || y >= rows || x < 0 || x >= m.TermWidth-2 {
			return
		}
		for i, r := range []rune(s) {
			if x+i < m.TermWidth {
				grid[y][x+i] = r
			}
		}
	}
	place(m.TargetPosX, m.TargetPosY, m.Target.Emoji)
	place(m.PetPosX, m.PetPosY, sprite)

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteRune('\n')
	}
	b.WriteString("\nPress any key to stop")
	return b.String()
}

func (m *Model) clampPositions() {
	rows := m.visibleRows()
	if rows < 1 {
		return
	}

	m.PetPosX = max(0, min(m.PetPosX, m.maxX()))
	m.TargetPosX = max(0, min(m.TargetPosX, m.maxX()))
	m.PetPosY = max(0, min(m.PetPosY, rows-1))
	m.TargetPosY = max(0, min(m.TargetPosY, rows-1))
}

func (m Model) visibleRows() int {
	if m.TermHeight <= 0 {
		return 0
	}
	return max(m.TermHeight-2, minVisibleRows)
}

func (m Model) maxX() int {
	if m.TermWidth <= 2 {
		return 0
	}
	return m.TermWidth - 2
}
