package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sweatpet/internal/engine"
	"sweatpet/internal/pet"
)

type mode int

const (
	modeMenu mode = iota
	modeSteps
	modeImport
	modeWeekly
	modeAchievements
	modeConfirmReset
)

type menuItem struct {
	label  string
	action func(m *Model) tea.Cmd
}

var menuItems = []menuItem{
	{"Add steps", func(m *Model) tea.Cmd { return m.enterInput(modeSteps, "steps walked", "Steps: ") }},
	{"Feed (+10 health)", careItem(pet.CareFeed)},
	{"Play (+10 happiness)", careItem(pet.CarePlay)},
	{"Rest (+10 energy)", careItem(pet.CareRest)},
	{"Train (+10 strength)", careItem(pet.CareTrain)},
	{"Exercise (+10 agility)", careItem(pet.CareExercise)},
	{"Weekly activity", func(m *Model) tea.Cmd { m.Mode = modeWeekly; return nil }},
	{"Achievements", func(m *Model) tea.Cmd { m.Mode = modeAchievements; return nil }},
	{"Reset today's steps", func(m *Model) tea.Cmd { m.resetToday(); return nil }},
	{"Export data", func(m *Model) tea.Cmd { m.export(); return nil }},
	{"Import data", func(m *Model) tea.Cmd { return m.enterInput(modeImport, engine.ExportFileName, "File: ") }},
	{"Reset everything", func(m *Model) tea.Cmd { m.Mode = modeConfirmReset; return nil }},
	{"Quit", func(m *Model) tea.Cmd { m.Quitting = true; return tea.Quit }},
}

func careItem(action pet.CareAction) func(m *Model) tea.Cmd {
	return func(m *Model) tea.Cmd {
		return m.care(action)
	}
}

// Model is the interactive pet screen
type Model struct {
	Engine         *engine.Engine
	State          engine.State
	Choice         int
	Mode           mode
	Quitting       bool
	Message        string
	MessageExpires time.Time
	Animation      Animation
	Input          textinput.Model
	Progress       progress.Model
	ExportPath     string

	queue []AnimationType
	ctx   context.Context
	now   func() time.Time
}

// ExternalChangeMsg tells the model the engine state changed outside Update,
// for example after another process wrote the store
type ExternalChangeMsg struct{}

type tickMsg time.Time
type animTickMsg struct {
	started time.Time
}

// NewModel creates the model for a loaded engine. Exports are written to
// exportPath.
func NewModel(ctx context.Context, eng *engine.Engine, exportPath string) Model {
	input := textinput.New()
	input.CharLimit = 256
	input.Width = 32

	if exportPath == "" {
		exportPath = engine.ExportFileName
	}

	return Model{
		Engine:     eng,
		State:      eng.Snapshot(),
		Input:      input,
		Progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		ExportPath: exportPath,
		ctx:        ctx,
		now:        time.Now,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func animTick(start time.Time) tea.Cmd {
	return tea.Tick(AnimationFrameDuration, func(t time.Time) tea.Msg {
		return animTickMsg{started: start}
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While an animation is playing, ignore inputs except quit keys
		if m.Animation.Type != AnimNone {
			if msg.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)

	case ExternalChangeMsg:
		m.State = m.Engine.Snapshot()
		return m, nil

	case tickMsg:
		m.State = m.Engine.Snapshot()
		return m, tick()

	case tea.WindowSizeMsg:
		m.Progress.Width = max(10, min(msg.Width-20, 40))
		return m, nil

	case animTickMsg:
		// Drop ticks that belong to an older animation
		if m.Animation.Type == AnimNone || !m.Animation.StartTime.Equal(msg.started) {
			return m, nil
		}

		m.Animation.Frame++
		if IsAnimationComplete(m.Animation) {
			m.Animation = Animation{}
			if len(m.queue) > 0 {
				cmd := m.playNext()
				return m, cmd
			}
			return m, nil
		}
		return m, animTick(m.Animation.StartTime)
	}

	if m.Mode == modeSteps || m.Mode == modeImport {
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.Mode {
	case modeSteps, modeImport:
		switch msg.String() {
		case "esc":
			m.leaveInput()
			return m, nil
		case "enter":
			value := m.Input.Value()
			submitted := m.Mode
			m.leaveInput()
			if submitted == modeSteps {
				cmd := m.addSteps(value)
				return m, cmd
			}
			m.importFile(value)
			return m, nil
		}
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd

	case modeWeekly, modeAchievements:
		switch msg.String() {
		case "q":
			m.Quitting = true
			return m, tea.Quit
		case "esc", "enter", " ", "backspace":
			m.Mode = modeMenu
		}
		return m, nil

	case modeConfirmReset:
		switch msg.String() {
		case "y":
			m.resetAll()
			m.Mode = modeMenu
		case "n", "esc":
			m.Mode = modeMenu
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(menuItems)-1 {
			m.Choice++
		}
	case "s":
		m.retrySave()
	case "enter", " ":
		cmd := menuItems[m.Choice].action(&m)
		return m, cmd
	}
	return m, nil
}

func (m *Model) enterInput(md mode, placeholder, prompt string) tea.Cmd {
	m.Mode = md
	m.Input.Reset()
	m.Input.Placeholder = placeholder
	m.Input.Prompt = prompt
	return m.Input.Focus()
}

func (m *Model) leaveInput() {
	m.Mode = modeMenu
	m.Input.Blur()
	m.Input.Reset()
}

func (m *Model) setMessage(msg string) {
	m.Message = msg
	m.MessageExpires = m.now().Add(3 * time.Second)
}

func (m *Model) refresh() {
	m.State = m.Engine.Snapshot()
}

func (m *Model) startAnimation(animType AnimationType) tea.Cmd {
	m.Animation = Animation{
		Type:      animType,
		Frame:     0,
		StartTime: m.now(),
	}
	return animTick(m.Animation.StartTime)
}

func (m *Model) playNext() tea.Cmd {
	next := m.queue[0]
	m.queue = m.queue[1:]
	return m.startAnimation(next)
}

// ParseSteps validates typed step input: a positive whole number no larger
// than pet.MaxCounter
func ParseSteps(input string) (int, error) {
	steps, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("enter a positive whole number of steps")
	}
	if steps > pet.MaxCounter {
		return 0, fmt.Errorf("enter at most %d steps", pet.MaxCounter)
	}
	return steps, nil
}

func (m *Model) addSteps(input string) tea.Cmd {
	steps, err := ParseSteps(input)
	if err != nil {
		m.setMessage("⚠️ " + err.Error())
		return nil
	}

	result, err := m.Engine.AddSteps(m.ctx, steps)
	m.refresh()
	if err != nil && !isSaveErr(err) {
		m.setMessage("❌ " + err.Error())
		return nil
	}

	m.setMessage(intakeMessage(result, err))
	m.queue = IntakeAnimations(result)
	if len(m.queue) == 0 {
		return nil
	}
	return m.playNext()
}

func intakeMessage(result pet.IntakeResult, saveErr error) string {
	parts := []string{fmt.Sprintf("👣 +%d steps", result.Steps)}
	if result.LevelUp != nil {
		parts = append(parts, fmt.Sprintf("🎉 Level %d!", result.LevelUp.To))
	}
	for _, a := range result.Unlocked {
		parts = append(parts, a.Icon+" "+a.Name)
	}
	if saveErr != nil {
		parts = append(parts, "⚠️ not saved, press s to retry")
	}
	return strings.Join(parts, " • ")
}

func (m *Model) care(action pet.CareAction) tea.Cmd {
	err := m.Engine.Care(m.ctx, action)
	m.refresh()
	if err != nil && !isSaveErr(err) {
		m.setMessage("❌ " + err.Error())
		return nil
	}
	msg := action.Message()
	if err != nil {
		msg += " ⚠️ not saved, press s to retry"
	}
	m.setMessage(msg)
	return m.startAnimation(careAnimations[action])
}

func (m *Model) resetToday() {
	if err := m.Engine.ResetStepsToday(m.ctx); err != nil {
		m.setMessage("❌ " + err.Error())
	} else {
		m.setMessage("🔄 Today's steps reset")
	}
	m.refresh()
}

func (m *Model) resetAll() {
	if err := m.Engine.ResetAll(m.ctx); err != nil {
		m.setMessage("❌ " + err.Error())
	} else {
		m.setMessage("🐣 A brand new pet!")
	}
	m.refresh()
	m.Choice = 0
}

func (m *Model) retrySave() {
	if !m.Engine.Dirty() {
		return
	}
	if err := m.Engine.Save(m.ctx); err != nil {
		m.setMessage("❌ " + err.Error())
		return
	}
	m.setMessage("💾 Saved")
}

func (m *Model) export() {
	doc, err := m.Engine.Export(m.ctx)
	if err == nil {
		var data []byte
		data, err = doc.Encode()
		if err == nil {
			err = os.WriteFile(m.ExportPath, data, 0o644)
		}
	}
	if err != nil {
		m.setMessage("❌ Export failed: " + err.Error())
		return
	}
	m.setMessage("💾 Exported to " + m.ExportPath)
}

func (m *Model) importFile(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = engine.ExportFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.setMessage("❌ " + err.Error())
		return
	}

	err = m.Engine.Import(m.ctx, data)
	m.refresh()
	var importErr *engine.ImportError
	switch {
	case errors.As(err, &importErr):
		m.setMessage(fmt.Sprintf("❌ Import failed: bad %s section", importErr.Section))
	case err != nil:
		m.setMessage("❌ Import failed: " + err.Error())
	default:
		m.setMessage("📥 Data imported")
	}
}

func isSaveErr(err error) bool {
	var saveErr *engine.SaveError
	return errors.As(err, &saveErr)
}
