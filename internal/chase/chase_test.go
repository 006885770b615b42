package chase

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"sweatpet/internal/pet"
)

func TestTargets(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantEmoji string
	}{
		{"butterfly exists", "butterfly", "🦋"},
		{"ball exists", "ball", "⚽"},
		{"mouse exists", "mouse", "🐁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, exists := Targets[tt.target]
			if !exists {
				t.Fatalf("Target %q does not exist", tt.target)
			}
			if target.Name != tt.target {
				t.Errorf("Name = %q, want %q", target.Name, tt.target)
			}
			if target.Emoji != tt.wantEmoji {
				t.Errorf("Emoji = %q, want %q", target.Emoji, tt.wantEmoji)
			}
			if target.Speed <= 0 {
				t.Errorf("Speed = %d, want > 0", target.Speed)
			}
		})
	}

	if got := strings.Join(TargetNames(), ","); got != "ball,butterfly,mouse" {
		t.Errorf("TargetNames() = %s", got)
	}
}

func TestPace(t *testing.T) {
	tests := []struct {
		name string
		pet  pet.Pet
		want int
	}{
		{"agile pet moves every frame", pet.Pet{Agility: 85, Energy: 50}, 1},
		{"agility wins over low energy", pet.Pet{Agility: 85, Energy: 10}, 1},
		{"tired pet is slow", pet.Pet{Agility: 10, Energy: 20}, 3},
		{"default pace", pet.NewPet(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pace(tt.pet); got != tt.want {
				t.Errorf("Pace() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPetEmoji(t *testing.T) {
	healthy := pet.Pet{Health: 50, Happiness: 50, Energy: 50, Agility: 10}
	tests := []struct {
		name     string
		pet      pet.Pet
		distX    int
		distY    int
		expected string
	}{
		{"about to catch", healthy, 1, 0, "😻"},
		{"close but not touching still excites", healthy, 2, 1, "😻"},
		{"unwell pet", pet.Pet{Health: 10, Happiness: 50, Energy: 50}, 10, 5, pet.StatusEmojiSick},
		{"tired pet", pet.Pet{Health: 50, Happiness: 50, Energy: 20}, 10, 5, pet.StatusEmojiTired},
		{"sad pet", pet.Pet{Health: 50, Happiness: 20, Energy: 50}, 10, 5, pet.StatusEmojiSad},
		{"agile pet", pet.Pet{Health: 50, Happiness: 50, Energy: 50, Agility: 90}, 10, 5, "😼"},
		{"default", healthy, 10, 5, pet.StatusEmojiHappy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := petEmoji(tt.pet, tt.distX, tt.distY); got != tt.expected {
				t.Errorf("petEmoji() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func sized(p pet.Pet, target string) Model {
	m := NewModel(p, Targets[target])
	m.TermWidth = 80
	m.TermHeight = 24
	return m
}

func step(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(animTickMsg{})
	return next.(Model), cmd
}

func TestModel_Init(t *testing.T) {
	if NewModel(pet.NewPet(), Targets["ball"]).Init() == nil {
		t.Error("Init() returned nil, expected tick")
	}
}

func TestModel_Update_KeyMsgQuits(t *testing.T) {
	m := sized(pet.NewPet(), "butterfly")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("KeyMsg should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("KeyMsg should quit")
	}
}

func TestModel_Update_WindowSizeMsg(t *testing.T) {
	m := NewModel(pet.NewPet(), Targets["butterfly"])
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	updated := next.(Model)

	if updated.TermWidth != 100 || updated.TermHeight != 30 {
		t.Errorf("size = %dx%d, want 100x30", updated.TermWidth, updated.TermHeight)
	}
}

func TestModel_Update_WaitsForSize(t *testing.T) {
	m := NewModel(pet.NewPet(), Targets["mouse"])
	m, cmd := step(m)
	if m.Frame != 1 {
		t.Errorf("Frame = %d, want 1", m.Frame)
	}
	if m.TargetPosX != 5 || m.PetPosX != 0 {
		t.Error("nothing should move before the first resize")
	}
	if cmd == nil {
		t.Error("expected another tick")
	}
}

func TestModel_Update_TargetMovesOnItsSpeed(t *testing.T) {
	m := sized(pet.NewPet(), "butterfly")
	m.Frame = Targets["butterfly"].Speed - 1

	m, _ = step(m)
	if m.TargetPosX != 6 {
		t.Errorf("TargetPosX = %d, want 6", m.TargetPosX)
	}
}

func TestModel_Update_TargetEscapesAtEdge(t *testing.T) {
	m := sized(pet.NewPet(), "butterfly")
	m.TargetPosX = m.maxX() - 1
	m.Frame = Targets["butterfly"].Speed - 1

	m, cmd := step(m)
	if m.Caught {
		t.Error("escaped target should not count as caught")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("run should end when the target reaches the edge")
	}
}

func TestModel_Update_Catch(t *testing.T) {
	m := sized(pet.NewPet(), "ball")
	m.PetPosX, m.PetPosY = 10, 5
	m.TargetPosX, m.TargetPosY = 11, 5

	m, cmd := step(m)
	if !m.Caught {
		t.Fatal("adjacent target on the same row should be caught")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("catch should end the run")
	}
	if !strings.Contains(m.View(), "Caught the ball") {
		t.Errorf("View() = %q", m.View())
	}
}

func play(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 2000; i++ {
		m, _ = step(m)
		if m.Caught || m.TargetPosX >= m.maxX() {
			return m
		}
	}
	t.Fatal("chase never ended")
	return m
}

func TestAgilePetCatchesButterfly(t *testing.T) {
	m := play(t, sized(pet.Pet{Health: 90, Happiness: 90, Energy: 90, Agility: 90}, "butterfly"))
	if !m.Caught {
		t.Error("an agile pet should catch the butterfly")
	}
}

func TestTiredPetLosesMouse(t *testing.T) {
	m := play(t, sized(pet.Pet{Health: 50, Happiness: 50, Energy: 10, Agility: 10}, "mouse"))
	if m.Caught {
		t.Error("a tired pet should not catch the mouse")
	}
}

func TestModel_View(t *testing.T) {
	if got := NewModel(pet.NewPet(), Targets["ball"]).View(); got != "Initializing..." {
		t.Errorf("View() before resize = %q", got)
	}

	m := sized(pet.NewPet(), "ball")
	view := m.View()
	if !strings.Contains(view, "⚽") {
		t.Error("view should contain the target")
	}
	if !strings.Contains(view, pet.StatusEmojiHappy) {
		t.Error("view should contain the pet")
	}
	if lines := strings.Count(view, "\n"); lines != m.visibleRows()+1 {
		t.Errorf("view has %d newlines, want %d", lines, m.visibleRows()+1)
	}
}

func TestClampOnResize(t *testing.T) {
	m := sized(pet.NewPet(), "ball")
	m.PetPosX, m.PetPosY = 70, 20
	m.TargetPosX, m.TargetPosY = 75, 22

	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	m = next.(Model)

	if m.PetPosX > m.maxX() || m.TargetPosX > m.maxX() {
		t.Errorf("x not clamped: pet %d target %d max %d", m.PetPosX, m.TargetPosX, m.maxX())
	}
	if m.PetPosY >= m.visibleRows() || m.TargetPosY >= m.visibleRows() {
		t.Errorf("y not clamped: pet %d target %d rows %d", m.PetPosY, m.TargetPosY, m.visibleRows())
	}
	if m.visibleRows() != minVisibleRows {
		t.Errorf("visibleRows() = %d, want minimum %d", m.visibleRows(), minVisibleRows)
	}
}

func TestRunRejectsUnknownTarget(t *testing.T) {
	_, err := Run(pet.NewPet(), "dragon", strings.NewReader(""), &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), "dragon") {
		t.Errorf("Run() error = %v, want unknown target", err)
	}
}
