package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sweatpet/internal/engine"
	"sweatpet/internal/ui"
)

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx, flags, "")
	if err != nil {
		return err
	}
	defer cleanup()

	model := ui.NewModel(ctx, a.engine, defaultExportPath())
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	// Send blocks until Update reads it, and engine events also fire from
	// inside Update
	unsubscribe := a.engine.Subscribe(func(ev engine.Event) {
		if ev.Type != engine.EventStateChanged {
			return
		}
		go program.Send(ui.ExternalChangeMsg{})
	})
	defer unsubscribe()

	w, err := a.startWatcher(ctx)
	if err != nil {
		a.log.Warn("store watcher disabled", zap.Error(err))
	}
	if w != nil {
		defer w.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run pet screen: %w", err)
	}
	return nil
}
