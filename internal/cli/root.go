// Package cli wires the sweatpet commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sweatpet/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	configPath string
	dataDir    string
	backend    string
	verbose    bool
}

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the TUI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "sweatpet",
		Short:         "Sweat Pet: a virtual pet that grows with every step you take",
		Long:          "Sweat Pet turns your daily step count into stats, levels and achievements for a terminal pet.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}
	root.Version = Version
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/sweatpet/config.yaml)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "Directory holding the pet records")
	pf.StringVar(&flags.backend, "backend", "", "Storage backend (file|sqlite|memory)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newAddCmd(flags),
		newCareCmd(flags),
		newResetTodayCmd(flags),
		newResetAllCmd(flags),
		newStatsCmd(flags),
		newAchievementsCmd(flags),
		newActivityCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newChaseCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		return 1
	}
	return 0
}
