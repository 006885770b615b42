package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sweatpet/internal/chase"
	"sweatpet/internal/ui"
)

func newChaseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "chase [target]",
		Short:     "Let the pet chase a butterfly, ball or mouse; agility sets its pace",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: chase.TargetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "butterfly"
			if len(args) == 1 {
				target = args[0]
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			caught, err := chase.Run(a.engine.Snapshot().Pet, target, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if caught {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("😻 Caught the "+target+"!"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("The "+target+" got away. More steps, more agility!"))
			}
			return nil
		},
	}
}
