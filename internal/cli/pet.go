package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sweatpet/internal/pet"
	"sweatpet/internal/ui"
)

func newAddCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <steps>",
		Short: "Record steps walked",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("step count is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := ui.ParseSteps(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.engine.AddSteps(ctx, steps)
			out := cmd.OutOrStdout()
			if result.Applied() {
				p := a.engine.Snapshot().Pet
				fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s +%d steps", ui.IconSteps, result.Steps)))
				fmt.Fprintln(out, ui.LabelValue("Today", p.StepsToday))
				fmt.Fprintln(out, ui.LabelValue("Total", p.TotalSteps))
				if up := result.LevelUp; up != nil {
					msg := fmt.Sprintf("%s Level up! %d → %d", ui.IconLevelUp, up.From, up.To)
					if up.Levels() > 1 {
						msg += fmt.Sprintf(" (+%d levels)", up.Levels())
					}
					fmt.Fprintln(out, ui.Gold.Render(msg))
				}
				for _, ach := range result.Unlocked {
					fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s Achievement unlocked: %s", ach.Icon, ach.Name)))
				}
			}
			return err
		},
	}
	return cmd
}

func newCareCmd(flags *globalFlags) *cobra.Command {
	names := make([]string, len(pet.CareActions))
	for i, a := range pet.CareActions {
		names[i] = string(a)
	}

	cmd := &cobra.Command{
		Use:       "care <" + strings.Join(names, "|") + ">",
		Short:     "Care for the pet (+10 to one stat)",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := pet.ParseCareAction(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.engine.Care(ctx, action); err != nil {
				return err
			}

			p := a.engine.Snapshot().Pet
			value, _ := p.Get(action.Stat())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, action.Message())
			fmt.Fprintln(out, ui.LabelValue(capitalize(string(action.Stat())), fmt.Sprintf("%.0f%%", value)))
			return nil
		},
	}
	return cmd
}

func newResetTodayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-today",
		Short: "Clear today's step counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.engine.ResetStepsToday(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconReset+" Today's steps reset"))
			return nil
		},
	}
}

func newResetAllCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Erase the pet, weekly activity and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset-all erases everything; rerun with --yes to confirm")
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.engine.ResetAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("🐣 A brand new pet!"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the pet's stats and level progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			state := a.engine.Snapshot()
			if interactive {
				return ui.DisplayStats(state, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.StatsCard(state))
			if a.engine.Dirty() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" unsaved changes"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show the card full screen until a key is pressed")
	return cmd
}

func newAchievementsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			unlocked := a.engine.Snapshot().Achievements
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading("🏅", "Achievements"))
			count := 0
			for _, ach := range pet.Catalog() {
				if unlocked.Has(ach.ID) {
					count++
					fmt.Fprintf(out, "- %s %s\n", ach.Icon, ui.Good.Render(ach.Name))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.IconLocked, ui.Muted.Render(ach.Name))
				}
			}
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d / %d unlocked", count, len(pet.Catalog()))))
			return nil
		},
	}
}

func newActivityCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activity",
		Short: "Show steps per weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading("📅", "Weekly activity"))
			fmt.Fprintln(out, ui.WeeklyChart(a.engine.Snapshot().Activity))
			return nil
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
