package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sweatpet/internal/engine"
	"sweatpet/internal/ui"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|-]",
		Short: "Write the pet, activity and achievements to a JSON document",
		Long:  "Export writes " + engine.ExportFileName + " in the current directory unless a file is given. Use - for stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := engine.ExportFileName
			if len(args) == 1 {
				path = args[0]
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := a.engine.Export(ctx)
			if err != nil {
				return err
			}
			data, err := doc.Encode()
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}

			if path == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconSave+" Exported to "+path))
			return nil
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace stored records with the sections of an export document",
		Long: "Import validates the whole document before writing anything. Sections present in the " +
			"document replace the stored records; absent sections are left alone.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.engine.Import(ctx, data); err != nil {
				var importErr *engine.ImportError
				if errors.As(err, &importErr) {
					return fmt.Errorf("nothing imported: %w", err)
				}
				return err
			}

			// report what the document carried
			doc, err := engine.ParseDocument(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconImport+" Imported "+strings.Join(doc.Sections(), ", ")))
			return nil
		},
	}
}
