package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/registry"
)

func newImportCmd(a *app) *cobra.Command {
	var formatName string
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import servers from a JSON file or an ssh_config",
		Long: "Import servers from a file. Without --merge the imported servers\n" +
			"replace the saved ones; entries that collide are skipped.",
		Example: "  hop import servers.json --merge\n" +
			"  hop import ~/.ssh/config --format ssh-config --merge",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFormat(formatName)
			if err != nil {
				return err
			}
			res, err := config.ImportFile(args[0], format, defaultUser())
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			for _, w := range res.Warnings {
				printWarning(errOut, "%s", w)
			}

			var reg *registry.Registry
			if merge {
				reg, err = a.store.Load()
			} else {
				reg, err = registry.New()
			}
			if err != nil {
				return err
			}

			added, skipped := 0, 0
			for _, e := range res.Entries {
				if err := reg.Add(e); err != nil {
					skipped++
					printWarning(errOut, "Skipped %s: %v", e, err)
					continue
				}
				added++
				printSuccess(out, "Imported: %s", e.WithDefaults())
			}
			if err := a.store.Save(reg); err != nil {
				return err
			}
			a.record(events.Event{Type: events.TypeImport, Message: fmt.Sprintf("%s: added %d, skipped %d", args[0], added, skipped)})
			printSuccess(out, "Import complete. Added: %d, Skipped: %d", added, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(config.FormatJSON), "input format: json or ssh-config")
	cmd.Flags().BoolVarP(&merge, "merge", "m", false, "keep the saved servers and add the imported ones")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var formatName string
	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Write saved servers to a file (- for stdout)",
		Example: "  hop export backup.json\n" +
			"  hop export - --format ssh-config >> ~/.ssh/config",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFormat(formatName)
			if err != nil {
				return err
			}
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := config.Export(&buf, format, reg.List()); err != nil {
				return err
			}
			if args[0] == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(args[0], buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			printSuccess(cmd.OutOrStdout(), "Exported %d servers to %s", reg.Len(), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(config.FormatJSON), "output format: json or ssh-config")
	return cmd
}
