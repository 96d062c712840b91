package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

func newConnectCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "connect <name|alias>",
		Aliases: []string{"c", "ssh"},
		Short:   "Open an interactive ssh session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			entry, err := resolveInteractive(reg, args[0], interactive(cmd))
			if err != nil {
				return err
			}
			spec := a.dispatcher.Command(entry)
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), spec.String())
				return nil
			}
			if interactive(cmd) {
				printInfo(cmd.ErrOrStderr(), "Connecting to %s...", entry)
			}
			return a.launch(cmd, entry, spec, events.TypeConnect)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the ssh command instead of running it")
	return cmd
}

func newCopyCmd(a *app) *cobra.Command {
	var from bool
	cmd := &cobra.Command{
		Use:     "copy <name|alias> <source> <destination>",
		Aliases: []string{"cp", "scp"},
		Short:   "Copy a file to (or with --from, from) a server with scp",
		Example: "  hop copy db1 ./dump.sql /tmp/dump.sql\n" +
			"  hop copy db1 /var/log/syslog ./syslog --from",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			entry, err := resolveInteractive(reg, args[0], interactive(cmd))
			if err != nil {
				return err
			}
			spec := a.dispatcher.CopyCommand(entry, args[1], args[2], from)
			return a.launch(cmd, entry, spec, events.TypeCopy)
		},
	}
	cmd.Flags().BoolVar(&from, "from", false, "copy from the server to the local machine")
	return cmd
}

// launch runs spec to completion and records the session. A non-zero
// child status comes back as *sshclient.ExitError so main can exit with it.
func (a *app) launch(cmd *cobra.Command, entry model.ServerEntry, spec sshclient.CommandSpec, kind string) error {
	status, err := a.dispatcher.Launch(cmd.Context(), spec)
	if err != nil {
		return err
	}

	a.touch(entry.Name)
	a.record(events.Event{Server: entry.Name, Type: kind, Command: spec.String(), ExitCode: &status})
	if status != 0 {
		return &sshclient.ExitError{Program: spec.Program, Code: status}
	}
	return nil
}
