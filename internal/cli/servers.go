package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/history"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

func newAddCmd(a *app) *cobra.Command {
	var alias, userName, host string
	var port int
	cmd := &cobra.Command{
		Use:   "add <name> [user@host[:port]]",
		Short: "Save a server under a name",
		Example: "  hop add prod-db forge@192.168.1.20\n" +
			"  hop add web --host 10.0.0.5 --user deploy --port 2222 --alias w",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := model.ServerEntry{Name: args[0]}
			if len(args) == 2 {
				u, h, p, err := model.ParseTarget(args[1])
				if err != nil {
					return &model.ValidationError{Field: "destination", Value: args[1], Reason: err.Error()}
				}
				entry.User, entry.Host, entry.Port = u, h, p
			}
			flags := cmd.Flags()
			if flags.Changed("alias") {
				entry.Alias = alias
			}
			if flags.Changed("user") {
				entry.User = userName
			}
			if flags.Changed("host") {
				entry.Host = host
			}
			if flags.Changed("port") {
				if err := checkPort(port); err != nil {
					return err
				}
				entry.Port = port
			}
			if entry.User == "" {
				entry.User = defaultUser()
			}

			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := reg.Add(entry); err != nil {
				return err
			}
			if err := a.store.Save(reg); err != nil {
				return err
			}
			saved, _ := reg.Resolve(entry.Name)
			a.record(events.Event{Server: saved.Name, Type: events.TypeAdd, Message: saved.String()})
			printSuccess(cmd.OutOrStdout(), "Added server: %s", saved)
			return nil
		},
	}
	cmd.Flags().StringVarP(&alias, "alias", "a", "", "short alternative name")
	cmd.Flags().StringVarP(&userName, "user", "u", "", "login user (default: current user)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "hostname or IP address")
	cmd.Flags().IntVarP(&port, "port", "p", util.DefaultSSHPort, "ssh port")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var verbose, recent, jsonOut bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			entries := reg.List()
			if recent && a.history != nil {
				lastUsed, err := a.history.LastUsed()
				if err != nil {
					slog.Warn("history unavailable", "err", err)
				}
				entries = history.SortRecent(entries, lastUsed)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if entries == nil {
					entries = []model.ServerEntry{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				printInfo(out, "No servers configured. Use 'hop add' to add a server.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if verbose {
				fmt.Fprintln(tw, "NAME\tALIAS\tUSER\tHOST\tPORT\tCOMMAND")
			} else {
				fmt.Fprintln(tw, "NAME\tALIAS\tUSER\tHOST\tPORT")
			}
			for _, e := range entries {
				if verbose {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", e.Name, util.EmptyDash(e.Alias), e.User, e.Host, e.EffectivePort(), a.dispatcher.Command(e))
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Name, util.EmptyDash(e.Alias), e.User, e.Host, e.EffectivePort())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the ssh command for each server")
	cmd.Flags().BoolVarP(&recent, "recent", "r", false, "most recently used first")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "remove <name|alias>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved server",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			target, err := reg.Resolve(args[0])
			if err != nil {
				return err
			}
			if !force && a.settings.ConfirmRemove && interactive(cmd) {
				ok, err := confirm(fmt.Sprintf("Remove %s?", target))
				if err != nil {
					return err
				}
				if !ok {
					printInfo(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
			}

			removed, err := reg.Remove(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Save(reg); err != nil {
				return err
			}
			if a.history != nil {
				if err := a.history.Forget(removed.Name); err != nil {
					slog.Warn("history update failed", "server", removed.Name, "err", err)
				}
			}
			a.record(events.Event{Server: removed.Name, Type: events.TypeRemove, Message: removed.String()})
			printSuccess(cmd.OutOrStdout(), "Removed server: %s", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "do not ask for confirmation")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var name, alias, userName, host string
	var port int
	var clearAlias bool
	cmd := &cobra.Command{
		Use:   "edit <name|alias>",
		Short: "Change fields of a saved server",
		Example: "  hop edit prod-db --host 192.168.1.21\n" +
			"  hop edit db1 --name primary-db --clear-alias",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch model.EntryPatch
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("alias") {
				patch.Alias = &alias
			}
			if clearAlias {
				empty := ""
				patch.Alias = &empty
			}
			if flags.Changed("user") {
				patch.User = &userName
			}
			if flags.Changed("host") {
				patch.Host = &host
			}
			if flags.Changed("port") {
				if err := checkPort(port); err != nil {
					return err
				}
				patch.Port = &port
			}
			if patch.Empty() {
				printWarning(cmd.ErrOrStderr(), "No changes specified. Use --name, --alias, --user, --host or --port to edit the server.")
				return nil
			}

			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			before, err := reg.Resolve(args[0])
			if err != nil {
				return err
			}
			updated, err := reg.Edit(args[0], patch)
			if err != nil {
				return err
			}
			if err := a.store.Save(reg); err != nil {
				return err
			}
			if updated.Name != before.Name && a.history != nil {
				if err := a.history.Rename(before.Name, updated.Name); err != nil {
					slog.Warn("history update failed", "server", before.Name, "err", err)
				}
			}
			a.record(events.Event{Server: updated.Name, Type: events.TypeEdit, Message: fmt.Sprintf("%s => %s", before, updated)})
			printSuccess(cmd.OutOrStdout(), "Updated server: %s", updated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&alias, "alias", "a", "", "new alias")
	cmd.Flags().BoolVar(&clearAlias, "clear-alias", false, "remove the alias")
	cmd.Flags().StringVarP(&userName, "user", "u", "", "new login user")
	cmd.Flags().StringVarP(&host, "host", "H", "", "new hostname or IP address")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "new ssh port")
	cmd.MarkFlagsMutuallyExclusive("alias", "clear-alias")
	return cmd
}

func checkPort(port int) error {
	if err := util.ValidatePort(port); err != nil {
		return &model.ValidationError{Field: "port", Value: fmt.Sprint(port), Reason: err.Error()}
	}
	return nil
}
