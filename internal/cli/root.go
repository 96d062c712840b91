// Package cli provides the command-line interface for hop.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alpemreelmas/hop-cli/internal/appconfig"
	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/history"
	"github.com/alpemreelmas/hop-cli/internal/logging"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
	"github.com/alpemreelmas/hop-cli/internal/ui"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// app is the state shared by every verb of one invocation. It is filled in
// by the root command's PersistentPreRunE.
type app struct {
	serversFlag string
	logLevel    string

	settings     appconfig.Config
	settingsPath string
	store        *config.Store
	dispatcher   *sshclient.Dispatcher
	history      *history.Store
	journal      *events.Store
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   util.AppName,
		Short: "Bookmark SSH servers and connect to them by name",
		Long: "hop keeps a list of SSH servers under short names and aliases and\n" +
			"opens an interactive ssh session to any of them with one word.",
		Example: strings.Join([]string{
			"  hop add prod-db forge@192.168.1.20 --alias db1",
			"  hop connect db1",
			"  hop list --verbose",
		}, "\n"),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive(cmd) {
				return cmd.Help()
			}
			return ui.Run(ui.Deps{
				Store:       a.store,
				Dispatcher:  a.dispatcher,
				History:     a.history,
				Journal:     a.journal,
				DefaultUser: defaultUser(),
				ShowHelp:    a.settings.UI.ShowHelp,
			})
		},
	}

	root.PersistentFlags().StringVarP(&a.serversFlag, "file", "f", "", "servers file (default $"+appconfig.ServersFileEnv+" or <config dir>/"+util.ServersFileName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newRemoveCmd(a),
		newEditCmd(a),
		newConnectCmd(a),
		newCopyCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
		newDoctorCmd(a),
		newActivityCmd(a),
	)
	return root
}

// setup loads settings, installs the logger and builds the stores and
// dispatcher used by the verb that is about to run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	settingsPath, err := appconfig.SettingsPath()
	if err != nil {
		return err
	}
	settings, err := appconfig.LoadFile(settingsPath)
	if err != nil {
		return err
	}
	a.settings = settings
	a.settingsPath = settingsPath

	level := util.DefaultString(a.logLevel, settings.LogLevel)
	if err := logging.Setup(cmd.ErrOrStderr(), level); err != nil {
		return err
	}

	serversPath, err := appconfig.ServersFile(a.serversFlag, settings)
	if err != nil {
		return err
	}
	a.store = config.NewStore(serversPath)
	slog.Debug("resolved paths", "servers", serversPath, "settings", settingsPath)

	extra, err := sshclient.SplitArgs(settings.SSH.ExtraArgs)
	if err != nil {
		return fmt.Errorf("settings ssh.extra_args: %w", err)
	}
	a.dispatcher = sshclient.New(sshclient.Options{
		Program:     settings.SSH.Program,
		ExtraArgs:   extra,
		CopyProgram: settings.SCP.Program,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})

	if p, err := appconfig.HistoryPath(); err == nil {
		a.history = history.NewStore(p)
	} else {
		slog.Warn("history disabled", "err", err)
	}
	if p, err := appconfig.ActivityPath(); err == nil {
		a.journal = events.NewStore(p)
	} else {
		slog.Warn("activity journal disabled", "err", err)
	}
	return nil
}

// record appends evt to the activity journal. Failures only warn.
func (a *app) record(evt events.Event) {
	if a.journal == nil {
		return
	}
	if err := a.journal.Append(evt); err != nil {
		slog.Warn("activity journal write failed", "err", err)
	}
}

func (a *app) touch(name string) {
	if a.history == nil {
		return
	}
	if err := a.history.Touch(name); err != nil {
		slog.Warn("history update failed", "server", name, "err", err)
	}
}

// interactive reports whether both stdin and stdout of cmd are terminals.
func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return sshclient.IsTerminal(in) && sshclient.IsTerminal(out)
}

// defaultUser is the login name used when an entry omits the user.
func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		// DOMAIN\user on Windows
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return util.DefaultString(os.Getenv("USER"), os.Getenv("USERNAME"))
}
