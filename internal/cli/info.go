package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alpemreelmas/hop-cli/internal/appconfig"
	"github.com/alpemreelmas/hop-cli/internal/doctor"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/security"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

var errDoctorFailed = errors.New("doctor found high severity issues")

func newConfigCmd(a *app) *cobra.Command {
	var pathOnly, initFiles bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize hop's files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if initFiles {
				if err := a.store.Init(); err != nil {
					return err
				}
				if _, err := os.Stat(a.settingsPath); errors.Is(err, os.ErrNotExist) {
					if err := appconfig.Save(a.settings); err != nil {
						return fmt.Errorf("write settings: %w", err)
					}
				}
				printSuccess(out, "Configuration initialized successfully.")
			}
			if pathOnly {
				fmt.Fprintln(out, a.store.Path())
				return nil
			}
			if initFiles {
				return nil
			}

			fmt.Fprintf(out, "Servers file:  %s\n", a.store.Path())
			fmt.Fprintf(out, "Settings file: %s\n", a.settingsPath)
			if !a.store.Exists() {
				printInfo(out, "Servers file does not exist. Use --init to create it.")
				return nil
			}
			reg, err := a.store.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Servers configured: %d\n", reg.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&pathOnly, "path", false, "print only the servers file path")
	cmd.Flags().BoolVar(&initFiles, "init", false, "create the servers and settings files if missing")
	return cmd
}

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the ssh toolchain and hop's files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := appconfig.ConfigDir()
			if err != nil {
				return err
			}
			report := doctor.Run(doctor.Inputs{
				SSHProgram: a.dispatcher.Program,
				SCPProgram: a.dispatcher.CopyProgram,
				Store:      a.store,
				Audit: security.Inputs{
					ConfigDir:    configDir,
					ServersFile:  a.store.Path(),
					SettingsFile: a.settingsPath,
					SSHDir:       security.DefaultSSHDir(),
					SSHExtraArgs: a.dispatcher.ExtraArgs,
				},
			})

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Servers file: %s (%d servers)\n", report.ServersFile, report.Servers)
				if len(report.Issues) == 0 {
					printSuccess(out, "No issues found.")
				}
				for _, is := range report.Issues {
					line := fmt.Sprintf("[%s] %s: %s", is.Severity, is.Check, is.Message)
					if is.Severity == doctor.SeverityLow {
						printInfo(out, "%s", line)
					} else {
						printWarning(out, "%s", line)
					}
					if is.Recommendation != "" {
						fmt.Fprintf(out, "    fix: %s\n", is.Recommendation)
					}
				}
			}
			if report.HasHigh() {
				return errDoctorFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newActivityCmd(a *app) *cobra.Command {
	var server string
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent hop activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.journal == nil {
				return errors.New("activity journal unavailable")
			}
			evts, err := a.journal.Read(events.Query{Server: server, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if evts == nil {
					evts = []events.Event{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(evts)
			}
			if len(evts) == 0 {
				printInfo(out, "No activity recorded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tSERVER\tEXIT\tDETAIL")
			for _, e := range evts {
				exit := "-"
				if e.ExitCode != nil {
					exit = fmt.Sprint(*e.ExitCode)
				}
				detail := util.DefaultString(e.Command, e.Message)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Type, util.EmptyDash(e.Server), exit, detail)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "", "only events for this server name")
	cmd.Flags().IntVarP(&limit, "limit", "l", util.DefaultActivityLimit, "maximum number of events")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
