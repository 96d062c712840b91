// Package sshclient turns server entries into invocations of the system
// ssh and scp binaries and runs them.
//
// This package does NOT implement the SSH protocol. It shells out to the
// user's own client, which means keys, agents, known_hosts and everything in
// ~/.ssh/config keep working without hop knowing about them.
//
// There are two halves:
//
//   - Building: BuildCommand and the Dispatcher's Command/CopyCommand methods
//     produce a CommandSpec, a plain program-plus-argv value that can be
//     printed (--dry-run, list --verbose) or compared in tests.
//
//   - Launching: Launch runs a CommandSpec as a child process attached to the
//     caller's terminal, waits for it, and hands back its exit status.
//
// Security note: arguments are always passed as argv, never through a shell,
// so metacharacters in hosts or user names cannot be interpreted. The model
// package additionally refuses users and hosts that start with '-'.
package sshclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"github.com/alpemreelmas/hop-cli/internal/model"
)

const (
	DefaultSSHProgram = "ssh"
	DefaultSCPProgram = "scp"
)

// CommandSpec is a program and the exact argument vector it receives.
type CommandSpec struct {
	Program string
	Args    []string
}

// String renders the command as a shell-quoted line suitable for copying
// into a terminal.
func (c CommandSpec) String() string {
	return shellquote.Join(append([]string{c.Program}, c.Args...)...)
}

// BuildCommand returns the canonical ssh invocation for e:
//
//	ssh -p <port> <user>@<host>
//
// The port is always emitted, including the default 22, so the command is
// the same no matter what the user's ssh_config says about Port.
func BuildCommand(e model.ServerEntry) CommandSpec {
	return CommandSpec{
		Program: DefaultSSHProgram,
		Args:    []string{"-p", e.PortString(), e.Target()},
	}
}

// Options configures a Dispatcher. Zero values fall back to the system ssh
// and scp and the process's own standard streams.
type Options struct {
	// Program replaces "ssh" for interactive sessions.
	Program string
	// ExtraArgs are inserted before -p on every ssh invocation.
	ExtraArgs []string
	// CopyProgram replaces "scp" for copy commands.
	CopyProgram string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Dispatcher builds and launches ssh/scp commands with configuration
// overrides applied.
//
// A Dispatcher holds no per-call state; the same value may build and launch
// any number of commands.
type Dispatcher struct {
	Program     string
	ExtraArgs   []string
	CopyProgram string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// New creates a Dispatcher from opts, filling in defaults.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		Program:     opts.Program,
		ExtraArgs:   append([]string(nil), opts.ExtraArgs...),
		CopyProgram: opts.CopyProgram,
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
	}
	if d.Program == "" {
		d.Program = DefaultSSHProgram
	}
	if d.CopyProgram == "" {
		d.CopyProgram = DefaultSCPProgram
	}
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	return d
}

// Command returns BuildCommand(e) with the configured program and extra
// arguments applied. With no overrides the two are identical.
func (d *Dispatcher) Command(e model.ServerEntry) CommandSpec {
	spec := BuildCommand(e)
	spec.Program = d.Program
	if len(d.ExtraArgs) > 0 {
		spec.Args = append(append([]string(nil), d.ExtraArgs...), spec.Args...)
	}
	return spec
}

// CopyCommand returns an scp invocation moving src on this machine to dst on
// e, or the other way around when fromRemote is set:
//
//	scp -P <port> <src> <user>@<host>:<dst>
//	scp -P <port> <user>@<host>:<src> <dst>
func (d *Dispatcher) CopyCommand(e model.ServerEntry, src, dst string, fromRemote bool) CommandSpec {
	args := []string{"-P", e.PortString()}
	if fromRemote {
		args = append(args, remotePath(e, src), dst)
	} else {
		args = append(args, src, remotePath(e, dst))
	}
	return CommandSpec{Program: d.CopyProgram, Args: args}
}

// scp needs brackets around IPv6 literals to tell the host from the path.
func remotePath(e model.ServerEntry, path string) string {
	host := e.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return e.User + "@" + host + ":" + path
}

// Cmd returns an unstarted exec.Cmd for spec with no streams attached. It is
// meant for callers that manage the terminal themselves, such as the TUI's
// tea.ExecProcess.
func (d *Dispatcher) Cmd(ctx context.Context, spec CommandSpec) *exec.Cmd {
	return exec.CommandContext(ctx, spec.Program, spec.Args...)
}

// Launch runs spec in the foreground and blocks until it exits.
//
// The child inherits the Dispatcher's stdin, stdout and stderr, which for a
// real terminal means the child gets the terminal itself. The returned int is
// the child's exit status, untouched: hop does not decide whether a non-zero
// exit from ssh is a failure. A child killed by a signal reports 128+signal,
// matching what a shell would show.
//
// While the child runs, SIGINT sent to hop is swallowed. The terminal
// delivers Ctrl-C to the whole foreground process group, so the child sees it
// too and decides what to do; hop stays alive to report the child's status.
//
// The only error returned is *SpawnError, when the program cannot be found
// or started, or an unexpected failure waiting for it.
func (d *Dispatcher) Launch(ctx context.Context, spec CommandSpec) (int, error) {
	path, err := exec.LookPath(spec.Program)
	if err != nil {
		return -1, &SpawnError{Program: spec.Program, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	done := make(chan struct{})
	defer func() {
		signal.Stop(interrupts)
		close(done)
	}()
	go func() {
		for {
			select {
			case <-interrupts:
				slog.Debug("interrupt forwarded to child", "program", spec.Program)
			case <-done:
				return
			}
		}
	}()

	slog.Debug("launching", "command", spec.String())
	if err := cmd.Start(); err != nil {
		return -1, &SpawnError{Program: spec.Program, Err: err}
	}

	waitErr := cmd.Wait()
	status, ok := StatusFromWait(waitErr)
	if !ok {
		return -1, &SpawnError{Program: spec.Program, Err: fmt.Errorf("wait: %w", waitErr)}
	}
	slog.Debug("child exited", "program", spec.Program, "status", status)
	return status, nil
}

// StatusFromWait converts the error from exec.Cmd.Wait or Run into an exit
// status. ok is false when err is not about the child's exit at all.
func StatusFromWait(err error) (status int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, false
	}
	return exitStatus(exitErr.ProcessState), true
}

// EnsureBinary checks that name resolves on PATH.
//
// Commands that are about to dispatch call this first so a missing client is
// reported before anything else happens (history, journal writes).
func EnsureBinary(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return &SpawnError{Program: name, Err: err}
	}
	return nil
}

// SplitArgs parses a shell-style argument string, as stored in the
// ssh.extra_args setting, into argv form.
func SplitArgs(s string) ([]string, error) {
	args, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parse arguments %q: %w", s, err)
	}
	return args, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// exitStatusString is used by callers that print a child's status.
func exitStatusString(code int) string {
	if code > 128 {
		return "signal " + strconv.Itoa(code-128)
	}
	return "exit status " + strconv.Itoa(code)
}
