// Package launcher owns the boundary to the external automation server: it
// turns a finalized set of launch options into a running server process and
// stays out of the way until that process ends.
package launcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/camoufox/camoufox-server/errext"
	"github.com/camoufox/camoufox-server/errext/exitcodes"
	"github.com/camoufox/camoufox-server/lib"
)

// Launcher starts the automation server with the given launch options. It is
// invoked exactly once per process invocation and blocks until the server is
// done; the server owns the process lifetime from the moment it starts.
type Launcher interface {
	Launch(ctx context.Context, opts lib.Options) error
}

// Params collects the process-level dependencies a launcher needs.
type Params struct {
	Binary       string
	Logger       logrus.FieldLogger
	Environment  map[string]string
	Stdout       io.Writer
	Stderr       io.Writer
	Stdin        io.Reader
	SignalNotify func(chan<- os.Signal, ...os.Signal)
	SignalStop   func(chan<- os.Signal)
}

// ProcessLauncher runs the automation server as a child process, forwarding
// the finalized options as a JSON payload on its command line.
type ProcessLauncher struct {
	params Params
}

var _ Launcher = &ProcessLauncher{}

// New returns a ProcessLauncher for the given parameters.
func New(params Params) *ProcessLauncher {
	return &ProcessLauncher{params: params}
}

// Launch starts the server binary and waits for it to exit. SIGINT and
// SIGTERM are left for the child to handle and are only logged here; context
// cancellation kills the child. The child's own exit code is attached to the
// returned error so it can be propagated as the process exit code.
func (l *ProcessLauncher) Launch(ctx context.Context, opts lib.Options) error {
	args, err := launchArgs(opts)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.ServerNotStarted)
	}

	cmd := exec.CommandContext(ctx, l.params.Binary, args...) //nolint:gosec
	cmd.Stdout = l.params.Stdout
	cmd.Stderr = l.params.Stderr
	cmd.Stdin = l.params.Stdin

	if l.params.Environment != nil {
		env := make([]string, 0, len(l.params.Environment))
		for k, v := range l.params.Environment {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	// handle signals
	sigC := make(chan os.Signal, 2)
	l.params.SignalNotify(sigC, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer l.params.SignalStop(sigC)

	l.params.Logger.WithField("binary", l.params.Binary).Debug("Launching the automation server")

	if err := cmd.Start(); err != nil {
		return errext.WithExitCodeIfNone(
			fmt.Errorf("could not start the automation server '%s': %w", l.params.Binary, err),
			exitcodes.ServerNotStarted,
		)
	}

	// wait for the subprocess to end
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	for {
		select {
		case err := <-done:
			return launchResult(err)
		case sig := <-sigC:
			l.params.Logger.
				WithField("signal", sig.String()).
				Debug("Signal received, waiting for the server to handle it and return.")
		}
	}
}

// launchResult maps the subprocess wait result to the error the root command
// turns into the process exit code.
func launchResult(err error) error {
	if err == nil {
		return nil
	}

	var eerr *exec.ExitError
	if errors.As(err, &eerr) && eerr.ExitCode() > 0 {
		return errext.WithExitCodeIfNone(
			fmt.Errorf("the automation server exited with code %d", eerr.ExitCode()),
			exitcodes.ExitCode(eerr.ExitCode()), //nolint:gosec
		)
	}

	// killed by a signal, or the wait itself failed
	return errext.WithExitCodeIfNone(
		fmt.Errorf("the automation server was terminated: %w", err),
		exitcodes.ExternalAbort,
	)
}

// launchArgs builds the child's command line: the launch options are passed
// as a single JSON object, using the same key names the --config payload
// uses.
func launchArgs(opts lib.Options) ([]string, error) {
	payload, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("could not serialize the launch options: %w", err)
	}

	return []string{"--config", string(payload)}, nil
}
