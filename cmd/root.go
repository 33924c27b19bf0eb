package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/camoufox/camoufox-server/errext"
	"github.com/camoufox/camoufox-server/errext/exitcodes"
	"github.com/camoufox/camoufox-server/lib/consts"
	"github.com/camoufox/camoufox-server/log"
)

const waitLoggerCloseTimeout = time.Second * 5

// This is to keep all fields needed for the main/root command.
type rootCommand struct {
	globalState *globalState

	cmd           *cobra.Command
	newLauncher   launcherFactory
	stopLoggersCh chan struct{}
	loggersWg     sync.WaitGroup
}

// Execute builds the global state from the real OS environment and runs the
// root command. It is called by main.main() and it only needs to happen once.
func Execute() {
	gs := newGlobalState(context.Background())
	newRootCommand(gs).execute()
}

// newRootCommand creates a root command with the default subprocess launcher.
func newRootCommand(gs *globalState) *rootCommand {
	return newRootWithLauncher(gs, defaultLauncherFactory)
}

// newRootWithLauncher creates a root command with the given launcher
// factory, so tests can intercept the server launch.
func newRootWithLauncher(gs *globalState, newLauncher launcherFactory) *rootCommand {
	c := &rootCommand{
		globalState:   gs,
		newLauncher:   newLauncher,
		stopLoggersCh: make(chan struct{}),
	}
	// the base command when called without any subcommands is the one that
	// launches the automation server.
	rootCmd := &cobra.Command{
		Use:               "camoufox-server",
		Short:             "Launch the camoufox stealth browser automation server",
		Long:              "\n" + gs.console.Banner(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		RunE:              c.runServe,
		Args:              cobra.NoArgs,
		Version:           consts.FullVersion(),
	}

	rootCmd.SetVersionTemplate(
		`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "v%s\n" .Version}}`,
	)

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.SetArgs(gs.args[1:])
	rootCmd.SetOut(gs.console.Stdout)
	rootCmd.SetErr(gs.console.Stderr)
	rootCmd.SetIn(gs.console.Stdin)

	subCommands := []func(*globalState) *cobra.Command{
		getCmdInspect, getCmdVersion,
	}
	for _, sc := range subCommands {
		rootCmd.AddCommand(sc(gs))
	}

	c.cmd = rootCmd
	return c
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	err := c.setupLoggers(c.stopLoggersCh)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	c.globalState.logger.Debugf("camoufox-server version: v%s", consts.FullVersion())

	return nil
}

func (c *rootCommand) execute() {
	ctx, cancel := context.WithCancel(c.globalState.ctx)
	c.globalState.ctx = ctx

	exitCode := -1
	defer func() {
		cancel()
		c.stopLoggers()
		c.globalState.osExit(exitCode)
	}()

	defer func() {
		if r := recover(); r != nil {
			exitCode = int(exitcodes.GoPanic)
			err := fmt.Errorf("unexpected panic: %s\n%s", r, debug.Stack())
			c.globalState.logger.Error(err)
		}
	}()

	err := c.cmd.Execute()
	if err == nil {
		exitCode = 0
		return
	}

	var ecerr errext.HasExitCode
	if errors.As(err, &ecerr) {
		exitCode = int(ecerr.ExitCode())
	}

	errText, fields := errext.Format(err)
	c.globalState.logger.WithFields(fields).Error(errText)
}

func (c *rootCommand) stopLoggers() {
	done := make(chan struct{})
	go func() {
		c.loggersWg.Wait()
		close(done)
	}()
	close(c.stopLoggersCh)
	select {
	case <-done:
	case <-time.After(waitLoggerCloseTimeout):
		c.globalState.fallbackLogger.Errorf("The logger didn't stop in %s", waitLoggerCloseTimeout)
	}
}

func rootCmdPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	// We need to use `gs.flags.<value>` both as the destination and as the
	// value here, since the flag values could have already been set by their
	// respective environment variables. However, we then also have to
	// explicitly set the DefValue to the respective default value from
	// `gs.defaultFlags.<value>`, so that the help message is not messed up.

	flags.StringVarP(&gs.flags.configPayload, "config", "c", gs.flags.configPayload,
		"JSON object with the launch options for the server")
	flags.Lookup("config").DefValue = gs.defaultFlags.configPayload

	flags.StringVar(&gs.flags.serverBinary, "server-binary", gs.flags.serverBinary,
		"path to the camoufox browser binary to launch")
	flags.Lookup("server-binary").DefValue = gs.defaultFlags.serverBinary

	flags.StringVar(&gs.flags.logOutput, "log-output", gs.flags.logOutput,
		"change the output for logs, possible values are 'stderr', 'stdout', 'none', 'file[=./path.fileformat]'")
	flags.Lookup("log-output").DefValue = gs.defaultFlags.logOutput

	flags.StringVar(&gs.flags.logFormat, "log-format", gs.flags.logFormat, "log output format")
	flags.Lookup("log-format").DefValue = gs.defaultFlags.logFormat

	flags.BoolVar(&gs.flags.noColor, "no-color", gs.flags.noColor, "disable colored output")
	flags.Lookup("no-color").DefValue = strconv.FormatBool(gs.defaultFlags.noColor)

	flags.BoolVarP(&gs.flags.verbose, "verbose", "v", gs.defaultFlags.verbose, "enable verbose logging")

	return flags
}

// RawFormatter it does nothing with the message just prints it
type RawFormatter struct{}

// Format renders a single log entry
func (f RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// setupLoggers applies the --log-output and --log-format flags to the global
// logger. When the output is a file, the actual writing happens on a
// goroutine that is stopped and flushed when the stop channel is closed.
func (c *rootCommand) setupLoggers(stop <-chan struct{}) error {
	if c.globalState.flags.verbose {
		c.globalState.logger.SetLevel(logrus.DebugLevel)
	}

	var (
		hook log.AsyncHook
		err  error
	)

	loggerForceColors := false // disable color by default
	switch line := c.globalState.flags.logOutput; {
	case line == "stderr":
		loggerForceColors = !c.globalState.flags.noColor && c.globalState.console.IsTTY
		c.globalState.logger.SetOutput(c.globalState.console.Stderr)
	case line == "stdout":
		loggerForceColors = !c.globalState.flags.noColor && c.globalState.console.IsTTY
		c.globalState.logger.SetOutput(c.globalState.console.Stdout)
	case line == "none":
		c.globalState.logger.SetOutput(io.Discard)
	case strings.HasPrefix(line, "file"):
		hook, err = log.FileHookFromConfigLine(
			c.globalState.fs, c.globalState.getwd,
			c.globalState.fallbackLogger, line,
		)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported log output '%s'", line)
	}

	switch c.globalState.flags.logFormat {
	case "raw":
		c.globalState.logger.SetFormatter(&RawFormatter{})
		c.globalState.logger.Debug("Logger format: RAW")
	case "json":
		c.globalState.logger.SetFormatter(&logrus.JSONFormatter{})
		c.globalState.logger.Debug("Logger format: JSON")
	default:
		c.globalState.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors: loggerForceColors, DisableColors: c.globalState.flags.noColor,
		})
		c.globalState.logger.Debug("Logger format: TEXT")
	}

	cancel := func() {} // noop as default
	if hook != nil {
		var hookCtx context.Context
		hookCtx, cancel = context.WithCancel(context.Background())
		c.setLoggerHook(hookCtx, hook)
	}

	// Sometimes the Go runtime uses the standard log output to log some
	// messages directly, so it has to go through our logger as well.
	w := c.globalState.logger.Writer()
	stdlog.SetOutput(w)
	c.loggersWg.Add(1)
	go func() {
		<-stop
		cancel()
		_ = w.Close()
		c.loggersWg.Done()
	}()
	return nil
}

func (c *rootCommand) setLoggerHook(ctx context.Context, h log.AsyncHook) {
	c.loggersWg.Add(1)
	go func() {
		h.Listen(ctx)
		c.loggersWg.Done()
	}()
	c.globalState.logger.AddHook(h)
	c.globalState.logger.SetOutput(io.Discard) // don't output to anywhere else
}
