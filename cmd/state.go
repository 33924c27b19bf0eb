package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/camoufox/camoufox-server/ui/console"
)

// globalFlags describes the global flags of the camoufox-server binary,
// consolidated from their defaults and environment variables before the CLI
// flags are parsed on top.
type globalFlags struct {
	configPayload string
	serverBinary  string
	logOutput     string
	logFormat     string
	noColor       bool
	verbose       bool
}

// globalState contains the globalFlags and accessors for most of the global
// process-external state like CLI arguments, env vars, standard input,
// output and error, etc. In practice, most of it is normally accessed
// through the `os` package, but we need to replace those direct calls with
// mocks in tests, so the whole binary can be exercised in-process.
//
// Note that this object is passed around and used everywhere, so the fewer
// fields it has, the better.
type globalState struct {
	ctx context.Context

	fs      afero.Fs
	console *console.Console
	getwd   func() (string, error)
	args    []string
	envVars map[string]string

	defaultFlags, flags globalFlags

	osExit       func(int)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)

	logger         *logrus.Logger
	fallbackLogger logrus.FieldLogger
}

// newGlobalState returns a globalState with the real OS dependencies: the
// process environment, the native filesystem, the actual console streams and
// os.Exit. It is the only place the process-global state is touched; after
// this, everything goes through the struct.
func newGlobalState(ctx context.Context) *globalState {
	envVars := buildEnvMap(os.Environ())

	defaultFlags := getDefaultFlags()
	flags := getFlags(defaultFlags, envVars)

	cons := console.New(
		os.Stdout, os.Stderr, os.Stdin,
		!flags.noColor, envVars["TERM"], signal.Notify, signal.Stop,
	)

	return &globalState{
		ctx:          ctx,
		fs:           afero.NewOsFs(),
		console:      cons,
		getwd:        os.Getwd,
		args:         append(make([]string, 0, len(os.Args)), os.Args...), // copy
		envVars:      envVars,
		defaultFlags: defaultFlags,
		flags:        flags,
		osExit:       os.Exit,
		signalNotify: signal.Notify,
		signalStop:   signal.Stop,
		logger:       cons.GetLogger(),
		fallbackLogger: &logrus.Logger{ // we may modify the other one
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter), // no fancy formatting here
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

// getDefaultFlags returns the default global flags.
func getDefaultFlags() globalFlags {
	return globalFlags{
		serverBinary: "camoufox",
		logOutput:    "stderr",
	}
}

// getFlags overlays the CAMOUFOX_* environment variables on top of the
// default flag values. The result is used both as the pflag destinations and
// as their initial values, so the effective precedence is
// defaults < environment < CLI.
func getFlags(defaultFlags globalFlags, env map[string]string) globalFlags {
	result := defaultFlags

	if val, ok := env["CAMOUFOX_CONFIG"]; ok {
		result.configPayload = val
	}
	if val, ok := env["CAMOUFOX_SERVER_BINARY"]; ok {
		result.serverBinary = val
	}
	if val, ok := env["CAMOUFOX_LOG_OUTPUT"]; ok {
		result.logOutput = val
	}
	if val, ok := env["CAMOUFOX_LOG_FORMAT"]; ok {
		result.logFormat = val
	}
	if env["CAMOUFOX_NO_COLOR"] != "" {
		result.noColor = true
	}
	// Support https://no-color.org/, even an empty value should disable
	// the color output.
	if _, ok := env["NO_COLOR"]; ok {
		result.noColor = true
	}

	return result
}

func parseEnvKeyValue(kv string) (string, string) {
	if idx := strings.IndexRune(kv, '='); idx != -1 {
		return kv[:idx], kv[idx+1:]
	}
	return kv, ""
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v := parseEnvKeyValue(kv)
		env[k] = v
	}
	return env
}
