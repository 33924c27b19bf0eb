package cmd

import (
	"github.com/spf13/cobra"

	"github.com/camoufox/camoufox-server/launcher"
)

// launcherFactory builds the launcher the serve flow hands the finalized
// configuration to. Tests substitute it to intercept the launch.
type launcherFactory func(launcher.Params) launcher.Launcher

func defaultLauncherFactory(params launcher.Params) launcher.Launcher {
	return launcher.New(params)
}

// runServe is the root command's RunE: it consolidates the configuration and
// hands it to the launcher exactly once. The launcher blocks until the
// server process ends, and the returned error carries the exit code the
// process will finish with.
func (c *rootCommand) runServe(_ *cobra.Command, _ []string) error {
	gs := c.globalState
	conf := getConsolidatedConfig(gs)

	l := c.newLauncher(launcher.Params{
		Binary:       gs.flags.serverBinary,
		Logger:       gs.logger,
		Environment:  gs.envVars,
		Stdout:       gs.console.Stdout,
		Stderr:       gs.console.Stderr,
		Stdin:        gs.console.Stdin,
		SignalNotify: gs.signalNotify,
		SignalStop:   gs.signalStop,
	})

	return l.Launch(gs.ctx, conf.Options)
}
