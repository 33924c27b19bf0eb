package cmd

import "fmt"

func printToStdout(gs *globalState, s string) {
	if _, err := fmt.Fprint(gs.console.Stdout, s); err != nil {
		gs.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}
