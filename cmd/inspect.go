package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func getCmdInspect(gs *globalState) *cobra.Command {
	var asYAML bool

	// inspectCmd represents the inspect command
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the consolidated launch configuration",
		Long: `Show the launch configuration the automation server would start with,
after applying the environment variables, the --config payload and the
documented defaults.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf := getConsolidatedConfig(gs)

			if asYAML {
				// round-trip through JSON to get the external key names
				// and plain scalars
				data, err := json.Marshal(conf)
				if err != nil {
					return err
				}
				var plain map[string]interface{}
				if err := json.Unmarshal(data, &plain); err != nil {
					return err
				}
				return gs.console.PrintYAML(plain)
			}

			data, err := json.MarshalIndent(conf, "", "  ")
			if err != nil {
				return err
			}
			printToStdout(gs, string(data)+"\n")
			return nil
		},
	}

	inspectCmd.Flags().BoolVar(&asYAML, "yaml", false, "output the configuration as YAML instead of JSON")

	return inspectCmd
}
