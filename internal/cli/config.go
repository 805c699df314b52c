package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benamedd/phytoscan/internal/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect PhytoScan configuration",
	}
	configCmd.AddCommand(newConfigShowCommand(opts))
	configCmd.AddCommand(newConfigPathCommand())
	return configCmd
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after merging defaults, config files,
PHYTOSCAN_* environment variables and command line flags.`,
		Example: `  phytoscan config show
  phytoscan config show --format json
  phytoscan --origin http://scanner:5000 config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(opts.cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(opts.cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}
			return nil
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	return showCmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (highest priority first):")
			for i, path := range config.GetConfigPaths() {
				status := "not found"
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					status = "exists"
				}
				fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, path, status)
			}
			fmt.Fprintln(out, "Environment variables with the PHYTOSCAN_ prefix override file settings.")
		},
	}
}
