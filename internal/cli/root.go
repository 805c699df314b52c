package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/benamedd/phytoscan/internal/config"
	"github.com/benamedd/phytoscan/internal/logging"
)

// rootOptions carries the global flags and the configuration they resolve to.
type rootOptions struct {
	configPath  string
	origin      string
	debug       bool
	logFile     string
	lang        string
	noAltScreen bool

	loader *config.Loader
	cfg    *config.Config
}

// NewRootCommand creates the root command. Without a subcommand it runs the
// interactive widget.
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &rootOptions{loader: config.NewLoader()}

	rootCmd := &cobra.Command{
		Use:   "phytoscan [image]",
		Short: "Plant disease image analysis from the terminal",
		Long: `PhytoScan uploads a plant image to an analysis server and shows the
infection level it reports, together with the annotated image.

Run without a subcommand to open the interactive widget.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolveConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI(cmd, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	flags.StringVar(&opts.origin, "origin", "", "analysis server origin (eg. http://localhost:5000)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&opts.lang, "lang", "", "interface language (auto, en, fr)")
	rootCmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	rootCmd.AddCommand(newTUICommand(opts))
	rootCmd.AddCommand(newAnalyzeCommand(opts))
	rootCmd.AddCommand(newStubCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// resolveConfig loads files and environment, then applies explicit flags.
func (o *rootOptions) resolveConfig(cmd *cobra.Command) error {
	cfg, err := o.loader.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("origin") {
		cfg.Server.Origin = o.origin
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = o.debug
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if flags.Changed("lang") {
		cfg.UI.Language = o.lang
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	o.cfg = cfg
	return nil
}

// initLogging configures the global logger. Interactive sessions never log
// to the terminal.
func (o *rootOptions) initLogging(headless bool) error {
	return logging.Init(logging.Options{
		Debug:  o.cfg.Log.Debug,
		File:   o.cfg.Log.File,
		Stderr: headless,
	})
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// version must work even with a broken config file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PhytoScan %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
