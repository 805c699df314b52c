package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/benamedd/phytoscan/internal/analysis"
	"github.com/benamedd/phytoscan/internal/config"
	"github.com/benamedd/phytoscan/internal/logging"
	"github.com/benamedd/phytoscan/internal/preview"
	"github.com/benamedd/phytoscan/internal/tui"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [image]",
		Short: "Open the interactive upload widget",
		Long: `Open the interactive upload widget.

Keys: o opens the file picker, a analyzes the selected image, r resets,
? toggles help and ctrl+c quits. An optional image argument is selected
on start.`,
		Example: `  phytoscan tui
  phytoscan tui ./leaves/tomato.jpg
  phytoscan --origin http://analysis.local:5000 tui`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	return cmd
}

func (o *rootOptions) tuiConfig(args []string) (tui.Config, error) {
	cfg := o.cfg
	client, err := analysis.New(cfg.Server.Origin, analysis.WithLogger(logging.Logger))
	if err != nil {
		return tui.Config{}, err
	}
	tuiCfg := tui.Config{
		Client:            client,
		Previews:          preview.NewRegistry(),
		Language:          config.ResolveLanguage(cfg.UI.Language, os.Getenv),
		StartDir:          cfg.UI.StartDir,
		AllowedTypes:      cfg.UI.AllowedTypes,
		PreviewWidth:      cfg.UI.PreviewWidth,
		PreviewHeight:     cfg.UI.PreviewHeight,
		InlineResultImage: cfg.UI.ShowInlineResultImage(),
		WatchSelection:    cfg.UI.ShouldWatchSelection(),
	}
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return tui.Config{}, fmt.Errorf("cannot open %s: %w", args[0], err)
		}
		if info.IsDir() {
			tuiCfg.StartDir = args[0]
		} else {
			tuiCfg.InitialFile = args[0]
		}
	}
	return tuiCfg, nil
}

func (o *rootOptions) runTUI(cmd *cobra.Command, args []string) error {
	if err := o.initLogging(false); err != nil {
		return err
	}
	tuiCfg, err := o.tuiConfig(args)
	if err != nil {
		return err
	}

	programOpts := []tea.ProgramOption{}
	if o.cfg.UI.UseAltScreen() && !o.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	logging.Logger.Infow("starting widget", "origin", tuiCfg.Client.Origin(), "language", tuiCfg.Language.String())
	program := tea.NewProgram(tui.New(tuiCfg), programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
