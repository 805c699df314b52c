package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/benamedd/phytoscan/internal/analysis"
	"github.com/benamedd/phytoscan/internal/logging"
)

type analyzeOutput struct {
	Severity         string  `json:"severity,omitempty"`
	SeverityToken    string  `json:"severity_token"`
	SeverityPercent  float64 `json:"severity_percent"`
	ImageURL         string  `json:"image_url,omitempty"`
	ResolvedImageURL string  `json:"resolved_image_url,omitempty"`
}

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload one image and print the analysis",
		Long: `Upload one image to the analysis server and print the infection level,
a severity meter and the annotated image URL.

Server errors are printed verbatim and make the command exit non-zero.`,
		Example: `  phytoscan analyze leaf.jpg
  phytoscan analyze --json leaf.jpg
  PHYTOSCAN_SERVER_ORIGIN=http://scanner:5000 phytoscan analyze leaf.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.initLogging(true); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return opts.runAnalyze(ctx, cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (o *rootOptions) runAnalyze(ctx context.Context, out io.Writer, path string, asJSON bool) error {
	client, err := analysis.New(o.cfg.Server.Origin, analysis.WithLogger(logging.Logger))
	if err != nil {
		return err
	}
	result, err := client.Upload(ctx, path)
	if err != nil {
		return fmt.Errorf("analysis failed: %s", analysis.UserMessage(err))
	}

	token, present := result.SeverityToken()
	if !present {
		token = "N/A"
	}
	percent, _ := result.SeverityPercent()
	output := analyzeOutput{
		Severity:        string(result.Severity),
		SeverityToken:   token,
		SeverityPercent: percent,
		ImageURL:        result.ImageURL,
	}
	if result.HasImage() {
		output.ResolvedImageURL = client.ResolveImageURL(result.ImageURL)
	}

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	fmt.Fprintf(out, "Infection level: %s\n", output.SeverityToken)
	if present {
		meter := progress.New(progress.WithSolidFill("#5cb85c"), progress.WithWidth(30))
		fmt.Fprintln(out, meter.ViewAs(percent/100))
	}
	if output.ResolvedImageURL != "" {
		fmt.Fprintf(out, "Annotated image: %s\n", output.ResolvedImageURL)
	}
	return nil
}
