package cli

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benamedd/phytoscan/internal/logging"
	"github.com/benamedd/phytoscan/internal/stubserver"
)

func newStubCommand(opts *rootOptions) *cobra.Command {
	var (
		addr      string
		severity  string
		maxUpload int64
	)
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local stand-in analysis server",
		Long: `Run a local analysis server that accepts uploads on /upload and answers
with a fixed severity. The uploaded image is served back as the annotated
result so the widget can be exercised end to end.`,
		Example: `  phytoscan stub
  phytoscan stub --addr 127.0.0.1:8080 --severity "67 % infected"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.initLogging(true); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := stubserver.New(stubserver.Options{
				Severity:       severity,
				MaxUploadBytes: maxUpload,
				Logger:         logging.Logger,
			})
			if err := server.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	cmd.Flags().StringVar(&severity, "severity", stubserver.DefaultSeverity, "severity returned for every upload (empty omits it)")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", stubserver.DefaultMaxUploadBytes, "maximum upload size in bytes")
	return cmd
}
