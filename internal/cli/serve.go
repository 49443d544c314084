package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/internal/server"
	"github.com/mesh-intelligence/campus/pkg/types"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := o.tokens()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = o.v.GetString(cfgKeyHTTPAddr)
			}

			return o.withRepository(func(repo types.Repository, log *zap.Logger) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				log.Info("Starting campus",
					zap.String("version", Version),
					zap.String("backend", o.v.GetString(cfgKeyBackend)),
				)
				if err := server.New(addr, repo, tokens, log).Run(ctx); err != nil {
					return sysError(err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.addr from config)")
	return cmd
}
