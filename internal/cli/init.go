package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/pkg/types"
)

func newInitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize campus storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := o.withRepository(func(types.Repository, *zap.Logger) error { return nil })
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", filepath.Join(o.resolvedConfigDir, configFileExt))
			fmt.Fprintln(out, "Campus initialized successfully")
			return nil
		},
	}
}

// withRepository attaches the configured backend, runs fn, and detaches.
// A failed Detach is reported as a system error alongside fn's error.
func (o *rootOptions) withRepository(fn func(repo types.Repository, log *zap.Logger) error) (err error) {
	log, err := o.logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	repo, err := o.openRepository(log)
	if err != nil {
		return err
	}
	defer func() {
		if derr := repo.Detach(); derr != nil {
			err = multierr.Append(err, sysError(fmt.Errorf("detach: %w", derr)))
		}
	}()
	return fn(repo, log)
}
