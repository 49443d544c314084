// Package cli implements the campus command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// classify maps a platform error to the exit code its kind deserves.
func classify(err error) error {
	switch perrors.ErrorCode(err) {
	case perrors.ENotFound, perrors.EInvalid, perrors.EForbidden, perrors.EUnauthorized:
		return userError(err)
	default:
		return sysError(err)
	}
}

// exitCode returns the process exit code for the result of a command.
// Errors that did not come from a command body (bad flags, wrong argument
// counts) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootOptions holds global flag values and the loaded configuration shared
// by every subcommand.
type rootOptions struct {
	configDir string
	dataDir   string
	jsonMode  bool

	resolvedConfigDir string
	v                 *viper.Viper
}

// NewRootCmd creates the top-level "campus" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "campus",
		Short: "Campus record service",
		Long: "Campus serves articles, recommendation requests, dining commons menu items,\n" +
			"and student organizations over a role-protected REST API.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(o.configDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve config dir: %w", err))
			}
			v, err := loadConfig(configDir)
			if err != nil {
				return sysError(err)
			}
			o.resolvedConfigDir = configDir
			o.v = v
			return nil
		},
	}

	root.PersistentFlags().StringVar(&o.configDir, "config-dir", "", "configuration directory (default: platform config dir/campus)")
	root.PersistentFlags().StringVar(&o.dataDir, "data-dir", "", "data directory (default: $(CWD)/.campus-db)")
	root.PersistentFlags().BoolVar(&o.jsonMode, "json", false, "output compact JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(o))
	root.AddCommand(newServeCmd(o))
	root.AddCommand(newTokenCmd(o))
	root.AddCommand(newListCmd(o))
	root.AddCommand(newGetCmd(o))
	root.AddCommand(newDeleteCmd(o))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
