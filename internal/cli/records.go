package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/internal/records"
	"github.com/mesh-intelligence/campus/internal/resource"
	"github.com/mesh-intelligence/campus/pkg/types"
)

const resourceHelp = "articles, recommendationrequests, ucsbdiningcommonsmenuitem, ucsborganization"

func newListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "List every record of a resource",
		Long:  "List every record of a resource.\nResources: " + resourceHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runResource(cmd, args[0], func(ctx context.Context, ops resource.Operations) (any, error) {
				return ops.List(ctx)
			})
		},
	}
}

func newGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <key>",
		Short: "Show one record",
		Long:  "Show one record of a resource by its key.\nResources: " + resourceHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runResource(cmd, args[0], func(ctx context.Context, ops resource.Operations) (any, error) {
				return ops.Get(ctx, args[1])
			})
		},
	}
}

func newDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <key>",
		Short: "Delete one record",
		Long:  "Delete one record of a resource by its key.\nResources: " + resourceHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runResource(cmd, args[0], func(ctx context.Context, ops resource.Operations) (any, error) {
				msg, err := ops.Delete(ctx, args[1])
				if err != nil {
					return nil, err
				}
				if !o.jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
					return nil, nil
				}
				return msg, nil
			})
		},
	}
}

// runResource runs fn against the named resource and prints its result.
// The command line acts with full rights; authorization applies to the
// HTTP API only.
func (o *rootOptions) runResource(cmd *cobra.Command, name string, fn func(context.Context, resource.Operations) (any, error)) error {
	return o.withRepository(func(repo types.Repository, log *zap.Logger) error {
		set := records.New(repo, log, nil)
		ops, ok := set.Lookup(name)
		if !ok {
			return userError(fmt.Errorf("unknown resource %q (valid: %s)", name, strings.Join(set.Names(), ", ")))
		}

		v, err := fn(cmd.Context(), ops)
		if err != nil {
			return classify(err)
		}
		if v == nil {
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), v, !o.jsonMode)
	})
}

// writeJSON prints v as JSON, indented when pretty is set.
func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	return nil
}
