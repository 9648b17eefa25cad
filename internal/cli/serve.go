// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/logtally/internal/config"
	"github.com/gemaraproj/logtally/internal/tool"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extract_log_numbers tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cleanup, err := prepare(cmd, opts, config.DefaultServeLogLevel)
			if err != nil {
				return err
			}
			defer cleanup()
			return tool.Serve(cmd.Context(), tool.NewServer(Version))
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logtally version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "logtally", Version)
		},
	}
}
