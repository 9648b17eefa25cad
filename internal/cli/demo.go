// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/logtally/internal/config"
)

// demoThreshold applies when the demo runs without a configured minimum.
const demoThreshold = 89

const demoLog = `
    Aug 28 16:39:50 buildroot user.info root: ... decoded:120 scaled:120 sent:118 ...
    Aug 28 16:39:55 buildroot user.info root: ... decoded:120 scaled:120 sent:116 ...
    ERROR: A different error message.
    Aug 28 16:40:00 buildroot user.info root: ... decoded:120 scaled:120 sent:114 ...
    INFO: Some other process sent:9999 bytes which we should ignore.
    Aug 28 16:40:05 buildroot user.info root: ... audioSent:0 packet errors:0 sent:115 ...
`

func newDemoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Scan a generated sample log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cleanup, err := prepare(cmd, opts, config.DefaultScanLogLevel)
			if err != nil {
				return err
			}
			defer cleanup()
			if cfg.Minimum == nil {
				threshold := int64(demoThreshold)
				cfg.Minimum = &threshold
			}

			dir, err := os.MkdirTemp("", "logtally-demo-")
			if err != nil {
				return fmt.Errorf("creating demo directory: %w", err)
			}
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, DefaultLogFile)
			if err := os.WriteFile(path, []byte(demoLog), 0o600); err != nil {
				return fmt.Errorf("writing demo log: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created a sample log file: '%s'\n", path)
			if err := scan(cmd.Context(), out, cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed '%s'.\n", path)
			return nil
		},
	}
}
